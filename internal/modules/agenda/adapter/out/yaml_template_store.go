package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"countdown/internal/modules/agenda/domain"
	agendaout "countdown/internal/modules/agenda/port/out"
)

type YAMLTemplateStore struct {
	path string
}

func NewYAMLTemplateStore(path string) agendaout.TemplateStore {
	return &YAMLTemplateStore{path: path}
}

type templateFile struct {
	Templates []domain.Template `yaml:"templates"`
}

func (s *YAMLTemplateStore) List(_ context.Context) ([]domain.Template, error) {
	file, err := s.read()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(file.Templates, func(i, j int) bool {
		return file.Templates[i].Name < file.Templates[j].Name
	})
	return file.Templates, nil
}

func (s *YAMLTemplateStore) Save(_ context.Context, template domain.Template) error {
	file, err := s.read()
	if err != nil {
		return err
	}
	replaced := false
	for i := range file.Templates {
		if file.Templates[i].ID == template.ID {
			file.Templates[i] = template
			replaced = true
			break
		}
	}
	if !replaced {
		file.Templates = append(file.Templates, template)
	}
	return s.write(file)
}

func (s *YAMLTemplateStore) Delete(_ context.Context, id string) error {
	file, err := s.read()
	if err != nil {
		return err
	}
	kept := file.Templates[:0]
	for _, tpl := range file.Templates {
		if tpl.ID != id {
			kept = append(kept, tpl)
		}
	}
	file.Templates = kept
	return s.write(file)
}

func (s *YAMLTemplateStore) read() (templateFile, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return templateFile{}, nil
		}
		return templateFile{}, fmt.Errorf("read templates file: %w", err)
	}
	var file templateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return templateFile{}, fmt.Errorf("parse templates yaml: %w", err)
	}
	return file, nil
}

func (s *YAMLTemplateStore) write(file templateFile) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create templates dir: %w", err)
	}
	serialized, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("marshal templates yaml: %w", err)
	}
	if err := os.WriteFile(s.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write templates file: %w", err)
	}
	return nil
}
