package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"countdown/internal/modules/agenda/domain"
	agendaout "countdown/internal/modules/agenda/port/out"
)

type YAMLSettingsStore struct {
	path string
}

func NewYAMLSettingsStore(path string) agendaout.SettingsStore {
	return &YAMLSettingsStore{path: path}
}

// Load returns the stored settings. A missing file yields the defaults; fields
// absent from the file keep their default values.
func (s *YAMLSettingsStore) Load(_ context.Context) (domain.Settings, error) {
	settings := domain.DefaultSettings()
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}
	var fileData domain.Settings
	if err := yaml.Unmarshal(raw, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}
	applyFileSettings(&settings, fileData)
	return settings, nil
}

// Save replaces the file through a temp file and rename, so a watcher in
// another process never reads a half-written file.
func (s *YAMLSettingsStore) Save(_ context.Context, settings domain.Settings) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	serialized, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create settings temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(serialized); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close settings file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod settings file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace settings file: %w", err)
	}
	return nil
}

func applyFileSettings(settings *domain.Settings, fileData domain.Settings) {
	if fileData.Title != "" {
		settings.Title = fileData.Title
	}
	if len(fileData.Agenda) > 0 && fileData.Agenda.Validate() == nil {
		settings.Agenda = fileData.Agenda
	}
	for kind, cue := range fileData.Cues {
		settings.Cues[kind] = cue
	}
	settings.ActiveTemplateID = fileData.ActiveTemplateID
}
