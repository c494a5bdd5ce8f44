package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"countdown/internal/modules/export/domain"
	"countdown/internal/modules/export/dto"
	exportout "countdown/internal/modules/export/port/out"
	timerdomain "countdown/internal/modules/timer/domain"
	"countdown/internal/platform/logging"
)

const publishTimeout = 30 * time.Second

type ExportService struct {
	store     exportout.ManifestStore
	host      exportout.Host
	exporters []exportout.Exporter
	log       *slog.Logger

	inflight sync.WaitGroup
}

// NewExportService combines the fixed exporters (webhook) with the plugin
// exporters listed by store. A nil store or host disables plugins.
func NewExportService(store exportout.ManifestStore, host exportout.Host, exporters []exportout.Exporter, logger *slog.Logger) *ExportService {
	return &ExportService{store: store, host: host, exporters: exporters, log: logging.OrDefault(logger).With("component", "export")}
}

func (s *ExportService) List(ctx context.Context) ([]dto.ExporterInfo, error) {
	out := make([]dto.ExporterInfo, 0, len(s.exporters))
	for _, e := range s.exporters {
		out = append(out, dto.ExporterInfo{Name: e.Name(), Kind: "builtin", Enabled: true})
	}
	manifests, err := s.loadValidated(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range manifests {
		out = append(out, dto.ExporterInfo{Name: m.Name, Kind: "plugin", Version: m.Version, Enabled: m.Enabled, Target: m.Binary})
	}
	return out, nil
}

func (s *ExportService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	if s.store == nil {
		return []dto.DoctorResult{}, nil
	}
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, m := range manifests {
		result := dto.DoctorResult{Name: m.Name}
		if err := m.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.BinaryReachable = fileExists(m.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
			results = append(results, result)
			continue
		}
		result.ChecksumValid = checksumMatches(m.Binary, m.SHA256) == nil
		if !result.ChecksumValid {
			result.Error = "checksum mismatch"
			results = append(results, result)
			continue
		}
		if m.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, m); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

// Export hands summary to every exporter concurrently and reports each
// outcome in registration order. When the manifest file is unusable the
// fixed exporters still run and the manifest error is returned alongside
// their results.
func (s *ExportService) Export(ctx context.Context, summary timerdomain.Summary) ([]dto.ExportResult, error) {
	payload := domain.NewPayload(summary)
	exporters := append([]exportout.Exporter{}, s.exporters...)

	manifests, manifestErr := s.loadValidated(ctx)
	if manifestErr != nil {
		manifestErr = fmt.Errorf("load exporter plugins: %w", manifestErr)
	}
	for _, m := range manifests {
		if !m.Enabled {
			continue
		}
		exporters = append(exporters, &pluginExporter{manifest: m, host: s.host})
	}

	outcomes := make([]dto.ExportResult, len(exporters))
	var wg sync.WaitGroup
	for i, e := range exporters {
		wg.Add(1)
		go func(i int, e exportout.Exporter) {
			defer wg.Done()
			outcome := dto.ExportResult{Exporter: e.Name(), OK: true}
			if err := e.Export(ctx, payload); err != nil {
				outcome.OK = false
				outcome.Error = err.Error()
			}
			outcomes[i] = outcome
		}(i, e)
	}
	wg.Wait()
	return outcomes, manifestErr
}

// Publish exports in the background. The work is detached from ctx
// cancellation so quitting the view does not abort an in-flight delivery.
func (s *ExportService) Publish(ctx context.Context, summary timerdomain.Summary) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
		defer cancel()
		results, err := s.Export(runCtx, summary)
		if err != nil {
			s.log.Warn("export summary", "meeting", summary.MeetingID, "error", err)
		}
		for _, r := range results {
			if r.OK {
				s.log.Info("summary exported", "meeting", summary.MeetingID, "exporter", r.Exporter)
				continue
			}
			s.log.Warn("summary export failed", "meeting", summary.MeetingID, "exporter", r.Exporter, "error", r.Error)
		}
	}()
}

func (s *ExportService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ExportService) loadValidated(ctx context.Context) ([]domain.Manifest, error) {
	if s.store == nil || s.host == nil {
		return nil, nil
	}
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateSet(manifests); err != nil {
		return nil, err
	}
	return manifests, nil
}

type pluginExporter struct {
	manifest domain.Manifest
	host     exportout.Host
}

func (p *pluginExporter) Name() string {
	return p.manifest.Name
}

func (p *pluginExporter) Export(ctx context.Context, payload domain.Payload) error {
	if err := checksumMatches(p.manifest.Binary, p.manifest.SHA256); err != nil {
		return err
	}
	return p.host.Export(ctx, p.manifest, payload)
}

func checksumMatches(path string, expected string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read exporter binary: %w", err)
	}
	hash := sha256.Sum256(payload)
	actual := hex.EncodeToString(hash[:])
	if actual != expected {
		return fmt.Errorf("%w: %s", domain.ErrChecksumMismatch, filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
