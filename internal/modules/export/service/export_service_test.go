package service_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	agendadomain "countdown/internal/modules/agenda/domain"
	"countdown/internal/modules/export/domain"
	exportout "countdown/internal/modules/export/port/out"
	"countdown/internal/modules/export/service"
	timerdomain "countdown/internal/modules/timer/domain"
	"countdown/internal/platform/logging"
)

type staticManifests struct {
	manifests []domain.Manifest
	err       error
}

func (s staticManifests) Load(context.Context) ([]domain.Manifest, error) {
	return s.manifests, s.err
}

type fakeHost struct {
	mu       sync.Mutex
	exported []string
	failWith error
}

func (h *fakeHost) CheckLifecycle(context.Context, domain.Manifest) error {
	return h.failWith
}

func (h *fakeHost) Export(_ context.Context, m domain.Manifest, _ domain.Payload) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exported = append(h.exported, m.Name)
	return h.failWith
}

type recordingExporter struct {
	name string
	err  error

	mu       sync.Mutex
	payloads []domain.Payload
}

func (e *recordingExporter) Name() string { return e.name }

func (e *recordingExporter) Export(_ context.Context, p domain.Payload) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.payloads = append(e.payloads, p)
	return e.err
}

func (e *recordingExporter) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.payloads)
}

func sampleSummary() timerdomain.Summary {
	agenda := agendadomain.Definition{{Title: "Segue", Minutes: 5}}
	return timerdomain.Summary{
		MeetingID: "m1",
		Title:     "Weekly",
		EndedAt:   time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
		Agenda:    agenda,
		Records: []timerdomain.ItemRecord{{
			PlannedSeconds:  300,
			ActualSeconds:   320,
			OvertimeSeconds: 20,
			Completed:       true,
		}},
		TotalElapsedSeconds: 320,
	}
}

func fakePluginBinary(t *testing.T, content string) (string, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "exporter")
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("write plugin binary: %v", err)
	}
	sum := sha256.Sum256([]byte(content))
	return path, hex.EncodeToString(sum[:])
}

func TestExportRunsBuiltinAndPluginExporters(t *testing.T) {
	t.Parallel()
	bin, checksum := fakePluginBinary(t, "binary")
	host := &fakeHost{}
	store := staticManifests{manifests: []domain.Manifest{
		{Name: "notes", Version: "1", Binary: bin, SHA256: checksum, Enabled: true},
		{Name: "off", Version: "1", Binary: bin, SHA256: checksum, Enabled: false},
	}}
	webhook := &recordingExporter{name: "webhook"}
	svc := service.NewExportService(store, host, []exportout.Exporter{webhook}, logging.Discard())

	results, err := svc.Export(context.Background(), sampleSummary())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected two results, got %+v", results)
	}
	if results[0].Exporter != "webhook" || !results[0].OK {
		t.Fatalf("unexpected webhook result: %+v", results[0])
	}
	if results[1].Exporter != "notes" || !results[1].OK {
		t.Fatalf("unexpected plugin result: %+v", results[1])
	}
	if len(host.exported) != 1 || host.exported[0] != "notes" {
		t.Fatalf("host exported %v", host.exported)
	}
	p := webhook.payloads[0]
	if p.MeetingTitle != "Weekly" || p.MeetingDate != "2026-10-14" {
		t.Fatalf("unexpected payload: %+v", p)
	}
	if !strings.Contains(p.SummaryText, "(+0:20 over)") {
		t.Fatalf("summary text missing overtime:\n%s", p.SummaryText)
	}
}

func TestExportReportsFailuresPerExporter(t *testing.T) {
	t.Parallel()
	bin, _ := fakePluginBinary(t, "binary")
	host := &fakeHost{}
	store := staticManifests{manifests: []domain.Manifest{
		{Name: "tampered", Version: "1", Binary: bin, SHA256: strings.Repeat("0", 64), Enabled: true},
	}}
	webhook := &recordingExporter{name: "webhook", err: errors.New("connection refused")}
	svc := service.NewExportService(store, host, []exportout.Exporter{webhook}, logging.Discard())

	results, err := svc.Export(context.Background(), sampleSummary())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	for _, r := range results {
		if r.OK || r.Error == "" {
			t.Fatalf("expected failure, got %+v", r)
		}
	}
	if len(host.exported) != 0 {
		t.Fatalf("tampered plugin must not be launched")
	}
}

func TestExportStillRunsBuiltinsWhenManifestsBroken(t *testing.T) {
	t.Parallel()
	webhook := &recordingExporter{name: "webhook"}
	svc := service.NewExportService(staticManifests{err: errors.New("bad json")}, &fakeHost{}, []exportout.Exporter{webhook}, logging.Discard())

	results, err := svc.Export(context.Background(), sampleSummary())
	if err == nil {
		t.Fatalf("expected manifest error")
	}
	if len(results) != 1 || !results[0].OK {
		t.Fatalf("expected webhook to succeed, got %+v", results)
	}
}

func TestPublishIsAsyncAndWaitable(t *testing.T) {
	t.Parallel()
	webhook := &recordingExporter{name: "webhook"}
	svc := service.NewExportService(nil, nil, []exportout.Exporter{webhook}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	svc.Publish(ctx, sampleSummary())
	cancel()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	if err := svc.Wait(waitCtx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	if webhook.calls() != 1 {
		t.Fatalf("expected one export, got %d", webhook.calls())
	}
}

func TestDoctorDetectsChecksumMismatch(t *testing.T) {
	t.Parallel()
	bin, checksum := fakePluginBinary(t, "binary")
	store := staticManifests{manifests: []domain.Manifest{
		{Name: "good", Version: "1", Binary: bin, SHA256: checksum, Enabled: true},
		{Name: "bad", Version: "1", Binary: bin, SHA256: strings.Repeat("0", 64), Enabled: true},
		{Name: "gone", Version: "1", Binary: filepath.Join(t.TempDir(), "missing"), SHA256: checksum, Enabled: true},
	}}
	svc := service.NewExportService(store, &fakeHost{}, nil, logging.Discard())

	results, err := svc.Doctor(context.Background())
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected three results, got %d", len(results))
	}
	if !results[0].ChecksumValid || !results[0].LifecycleOK {
		t.Fatalf("expected healthy plugin: %+v", results[0])
	}
	if results[1].ChecksumValid {
		t.Fatalf("expected checksum mismatch: %+v", results[1])
	}
	if results[2].BinaryReachable {
		t.Fatalf("expected unreachable binary: %+v", results[2])
	}
}

func TestListIncludesBuiltinsAndPlugins(t *testing.T) {
	t.Parallel()
	bin, checksum := fakePluginBinary(t, "binary")
	store := staticManifests{manifests: []domain.Manifest{{Name: "notes", Version: "2", Binary: bin, SHA256: checksum}}}
	svc := service.NewExportService(store, &fakeHost{}, []exportout.Exporter{&recordingExporter{name: "webhook"}}, logging.Discard())

	infos, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Kind != "builtin" || infos[1].Kind != "plugin" || infos[1].Enabled {
		t.Fatalf("unexpected list: %+v", infos)
	}
}
