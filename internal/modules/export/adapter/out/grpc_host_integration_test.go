package out_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	exportout "countdown/internal/modules/export/adapter/out"
	"countdown/internal/modules/export/domain"
)

func TestGRPCHostIntegrationSummaryFilePlugin(t *testing.T) {
	target := filepath.Join(t.TempDir(), "summaries.txt")
	t.Setenv("COUNTDOWN_SUMMARY_FILE", target)

	binPath, checksum := buildSummaryFilePlugin(t)
	manifest := domain.Manifest{
		Name:    "summary-file",
		Version: "1.0.0",
		Binary:  binPath,
		SHA256:  checksum,
		Enabled: true,
	}

	host := exportout.NewGRPCHost(nil)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := host.CheckLifecycle(ctx, manifest); err != nil {
		t.Fatalf("check lifecycle: %v", err)
	}
	payload := domain.Payload{MeetingTitle: "Weekly", MeetingDate: "2026-10-14", SummaryText: "Meeting: Weekly\nTotal Duration: 5:00"}
	if err := host.Export(ctx, manifest, payload); err != nil {
		t.Fatalf("export: %v", err)
	}
	raw, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read summary file: %v", err)
	}
	if !strings.Contains(string(raw), "Total Duration: 5:00") {
		t.Fatalf("summary file missing text:\n%s", raw)
	}
}

func buildSummaryFilePlugin(t *testing.T) (string, string) {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), "summary-file")
	cmd := exec.Command("go", "build", "-o", binPath, "./plugins/summary-file")
	cmd.Dir = repositoryRoot(t)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build summary-file plugin: %v\n%s", err, string(out))
	}
	payload, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatalf("read built plugin: %v", err)
	}
	hash := sha256.Sum256(payload)
	return binPath, hex.EncodeToString(hash[:])
}

func repositoryRoot(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatalf("runtime caller failed")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "../../../../../"))
}
