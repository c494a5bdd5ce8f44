package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	exportout "countdown/internal/modules/export/adapter/out"
)

func writeManifests(t *testing.T, raw string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "plugins")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir plugins: %v", err)
	}
	path := filepath.Join(dir, "plugins.json")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write plugins.json: %v", err)
	}
	return path
}

func TestFileManifestStoreLoadMissingReturnsEmpty(t *testing.T) {
	t.Parallel()
	store := exportout.NewFileManifestStore(filepath.Join(t.TempDir(), "plugins", "plugins.json"))
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty manifests, got %d", len(manifests))
	}
}

func TestFileManifestStoreResolvesRelativeBinary(t *testing.T) {
	t.Parallel()
	path := writeManifests(t, `[
  {
    "name": "summary-file",
    "version": "1.0.0",
    "binary": "bin/summary-file",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true
  }
]`)
	manifests, err := exportout.NewFileManifestStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load manifests: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected one manifest, got %d", len(manifests))
	}
	want := filepath.Join(filepath.Dir(path), "bin", "summary-file")
	if manifests[0].Binary != want {
		t.Fatalf("binary = %s, want %s", manifests[0].Binary, want)
	}
}

func TestFileManifestStoreRejectsUnknownField(t *testing.T) {
	t.Parallel()
	path := writeManifests(t, `[
  {
    "name": "summary-file",
    "version": "1.0.0",
    "binary": "/tmp/summary-file",
    "sha256": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
    "enabled": true,
    "capabilities": ["command"]
  }
]`)
	if _, err := exportout.NewFileManifestStore(path).Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field error")
	}
}
