package out_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	exportout "countdown/internal/modules/export/adapter/out"
	"countdown/internal/modules/export/domain"
)

func TestWebhookExporterPostsPayload(t *testing.T) {
	t.Parallel()
	var got domain.Payload
	var contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	exporter, err := exportout.NewWebhookExporter(exportout.WebhookConfig{URL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("new webhook exporter: %v", err)
	}
	if exporter.Name() != domain.WebhookExporterName {
		t.Fatalf("name = %s", exporter.Name())
	}
	payload := domain.Payload{MeetingTitle: "Weekly", MeetingDate: "2026-10-14", SummaryText: "Meeting: Weekly"}
	if err := exporter.Export(context.Background(), payload); err != nil {
		t.Fatalf("export: %v", err)
	}
	if got != payload {
		t.Fatalf("payload = %+v, want %+v", got, payload)
	}
	if contentType != "application/json" {
		t.Fatalf("content type = %s", contentType)
	}
}

func TestWebhookExporterRejectsNon2xx(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	exporter, err := exportout.NewWebhookExporter(exportout.WebhookConfig{URL: srv.URL, Client: srv.Client()})
	if err != nil {
		t.Fatalf("new webhook exporter: %v", err)
	}
	if err := exporter.Export(context.Background(), domain.Payload{MeetingTitle: "x"}); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestNewWebhookExporterValidatesURL(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "  ", "ftp://example.com/hook"} {
		if _, err := exportout.NewWebhookExporter(exportout.WebhookConfig{URL: raw}); err == nil {
			t.Fatalf("expected error for url %q", raw)
		}
	}
}
