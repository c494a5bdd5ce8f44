package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"countdown/internal/modules/export/domain"
	exportout "countdown/internal/modules/export/port/out"
)

const webhookTimeout = 10 * time.Second

// HTTPDoer is the part of *http.Client the webhook exporter needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type WebhookConfig struct {
	URL string
	// Client defaults to an *http.Client with a 10s timeout.
	Client HTTPDoer
}

type WebhookExporter struct {
	cfg WebhookConfig
}

func NewWebhookExporter(cfg WebhookConfig) (exportout.Exporter, error) {
	cfg.URL = strings.TrimSpace(cfg.URL)
	if cfg.URL == "" {
		return nil, fmt.Errorf("webhook url is required")
	}
	if !strings.HasPrefix(cfg.URL, "http://") && !strings.HasPrefix(cfg.URL, "https://") {
		return nil, fmt.Errorf("webhook url must be http or https: %s", cfg.URL)
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: webhookTimeout}
	}
	return &WebhookExporter{cfg: cfg}, nil
}

func (e *WebhookExporter) Name() string {
	return domain.WebhookExporterName
}

func (e *WebhookExporter) Export(ctx context.Context, payload domain.Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	ctx, cancel := callContext(ctx, webhookTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := e.cfg.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return fmt.Errorf("webhook status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}
