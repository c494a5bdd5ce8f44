package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrPluginDisabled   = errors.New("exporter plugin is disabled")
	ErrChecksumMismatch = errors.New("exporter plugin checksum mismatch")
	ErrExportTimeout    = errors.New("export timed out")
)

var sha256Pattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// Manifest describes one exporter plugin binary listed in plugins.json.
type Manifest struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Binary  string `json:"binary"`
	SHA256  string `json:"sha256"`
	Enabled bool   `json:"enabled"`
}

func (m Manifest) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("exporter name is required")
	}
	if m.Name == WebhookExporterName {
		return fmt.Errorf("exporter name %q is reserved", m.Name)
	}
	if m.Version == "" {
		return fmt.Errorf("exporter version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("exporter binary path is required")
	}
	if !sha256Pattern.MatchString(m.SHA256) {
		return fmt.Errorf("exporter sha256 must be lowercase 64-char hex")
	}
	return nil
}

// ValidateSet checks every manifest and rejects duplicate names.
func ValidateSet(manifests []Manifest) error {
	seen := map[string]struct{}{}
	for _, m := range manifests {
		if err := m.Validate(); err != nil {
			return err
		}
		if _, ok := seen[m.Name]; ok {
			return fmt.Errorf("duplicate exporter name: %s", m.Name)
		}
		seen[m.Name] = struct{}{}
	}
	return nil
}

// WebhookExporterName is the built-in exporter configured by COUNTDOWN_WEBHOOK_URL.
const WebhookExporterName = "webhook"

// Payload is the body every exporter receives. The field names follow the
// meeting summary email template.
type Payload struct {
	MeetingID    string `json:"meeting_id,omitempty"`
	MeetingTitle string `json:"meeting_title"`
	MeetingDate  string `json:"meeting_date"`
	SummaryText  string `json:"summary_text"`
}
