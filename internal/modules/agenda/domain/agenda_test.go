package domain_test

import (
	"errors"
	"testing"

	"countdown/internal/modules/agenda/domain"
	apperrors "countdown/internal/platform/errors"
)

func TestDefinitionValidate(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		agenda  domain.Definition
		wantErr error
	}{
		{name: "empty", agenda: domain.Definition{}, wantErr: domain.ErrEmptyAgenda},
		{name: "zero minutes", agenda: domain.Definition{{Title: "A", Minutes: 0}}, wantErr: domain.ErrItemDuration},
		{name: "too long", agenda: domain.Definition{{Title: "A", Minutes: 121}}, wantErr: domain.ErrItemDuration},
		{name: "blank title", agenda: domain.Definition{{Title: "  ", Minutes: 5}}, wantErr: domain.ErrItemTitle},
		{name: "bad color", agenda: domain.Definition{{Title: "A", Minutes: 5, Color: "mauve"}}, wantErr: domain.ErrUnknownColor},
		{name: "ok", agenda: domain.Definition{{Title: "A", Minutes: 1}, {Title: "B", Minutes: 120, Color: domain.ColorTeal}}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.agenda.Validate()
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected valid agenda, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !errors.Is(err, apperrors.ErrInvalidInput) {
				t.Fatalf("validation errors must wrap ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestParseColorAndDefaults(t *testing.T) {
	t.Parallel()
	c, err := domain.ParseColor(" Emerald ")
	if err != nil || c != domain.ColorEmerald {
		t.Fatalf("expected emerald, got %q (%v)", c, err)
	}
	if c, err := domain.ParseColor(""); err != nil || c != domain.ColorNone {
		t.Fatalf("empty color should parse to none, got %q (%v)", c, err)
	}
	if _, err := domain.ParseColor("beige"); !errors.Is(err, domain.ErrUnknownColor) {
		t.Fatalf("expected unknown color error, got %v", err)
	}
	if len(domain.Colors()) != 17 {
		t.Fatalf("expected 17 named colors, got %d", len(domain.Colors()))
	}

	settings := domain.DefaultSettings()
	if err := settings.Validate(); err != nil {
		t.Fatalf("default settings must validate: %v", err)
	}
	if settings.Agenda.TotalMinutes() != 90 {
		t.Fatalf("expected 90 minute default agenda, got %d", settings.Agenda.TotalMinutes())
	}
	if settings.CueID(domain.CueStart) != "meeting-chime" {
		t.Fatalf("unexpected start cue: %q", settings.CueID(domain.CueStart))
	}
	if (domain.Settings{}).CueID(domain.CueEnd) != "" {
		t.Fatalf("nil cue map must resolve to empty id")
	}
	if settings.Agenda[5].PlannedSeconds() != 3600 {
		t.Fatalf("expected issues to plan 3600s, got %d", settings.Agenda[5].PlannedSeconds())
	}
}
