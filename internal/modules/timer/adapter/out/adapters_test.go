package out_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	agendadomain "countdown/internal/modules/agenda/domain"
	timeradapter "countdown/internal/modules/timer/adapter/out"
	"countdown/internal/modules/timer/domain"
	timerout "countdown/internal/modules/timer/port/out"
	apperrors "countdown/internal/platform/errors"
	"countdown/internal/platform/markdown"
)

func sampleSummary(id string, ended time.Time) domain.Summary {
	return domain.Summary{
		MeetingID: id,
		Title:     "Weekly Sync",
		EndedAt:   ended,
		Agenda: agendadomain.Definition{
			{Title: "Intro", Minutes: 1, Color: agendadomain.ColorTeal},
			{Title: "Issues", Minutes: 2},
		},
		Records: []domain.ItemRecord{
			{PlannedSeconds: 60, ActualSeconds: 80, OvertimeSeconds: 20, Completed: true},
			{PlannedSeconds: 120, ActualSeconds: 100, Completed: true},
		},
		TotalElapsedSeconds: 180,
	}
}

func TestBellPlayerRingsPerCue(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	player := timeradapter.NewBellPlayer(&buf)
	ctx := context.Background()
	for _, cue := range []string{"meeting-chime", "simple-medium", "unknown"} {
		if err := player.Play(ctx, cue); err != nil {
			t.Fatalf("play %s: %v", cue, err)
		}
	}
	if got := buf.String(); got != strings.Repeat("\a", 4) {
		t.Fatalf("unexpected bell output %q", got)
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := player.Play(cancelled, "meeting-chime"); err == nil {
		t.Fatalf("cancelled context should fail")
	}
}

func TestMarkdownSummaryArchive(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	archive := timeradapter.NewMarkdownSummaryArchive(root)
	path, err := archive.Archive(context.Background(), sampleSummary("m-1", time.Date(2026, 3, 2, 10, 30, 5, 0, time.UTC)))
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	want := filepath.Join(root, "2026", "03", "02", "103005-weekly-sync.md")
	if path != want {
		t.Fatalf("unexpected path %s, want %s", path, want)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	var meta struct {
		MeetingID            string `yaml:"meeting_id"`
		TotalOvertimeSeconds int    `yaml:"total_overtime_seconds"`
		Items                []struct {
			Title string `yaml:"title"`
		} `yaml:"items"`
	}
	body, err := markdown.Split(raw, &meta)
	if err != nil {
		t.Fatalf("split note: %v", err)
	}
	if meta.MeetingID != "m-1" || meta.TotalOvertimeSeconds != 20 || len(meta.Items) != 2 {
		t.Fatalf("unexpected frontmatter %+v", meta)
	}
	if !strings.Contains(body, "✓ 1. Intro") || !strings.Contains(body, "(+0:20 over)") {
		t.Fatalf("body should carry the summary text:\n%s", body)
	}
}

func TestSQLiteMeetingIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	index, err := timeradapter.NewSQLiteMeetingIndex(filepath.Join(t.TempDir(), "db", "countdown.db"))
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	t.Cleanup(func() { _ = index.Close() })

	if _, err := index.Get(ctx, ""); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found on empty index, got %v", err)
	}
	older := sampleSummary("m-old", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	newer := sampleSummary("m-new", time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC))
	for _, s := range []domain.Summary{older, newer} {
		if err := index.Record(ctx, timerout.MeetingEntry{Summary: s, ArchivePath: "/notes/" + s.MeetingID + ".md"}); err != nil {
			t.Fatalf("record %s: %v", s.MeetingID, err)
		}
	}
	if err := index.Record(ctx, timerout.MeetingEntry{Summary: older, ArchivePath: "/notes/again.md"}); err != nil {
		t.Fatalf("re-record: %v", err)
	}

	entries, err := index.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 || entries[0].Summary.MeetingID != "m-new" || entries[1].ArchivePath != "/notes/again.md" {
		t.Fatalf("unexpected entries %+v", entries)
	}

	latest, err := index.Get(ctx, "")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	got := latest.Summary
	if got.MeetingID != "m-new" || !got.EndedAt.Equal(newer.EndedAt) || got.TotalElapsedSeconds != 180 {
		t.Fatalf("unexpected latest %+v", got)
	}
	if len(got.Records) != 2 || got.Records[0] != newer.Records[0] || got.Agenda[0].Color != agendadomain.ColorTeal || got.Agenda[1].Minutes != 2 {
		t.Fatalf("items should round trip, got %+v / %+v", got.Agenda, got.Records)
	}
	if got.Text() != newer.Text() {
		t.Fatalf("summary text should survive the index")
	}
	if _, err := index.Get(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
