package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"countdown/internal/modules/timer/domain"
	timerout "countdown/internal/modules/timer/port/out"
	"countdown/internal/platform/markdown"
	"countdown/internal/platform/slug"
)

// MarkdownSummaryArchive writes one note per ended meeting under
// <root>/YYYY/MM/DD/.
type MarkdownSummaryArchive struct {
	root string
}

func NewMarkdownSummaryArchive(root string) timerout.SummaryArchive {
	return &MarkdownSummaryArchive{root: root}
}

type summaryItemMeta struct {
	Title           string `yaml:"title"`
	Color           string `yaml:"color,omitempty"`
	PlannedSeconds  int    `yaml:"planned_seconds"`
	ActualSeconds   int    `yaml:"actual_seconds"`
	OvertimeSeconds int    `yaml:"overtime_seconds"`
	Completed       bool   `yaml:"completed"`
}

type summaryMeta struct {
	MeetingID            string            `yaml:"meeting_id"`
	Title                string            `yaml:"title"`
	EndedAt              string            `yaml:"ended_at"`
	TotalElapsedSeconds  int               `yaml:"total_elapsed_seconds"`
	TotalPlannedSeconds  int               `yaml:"total_planned_seconds"`
	TotalOvertimeSeconds int               `yaml:"total_overtime_seconds"`
	Items                []summaryItemMeta `yaml:"items"`
}

func (a *MarkdownSummaryArchive) Archive(_ context.Context, summary domain.Summary) (string, error) {
	ended := summary.EndedAt.UTC()
	dir := filepath.Join(a.root, ended.Format("2006"), ended.Format("01"), ended.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create summary dir: %w", err)
	}
	meta := summaryMeta{
		MeetingID:            summary.MeetingID,
		Title:                summary.Title,
		EndedAt:              ended.Format(time.RFC3339),
		TotalElapsedSeconds:  summary.TotalElapsedSeconds,
		TotalPlannedSeconds:  summary.TotalPlannedSeconds(),
		TotalOvertimeSeconds: summary.TotalOvertimeSeconds(),
	}
	for i, item := range summary.Agenda {
		if i >= len(summary.Records) {
			break
		}
		rec := summary.Records[i]
		meta.Items = append(meta.Items, summaryItemMeta{
			Title:           item.Title,
			Color:           string(item.Color),
			PlannedSeconds:  rec.PlannedSeconds,
			ActualSeconds:   rec.ActualSeconds,
			OvertimeSeconds: rec.OvertimeSeconds,
			Completed:       rec.Completed,
		})
	}
	body := strings.Builder{}
	body.WriteString("# " + summary.Title + "\n\n```text\n")
	body.WriteString(summary.Text())
	body.WriteString("\n```\n")
	content, err := markdown.Render(meta, body.String())
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.md", ended.Format("150405"), slug.Make(summary.Title)))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", fmt.Errorf("write summary note: %w", err)
	}
	return path, nil
}
