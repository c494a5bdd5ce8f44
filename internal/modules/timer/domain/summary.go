package domain

import (
	"fmt"
	"strings"
	"time"

	agendadomain "countdown/internal/modules/agenda/domain"
)

// Summary is the frozen ledger of an ended meeting.
type Summary struct {
	MeetingID           string                  `json:"meeting_id" yaml:"meeting_id"`
	Title               string                  `json:"title" yaml:"title"`
	EndedAt             time.Time               `json:"ended_at" yaml:"ended_at"`
	Agenda              agendadomain.Definition `json:"agenda" yaml:"agenda"`
	Records             []ItemRecord            `json:"records" yaml:"records"`
	TotalElapsedSeconds int                     `json:"total_elapsed_seconds" yaml:"total_elapsed_seconds"`
}

func (s Summary) TotalPlannedSeconds() int {
	return TotalPlanned(s.Records)
}

func (s Summary) TotalOvertimeSeconds() int {
	return TotalOvertime(s.Records)
}

func (s Summary) CompletedItems() int {
	n := 0
	for _, rec := range s.Records {
		if rec.Completed {
			n++
		}
	}
	return n
}

// Text renders the plain summary shared by copy, archive and export.
func (s Summary) Text() string {
	lines := []string{
		"Meeting: " + s.Title,
		"Date: " + s.EndedAt.Format("2006-01-02"),
		"Total Duration: " + FormatClock(s.TotalElapsedSeconds),
		"",
		"Agenda Items:",
	}
	for i, item := range s.Agenda {
		if i >= len(s.Records) {
			break
		}
		rec := s.Records[i]
		status := "○"
		if rec.Completed {
			status = "✓"
		}
		over := ""
		if rec.OvertimeSeconds > 0 {
			over = fmt.Sprintf(" (+%s over)", FormatClock(rec.OvertimeSeconds))
		}
		lines = append(lines,
			fmt.Sprintf("%s %d. %s", status, i+1, item.Title),
			fmt.Sprintf("   Planned: %s, Actual: %s%s", FormatClock(rec.PlannedSeconds), FormatClock(rec.ActualSeconds), over),
		)
	}
	return strings.Join(lines, "\n")
}

// FormatClock renders seconds as m:ss. Negative input renders as 0:00.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
