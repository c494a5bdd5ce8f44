package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	agendadomain "countdown/internal/modules/agenda/domain"
	timerdomain "countdown/internal/modules/timer/domain"
	"countdown/internal/modules/timer/dto"
	"countdown/internal/ui/theme"
)

const minBarWidth = 20

var (
	clockStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	currentStyle = lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	doneStyle    = lipgloss.NewStyle().Foreground(theme.Subtext0).Strikethrough(true)
	promptStyle  = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Peach).
			Padding(0, 1)
)

func phaseLabel(v dto.View) string {
	switch v.Phase {
	case timerdomain.PhaseRunning:
		return "● running"
	case timerdomain.PhasePaused:
		return "❚❚ paused"
	case timerdomain.PhaseAgendaExhausted:
		return "agenda complete"
	case timerdomain.PhaseManualControl:
		return "waiting to end"
	case timerdomain.PhaseEnded:
		return "meeting ended"
	default:
		return "not started"
	}
}

func accentFor(v dto.View) lipgloss.Color {
	return theme.Accent(agendadomain.Color(v.CurrentColor), v.TimeLeftSeconds, v.IsOvertime)
}

// clockText shows the remaining time, or the overrun once the item is in
// overtime.
func clockText(v dto.View) string {
	if v.IsOvertime {
		return "+" + timerdomain.FormatClock(v.OvertimeSeconds)
	}
	return timerdomain.FormatClock(v.TimeLeftSeconds)
}

func renderHeader(v dto.View, width int, badge string) string {
	left := theme.Title.Render(v.Title)
	if badge != "" {
		left += "  " + theme.Muted.Render(badge)
	}
	right := theme.Hot.Render(phaseLabel(v)) + "  " +
		theme.Muted.Render(fmt.Sprintf("%s / %s", timerdomain.FormatClock(v.TotalElapsedSeconds), timerdomain.FormatClock(v.TotalPlannedSeconds)))
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func renderCurrent(v dto.View, bar progress.Model, width int) string {
	if v.CurrentIndex < 0 {
		msg := "Press s to start the meeting."
		switch {
		case v.PendingEndDecision, v.ManualEndAvailable:
			msg = "All agenda items are done."
		case v.MeetingCompleted:
			msg = "Meeting completed."
		}
		return theme.Muted.Render(msg)
	}
	accent := accentFor(v)
	var sb strings.Builder
	sb.WriteString(currentStyle.Render(fmt.Sprintf("Now: %d. %s", v.CurrentIndex+1, v.CurrentTitle)) + "\n")
	sb.WriteString(clockStyle.Foreground(accent).Render(clockText(v)) + "\n")

	bar.FullColor = string(accent)
	bar.Width = max(minBarWidth, width-4)
	sb.WriteString(bar.ViewAs(v.Progress) + "\n")

	if next := v.CurrentIndex + 1; next < len(v.Items) {
		item := v.Items[next]
		sb.WriteString(theme.Muted.Render(fmt.Sprintf("Next: %s (%s)", item.Title, timerdomain.FormatClock(item.PlannedSeconds))))
	} else {
		sb.WriteString(theme.Muted.Render("Last item"))
	}
	return sb.String()
}

func renderAgenda(v dto.View) string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Agenda") + "\n")
	for _, item := range v.Items {
		marker := "○"
		switch {
		case item.Current:
			marker = "▶"
		case item.Completed:
			marker = "✓"
		}
		dot := "■"
		if color, ok := theme.ItemColor(agendadomain.Color(item.Color)); ok {
			dot = lipgloss.NewStyle().Foreground(color).Render(dot)
		} else {
			dot = theme.Muted.Render(dot)
		}
		timing := timerdomain.FormatClock(item.PlannedSeconds)
		if item.ActualSeconds > 0 || item.Completed {
			timing += "  " + timerdomain.FormatClock(item.ActualSeconds)
		}
		if item.OvertimeSeconds > 0 {
			timing += theme.Hot.Render(fmt.Sprintf(" (+%s)", timerdomain.FormatClock(item.OvertimeSeconds)))
		}
		line := fmt.Sprintf("%s %s %d. %s", marker, dot, item.Position, item.Title)
		switch {
		case item.Current:
			line = currentStyle.Render(line)
		case item.Completed:
			line = doneStyle.Render(line)
		}
		sb.WriteString(line + "  " + theme.Muted.Render(timing) + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// renderTimer lays out the read-only part shared by the primary and pop-out
// views.
func renderTimer(v dto.View, bar progress.Model, width int, badge string) string {
	if width < minBarWidth+4 {
		width = minBarWidth + 4
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		renderHeader(v, width, badge),
		"",
		renderCurrent(v, bar, width),
		"",
		renderAgenda(v),
	)
}

func renderPrompt(text string) string {
	return promptStyle.Render(text)
}

func newBar() progress.Model {
	return progress.New(progress.WithSolidFill(string(theme.Sapphire)), progress.WithoutPercentage())
}
