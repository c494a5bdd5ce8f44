package dto

import (
	"time"

	agendadomain "countdown/internal/modules/agenda/domain"
	"countdown/internal/modules/timer/domain"
)

type ItemView struct {
	Position        int
	Title           string
	Color           string
	PlannedSeconds  int
	ActualSeconds   int
	OvertimeSeconds int
	Completed       bool
	Current         bool
}

// View is the render-ready projection of a timer state against its agenda.
type View struct {
	Title               string
	Phase               domain.Phase
	Running             bool
	CurrentIndex        int
	CurrentTitle        string
	CurrentColor        string
	TimeLeftSeconds     int
	TotalElapsedSeconds int
	IsOvertime          bool
	OvertimeSeconds     int
	Progress            float64
	TotalPlannedSeconds int
	PendingEndDecision  bool
	ManualEndAvailable  bool
	MeetingCompleted    bool
	Items               []ItemView
}

// NewView projects state onto agenda. CurrentIndex is -1 when no item is
// active.
func NewView(title string, agenda agendadomain.Definition, state domain.State) View {
	view := View{
		Title:               title,
		Phase:               state.Phase(),
		Running:             state.Running,
		CurrentIndex:        -1,
		TimeLeftSeconds:     state.TimeLeftSeconds,
		TotalElapsedSeconds: state.TotalElapsedSeconds,
		IsOvertime:          state.IsOvertime,
		OvertimeSeconds:     state.OvertimeSeconds,
		TotalPlannedSeconds: domain.TotalPlanned(state.Records),
		PendingEndDecision:  state.PendingEndDecision,
		ManualEndAvailable:  state.ManualEndAvailable,
		MeetingCompleted:    state.MeetingCompleted,
		Items:               make([]ItemView, 0, len(agenda)),
	}
	current, active := state.Index()
	for i, item := range agenda {
		iv := ItemView{Position: i + 1, Title: item.Title, Color: string(item.Color), PlannedSeconds: item.PlannedSeconds()}
		if i < len(state.Records) {
			rec := state.Records[i]
			iv.PlannedSeconds = rec.PlannedSeconds
			iv.ActualSeconds = rec.ActualSeconds
			iv.OvertimeSeconds = rec.OvertimeSeconds
			iv.Completed = rec.Completed
		}
		if active && i == current {
			iv.Current = true
			view.CurrentIndex = i
			view.CurrentTitle = item.Title
			view.CurrentColor = string(item.Color)
			if iv.PlannedSeconds > 0 {
				view.Progress = max(0, min(1, float64(iv.PlannedSeconds-state.TimeLeftSeconds)/float64(iv.PlannedSeconds)))
			}
		}
		view.Items = append(view.Items, iv)
	}
	return view
}

type MeetingOutput struct {
	MeetingID            string
	Title                string
	EndedAt              time.Time
	Items                int
	CompletedItems       int
	TotalElapsedSeconds  int
	TotalPlannedSeconds  int
	TotalOvertimeSeconds int
	ArchivePath          string
}

type SummaryOutput struct {
	Meeting MeetingOutput
	Text    string
}

func NewMeetingOutput(summary domain.Summary, archivePath string) MeetingOutput {
	return MeetingOutput{
		MeetingID:            summary.MeetingID,
		Title:                summary.Title,
		EndedAt:              summary.EndedAt,
		Items:                len(summary.Agenda),
		CompletedItems:       summary.CompletedItems(),
		TotalElapsedSeconds:  summary.TotalElapsedSeconds,
		TotalPlannedSeconds:  summary.TotalPlannedSeconds(),
		TotalOvertimeSeconds: summary.TotalOvertimeSeconds(),
		ArchivePath:          archivePath,
	}
}

func NewSummaryOutput(summary domain.Summary, archivePath string) SummaryOutput {
	return SummaryOutput{Meeting: NewMeetingOutput(summary, archivePath), Text: summary.Text()}
}
