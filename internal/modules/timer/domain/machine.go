package domain

import (
	"math"

	agendadomain "countdown/internal/modules/agenda/domain"
	apperrors "countdown/internal/platform/errors"
)

// Phase is the end-of-meeting flow position derived from State.
type Phase string

const (
	PhaseNotStarted      Phase = "not_started"
	PhaseRunning         Phase = "running"
	PhasePaused          Phase = "paused"
	PhaseAgendaExhausted Phase = "agenda_exhausted"
	PhaseManualControl   Phase = "manual_control"
	PhaseEnded           Phase = "ended"
)

func (s State) Phase() Phase {
	switch {
	case s.MeetingCompleted:
		return PhaseEnded
	case s.PendingEndDecision:
		return PhaseAgendaExhausted
	case s.ManualEndAvailable:
		return PhaseManualControl
	case s.CurrentIndex == nil:
		return PhaseNotStarted
	case s.Running:
		return PhaseRunning
	default:
		return PhasePaused
	}
}

// Machine owns every State mutation. It works in whole seconds and never
// touches a clock; cues it raises are queued until DrainCues.
type Machine struct {
	agenda agendadomain.Definition
	state  State
	cues   []agendadomain.CueKind
}

func NewMachine(agenda agendadomain.Definition) *Machine {
	m := &Machine{agenda: agenda.Clone()}
	m.state = State{Records: NewLedger(agenda)}
	return m
}

// RestoreMachine resumes from a persisted state. The ledger is always
// reconciled with agenda: an active item whose plan changed while the state
// was at rest keeps the fraction already used, and an index past the end
// clears to not started.
func RestoreMachine(agenda agendadomain.Definition, state State) *Machine {
	m := &Machine{agenda: agenda.Clone(), state: state.Clone()}
	savedPlan := 0
	if idx, ok := m.state.Index(); ok && idx < len(m.state.Records) {
		savedPlan = m.state.Records[idx].PlannedSeconds
	}
	m.state.Records = ReconcileLedger(m.state.Records, m.agenda)

	idx, ok := m.state.Index()
	if !ok {
		return m
	}
	if idx >= len(m.agenda) {
		m.clearToNotStarted()
		return m
	}
	if savedPlan > 0 && savedPlan != m.agenda[idx].PlannedSeconds() {
		m.rescaleActive(idx, savedPlan)
	}
	return m
}

func (m *Machine) State() State {
	return m.state.Clone()
}

func (m *Machine) Agenda() agendadomain.Definition {
	return m.agenda.Clone()
}

// DrainCues returns the cues raised since the last call, oldest first.
func (m *Machine) DrainCues() []agendadomain.CueKind {
	out := m.cues
	m.cues = nil
	return out
}

func (m *Machine) emit(kind agendadomain.CueKind) {
	m.cues = append(m.cues, kind)
}

func (m *Machine) Start() error {
	if len(m.agenda) == 0 {
		return agendadomain.ErrEmptyAgenda
	}
	first := 0
	m.state = State{
		CurrentIndex:    &first,
		TimeLeftSeconds: m.agenda[0].PlannedSeconds(),
		Running:         true,
		Records:         NewLedger(m.agenda),
	}
	m.emit(agendadomain.CueStart)
	return nil
}

// Tick accounts elapsed whole seconds against the active item. It does
// nothing while paused or when no item is active.
func (m *Machine) Tick(elapsed int) {
	idx, ok := m.state.Index()
	if !ok || !m.state.Running || elapsed <= 0 {
		return
	}
	rec := &m.state.Records[idx]
	m.state.TotalElapsedSeconds += elapsed
	rec.ActualSeconds += elapsed
	rec.settle()
	if rec.ActualSeconds > rec.PlannedSeconds {
		entering := !m.state.IsOvertime
		m.state.IsOvertime = true
		m.state.OvertimeSeconds = rec.OvertimeSeconds
		if entering {
			m.emit(agendadomain.CueTransition)
		}
	}
	if m.state.TimeLeftSeconds > 0 {
		m.state.TimeLeftSeconds = max(0, m.state.TimeLeftSeconds-elapsed)
		if m.state.TimeLeftSeconds == 0 && !m.state.IsOvertime {
			m.state.IsOvertime = true
			m.state.OvertimeSeconds = 0
			m.emit(agendadomain.CueTransition)
		}
	}
}

// TogglePauseResume flips running and reports the new value. Without an
// active item it is a no-op.
func (m *Machine) TogglePauseResume() bool {
	if _, ok := m.state.Index(); !ok {
		return false
	}
	m.state.Running = !m.state.Running
	return m.state.Running
}

func (m *Machine) SetRunning(running bool) {
	if _, ok := m.state.Index(); !ok {
		return
	}
	m.state.Running = running
}

func (m *Machine) SkipToNext() {
	idx, ok := m.state.Index()
	if !ok {
		return
	}
	m.state.Records[idx].Completed = true
	if idx == len(m.agenda)-1 {
		m.state.Running = false
		m.state.CurrentIndex = nil
		m.state.TimeLeftSeconds = 0
		m.clearOvertime()
		m.state.PendingEndDecision = true
		m.state.ManualEndAvailable = false
		m.emit(agendadomain.CueEnd)
		return
	}
	m.moveTo(idx + 1)
}

// SkipToPrevious zeroes the active record before stepping back; the earlier
// item restarts from its full planned time.
func (m *Machine) SkipToPrevious() {
	idx, ok := m.state.Index()
	if !ok || idx == 0 {
		return
	}
	m.state.Records[idx].reset()
	m.moveTo(idx - 1)
}

func (m *Machine) moveTo(idx int) {
	m.state.CurrentIndex = &idx
	m.state.TimeLeftSeconds = m.agenda[idx].PlannedSeconds()
	m.clearOvertime()
	m.emit(agendadomain.CueTransition)
}

func (m *Machine) Reset() {
	m.state = State{Records: NewLedger(m.agenda)}
}

// Scrub moves the active item to the given fraction of its planned time.
// Scrubbing never enters overtime: only a tick past the plan does.
func (m *Machine) Scrub(fraction float64) {
	idx, ok := m.state.Index()
	if !ok {
		return
	}
	if math.IsNaN(fraction) {
		return
	}
	fraction = math.Min(1, math.Max(0, fraction))
	rec := &m.state.Records[idx]
	planned := rec.PlannedSeconds
	timeLeft := int(math.Round(float64(planned) * (1 - fraction)))
	timeLeft = min(planned, max(0, timeLeft))

	previous := rec.ActualSeconds
	rec.ActualSeconds = planned - timeLeft
	rec.settle()
	m.state.TotalElapsedSeconds = max(0, m.state.TotalElapsedSeconds+rec.ActualSeconds-previous)
	m.state.TimeLeftSeconds = timeLeft
	m.state.IsOvertime = rec.ActualSeconds > planned
	m.state.OvertimeSeconds = rec.OvertimeSeconds
}

// Decide resolves the gate raised when the agenda ran out. Ending now
// returns the frozen summary ledger; otherwise manual control begins.
func (m *Machine) Decide(endNow bool) (Summary, bool, error) {
	if !m.state.PendingEndDecision {
		return Summary{}, false, apperrors.ErrNoDecisionPending
	}
	m.state.PendingEndDecision = false
	if !endNow {
		m.state.ManualEndAvailable = true
		return Summary{}, false, nil
	}
	return m.end(), true, nil
}

func (m *Machine) EndManually() (Summary, error) {
	if !m.state.ManualEndAvailable {
		return Summary{}, apperrors.ErrManualEndUnavailable
	}
	return m.end(), nil
}

func (m *Machine) end() Summary {
	summary := Summary{
		Agenda:              m.agenda.Clone(),
		Records:             append([]ItemRecord(nil), m.state.Records...),
		TotalElapsedSeconds: m.state.TotalElapsedSeconds,
	}
	m.state.MeetingCompleted = true
	m.state.PendingEndDecision = false
	m.state.ManualEndAvailable = false
	m.state.Running = false
	m.state.TotalElapsedSeconds = 0
	return summary
}

// OnAgendaEdited swaps in an edited agenda. A changed plan for the active
// item keeps the fraction already used; an active index that no longer
// exists clears the machine to not started.
func (m *Machine) OnAgendaEdited(next agendadomain.Definition) {
	previous := m.agenda
	m.agenda = next.Clone()
	m.state.Records = ReconcileLedger(m.state.Records, m.agenda)

	idx, ok := m.state.Index()
	if !ok {
		return
	}
	if idx >= len(m.agenda) {
		m.clearToNotStarted()
		return
	}
	if idx >= len(previous) || previous[idx].Minutes == m.agenda[idx].Minutes {
		return
	}
	m.rescaleActive(idx, previous[idx].PlannedSeconds())
}

// rescaleActive moves the active item from oldPlanned to its current plan,
// keeping the fraction of time already used.
func (m *Machine) rescaleActive(idx, oldPlanned int) {
	used := (float64(oldPlanned) - float64(m.state.TimeLeftSeconds)) / float64(oldPlanned)
	timeLeft := int(math.Round(float64(m.agenda[idx].PlannedSeconds()) * (1 - used)))
	m.state.TimeLeftSeconds = max(1, timeLeft)

	rec := m.state.Records[idx]
	m.state.IsOvertime = rec.ActualSeconds > rec.PlannedSeconds
	m.state.OvertimeSeconds = rec.OvertimeSeconds
}

func (m *Machine) clearOvertime() {
	m.state.IsOvertime = false
	m.state.OvertimeSeconds = 0
}

func (m *Machine) clearToNotStarted() {
	m.state.CurrentIndex = nil
	m.state.TimeLeftSeconds = 0
	m.state.Running = false
	m.clearOvertime()
}
