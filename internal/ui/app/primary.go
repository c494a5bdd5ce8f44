package app

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	agendadto "countdown/internal/modules/agenda/dto"
	timerdomain "countdown/internal/modules/timer/domain"
	timerdto "countdown/internal/modules/timer/dto"
	"countdown/internal/ui/components"
	"countdown/internal/ui/theme"
)

const scrubStep = 0.05

// TimerPort is what the primary view needs from the timer use-case.
type TimerPort interface {
	View(ctx context.Context) timerdto.View
	Start(ctx context.Context) (timerdto.View, error)
	TogglePause(ctx context.Context) timerdto.View
	Next(ctx context.Context) timerdto.View
	Previous(ctx context.Context) timerdto.View
	Reset(ctx context.Context) timerdto.View
	BeginScrub(ctx context.Context) timerdto.View
	Scrub(ctx context.Context, fraction float64) timerdto.View
	EndScrub(ctx context.Context) timerdto.View
	Decide(ctx context.Context, endNow bool) (timerdto.View, *timerdto.SummaryOutput, error)
	EndManually(ctx context.Context) (timerdto.View, timerdto.SummaryOutput, error)
	AgendaEdited(ctx context.Context, change agendadto.SettingsChange) timerdto.View
	TemplateLoaded(ctx context.Context, change agendadto.SettingsChange) timerdto.View
}

// AgendaPort is what the edit palette needs from the agenda use-case.
type AgendaPort interface {
	UpdateSettings(ctx context.Context, input agendadto.UpdateSettingsInput) (agendadto.SettingsChange, error)
	AddItem(ctx context.Context, input agendadto.ItemInput) (agendadto.SettingsChange, error)
	SetItem(ctx context.Context, input agendadto.SetItemInput) (agendadto.SettingsChange, error)
	RemoveItem(ctx context.Context, index int) (agendadto.SettingsChange, error)
	SaveTemplate(ctx context.Context, name string) (agendadto.TemplateOutput, error)
	LoadTemplate(ctx context.Context, id string) (agendadto.SettingsChange, error)
}

type viewMsg struct {
	view   timerdto.View
	status string
	err    error
}

type summaryMsg struct {
	view timerdto.View
	out  timerdto.SummaryOutput
}

type timerUpdateMsg struct{}

type updatesClosedMsg struct{}

// Primary is the controlling view: it owns the engine's keyboard surface and
// renders every state the engine publishes.
type Primary struct {
	ctx     context.Context
	timer   TimerPort
	agenda  AgendaPort
	updates <-chan timerdomain.State
	session string

	view          timerdto.View
	keys          primaryKeys
	help          help.Model
	showHelp      bool
	palette       components.Palette
	bar           progress.Model
	scrubbing     bool
	scrubFraction float64

	summary  *timerdto.SummaryOutput
	pager    viewport.Model
	renderer *glamour.TermRenderer

	status string
	width  int
	height int
}

// NewPrimary builds the primary view. updates is the engine's subscription;
// each value only signals that the view must be refreshed.
func NewPrimary(ctx context.Context, timer TimerPort, agenda AgendaPort, updates <-chan timerdomain.State, session string) Primary {
	r, _ := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(0),
	)
	return Primary{
		ctx:      ctx,
		timer:    timer,
		agenda:   agenda,
		updates:  updates,
		session:  session,
		keys:     defaultPrimaryKeys(),
		help:     help.New(),
		palette:  components.NewPalette("Edit agenda", editHints),
		bar:      newBar(),
		pager:    viewport.New(0, 0),
		renderer: r,
		status:   "ready",
	}
}

func (m Primary) Init() tea.Cmd {
	return tea.Batch(m.refreshCmd(), m.waitForUpdate())
}

func (m Primary) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The palette takes all keys while open; other messages still reach
	// the timer view so it keeps counting underneath.
	var paletteCmd tea.Cmd
	if m.palette.Visible() {
		m.palette, paletteCmd = m.palette.Update(msg)
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, paletteCmd
		}
	}
	model, cmd := m.update(msg)
	return model, tea.Batch(paletteCmd, cmd)
}

func (m Primary) update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.palette.SetWidth(min(m.width-4, 72))
		m.pager.Width = msg.Width
		m.pager.Height = max(3, msg.Height-4)
		return m, nil

	case viewMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.view = msg.view
		if msg.status != "" {
			m.status = msg.status
		}
		return m, nil

	case summaryMsg:
		m.view = msg.view
		out := msg.out
		m.summary = &out
		m.pager.SetContent(m.renderSummary(out))
		m.pager.GotoTop()
		m.status = "meeting ended"
		return m, nil

	case timerUpdateMsg:
		return m, tea.Batch(m.refreshCmd(), m.waitForUpdate())

	case updatesClosedMsg:
		return m, tea.Quit

	case components.PaletteSubmitMsg:
		return m, m.editCmd(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Primary) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}
	if m.summary != nil {
		switch msg.String() {
		case "esc", "enter", "q":
			m.summary = nil
			return m, nil
		}
		var cmd tea.Cmd
		m.pager, cmd = m.pager.Update(msg)
		return m, cmd
	}

	if key.Matches(msg, m.keys.ScrubBack) || key.Matches(msg, m.keys.ScrubFwd) {
		if m.view.CurrentIndex < 0 {
			return m, nil
		}
		step := scrubStep
		if key.Matches(msg, m.keys.ScrubBack) {
			step = -scrubStep
		}
		begin := !m.scrubbing
		if begin {
			m.scrubbing = true
			m.scrubFraction = m.view.Progress
		}
		m.scrubFraction = max(0, min(1, m.scrubFraction+step))
		return m, m.scrubCmd(begin, m.scrubFraction)
	}

	var finishScrub tea.Cmd
	if m.scrubbing {
		m.scrubbing = false
		finishScrub = m.call(func(ctx context.Context) timerdto.View { return m.timer.EndScrub(ctx) }, "")
		if key.Matches(msg, m.keys.ScrubDone) {
			return m, finishScrub
		}
	}
	next, cmd := m.dispatch(msg)
	if finishScrub == nil {
		return next, cmd
	}
	return next, tea.Sequence(finishScrub, cmd)
}

func (m Primary) dispatch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view.PendingEndDecision {
		switch {
		case key.Matches(msg, m.keys.EndNow):
			return m, m.decideCmd(true)
		case key.Matches(msg, m.keys.KeepGoing):
			return m, m.decideCmd(false)
		}
	}
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.Palette):
		cmd := m.palette.Open()
		return m, cmd
	case key.Matches(msg, m.keys.Start):
		return m, m.startCmd()
	case key.Matches(msg, m.keys.Pause):
		return m, m.call(func(ctx context.Context) timerdto.View { return m.timer.TogglePause(ctx) }, "")
	case key.Matches(msg, m.keys.Next):
		return m, m.call(func(ctx context.Context) timerdto.View { return m.timer.Next(ctx) }, "")
	case key.Matches(msg, m.keys.Previous):
		return m, m.call(func(ctx context.Context) timerdto.View { return m.timer.Previous(ctx) }, "")
	case key.Matches(msg, m.keys.Reset):
		return m, m.call(func(ctx context.Context) timerdto.View { return m.timer.Reset(ctx) }, "timer reset")
	case key.Matches(msg, m.keys.EndManual):
		if m.view.ManualEndAvailable {
			return m, m.endManuallyCmd()
		}
	}
	return m, nil
}

func (m Primary) View() string {
	if m.summary != nil {
		header := theme.Title.Render("Meeting summary") + "  " + theme.Muted.Render("↑/↓ scroll · esc close")
		return lipgloss.JoinVertical(lipgloss.Left, header, m.pager.View())
	}
	if m.showHelp {
		return lipgloss.NewStyle().Width(m.width).Render(m.help.FullHelpView(m.keys.FullHelp()))
	}

	parts := []string{renderTimer(m.view, m.bar, m.width, "session "+m.session)}
	if prompt := m.prompt(); prompt != "" {
		parts = append(parts, "", renderPrompt(prompt))
	}
	parts = append(parts, "", theme.Muted.Render(m.status), m.help.View(m.keys))
	body := lipgloss.JoinVertical(lipgloss.Left, parts...)

	if m.palette.Visible() {
		return lipgloss.JoinVertical(lipgloss.Left, body, "", m.palette.View())
	}
	return body
}

func (m Primary) prompt() string {
	switch {
	case m.scrubbing:
		return fmt.Sprintf("Scrubbing %d%% · ←/→ adjust · enter to finish", int(m.scrubFraction*100+0.5))
	case m.view.PendingEndDecision:
		return "Agenda complete. End the meeting now? [y] end · [n] keep going"
	case m.view.ManualEndAvailable:
		return "Continuing past the agenda. Press e to end the meeting."
	}
	return ""
}

func (m Primary) renderSummary(out timerdto.SummaryOutput) string {
	md := summaryMarkdown(out)
	if m.renderer == nil {
		return md
	}
	rendered, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return rendered
}

func summaryMarkdown(out timerdto.SummaryOutput) string {
	meta := out.Meeting
	md := fmt.Sprintf("# %s\n\n*Ended %s · %d/%d items completed · %s total*\n\n```text\n%s\n```\n",
		meta.Title,
		meta.EndedAt.Local().Format("2006-01-02 15:04"),
		meta.CompletedItems, meta.Items,
		timerdomain.FormatClock(meta.TotalElapsedSeconds),
		out.Text,
	)
	if meta.ArchivePath != "" {
		md += fmt.Sprintf("\nSaved to `%s`\n", meta.ArchivePath)
	}
	return md
}

func (m Primary) waitForUpdate() tea.Cmd {
	updates := m.updates
	if updates == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return updatesClosedMsg{}
		}
		return timerUpdateMsg{}
	}
}

func (m Primary) refreshCmd() tea.Cmd {
	return m.call(func(ctx context.Context) timerdto.View { return m.timer.View(ctx) }, "")
}

func (m Primary) call(fn func(ctx context.Context) timerdto.View, status string) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return viewMsg{view: fn(ctx), status: status}
	}
}

func (m Primary) startCmd() tea.Cmd {
	ctx, timer := m.ctx, m.timer
	return func() tea.Msg {
		view, err := timer.Start(ctx)
		return viewMsg{view: view, status: "meeting started", err: err}
	}
}

func (m Primary) scrubCmd(begin bool, fraction float64) tea.Cmd {
	ctx, timer := m.ctx, m.timer
	return func() tea.Msg {
		if begin {
			timer.BeginScrub(ctx)
		}
		return viewMsg{view: timer.Scrub(ctx, fraction)}
	}
}

func (m Primary) decideCmd(endNow bool) tea.Cmd {
	ctx, timer := m.ctx, m.timer
	return func() tea.Msg {
		view, summary, err := timer.Decide(ctx, endNow)
		if err != nil {
			return viewMsg{err: err}
		}
		if summary != nil {
			return summaryMsg{view: view, out: *summary}
		}
		return viewMsg{view: view, status: "continuing past the agenda"}
	}
}

func (m Primary) endManuallyCmd() tea.Cmd {
	ctx, timer := m.ctx, m.timer
	return func() tea.Msg {
		view, summary, err := timer.EndManually(ctx)
		if err != nil {
			return viewMsg{err: err}
		}
		return summaryMsg{view: view, out: summary}
	}
}

func (m Primary) editCmd(input string) tea.Cmd {
	edit, err := parseEdit(input)
	if err != nil {
		return func() tea.Msg { return viewMsg{err: err} }
	}
	ctx, agenda, timer := m.ctx, m.agenda, m.timer
	return func() tea.Msg {
		status, err := edit.apply(ctx, agenda, timer)
		if err != nil {
			return viewMsg{err: err}
		}
		return viewMsg{view: timer.View(ctx), status: status}
	}
}
