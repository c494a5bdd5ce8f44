package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	agendadomain "countdown/internal/modules/agenda/domain"
	timerdomain "countdown/internal/modules/timer/domain"
	timerdto "countdown/internal/modules/timer/dto"
	syncdomain "countdown/internal/modules/viewsync/domain"
	"countdown/internal/ui/theme"
)

// MirrorPort is the pop-out's read-only copy of the primary state plus its
// command channel back.
type MirrorPort interface {
	State() (timerdomain.State, int64)
	Updates() <-chan timerdomain.State
	Closed() <-chan struct{}
	Issue(ctx context.Context, kind syncdomain.CommandKind) error
}

type SettingsPort interface {
	GetSettings(ctx context.Context) (agendadomain.Settings, error)
}

type mirrorMsg struct {
	view        timerdto.View
	lastUpdated int64
	err         error
}

type issuedMsg struct {
	kind syncdomain.CommandKind
	err  error
}

type stateChangedMsg struct{}

type primaryClosedMsg struct{}

// Popout renders the mirrored state and forwards the basic controls to the
// primary view as commands.
type Popout struct {
	ctx      context.Context
	mirror   MirrorPort
	settings SettingsPort
	session  string

	view        timerdto.View
	lastUpdated int64
	keys        popoutKeys
	help        help.Model
	bar         progress.Model
	status      string
	width       int
}

func NewPopout(ctx context.Context, mirror MirrorPort, settings SettingsPort, session string) Popout {
	return Popout{
		ctx:      ctx,
		mirror:   mirror,
		settings: settings,
		session:  session,
		keys:     defaultPopoutKeys(),
		help:     help.New(),
		bar:      newBar(),
		status:   "waiting for the primary view",
	}
}

func (m Popout) Init() tea.Cmd {
	return tea.Batch(m.snapshotCmd(), m.waitForMirror(), m.waitForClose())
}

func (m Popout) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case mirrorMsg:
		if msg.err != nil {
			m.status = "settings: " + msg.err.Error()
			return m, nil
		}
		m.view = msg.view
		m.lastUpdated = msg.lastUpdated
		if m.lastUpdated > 0 {
			m.status = "synced " + time.UnixMilli(m.lastUpdated).Format("15:04:05")
		}
		return m, nil

	case stateChangedMsg:
		return m, tea.Batch(m.snapshotCmd(), m.waitForMirror())

	case issuedMsg:
		if msg.err != nil {
			m.status = "send " + string(msg.kind) + ": " + msg.err.Error()
		} else {
			m.status = "sent " + string(msg.kind)
		}
		return m, nil

	case primaryClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Pause):
			// The primary drops a pause while paused and a resume while
			// running.
			if m.view.Running {
				return m, m.issueCmd(syncdomain.CommandPause)
			}
			return m, m.issueCmd(syncdomain.CommandResume)
		case key.Matches(msg, m.keys.Next):
			return m, m.issueCmd(syncdomain.CommandNext)
		case key.Matches(msg, m.keys.Previous):
			return m, m.issueCmd(syncdomain.CommandPrevious)
		case key.Matches(msg, m.keys.Reset):
			return m, m.issueCmd(syncdomain.CommandReset)
		}
	}
	return m, nil
}

func (m Popout) View() string {
	body := renderTimer(m.view, m.bar, m.width, "pop-out · session "+m.session)
	return lipgloss.JoinVertical(lipgloss.Left, body, "", theme.Muted.Render(m.status), m.help.View(m.keys))
}

func (m Popout) snapshotCmd() tea.Cmd {
	ctx, mirror, settings := m.ctx, m.mirror, m.settings
	return func() tea.Msg {
		state, lastUpdated := mirror.State()
		s, err := settings.GetSettings(ctx)
		if err != nil {
			return mirrorMsg{err: err}
		}
		return mirrorMsg{view: timerdto.NewView(s.Title, s.Agenda, state), lastUpdated: lastUpdated}
	}
}

func (m Popout) waitForMirror() tea.Cmd {
	updates := m.mirror.Updates()
	return func() tea.Msg {
		if _, ok := <-updates; !ok {
			return primaryClosedMsg{}
		}
		return stateChangedMsg{}
	}
}

func (m Popout) waitForClose() tea.Cmd {
	closed := m.mirror.Closed()
	return func() tea.Msg {
		<-closed
		return primaryClosedMsg{}
	}
}

func (m Popout) issueCmd(kind syncdomain.CommandKind) tea.Cmd {
	ctx, mirror := m.ctx, m.mirror
	return func() tea.Msg {
		return issuedMsg{kind: kind, err: mirror.Issue(ctx, kind)}
	}
}
