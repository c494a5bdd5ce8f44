package bootstrap

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	agendainadapter "countdown/internal/modules/agenda/adapter/in"
	agendaoutadapter "countdown/internal/modules/agenda/adapter/out"
	agendain "countdown/internal/modules/agenda/port/in"
	agendaservice "countdown/internal/modules/agenda/service"
	agendausecase "countdown/internal/modules/agenda/usecase"
	exportinadapter "countdown/internal/modules/export/adapter/in"
	exportoutadapter "countdown/internal/modules/export/adapter/out"
	exportdto "countdown/internal/modules/export/dto"
	exportin "countdown/internal/modules/export/port/in"
	exportout "countdown/internal/modules/export/port/out"
	exportservice "countdown/internal/modules/export/service"
	exportusecase "countdown/internal/modules/export/usecase"
	timerinadapter "countdown/internal/modules/timer/adapter/in"
	timeroutadapter "countdown/internal/modules/timer/adapter/out"
	timerdto "countdown/internal/modules/timer/dto"
	timerin "countdown/internal/modules/timer/port/in"
	timerout "countdown/internal/modules/timer/port/out"
	timerservice "countdown/internal/modules/timer/service"
	timerusecase "countdown/internal/modules/timer/usecase"
	syncinadapter "countdown/internal/modules/viewsync/adapter/in"
	syncoutadapter "countdown/internal/modules/viewsync/adapter/out"
	syncservice "countdown/internal/modules/viewsync/service"
	syncusecase "countdown/internal/modules/viewsync/usecase"
	"countdown/internal/platform/clock"
	"countdown/internal/platform/config"
	"countdown/internal/platform/id"
	"countdown/internal/platform/logging"
	uiapp "countdown/internal/ui/app"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	AgendaCLI agendainadapter.CLIHandler
	TimerCLI  timerinadapter.CLIHandler
	SyncCLI   syncinadapter.CLIHandler
	ExportCLI exportinadapter.CLIHandler

	cfg     config.Config
	log     *slog.Logger
	clock   clock.Clock
	store   *syncoutadapter.FileStore
	primary *syncservice.Primary
	engine  *timerservice.Engine
	index   *timeroutadapter.SQLiteMeetingIndex
	agenda  agendain.Usecase
	timer   timerin.Usecase
	export  exportin.Usecase
	logFile *os.File
}

// New wires every module against cfg. Interactive apps log to cfg.LogPath so
// the terminal stays owned by the UI.
func New(cfg config.Config, interactive bool) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	var logOut io.Writer = os.Stderr
	var logFile *os.File
	if interactive {
		f, err := openLogFile(cfg.LogPath)
		if err != nil {
			return nil, err
		}
		logFile = f
		logOut = f
	}
	logger := logging.New(logOut, cfg.LogLevel)

	agendaUC := agendausecase.NewInteractor(agendaservice.NewAgendaService(
		clk,
		ids,
		agendaoutadapter.NewYAMLSettingsStore(cfg.SettingsPath),
		agendaoutadapter.NewYAMLTemplateStore(cfg.TemplatesPath),
		agendaoutadapter.NewYAMLSettingsWatcher(cfg.SettingsPath),
	))

	store, err := syncoutadapter.NewFileStore(cfg.StoreDir)
	if err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("new sync store: %w", err)
	}
	primary := syncservice.NewPrimary(store, clk, cfg.SessionID, logger)
	syncUC := syncusecase.NewInteractor(syncservice.NewSessionService(store, clk, ids, logger), store, clk, logger)

	index, err := timeroutadapter.NewSQLiteMeetingIndex(cfg.DBPath)
	if err != nil {
		closeQuietly(logFile)
		return nil, fmt.Errorf("new meeting index: %w", err)
	}

	exporters := []exportout.Exporter{}
	if cfg.WebhookURL != "" {
		webhook, err := exportoutadapter.NewWebhookExporter(exportoutadapter.WebhookConfig{URL: cfg.WebhookURL})
		if err != nil {
			_ = index.Close()
			closeQuietly(logFile)
			return nil, fmt.Errorf("new webhook exporter: %w", err)
		}
		exporters = append(exporters, webhook)
	}
	exportUC := exportusecase.NewInteractor(exportservice.NewExportService(
		exportoutadapter.NewFileManifestStore(cfg.PluginsPath),
		exportoutadapter.NewGRPCHost(logOut),
		exporters,
		logger,
	))

	var cues timerout.CuePlayer = timeroutadapter.NopPlayer{}
	if cfg.SoundEnabled && interactive {
		cues = timeroutadapter.NewBellPlayer(os.Stderr)
	}
	engine := timerservice.NewEngine(clk, ids, primary, cues, logger)
	timerUC := timerusecase.NewInteractor(
		engine,
		timeroutadapter.NewMarkdownSummaryArchive(cfg.SummariesDir),
		index,
		exportUC,
		logger,
	)

	return &App{
		AgendaCLI: agendainadapter.NewCLIHandler(agendaUC),
		TimerCLI:  timerinadapter.NewCLIHandler(timerUC),
		SyncCLI:   syncinadapter.NewCLIHandler(syncUC),
		ExportCLI: exportinadapter.NewCLIHandler(exportUC),
		cfg:       cfg,
		log:       logger,
		clock:     clk,
		store:     store,
		primary:   primary,
		engine:    engine,
		index:     index,
		agenda:    agendaUC,
		timer:     timerUC,
		export:    exportUC,
		logFile:   logFile,
	}, nil
}

func (a *App) Config() config.Config {
	return a.cfg
}

func (a *App) Close() error {
	err := a.index.Close()
	closeQuietly(a.logFile)
	return err
}

// Status projects the session's published state onto the saved agenda. The
// bool is false when no primary has published yet.
func (a *App) Status(ctx context.Context) (timerdto.View, bool, error) {
	status, err := a.SyncCLI.Status(ctx, a.cfg.SessionID)
	if err != nil {
		return timerdto.View{}, false, err
	}
	settings, err := a.agenda.GetSettings(ctx)
	if err != nil {
		return timerdto.View{}, false, fmt.Errorf("load settings: %w", err)
	}
	return timerdto.NewView(settings.Title, settings.Agenda, status.State), status.Found, nil
}

// ExportMeeting sends an archived meeting, or the latest one when meetingID
// is empty, through every exporter and waits for the results.
func (a *App) ExportMeeting(ctx context.Context, meetingID string) ([]exportdto.ExportResult, error) {
	entry, err := a.index.Get(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return a.export.Export(ctx, entry.Summary)
}

// RunPrimary restores the session, runs the timer, the command follower and
// the settings follower, and blocks on the primary view until the user quits.
func (a *App) RunPrimary(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	settings, err := a.agenda.GetSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	a.engine.Load(ctx, settings)
	updates := a.engine.Subscribe(8)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.engine.Run(ctx, a.cfg.TickInterval)
	}()
	go func() {
		defer wg.Done()
		a.followSettings(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := a.primary.Run(ctx, a.timer); err != nil {
			a.log.Error("follow commands", "session", a.cfg.SessionID, "error", err)
		}
	}()
	a.log.Info("primary view started", "session", a.cfg.SessionID)

	model := uiapp.NewPrimary(ctx, a.timer, a.agenda, updates, a.cfg.SessionID)
	_, runErr := tea.NewProgram(model, tea.WithAltScreen()).Run()
	cancel()
	wg.Wait()

	closeCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	a.primary.Close(closeCtx)
	if err := a.export.Wait(closeCtx); err != nil {
		a.log.Warn("exports still running at shutdown", "error", err)
	}
	return runErr
}

// followSettings applies agenda and template changes written to the settings
// file by other processes, such as the agenda and template commands.
func (a *App) followSettings(ctx context.Context) {
	changes, err := a.agenda.WatchSettings(ctx)
	if err != nil {
		a.log.Warn("watch settings", "path", a.cfg.SettingsPath, "error", err)
		return
	}
	// Catch an edit written between the initial load and the watch.
	if settings, err := a.agenda.GetSettings(ctx); err == nil {
		a.timer.SettingsChanged(ctx, settings)
	}
	for settings := range changes {
		if _, applied := a.timer.SettingsChanged(ctx, settings); applied {
			a.log.Debug("settings reloaded", "path", a.cfg.SettingsPath)
		}
	}
}

// RunPopout follows the session's primary until the user quits or the
// primary closes.
func (a *App) RunPopout(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	mirror := syncservice.NewMirror(a.store, a.clock, a.cfg.SessionID, a.log)
	if err := mirror.Refresh(ctx); err != nil {
		a.log.Warn("load session state", "session", a.cfg.SessionID, "error", err)
	}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := mirror.Run(ctx); err != nil {
			a.log.Error("follow primary", "session", a.cfg.SessionID, "error", err)
		}
	}()

	model := uiapp.NewPopout(ctx, mirror, a.agenda, a.cfg.SessionID)
	_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	cancel()
	wg.Wait()
	return err
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func closeQuietly(f *os.File) {
	if f != nil {
		_ = f.Close()
	}
}
