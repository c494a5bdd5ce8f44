package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"countdown/internal/bootstrap"
	agendadto "countdown/internal/modules/agenda/dto"
	timerdomain "countdown/internal/modules/timer/domain"
	"countdown/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	dataDir  string
	session  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "countdown",
		Short:         "Meeting agenda countdown timer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.dataDir, "data-dir", "", "data directory (default $COUNTDOWN_DATA_DIR or the user config dir)")
	root.PersistentFlags().StringVar(&flags.session, "session", "", "sync session id (default $COUNTDOWN_SESSION)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "debug|info|warn|error")

	root.AddCommand(newRunCmd(flags))
	root.AddCommand(newPopoutCmd(flags))
	root.AddCommand(newStatusCmd(flags))
	root.AddCommand(newSendCmd(flags))
	root.AddCommand(newAgendaCmd(flags))
	root.AddCommand(newTemplateCmd(flags))
	root.AddCommand(newHistoryCmd(flags))
	root.AddCommand(newSummaryCmd(flags))
	root.AddCommand(newSessionCmd(flags))
	root.AddCommand(newExportCmd(flags))
	return root
}

func loadApp(flags *rootFlags, interactive bool) (*bootstrap.App, error) {
	cfg, err := config.FromEnv(flags.dataDir)
	if err != nil {
		return nil, err
	}
	if flags.session != "" {
		cfg.SessionID = flags.session
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	return bootstrap.New(cfg, interactive)
}

// withApp runs fn against a freshly wired app and closes it afterwards.
func withApp(flags *rootFlags, interactive bool, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := loadApp(flags, interactive)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runErr := fn(ctx, app)
	if err := app.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the primary timer view",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(flags, true, func(ctx context.Context, app *bootstrap.App) error {
				return app.RunPrimary(ctx)
			})
		},
	}
}

func newPopoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "popout",
		Short: "Follow a running primary view in a compact window",
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(flags, true, func(ctx context.Context, app *bootstrap.App) error {
				return app.RunPopout(ctx)
			})
		},
	}
}

func newStatusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session's current timer state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				view, found, err := app.Status(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !found {
					_, _ = fmt.Fprintf(out, "session %s has no published state\n", app.Config().SessionID)
					return nil
				}
				_, _ = fmt.Fprintf(out, "session: %s\nphase: %s\nrunning: %t\n", app.Config().SessionID, view.Phase, view.Running)
				if view.CurrentIndex >= 0 {
					_, _ = fmt.Fprintf(out, "item: %d/%d %s\n", view.CurrentIndex+1, len(view.Items), view.CurrentTitle)
				}
				if view.IsOvertime {
					_, _ = fmt.Fprintf(out, "overtime: %s\n", clock(view.OvertimeSeconds))
				} else {
					_, _ = fmt.Fprintf(out, "time left: %s\n", clock(view.TimeLeftSeconds))
				}
				_, _ = fmt.Fprintf(out, "elapsed: %s of %s planned\n", clock(view.TotalElapsedSeconds), clock(view.TotalPlannedSeconds))
				if view.PendingEndDecision {
					_, _ = fmt.Fprintln(out, "waiting for end-of-meeting decision")
				}
				return nil
			})
		},
	}
}

func newSendCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "send <pause|resume|next|previous|reset>",
		Short:     "Send a control command to the session's primary view",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"pause", "resume", "next", "previous", "reset"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				session := app.Config().SessionID
				if err := app.SyncCLI.Send(ctx, session, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sent %s to session %s\n", strings.ToLower(args[0]), session)
				return nil
			})
		},
	}
}

func newAgendaCmd(flags *rootFlags) *cobra.Command {
	agenda := &cobra.Command{Use: "agenda", Short: "Show and edit the meeting agenda"}

	agenda.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the current agenda",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				settings, err := app.AgendaCLI.Settings(ctx)
				if err != nil {
					return err
				}
				printSettings(cmd, settings)
				return nil
			})
		},
	})

	var title string
	var items []string
	set := &cobra.Command{
		Use:   "set [--title <text>] [--item <title:minutes[:color]>...]",
		Short: "Replace the meeting title and/or the whole agenda",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(title) == "" && len(items) == 0 {
				return fmt.Errorf("--title or --item is required")
			}
			var inputs []agendadto.ItemInput
			for _, raw := range items {
				item, err := parseItemSpec(raw)
				if err != nil {
					return err
				}
				inputs = append(inputs, item)
			}
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				change, err := app.AgendaCLI.Update(ctx, title, inputs)
				if err != nil {
					return err
				}
				printSettings(cmd, agendadto.NewSettingsOutput(change.Current))
				return nil
			})
		},
	}
	set.Flags().StringVar(&title, "title", "", "meeting title")
	set.Flags().StringArrayVar(&items, "item", nil, "agenda item as title:minutes[:color], repeatable")
	agenda.AddCommand(set)

	var addColor string
	add := &cobra.Command{
		Use:   "add <title> <minutes>",
		Short: "Append an agenda item",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("minutes must be a number: %w", err)
			}
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				change, err := app.AgendaCLI.AddItem(ctx, args[0], minutes, addColor)
				if err != nil {
					return err
				}
				printSettings(cmd, agendadto.NewSettingsOutput(change.Current))
				return nil
			})
		},
	}
	add.Flags().StringVar(&addColor, "color", "", "item color")
	agenda.AddCommand(add)

	var editTitle, editColor string
	var editMinutes int
	edit := &cobra.Command{
		Use:   "edit <position>",
		Short: "Change the title, minutes or color of one item (color none clears it)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("position must be a number: %w", err)
			}
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				change, err := app.AgendaCLI.SetItem(ctx, position, editTitle, editMinutes, editColor)
				if err != nil {
					return err
				}
				printSettings(cmd, agendadto.NewSettingsOutput(change.Current))
				return nil
			})
		},
	}
	edit.Flags().StringVar(&editTitle, "title", "", "new title")
	edit.Flags().IntVar(&editMinutes, "minutes", 0, "new planned minutes")
	edit.Flags().StringVar(&editColor, "color", "", "new color, or none")
	agenda.AddCommand(edit)

	agenda.AddCommand(&cobra.Command{
		Use:   "remove <position>",
		Short: "Remove an agenda item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			position, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("position must be a number: %w", err)
			}
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				change, err := app.AgendaCLI.RemoveItem(ctx, position)
				if err != nil {
					return err
				}
				printSettings(cmd, agendadto.NewSettingsOutput(change.Current))
				return nil
			})
		},
	})
	return agenda
}

func newTemplateCmd(flags *rootFlags) *cobra.Command {
	template := &cobra.Command{Use: "template", Short: "Saved agenda templates"}

	template.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				templates, err := app.AgendaCLI.ListTemplates(ctx)
				if err != nil {
					return err
				}
				if len(templates) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no templates")
					return nil
				}
				for _, t := range templates {
					marker := " "
					if t.Active {
						marker = "*"
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\t%d items\t%d min\n", marker, t.ID, t.Name, t.Items, t.Minutes)
				}
				return nil
			})
		},
	})

	template.AddCommand(&cobra.Command{
		Use:   "save <name>",
		Short: "Save the current agenda as a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.AgendaCLI.SaveTemplate(ctx, args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved template %s (%s)\n", out.Name, out.ID)
				return nil
			})
		},
	})

	template.AddCommand(&cobra.Command{
		Use:   "load <id>",
		Short: "Replace the agenda with a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				change, err := app.AgendaCLI.LoadTemplate(ctx, args[0])
				if err != nil {
					return err
				}
				printSettings(cmd, agendadto.NewSettingsOutput(change.Current))
				return nil
			})
		},
	})

	template.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				if err := app.AgendaCLI.DeleteTemplate(ctx, args[0]); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted template %s\n", args[0])
				return nil
			})
		},
	})
	return template
}

func newHistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int
	history := &cobra.Command{
		Use:   "history",
		Short: "List ended meetings, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				meetings, err := app.TimerCLI.History(ctx, limit)
				if err != nil {
					return err
				}
				if len(meetings) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no meetings")
					return nil
				}
				for _, m := range meetings {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d/%d items\t%s elapsed\t+%s over\n",
						m.MeetingID, m.EndedAt.Local().Format("2006-01-02 15:04"), m.Title,
						m.CompletedItems, m.Items, clock(m.TotalElapsedSeconds), clock(m.TotalOvertimeSeconds))
				}
				return nil
			})
		},
	}
	history.Flags().IntVar(&limit, "limit", 20, "maximum meetings to list")
	return history
}

func newSummaryCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary [meeting-id]",
		Short: "Print a meeting summary (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.TimerCLI.Summary(ctx, firstArg(args))
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Text)
				if out.Meeting.ArchivePath != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "archive: %s\n", out.Meeting.ArchivePath)
				}
				return nil
			})
		},
	}
}

func newSessionCmd(flags *rootFlags) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Sync sessions shared by primary and pop-out views"}

	session.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List sessions with published state",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				sessions, err := app.SyncCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no sessions")
					return nil
				}
				for _, s := range sessions {
					item := "-"
					if s.CurrentIndex >= 0 {
						item = fmt.Sprintf("%d/%d", s.CurrentIndex+1, s.Items)
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", s.ID, s.Phase, item, s.LastUpdated.Local().Format(time.RFC3339))
				}
				return nil
			})
		},
	})

	session.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Print a fresh session id",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), app.SyncCLI.New(ctx))
				return nil
			})
		},
	})

	var olderThan time.Duration
	prune := &cobra.Command{
		Use:   "prune",
		Short: "Delete sessions not updated recently",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				out, err := app.SyncCLI.Prune(ctx, olderThan)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d sessions\n", out.Removed)
				return nil
			})
		},
	}
	prune.Flags().DurationVar(&olderThan, "older-than", 24*time.Hour, "age after which a session is stale")
	session.AddCommand(prune)
	return session
}

func newExportCmd(flags *rootFlags) *cobra.Command {
	export := &cobra.Command{Use: "export", Short: "Summary exporters"}

	export.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured exporters",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				exporters, err := app.ExportCLI.List(ctx)
				if err != nil {
					return err
				}
				if len(exporters) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no exporters configured")
					return nil
				}
				for _, e := range exporters {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s kind=%s enabled=%t", e.Name, e.Kind, e.Enabled)
					if e.Version != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " version=%s", e.Version)
					}
					if e.Target != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " target=%s", e.Target)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})

	export.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Validate exporter plugin checksums and lifecycle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				results, err := app.ExportCLI.Doctor(ctx)
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no plugins configured")
					return nil
				}
				for _, r := range results {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s checksum=%t binary=%t lifecycle=%t", r.Name, r.ChecksumValid, r.BinaryReachable, r.LifecycleOK)
					if r.Error != "" {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), " error=%q", r.Error)
					}
					_, _ = fmt.Fprintln(cmd.OutOrStdout())
				}
				return nil
			})
		},
	})

	export.AddCommand(&cobra.Command{
		Use:   "send [meeting-id]",
		Short: "Send an archived meeting through every exporter (latest by default)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(flags, false, func(ctx context.Context, app *bootstrap.App) error {
				results, err := app.ExportMeeting(ctx, firstArg(args))
				for _, r := range results {
					if r.OK {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s ok\n", r.Exporter)
						continue
					}
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s failed: %s\n", r.Exporter, r.Error)
				}
				if err != nil {
					return err
				}
				if len(results) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no exporters configured")
				}
				return nil
			})
		},
	})
	return export
}

func printSettings(cmd *cobra.Command, settings agendadto.SettingsOutput) {
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s (%d min)\n", settings.Title, settings.TotalMinutes)
	for _, item := range settings.Items {
		_, _ = fmt.Fprintf(out, "%2d. %s\t%d min", item.Position, item.Title, item.Minutes)
		if item.Color != "" {
			_, _ = fmt.Fprintf(out, "\t%s", item.Color)
		}
		_, _ = fmt.Fprintln(out)
	}
}

// parseItemSpec reads title:minutes[:color]. The title may itself contain
// colons; minutes and color are taken from the right.
func parseItemSpec(raw string) (agendadto.ItemInput, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 {
		return agendadto.ItemInput{}, fmt.Errorf("item %q: want title:minutes[:color]", raw)
	}
	color := ""
	if _, err := strconv.Atoi(parts[len(parts)-1]); err != nil && len(parts) >= 3 {
		color = parts[len(parts)-1]
		parts = parts[:len(parts)-1]
	}
	minutes, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil {
		return agendadto.ItemInput{}, fmt.Errorf("item %q: minutes must be a number", raw)
	}
	return agendadto.ItemInput{
		Title:   strings.Join(parts[:len(parts)-1], ":"),
		Minutes: minutes,
		Color:   color,
	}, nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func clock(seconds int) string {
	return timerdomain.FormatClock(seconds)
}
