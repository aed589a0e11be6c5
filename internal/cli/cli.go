// Package cli командная строка: миграции, просмотр доступного времени
// и работа с заявками на перенос.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Freeeeeet/lesson_scheduler/internal/app"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// Opener собирает зависимости только для команд, которым нужна база
type Opener func(ctx context.Context) (*app.App, error)

type App struct {
	open    Opener
	root    *cobra.Command
	noColor bool
}

func NewApp(open Opener) *App {
	a := &App{open: open}

	a.root = &cobra.Command{
		Use:   "lesson-scheduler",
		Short: "Lesson availability and reschedule requests",
		Long: `lesson-scheduler shows which tutor availabilities a lesson can be moved to
and manages reschedule requests between a learner and a tutor.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if a.noColor {
				DisableColor()
			}
		},
	}

	a.root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable color output")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.migrateCmd())
	a.root.AddCommand(a.slotsCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.requestCmd())
	a.root.AddCommand(a.serveCmd())

	return a
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lesson-scheduler %s (commit: %s)\n", Version, Commit)
		},
	}
}

// ExecuteContext runs the CLI with args, writing command output to out.
func (a *App) ExecuteContext(ctx context.Context, args []string, out io.Writer) error {
	a.root.SetArgs(args)
	a.root.SetOut(out)
	return a.root.ExecuteContext(ctx)
}

// withApp открывает зависимости и закрывает их после fn
func (a *App) withApp(ctx context.Context, fn func(*app.App) error) error {
	deps, err := a.open(ctx)
	if err != nil {
		return err
	}
	defer deps.Close()
	return fn(deps)
}

func parseRole(s string) (model.InitiatorRole, error) {
	role, ok := model.ParseRole(s)
	if !ok {
		return "", fmt.Errorf("unknown role %q (expected learner or tutor)", s)
	}
	return role, nil
}

// optionalID флаг со значением 0 означает "не задан"
func optionalID(id int64) *int64 {
	if id <= 0 {
		return nil
	}
	return &id
}
