package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Freeeeeet/lesson_scheduler/internal/app"
)

func (a *App) serveCmd() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run background jobs until interrupted",
		Long: `Run the stale request cleanup on the JANITOR_SCHEDULE cron schedule:
pending requests whose new time has already started are cancelled.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.withApp(ctx, func(deps *app.App) error {
				if migrate {
					migrator, err := deps.Migrator()
					if err != nil {
						return err
					}
					err = migrator.Up(ctx)
					migrator.Close()
					if err != nil {
						return err
					}
				}

				scheduler := deps.Scheduler()
				if err := scheduler.Start(ctx); err != nil {
					return err
				}

				<-ctx.Done()
				scheduler.Stop()
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", true, "Apply migrations before start")
	return cmd
}
