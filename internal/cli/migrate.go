package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Freeeeeet/lesson_scheduler/internal/app"
)

func (a *App) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|version]",
		Short:     "Apply or roll back database migrations",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			return a.withApp(cmd.Context(), func(deps *app.App) error {
				migrator, err := deps.Migrator()
				if err != nil {
					return err
				}
				defer migrator.Close()

				switch action {
				case "down":
					return migrator.Down(cmd.Context())
				case "version":
					version, err := migrator.Version(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
					return nil
				default:
					return migrator.Up(cmd.Context())
				}
			})
		},
	}
}
