package cli

import (
	"github.com/spf13/cobra"

	"github.com/Freeeeeet/lesson_scheduler/internal/app"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

func (a *App) weekCmd() *cobra.Command {
	var (
		tutorID     int64
		counterpart string
		offset      int
		selected    int64
		exclude     int64
		roleName    string
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the tutor's week grid",
		Long: `Display a Monday to Sunday grid of the tutor's time slots with every cell
classified: unavailable, booked, too close, busy for the counterpart, free or selected.

Use --offset to move between weeks (-1 previous, 1 next).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := parseRole(roleName)
			if err != nil {
				return err
			}

			return a.withApp(cmd.Context(), func(deps *app.App) error {
				grid, err := deps.Availability.ClassifyWeekGrid(cmd.Context(), service.WeekGridQuery{
					WeekOffset:             offset,
					TutorID:                tutorID,
					CounterpartEmail:       counterpart,
					SelectedAvailabilityID: optionalID(selected),
					ExcludeScheduleID:      optionalID(exclude),
					Role:                   role,
				})
				if err != nil {
					return err
				}

				PrintWeekGrid(cmd.OutOrStdout(), grid)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&tutorID, "tutor", 0, "Tutor ID")
	cmd.Flags().StringVar(&counterpart, "counterpart", "", "Email of the party whose lessons block time")
	cmd.Flags().IntVar(&offset, "offset", 0, "Week offset from the current week")
	cmd.Flags().Int64Var(&selected, "selected", 0, "Highlight this availability")
	cmd.Flags().Int64Var(&exclude, "exclude-schedule", 0, "Schedule being moved")
	cmd.Flags().StringVar(&roleName, "role", "learner", "Initiator role: learner or tutor")
	_ = cmd.MarkFlagRequired("tutor")
	return cmd
}
