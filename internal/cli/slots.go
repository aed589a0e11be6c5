package cli

import (
	"github.com/spf13/cobra"

	"github.com/Freeeeeet/lesson_scheduler/internal/app"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

func (a *App) slotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Inspect tutor availabilities",
	}
	cmd.AddCommand(a.slotsEligibleCmd())
	return cmd
}

func (a *App) slotsEligibleCmd() *cobra.Command {
	var (
		tutorID     int64
		counterpart string
		exclude     int64
		roleName    string
	)

	cmd := &cobra.Command{
		Use:   "eligible",
		Short: "List availabilities a lesson can be moved to",
		Long: `List the tutor's availabilities that are free, far enough in the future
for the initiator's role, and do not collide with the counterpart's lessons.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role, err := parseRole(roleName)
			if err != nil {
				return err
			}

			return a.withApp(cmd.Context(), func(deps *app.App) error {
				slots, err := deps.Availability.GetEligibleSlots(cmd.Context(), service.EligibleSlotsQuery{
					TutorID:           tutorID,
					CounterpartEmail:  counterpart,
					ExcludeScheduleID: optionalID(exclude),
					Role:              role,
				})
				if err != nil {
					return err
				}

				PrintAvailabilities(cmd.OutOrStdout(), slots)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&tutorID, "tutor", 0, "Tutor ID")
	cmd.Flags().StringVar(&counterpart, "counterpart", "", "Email of the party whose lessons block time")
	cmd.Flags().Int64Var(&exclude, "exclude-schedule", 0, "Schedule being moved")
	cmd.Flags().StringVar(&roleName, "role", "learner", "Initiator role: learner or tutor")
	_ = cmd.MarkFlagRequired("tutor")
	return cmd
}
