package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Freeeeeet/lesson_scheduler/internal/app"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

func (a *App) requestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "request",
		Short: "Manage lesson reschedule requests",
	}
	cmd.AddCommand(a.requestSubmitCmd())
	cmd.AddCommand(a.requestResolveCmd())
	cmd.AddCommand(a.requestListCmd())
	cmd.AddCommand(a.requestShowCmd())
	return cmd
}

func (a *App) requestSubmitCmd() *cobra.Command {
	var (
		in     service.SubmitChangeRequest
		reason string
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Ask the other party to move a lesson",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("reason") {
				in.Reason = &reason
			}

			return a.withApp(cmd.Context(), func(deps *app.App) error {
				req, err := deps.ChangeRequests.Submit(cmd.Context(), in)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatSuccess("Request created"))
				PrintChangeRequests(cmd.OutOrStdout(), []*model.ScheduleChangeRequest{req})
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&in.ScheduleID, "schedule", 0, "Schedule to move")
	cmd.Flags().StringVar(&in.RequesterEmail, "from", "", "Requester email")
	cmd.Flags().StringVar(&in.RequestedToEmail, "to", "", "Email of the party who decides")
	cmd.Flags().Int64Var(&in.OldAvailabilityID, "old", 0, "Current availability of the schedule")
	cmd.Flags().Int64Var(&in.NewAvailabilityID, "new", 0, "Target availability")
	cmd.Flags().StringVar(&reason, "reason", "", "Optional reason")
	for _, name := range []string{"schedule", "from", "to", "old", "new"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func (a *App) requestResolveCmd() *cobra.Command {
	var (
		id      int64
		outcome string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Approve, reject or cancel a pending request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			status := model.ChangeRequestStatus(outcome)
			if !status.IsTerminal() {
				return fmt.Errorf("unknown outcome %q (expected approved, rejected or cancelled)", outcome)
			}

			return a.withApp(cmd.Context(), func(deps *app.App) error {
				req, err := deps.ChangeRequests.Resolve(cmd.Context(), id, status)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", formatSuccess("Request resolved"))
				PrintChangeRequests(cmd.OutOrStdout(), []*model.ScheduleChangeRequest{req})
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Request ID")
	cmd.Flags().StringVar(&outcome, "outcome", "", "approved, rejected or cancelled")
	_ = cmd.MarkFlagRequired("id")
	_ = cmd.MarkFlagRequired("outcome")
	return cmd
}

func (a *App) requestListCmd() *cobra.Command {
	var (
		scheduleID int64
		statusName string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reschedule requests of a lesson",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var status *model.ChangeRequestStatus
			if statusName != "" {
				s := model.ChangeRequestStatus(statusName)
				if !s.IsValid() {
					return fmt.Errorf("unknown status %q", statusName)
				}
				status = &s
			}

			return a.withApp(cmd.Context(), func(deps *app.App) error {
				requests, err := deps.ChangeRequests.ListForSchedule(cmd.Context(), scheduleID, status)
				if err != nil {
					return err
				}

				PrintChangeRequests(cmd.OutOrStdout(), requests)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&scheduleID, "schedule", 0, "Schedule ID")
	cmd.Flags().StringVar(&statusName, "status", "", "Filter by status")
	_ = cmd.MarkFlagRequired("schedule")
	return cmd
}

func (a *App) requestShowCmd() *cobra.Command {
	var id int64

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show one reschedule request",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withApp(cmd.Context(), func(deps *app.App) error {
				req, err := deps.ChangeRequests.Get(cmd.Context(), id)
				if err != nil {
					return err
				}

				PrintChangeRequests(cmd.OutOrStdout(), []*model.ScheduleChangeRequest{req})
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Request ID")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
