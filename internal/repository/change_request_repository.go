package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/base"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

// Имя частичного уникального индекса из миграции 00003
const pendingPerScheduleIndex = "uq_change_requests_pending_schedule"

type ChangeRequestRepository struct {
	*base.Repository
}

func NewChangeRequestRepository(db base.Querier) *ChangeRequestRepository {
	return &ChangeRequestRepository{Repository: base.NewRepository(db)}
}

const changeRequestColumns = `
	r.id, r.request_key, r.schedule_id, r.requester_email, r.requested_to_email,
	r.old_availability_id, r.new_availability_id, r.reason, r.status, r.created_at, r.resolved_at
`

func scanChangeRequest(row pgx.Row) (*model.ScheduleChangeRequest, error) {
	var req model.ScheduleChangeRequest
	err := row.Scan(
		&req.ID,
		&req.RequestKey,
		&req.ScheduleID,
		&req.RequesterEmail,
		&req.RequestedToEmail,
		&req.OldAvailabilityID,
		&req.NewAvailabilityID,
		&req.Reason,
		&req.Status,
		&req.CreatedAt,
		&req.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func collectChangeRequests(rows pgx.Rows) ([]*model.ScheduleChangeRequest, error) {
	defer rows.Close()

	var requests []*model.ScheduleChangeRequest
	for rows.Next() {
		req, err := scanChangeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan change request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate change requests: %w", err)
	}

	return requests, nil
}

// Create создаёт заявку. Вторая pending-заявка на тот же урок
// отклоняется индексом и возвращается как service.ErrPendingRequestExists.
func (r *ChangeRequestRepository) Create(ctx context.Context, req *model.ScheduleChangeRequest) error {
	query := `
		INSERT INTO schedule_change_requests (
			request_key, schedule_id, requester_email, requested_to_email,
			old_availability_id, new_availability_id, reason, status, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		req.RequestKey,
		req.ScheduleID,
		req.RequesterEmail,
		req.RequestedToEmail,
		req.OldAvailabilityID,
		req.NewAvailabilityID,
		req.Reason,
		string(req.Status),
		req.CreatedAt,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		if base.IsUniqueViolation(err, pendingPerScheduleIndex) {
			return fmt.Errorf("create change request: %w", service.ErrPendingRequestExists)
		}
		return fmt.Errorf("create change request: %w", err)
	}

	return nil
}

// GetByID получает заявку по ID
func (r *ChangeRequestRepository) GetByID(ctx context.Context, id int64) (*model.ScheduleChangeRequest, error) {
	return r.getByID(ctx, id, "")
}

// LockByID получает заявку и блокирует её до конца транзакции
func (r *ChangeRequestRepository) LockByID(ctx context.Context, id int64) (*model.ScheduleChangeRequest, error) {
	return r.getByID(ctx, id, "FOR UPDATE")
}

func (r *ChangeRequestRepository) getByID(ctx context.Context, id int64, lock string) (*model.ScheduleChangeRequest, error) {
	query := `SELECT ` + changeRequestColumns + ` FROM schedule_change_requests r WHERE r.id = $1 ` + lock

	req, err := scanChangeRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get change request by id: %w", err)
	}

	return req, nil
}

// ListByScheduleID получает заявки урока, status nil: все
func (r *ChangeRequestRepository) ListByScheduleID(ctx context.Context, scheduleID int64, status *model.ChangeRequestStatus) ([]*model.ScheduleChangeRequest, error) {
	query := `
		SELECT ` + changeRequestColumns + `
		FROM schedule_change_requests r
		WHERE r.schedule_id = $1
		  AND ($2::text IS NULL OR r.status = $2)
		ORDER BY r.created_at DESC, r.id DESC
	`

	var statusArg *string
	if status != nil {
		v := string(*status)
		statusArg = &v
	}

	rows, err := r.Query(ctx, query, scheduleID, statusArg)
	if err != nil {
		return nil, fmt.Errorf("get change requests by schedule: %w", err)
	}

	return collectChangeRequests(rows)
}

// ListStalePending получает pending-заявки, новое время которых уже наступило
func (r *ChangeRequestRepository) ListStalePending(ctx context.Context, now time.Time) ([]*model.ScheduleChangeRequest, error) {
	query := `
		SELECT ` + changeRequestColumns + `
		FROM schedule_change_requests r
		JOIN availabilities a ON a.id = r.new_availability_id
		WHERE r.status = $1
		  AND a.start_date IS NOT NULL
		  AND a.start_date <= $2
		ORDER BY r.created_at ASC
	`

	rows, err := r.Query(ctx, query, string(model.ChangeRequestStatusPending), now)
	if err != nil {
		return nil, fmt.Errorf("get stale pending change requests: %w", err)
	}

	return collectChangeRequests(rows)
}

// UpdateStatus переводит pending-заявку в новый статус.
// Если заявка уже решена, возвращает model.ErrRequestResolved.
func (r *ChangeRequestRepository) UpdateStatus(ctx context.Context, id int64, status model.ChangeRequestStatus, resolvedAt time.Time) error {
	query := `
		UPDATE schedule_change_requests
		SET status = $1, resolved_at = $2
		WHERE id = $3 AND status = $4
	`

	affected, err := r.ExecAffected(ctx, query, string(status), resolvedAt, id, string(model.ChangeRequestStatusPending))
	if err != nil {
		return fmt.Errorf("update change request status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("update change request %d: %w", id, model.ErrRequestResolved)
	}

	return nil
}
