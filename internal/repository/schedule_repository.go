package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/base"
)

type ScheduleRepository struct {
	*base.Repository
}

func NewScheduleRepository(db base.Querier) *ScheduleRepository {
	return &ScheduleRepository{Repository: base.NewRepository(db)}
}

const scheduleSelect = `
	SELECT s.id, s.availability_id, s.booking_id, b.learner_email, b.tutor_email, s.status,
	       ` + availabilityColumns + `
	FROM schedules s
	JOIN bookings b ON b.id = s.booking_id
	JOIN availabilities a ON a.id = s.availability_id
`

func scanSchedule(row pgx.Row) (*model.Schedule, error) {
	var (
		s         model.Schedule
		a         model.Availability
		startDate *time.Time
	)

	err := row.Scan(
		&s.ID,
		&s.AvailabilityID,
		&s.BookingID,
		&s.LearnerEmail,
		&s.TutorEmail,
		&s.Status,
		&a.ID,
		&a.TutorID,
		&a.SlotID,
		&startDate,
		&a.EndDate,
		&a.Status,
	)
	if err != nil {
		return nil, err
	}

	if startDate != nil {
		a.StartDate = *startDate
	}
	s.Availability = &a

	return &s, nil
}

// LockByID получает урок вместе с Availability и блокирует строку schedules до конца транзакции
func (r *ScheduleRepository) LockByID(ctx context.Context, id int64) (*model.Schedule, error) {
	query := scheduleSelect + `WHERE s.id = $1 FOR UPDATE OF s`

	s, err := scanSchedule(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule by id: %w", err)
	}

	return s, nil
}

// ListByParty получает уроки, где email это ученик или учитель.
// status nil: все статусы.
func (r *ScheduleRepository) ListByParty(ctx context.Context, email string, status *model.ScheduleStatus) ([]*model.Schedule, error) {
	query := scheduleSelect + `
		WHERE (b.learner_email = $1 OR b.tutor_email = $1)
		  AND ($2::text IS NULL OR s.status = $2)
		ORDER BY a.start_date NULLS LAST, s.id
	`

	var statusArg *string
	if status != nil {
		v := string(*status)
		statusArg = &v
	}

	rows, err := r.Query(ctx, query, email, statusArg)
	if err != nil {
		return nil, fmt.Errorf("get schedules by party: %w", err)
	}
	defer rows.Close()

	var schedules []*model.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate schedules: %w", err)
	}

	return schedules, nil
}
