package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/base"
)

type AvailabilityRepository struct {
	*base.Repository
}

func NewAvailabilityRepository(db base.Querier) *AvailabilityRepository {
	return &AvailabilityRepository{Repository: base.NewRepository(db)}
}

const availabilityColumns = `a.id, a.tutor_id, a.slot_id, a.start_date, a.end_date, a.status`

// scanAvailability сканирует колонки availabilityColumns
func scanAvailability(row pgx.Row, a *model.Availability) error {
	var startDate *time.Time
	if err := row.Scan(&a.ID, &a.TutorID, &a.SlotID, &startDate, &a.EndDate, &a.Status); err != nil {
		return err
	}
	// NULL start_date -> нулевое время: такая запись не получает ключ сетки
	if startDate != nil {
		a.StartDate = *startDate
	}
	return nil
}

// ListByTutor получает все записи учителя по времени начала
func (r *AvailabilityRepository) ListByTutor(ctx context.Context, tutorID int64) ([]*model.Availability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availabilities a
		WHERE a.tutor_id = $1
		ORDER BY a.start_date NULLS LAST, a.id
	`

	rows, err := r.Query(ctx, query, tutorID)
	if err != nil {
		return nil, fmt.Errorf("get availabilities by tutor: %w", err)
	}
	defer rows.Close()

	var avails []*model.Availability
	for rows.Next() {
		var a model.Availability
		if err := scanAvailability(rows, &a); err != nil {
			return nil, fmt.Errorf("scan availability: %w", err)
		}
		avails = append(avails, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate availabilities: %w", err)
	}

	return avails, nil
}

// LockByID получает запись и блокирует её до конца транзакции
func (r *AvailabilityRepository) LockByID(ctx context.Context, id int64) (*model.Availability, error) {
	query := `
		SELECT ` + availabilityColumns + `
		FROM availabilities a
		WHERE a.id = $1
		FOR UPDATE
	`

	var a model.Availability
	if err := scanAvailability(r.QueryRow(ctx, query, id), &a); err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get availability by id: %w", err)
	}

	return &a, nil
}
