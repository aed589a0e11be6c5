package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/base"
)

type TimeSlotRepository struct {
	*base.Repository
}

func NewTimeSlotRepository(db base.Querier) *TimeSlotRepository {
	return &TimeSlotRepository{Repository: base.NewRepository(db)}
}

const timeSlotColumns = `id, to_char(start_time, 'HH24:MI'), to_char(end_time, 'HH24:MI'), day_of_week`

// List получает все слоты, упорядоченные по времени начала
func (r *TimeSlotRepository) List(ctx context.Context) ([]model.TimeSlot, error) {
	query := `
		SELECT ` + timeSlotColumns + `
		FROM time_slots
		ORDER BY start_time, id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	defer rows.Close()

	var slots []model.TimeSlot
	for rows.Next() {
		var slot model.TimeSlot
		if err := rows.Scan(&slot.ID, &slot.StartTime, &slot.EndTime, &slot.DayOfWeek); err != nil {
			return nil, fmt.Errorf("scan time slot: %w", err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate time slots: %w", err)
	}

	return slots, nil
}
