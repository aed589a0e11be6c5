package model

import "time"

type AvailabilityStatus string

const (
	AvailabilityStatusAvailable  AvailabilityStatus = "available"   // Можно забронировать
	AvailabilityStatusBooked     AvailabilityStatus = "booked"      // Занято уроком
	AvailabilityStatusInProgress AvailabilityStatus = "in_progress" // Урок идёт
	AvailabilityStatusCancelled  AvailabilityStatus = "cancelled"   // Отменено учителем
)

// Availability конкретное время, в которое учитель готов провести урок
type Availability struct {
	ID        int64              `json:"id"`
	TutorID   int64              `json:"tutor_id"`
	SlotID    int64              `json:"slot_id"`
	StartDate time.Time          `json:"start_date"` // нулевое значение = дата неизвестна
	EndDate   *time.Time         `json:"end_date"`
	Status    AvailabilityStatus `json:"status"`

	// Заполняется из справочника слотов (не из таблицы availabilities)
	Slot *TimeSlot `json:"slot,omitempty"`
}

// IsAvailable checks if the record can be booked
func (a *Availability) IsAvailable() bool {
	return a.Status == AvailabilityStatusAvailable
}
