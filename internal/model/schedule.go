package model

type ScheduleStatus string

const (
	ScheduleStatusPending    ScheduleStatus = "pending"
	ScheduleStatusUpcoming   ScheduleStatus = "upcoming" // Единственный статус, занимающий время
	ScheduleStatusInProgress ScheduleStatus = "in_progress"
	ScheduleStatusCompleted  ScheduleStatus = "completed"
	ScheduleStatusCancelled  ScheduleStatus = "cancelled"
	ScheduleStatusProcessing ScheduleStatus = "processing"
)

// Schedule конкретный урок, привязанный к бронированию и Availability
type Schedule struct {
	ID             int64          `json:"id"`
	AvailabilityID int64          `json:"availability_id"`
	BookingID      int64          `json:"booking_id"`
	LearnerEmail   string         `json:"learner_email"` // из bookings
	TutorEmail     string         `json:"tutor_email"`   // из bookings
	Status         ScheduleStatus `json:"status"`

	// Дополнительные поля для удобства (не из таблицы schedules)
	Availability *Availability `json:"availability,omitempty"`
}

// IsUpcoming checks if the lesson is committed and blocks its time
func (s *Schedule) IsUpcoming() bool {
	return s.Status == ScheduleStatusUpcoming
}

// RoleOf определяет роль участника урока по email
func (s *Schedule) RoleOf(email string) (InitiatorRole, bool) {
	switch email {
	case "":
		return "", false
	case s.LearnerEmail:
		return RoleLearner, true
	case s.TutorEmail:
		return RoleTutor, true
	default:
		return "", false
	}
}
