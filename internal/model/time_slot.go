package model

// TimeSlot шаблон времени занятия (например 09:00–10:00), создаётся администраторами
type TimeSlot struct {
	ID        int64  `json:"id"`
	StartTime string `json:"start_time"`  // "HH:MM"
	EndTime   string `json:"end_time"`    // "HH:MM"
	DayOfWeek *int   `json:"day_of_week"` // 0 = Sunday, 6 = Saturday; nil = любой день
}
