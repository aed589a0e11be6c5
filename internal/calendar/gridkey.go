// Package calendar содержит чистые функции расчёта доступности: ключ сетки,
// окно отсечки, индекс занятости, фильтр слотов и проекцию недели.
// Функции работают только со снимком данных в памяти и не делают I/O.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// GridKey ключ ячейки с точностью до часа: "2006-01-02T15"
type GridKey string

// Key строит ключ из даты и времени начала слота.
// Минуты отбрасываются: 09:00 и 09:30 одного дня дают один ключ.
func Key(date time.Time, startTime string) (GridKey, bool) {
	if date.IsZero() {
		return "", false
	}

	clock, ok := parseClock(startTime)
	if !ok {
		return "", false
	}

	return GridKey(fmt.Sprintf("%sT%02d", date.Format(dateLayout), clock.Hour())), true
}

// AvailabilityKey ключ для записи Availability
func AvailabilityKey(a *model.Availability) (GridKey, bool) {
	if a == nil || a.StartDate.IsZero() {
		return "", false
	}
	return Key(a.StartDate, SlotStart(a))
}

// SlotStart возвращает время начала из справочника слотов,
// а если слот не подгружен, время из самой даты
func SlotStart(a *model.Availability) string {
	if a.Slot != nil && a.Slot.StartTime != "" {
		return a.Slot.StartTime
	}
	if a.StartDate.IsZero() {
		return ""
	}
	return a.StartDate.Format(clockLayout)
}

// NormalizeClock приводит "9:00", "09:00:00" к виду "09:00"
func NormalizeClock(s string) (string, bool) {
	clock, ok := parseClock(s)
	if !ok {
		return "", false
	}
	return clock.Format(clockLayout), true
}

func parseClock(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{clockLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
