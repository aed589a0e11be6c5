package calendar

import (
	"sort"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// EligibleSlots оставляет записи, на которые можно перенести урок:
// статус available, отсечка пройдена, ячейка не занята у запрашивающего.
// Порядок входа сохраняется, пустой результат не ошибка.
func EligibleSlots(
	avails []*model.Availability,
	busy BusyIndex,
	now time.Time,
	role model.InitiatorRole,
	policy CutoffPolicy,
) []*model.Availability {
	result := make([]*model.Availability, 0, len(avails))

	for _, a := range avails {
		if a == nil || !a.IsAvailable() {
			continue
		}
		if !policy.IsEligible(a.StartDate, now, role) {
			continue
		}
		if key, ok := AvailabilityKey(a); ok && busy.Contains(key) {
			continue
		}
		result = append(result, a)
	}

	return result
}

// SortByStart сортирует записи по времени начала (стабильно)
func SortByStart(avails []*model.Availability) {
	sort.SliceStable(avails, func(i, j int) bool {
		return avails[i].StartDate.Before(avails[j].StartDate)
	})
}
