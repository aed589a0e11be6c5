package calendar

import (
	"sort"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// BusyIndex множество ячеек, занятых уроками одной стороны.
// Нулевое значение: пустой индекс.
type BusyIndex struct {
	keys map[GridKey]struct{}
}

// BuildBusyIndex собирает ключи upcoming-уроков.
// excludeScheduleID пропускает переносимый урок, чтобы он не конфликтовал сам с собой.
func BuildBusyIndex(schedules []*model.Schedule, excludeScheduleID *int64) BusyIndex {
	keys := make(map[GridKey]struct{}, len(schedules))

	for _, s := range schedules {
		if s == nil || !s.IsUpcoming() {
			continue
		}
		if excludeScheduleID != nil && s.ID == *excludeScheduleID {
			continue
		}

		// Нет Availability или даты, не считаем занятым
		key, ok := AvailabilityKey(s.Availability)
		if !ok {
			continue
		}
		keys[key] = struct{}{}
	}

	return BusyIndex{keys: keys}
}

func (b BusyIndex) Contains(key GridKey) bool {
	_, ok := b.keys[key]
	return ok
}

// IsBusy проверяет, занята ли ячейка (date, startTime)
func (b BusyIndex) IsBusy(date time.Time, startTime string) bool {
	key, ok := Key(date, startTime)
	if !ok {
		return false
	}
	return b.Contains(key)
}

func (b BusyIndex) Len() int {
	return len(b.keys)
}

// Keys возвращает ключи по возрастанию
func (b BusyIndex) Keys() []GridKey {
	keys := make([]GridKey, 0, len(b.keys))
	for k := range b.keys {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
