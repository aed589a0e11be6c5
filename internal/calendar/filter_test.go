package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

func availAt(id int64, start time.Time, slotStart string, status model.AvailabilityStatus) *model.Availability {
	return &model.Availability{
		ID:        id,
		TutorID:   1,
		StartDate: start,
		Status:    status,
		Slot:      &model.TimeSlot{ID: id, StartTime: slotStart},
	}
}

func ids(avails []*model.Availability) []int64 {
	out := make([]int64, 0, len(avails))
	for _, a := range avails {
		out = append(out, a.ID)
	}
	return out
}

func TestEligibleSlots(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	wed := time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

	avails := []*model.Availability{
		availAt(1, wed.Add(15*time.Hour), "15:00", model.AvailabilityStatusAvailable),
		availAt(2, wed.Add(9*time.Hour), "09:00", model.AvailabilityStatusAvailable),
		availAt(3, wed.Add(10*time.Hour), "10:00", model.AvailabilityStatusBooked),
		availAt(4, now.Add(5*time.Hour), "15:00", model.AvailabilityStatusAvailable), // слишком близко
		availAt(5, wed.Add(11*time.Hour), "11:00", model.AvailabilityStatusAvailable), // занято
		availAt(6, wed.Add(12*time.Hour), "12:00", model.AvailabilityStatusCancelled),
		nil,
	}

	busy := BuildBusyIndex([]*model.Schedule{
		schedAt(9, model.ScheduleStatusUpcoming, wed.Add(11*time.Hour+30*time.Minute), "11:30"),
	}, nil)

	got := EligibleSlots(avails, busy, now, model.RoleLearner, DefaultCutoffPolicy())

	// порядок входа сохраняется
	assert.Equal(t, []int64{1, 2}, ids(got))

	SortByStart(got)
	assert.Equal(t, []int64{2, 1}, ids(got))
}

func TestEligibleSlots_Empty(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	got := EligibleSlots(nil, BusyIndex{}, now, model.RoleTutor, DefaultCutoffPolicy())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEligibleSlots_RoleChangesCutoff(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	avails := []*model.Availability{
		availAt(1, now.Add(18*time.Hour), "04:00", model.AvailabilityStatusAvailable),
	}

	assert.Empty(t, EligibleSlots(avails, BusyIndex{}, now, model.RoleLearner, DefaultCutoffPolicy()))
	assert.Len(t, EligibleSlots(avails, BusyIndex{}, now, model.RoleTutor, DefaultCutoffPolicy()), 1)
}

// Ни один кандидат не совпадает по ключу с занятой ячейкой,
// и каждый проходит отсечку
func TestEligibleSlots_Properties(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	policy := DefaultCutoffPolicy()

	var avails []*model.Availability
	var schedules []*model.Schedule
	for i := 0; i < 96; i++ {
		start := now.Add(time.Duration(i) * time.Hour).Truncate(time.Hour)
		avails = append(avails, availAt(int64(i+1), start, start.Format("15:04"), model.AvailabilityStatusAvailable))
		if i%5 == 0 {
			schedules = append(schedules, schedAt(int64(1000+i), model.ScheduleStatusUpcoming, start, start.Format("15:04")))
		}
	}

	for _, role := range []model.InitiatorRole{model.RoleLearner, model.RoleTutor} {
		busy := BuildBusyIndex(schedules, nil)
		lead, _ := policy.LeadTime(role)

		for _, c := range EligibleSlots(avails, busy, now, role, policy) {
			key, ok := AvailabilityKey(c)
			require.True(t, ok)
			assert.False(t, busy.Contains(key), "candidate %d collides", c.ID)
			assert.GreaterOrEqual(t, c.StartDate.Sub(now), lead)
		}
	}
}

func TestEligibleSlots_ExcludedScheduleFreesItsCell(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

	avails := []*model.Availability{availAt(1, start, "09:00", model.AvailabilityStatusAvailable)}
	schedules := []*model.Schedule{schedAt(7, model.ScheduleStatusUpcoming, start, "09:00")}

	assert.Empty(t, EligibleSlots(avails, BuildBusyIndex(schedules, nil), now, model.RoleLearner, DefaultCutoffPolicy()))

	exclude := int64(7)
	got := EligibleSlots(avails, BuildBusyIndex(schedules, &exclude), now, model.RoleLearner, DefaultCutoffPolicy())
	assert.Equal(t, []int64{1}, ids(got))
}
