package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/lesson_scheduler/internal/calendar"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

func availabilityIDs(avails []*model.Availability) []int64 {
	ids := make([]int64, 0, len(avails))
	for _, a := range avails {
		ids = append(ids, a.ID)
	}
	return ids
}

func TestGetEligibleSlots(t *testing.T) {
	tests := []struct {
		name string
		role model.InitiatorRole
		want []int64
	}{
		// 44 слишком близко для ученика, 51 занят у ученика, 10 и 70 booked
		{name: "learner", role: model.RoleLearner, want: []int64{43, 42}},
		// Учителю хватает 12 часов до 44
		{name: "tutor", role: model.RoleTutor, want: []int64{44, 43, 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			got, err := f.availability.GetEligibleSlots(context.Background(), service.EligibleSlotsQuery{
				TutorID:           tutorID,
				CounterpartEmail:  learnerEmail,
				ExcludeScheduleID: ptr(int64(1)),
				Role:              tt.role,
				Now:               fixtureNow,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, availabilityIDs(got))
		})
	}
}

func TestGetEligibleSlots_AttachesTimeSlots(t *testing.T) {
	f := newFixture(t)

	got, err := f.availability.GetEligibleSlots(context.Background(), service.EligibleSlotsQuery{
		TutorID: tutorID,
		Role:    model.RoleTutor,
		Now:     fixtureNow,
	})
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for _, a := range got {
		require.NotNil(t, a.Slot, "availability %d", a.ID)
		assert.Equal(t, a.SlotID, a.Slot.ID)
	}
}

func TestGetEligibleSlots_NoCounterpart(t *testing.T) {
	f := newFixture(t)

	got, err := f.availability.GetEligibleSlots(context.Background(), service.EligibleSlotsQuery{
		TutorID: tutorID,
		Role:    model.RoleLearner,
		Now:     fixtureNow,
	})
	require.NoError(t, err)
	// Без второй стороны 51 не блокируется
	assert.Equal(t, []int64{43, 42, 51}, availabilityIDs(got))
}

func TestGetEligibleSlots_UnknownTutorIsEmpty(t *testing.T) {
	f := newFixture(t)

	got, err := f.availability.GetEligibleSlots(context.Background(), service.EligibleSlotsQuery{
		TutorID: 999,
		Role:    model.RoleLearner,
		Now:     fixtureNow,
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetEligibleSlots_UnknownRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.availability.GetEligibleSlots(context.Background(), service.EligibleSlotsQuery{
		TutorID: tutorID,
		Role:    "admin",
		Now:     fixtureNow,
	})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestGetEligibleSlots_TransientFetchError(t *testing.T) {
	f := newFixture(t)
	f.store.FailReads = errors.New("connection reset")

	_, err := f.availability.GetEligibleSlots(context.Background(), service.EligibleSlotsQuery{
		TutorID:          tutorID,
		CounterpartEmail: learnerEmail,
		Role:             model.RoleLearner,
		Now:              fixtureNow,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrTransientFetch)
	assert.Equal(t, service.KindTransientFetch, service.KindOf(err))

	var sce *service.ScheduleChangeError
	require.ErrorAs(t, err, &sce)
	assert.True(t, sce.Retryable())
}

func TestClassifyWeekGrid(t *testing.T) {
	f := newFixture(t)

	grid, err := f.availability.ClassifyWeekGrid(context.Background(), service.WeekGridQuery{
		WeekOffset:             1,
		TutorID:                tutorID,
		CounterpartEmail:       learnerEmail,
		SelectedAvailabilityID: ptr(int64(42)),
		ExcludeScheduleID:      ptr(int64(1)),
		Role:                   model.RoleLearner,
		Now:                    fixtureNow,
	})
	require.NoError(t, err)

	assert.Equal(t, at(2, 0), grid.Start)
	require.Len(t, grid.Slots, 3)

	expect := map[int64]calendar.CellStatus{
		10: calendar.CellBooked,
		42: calendar.CellSelected,
		43: calendar.CellSelectable,
		44: calendar.CellTooClose,
		51: calendar.CellOtherPartyBusy,
		70: calendar.CellBooked,
	}
	for id, status := range expect {
		cell, ok := grid.Find(id)
		require.True(t, ok, "availability %d", id)
		assert.Equal(t, status, cell.Status, "availability %d", id)
	}

	counts := grid.Counts()
	assert.Equal(t, 7*3-len(expect), counts[calendar.CellUnavailable])
	assert.Equal(t, 2, counts[calendar.CellBooked])
}

func TestClassifyWeekGrid_CurrentWeekIsEmpty(t *testing.T) {
	f := newFixture(t)

	grid, err := f.availability.ClassifyWeekGrid(context.Background(), service.WeekGridQuery{
		TutorID: tutorID,
		Role:    model.RoleTutor,
		Now:     fixtureNow,
	})
	require.NoError(t, err)

	// Неделя 23.02–01.03: у учителя записей нет
	assert.Equal(t, 7*3, grid.Counts()[calendar.CellUnavailable])
}
