package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/lesson_scheduler/internal/calendar"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func testGrid() *calendar.WeekGrid {
	slots := []model.TimeSlot{
		{ID: 1, StartTime: "09:00", EndTime: "10:00"},
		{ID: 2, StartTime: "14:00", EndTime: "15:00"},
	}
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	selected := int64(11)

	return calendar.ProjectWeek(calendar.WeekQuery{
		Now:   now,
		Slots: slots,
		Availabilities: []*model.Availability{
			{ID: 10, SlotID: 1, StartDate: time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC), Status: model.AvailabilityStatusAvailable, Slot: &slots[0]},
			{ID: 11, SlotID: 2, StartDate: time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC), Status: model.AvailabilityStatusAvailable, Slot: &slots[1]},
			{ID: 12, SlotID: 1, StartDate: time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC), Status: model.AvailabilityStatusBooked, Slot: &slots[0]},
		},
		SelectedAvailabilityID: &selected,
		Role:                   model.RoleLearner,
		Policy:                 calendar.DefaultCutoffPolicy(),
	})
}

func TestPrintWeekGrid(t *testing.T) {
	var buf bytes.Buffer
	PrintWeekGrid(&buf, testGrid())
	out := buf.String()

	assert.Contains(t, out, "WEEK +0: Mon Mar 2 - Sun Mar 8, 2026")
	assert.Contains(t, out, "Mon 02.03")
	assert.Contains(t, out, "Sun 08.03")
	assert.Contains(t, out, "free #10")
	assert.Contains(t, out, "[#11]")
	assert.Contains(t, out, "booked")
	assert.Contains(t, out, "selectable: 1")
	assert.Contains(t, out, "selected: 1")
	assert.Contains(t, out, "unavailable: 11")

	var rows []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "09:00") || strings.HasPrefix(line, "14:00") {
			rows = append(rows, line)
		}
	}
	require.Len(t, rows, 2)
	// Строки одинаковой ширины: клетки выровнены
	assert.Equal(t, len([]rune(rows[0])), len([]rune(rows[1])))
}

func TestPrintWeekGrid_NoSlots(t *testing.T) {
	var buf bytes.Buffer
	PrintWeekGrid(&buf, &calendar.WeekGrid{Start: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)})
	assert.Contains(t, buf.String(), "No time slots configured.")
}

func TestPrintAvailabilities(t *testing.T) {
	var buf bytes.Buffer
	PrintAvailabilities(&buf, nil)
	assert.Equal(t, "No eligible slots.\n", buf.String())

	buf.Reset()
	PrintAvailabilities(&buf, []*model.Availability{{
		ID:        42,
		StartDate: time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC),
		Status:    model.AvailabilityStatusAvailable,
		Slot:      &model.TimeSlot{StartTime: "10:00", EndTime: "11:00"},
	}})
	assert.Contains(t, buf.String(), "42")
	assert.Contains(t, buf.String(), "2026-03-05 10:00")
	assert.Contains(t, buf.String(), "10:00-11:00")
}

func TestPrintChangeRequests(t *testing.T) {
	reason := "conflict"
	var buf bytes.Buffer
	PrintChangeRequests(&buf, []*model.ScheduleChangeRequest{{
		ID:                7,
		ScheduleID:        1,
		RequesterEmail:    "learner@example.com",
		OldAvailabilityID: 10,
		NewAvailabilityID: 42,
		Reason:            &reason,
		Status:            model.ChangeRequestStatusPending,
	}})

	out := buf.String()
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "10→42")
	assert.Contains(t, out, "learner@example.com")
	assert.Contains(t, out, "conflict")
}

func TestPad(t *testing.T) {
	assert.Equal(t, "ab   ", pad("ab", 5))
	assert.Equal(t, "abcd ", pad("abcdefgh", 5))
	assert.Equal(t, "·    ", pad("·", 5))
}
