package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lesson_scheduler/internal/calendar"
	"github.com/Freeeeeet/lesson_scheduler/internal/events"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/repository/memstore"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

const (
	tutorEmail   = "tutor@example.com"
	tutor2Email  = "tutor2@example.com"
	learnerEmail = "learner@example.com"
	otherEmail   = "other@example.com"

	tutorID  int64 = 100
	tutor2ID int64 = 200
)

// Воскресенье 20:00, следующая неделя начинается 2026-03-02
var fixtureNow = time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return time.Date(2026, 3, day, hour, 0, 0, 0, time.UTC)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) Types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

type fixture struct {
	store        *memstore.Store
	publisher    *recordingPublisher
	availability *service.AvailabilityService
	requests     *service.ChangeRequestService
	clock        *time.Time
}

// newFixture учитель 100 и ученик learner с уроком 1 (запись 10, среда 09:00).
//
//	10 Ср 09:00 booked      урок 1 (learner, tutor)
//	42 Чт 10:00 available
//	43 Вт 14:00 available
//	44 Пн 09:00 available   13 часов от now: ученику рано, учителю можно
//	51 Пт 09:00 available   у learner в это время урок 2 с другим учителем
//	70 Ср 14:00 booked      урок 3 (other, tutor), completed
//	50 Пт 09:00 booked      учитель 200, урок 2
//	60 Чт 14:00 available   учитель 200
func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memstore.New()
	store.AddTimeSlot(model.TimeSlot{ID: 1, StartTime: "09:00", EndTime: "10:00"})
	store.AddTimeSlot(model.TimeSlot{ID: 2, StartTime: "10:00", EndTime: "11:00"})
	store.AddTimeSlot(model.TimeSlot{ID: 3, StartTime: "14:00", EndTime: "15:00"})

	avail := func(id, tutor, slot int64, start time.Time, status model.AvailabilityStatus) {
		store.AddAvailability(model.Availability{ID: id, TutorID: tutor, SlotID: slot, StartDate: start, Status: status})
	}
	avail(10, tutorID, 1, at(4, 9), model.AvailabilityStatusBooked)
	avail(42, tutorID, 2, at(5, 10), model.AvailabilityStatusAvailable)
	avail(43, tutorID, 3, at(3, 14), model.AvailabilityStatusAvailable)
	avail(44, tutorID, 1, at(2, 9), model.AvailabilityStatusAvailable)
	avail(51, tutorID, 1, at(6, 9), model.AvailabilityStatusAvailable)
	avail(70, tutorID, 3, at(4, 14), model.AvailabilityStatusBooked)
	avail(50, tutor2ID, 1, at(6, 9), model.AvailabilityStatusBooked)
	avail(60, tutor2ID, 3, at(5, 14), model.AvailabilityStatusAvailable)

	store.AddSchedule(model.Schedule{ID: 1, AvailabilityID: 10, BookingID: 1,
		LearnerEmail: learnerEmail, TutorEmail: tutorEmail, Status: model.ScheduleStatusUpcoming})
	store.AddSchedule(model.Schedule{ID: 2, AvailabilityID: 50, BookingID: 2,
		LearnerEmail: learnerEmail, TutorEmail: tutor2Email, Status: model.ScheduleStatusUpcoming})
	store.AddSchedule(model.Schedule{ID: 3, AvailabilityID: 70, BookingID: 3,
		LearnerEmail: otherEmail, TutorEmail: tutorEmail, Status: model.ScheduleStatusCompleted})

	logger := zap.NewNop()
	catalog, err := service.NewTimeSlotCatalog(store, 16, logger)
	require.NoError(t, err)

	clock := fixtureNow
	publisher := &recordingPublisher{}
	policy := calendar.DefaultCutoffPolicy()

	loader := service.NewSnapshotLoader(catalog, store, store, time.UTC, logger)

	return &fixture{
		store:        store,
		publisher:    publisher,
		availability: service.NewAvailabilityService(loader, policy, logger),
		requests: service.NewChangeRequestService(store, store, catalog, publisher, service.ChangeRequestSettings{
			Policy:   policy,
			Location: time.UTC,
			Clock:    func() time.Time { return clock },
		}, logger),
		clock: &clock,
	}
}

func learnerRequest(newAvailabilityID int64) service.SubmitChangeRequest {
	return service.SubmitChangeRequest{
		ScheduleID:        1,
		RequesterEmail:    learnerEmail,
		RequestedToEmail:  tutorEmail,
		OldAvailabilityID: 10,
		NewAvailabilityID: newAvailabilityID,
	}
}

func tutorRequest(newAvailabilityID int64) service.SubmitChangeRequest {
	return service.SubmitChangeRequest{
		ScheduleID:        1,
		RequesterEmail:    tutorEmail,
		RequestedToEmail:  learnerEmail,
		OldAvailabilityID: 10,
		NewAvailabilityID: newAvailabilityID,
	}
}

func ptr[T any](v T) *T { return &v }
