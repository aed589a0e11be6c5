package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Freeeeeet/lesson_scheduler/internal/calendar"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// EligibleSlotsQuery параметры поиска времени для переноса
type EligibleSlotsQuery struct {
	TutorID int64
	// Участник, чьи upcoming-уроки блокируют время
	CounterpartEmail string
	// Переносимый урок не должен конфликтовать сам с собой
	ExcludeScheduleID *int64
	Role              model.InitiatorRole
	Now               time.Time
}

// WeekGridQuery параметры недельной сетки
type WeekGridQuery struct {
	WeekOffset             int
	TutorID                int64
	CounterpartEmail       string
	SelectedAvailabilityID *int64
	ExcludeScheduleID      *int64
	Role                   model.InitiatorRole
	Now                    time.Time
}

type AvailabilityService struct {
	loader *SnapshotLoader
	policy calendar.CutoffPolicy
	logger *zap.Logger
}

func NewAvailabilityService(loader *SnapshotLoader, policy calendar.CutoffPolicy, logger *zap.Logger) *AvailabilityService {
	if policy == nil {
		policy = calendar.DefaultCutoffPolicy()
	}
	return &AvailabilityService{
		loader: loader,
		policy: policy,
		logger: logger,
	}
}

// GetEligibleSlots записи учителя, на которые можно перенести урок, по времени начала
func (s *AvailabilityService) GetEligibleSlots(ctx context.Context, q EligibleSlotsQuery) ([]*model.Availability, error) {
	if _, ok := s.policy.LeadTime(q.Role); !ok {
		return nil, newError(KindValidation, "unknown initiator role %q", q.Role)
	}

	snap, err := s.loader.Load(ctx, q.TutorID, q.CounterpartEmail)
	if err != nil {
		return nil, err
	}

	now := s.now(q.Now)
	busy := calendar.BuildBusyIndex(snap.Schedules, q.ExcludeScheduleID)
	eligible := calendar.EligibleSlots(snap.Availabilities, busy, now, q.Role, s.policy)
	calendar.SortByStart(eligible)

	s.logger.Debug("Eligible slots computed",
		zap.Int64("tutor_id", q.TutorID),
		zap.String("role", string(q.Role)),
		zap.Int("total", len(snap.Availabilities)),
		zap.Int("busy", busy.Len()),
		zap.Int("eligible", len(eligible)),
	)

	return eligible, nil
}

// ClassifyWeekGrid строит сетку 7×N для недели со смещением WeekOffset
func (s *AvailabilityService) ClassifyWeekGrid(ctx context.Context, q WeekGridQuery) (*calendar.WeekGrid, error) {
	if _, ok := s.policy.LeadTime(q.Role); !ok {
		return nil, newError(KindValidation, "unknown initiator role %q", q.Role)
	}

	snap, err := s.loader.Load(ctx, q.TutorID, q.CounterpartEmail)
	if err != nil {
		return nil, err
	}

	grid := calendar.ProjectWeek(calendar.WeekQuery{
		Now:                    s.now(q.Now),
		WeekOffset:             q.WeekOffset,
		Slots:                  snap.Slots,
		Availabilities:         snap.Availabilities,
		Busy:                   calendar.BuildBusyIndex(snap.Schedules, q.ExcludeScheduleID),
		SelectedAvailabilityID: q.SelectedAvailabilityID,
		Role:                   q.Role,
		Policy:                 s.policy,
	})

	return grid, nil
}

// now переводит момент в часовой пояс сетки; нулевое значение = текущее время
func (s *AvailabilityService) now(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.In(s.loader.Location())
}
