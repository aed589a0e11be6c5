package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// Snapshot согласованный набор данных для расчёта доступности
type Snapshot struct {
	Slots          []model.TimeSlot
	Availabilities []*model.Availability // записи учителя
	Schedules      []*model.Schedule     // upcoming-уроки второй стороны
}

// SnapshotLoader параллельно загружает справочник слотов, записи учителя и уроки участника.
// Snapshot возвращается только если все загрузки успешны.
type SnapshotLoader struct {
	catalog   *TimeSlotCatalog
	avails    AvailabilityProvider
	schedules ScheduleProvider
	loc       *time.Location
	logger    *zap.Logger
}

func NewSnapshotLoader(
	catalog *TimeSlotCatalog,
	avails AvailabilityProvider,
	schedules ScheduleProvider,
	loc *time.Location,
	logger *zap.Logger,
) *SnapshotLoader {
	if loc == nil {
		loc = time.UTC
	}
	return &SnapshotLoader{
		catalog:   catalog,
		avails:    avails,
		schedules: schedules,
		loc:       loc,
		logger:    logger,
	}
}

// Location часовой пояс, в котором строятся ключи сетки
func (l *SnapshotLoader) Location() *time.Location {
	return l.loc
}

// Load загружает данные для учителя tutorID и участника partyEmail.
// Пустой partyEmail: занятость второй стороны не учитывается.
func (l *SnapshotLoader) Load(ctx context.Context, tutorID int64, partyEmail string) (*Snapshot, error) {
	var (
		slots     []model.TimeSlot
		avails    []*model.Availability
		schedules []*model.Schedule
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		slots, err = l.catalog.List(gctx)
		return err
	})

	g.Go(func() error {
		var err error
		avails, err = l.avails.ListByTutor(gctx, tutorID)
		return err
	})

	if partyEmail != "" {
		g.Go(func() error {
			upcoming := model.ScheduleStatusUpcoming
			var err error
			schedules, err = l.schedules.ListByParty(gctx, partyEmail, &upcoming)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		l.logger.Warn("Failed to load availability snapshot",
			zap.Int64("tutor_id", tutorID),
			zap.String("party_email", partyEmail),
			zap.Error(err),
		)
		return nil, wrapError(KindTransientFetch, err, "load snapshot for tutor %d", tutorID)
	}

	scheduleAvails := make([]*model.Availability, 0, len(schedules))
	for _, s := range schedules {
		if s.Availability != nil {
			scheduleAvails = append(scheduleAvails, s.Availability)
		}
	}

	// Справочник уже в кэше после List выше
	if err := l.catalog.Attach(ctx, avails); err != nil {
		return nil, wrapError(KindTransientFetch, err, "attach time slots")
	}
	if err := l.catalog.Attach(ctx, scheduleAvails); err != nil {
		return nil, wrapError(KindTransientFetch, err, "attach time slots")
	}

	l.normalize(avails)
	l.normalize(scheduleAvails)

	return &Snapshot{
		Slots:          slots,
		Availabilities: avails,
		Schedules:      schedules,
	}, nil
}

// normalize переводит даты в часовой пояс сетки, иначе день ячейки может съехать
func (l *SnapshotLoader) normalize(avails []*model.Availability) {
	for _, a := range avails {
		if !a.StartDate.IsZero() {
			a.StartDate = a.StartDate.In(l.loc)
		}
		if a.EndDate != nil {
			end := a.EndDate.In(l.loc)
			a.EndDate = &end
		}
	}
}
