package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Freeeeeet/lesson_scheduler/internal/calendar"
	"github.com/Freeeeeet/lesson_scheduler/internal/events"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

const DefaultReasonMaxLength = 500

// SubmitChangeRequest данные заявки на перенос
type SubmitChangeRequest struct {
	ScheduleID        int64
	RequesterEmail    string
	RequestedToEmail  string
	OldAvailabilityID int64
	NewAvailabilityID int64
	Reason            *string
}

// ChangeRequestSettings параметры сервиса заявок
type ChangeRequestSettings struct {
	Policy          calendar.CutoffPolicy
	ReasonMaxLength int
	Location        *time.Location
	Clock           func() time.Time
}

type ChangeRequestService struct {
	uow       UnitOfWork
	requests  ChangeRequestRepository
	catalog   *TimeSlotCatalog
	publisher EventPublisher
	settings  ChangeRequestSettings
	logger    *zap.Logger
}

func NewChangeRequestService(
	uow UnitOfWork,
	requests ChangeRequestRepository,
	catalog *TimeSlotCatalog,
	publisher EventPublisher,
	settings ChangeRequestSettings,
	logger *zap.Logger,
) *ChangeRequestService {
	if settings.Policy == nil {
		settings.Policy = calendar.DefaultCutoffPolicy()
	}
	if settings.ReasonMaxLength <= 0 {
		settings.ReasonMaxLength = DefaultReasonMaxLength
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.Clock == nil {
		settings.Clock = time.Now
	}
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}

	return &ChangeRequestService{
		uow:       uow,
		requests:  requests,
		catalog:   catalog,
		publisher: publisher,
		settings:  settings,
		logger:    logger,
	}
}

// Submit создаёт pending-заявку на перенос урока.
// Все проверки повторяются внутри транзакции с блокировкой урока и целевой записи.
func (s *ChangeRequestService) Submit(ctx context.Context, in SubmitChangeRequest) (*model.ScheduleChangeRequest, error) {
	reason, err := s.validateSubmit(&in)
	if err != nil {
		return nil, err
	}

	// Справочник читаем до транзакции: внутри неё только заблокированные строки
	slots, err := s.catalog.List(ctx)
	if err != nil {
		return nil, wrapError(KindTransientFetch, err, "load time slots")
	}
	slotsByID := indexSlots(slots)

	now := s.settings.Clock().In(s.settings.Location)
	var created *model.ScheduleChangeRequest

	err = s.uow.InTx(ctx, func(ctx context.Context, tx ChangeRequestTx) error {
		// 1. Урок существует и ещё не прошёл
		sched, err := tx.LockSchedule(ctx, in.ScheduleID)
		if err != nil {
			return wrapError(KindTransientFetch, err, "lock schedule %d", in.ScheduleID)
		}
		if sched == nil || !sched.IsUpcoming() {
			return newError(KindScheduleNotEligible, "schedule %d is not upcoming", in.ScheduleID)
		}

		role, ok := sched.RoleOf(in.RequesterEmail)
		if !ok {
			return newError(KindValidation, "requester %s is not a party of schedule %d", in.RequesterEmail, sched.ID)
		}
		if counterpart, _ := sched.RoleOf(in.RequestedToEmail); counterpart == "" || counterpart == role {
			return newError(KindValidation, "requested_to %s is not the other party of schedule %d", in.RequestedToEmail, sched.ID)
		}
		if in.OldAvailabilityID != sched.AvailabilityID {
			return newError(KindValidation, "old availability %d does not match schedule availability %d",
				in.OldAvailabilityID, sched.AvailabilityID)
		}

		// 2. Нет другой pending-заявки
		pending := model.ChangeRequestStatusPending
		existing, err := tx.ListChangeRequests(ctx, sched.ID, &pending)
		if err != nil {
			return wrapError(KindTransientFetch, err, "list pending requests for schedule %d", sched.ID)
		}
		if len(existing) > 0 {
			return newError(KindDuplicatePending, "schedule %d already has pending request %d", sched.ID, existing[0].ID)
		}

		// 3. Целевая запись свободна и проходит отсечку
		target, err := tx.LockAvailability(ctx, in.NewAvailabilityID)
		if err != nil {
			return wrapError(KindTransientFetch, err, "lock availability %d", in.NewAvailabilityID)
		}
		if target == nil {
			return newError(KindNotFound, "availability %d not found", in.NewAvailabilityID)
		}

		tutorID, err := s.scheduleTutor(ctx, tx, sched)
		if err != nil {
			return err
		}
		if target.TutorID != tutorID {
			return newError(KindSlotUnavailable, "availability %d belongs to another tutor", target.ID)
		}

		s.prepare([]*model.Availability{target}, slotsByID)
		if !target.IsAvailable() {
			return newError(KindSlotUnavailable, "availability %d is %s", target.ID, target.Status)
		}
		if !s.settings.Policy.IsEligible(target.StartDate, now, role) {
			return newError(KindSlotUnavailable, "availability %d is too close for %s", target.ID, role)
		}

		// 4. У инициатора нет другого урока в это время
		own, err := tx.ListPartySchedules(ctx, in.RequesterEmail, model.ScheduleStatusUpcoming)
		if err != nil {
			return wrapError(KindTransientFetch, err, "list schedules of %s", in.RequesterEmail)
		}
		ownAvails := make([]*model.Availability, 0, len(own))
		for _, o := range own {
			if o.Availability != nil {
				ownAvails = append(ownAvails, o.Availability)
			}
		}
		s.prepare(ownAvails, slotsByID)

		busy := calendar.BuildBusyIndex(own, &sched.ID)
		if key, ok := calendar.AvailabilityKey(target); ok && busy.Contains(key) {
			return newError(KindSlotConflict, "requester already has a lesson at %s", key)
		}

		req := &model.ScheduleChangeRequest{
			RequestKey:        uuid.New(),
			ScheduleID:        sched.ID,
			RequesterEmail:    in.RequesterEmail,
			RequestedToEmail:  in.RequestedToEmail,
			OldAvailabilityID: in.OldAvailabilityID,
			NewAvailabilityID: in.NewAvailabilityID,
			Reason:            reason,
			Status:            model.ChangeRequestStatusPending,
			CreatedAt:         now,
		}
		if err := tx.CreateChangeRequest(ctx, req); err != nil {
			if errors.Is(err, ErrPendingRequestExists) {
				return wrapError(KindDuplicatePending, err, "schedule %d", sched.ID)
			}
			return wrapError(KindTransientFetch, err, "create change request")
		}

		created = req
		return nil
	})
	if err != nil {
		s.logger.Info("Change request rejected",
			zap.Int64("schedule_id", in.ScheduleID),
			zap.String("requester", in.RequesterEmail),
			zap.Int64("new_availability_id", in.NewAvailabilityID),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err),
		)
		return nil, asServiceError(err, "submit change request")
	}

	s.logger.Info("Change request created",
		zap.Int64("request_id", created.ID),
		zap.String("request_key", created.RequestKey.String()),
		zap.Int64("schedule_id", created.ScheduleID),
		zap.Int64("old_availability_id", created.OldAvailabilityID),
		zap.Int64("new_availability_id", created.NewAvailabilityID),
	)

	s.publish(ctx, events.NewChangeRequestCreated(created, now))

	return created, nil
}

// Resolve переводит pending-заявку в терминальный статус (approved, rejected, cancelled).
// Решённая заявка не перезаписывается.
func (s *ChangeRequestService) Resolve(ctx context.Context, requestID int64, outcome model.ChangeRequestStatus) (*model.ScheduleChangeRequest, error) {
	if requestID <= 0 {
		return nil, newError(KindValidation, "request id is required")
	}
	if !outcome.IsTerminal() {
		return nil, newError(KindValidation, "outcome %q is not a terminal status", outcome)
	}

	now := s.settings.Clock().In(s.settings.Location)
	var resolved *model.ScheduleChangeRequest

	err := s.uow.InTx(ctx, func(ctx context.Context, tx ChangeRequestTx) error {
		req, err := tx.LockChangeRequest(ctx, requestID)
		if err != nil {
			return wrapError(KindTransientFetch, err, "lock change request %d", requestID)
		}
		if req == nil {
			return newError(KindNotFound, "change request %d not found", requestID)
		}

		if err := req.Resolve(outcome, now); err != nil {
			if errors.Is(err, model.ErrRequestResolved) {
				return wrapError(KindAlreadyResolved, err, "change request %d", requestID)
			}
			return wrapError(KindValidation, err, "change request %d", requestID)
		}

		if err := tx.UpdateChangeRequestStatus(ctx, req.ID, req.Status, now); err != nil {
			if errors.Is(err, model.ErrRequestResolved) {
				return wrapError(KindAlreadyResolved, err, "change request %d", requestID)
			}
			return wrapError(KindTransientFetch, err, "update change request %d", requestID)
		}

		resolved = req
		return nil
	})
	if err != nil {
		return nil, asServiceError(err, "resolve change request %d", requestID)
	}

	s.logger.Info("Change request resolved",
		zap.Int64("request_id", resolved.ID),
		zap.Int64("schedule_id", resolved.ScheduleID),
		zap.String("status", string(resolved.Status)),
	)

	s.publish(ctx, events.NewChangeRequestResolved(resolved, now))

	return resolved, nil
}

// CancelStale отменяет pending-заявки, чьё новое время уже наступило.
// Возвращает число отменённых заявок.
func (s *ChangeRequestService) CancelStale(ctx context.Context, now time.Time) (int, error) {
	stale, err := s.requests.ListStalePending(ctx, now)
	if err != nil {
		return 0, wrapError(KindTransientFetch, err, "list stale requests")
	}

	cancelled := 0
	for _, req := range stale {
		_, err := s.Resolve(ctx, req.ID, model.ChangeRequestStatusCancelled)
		switch {
		case err == nil:
			cancelled++
		case errors.Is(err, ErrAlreadyResolved):
			// Решили параллельно, пропускаем
		default:
			return cancelled, err
		}
	}

	if cancelled > 0 {
		s.logger.Info("Stale change requests cancelled", zap.Int("count", cancelled))
	}

	return cancelled, nil
}

// Get заявка по ID
func (s *ChangeRequestService) Get(ctx context.Context, requestID int64) (*model.ScheduleChangeRequest, error) {
	req, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, wrapError(KindTransientFetch, err, "get change request %d", requestID)
	}
	if req == nil {
		return nil, newError(KindNotFound, "change request %d not found", requestID)
	}
	return req, nil
}

// ListForSchedule заявки урока, новые сначала; status nil: все
func (s *ChangeRequestService) ListForSchedule(ctx context.Context, scheduleID int64, status *model.ChangeRequestStatus) ([]*model.ScheduleChangeRequest, error) {
	requests, err := s.requests.ListByScheduleID(ctx, scheduleID, status)
	if err != nil {
		return nil, wrapError(KindTransientFetch, err, "list change requests for schedule %d", scheduleID)
	}
	return requests, nil
}

func (s *ChangeRequestService) validateSubmit(in *SubmitChangeRequest) (*string, error) {
	in.RequesterEmail = strings.TrimSpace(in.RequesterEmail)
	in.RequestedToEmail = strings.TrimSpace(in.RequestedToEmail)

	switch {
	case in.ScheduleID <= 0:
		return nil, newError(KindValidation, "schedule id is required")
	case in.RequesterEmail == "":
		return nil, newError(KindValidation, "requester email is required")
	case in.RequestedToEmail == "":
		return nil, newError(KindValidation, "requested_to email is required")
	case in.RequesterEmail == in.RequestedToEmail:
		return nil, newError(KindValidation, "requester and requested_to must differ")
	case in.OldAvailabilityID <= 0:
		return nil, newError(KindValidation, "old availability id is required")
	case in.NewAvailabilityID <= 0:
		return nil, newError(KindValidation, "new availability id is required")
	case in.OldAvailabilityID == in.NewAvailabilityID:
		return nil, newError(KindValidation, "new availability must differ from the current one")
	}

	// Причина хранится как есть; из одних пробелов считается пустой
	if in.Reason == nil || strings.TrimSpace(*in.Reason) == "" {
		return nil, nil
	}
	reason := *in.Reason
	if n := utf8.RuneCountInString(reason); n > s.settings.ReasonMaxLength {
		return nil, newError(KindValidation, "reason is %d characters, max %d", n, s.settings.ReasonMaxLength)
	}
	return &reason, nil
}

// scheduleTutor учитель урока по его текущей записи Availability
func (s *ChangeRequestService) scheduleTutor(ctx context.Context, tx ChangeRequestTx, sched *model.Schedule) (int64, error) {
	if sched.Availability != nil {
		return sched.Availability.TutorID, nil
	}

	current, err := tx.LockAvailability(ctx, sched.AvailabilityID)
	if err != nil {
		return 0, wrapError(KindTransientFetch, err, "lock availability %d", sched.AvailabilityID)
	}
	if current == nil {
		return 0, newError(KindScheduleNotEligible, "schedule %d has no availability", sched.ID)
	}
	return current.TutorID, nil
}

// prepare подставляет слоты и переводит даты в часовой пояс сетки
func (s *ChangeRequestService) prepare(avails []*model.Availability, slots map[int64]model.TimeSlot) {
	for _, a := range avails {
		if a.Slot == nil {
			if slot, ok := slots[a.SlotID]; ok {
				a.Slot = &slot
			}
		}
		if !a.StartDate.IsZero() {
			a.StartDate = a.StartDate.In(s.settings.Location)
		}
	}
}

// publish ошибки доставки только логируются: заявка уже сохранена
func (s *ChangeRequestService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("type", string(event.Type)),
			zap.Int64("request_id", event.Request.ID),
			zap.Error(err),
		)
	}
}

func indexSlots(slots []model.TimeSlot) map[int64]model.TimeSlot {
	byID := make(map[int64]model.TimeSlot, len(slots))
	for _, slot := range slots {
		byID[slot.ID] = slot
	}
	return byID
}
