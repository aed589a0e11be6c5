package service

import (
	"context"
	"errors"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/events"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

// ErrPendingRequestExists хранилище отклонило вставку второй pending-заявки на урок
var ErrPendingRequestExists = errors.New("pending change request already exists for schedule")

// AvailabilityProvider записи Availability учителя
type AvailabilityProvider interface {
	ListByTutor(ctx context.Context, tutorID int64) ([]*model.Availability, error)
}

// ScheduleProvider уроки участника (ученика или учителя) вместе с Availability
type ScheduleProvider interface {
	ListByParty(ctx context.Context, email string, status *model.ScheduleStatus) ([]*model.Schedule, error)
}

// TimeSlotSource справочник слотов
type TimeSlotSource interface {
	List(ctx context.Context) ([]model.TimeSlot, error)
}

// ChangeRequestRepository чтение заявок вне транзакции
type ChangeRequestRepository interface {
	GetByID(ctx context.Context, id int64) (*model.ScheduleChangeRequest, error)
	ListByScheduleID(ctx context.Context, scheduleID int64, status *model.ChangeRequestStatus) ([]*model.ScheduleChangeRequest, error)
	// ListStalePending pending-заявки, новое время которых уже наступило
	ListStalePending(ctx context.Context, now time.Time) ([]*model.ScheduleChangeRequest, error)
}

// ChangeRequestTx операции внутри транзакции создания/решения заявки.
// Lock* блокируют строку до конца транзакции.
type ChangeRequestTx interface {
	LockSchedule(ctx context.Context, scheduleID int64) (*model.Schedule, error)
	LockAvailability(ctx context.Context, availabilityID int64) (*model.Availability, error)
	ListPartySchedules(ctx context.Context, email string, status model.ScheduleStatus) ([]*model.Schedule, error)
	ListChangeRequests(ctx context.Context, scheduleID int64, status *model.ChangeRequestStatus) ([]*model.ScheduleChangeRequest, error)
	// CreateChangeRequest возвращает ErrPendingRequestExists при нарушении уникальности pending
	CreateChangeRequest(ctx context.Context, req *model.ScheduleChangeRequest) error
	LockChangeRequest(ctx context.Context, id int64) (*model.ScheduleChangeRequest, error)
	// UpdateChangeRequestStatus меняет только pending-заявку, иначе model.ErrRequestResolved
	UpdateChangeRequestStatus(ctx context.Context, id int64, status model.ChangeRequestStatus, resolvedAt time.Time) error
}

// UnitOfWork выполняет fn в одной транзакции: commit при nil, rollback при ошибке
type UnitOfWork interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx ChangeRequestTx) error) error
}

// EventPublisher публикует события о заявках после коммита
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}
