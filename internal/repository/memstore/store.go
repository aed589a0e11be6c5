// Package memstore хранилище в памяти с теми же гарантиями, что и Postgres:
// транзакции сериализуются мьютексом, вторая pending-заявка на урок отклоняется.
// Используется в тестах сервисов.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
)

type Store struct {
	mu        sync.Mutex
	slots     map[int64]model.TimeSlot
	avails    map[int64]model.Availability
	schedules map[int64]model.Schedule
	requests  map[int64]model.ScheduleChangeRequest
	nextID    int64

	// FailReads заставляет чтения вне транзакции возвращать ошибку (для тестов)
	FailReads error
}

func New() *Store {
	return &Store{
		slots:     make(map[int64]model.TimeSlot),
		avails:    make(map[int64]model.Availability),
		schedules: make(map[int64]model.Schedule),
		requests:  make(map[int64]model.ScheduleChangeRequest),
	}
}

// ============ Наполнение ============

func (s *Store) AddTimeSlot(slot model.TimeSlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[slot.ID] = slot
}

func (s *Store) AddAvailability(a model.Availability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Slot = nil
	s.avails[a.ID] = a
}

func (s *Store) AddSchedule(sched model.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sched.Availability = nil
	s.schedules[sched.ID] = sched
}

// SetAvailabilityStatus имитирует изменение записи другой подсистемой
func (s *Store) SetAvailabilityStatus(id int64, status model.AvailabilityStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.avails[id]
	if !ok {
		return fmt.Errorf("availability %d not found", id)
	}
	a.Status = status
	s.avails[id] = a
	return nil
}

// ============ Чтение вне транзакции ============

func (s *Store) List(ctx context.Context) ([]model.TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailReads != nil {
		return nil, s.FailReads
	}

	slots := make([]model.TimeSlot, 0, len(s.slots))
	for _, slot := range s.slots {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].StartTime != slots[j].StartTime {
			return slots[i].StartTime < slots[j].StartTime
		}
		return slots[i].ID < slots[j].ID
	})
	return slots, nil
}

func (s *Store) ListByTutor(ctx context.Context, tutorID int64) ([]*model.Availability, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailReads != nil {
		return nil, s.FailReads
	}

	var result []*model.Availability
	for _, a := range s.avails {
		if a.TutorID == tutorID {
			a := a
			result = append(result, &a)
		}
	}
	sortAvailabilities(result)
	return result, nil
}

func (s *Store) ListByParty(ctx context.Context, email string, status *model.ScheduleStatus) ([]*model.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailReads != nil {
		return nil, s.FailReads
	}
	return s.listByParty(email, status), nil
}

func (s *Store) ListByScheduleID(ctx context.Context, scheduleID int64, status *model.ChangeRequestStatus) ([]*model.ScheduleChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailReads != nil {
		return nil, s.FailReads
	}
	return s.listRequests(scheduleID, status), nil
}

func (s *Store) ListStalePending(ctx context.Context, now time.Time) ([]*model.ScheduleChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailReads != nil {
		return nil, s.FailReads
	}

	var result []*model.ScheduleChangeRequest
	for _, r := range s.requests {
		if !r.IsPending() {
			continue
		}
		target, ok := s.avails[r.NewAvailabilityID]
		if !ok || target.StartDate.IsZero() || target.StartDate.After(now) {
			continue
		}
		r := r
		result = append(result, &r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *Store) GetByID(ctx context.Context, id int64) (*model.ScheduleChangeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailReads != nil {
		return nil, s.FailReads
	}

	r, ok := s.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

// ============ Транзакции ============

// InTx держит мьютекс на всё время fn; записи применяются только при успехе
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx service.ChangeRequestTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for _, req := range tx.created {
		s.requests[req.ID] = *req
	}
	for id, upd := range tx.updated {
		r := s.requests[id]
		r.Status = upd.status
		at := upd.at
		r.ResolvedAt = &at
		s.requests[id] = r
	}
	return nil
}

type statusUpdate struct {
	status model.ChangeRequestStatus
	at     time.Time
}

type memTx struct {
	store   *Store
	created []*model.ScheduleChangeRequest
	updated map[int64]statusUpdate
}

func (t *memTx) LockSchedule(ctx context.Context, scheduleID int64) (*model.Schedule, error) {
	sched, ok := t.store.schedules[scheduleID]
	if !ok {
		return nil, nil
	}
	return t.store.withAvailability(sched), nil
}

func (t *memTx) LockAvailability(ctx context.Context, availabilityID int64) (*model.Availability, error) {
	a, ok := t.store.avails[availabilityID]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (t *memTx) ListPartySchedules(ctx context.Context, email string, status model.ScheduleStatus) ([]*model.Schedule, error) {
	return t.store.listByParty(email, &status), nil
}

func (t *memTx) ListChangeRequests(ctx context.Context, scheduleID int64, status *model.ChangeRequestStatus) ([]*model.ScheduleChangeRequest, error) {
	result := t.store.listRequests(scheduleID, status)
	for _, r := range t.created {
		if r.ScheduleID == scheduleID && (status == nil || r.Status == *status) {
			c := *r
			result = append(result, &c)
		}
	}
	return result, nil
}

func (t *memTx) CreateChangeRequest(ctx context.Context, req *model.ScheduleChangeRequest) error {
	if req.Status == model.ChangeRequestStatusPending {
		pending := model.ChangeRequestStatusPending
		existing, _ := t.ListChangeRequests(ctx, req.ScheduleID, &pending)
		if len(existing) > 0 {
			return fmt.Errorf("create change request: %w", service.ErrPendingRequestExists)
		}
	}

	t.store.nextID++
	req.ID = t.store.nextID
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}

	c := *req
	t.created = append(t.created, &c)
	return nil
}

func (t *memTx) LockChangeRequest(ctx context.Context, id int64) (*model.ScheduleChangeRequest, error) {
	r, ok := t.store.requests[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (t *memTx) UpdateChangeRequestStatus(ctx context.Context, id int64, status model.ChangeRequestStatus, resolvedAt time.Time) error {
	r, ok := t.store.requests[id]
	if !ok || !r.IsPending() {
		return fmt.Errorf("update change request %d: %w", id, model.ErrRequestResolved)
	}
	if _, done := t.updated[id]; done {
		return fmt.Errorf("update change request %d: %w", id, model.ErrRequestResolved)
	}

	if t.updated == nil {
		t.updated = make(map[int64]statusUpdate)
	}
	t.updated[id] = statusUpdate{status: status, at: resolvedAt}
	return nil
}

// ============ Вспомогательные ============

func (s *Store) listByParty(email string, status *model.ScheduleStatus) []*model.Schedule {
	var result []*model.Schedule
	for _, sched := range s.schedules {
		if sched.LearnerEmail != email && sched.TutorEmail != email {
			continue
		}
		if status != nil && sched.Status != *status {
			continue
		}
		result = append(result, s.withAvailability(sched))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func (s *Store) withAvailability(sched model.Schedule) *model.Schedule {
	if a, ok := s.avails[sched.AvailabilityID]; ok {
		sched.Availability = &a
	}
	return &sched
}

func (s *Store) listRequests(scheduleID int64, status *model.ChangeRequestStatus) []*model.ScheduleChangeRequest {
	var result []*model.ScheduleChangeRequest
	for _, r := range s.requests {
		if r.ScheduleID != scheduleID {
			continue
		}
		if status != nil && r.Status != *status {
			continue
		}
		r := r
		result = append(result, &r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result
}

func sortAvailabilities(avails []*model.Availability) {
	sort.Slice(avails, func(i, j int) bool {
		if !avails[i].StartDate.Equal(avails[j].StartDate) {
			return avails[i].StartDate.Before(avails[j].StartDate)
		}
		return avails[i].ID < avails[j].ID
	})
}
