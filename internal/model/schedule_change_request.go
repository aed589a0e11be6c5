package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type ChangeRequestStatus string

const (
	ChangeRequestStatusPending   ChangeRequestStatus = "pending"   // Ожидает решения второй стороны
	ChangeRequestStatusApproved  ChangeRequestStatus = "approved"  // Одобрено
	ChangeRequestStatusRejected  ChangeRequestStatus = "rejected"  // Отклонено
	ChangeRequestStatusCancelled ChangeRequestStatus = "cancelled" // Отменено (инициатором или системой)
)

var (
	ErrRequestResolved   = errors.New("change request is already resolved")
	ErrInvalidTransition = errors.New("invalid change request transition")
)

// ScheduleChangeRequest заявка на перенос урока в другое время
type ScheduleChangeRequest struct {
	ID                int64               `json:"id"`
	RequestKey        uuid.UUID           `json:"request_key"` // публичный идентификатор для внешних систем
	ScheduleID        int64               `json:"schedule_id"`
	RequesterEmail    string              `json:"requester_email"`
	RequestedToEmail  string              `json:"requested_to_email"`
	OldAvailabilityID int64               `json:"old_availability_id"`
	NewAvailabilityID int64               `json:"new_availability_id"`
	Reason            *string             `json:"reason"`
	Status            ChangeRequestStatus `json:"status"`
	CreatedAt         time.Time           `json:"created_at"`
	ResolvedAt        *time.Time          `json:"resolved_at"`
}

// IsTerminal проверяет, что из статуса нет переходов
func (s ChangeRequestStatus) IsTerminal() bool {
	switch s {
	case ChangeRequestStatusApproved, ChangeRequestStatusRejected, ChangeRequestStatusCancelled:
		return true
	default:
		return false
	}
}

// IsValid проверяет, что статус известен
func (s ChangeRequestStatus) IsValid() bool {
	return s == ChangeRequestStatusPending || s.IsTerminal()
}

// CanTransitionTo разрешены только переходы pending -> терминальный статус
func (s ChangeRequestStatus) CanTransitionTo(next ChangeRequestStatus) bool {
	return s == ChangeRequestStatusPending && next.IsTerminal()
}

// IsPending checks if request is pending
func (r *ScheduleChangeRequest) IsPending() bool {
	return r.Status == ChangeRequestStatusPending
}

// Resolve переводит заявку в терминальный статус
func (r *ScheduleChangeRequest) Resolve(outcome ChangeRequestStatus, at time.Time) error {
	if r.Status.IsTerminal() {
		return fmt.Errorf("%w: request %d is %s", ErrRequestResolved, r.ID, r.Status)
	}
	if !r.Status.CanTransitionTo(outcome) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.Status, outcome)
	}

	r.Status = outcome
	r.ResolvedAt = &at
	return nil
}
