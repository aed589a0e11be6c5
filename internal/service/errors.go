package service

import (
	"errors"
	"fmt"
)

// ErrorKind вид ошибки для вызывающего кода
type ErrorKind string

const (
	KindValidation          ErrorKind = "validation_error"
	KindScheduleNotEligible ErrorKind = "schedule_not_eligible"
	KindSlotUnavailable     ErrorKind = "slot_unavailable"
	KindSlotConflict        ErrorKind = "slot_conflict"
	KindDuplicatePending    ErrorKind = "duplicate_pending_request"
	KindNotFound            ErrorKind = "not_found"
	KindTransientFetch      ErrorKind = "transient_fetch_error"
	KindAlreadyResolved     ErrorKind = "already_resolved"
)

// Sentinel-ошибки для errors.Is
var (
	ErrValidation          = &ScheduleChangeError{Kind: KindValidation}
	ErrScheduleNotEligible = &ScheduleChangeError{Kind: KindScheduleNotEligible}
	ErrSlotUnavailable     = &ScheduleChangeError{Kind: KindSlotUnavailable}
	ErrSlotConflict        = &ScheduleChangeError{Kind: KindSlotConflict}
	ErrDuplicatePending    = &ScheduleChangeError{Kind: KindDuplicatePending}
	ErrNotFound            = &ScheduleChangeError{Kind: KindNotFound}
	ErrTransientFetch      = &ScheduleChangeError{Kind: KindTransientFetch}
	ErrAlreadyResolved     = &ScheduleChangeError{Kind: KindAlreadyResolved}
)

// ScheduleChangeError типизированная ошибка сервиса
type ScheduleChangeError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ScheduleChangeError) Error() string {
	switch {
	case e.Message == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Message == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
}

func (e *ScheduleChangeError) Unwrap() error {
	return e.Err
}

// Is совпадение по Kind, чтобы работал errors.Is(err, ErrSlotConflict)
func (e *ScheduleChangeError) Is(target error) bool {
	t, ok := target.(*ScheduleChangeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// Retryable ошибка устранима повторным запросом после перезагрузки данных
func (e *ScheduleChangeError) Retryable() bool {
	return e.Kind == KindTransientFetch || e.Kind == KindSlotUnavailable
}

func newError(kind ErrorKind, format string, args ...any) *ScheduleChangeError {
	return &ScheduleChangeError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapError(kind ErrorKind, err error, format string, args ...any) *ScheduleChangeError {
	return &ScheduleChangeError{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf вид ошибки или "" для посторонних ошибок
func KindOf(err error) ErrorKind {
	var sce *ScheduleChangeError
	if errors.As(err, &sce) {
		return sce.Kind
	}
	return ""
}

// asServiceError оставляет ошибки сервиса как есть, остальные считает сбоем хранилища
func asServiceError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var sce *ScheduleChangeError
	if errors.As(err, &sce) {
		return err
	}
	return wrapError(KindTransientFetch, err, format, args...)
}
