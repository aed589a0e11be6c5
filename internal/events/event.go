// Package events события о заявках на перенос урока и их доставка
// во внешние системы (Redis pub/sub, RabbitMQ).
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

type Type string

const (
	TypeChangeRequestCreated  Type = "change_request.created"
	TypeChangeRequestResolved Type = "change_request.resolved"
)

// Event публикуется только после коммита транзакции
type Event struct {
	Type       Type                         `json:"type"`
	OccurredAt time.Time                    `json:"occurred_at"`
	Request    *model.ScheduleChangeRequest `json:"request"`
}

func NewChangeRequestCreated(req *model.ScheduleChangeRequest, at time.Time) Event {
	return Event{Type: TypeChangeRequestCreated, OccurredAt: at, Request: req}
}

func NewChangeRequestResolved(req *model.ScheduleChangeRequest, at time.Time) Event {
	return Event{Type: TypeChangeRequestResolved, OccurredAt: at, Request: req}
}

// RoutingKey ключ маршрутизации, например change_request.resolved.approved
func (e Event) RoutingKey() string {
	if e.Type == TypeChangeRequestResolved && e.Request != nil {
		return fmt.Sprintf("%s.%s", e.Type, e.Request.Status)
	}
	return string(e.Type)
}

func (e Event) Encode() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode event %s: %w", e.Type, err)
	}
	return data, nil
}

func Decode(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, fmt.Errorf("failed to decode event: %w", err)
	}
	return e, nil
}

// Publisher доставляет события; Close освобождает соединение
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NoopPublisher используется, когда доставка событий выключена
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, event Event) error { return nil }
func (NoopPublisher) Close() error                                    { return nil }
