package events

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/lesson_scheduler/internal/model"
)

func TestRoutingKey(t *testing.T) {
	req := &model.ScheduleChangeRequest{ID: 1, Status: model.ChangeRequestStatusPending}
	assert.Equal(t, "change_request.created", NewChangeRequestCreated(req, time.Now()).RoutingKey())

	req.Status = model.ChangeRequestStatusApproved
	assert.Equal(t, "change_request.resolved.approved", NewChangeRequestResolved(req, time.Now()).RoutingKey())
}

func TestEncodeDecode(t *testing.T) {
	reason := "заболел"
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	req := &model.ScheduleChangeRequest{
		ID:                7,
		RequestKey:        uuid.New(),
		ScheduleID:        3,
		RequesterEmail:    "learner@example.com",
		RequestedToEmail:  "tutor@example.com",
		OldAvailabilityID: 10,
		NewAvailabilityID: 11,
		Reason:            &reason,
		Status:            model.ChangeRequestStatusPending,
		CreatedAt:         at,
	}

	data, err := NewChangeRequestCreated(req, at).Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"change_request.created"`)

	decoded, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, TypeChangeRequestCreated, decoded.Type)
	assert.True(t, at.Equal(decoded.OccurredAt))
	require.NotNil(t, decoded.Request)
	assert.Equal(t, req.RequestKey, decoded.Request.RequestKey)
	assert.Equal(t, reason, *decoded.Request.Reason)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode([]byte("{"))
	assert.Error(t, err)
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: TypeChangeRequestCreated}))
	assert.NoError(t, p.Close())
}
