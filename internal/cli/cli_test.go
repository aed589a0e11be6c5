package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freeeeeet/lesson_scheduler/internal/app"
)

var errOpened = errors.New("opened")

func newTestApp(opened *int) *App {
	return NewApp(func(ctx context.Context) (*app.App, error) {
		*opened++
		return nil, errOpened
	})
}

func TestVersion(t *testing.T) {
	var opened int
	var buf bytes.Buffer

	err := newTestApp(&opened).ExecuteContext(context.Background(), []string{"version"}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "lesson-scheduler dev")
	assert.Zero(t, opened)
}

func TestArgumentsValidatedBeforeOpen(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"week bad role", []string{"week", "--tutor", "1", "--role", "admin"}},
		{"eligible bad role", []string{"slots", "eligible", "--tutor", "1", "--role", "guest"}},
		{"resolve bad outcome", []string{"request", "resolve", "--id", "1", "--outcome", "pending"}},
		{"list bad status", []string{"request", "list", "--schedule", "1", "--status", "lost"}},
		{"week missing tutor", []string{"week"}},
		{"migrate unknown action", []string{"migrate", "sideways"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opened int
			var buf bytes.Buffer

			err := newTestApp(&opened).ExecuteContext(context.Background(), tt.args, &buf)
			require.Error(t, err)
			assert.NotErrorIs(t, err, errOpened)
			assert.Zero(t, opened)
		})
	}
}

func TestOpenErrorIsReturned(t *testing.T) {
	var opened int
	var buf bytes.Buffer

	err := newTestApp(&opened).ExecuteContext(context.Background(),
		[]string{"request", "list", "--schedule", "1"}, &buf)
	assert.ErrorIs(t, err, errOpened)
	assert.Equal(t, 1, opened)
}
