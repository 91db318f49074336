package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherDeliversToSubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher()

	var got []Event
	d.Subscribe(func(_ context.Context, e Event) error {
		got = append(got, e)
		return nil
	}, EventLoginSucceeded, EventLogout)

	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLoginSucceeded}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLoginFailed}))
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventLogout}))

	require.Len(t, got, 2)
	assert.Equal(t, EventLoginSucceeded, got[0].Type)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].Timestamp.IsZero())
	assert.Equal(t, EventLogout, got[1].Type)
}

func TestDispatcherJoinsHandlerErrors(t *testing.T) {
	d := NewInMemoryDispatcher()
	boom := errors.New("boom")

	calls := 0
	d.Subscribe(func(context.Context, Event) error { calls++; return boom }, EventLogout)
	d.Subscribe(func(context.Context, Event) error { calls++; return nil }, EventLogout)

	err := d.Publish(context.Background(), Event{Type: EventLogout})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls)
}
