package mediator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ping struct{ N int }

type pong struct{ N int }

func double() HandlerFunc[ping, pong] {
	return func(_ context.Context, p ping) (pong, error) {
		return pong{N: p.N * 2}, nil
	}
}

type recordingValidator struct {
	name  string
	calls *[]string
	err   error
}

func (v recordingValidator) Validate(context.Context, ping) error {
	*v.calls = append(*v.calls, v.name)
	return v.err
}

func TestSend(t *testing.T) {
	m := New()
	require.NoError(t, Handle[ping, pong](m, double()))

	got, err := Send[ping, pong](context.Background(), m, ping{N: 21})
	require.NoError(t, err)
	assert.Equal(t, 42, got.N)
	assert.True(t, Has[ping](m))
}

func TestSendWithoutHandler(t *testing.T) {
	m := New()
	require.NoError(t, AddValidator[ping](m, recordingValidator{calls: new([]string)}))

	_, err := Send[ping, pong](context.Background(), m, ping{})
	assert.ErrorIs(t, err, ErrNoHandler)
	assert.False(t, Has[ping](m))
	assert.Empty(t, m.Routes())
}

func TestDuplicateHandler(t *testing.T) {
	m := New()
	require.NoError(t, Handle[ping, pong](m, double()))

	err := Handle[ping, pong](m, double())
	assert.ErrorIs(t, err, ErrDuplicateHandler)

	err = Handle[ping, string](m, HandlerFunc[ping, string](func(context.Context, ping) (string, error) {
		return "", nil
	}))
	assert.ErrorIs(t, err, ErrDuplicateHandler)
}

func TestResponseTypeMismatch(t *testing.T) {
	m := New()
	require.NoError(t, Handle[ping, pong](m, double()))

	_, err := Send[ping, string](context.Background(), m, ping{})
	assert.ErrorIs(t, err, ErrResponseType)
}

func TestValidatorsRunInOrderAndShortCircuit(t *testing.T) {
	var calls []string
	rejected := errors.New("rejected")
	handled := false

	m := New()
	require.NoError(t, AddValidator[ping](m, recordingValidator{name: "first", calls: &calls}))
	require.NoError(t, Handle[ping, pong](m, HandlerFunc[ping, pong](func(context.Context, ping) (pong, error) {
		handled = true
		return pong{}, nil
	})))
	require.NoError(t, AddValidator[ping](m, recordingValidator{name: "second", calls: &calls, err: rejected}))
	require.NoError(t, AddValidator[ping](m, recordingValidator{name: "third", calls: &calls}))

	_, err := Send[ping, pong](context.Background(), m, ping{})
	assert.ErrorIs(t, err, rejected)
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.False(t, handled)
}

func TestSendCanceled(t *testing.T) {
	m := New()
	require.NoError(t, Handle[ping, pong](m, double()))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Send[ping, pong](ctx, m, ping{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRoutes(t *testing.T) {
	m := New()
	require.NoError(t, Handle[ping, pong](m, double()))
	require.NoError(t, AddValidator[ping](m, recordingValidator{calls: new([]string)}))
	require.NoError(t, Handle[pong, ping](m, HandlerFunc[pong, ping](func(_ context.Context, p pong) (ping, error) {
		return ping(p), nil
	})))

	routes := m.Routes()
	require.Len(t, routes, 2)
	assert.Equal(t, "mediator.ping -> mediator.pong (1 validators)", routes[0].String())
	assert.Equal(t, 0, routes[1].Validators)
}

func TestNilRegistrations(t *testing.T) {
	m := New()
	assert.Error(t, Handle[ping, pong](m, nil))
	assert.Error(t, AddValidator[ping](m, nil))
}
