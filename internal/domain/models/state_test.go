package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionToAcceptsEveryPair(t *testing.T) {
	for _, from := range States {
		for _, to := range States {
			a := &Animal{State: from}
			require.NoError(t, a.TransitionTo(to), "%s -> %s", from, to)
			assert.Equal(t, to, a.State)
		}
	}
}

func TestTransitionToRejectsUnknownState(t *testing.T) {
	a := &Animal{State: StateServed}
	err := a.TransitionTo(State("dry"))
	require.ErrorIs(t, err, ErrUnknownState)
	assert.Equal(t, StateServed, a.State)
}

func TestNamedSetters(t *testing.T) {
	a := &Animal{State: StateDisposed}
	a.Open()
	assert.Equal(t, StateOpen, a.State)
	a.Served()
	assert.Equal(t, StateServed, a.State)
	a.Pregnant()
	assert.Equal(t, StatePregnant, a.State)
	a.Lactating()
	assert.Equal(t, StateLactating, a.State)
	a.Disposed()
	assert.Equal(t, StateDisposed, a.State)
}

func TestParseState(t *testing.T) {
	s, err := ParseState("pregnant")
	require.NoError(t, err)
	assert.Equal(t, StatePregnant, s)

	_, err = ParseState("")
	assert.ErrorIs(t, err, ErrUnknownState)
}
