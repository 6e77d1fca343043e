package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsForeground(t *testing.T) {
	assert.True(t, StateActive.IsForeground())
	assert.False(t, StateInactive.IsForeground())
	assert.False(t, StateBackground.IsForeground())
}

func TestSignalNotifiesOnTransition(t *testing.T) {
	signal := NewSignal()
	assert.Equal(t, StateActive, signal.Current())

	var transitions [][2]State
	signal.Subscribe(func(old, new State) {
		transitions = append(transitions, [2]State{old, new})
	})

	signal.Set(StateBackground)
	signal.Set(StateBackground) // no-op, already there
	signal.Set(StateActive)

	assert.Equal(t, [][2]State{
		{StateActive, StateBackground},
		{StateBackground, StateActive},
	}, transitions)
	assert.Equal(t, StateActive, signal.Current())
}
