package roll

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Table(t *testing.T) {
	cases := map[State]State{
		StateUnmarked: StatePresent,
		StatePresent:  StateLate,
		StateLate:     StateAbsent,
		StateAbsent:   StatePresent,
	}
	for from, want := range cases {
		assert.Equal(t, want, Next(from), "Next(%s)", from)
	}
}

func TestNext_CyclesWithoutUnmarked(t *testing.T) {
	s := StatePresent
	seen := []State{s}
	for i := 0; i < 4; i++ {
		s = Next(s)
		seen = append(seen, s)
	}

	assert.Equal(t, []State{StatePresent, StateLate, StateAbsent, StatePresent, StateLate}, seen)
	assert.NotContains(t, seen, StateUnmarked)
}

func TestNext_NeverReturnsUnmarked(t *testing.T) {
	for _, s := range States {
		assert.NotEqual(t, StateUnmarked, Next(s))
	}
}

func TestParseState(t *testing.T) {
	s, err := ParseState("late")
	require.NoError(t, err)
	assert.Equal(t, StateLate, s)

	_, err = ParseState("sick")
	assert.True(t, errors.Is(err, ErrInvalidState))

	_, err = ParseState("")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestState_Counted(t *testing.T) {
	assert.False(t, StateUnmarked.Counted())
	assert.True(t, StatePresent.Counted())
	assert.True(t, StateLate.Counted())
	assert.True(t, StateAbsent.Counted())
}
