package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tcsenpai/TG-Manager/internal/clierr"
)

func TestDefaults(t *testing.T) {
	states := Defaults()
	assert.Equal(t, []string{Todo, CurrentlyDoing, Done}, Names(states))
	for _, s := range states {
		assert.NotEmpty(t, s.HexColor)
		assert.NotEmpty(t, s.Icon)
	}

	// Callers get independent copies.
	states[0].Name = "changed"
	assert.Equal(t, Todo, Defaults()[0].Name)
}

func TestNext(t *testing.T) {
	states := Defaults()

	next, ok, err := Next(Todo, states)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, CurrentlyDoing, next)

	next, ok, err = Next(CurrentlyDoing, states)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Done, next)

	next, ok, err = Next(Done, states)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, next)
}

func TestNext_UnknownState(t *testing.T) {
	_, _, err := Next("blocked", Defaults())
	require.Error(t, err)
	assert.True(t, clierr.Is(err, clierr.UnknownState))
}

func TestNext_ReachesFinalInLenMinusOneSteps(t *testing.T) {
	states := []TaskState{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "e"}}

	current := Default(states)
	steps := 0
	for {
		next, ok, err := Next(current, states)
		require.NoError(t, err)
		if !ok {
			break
		}
		current = next
		steps++
	}
	assert.Equal(t, len(states)-1, steps)
	assert.Equal(t, Final(states), current)
	assert.True(t, IsFinal(current, states))
}

func TestFinalDefaultIsFinal(t *testing.T) {
	states := Defaults()
	assert.Equal(t, Done, Final(states))
	assert.Equal(t, Todo, Default(states))
	assert.True(t, IsFinal(Done, states))
	assert.False(t, IsFinal(Todo, states))

	assert.Empty(t, Final(nil))
	assert.Empty(t, Default(nil))
	assert.False(t, IsFinal("", nil))
}

func TestValidateAndLookup(t *testing.T) {
	states := Defaults()
	assert.NoError(t, Validate(Done, states))
	assert.True(t, clierr.Is(Validate("nope", states), clierr.UnknownState))

	s, ok := Lookup(states, CurrentlyDoing)
	require.True(t, ok)
	assert.Equal(t, CurrentlyDoing, s.Name)
	_, ok = Lookup(states, "nope")
	assert.False(t, ok)
	assert.Equal(t, 2, Index(states, Done))
	assert.Equal(t, -1, Index(states, "nope"))
}
