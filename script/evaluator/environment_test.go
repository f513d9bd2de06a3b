package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironment(t *testing.T) {
	env := NewEnvironment()

	_, ok := env.Get("x")
	assert.False(t, ok)

	env.Set("x", true)
	env.Set("b", false)
	env.Set("x", false)

	v, ok := env.Get("x")
	assert.True(t, ok)
	assert.False(t, v)
	assert.Equal(t, 2, env.Len())
	assert.Equal(t, []string{"b", "x"}, env.Names())

	snap := env.Snapshot()
	snap["x"] = true
	snap["y"] = true

	v, _ = env.Get("x")
	assert.False(t, v)
	assert.Equal(t, 2, env.Len())
}
