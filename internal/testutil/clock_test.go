package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClock_FrozenUntilAdvanced(t *testing.T) {
	start := time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)
	c := NewClock(start)

	assert.Equal(t, start, c.Now())
	assert.Equal(t, start, c.Now(), "Now must not advance on its own")

	c.Advance(90 * time.Second)
	assert.Equal(t, start.Add(90*time.Second), c.Now())
}

func TestClock_Set(t *testing.T) {
	c := NewClock(time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC))
	later := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	c.Set(later)
	assert.Equal(t, later, c.Now())
}
