package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldProcess(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("first frame always processes", func(t *testing.T) {
		assert.True(t, ShouldProcess(base, time.Time{}, 5))
	})

	t.Run("disabled when rate is zero", func(t *testing.T) {
		assert.True(t, ShouldProcess(base, base, 0))
		assert.True(t, ShouldProcess(base, base, -1))
	})

	t.Run("rejects frames inside the interval", func(t *testing.T) {
		// 5 fps -> 200ms interval
		assert.False(t, ShouldProcess(base.Add(100*time.Millisecond), base, 5))
		assert.False(t, ShouldProcess(base.Add(199*time.Millisecond), base, 5))
	})

	t.Run("accepts frames at or past the interval", func(t *testing.T) {
		assert.True(t, ShouldProcess(base.Add(200*time.Millisecond), base, 5))
		assert.True(t, ShouldProcess(base.Add(time.Second), base, 5))
	})

	t.Run("fractional rates", func(t *testing.T) {
		// 0.5 fps -> 2s interval
		assert.False(t, ShouldProcess(base.Add(time.Second), base, 0.5))
		assert.True(t, ShouldProcess(base.Add(2*time.Second), base, 0.5))
	})
}
