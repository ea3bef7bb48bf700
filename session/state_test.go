package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewState(t *testing.T) {
	s := NewState(true, false)
	assert.Equal(t, ModeText, s.Mode)
	assert.True(t, s.Skeleton)
	assert.False(t, s.Verbose)
	assert.Empty(t, s.Exercise)
	assert.True(t, s.LastProcessedAt.IsZero())
}

func TestLatchBinaryIsOneWay(t *testing.T) {
	s := NewState(true, false)
	s.LatchBinary()
	assert.Equal(t, ModeBinary, s.Mode)
	s.LatchBinary()
	assert.Equal(t, ModeBinary, s.Mode)
}

func TestCacheResultReplacesPair(t *testing.T) {
	s := NewState(true, false)
	t1 := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s.CacheResult(t1, []string{"Good squat form!"}, []byte{0xff, 0xd8})

	assert.Equal(t, t1, s.LastProcessedAt)
	assert.Equal(t, []string{"Good squat form!"}, s.LastFeedback)
	assert.Equal(t, []byte{0xff, 0xd8}, s.LastRendered)

	t2 := t1.Add(time.Second)
	s.CacheResult(t2, []string{MsgNoPerson}, nil)
	assert.Equal(t, t2, s.LastProcessedAt)
	assert.Equal(t, []string{MsgNoPerson}, s.LastFeedback)
	assert.Nil(t, s.LastRendered)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "text", ModeText.String())
	assert.Equal(t, "binary", ModeBinary.String())
	assert.Equal(t, "unknown", Mode(99).String())
}
