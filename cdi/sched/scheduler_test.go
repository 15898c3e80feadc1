package sched

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerOrdering(t *testing.T) {
	s := New()
	var order []string

	a := s.NewTimer("a", func() { order = append(order, "a") })
	b := s.NewTimer("b", func() { order = append(order, "b") })
	c := s.NewTimer("c", func() { order = append(order, "c") })

	c.Adjust(30 * time.Nanosecond)
	a.Adjust(10 * time.Nanosecond)
	b.Adjust(10 * time.Nanosecond)

	fired := s.RunUntil(100 * time.Nanosecond)

	assert.Equal(t, 3, fired)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, 100*time.Nanosecond, s.Now())
	assert.Equal(t, 0, s.Pending())
}

func TestTimerReArmReplacesPending(t *testing.T) {
	s := New()
	count := 0
	tm := s.NewTimer("once", func() { count++ })

	tm.Adjust(50 * time.Nanosecond)
	tm.Adjust(20 * time.Nanosecond)
	assert.Equal(t, 1, s.Pending())

	when, ok := tm.Expire()
	require.True(t, ok)
	assert.Equal(t, 20*time.Nanosecond, when)

	s.RunUntil(100 * time.Nanosecond)
	assert.Equal(t, 1, count)
	assert.False(t, tm.Armed())
}

func TestTimerPeriodicByReArm(t *testing.T) {
	s := New()
	var fires []time.Duration
	var tm *Timer
	tm = s.NewTimer("periodic", func() {
		fires = append(fires, s.Now())
		tm.Adjust(10 * time.Nanosecond)
	})
	tm.Adjust(10 * time.Nanosecond)

	s.RunUntil(35 * time.Nanosecond)

	assert.Equal(t, []time.Duration{10, 20, 30}, fires)
	assert.True(t, tm.Armed())

	remaining, ok := tm.Remaining()
	require.True(t, ok)
	assert.Equal(t, 5*time.Nanosecond, remaining)
}

func TestTimerCancel(t *testing.T) {
	s := New()
	fired := false
	tm := s.NewTimer("cancelled", func() { fired = true })

	tm.Adjust(time.Microsecond)
	tm.Cancel()
	s.RunUntil(time.Millisecond)

	assert.False(t, fired)
	assert.Equal(t, 0, s.Pending())

	_, ok := s.Next()
	assert.False(t, ok)
}

func TestSchedulerReset(t *testing.T) {
	s := New()
	tm := s.NewTimer("x", func() {})
	tm.Adjust(time.Second)
	s.RunUntil(time.Millisecond)

	s.Reset()

	assert.Equal(t, time.Duration(0), s.Now())
	assert.False(t, tm.Armed())
	assert.Equal(t, 0, s.Pending())
}
