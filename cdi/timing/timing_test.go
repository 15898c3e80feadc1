package timing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFrameDuration(t *testing.T) {
	assert.Equal(t, time.Second/60, FrameDuration(60))
	assert.Equal(t, 20*time.Millisecond, FrameDuration(50))
	assert.Zero(t, FrameDuration(0))
}

func TestNoOpLimiterReturnsImmediately(t *testing.T) {
	l := NewNoOpLimiter()
	start := time.Now()
	for i := 0; i < 1000; i++ {
		l.WaitForNextFrame()
	}
	assert.Less(t, time.Since(start), time.Second)
}

func TestAdaptiveLimiterCatchesUp(t *testing.T) {
	a := NewAdaptiveLimiter(time.Millisecond)
	// Pretend the host stalled: the deadline is far in the past.
	a.nextFrameTime = time.Now().Add(-time.Second)

	start := time.Now()
	a.WaitForNextFrame()

	assert.Less(t, time.Since(start), 100*time.Millisecond, "a late frame does not wait")
	assert.True(t, a.nextFrameTime.After(start.Add(-10*time.Millisecond)), "schedule rebased on now")
	assert.Equal(t, int64(1), a.Frames())

	a.Reset()
	assert.Zero(t, a.Frames())
}

func TestAdaptiveLimiterPaces(t *testing.T) {
	a := NewAdaptiveLimiter(5 * time.Millisecond)
	a.Reset()

	start := time.Now()
	for i := 0; i < 4; i++ {
		a.WaitForNextFrame()
	}

	// The first frame is due immediately, the next three 5ms apart.
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
}

func TestTickerLimiter(t *testing.T) {
	l := NewTickerLimiter(time.Millisecond)
	defer l.Stop()
	l.WaitForNextFrame()
	l.Reset()
	l.WaitForNextFrame()
}
