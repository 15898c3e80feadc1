package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter sleeps until shortly before each frame deadline and spins
// the rest of the way. It falls back to the current time when it is more
// than a few milliseconds late, and nudges the schedule every 60 frames when
// the accumulated drift grows past 10ms.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
	now             func() time.Time
}

func NewAdaptiveLimiter(frame time.Duration) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		targetFrameTime: frame,
		nextFrameTime:   time.Now(),
		now:             time.Now,
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := a.now()
	sleepTime := a.nextFrameTime.Sub(now)

	if sleepTime > 0 {
		if sleepTime >= 2*time.Millisecond {
			time.Sleep(sleepTime - time.Millisecond)
		}
		for a.now().Before(a.nextFrameTime) {
		}
	} else if sleepTime < -5*time.Millisecond {
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%60 == 0 {
		drift := a.now().Sub(a.nextFrameTime)
		if drift.Abs() > 10*time.Millisecond {
			a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
			slog.Debug("Frame timing drift correction", "drift_ms", drift.Milliseconds())
		}
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrameTime = a.now()
	a.frameCounter = 0
}

// Frames returns the number of frames paced since the last reset.
func (a *AdaptiveLimiter) Frames() int64 {
	return a.frameCounter
}
