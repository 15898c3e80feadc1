package timing

import "time"

// TickerLimiter paces frames on a time.Ticker. Late frames are not made up,
// unlike AdaptiveLimiter. Stop releases the ticker.
type TickerLimiter struct {
	frame  time.Duration
	ticker *time.Ticker
}

func NewTickerLimiter(frame time.Duration) *TickerLimiter {
	return &TickerLimiter{
		frame:  frame,
		ticker: time.NewTicker(frame),
	}
}

func (t *TickerLimiter) WaitForNextFrame() {
	<-t.ticker.C
}

func (t *TickerLimiter) Reset() {
	t.ticker.Reset(t.frame)
}

func (t *TickerLimiter) Stop() {
	t.ticker.Stop()
}
