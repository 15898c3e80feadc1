package scc68070

import (
	"fmt"
	"time"

	"github.com/valerio/go-cdi/cdi/sched"
)

// Timer status register bits.
const (
	TSROverflow0 uint8 = 0x80
	TSRMatch1    uint8 = 0x40
	TSRCapture1  uint8 = 0x20
	TSROverflow1 uint8 = 0x10
	TSRMatch2    uint8 = 0x08
	TSRCapture2  uint8 = 0x04
	TSROverflow2 uint8 = 0x02
)

// timerVectorBase is added to the selected level to form the autovector
// supplied with a timer interrupt.
const timerVectorBase = 56

// Timers holds the SCC68070 counter/timer block. Timer0 is a 16-bit up
// counter that overflows at 0x10000 and reloads from the reload register;
// timer1 and timer2 are stored but not clocked.
type Timers struct {
	status  uint8
	control uint8
	reload  uint16
	timer0  uint16
	timer1  uint16
	timer2  uint16

	tick  time.Duration
	timer *sched.Timer
}

func (t *Timers) reset() {
	t.status = 0
	t.control = 0
	t.reload = 0
	t.timer0 = 0
	t.timer1 = 0
	t.timer2 = 0
	if t.timer != nil {
		t.timer.Cancel()
	}
}

// Status returns the timer status register.
func (t *Timers) Status() uint8 { return t.status }

// Timer0 returns the current timer0 value.
func (t *Timers) Timer0() uint16 { return t.timer0 }

// Reload returns the reload register.
func (t *Timers) Reload() uint16 { return t.reload }

// Tick returns the period of one timer input clock.
func (t *Timers) Tick() time.Duration { return t.tick }

// ticksToOverflow is the number of input clocks until timer0 wraps.
func (t *Timers) ticksToOverflow() uint32 {
	return 0x10000 - uint32(t.timer0)
}

// arm schedules the timer0 overflow for the current counter value.
func (p *Peripherals) armTimer0() {
	compare := p.timers.ticksToOverflow()
	period := time.Duration(compare) * p.timers.tick
	p.timers.timer.Adjust(period)
	p.logger.Debug("Timer0 armed",
		"timer0", fmt.Sprintf("0x%04X", p.timers.timer0),
		"ticks", compare,
		"period", period)
}

// timer0Overflow is the timer0 one-shot callback: reload, flag, interrupt, re-arm.
func (p *Peripherals) timer0Overflow() {
	p.timers.timer0 = p.timers.reload
	p.timers.status |= TSROverflow0

	if level := p.timerLevel(); level != 0 {
		p.lines.Assert(level, uint8(timerVectorBase+level))
		p.logger.Debug("Timer0 overflow interrupt", "level", level, "vector", timerVectorBase+level)
	}

	p.armTimer0()
}

// timerLevel is the interrupt level PICR1 assigns to the timer block.
func (p *Peripherals) timerLevel() int {
	return int(p.picr1 & 0x07)
}

// clearTimerStatus applies a write-1-to-clear to the status register and
// drops the timer interrupt once nothing is left pending.
func (p *Peripherals) clearTimerStatus(bits uint8) {
	p.timers.status &^= bits
	if p.timers.status == 0 {
		if level := p.timerLevel(); level != 0 {
			p.lines.Clear(level)
		}
	}
}
