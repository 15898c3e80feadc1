package scc68070

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cdi/cdi/addr"
	"github.com/valerio/go-cdi/cdi/bit"
	"github.com/valerio/go-cdi/cdi/irq"
	"github.com/valerio/go-cdi/cdi/sched"
	"github.com/valerio/go-cdi/cdi/serial"
)

func newTestPeripherals(t *testing.T, opts Options) (*Peripherals, *sched.Scheduler, *irq.Lines) {
	t.Helper()
	s := sched.New()
	lines := irq.New()
	return New(s, lines, opts), s, lines
}

func TestTimerTick(t *testing.T) {
	p, _, _ := newTestPeripherals(t, DefaultOptions())
	assert.Equal(t, 100*time.Nanosecond, p.Timers().Tick())

	p, _, _ = newTestPeripherals(t, Options{ClockHz: 15_000_000, TimerDivider: 3})
	assert.Equal(t, 200*time.Nanosecond, p.Timers().Tick())
}

func TestTimer0Overflow(t *testing.T) {
	p, s, lines := newTestPeripherals(t, DefaultOptions())

	p.Write(addr.PICR1, 0x0004, bit.LowLane)
	p.Write(addr.TimerReload, 0xFF00, bit.AllLanes)
	p.Write(addr.Timer0, 0xFF00, bit.AllLanes)

	// 0x100 ticks of 100ns until overflow.
	when, ok := p.timers.timer.Expire()
	require.True(t, ok)
	assert.Equal(t, 25600*time.Nanosecond, when)

	s.RunUntil(when - time.Nanosecond)
	assert.False(t, lines.Asserted(4))

	s.RunUntil(when)
	assert.True(t, lines.Asserted(4))
	assert.Equal(t, uint8(60), lines.Vector(4))
	assert.Equal(t, TSROverflow0, p.Timers().Status())
	assert.Equal(t, uint16(0xFF00), p.Timers().Timer0())

	next, ok := p.timers.timer.Expire()
	require.True(t, ok, "timer0 re-arms after overflow")
	assert.Equal(t, 2*when, next)
}

func TestTimer0ReloadsFromReloadRegister(t *testing.T) {
	tests := []struct {
		name   string
		start  uint16
		reload uint16
	}{
		{"short first period", 0xFFF0, 0xFF00},
		{"long first period", 0xF000, 0xFFFE},
		{"zero reload", 0xFFFF, 0x0000},
		{"start from zero", 0x0000, 0x8000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, s, _ := newTestPeripherals(t, DefaultOptions())
			tick := p.Timers().Tick()

			p.Write(addr.TimerReload, tt.reload, bit.AllLanes)
			p.Write(addr.Timer0, tt.start, bit.AllLanes)

			first, ok := p.timers.timer.Expire()
			require.True(t, ok)
			assert.Equal(t, time.Duration(0x10000-uint32(tt.start))*tick, first)

			s.RunUntil(first)
			assert.Equal(t, tt.reload, p.Timers().Timer0(), "counter reloads on overflow")

			next, ok := p.timers.timer.Expire()
			require.True(t, ok)
			assert.Equal(t, time.Duration(0x10000-uint32(tt.reload))*tick, next-first,
				"later periods count from the reload value")
		})
	}
}

func TestTimer0FiresPeriodically(t *testing.T) {
	p, s, _ := newTestPeripherals(t, DefaultOptions())
	p.Write(addr.TimerReload, 0xFFF6, bit.AllLanes) // 10 ticks
	p.Write(addr.Timer0, 0xFFF6, bit.AllLanes)

	fired := s.RunUntil(10 * time.Microsecond)
	assert.Equal(t, 10, fired)
}

func TestTimerStatusWriteOneToClear(t *testing.T) {
	p, s, lines := newTestPeripherals(t, DefaultOptions())
	p.Write(addr.PICR1, 0x0002, bit.LowLane)
	p.Write(addr.TimerReload, 0xFFFF, bit.AllLanes)
	p.Write(addr.Timer0, 0xFFFF, bit.AllLanes)
	s.RunUntil(100 * time.Nanosecond)
	require.True(t, lines.Asserted(2))

	t.Run("clearing an unset bit keeps the line", func(t *testing.T) {
		p.Write(addr.TimerControl, uint16(TSRMatch1)<<8, bit.HighLane)
		assert.Equal(t, TSROverflow0, p.Timers().Status())
		assert.True(t, lines.Asserted(2))
	})

	t.Run("clearing the last bit drops the line", func(t *testing.T) {
		p.timers.timer.Cancel()
		p.Write(addr.TimerControl, uint16(TSROverflow0)<<8, bit.HighLane)
		assert.Zero(t, p.Timers().Status())
		assert.False(t, lines.Asserted(2))
	})

	t.Run("clearing twice is idempotent", func(t *testing.T) {
		p.Write(addr.TimerControl, uint16(TSROverflow0)<<8, bit.HighLane)
		assert.Zero(t, p.Timers().Status())
		assert.False(t, lines.Asserted(2))
	})
}

func TestTimerLevelZeroRaisesNothing(t *testing.T) {
	p, s, lines := newTestPeripherals(t, DefaultOptions())
	p.Write(addr.Timer0, 0xFFFF, bit.AllLanes)
	s.RunUntil(time.Microsecond)

	_, _, ok := lines.Pending()
	assert.False(t, ok)
	assert.Equal(t, TSROverflow0, p.Timers().Status())
}

func TestTimerControlLowLaneKeepsStatus(t *testing.T) {
	p, s, _ := newTestPeripherals(t, DefaultOptions())
	p.Write(addr.Timer0, 0xFFFF, bit.AllLanes)
	s.RunUntil(100 * time.Nanosecond)

	p.Write(addr.TimerControl, 0xFF55, bit.LowLane)
	assert.Equal(t, TSROverflow0, p.Timers().Status())
	assert.Equal(t, uint16(0x8055), p.Read(addr.TimerControl, bit.AllLanes))
}

func TestLaneMasking(t *testing.T) {
	p, _, _ := newTestPeripherals(t, DefaultOptions())

	tests := []struct {
		name   string
		offset uint32
	}{
		{"LIR", addr.LIR},
		{"reload", addr.TimerReload},
		{"timer1", addr.Timer1},
		{"timer2", addr.Timer2},
		{"MMU attributes", addr.MMUDescriptors + 3*addr.MMUDescriptorLen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.Write(tt.offset, 0x1234, bit.AllLanes)
			p.Write(tt.offset, 0xAAFF, bit.LowLane)
			assert.Equal(t, uint16(0x12FF), p.Read(tt.offset, bit.AllLanes))

			p.Write(tt.offset, 0x77BB, bit.HighLane)
			assert.Equal(t, uint16(0x77FF), p.Read(tt.offset, bit.AllLanes))
		})
	}
}

func TestByteRegistersIgnoreHighLane(t *testing.T) {
	p, _, _ := newTestPeripherals(t, DefaultOptions())

	p.Write(addr.I2CControl, 0x0042, bit.LowLane)
	p.Write(addr.I2CControl, 0x9900, bit.HighLane)
	assert.Equal(t, uint16(0x0042), p.Read(addr.I2CControl, bit.AllLanes))

	p.Write(addr.PICR2, 0x0033, bit.AllLanes)
	p.Write(addr.PICR2, 0x4400, bit.HighLane)
	assert.Equal(t, uint8(0x33), p.PICR2())
}

func TestUART(t *testing.T) {
	t.Run("status reports ready", func(t *testing.T) {
		p, _, _ := newTestPeripherals(t, DefaultOptions())
		assert.Equal(t, uint16(USRTxReady|USRRxReady), p.Read(addr.UARTStatus, bit.LowLane))
	})

	t.Run("transmit echoes printable bytes", func(t *testing.T) {
		var out bytes.Buffer
		opts := DefaultOptions()
		opts.Sink = serial.NewLogSink(serial.WithEcho(&out))
		p, _, _ := newTestPeripherals(t, opts)

		for _, b := range []byte("OK\x07") {
			p.Write(addr.UARTTransmitHold, uint16(b), bit.LowLane)
		}

		assert.Equal(t, "OK", out.String())
		assert.Equal(t, uint16(0x07), p.Read(addr.UARTTransmitHold, bit.LowLane))
	})

	t.Run("line breaks reach the sink", func(t *testing.T) {
		var logs bytes.Buffer
		opts := DefaultOptions()
		opts.Sink = serial.NewLogSink(serial.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
		p, _, _ := newTestPeripherals(t, opts)

		for _, b := range []byte("A\r\nB") {
			p.Write(addr.UARTTransmitHold, uint16(b), bit.LowLane)
		}

		assert.Equal(t, 1, strings.Count(logs.String(), "msg=uart"), logs.String())
		assert.Contains(t, logs.String(), "line=A")
		assert.Equal(t, "B", opts.Sink.Pending())
		assert.Equal(t, 2, opts.Sink.Count())
	})

	t.Run("no sink drops output", func(t *testing.T) {
		p, _, _ := newTestPeripherals(t, DefaultOptions())
		assert.NotPanics(t, func() { p.Write(addr.UARTTransmitHold, 'A', bit.LowLane) })
	})
}

func TestDMAChannels(t *testing.T) {
	p, _, _ := newTestPeripherals(t, DefaultOptions())

	p.Write(addr.DMATransferCounter, 0x0011, bit.LowLane)
	p.Write(addr.DMATransferCounter+addr.DMAStride, 0x0022, bit.LowLane)
	assert.Equal(t, uint16(0x11), p.Read(addr.DMATransferCounter, bit.AllLanes))
	assert.Equal(t, uint16(0x22), p.Read(addr.DMATransferCounter+addr.DMAStride, bit.AllLanes))

	p.Write(addr.DMAMemoryAddressHigh+addr.DMAStride, 0xFF12, bit.AllLanes)
	p.Write(addr.DMAMemoryAddressLow+addr.DMAStride, 0x3456, bit.AllLanes)
	assert.Equal(t, uint32(0x123456), p.DMA(1).MemoryAddress())
	assert.Zero(t, p.DMA(0).MemoryAddress())

	p.Write(addr.DMADeviceAddressLow, 0xBEEF, bit.LowLane)
	assert.Equal(t, uint32(0x00EF), p.DMA(0).DeviceAddress())

	p.Write(addr.DMAControl, 0x8010, bit.AllLanes)
	assert.Equal(t, uint16(0x8010), p.Read(addr.DMAControl, bit.AllLanes))
}

func TestDMAControlFields(t *testing.T) {
	p, _, _ := newTestPeripherals(t, DefaultOptions())
	c := p.DMA(1)

	p.Write(addr.DMAStatus+addr.DMAStride, 0x9811, bit.AllLanes)
	assert.True(t, c.Complete())
	assert.True(t, c.Failed())
	assert.True(t, c.Active())
	assert.False(t, c.NormalDevice())
	assert.Equal(t, CERSoftAbort, c.ErrorCode())
	assert.Equal(t, "software abort", errorText(c.ErrorCode()))

	p.Write(addr.DMAControl+addr.DMAStride, 0x0090, bit.LowLane)
	assert.True(t, c.DeviceToMemory())
	assert.True(t, c.WordOperands())

	p.Write(addr.DMASequence+addr.DMAStride, 0x008D, bit.LowLane)
	assert.True(t, c.InterruptEnabled())
	assert.Equal(t, 5, c.InterruptLevel())
	assert.Equal(t, uint16(0x008D), p.Read(addr.DMASequence+addr.DMAStride, bit.AllLanes),
		"start request is stored, not executed")

	assert.False(t, p.DMA(0).Active())
	assert.Equal(t, "0x1F", errorText(0x1F))
}

func TestMMU(t *testing.T) {
	p, _, _ := newTestPeripherals(t, DefaultOptions())

	p.Write(addr.MMUStatusControl, 0xFF80, bit.AllLanes)
	assert.True(t, p.MMU().Enabled())
	assert.Equal(t, uint16(0x0080), p.Read(addr.MMUStatusControl, bit.AllLanes), "status is read only")

	base := addr.MMUDescriptors + 7*addr.MMUDescriptorLen
	p.Write(base+2, 0x0100, bit.AllLanes)
	p.Write(base+4, 0xAB05, bit.AllLanes)
	p.Write(base+6, 0x2000, bit.AllLanes)

	d := p.MMU().Descriptor(7)
	assert.Equal(t, uint16(0x0100), d.Length)
	assert.Equal(t, uint8(0x05), d.Segment)
	assert.Equal(t, uint16(0x2000), d.Base)
}

func TestUnknownOffsets(t *testing.T) {
	p, _, _ := newTestPeripherals(t, DefaultOptions())
	assert.Zero(t, p.Read(0x3000, bit.AllLanes))
	assert.NotPanics(t, func() { p.Write(0x3000, 0xFFFF, bit.AllLanes) })
}

func TestReset(t *testing.T) {
	p, s, _ := newTestPeripherals(t, DefaultOptions())
	p.Write(addr.LIR, 0x0042, bit.AllLanes)
	p.Write(addr.Timer0, 0x1234, bit.AllLanes)
	require.Equal(t, 1, s.Pending())

	p.Reset()

	assert.Zero(t, p.LIR())
	assert.Zero(t, p.Timers().Timer0())
	assert.Zero(t, s.Pending())
}
