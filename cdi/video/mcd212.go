package video

import (
	"log/slog"
	"time"

	"github.com/valerio/go-cdi/cdi/irq"
	"github.com/valerio/go-cdi/cdi/memory"
	"github.com/valerio/go-cdi/cdi/sched"
)

// Channels is the number of display channels.
const Channels = 2

// icaStart is the fixed byte address of the ICA in each plane.
const icaStart = 0x400

// LIRSource provides the latched interrupt register that routes the two
// MCD212 interrupt outputs to CPU levels.
type LIRSource interface {
	LIR() uint16
}

// Options configures the video decoder.
type Options struct {
	RefreshHz       int
	TotalLines      int
	FirstActiveLine int
	Width           int
	// HonorDisplayEnable skips all scan processing while the channel 0
	// display enable bit is clear.
	HonorDisplayEnable bool
	// Compose mixes plane B with plane A. When false only plane A is shown.
	Compose bool
	// MaxICACommands bounds a single ICA pass.
	MaxICACommands int
}

// DefaultOptions returns NTSC timing with plane mixing enabled.
func DefaultOptions() Options {
	return Options{
		RefreshHz:       60,
		TotalLines:      262,
		FirstActiveLine: 22,
		Width:           768,
		Compose:         true,
		MaxICACommands:  0x20000,
	}
}

// FrameListener is called each time the scan wraps to line 0.
type FrameListener func(frame uint64, fb *FrameBuffer)

// MCD212 is the CD-i video decoder: two display channels with their
// display-list processors, the scanline renderer and the plane mixer,
// clocked by a per-line scan timer.
type MCD212 struct {
	channels [Channels]Channel
	planes   [Channels]*memory.RAM

	lines *irq.Lines
	lir   LIRSource

	sched      *sched.Scheduler
	scanTimer  *sched.Timer
	timing     Timing
	line       int
	frameStart time.Duration
	frames     uint64

	framebuffer *FrameBuffer
	lineA       []uint32
	lineB       []uint32
	listeners   []FrameListener

	opts   Options
	logger *slog.Logger
}

// New creates the video decoder over the two plane memories and registers
// its scan timer. The scan does not run until Reset is called.
func New(s *sched.Scheduler, planeA, planeB *memory.RAM, lines *irq.Lines, lir LIRSource, opts Options) *MCD212 {
	defaults := DefaultOptions()
	if opts.RefreshHz <= 0 {
		opts.RefreshHz = defaults.RefreshHz
	}
	if opts.TotalLines <= 0 {
		opts.TotalLines = defaults.TotalLines
	}
	if opts.FirstActiveLine <= 0 || opts.FirstActiveLine >= opts.TotalLines {
		opts.FirstActiveLine = defaults.FirstActiveLine
	}
	if opts.Width <= 0 {
		opts.Width = defaults.Width
	}
	if opts.MaxICACommands <= 0 {
		opts.MaxICACommands = defaults.MaxICACommands
	}

	timing := NewTiming(opts.RefreshHz, opts.TotalLines, opts.FirstActiveLine, opts.Width)
	m := &MCD212{
		planes:      [Channels]*memory.RAM{planeA, planeB},
		lines:       lines,
		lir:         lir,
		sched:       s,
		timing:      timing,
		framebuffer: NewFrameBuffer(uint(timing.Width), uint(timing.VisibleLines())),
		lineA:       make([]uint32, timing.Width),
		lineB:       make([]uint32, timing.Width),
		opts:        opts,
		logger:      slog.Default().With("device", "mcd212"),
	}
	m.scanTimer = s.NewTimer("mcd212 scan", m.performScan)
	return m
}

// Reset clears both channels and the frame, and starts the scan at line 0
// of a new frame beginning now.
func (m *MCD212) Reset() {
	m.channels = [Channels]Channel{}
	m.framebuffer.Fill(BlackColor)
	m.frames = 0
	m.line = 0
	m.frameStart = m.sched.Now()
	m.scanTimer.AdjustAt(m.frameStart)
}

// Channel returns display channel n.
func (m *MCD212) Channel(n int) *Channel {
	return &m.channels[n&1]
}

// Timing returns the raster description.
func (m *MCD212) Timing() Timing { return m.timing }

// Frame returns the framebuffer holding the active display.
func (m *MCD212) Frame() *FrameBuffer { return m.framebuffer }

// FrameCount is the number of completed frames since reset.
func (m *MCD212) FrameCount() uint64 { return m.frames }

// Line is the scanline the scan timer will process next.
func (m *MCD212) Line() int { return m.line }

// NextFrameStart is the virtual time at which the frame after the current
// one begins.
func (m *MCD212) NextFrameStart() time.Duration {
	return m.frameStart + m.timing.Frame
}

// OnFrame registers a listener for completed frames.
func (m *MCD212) OnFrame(l FrameListener) {
	m.listeners = append(m.listeners, l)
}

func (m *MCD212) lirValue() uint16 {
	if m.lir == nil {
		return 0
	}
	return m.lir.LIR()
}
