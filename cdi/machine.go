// Package cdi assembles the CD-i video and peripheral core into a machine
// driven by an external CPU through its bus.
package cdi

import (
	"log/slog"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/valerio/go-cdi/cdi/backend"
	"github.com/valerio/go-cdi/cdi/config"
	"github.com/valerio/go-cdi/cdi/irq"
	"github.com/valerio/go-cdi/cdi/memory"
	"github.com/valerio/go-cdi/cdi/scc68070"
	"github.com/valerio/go-cdi/cdi/sched"
	"github.com/valerio/go-cdi/cdi/serial"
	"github.com/valerio/go-cdi/cdi/video"
)

// Machine owns the scheduler, the interrupt lines, the SCC68070 peripheral
// page, the MCD212 and the memory map.
type Machine struct {
	cfg *config.Config

	sched *sched.Scheduler
	lines *irq.Lines
	uart  *serial.LogSink
	per   *scc68070.Peripherals
	video *video.MCD212
	bus   *memory.Bus
}

// New builds a machine from cfg and resets it. No images are loaded.
func New(cfg *config.Config) *Machine {
	if cfg == nil {
		cfg = config.Default()
	}

	m := &Machine{
		cfg:   cfg,
		sched: sched.New(),
		lines: irq.New(),
	}

	var sinkOpts []serial.LogSinkOption
	if cfg.UART.Echo {
		sinkOpts = append(sinkOpts, serial.WithEcho(os.Stdout))
	}
	m.uart = serial.NewLogSink(sinkOpts...)

	m.per = scc68070.New(m.sched, m.lines, scc68070.Options{
		ClockHz:      cfg.ClockAHz,
		TimerDivider: cfg.TimerDivider,
		Sink:         m.uart,
	})
	m.bus = memory.NewBus(nil, m.per)
	m.video = video.New(m.sched, m.bus.PlaneA, m.bus.PlaneB, m.lines, m.per, video.Options{
		RefreshHz:          cfg.Video.RefreshHz,
		TotalLines:         cfg.Video.TotalLines,
		FirstActiveLine:    cfg.Video.FirstActiveLine,
		Width:              cfg.Video.Width,
		HonorDisplayEnable: cfg.Video.HonorDisplayEnable,
		Compose:            cfg.Video.Compose,
		MaxICACommands:     cfg.Video.MaxICACommands,
	})
	m.bus.AttachVideo(m.video)

	m.Reset()
	return m
}

// NewWithFiles builds a machine and loads the BIOS, plane and NVRAM images
// named in cfg.Files. A missing NVRAM file is not an error: the device
// starts blank and is created on SaveNVRAM.
func NewWithFiles(cfg *config.Config) (*Machine, error) {
	m := New(cfg)
	files := m.cfg.Files

	if files.BIOS != "" {
		if err := m.bus.BIOS.LoadFile(files.BIOS); err != nil {
			return nil, errors.Wrap(err, "bios")
		}
		slog.Info("Loaded BIOS", "path", files.BIOS)
	}
	if files.NVRAM != "" {
		err := m.bus.NVRAM.LoadFile(files.NVRAM)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Info("NVRAM image not found, starting blank", "path", files.NVRAM)
		case err != nil:
			return nil, errors.Wrap(err, "nvram")
		}
	}

	// Reset copies the BIOS vectors into plane A and clears the planes, so
	// plane images are loaded after it.
	m.Reset()

	for ch, path := range []string{files.PlaneA, files.PlaneB} {
		if path == "" {
			continue
		}
		if err := m.bus.Plane(ch).LoadFile(path); err != nil {
			return nil, errors.Wrapf(err, "plane %c", 'A'+ch)
		}
		slog.Info("Loaded plane image", "plane", string(rune('A'+ch)), "path", path)
	}
	return m, nil
}

// Reset returns every device to its power-on state, restarts virtual time
// at zero and applies the configured channel register presets.
func (m *Machine) Reset() {
	m.sched.Reset()
	m.lines.Reset()
	m.uart.Reset()
	m.per.Reset()
	m.bus.Reset()
	m.video.Reset()

	for ch, preset := range m.cfg.Video.Channels {
		if ch >= video.Channels {
			break
		}
		c := m.video.Channel(ch)
		c.SetDCR(preset.DCR)
		c.SetDDR(preset.DDR)
		c.SetVSR(preset.VSR)
		c.SetDCP(preset.DCP)
	}
	slog.Debug("Machine reset")
}

// RunUntil advances virtual time to t, firing every device event due on
// the way.
func (m *Machine) RunUntil(t time.Duration) int {
	return m.sched.RunUntil(t)
}

// RunFrame advances virtual time to the start of the next frame. The frame
// just completed is available through Frame.
func (m *Machine) RunFrame() {
	m.sched.RunUntil(m.video.NextFrameStart())
}

// Now returns the current virtual time.
func (m *Machine) Now() time.Duration { return m.sched.Now() }

// Bus returns the memory map seen by the CPU.
func (m *Machine) Bus() *memory.Bus { return m.bus }

// Video returns the MCD212.
func (m *Machine) Video() *video.MCD212 { return m.video }

// Peripherals returns the SCC68070 on-chip peripheral page.
func (m *Machine) Peripherals() *scc68070.Peripherals { return m.per }

// UART returns the serial transmit log.
func (m *Machine) UART() *serial.LogSink { return m.uart }

// Frame returns the frame buffer of the most recently scanned frame.
func (m *Machine) Frame() *video.FrameBuffer { return m.video.Frame() }

// FrameCount returns the number of frames completed since reset.
func (m *Machine) FrameCount() uint64 { return m.video.FrameCount() }

// Interrupts returns the CPU interrupt lines.
func (m *Machine) Interrupts() *irq.Lines { return m.lines }

// SaveNVRAM writes the M48T08 contents to the configured NVRAM file.
func (m *Machine) SaveNVRAM() error {
	path := m.cfg.Files.NVRAM
	if path == "" {
		return nil
	}
	if err := m.bus.NVRAM.SaveFile(path); err != nil {
		return err
	}
	slog.Info("Saved NVRAM", "path", path)
	return nil
}

// Status summarizes the machine for backend status displays.
func (m *Machine) Status() backend.Status {
	s := backend.Status{
		Frame:       m.video.FrameCount(),
		VirtualTime: m.sched.Now(),
		Line:        m.video.Line(),
	}
	if level, _, ok := m.lines.Pending(); ok {
		s.PendingLevel = level
	}
	for ch := 0; ch < video.Channels; ch++ {
		c := m.video.Channel(ch)
		s.DCR[ch] = c.DCR()
		s.VSR[ch] = c.VSR()
		s.DCP[ch] = c.DCP()
	}
	return s
}
