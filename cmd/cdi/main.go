package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli"
	"golang.org/x/term"

	"github.com/valerio/go-cdi/cdi"
	"github.com/valerio/go-cdi/cdi/backend"
	"github.com/valerio/go-cdi/cdi/backend/headless"
	"github.com/valerio/go-cdi/cdi/backend/terminal"
	"github.com/valerio/go-cdi/cdi/config"
	"github.com/valerio/go-cdi/cdi/debug"
	"github.com/valerio/go-cdi/cdi/timing"
)

func main() {
	app := cli.NewApp()
	app.Name = "cdi"
	app.Description = "CD-i video decoder and peripheral core"
	app.Usage = "cdi [options]"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "Path to a YAML machine configuration",
		},
		cli.StringFlag{
			Name:  "bios",
			Usage: "Path to the system ROM image",
		},
		cli.StringFlag{
			Name:  "plane-a",
			Usage: "Image loaded into video plane A after reset",
		},
		cli.StringFlag{
			Name:  "plane-b",
			Usage: "Image loaded into video plane B after reset",
		},
		cli.StringFlag{
			Name:  "nvram",
			Usage: "NVRAM image, loaded at start and saved at exit",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run (required for headless, 0 = until quit otherwise)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run without the terminal viewer",
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
		cli.BoolFlag{
			Name:  "uart-echo",
			Usage: "Copy UART output to stdout",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn or error",
			Value: "info",
		},
		cli.StringFlag{
			Name:  "limiter",
			Usage: "Frame pacing in the terminal viewer: adaptive or ticker",
			Value: "adaptive",
		},
		cli.StringFlag{
			Name:  "dump-dir",
			Usage: "Write plane memory and display list disassembly here at exit",
		},
	}
	app.Action = runMachine

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running machine", "error", err)
		os.Exit(1)
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// newLimiter builds the frame limiter named by the --limiter flag.
func newLimiter(name string, refreshHz int) (timing.Limiter, error) {
	frame := timing.FrameDuration(refreshHz)
	if frame <= 0 {
		return nil, fmt.Errorf("refresh rate %d Hz cannot be paced", refreshHz)
	}
	switch strings.ToLower(name) {
	case "adaptive", "":
		return timing.NewAdaptiveLimiter(frame), nil
	case "ticker":
		return timing.NewTickerLimiter(frame), nil
	}
	return nil, fmt.Errorf("unknown limiter %q", name)
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"bios", &cfg.Files.BIOS},
		{"plane-a", &cfg.Files.PlaneA},
		{"plane-b", &cfg.Files.PlaneB},
		{"nvram", &cfg.Files.NVRAM},
	}
	for _, o := range overrides {
		if v := c.String(o.flag); v != "" {
			*o.target = v
		}
	}
	if c.Bool("uart-echo") {
		cfg.UART.Echo = true
	}
	return cfg, nil
}

func runMachine(c *cli.Context) error {
	level, err := parseLevel(c.String("log-level"))
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	frames := c.Int("frames")
	interactive := !c.Bool("headless") && term.IsTerminal(int(os.Stdout.Fd()))
	if !interactive && frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}

	var be backend.Backend
	var limiter timing.Limiter
	if interactive {
		if limiter, err = newLimiter(c.String("limiter"), cfg.Video.RefreshHz); err != nil {
			return err
		}
		if t, ok := limiter.(*timing.TickerLimiter); ok {
			defer t.Stop()
		}
		be = terminal.New()
	} else {
		snapshotConfig, err := headless.CreateSnapshotConfig(c.Int("snapshot-interval"), c.String("snapshot-dir"), cfg.Files.PlaneA)
		if err != nil {
			return err
		}
		be = headless.New(frames, snapshotConfig)
		limiter = timing.NewNoOpLimiter()
	}

	running := true
	var machine *cdi.Machine
	// The backend may replace the default logger, so it is initialized
	// before the machine creates its device loggers.
	err = be.Init(backend.BackendConfig{
		Title:      "CD-i",
		ShowStatus: true,
		Callbacks: backend.BackendCallbacks{
			OnQuit:         func() { running = false },
			OnDebugMessage: func(msg string) { slog.Info(msg) },
		},
		Status: func() backend.Status { return machine.Status() },
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			slog.Warn("Backend cleanup failed", "error", err)
		}
		slog.SetDefault(logger)
	}()

	machine, err = cdi.NewWithFiles(cfg)
	if err != nil {
		return err
	}

	limiter.Reset()
	for running {
		machine.RunFrame()
		if err := be.Update(machine.Frame()); err != nil {
			return err
		}
		if interactive && frames > 0 && machine.FrameCount() >= uint64(frames) {
			running = false
		}
		limiter.WaitForNextFrame()
	}

	machine.UART().Flush()
	if dir := c.String("dump-dir"); dir != "" {
		if err := dump(machine, dir); err != nil {
			return err
		}
	}
	return machine.SaveNVRAM()
}

func dump(m *cdi.Machine, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create dump directory: %v", err)
	}
	bus := m.Bus()
	if err := debug.DumpPlanes(dir, bus.PlaneA, bus.PlaneB); err != nil {
		return err
	}
	if err := debug.DumpDisplayLists(dir, bus.PlaneA, bus.PlaneB, 256); err != nil {
		return err
	}
	slog.Info("Dumped plane memory and display lists", "dir", dir)
	return nil
}
