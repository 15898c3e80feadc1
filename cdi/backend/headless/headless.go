package headless

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"github.com/valerio/go-cdi/cdi/backend"
	"github.com/valerio/go-cdi/cdi/debug"
	"github.com/valerio/go-cdi/cdi/video"
)

// Backend implements the Backend interface for automated testing and batch processing
type Backend struct {
	config         backend.BackendConfig
	frameCount     int
	maxFrames      int
	snapshotConfig SnapshotConfig
	snapshots      []string

	progressOut io.Writer
	progress    *progressbar.ProgressBar
}

// SnapshotConfig holds configuration for frame snapshots
type SnapshotConfig struct {
	Enabled   bool
	Interval  int    // Save snapshot every N frames
	Directory string // Directory to save snapshots
	BaseName  string // Image name for snapshot filenames
}

// New creates a backend that runs for maxFrames frames. A progress bar is
// drawn on stderr when it is a terminal.
func New(maxFrames int, snapshotConfig SnapshotConfig) *Backend {
	h := &Backend{
		maxFrames:      maxFrames,
		snapshotConfig: snapshotConfig,
	}
	if term.IsTerminal(int(os.Stderr.Fd())) {
		h.progressOut = os.Stderr
	}
	return h
}

// SetProgressOutput draws the progress bar on w, or disables it when w is nil.
func (h *Backend) SetProgressOutput(w io.Writer) {
	h.progressOut = w
}

func (h *Backend) Init(config backend.BackendConfig) error {
	h.config = config
	h.frameCount = 0
	h.snapshots = nil

	slog.Info("Running headless mode",
		"frames", h.maxFrames,
		"snapshot_interval", h.snapshotConfig.Interval,
		"snapshot_dir", h.snapshotConfig.Directory)

	if h.progressOut != nil && h.maxFrames > 0 {
		h.progress = progressbar.NewOptions(h.maxFrames,
			progressbar.OptionSetWriter(h.progressOut),
			progressbar.OptionSetDescription(config.Title),
			progressbar.OptionShowCount(),
			progressbar.OptionSetItsString("frames"),
			progressbar.OptionShowIts(),
			progressbar.OptionClearOnFinish(),
		)
	}
	return nil
}

// Update processes a frame and handles snapshots
func (h *Backend) Update(frame *video.FrameBuffer) error {
	h.frameCount++

	if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval == 0 {
		h.saveSnapshot(frame)
	}

	if h.progress != nil {
		_ = h.progress.Add(1)
	} else if h.frameCount%60 == 0 {
		slog.Info("Frame progress", "completed", h.frameCount, "total", h.maxFrames)
	}

	if h.frameCount >= h.maxFrames {
		// Save final snapshot if enabled and we haven't just saved one
		if h.snapshotConfig.Enabled && h.frameCount%h.snapshotConfig.Interval != 0 {
			h.saveSnapshot(frame)
		}
		if h.progress != nil {
			_ = h.progress.Finish()
		}

		if h.snapshotConfig.Enabled {
			slog.Info("Headless execution completed", "frames", h.frameCount, "png_snapshots_saved_to", h.snapshotConfig.Directory)
		} else {
			slog.Info("Headless execution completed", "frames", h.frameCount)
		}

		h.config.Callbacks.Quit()
	}

	return nil
}

func (h *Backend) Cleanup() error {
	if h.progress != nil {
		return h.progress.Close()
	}
	return nil
}

// Frames returns the number of frames processed since Init.
func (h *Backend) Frames() int {
	return h.frameCount
}

// Snapshots returns the paths of the PNG files written so far.
func (h *Backend) Snapshots() []string {
	return h.snapshots
}

// CreateSnapshotConfig creates a snapshot configuration from CLI parameters
func CreateSnapshotConfig(interval int, directory, imagePath string) (SnapshotConfig, error) {
	config := SnapshotConfig{
		Enabled:  interval > 0,
		Interval: interval,
	}

	if !config.Enabled {
		return config, nil
	}

	if directory == "" {
		tempDir, err := os.MkdirTemp("", "cdi-snapshots-*")
		if err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = tempDir
	} else {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return config, fmt.Errorf("failed to create snapshot directory: %v", err)
		}
		config.Directory = directory
	}

	config.BaseName = "cdi"
	if imagePath != "" {
		config.BaseName = strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	}

	return config, nil
}

func (h *Backend) saveSnapshot(frame *video.FrameBuffer) {
	pngBaseName := fmt.Sprintf("%s_frame_%d", h.snapshotConfig.BaseName, h.frameCount)

	path, err := debug.SaveFramePNGToDir(frame, pngBaseName, h.snapshotConfig.Directory)
	if err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", h.frameCount, "error", err)
		return
	}
	h.snapshots = append(h.snapshots, path)
}
