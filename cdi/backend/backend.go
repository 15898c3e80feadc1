package backend

import (
	"time"

	"github.com/valerio/go-cdi/cdi/video"
)

// Backend consumes the frames produced by the video decoder.
// Backends are responsible for:
// - Presenting frames on their specific output (terminal, PNG files)
// - Reporting when the user or run budget asks for shutdown
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config BackendConfig) error

	// Update presents one completed frame and processes platform events.
	Update(frame *video.FrameBuffer) error

	// Cleanup resources when shutting down
	Cleanup() error
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title      string
	ShowStatus bool             // Backends may ignore unsupported features
	Callbacks  BackendCallbacks // Callbacks for backend communication
	Status     StatusProvider   // Optional machine state for status displays
}

// BackendCallbacks allows backends to communicate with the emulator
type BackendCallbacks struct {
	// Control callbacks
	OnQuit func() // Backend requests shutdown (e.g., run budget reached, Esc pressed)

	// Debug callbacks (optional)
	OnDebugMessage func(message string)
}

// Status is a point-in-time summary of the machine for display.
type Status struct {
	Frame        uint64
	VirtualTime  time.Duration
	Line         int
	PendingLevel int
	DCR          [video.Channels]uint16
	VSR          [video.Channels]uint32
	DCP          [video.Channels]uint32
}

// StatusProvider returns the current machine status.
type StatusProvider func() Status

// Quit invokes the OnQuit callback if one is set.
func (c BackendCallbacks) Quit() {
	if c.OnQuit != nil {
		c.OnQuit()
	}
}
