package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-cdi/cdi/backend"
	"github.com/valerio/go-cdi/cdi/video"
)

func newSimulated(t *testing.T, cfg backend.BackendConfig) (*Backend, tcell.SimulationScreen) {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	screen := tcell.NewSimulationScreen("UTF-8")
	b := NewWithScreen(screen)
	require.NoError(t, b.Init(cfg))
	screen.SetSize(100, 40)
	t.Cleanup(func() { _ = b.Cleanup() })
	return b, screen
}

func TestRenderHalfBlocks(t *testing.T) {
	b, screen := newSimulated(t, backend.BackendConfig{Title: "CD-i"})

	frame := video.NewFrameBuffer(768, 240)
	frame.Fill(video.RGB(0xFF0000))
	require.NoError(t, b.Update(frame))

	r, _, style, _ := screen.GetContent(10, 5)
	assert.Equal(t, '▀', r)
	fg, bg, _ := style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(0xFF, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0xFF, 0, 0), bg)
}

func TestQuitKeys(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		r    rune
	}{
		{"escape", tcell.KeyEscape, 0},
		{"q", tcell.KeyRune, 'q'},
		{"ctrl-c", tcell.KeyCtrlC, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quits := 0
			b, screen := newSimulated(t, backend.BackendConfig{
				Callbacks: backend.BackendCallbacks{OnQuit: func() { quits++ }},
			})
			frame := video.NewFrameBuffer(64, 32)

			screen.InjectKey(tt.key, tt.r, tcell.ModNone)
			// Give the simulated event queue a moment to deliver.
			time.Sleep(10 * time.Millisecond)
			require.NoError(t, b.Update(frame))
			require.NoError(t, b.Update(frame))

			assert.Equal(t, 1, quits, "quit is reported once")
		})
	}
}

func TestLogsCaptured(t *testing.T) {
	b, _ := newSimulated(t, backend.BackendConfig{})

	slog.Warn("Unsupported display mode", "channel", 0)
	logs := b.Logs().Recent(1, slog.LevelWarn)
	require.Len(t, logs, 1)
	assert.Contains(t, FormatLogEntry(logs[0]), "[WRN] Unsupported display mode channel=0")
}

func TestChangeLogLevel(t *testing.T) {
	b := New()
	b.logBuffer = NewLogBuffer(4)
	prev := slog.Default()
	defer slog.SetDefault(prev)
	slog.SetDefault(slog.New(NewLogBufferHandler(b.logBuffer, slog.LevelDebug)))

	b.changeLogLevel(1)
	assert.Equal(t, slog.LevelDebug, b.logLevel)
	b.changeLogLevel(1)
	assert.Equal(t, slog.LevelDebug, b.logLevel, "already at the most verbose level")
	b.changeLogLevel(-1)
	b.changeLogLevel(-1)
	assert.Equal(t, slog.LevelWarn, b.logLevel)
}

func TestLogBuffer(t *testing.T) {
	lb := NewLogBuffer(3)
	for i, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		lb.Add(LogEntry{Level: lvl, Message: string(rune('a' + i))})
	}

	assert.Equal(t, 3, lb.Len())
	all := lb.Recent(0, slog.LevelDebug)
	require.Len(t, all, 3)
	assert.Equal(t, "d", all[0].Message, "newest first")
	assert.Equal(t, "b", all[2].Message, "oldest entry overwritten")

	warn := lb.Recent(0, slog.LevelWarn)
	assert.Len(t, warn, 2)

	lb.Clear()
	assert.Empty(t, lb.Recent(0, slog.LevelDebug))
}

func TestLogBufferHandlerWithAttrs(t *testing.T) {
	lb := NewLogBuffer(4)
	logger := slog.New(NewLogBufferHandler(lb, slog.LevelInfo)).With("device", "mcd212")

	logger.Debug("dropped")
	logger.Info("frame", "n", 3)

	logs := lb.Recent(0, slog.LevelDebug)
	require.Len(t, logs, 1)
	assert.Equal(t, "frame device=mcd212 n=3", logs[0].Message)
}

func TestFitFrame(t *testing.T) {
	cols, rows := fitFrame(768, 240, 100, 40)
	assert.Equal(t, 100, cols)
	assert.Equal(t, 37, rows)

	cols, rows = fitFrame(768, 240, 200, 20)
	assert.Equal(t, 53, cols)
	assert.Equal(t, 20, rows)

	cols, rows = fitFrame(768, 240, 0, 20)
	assert.Zero(t, cols)
	assert.Zero(t, rows)
}
