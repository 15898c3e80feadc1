// Package terminal shows decoded frames in a terminal using half-block
// characters, with a status line and the most recent log messages.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-cdi/cdi/backend"
	"github.com/valerio/go-cdi/cdi/debug"
	"github.com/valerio/go-cdi/cdi/video"
)

const (
	logLines      = 4
	minTermWidth  = 40
	minTermHeight = 12
	logCapacity   = 200
)

// Backend implements the Backend interface using tcell for terminal rendering
type Backend struct {
	screen    tcell.Screen
	newScreen func() (tcell.Screen, error)
	running   bool
	signals   chan os.Signal

	logBuffer *LogBuffer
	logLevel  slog.Level
	config    backend.BackendConfig

	currentFrame *video.FrameBuffer
}

// New creates a new terminal backend drawing on the process terminal.
func New() *Backend {
	return &Backend{
		newScreen: tcell.NewScreen,
		logLevel:  slog.LevelInfo,
	}
}

// NewWithScreen creates a backend drawing on screen, which Init initializes.
func NewWithScreen(screen tcell.Screen) *Backend {
	b := New()
	b.newScreen = func() (tcell.Screen, error) { return screen, nil }
	return b
}

// Init initializes the screen and redirects the default logger into the
// in-memory log shown under the picture. Create the machine after Init so
// that its device loggers pick up the redirected handler.
func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config

	screen, err := t.newScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %v", err)
	}
	t.screen = screen
	t.running = true

	t.logBuffer = NewLogBuffer(logCapacity)
	slog.SetDefault(slog.New(NewLogBufferHandler(t.logBuffer, slog.LevelDebug)))

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	t.signals = make(chan os.Signal, 1)
	signal.Notify(t.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP, syscall.SIGQUIT)

	slog.Info("Terminal backend initialized")
	return nil
}

// Update renders a frame and processes events
func (t *Backend) Update(frame *video.FrameBuffer) error {
	select {
	case sig := <-t.signals:
		slog.Info("Received signal", "signal", sig)
		t.quit()
	default:
	}

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}

	if !t.running {
		return nil
	}

	t.currentFrame = frame
	t.render(frame)
	t.screen.Show()
	return nil
}

// Cleanup cleans up terminal resources
func (t *Backend) Cleanup() error {
	if t.signals != nil {
		signal.Stop(t.signals)
	}
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// Logs returns the captured log buffer.
func (t *Backend) Logs() *LogBuffer {
	return t.logBuffer
}

func (t *Backend) quit() {
	if !t.running {
		return
	}
	t.running = false
	t.config.Callbacks.Quit()
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		t.quit()
	case tcell.KeyF12:
		t.snapshot()
	case tcell.KeyTab:
		t.config.ShowStatus = !t.config.ShowStatus
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q':
			t.quit()
		case 's':
			t.snapshot()
		case '+', '=':
			t.changeLogLevel(1)
		case '-', '_':
			t.changeLogLevel(-1)
		}
	}
}

func (t *Backend) snapshot() {
	path, err := debug.SaveFramePNGToDir(t.currentFrame, "cdi_snapshot", "")
	if err != nil {
		slog.Error("Failed to save snapshot", "error", err)
		return
	}
	if t.config.Callbacks.OnDebugMessage != nil {
		t.config.Callbacks.OnDebugMessage("snapshot saved to " + path)
	}
}

// changeLogLevel moves the display filter; direction 1 shows more.
func (t *Backend) changeLogLevel(direction int) {
	levels := []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError}
	idx := 0
	for i, l := range levels {
		if l == t.logLevel {
			idx = i
		}
	}
	idx -= direction
	if idx < 0 || idx >= len(levels) {
		return
	}
	old := t.logLevel
	t.logLevel = levels[idx]
	slog.Info("Log filter changed", "from", old, "to", t.logLevel)
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()
	t.screen.Clear()

	if termWidth < minTermWidth || termHeight < minTermHeight {
		style := tcell.StyleDefault.Foreground(tcell.ColorRed)
		msg := fmt.Sprintf("Terminal too small! Need at least %dx%d", minTermWidth, minTermHeight)
		drawText(t.screen, 0, termHeight/2, termWidth, msg, style)
		return
	}

	reserved := 2 + logLines
	if !t.config.ShowStatus {
		reserved--
	}
	drawText(t.screen, 1, 0, termWidth-1, " "+t.config.Title+" ", tcell.StyleDefault.Foreground(tcell.ColorYellow))

	cols, rows := fitFrame(int(frame.Width()), int(frame.Height()), termWidth, termHeight-reserved)
	drawFrame(t.screen, frame, 0, 1, cols, rows)

	y := 1 + rows
	if t.config.ShowStatus {
		drawText(t.screen, 0, y, termWidth, t.statusLine(), tcell.StyleDefault.Foreground(tcell.ColorAqua))
		y++
	}
	t.drawLogs(y, termWidth, termHeight)
}

func (t *Backend) statusLine() string {
	if t.config.Status == nil {
		return " Esc/q=quit s=snapshot Tab=status +/-=log filter "
	}
	s := t.config.Status()
	return fmt.Sprintf(" frame %d  t=%v  line %d  irq %d  A:dcr=0x%04X vsr=0x%06X  B:dcr=0x%04X vsr=0x%06X ",
		s.Frame, s.VirtualTime, s.Line, s.PendingLevel, s.DCR[0], s.VSR[0], s.DCR[1], s.VSR[1])
}

func (t *Backend) drawLogs(startY, width, termHeight int) {
	logs := t.logBuffer.Recent(logLines, t.logLevel)
	for i, entry := range logs {
		y := startY + logLines - 1 - i
		if y >= termHeight {
			continue
		}
		style := tcell.StyleDefault.Foreground(tcell.ColorBlue)
		switch entry.Level {
		case slog.LevelDebug:
			style = tcell.StyleDefault.Foreground(tcell.ColorGray)
		case slog.LevelWarn:
			style = tcell.StyleDefault.Foreground(tcell.ColorYellow)
		case slog.LevelError:
			style = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
		}
		drawText(t.screen, 0, y, width, FormatLogEntry(entry), style)
	}
}

// fitFrame returns the cell grid that shows a w×h frame inside maxCols×maxRows
// cells, two pixel rows per cell, keeping the picture's proportions.
func fitFrame(w, h, maxCols, maxRows int) (cols, rows int) {
	if maxCols <= 0 || maxRows <= 0 {
		return 0, 0
	}
	// 768 pixels by 240 lines displays as 4:3, and a cell is about twice
	// as tall as it is wide.
	cols = min(maxCols, w)
	rows = cols * 3 / 8
	if rows > maxRows {
		rows = maxRows
		cols = rows * 8 / 3
	}
	return cols, min(rows, (h+1)/2)
}

func drawFrame(screen tcell.Screen, frame *video.FrameBuffer, x0, y0, cols, rows int) {
	if cols == 0 || rows == 0 {
		return
	}
	w, h := int(frame.Width()), int(frame.Height())
	for row := 0; row < rows; row++ {
		top := (2 * row) * h / (2 * rows)
		bottom := (2*row + 1) * h / (2 * rows)
		for col := 0; col < cols; col++ {
			x := col * w / cols
			fg := pixelColor(frame.GetPixel(uint(x), uint(top)))
			bg := pixelColor(frame.GetPixel(uint(x), uint(bottom)))
			screen.SetContent(x0+col, y0+row, '▀', nil, tcell.StyleDefault.Foreground(fg).Background(bg))
		}
	}
}

func pixelColor(px uint32) tcell.Color {
	return tcell.NewRGBColor(int32(px>>16&0xFF), int32(px>>8&0xFF), int32(px&0xFF))
}

func drawText(screen tcell.Screen, x, y, width int, text string, style tcell.Style) {
	i := 0
	for _, ch := range text {
		if i >= width {
			break
		}
		screen.SetContent(x+i, y, ch, nil, style)
		i++
	}
}
