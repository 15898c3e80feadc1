package video

import "time"

// Timing describes the raster: how long a frame lasts, how many lines it
// has and where the active display starts. Line start times are computed
// from the frame start so they never accumulate rounding error.
type Timing struct {
	Frame           time.Duration
	TotalLines      int
	FirstActiveLine int
	Width           int
}

// NewTiming builds the raster description for a refresh rate.
func NewTiming(refreshHz, totalLines, firstActiveLine, width int) Timing {
	return Timing{
		Frame:           time.Second / time.Duration(refreshHz),
		TotalLines:      totalLines,
		FirstActiveLine: firstActiveLine,
		Width:           width,
	}
}

// LineStart returns the virtual time at which line begins in the frame that
// started at frameStart.
func (t Timing) LineStart(frameStart time.Duration, line int) time.Duration {
	return frameStart + time.Duration(int64(t.Frame)*int64(line)/int64(t.TotalLines))
}

// LinePeriod is the nominal duration of one line.
func (t Timing) LinePeriod() time.Duration {
	return t.Frame / time.Duration(t.TotalLines)
}

// VisibleLines is the number of lines in the active display.
func (t Timing) VisibleLines() int {
	return t.TotalLines - t.FirstActiveLine
}

// IsActive reports whether line is drawn.
func (t Timing) IsActive(line int) bool {
	return line >= t.FirstActiveLine && line < t.TotalLines
}
