package irq

import (
	"fmt"
	"log/slog"
)

// Levels is the number of 68000 interrupt priority levels (IRQ1..IRQ7).
const Levels = 7

// Lines models the interrupt inputs of the main CPU. Each level is a
// level-sensitive line carrying the vector supplied by the device that
// asserted it. The CPU core samples Pending between instructions.
type Lines struct {
	asserted [Levels + 1]bool
	vector   [Levels + 1]uint8

	// OnChange, if set, is called whenever a line changes state.
	OnChange func(level int, asserted bool)
}

// New creates a set of interrupt lines, all clear.
func New() *Lines {
	return &Lines{}
}

// Assert raises the line for the given level with the given vector.
// Asserting an already asserted line only updates its vector. Level 0 means
// "no interrupt" and is ignored.
func (l *Lines) Assert(level int, vector uint8) {
	if !valid(level) {
		return
	}
	l.vector[level] = vector
	if l.asserted[level] {
		return
	}
	l.asserted[level] = true
	slog.Debug("IRQ asserted", "level", level, "vector", fmt.Sprintf("0x%02X", vector))
	if l.OnChange != nil {
		l.OnChange(level, true)
	}
}

// Clear lowers the line for the given level.
func (l *Lines) Clear(level int) {
	if !valid(level) || !l.asserted[level] {
		return
	}
	l.asserted[level] = false
	slog.Debug("IRQ cleared", "level", level)
	if l.OnChange != nil {
		l.OnChange(level, false)
	}
}

// Asserted reports whether the line for the given level is raised.
func (l *Lines) Asserted(level int) bool {
	return valid(level) && l.asserted[level]
}

// Vector returns the vector last supplied for the given level.
func (l *Lines) Vector(level int) uint8 {
	if !valid(level) {
		return 0
	}
	return l.vector[level]
}

// Pending returns the highest asserted level and its vector.
func (l *Lines) Pending() (level int, vector uint8, ok bool) {
	for lvl := Levels; lvl >= 1; lvl-- {
		if l.asserted[lvl] {
			return lvl, l.vector[lvl], true
		}
	}
	return 0, 0, false
}

// Reset clears every line.
func (l *Lines) Reset() {
	for lvl := 1; lvl <= Levels; lvl++ {
		l.Clear(lvl)
		l.vector[lvl] = 0
	}
}

func valid(level int) bool {
	return level >= 1 && level <= Levels
}
