package video

// performScan is the scan timer callback. It runs once at the start of every
// line: line 0 runs the ICAs, active lines render and then run the DCAs. It
// re-arms itself for the next line and reports the frame when the scan wraps.
func (m *MCD212) performScan() {
	line := m.line

	if m.displayEnabled() {
		m.scanLine(line)
	} else if m.timing.IsActive(line) {
		fill(m.framebuffer.Line(uint(line-m.timing.FirstActiveLine)), uint32(BlackColor))
	}

	next := (line + 1) % m.timing.TotalLines
	if next == 0 {
		m.frameStart += m.timing.Frame
		m.frames++
		m.logger.Debug("Frame complete", "frame", m.frames)
		for _, l := range m.listeners {
			l(m.frames, m.framebuffer)
		}
	}
	m.line = next
	m.scanTimer.AdjustAt(m.timing.LineStart(m.frameStart, next))
}

func (m *MCD212) displayEnabled() bool {
	return !m.opts.HonorDisplayEnable || m.channels[0].dcr&DCRDisplayEnable != 0
}

func (m *MCD212) scanLine(line int) {
	switch {
	case line == 0:
		m.channels[0].csrr &^= CSR1ActiveDisplay
		for ch := 0; ch < Channels; ch++ {
			if m.channels[ch].dcr&DCRICAEnable != 0 {
				m.processICA(ch)
			}
			m.channels[ch].loadDCACursor()
		}

	case m.timing.IsActive(line):
		m.channels[0].csrr |= CSR1ActiveDisplay
		m.drawLine(line)
		for ch := 0; ch < Channels; ch++ {
			if m.channels[ch].dcr&DCRDCAEnable != 0 {
				m.processDCA(ch)
			}
		}
	}
}

// drawLine renders both planes for line and mixes them into the framebuffer.
func (m *MCD212) drawLine(line int) {
	drawnA := m.renderChannel(0, m.lineA)
	drawnB := m.renderChannel(1, m.lineB)
	out := m.framebuffer.Line(uint(line - m.timing.FirstActiveLine))
	m.mixLine(m.lineA, m.lineB, drawnA, drawnB, out)
}
