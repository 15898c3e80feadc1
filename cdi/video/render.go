package video

// renderChannel decodes one line of channel ch's plane into line, starting
// at VSR and leaving VSR just past the bytes consumed. It returns false when
// the display mode is not supported, in which case line is untouched.
func (m *MCD212) renderChannel(ch int, line []uint32) bool {
	c := &m.channels[ch]
	plane := m.planes[ch]
	vsr := c.VSR() & (plane.Size() - 1)

	switch c.FileType() {
	case DDRFileBitmap, DDRFileBitmapAlt:
		if c.ColorMode() {
			m.unsupported(ch, "4-bit bitmap")
			return false
		}
		vsr = decodeBitmap8(plane.Bytes(), vsr, &c.clut, line)

	case DDRFileRLE:
		if c.ColorMode() {
			m.unsupported(ch, "4-bit RLE")
			return false
		}
		vsr = decodeRLE8(plane.Bytes(), vsr, &c.clut, line)

	case DDRFileMosaic:
		m.unsupported(ch, "mosaic")
		return false
	}

	c.SetVSR(vsr)
	c.lastUnsupported = ""
	return true
}

// unsupported logs an unsupported display mode once per change of mode.
func (m *MCD212) unsupported(ch int, mode string) {
	c := &m.channels[ch]
	if c.lastUnsupported == mode {
		return
	}
	c.lastUnsupported = mode
	m.logger.Warn("Unsupported display mode", "channel", ch, "mode", mode)
}

// decodeBitmap8 expands one CLUT index per byte into a pixel pair until the
// line is full. It returns the address after the last byte read.
func decodeBitmap8(plane []byte, vsr uint32, clut *[clutSize]uint32, line []uint32) uint32 {
	mask := uint32(len(plane) - 1)
	for x := 0; x+1 < len(line); x += 2 {
		color := uint32(RGB(clut[plane[vsr&mask]]))
		vsr++
		line[x] = color
		line[x+1] = color
	}
	return vsr & mask
}

// decodeRLE8 decodes 8-bit run-length data. A byte with bit 7 clear is one
// pixel pair of that CLUT index. A byte with bit 7 set is a run of its low
// seven bits, followed by a count of pixel pairs; a count of zero fills the
// rest of the line. Runs are clipped at the end of the line. It returns the
// address after the last byte read.
func decodeRLE8(plane []byte, vsr uint32, clut *[clutSize]uint32, line []uint32) uint32 {
	mask := uint32(len(plane) - 1)
	width := len(line)
	x := 0

	for x < width {
		code := plane[vsr&mask]
		vsr++
		color := uint32(RGB(clut[code&0x7F]))

		if code&0x80 == 0 {
			end := min(x+2, width)
			fill(line[x:end], color)
			x = end
			continue
		}

		length := int(plane[vsr&mask])
		vsr++
		end := width
		if length != 0 {
			end = min(x+2*length, width)
		}
		fill(line[x:end], color)
		x = end
	}

	return vsr & mask
}

func fill(pixels []uint32, color uint32) {
	for i := range pixels {
		pixels[i] = color
	}
}
