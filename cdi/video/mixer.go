package video

// Transparency conditions, one nibble per plane in the transparency
// control register (plane A in bits 0-3, plane B in bits 8-11). Bit 3
// inverts the condition.
const (
	transparentAlways      = 0x0
	transparentColorKey    = 0x1
	transparentBit         = 0x2
	transparentRegionFlag0 = 0x3
	transparentRegionFlag1 = 0x4
	transparentInvert      = 0x8
)

// planeKey is the transparency test configured for one plane.
type planeKey struct {
	condition uint8
	color     uint32
	mask      uint32
	drawn     bool
}

// transparent evaluates the plane's condition for a pixel. Region flags and
// the RGB555 transparency bit are not modeled and read as false.
func (k planeKey) transparent(pixel uint32) bool {
	if !k.drawn {
		return true
	}

	var cond bool
	switch k.condition &^ transparentInvert {
	case transparentAlways:
		cond = true
	case transparentColorKey:
		cond = (pixel^k.color)&^k.mask&0x00FFFFFF == 0
	default:
		cond = false
	}

	if k.condition&transparentInvert != 0 {
		return !cond
	}
	return cond
}

// backdropRGB expands the 4-bit IRGB backdrop register to a color: each of
// R, G and B is full scale with I set and half scale without.
func backdropRGB(v uint32) Color {
	level := uint32(0x80)
	if v&0x8 != 0 {
		level = 0xFF
	}
	var rgb uint32
	if v&0x4 != 0 {
		rgb |= level << 16
	}
	if v&0x2 != 0 {
		rgb |= level << 8
	}
	if v&0x1 != 0 {
		rgb |= level
	}
	return RGB(rgb)
}

// mixLine composites the decoded plane lines into out following the
// channel 0 transparency control, plane order and backdrop, and the
// per-plane color keys.
func (m *MCD212) mixLine(a, b []uint32, drawnA, drawnB bool, out []uint32) {
	c0 := &m.channels[0]
	c1 := &m.channels[1]

	if !m.opts.Compose {
		if drawnA {
			copy(out, a)
		} else {
			fill(out, uint32(BlackColor))
		}
		return
	}

	tc := c0.transparencyControl
	keyA := planeKey{
		condition: uint8(tc) & 0x0F,
		color:     c0.transparentColorA,
		mask:      c0.maskColorA,
		drawn:     drawnA,
	}
	keyB := planeKey{
		condition: uint8(tc>>8) & 0x0F,
		color:     c1.transparentColorB,
		mask:      c1.maskColorB,
		drawn:     drawnB,
	}

	front, back := a, b
	frontKey, backKey := keyA, keyB
	if c0.planeOrder&1 != 0 {
		front, back = b, a
		frontKey, backKey = keyB, keyA
	}

	backdrop := uint32(backdropRGB(c0.backdropColor))
	for x := range out {
		switch {
		case !frontKey.transparent(front[x]):
			out[x] = front[x]
		case !backKey.transparent(back[x]):
			out[x] = back[x]
		default:
			out[x] = backdrop
		}
	}
}
