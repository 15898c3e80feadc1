package scc68070

// Descriptors is the number of MMU segment descriptors.
const Descriptors = 8

// SegmentDescriptor is one MMU segment descriptor.
type SegmentDescriptor struct {
	Attributes uint16
	Length     uint16
	Segment    uint8
	Base       uint16
}

// MMU holds the SCC68070 memory management unit registers. Translation is
// not performed.
type MMU struct {
	status  uint8
	control uint8
	desc    [Descriptors]SegmentDescriptor
}

// Descriptor returns a copy of segment descriptor n.
func (m *MMU) Descriptor(n int) SegmentDescriptor {
	return m.desc[n&(Descriptors-1)]
}

// Enabled reports whether software turned translation on (control bit 7).
func (m *MMU) Enabled() bool {
	return m.control&0x80 != 0
}
