package bit

// Masks selecting the byte lanes of a 16-bit bus access.
const (
	LowLane  uint16 = 0x00FF
	HighLane uint16 = 0xFF00
	AllLanes uint16 = 0xFFFF
)

// Combine combines two 8 bit values into a single 16 bit value.
// The high byte will be the most significant one.
func Combine(high, low uint8) uint16 {
	return (uint16(high) << 8) | uint16(low)
}

// Low returns the low (LSB) part of a 16 bit number.
func Low(value uint16) uint8 {
	return uint8(value)
}

// High returns the high (MSB) part of a 16 bit number.
func High(value uint16) uint8 {
	return uint8(value >> 8)
}

// AccessesLow reports whether a bus access mask selects the low byte lane.
func AccessesLow(mask uint16) bool {
	return mask&LowLane != 0
}

// AccessesHigh reports whether a bus access mask selects the high byte lane.
func AccessesHigh(mask uint16) bool {
	return mask&HighLane != 0
}

// CombineData merges data into old, replacing only the bits selected by mask.
// Bits outside the mask keep their previous value.
func CombineData(old, data, mask uint16) uint16 {
	return (old &^ mask) | (data & mask)
}

// SplitAddress splits a 22-bit chip address into the 6-bit high field and
// 16-bit low field used by the MCD212 register pairs.
func SplitAddress(value uint32) (high uint16, low uint16) {
	return uint16(value>>16) & 0x3F, uint16(value)
}

// JoinAddress is the inverse of SplitAddress.
func JoinAddress(high, low uint16) uint32 {
	return uint32(high&0x3F)<<16 | uint32(low)
}
