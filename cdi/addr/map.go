package addr

// physical memory map of the CD-i base case
const (
	// PlaneAStart is the start of video plane A RAM (512 KiB).
	PlaneAStart uint32 = 0x000000
	PlaneAEnd   uint32 = 0x07FFFF
	// PlaneBStart is the start of video plane B RAM (512 KiB).
	PlaneBStart uint32 = 0x200000
	PlaneBEnd   uint32 = 0x27FFFF
	// PlaneSize is the size of a single video plane.
	PlaneSize = 0x80000

	// CDICStart is the CD interface controller window.
	CDICStart uint32 = 0x300000
	CDICEnd   uint32 = 0x303FFF

	// SlaveStart is the slave (input/front panel) controller window.
	SlaveStart uint32 = 0x310000
	SlaveEnd   uint32 = 0x317FFF

	// NVRAMStart is the M48T08 timekeeper window.
	NVRAMStart uint32 = 0x320000
	NVRAMEnd   uint32 = 0x323FFF

	// BIOSStart is the system ROM (512 KiB).
	BIOSStart uint32 = 0x400000
	BIOSEnd   uint32 = 0x47FFFF
	BIOSSize         = 0x80000

	// MCD212Start is the video decoder register page.
	MCD212Start uint32 = 0x4FFFE0
	MCD212End   uint32 = 0x4FFFFF

	// SystemRAMStart is the main CPU work RAM (512 KiB).
	SystemRAMStart uint32 = 0x500000
	SystemRAMEnd   uint32 = 0x57FFFF
	SystemRAMSize         = 0x80000

	// PeripheralStart is the SCC68070 on-chip peripheral page.
	PeripheralStart uint32 = 0x80000000
	PeripheralEnd   uint32 = 0x8000807F
)
