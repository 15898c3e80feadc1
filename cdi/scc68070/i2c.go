package scc68070

// I2C status register bits.
const (
	ISRMaster           uint8 = 0x80
	ISRTransmitter      uint8 = 0x40
	ISRBusy             uint8 = 0x20
	ISRNoPending        uint8 = 0x10
	ISRArbitrationLost  uint8 = 0x08
	ISRAddressedAsSlave uint8 = 0x04
	ISRAddressZero      uint8 = 0x02
	ISRLastReceivedBit  uint8 = 0x01
)

// I2C is the SCC68070 I2C bus interface register set. Only storage is modeled.
type I2C struct {
	data         uint8
	address      uint8
	status       uint8
	control      uint8
	clockControl uint8
}
