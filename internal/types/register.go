package types

// Register represents an 8-bit CPU register.
type Register = uint8

// RegisterPair represents a pair of Registers which is used to hold a 16-bit
// value, high byte first. The CPU has 4 register pairs: AF, BC, DE, and HL.
type RegisterPair struct {
	High *Register
	Low  *Register

	// lowMask is applied to the low byte on every write. It is
	// 0xF0 for AF, where the low nibble of F does not exist.
	lowMask uint8
}

// NewRegisterPair returns a RegisterPair over high and low.
func NewRegisterPair(high, low *Register) *RegisterPair {
	return &RegisterPair{High: high, Low: low, lowMask: 0xFF}
}

// NewMaskedRegisterPair returns a RegisterPair whose low byte is
// ANDed with mask on every write.
func NewMaskedRegisterPair(high, low *Register, mask uint8) *RegisterPair {
	return &RegisterPair{High: high, Low: low, lowMask: mask}
}

// Uint16 returns the value of the RegisterPair as an uint16.
func (r *RegisterPair) Uint16() uint16 {
	return uint16(*r.High)<<8 | uint16(*r.Low)
}

// SetUint16 sets the value of the RegisterPair to the given value.
func (r *RegisterPair) SetUint16(value uint16) {
	*r.High = uint8(value >> 8)
	*r.Low = uint8(value) & r.lowMask
}
