package cpu

// rotateLeftCarry rotates value left, copying bit 7 into bit 0 and
// the carry flag.
//
//	RLC n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7 data.
func (c *CPU) rotateLeftCarry(value uint8) uint8 {
	result := value<<1 | value>>7
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

// rotateRightCarry rotates value right, copying bit 0 into bit 7
// and the carry flag.
//
//	RRC n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0 data.
func (c *CPU) rotateRightCarry(value uint8) uint8 {
	result := value>>1 | value<<7
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

// rotateLeft rotates value left through the carry flag.
//
//	RL n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7 data.
func (c *CPU) rotateLeft(value uint8) uint8 {
	result := value << 1
	if c.isFlagSet(FlagCarry) {
		result |= 0x01
	}
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

// rotateRight rotates value right through the carry flag.
//
//	RR n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0 data.
func (c *CPU) rotateRight(value uint8) uint8 {
	result := value >> 1
	if c.isFlagSet(FlagCarry) {
		result |= 0x80
	}
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

// shiftLeftArithmetic shifts value left into the carry flag. Bit 0
// is reset.
//
//	SLA n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 7 data.
func (c *CPU) shiftLeftArithmetic(value uint8) uint8 {
	result := value << 1
	c.setFlags(result == 0, false, false, value&0x80 != 0)
	return result
}

// shiftRightArithmetic shifts value right into the carry flag. Bit
// 7 is unchanged.
//
//	SRA n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0 data.
func (c *CPU) shiftRightArithmetic(value uint8) uint8 {
	result := value>>1 | value&0x80
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

// swap swaps the upper and lower nibbles of value.
//
//	SWAP n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) swap(value uint8) uint8 {
	result := value<<4 | value>>4
	c.setFlags(result == 0, false, false, false)
	return result
}

// shiftRightLogical shifts value right into the carry flag. Bit 7
// is reset.
//
//	SRL n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Contains old bit 0 data.
func (c *CPU) shiftRightLogical(value uint8) uint8 {
	result := value >> 1
	c.setFlags(result == 0, false, false, value&0x01 != 0)
	return result
}

// shift runs the 3-bit rotate/shift operation op of the CB 0x00 -
// 0x3F block.
func (c *CPU) shift(op uint8, value uint8) uint8 {
	switch op & 7 {
	case 0:
		return c.rotateLeftCarry(value)
	case 1:
		return c.rotateRightCarry(value)
	case 2:
		return c.rotateLeft(value)
	case 3:
		return c.rotateRight(value)
	case 4:
		return c.shiftLeftArithmetic(value)
	case 5:
		return c.shiftRightArithmetic(value)
	case 6:
		return c.swap(value)
	default:
		return c.shiftRightLogical(value)
	}
}

var shiftNames = [8]string{"RLC", "RRC", "RL", "RR", "SLA", "SRA", "SWAP", "SRL"}

// testBit tests the bit at the given position in the given value.
//
//	BIT n, r
//	n = 0-7
//	r = A, B, C, D, E, H, L, (HL)
//
// Flags affected:
//
//	Z - Set if bit n of r is 0.
//	N - Reset.
//	H - Set.
//	C - Not affected.
func (c *CPU) testBit(value uint8, position uint8) {
	c.setFlags(value&(1<<position) == 0, false, true, c.isFlagSet(FlagCarry))
}
