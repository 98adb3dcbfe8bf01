package cpu

// add adds value (and the carry flag, if carry is true) to A.
//
//	ADD A, n
//	ADC A, n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) add(value uint8, carry bool) {
	var cin uint8
	if carry && c.isFlagSet(FlagCarry) {
		cin = 1
	}
	sum := uint16(c.A) + uint16(value) + uint16(cin)
	c.setFlags(uint8(sum) == 0, false, c.A&0xF+value&0xF+cin > 0xF, sum > 0xFF)
	c.A = uint8(sum)
}

// sub subtracts value (and the carry flag, if carry is true) from A,
// and returns the result without storing it.
//
//	SUB n
//	SBC A, n
//	CP n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 3.
//	C - Set if n (plus carry) > A.
func (c *CPU) sub(value uint8, carry bool) uint8 {
	var cin uint8
	if carry && c.isFlagSet(FlagCarry) {
		cin = 1
	}
	result := c.A - value - cin
	c.setFlags(result == 0, true, c.A&0xF < value&0xF+cin, uint16(c.A) < uint16(value)+uint16(cin))
	return result
}

// compare compares A with value, by subtracting value from A and
// discarding the result.
//
//	CP n
//
// Flags affected:
//
//	Z - Set if A == n.
//	N - Set.
//	H - Set if borrow from bit 3.
//	C - Set if n > A.
func (c *CPU) compare(value uint8) {
	c.sub(value, false)
}

// and performs a bitwise AND of A and value.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set.
//	C - Reset.
func (c *CPU) and(value uint8) {
	c.A &= value
	c.setFlags(c.A == 0, false, true, false)
}

// xor performs a bitwise XOR of A and value.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) xor(value uint8) {
	c.A ^= value
	c.setFlags(c.A == 0, false, false, false)
}

// or performs a bitwise OR of A and value.
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Reset.
//	C - Reset.
func (c *CPU) or(value uint8) {
	c.A |= value
	c.setFlags(c.A == 0, false, false, false)
}

// alu runs the 3-bit ALU operation op of the 0x80 - 0xBF and
// 0xC6 - 0xFE opcode blocks against A.
func (c *CPU) alu(op uint8, value uint8) {
	switch op & 7 {
	case 0:
		c.add(value, false)
	case 1:
		c.add(value, true)
	case 2:
		c.A = c.sub(value, false)
	case 3:
		c.A = c.sub(value, true)
	case 4:
		c.and(value)
	case 5:
		c.xor(value)
	case 6:
		c.or(value)
	default:
		c.compare(value)
	}
}

var aluNames = [8]string{"ADD A,", "ADC A,", "SUB", "SBC A,", "AND", "XOR", "OR", "CP"}

// increment the given value and set the flags accordingly.
//
//	INC n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Not affected.
func (c *CPU) increment(value uint8) uint8 {
	incremented := value + 0x01
	c.setFlags(incremented == 0, false, value&0xF == 0xF, c.isFlagSet(FlagCarry))
	return incremented
}

// decrement the given value and set the flags accordingly.
//
//	DEC n
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Set.
//	H - Set if borrow from bit 4.
//	C - Not affected.
func (c *CPU) decrement(value uint8) uint8 {
	decremented := value - 0x01
	c.setFlags(decremented == 0, true, value&0xF == 0x0, c.isFlagSet(FlagCarry))
	return decremented
}

// addHL adds value to HL.
//
//	ADD HL, rr
//
// Flags affected:
//
//	Z - Not affected.
//	N - Reset.
//	H - Set if carry from bit 11.
//	C - Set if carry from bit 15.
func (c *CPU) addHL(value uint16) {
	hl := c.HL.Uint16()
	sum := uint32(hl) + uint32(value)
	c.setFlags(c.isFlagSet(FlagZero), false, hl&0xFFF+value&0xFFF > 0xFFF, sum > 0xFFFF)
	c.HL.SetUint16(uint16(sum))
}

// addSPSigned returns SP plus the signed offset e. The flags are
// computed on the low byte as an unsigned addition.
//
//	ADD SP, e
//	LD HL, SP+e
//
// Flags affected:
//
//	Z - Reset.
//	N - Reset.
//	H - Set if carry from bit 3.
//	C - Set if carry from bit 7.
func (c *CPU) addSPSigned(e uint8) uint16 {
	result := uint16(int32(c.SP) + int32(int8(e)))
	c.setFlags(false, false, c.SP&0xF+uint16(e)&0xF > 0xF, c.SP&0xFF+uint16(e) > 0xFF)
	return result
}

// decimalAdjust adjusts A to a binary coded decimal after an
// addition or subtraction.
//
//	DAA
//
// Flags affected:
//
//	Z - Set if result is zero.
//	N - Not affected.
//	H - Reset.
//	C - Set or reset according to operation.
func (c *CPU) decimalAdjust() {
	var adjust uint8
	carry := c.isFlagSet(FlagCarry)
	subtract := c.isFlagSet(FlagSubtract)
	if !subtract {
		if carry || c.A > 0x99 {
			adjust |= 0x60
			carry = true
		}
		if c.isFlagSet(FlagHalfCarry) || c.A&0xF > 0x9 {
			adjust |= 0x06
		}
		c.A += adjust
	} else {
		if carry {
			adjust |= 0x60
		}
		if c.isFlagSet(FlagHalfCarry) {
			adjust |= 0x06
		}
		c.A -= adjust
	}
	c.setFlags(c.A == 0, subtract, false, carry)
}
