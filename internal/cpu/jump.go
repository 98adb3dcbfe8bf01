package cpu

// Push pushes v onto the stack. SP is decremented before each byte
// is written, high byte first, so the high byte ends up at the
// higher address.
func (c *CPU) Push(v uint16) {
	c.SP--
	c.bus.Write(c.SP, uint8(v>>8))
	c.SP--
	c.bus.Write(c.SP, uint8(v))
}

// Pop pops a 16-bit value from the stack, low byte first.
func (c *CPU) Pop() uint16 {
	low := c.bus.Read(c.SP)
	c.SP++
	high := c.bus.Read(c.SP)
	c.SP++
	return uint16(high)<<8 | uint16(low)
}

// ProgramCounter returns PC.
func (c *CPU) ProgramCounter() uint16 {
	return c.PC
}

// Jump sets PC to addr.
func (c *CPU) Jump(addr uint16) {
	c.PC = addr
}

// call pushes the address of the next instruction and jumps to
// addr.
//
//	CALL nn
//	CALL cc, nn
func (c *CPU) call(addr uint16, length uint16) {
	c.Push(c.PC + length)
	c.PC = addr
}

// ret pops the return address into PC.
//
//	RET
//	RET cc
func (c *CPU) ret() {
	c.PC = c.Pop()
}

// jumpRelative adds the signed offset e to the address of the next
// instruction.
//
//	JR e
//	JR cc, e
func (c *CPU) jumpRelative(e uint8) {
	c.PC = uint16(int32(c.PC) + 2 + int32(int8(e)))
}
