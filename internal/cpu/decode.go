package cpu

import "fmt"

// The bulk of the instruction set is generated from the bit fields
// of the opcode:
//
//	xx yyy zzz
//	   ppq
//
// where yyy and zzz select a Reg, pp a register pair, yyy an ALU
// operation or bit index, and the low bits of yyy a condition.
func init() {
	defineLoads()
	defineArithmetic()
	defineBranches()
	defineMisc()
	defineCB()
}

func defineLoads() {
	// 0x40 - 0x7F - LD r, r'
	for opcode := 0x40; opcode < 0x80; opcode++ {
		if opcode == 0x76 {
			continue // HALT
		}
		dst, src := Reg(opcode>>3&7), Reg(opcode&7)
		cycles := uint8(1)
		if dst == RegHLIndirect || src == RegHLIndirect {
			cycles = 2
		}
		DefineInstruction(uint8(opcode), fmt.Sprintf("LD %s, %s", dst, src), func(c *CPU, _ []byte) {
			c.set(dst, c.get(src))
		}, Cycles(cycles))
	}

	// 0x06, 0x0E ... 0x3E - LD r, n
	for r := Reg(0); r < 8; r++ {
		r := r
		cycles := uint8(2)
		if r == RegHLIndirect {
			cycles = 3
		}
		DefineInstruction(uint8(r)<<3|0x06, fmt.Sprintf("LD %s, n", r), func(c *CPU, operands []byte) {
			c.set(r, operands[0])
		}, Length(2), Cycles(cycles))
	}

	// 0x01, 0x11, 0x21, 0x31 - LD rr, nn
	for p := pair(0); p < 4; p++ {
		p := p
		DefineInstruction(uint8(p)<<4|0x01, fmt.Sprintf("LD %s, nn", pairNames[0][p]), func(c *CPU, operands []byte) {
			c.setPair(p, false, word(operands))
		}, Length(3), Cycles(3))
	}

	// 0xC1, 0xD1, 0xE1, 0xF1 - POP rr
	// 0xC5, 0xD5, 0xE5, 0xF5 - PUSH rr
	for p := pair(0); p < 4; p++ {
		p := p
		DefineInstruction(uint8(p)<<4|0xC1, fmt.Sprintf("POP %s", pairNames[1][p]), func(c *CPU, _ []byte) {
			c.setPair(p, true, c.Pop())
		}, Cycles(3))
		DefineInstruction(uint8(p)<<4|0xC5, fmt.Sprintf("PUSH %s", pairNames[1][p]), func(c *CPU, _ []byte) {
			c.Push(c.getPair(p, true))
		}, Cycles(4))
	}

	DefineInstruction(0x02, "LD (BC), A", func(c *CPU, _ []byte) {
		c.bus.Write(c.BC.Uint16(), c.A)
	}, Cycles(2))
	DefineInstruction(0x0A, "LD A, (BC)", func(c *CPU, _ []byte) {
		c.A = c.bus.Read(c.BC.Uint16())
	}, Cycles(2))
	DefineInstruction(0x12, "LD (DE), A", func(c *CPU, _ []byte) {
		c.bus.Write(c.DE.Uint16(), c.A)
	}, Cycles(2))
	DefineInstruction(0x1A, "LD A, (DE)", func(c *CPU, _ []byte) {
		c.A = c.bus.Read(c.DE.Uint16())
	}, Cycles(2))
	DefineInstruction(0x22, "LD (HL+), A", func(c *CPU, _ []byte) {
		c.bus.Write(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}, Cycles(2))
	DefineInstruction(0x2A, "LD A, (HL+)", func(c *CPU, _ []byte) {
		c.A = c.bus.Read(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() + 1)
	}, Cycles(2))
	DefineInstruction(0x32, "LD (HL-), A", func(c *CPU, _ []byte) {
		c.bus.Write(c.HL.Uint16(), c.A)
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}, Cycles(2))
	DefineInstruction(0x3A, "LD A, (HL-)", func(c *CPU, _ []byte) {
		c.A = c.bus.Read(c.HL.Uint16())
		c.HL.SetUint16(c.HL.Uint16() - 1)
	}, Cycles(2))
	DefineInstruction(0x08, "LD (nn), SP", func(c *CPU, operands []byte) {
		addr := word(operands)
		c.bus.Write(addr, uint8(c.SP))
		c.bus.Write(addr+1, uint8(c.SP>>8))
	}, Length(3), Cycles(5))
	DefineInstruction(0xE0, "LDH (n), A", func(c *CPU, operands []byte) {
		c.bus.Write(0xFF00+uint16(operands[0]), c.A)
	}, Length(2), Cycles(3))
	DefineInstruction(0xF0, "LDH A, (n)", func(c *CPU, operands []byte) {
		c.A = c.bus.Read(0xFF00 + uint16(operands[0]))
	}, Length(2), Cycles(3))
	DefineInstruction(0xE2, "LD (C), A", func(c *CPU, _ []byte) {
		c.bus.Write(0xFF00+uint16(c.C), c.A)
	}, Cycles(2))
	DefineInstruction(0xF2, "LD A, (C)", func(c *CPU, _ []byte) {
		c.A = c.bus.Read(0xFF00 + uint16(c.C))
	}, Cycles(2))
	DefineInstruction(0xEA, "LD (nn), A", func(c *CPU, operands []byte) {
		c.bus.Write(word(operands), c.A)
	}, Length(3), Cycles(4))
	DefineInstruction(0xFA, "LD A, (nn)", func(c *CPU, operands []byte) {
		c.A = c.bus.Read(word(operands))
	}, Length(3), Cycles(4))
	DefineInstruction(0xF8, "LD HL, SP+e", func(c *CPU, operands []byte) {
		c.HL.SetUint16(c.addSPSigned(operands[0]))
	}, Length(2), Cycles(3))
	DefineInstruction(0xF9, "LD SP, HL", func(c *CPU, _ []byte) {
		c.SP = c.HL.Uint16()
	}, Cycles(2))
}

func defineArithmetic() {
	// 0x80 - 0xBF - ALU A, r
	for opcode := 0x80; opcode < 0xC0; opcode++ {
		op, src := uint8(opcode>>3&7), Reg(opcode&7)
		cycles := uint8(1)
		if src == RegHLIndirect {
			cycles = 2
		}
		DefineInstruction(uint8(opcode), fmt.Sprintf("%s %s", aluNames[op], src), func(c *CPU, _ []byte) {
			c.alu(op, c.get(src))
		}, Cycles(cycles))
	}

	// 0xC6, 0xCE ... 0xFE - ALU A, n
	for op := uint8(0); op < 8; op++ {
		op := op
		DefineInstruction(op<<3|0xC6, fmt.Sprintf("%s n", aluNames[op]), func(c *CPU, operands []byte) {
			c.alu(op, operands[0])
		}, Length(2), Cycles(2))
	}

	// 0x04, 0x0C ... 0x3C - INC r
	// 0x05, 0x0D ... 0x3D - DEC r
	for r := Reg(0); r < 8; r++ {
		r := r
		cycles := uint8(1)
		if r == RegHLIndirect {
			cycles = 3
		}
		DefineInstruction(uint8(r)<<3|0x04, fmt.Sprintf("INC %s", r), func(c *CPU, _ []byte) {
			c.set(r, c.increment(c.get(r)))
		}, Cycles(cycles))
		DefineInstruction(uint8(r)<<3|0x05, fmt.Sprintf("DEC %s", r), func(c *CPU, _ []byte) {
			c.set(r, c.decrement(c.get(r)))
		}, Cycles(cycles))
	}

	// 0x03, 0x13, 0x23, 0x33 - INC rr
	// 0x09, 0x19, 0x29, 0x39 - ADD HL, rr
	// 0x0B, 0x1B, 0x2B, 0x3B - DEC rr
	for p := pair(0); p < 4; p++ {
		p := p
		name := pairNames[0][p]
		DefineInstruction(uint8(p)<<4|0x03, "INC "+name, func(c *CPU, _ []byte) {
			c.setPair(p, false, c.getPair(p, false)+1)
		}, Cycles(2))
		DefineInstruction(uint8(p)<<4|0x09, "ADD HL, "+name, func(c *CPU, _ []byte) {
			c.addHL(c.getPair(p, false))
		}, Cycles(2))
		DefineInstruction(uint8(p)<<4|0x0B, "DEC "+name, func(c *CPU, _ []byte) {
			c.setPair(p, false, c.getPair(p, false)-1)
		}, Cycles(2))
	}

	DefineInstruction(0xE8, "ADD SP, e", func(c *CPU, operands []byte) {
		c.SP = c.addSPSigned(operands[0])
	}, Length(2), Cycles(4))
	DefineInstruction(0x27, "DAA", func(c *CPU, _ []byte) {
		c.decimalAdjust()
	})
	DefineInstruction(0x2F, "CPL", func(c *CPU, _ []byte) {
		c.A = ^c.A
		c.setFlag(FlagSubtract)
		c.setFlag(FlagHalfCarry)
	})
	DefineInstruction(0x37, "SCF", func(c *CPU, _ []byte) {
		c.setFlags(c.isFlagSet(FlagZero), false, false, true)
	})
	DefineInstruction(0x3F, "CCF", func(c *CPU, _ []byte) {
		c.setFlags(c.isFlagSet(FlagZero), false, false, !c.isFlagSet(FlagCarry))
	})

	// the accumulator rotates always reset Z
	DefineInstruction(0x07, "RLCA", func(c *CPU, _ []byte) {
		c.A = c.rotateLeftCarry(c.A)
		c.clearFlag(FlagZero)
	})
	DefineInstruction(0x0F, "RRCA", func(c *CPU, _ []byte) {
		c.A = c.rotateRightCarry(c.A)
		c.clearFlag(FlagZero)
	})
	DefineInstruction(0x17, "RLA", func(c *CPU, _ []byte) {
		c.A = c.rotateLeft(c.A)
		c.clearFlag(FlagZero)
	})
	DefineInstruction(0x1F, "RRA", func(c *CPU, _ []byte) {
		c.A = c.rotateRight(c.A)
		c.clearFlag(FlagZero)
	})
}

func defineBranches() {
	DefineBranch(0x18, "JR e", func(c *CPU, operands []byte) bool {
		c.jumpRelative(operands[0])
		return true
	}, Length(2), Cycles(3))
	DefineBranch(0xC3, "JP nn", func(c *CPU, operands []byte) bool {
		c.PC = word(operands)
		return true
	}, Length(3), Cycles(4))
	DefineBranch(0xE9, "JP HL", func(c *CPU, _ []byte) bool {
		c.PC = c.HL.Uint16()
		return true
	})
	DefineBranch(0xCD, "CALL nn", func(c *CPU, operands []byte) bool {
		c.call(word(operands), 3)
		return true
	}, Length(3), Cycles(6))
	DefineBranch(0xC9, "RET", func(c *CPU, _ []byte) bool {
		c.ret()
		return true
	}, Cycles(4))
	DefineBranch(0xD9, "RETI", func(c *CPU, _ []byte) bool {
		c.ret()
		c.irq.SetMasterEnable(true)
		return true
	}, Cycles(4))

	// conditional branches: NZ, Z, NC, C
	for cc := uint8(0); cc < 4; cc++ {
		cc := cc
		name := conditionNames[cc]
		DefineBranch(cc<<3|0x20, fmt.Sprintf("JR %s, e", name), func(c *CPU, operands []byte) bool {
			if !c.condition(cc) {
				return false
			}
			c.jumpRelative(operands[0])
			return true
		}, Length(2), Cycles(2), Taken(3))
		DefineBranch(cc<<3|0xC2, fmt.Sprintf("JP %s, nn", name), func(c *CPU, operands []byte) bool {
			if !c.condition(cc) {
				return false
			}
			c.PC = word(operands)
			return true
		}, Length(3), Cycles(3), Taken(4))
		DefineBranch(cc<<3|0xC4, fmt.Sprintf("CALL %s, nn", name), func(c *CPU, operands []byte) bool {
			if !c.condition(cc) {
				return false
			}
			c.call(word(operands), 3)
			return true
		}, Length(3), Cycles(3), Taken(6))
		DefineBranch(cc<<3|0xC0, fmt.Sprintf("RET %s", name), func(c *CPU, _ []byte) bool {
			if !c.condition(cc) {
				return false
			}
			c.ret()
			return true
		}, Cycles(2), Taken(5))
	}

	// 0xC7, 0xCF ... 0xFF - RST n
	for n := uint8(0); n < 8; n++ {
		vector := uint16(n) * 8
		DefineBranch(n<<3|0xC7, fmt.Sprintf("RST %02XH", vector), func(c *CPU, _ []byte) bool {
			c.call(vector, 1)
			return true
		}, Cycles(4))
	}
}

func defineMisc() {
	DefineInstruction(0x00, "NOP", func(c *CPU, _ []byte) {})
	DefineInstruction(0x10, "STOP", func(c *CPU, _ []byte) {
		c.mode = ModeStop
	}, Length(2))
	DefineInstruction(0x76, "HALT", func(c *CPU, _ []byte) {
		c.mode = ModeHalt
	})
	DefineInstruction(0xF3, "DI", func(c *CPU, _ []byte) {
		c.irq.DisableImmediately()
	})
	DefineInstruction(0xFB, "EI", func(c *CPU, _ []byte) {
		c.irq.EnableDelayed()
	})
}

func defineCB() {
	for opcode := 0; opcode < 0x100; opcode++ {
		op, r := uint8(opcode>>3&7), Reg(opcode&7)
		indirect := r == RegHLIndirect
		switch opcode >> 6 {
		case 0: // 0x00 - 0x3F - rotates and shifts
			var opts []InstructionOpt
			if indirect {
				opts = append(opts, Cycles(4))
			}
			DefineInstructionCB(uint8(opcode), fmt.Sprintf("%s %s", shiftNames[op], r), func(c *CPU) {
				c.set(r, c.shift(op, c.get(r)))
			}, opts...)
		case 1: // 0x40 - 0x7F - BIT n, r
			var opts []InstructionOpt
			if indirect {
				opts = append(opts, Cycles(3))
			}
			DefineInstructionCB(uint8(opcode), fmt.Sprintf("BIT %d, %s", op, r), func(c *CPU) {
				c.testBit(c.get(r), op)
			}, opts...)
		case 2: // 0x80 - 0xBF - RES n, r
			var opts []InstructionOpt
			if indirect {
				opts = append(opts, Cycles(4))
			}
			DefineInstructionCB(uint8(opcode), fmt.Sprintf("RES %d, %s", op, r), func(c *CPU) {
				c.set(r, c.get(r)&^(1<<op))
			}, opts...)
		default: // 0xC0 - 0xFF - SET n, r
			var opts []InstructionOpt
			if indirect {
				opts = append(opts, Cycles(4))
			}
			DefineInstructionCB(uint8(opcode), fmt.Sprintf("SET %d, %s", op, r), func(c *CPU) {
				c.set(r, c.get(r)|1<<op)
			}, opts...)
		}
	}
}
