package cpu

import "github.com/thelolagemann/dmgcore/internal/types"

// Registers holds the eight 8-bit registers and the four pairs
// that view them as 16-bit values.
type Registers struct {
	A types.Register
	F types.Register
	B types.Register
	C types.Register
	D types.Register
	E types.Register
	H types.Register
	L types.Register

	BC *types.RegisterPair
	DE *types.RegisterPair
	HL *types.RegisterPair
	AF *types.RegisterPair
}

func (r *Registers) init() {
	r.BC = types.NewRegisterPair(&r.B, &r.C)
	r.DE = types.NewRegisterPair(&r.D, &r.E)
	r.HL = types.NewRegisterPair(&r.H, &r.L)
	// the low nibble of F does not exist
	r.AF = types.NewMaskedRegisterPair(&r.A, &r.F, 0xF0)
}

// Reg identifies an operand in the 3-bit register field of an
// opcode. RegHLIndirect is the byte addressed by HL.
type Reg uint8

const (
	RegB Reg = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegHLIndirect
	RegA
)

var regNames = [8]string{"B", "C", "D", "E", "H", "L", "(HL)", "A"}

func (r Reg) String() string {
	return regNames[r&7]
}

// get returns the value of operand r.
func (c *CPU) get(r Reg) uint8 {
	switch r & 7 {
	case RegB:
		return c.B
	case RegC:
		return c.C
	case RegD:
		return c.D
	case RegE:
		return c.E
	case RegH:
		return c.H
	case RegL:
		return c.L
	case RegHLIndirect:
		return c.bus.Read(c.HL.Uint16())
	default: // RegA
		return c.A
	}
}

// set stores v in operand r.
func (c *CPU) set(r Reg, v uint8) {
	switch r & 7 {
	case RegB:
		c.B = v
	case RegC:
		c.C = v
	case RegD:
		c.D = v
	case RegE:
		c.E = v
	case RegH:
		c.H = v
	case RegL:
		c.L = v
	case RegHLIndirect:
		c.bus.Write(c.HL.Uint16(), v)
	default: // RegA
		c.A = v
	}
}

// pair identifies the 2-bit register pair field of an opcode. The
// fourth pair is SP for loads and arithmetic, AF for PUSH and POP.
type pair uint8

const (
	pairBC pair = iota
	pairDE
	pairHL
	pairSPorAF
)

var pairNames = [2][4]string{{"BC", "DE", "HL", "SP"}, {"BC", "DE", "HL", "AF"}}

func (c *CPU) getPair(p pair, stack bool) uint16 {
	switch p & 3 {
	case pairBC:
		return c.BC.Uint16()
	case pairDE:
		return c.DE.Uint16()
	case pairHL:
		return c.HL.Uint16()
	default:
		if stack {
			return c.AF.Uint16()
		}
		return c.SP
	}
}

func (c *CPU) setPair(p pair, stack bool, v uint16) {
	switch p & 3 {
	case pairBC:
		c.BC.SetUint16(v)
	case pairDE:
		c.DE.SetUint16(v)
	case pairHL:
		c.HL.SetUint16(v)
	default:
		if stack {
			c.AF.SetUint16(v)
		} else {
			c.SP = v
		}
	}
}
