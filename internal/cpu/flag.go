package cpu

type Flag = uint8

const (
	FlagZero      Flag = 7
	FlagSubtract  Flag = 6
	FlagHalfCarry Flag = 5
	FlagCarry     Flag = 4
)

// clearFlag clears a flag from the F register.
func (c *CPU) clearFlag(flag Flag) {
	c.F &^= 1 << flag
}

// setFlag sets a flag in the F register.
func (c *CPU) setFlag(flag Flag) {
	c.F |= 1 << flag
}

// isFlagSet returns true if the given flag is set.
func (c *CPU) isFlagSet(flag Flag) bool {
	return c.F&(1<<flag) != 0
}

// setFlags replaces all four flags. The low nibble of F is always
// left zero.
func (c *CPU) setFlags(zero, subtract, halfCarry, carry bool) {
	c.F = 0
	if zero {
		c.setFlag(FlagZero)
	}
	if subtract {
		c.setFlag(FlagSubtract)
	}
	if halfCarry {
		c.setFlag(FlagHalfCarry)
	}
	if carry {
		c.setFlag(FlagCarry)
	}
}

// condition evaluates the 2-bit condition field cc of a branch:
// NZ, Z, NC, C.
func (c *CPU) condition(cc uint8) bool {
	switch cc & 3 {
	case 0:
		return !c.isFlagSet(FlagZero)
	case 1:
		return c.isFlagSet(FlagZero)
	case 2:
		return !c.isFlagSet(FlagCarry)
	default:
		return c.isFlagSet(FlagCarry)
	}
}

var conditionNames = [4]string{"NZ", "Z", "NC", "C"}
