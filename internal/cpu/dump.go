package cpu

import (
	"fmt"
	"strings"
)

// Byte is a byte read for a Dump. Unmapped addresses are kept rather
// than aborting the dump.
type Byte struct {
	Value  uint8
	Mapped bool
}

func (b Byte) String() string {
	if !b.Mapped {
		return "--"
	}
	return fmt.Sprintf("%02X", b.Value)
}

// Row pairs a stack address with the video memory address 0x6000
// below it.
type Row struct {
	StackAddr uint16
	Stack     Byte
	VRAMAddr  uint16
	VRAM      Byte
}

// Dump is the diagnostic state of the CPU. It is carried by every
// fatal error.
type Dump struct {
	Snapshot

	// Code holds the 4 bytes at PC.
	Code [4]Byte
	// Rows walks down from 0xFFFF.
	Rows []Row
}

// Dump captures the CPU state with depth stack rows. A depth of 0
// uses the depth the CPU was configured with.
func (c *CPU) Dump(depth int) *Dump {
	if depth <= 0 {
		depth = c.dumpDepth
	}
	if depth > 0x100 {
		depth = 0x100
	}
	d := &Dump{Snapshot: c.Snapshot()}
	for i := range d.Code {
		d.Code[i] = c.peek(c.PC + uint16(i))
	}
	d.Rows = make([]Row, depth)
	for i := range d.Rows {
		stack := uint16(0xFFFF - i)
		d.Rows[i] = Row{
			StackAddr: stack,
			Stack:     c.peek(stack),
			VRAMAddr:  stack - 0x6000,
			VRAM:      c.peek(stack - 0x6000),
		}
	}
	return d
}

func (c *CPU) peek(addr uint16) Byte {
	v, err := c.bus.Peek(addr)
	return Byte{Value: v, Mapped: err == nil}
}

func (d *Dump) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%04X: cpu {\n", d.Operations)
	fmt.Fprintf(&b, "\tpc: %04X [%s %s %s %s]\n", d.PC, d.Code[0], d.Code[1], d.Code[2], d.Code[3])
	fmt.Fprintf(&b, "\tsp: %04X\n", d.SP)
	fmt.Fprintf(&b, "\tregisters: { a: %02X, f: %02X, b: %02X, c: %02X, d: %02X, e: %02X, h: %02X, l: %02X }\n",
		d.A, d.F, d.B, d.C, d.D, d.E, d.H, d.L)
	fmt.Fprintf(&b, "\tflags: { zero: %t, sub: %t, half: %t, carry: %t }\n", d.Zero, d.Subtract, d.HalfCarry, d.Carry)
	fmt.Fprintf(&b, "\time: %t, mode: %s\n}\n", d.IME, d.Mode)

	b.WriteString("mem {\n  stack:\t\tvram:\n")
	for _, row := range d.Rows {
		arrow := " "
		if row.StackAddr == d.SP {
			arrow = ">"
		}
		fmt.Fprintf(&b, "%s   0x%04X: %s \t  0x%04X: %s\n", arrow, row.StackAddr, row.Stack, row.VRAMAddr, row.VRAM)
	}
	b.WriteString("}\n")
	return b.String()
}
