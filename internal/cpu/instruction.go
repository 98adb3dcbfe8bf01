package cpu

import "fmt"

// Operation executes an instruction. It returns the number of bytes
// to advance PC by, or 0 when it has set PC itself.
type Operation func(c *CPU, operands []byte) uint16

// Instruction is a single entry of a dispatch table.
type Instruction struct {
	name   string
	fn     Operation
	length uint8
	cycles uint8
	taken  uint8
}

// Name returns the mnemonic of the instruction.
func (i Instruction) Name() string { return i.name }

// Length returns the encoded length in bytes, including any prefix.
func (i Instruction) Length() uint8 { return i.length }

// Cycles returns the cost in machine cycles when the instruction
// falls through to the next one.
func (i Instruction) Cycles() uint8 { return i.cycles }

// TakenCycles returns the cost in machine cycles when the
// instruction sets PC.
func (i Instruction) TakenCycles() uint8 { return i.taken }

// Defined reports whether the entry holds an instruction.
func (i Instruction) Defined() bool { return i.fn != nil }

// Execute runs the instruction against c.
func (i Instruction) Execute(c *CPU, operands []byte) uint16 {
	return i.fn(c, operands)
}

// InstructionOpt configures an Instruction.
type InstructionOpt func(*Instruction)

// Length sets the encoded length in bytes. Defaults to 1.
func Length(n uint8) InstructionOpt {
	return func(i *Instruction) { i.length = n }
}

// Cycles sets the cost in machine cycles. Defaults to 1.
func Cycles(n uint8) InstructionOpt {
	return func(i *Instruction) { i.cycles = n }
}

// Taken sets the cost in machine cycles of a taken branch. Defaults
// to the value given to Cycles.
func Taken(n uint8) InstructionOpt {
	return func(i *Instruction) { i.taken = n }
}

// Key identifies an opcode, including whether it followed the 0xCB
// prefix.
type Key struct {
	Prefixed bool
	Opcode   uint8
}

func (k Key) String() string {
	if k.Prefixed {
		return fmt.Sprintf("CB %02X", k.Opcode)
	}
	return fmt.Sprintf("%02X", k.Opcode)
}

var (
	// InstructionSet holds the unprefixed instructions.
	InstructionSet [256]Instruction
	// InstructionSetCB holds the instructions following 0xCB.
	InstructionSetCB [256]Instruction
)

// Lookup returns the table entry for k.
func Lookup(k Key) Instruction {
	if k.Prefixed {
		return InstructionSetCB[k.Opcode]
	}
	return InstructionSet[k.Opcode]
}

func newInstruction(name string, fn Operation, opts []InstructionOpt) Instruction {
	i := Instruction{name: name, fn: fn, length: 1, cycles: 1}
	for _, opt := range opts {
		opt(&i)
	}
	if i.taken == 0 {
		i.taken = i.cycles
	}
	return i
}

// DefineInstruction defines an instruction that never sets PC, with
// the provided opcode, in the InstructionSet.
func DefineInstruction(opcode uint8, name string, fn func(c *CPU, operands []byte), opts ...InstructionOpt) {
	var i Instruction
	i = newInstruction(name, func(c *CPU, operands []byte) uint16 {
		fn(c, operands)
		return uint16(i.length)
	}, opts)
	InstructionSet[opcode] = i
}

// DefineBranch defines an instruction that may set PC. fn reports
// whether it did.
func DefineBranch(opcode uint8, name string, fn func(c *CPU, operands []byte) bool, opts ...InstructionOpt) {
	var i Instruction
	i = newInstruction(name, func(c *CPU, operands []byte) uint16 {
		if fn(c, operands) {
			return 0
		}
		return uint16(i.length)
	}, opts)
	InstructionSet[opcode] = i
}

// DefineInstructionCB defines an instruction in the InstructionSetCB.
// The length always includes the prefix byte.
func DefineInstructionCB(opcode uint8, name string, fn func(c *CPU), opts ...InstructionOpt) {
	opts = append([]InstructionOpt{Length(2), Cycles(2)}, opts...)
	InstructionSetCB[opcode] = newInstruction(name, func(c *CPU, _ []byte) uint16 {
		fn(c)
		return 2
	}, opts)
}

func word(operands []byte) uint16 {
	return uint16(operands[0]) | uint16(operands[1])<<8
}
