// Package cpu provides an implementation of the Sharp LR35902, the
// 8-bit processor of the Game Boy. The CPU talks to the rest of the
// system only through the bus and the interrupt service.
package cpu

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/mmu"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the CPU in Hz.
	ClockSpeed = 4194304

	// InterruptCycles is the cost in clock cycles of dispatching
	// an interrupt.
	InterruptCycles = 20

	// DefaultDumpDepth is the number of stack rows in a Dump taken
	// for diagnostics.
	DefaultDumpDepth = 8
	// CrashDumpDepth is the number of stack rows in the Dump
	// carried by a fatal error.
	CrashDumpDepth = 0xFF
)

// Bus is the memory the CPU executes from. Read and Write may panic
// with an *mmu.AddressError; Step recovers it.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
	Peek(addr uint16) (uint8, error)
}

// Mode is the power mode of the CPU.
type Mode uint8

const (
	// ModeNormal fetches and executes instructions.
	ModeNormal Mode = iota
	// ModeHalt is entered by HALT.
	ModeHalt
	// ModeStop is entered by STOP.
	ModeStop
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeHalt:
		return "halt"
	case ModeStop:
		return "stop"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// CPU represents the Game Boy's CPU.
type CPU struct {
	// PC is the program counter, it points to the next instruction to be executed.
	PC uint16
	// SP is the stack pointer, it points to the top of the stack.
	SP uint16
	// Registers contains the 8-bit registers, as well as the 16-bit register pairs.
	Registers

	bus Bus
	irq *interrupts.Service

	mode     Mode
	ops      uint64
	operands [2]byte

	log       log.Logger
	trace     bool
	dumpDepth int
}

// Opt configures a CPU.
type Opt func(c *CPU)

// WithLogger sets the logger used for the instruction trace.
func WithLogger(l log.Logger) Opt {
	return func(c *CPU) {
		c.log = l
	}
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(enabled bool) Opt {
	return func(c *CPU) {
		c.trace = enabled
	}
}

// WithDumpDepth sets the number of stack rows in a diagnostic Dump.
func WithDumpDepth(depth int) Opt {
	return func(c *CPU) {
		if depth > 0 {
			c.dumpDepth = depth
		}
	}
}

// NewCPU creates a new CPU bound to b and irq. Reset must be called
// before the first Step.
func NewCPU(b Bus, irq *interrupts.Service, opts ...Opt) *CPU {
	c := &CPU{
		bus:       b,
		irq:       irq,
		log:       log.NewNullLogger(),
		dumpDepth: DefaultDumpDepth,
	}
	c.Registers.init()
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Reset sets the registers to the values left behind by the DMG boot
// ROM. When a boot ROM is present execution starts at 0x0000 so it
// can run, otherwise at the cartridge entry point 0x0100.
func (c *CPU) Reset(bootROM bool) {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.PC = 0x0100
	if bootROM {
		c.PC = 0x0000
	}
	c.mode = ModeNormal
	c.ops = 0
}

// Step dispatches a pending interrupt, if any, then fetches, decodes
// and executes a single instruction. It returns the number of clock
// cycles taken. A non-nil error is fatal: the CPU must not be
// stepped again.
func (c *CPU) Step() (cycles uint32, err error) {
	pc := c.PC
	defer func() {
		if r := recover(); r != nil {
			var addrErr *mmu.AddressError
			e, ok := r.(error)
			if !ok || !errors.As(e, &addrErr) {
				panic(r)
			}
			err = &FaultError{PC: pc, Err: addrErr, Dump: c.Dump(CrashDumpDepth)}
		}
	}()

	// low power until an interrupt is both requested and enabled
	if c.mode != ModeNormal {
		if !c.irq.HasInterrupts() {
			c.irq.Tick()
			return 4, nil
		}
		c.mode = ModeNormal
	}

	if bit, vector, ok := c.irq.Pending(); ok {
		c.irq.Service(c, bit, vector)
		cycles += InterruptCycles
	}

	pc = c.PC
	key := Key{Opcode: c.bus.Read(pc)}
	if key.Opcode == 0xCB {
		key = Key{Prefixed: true, Opcode: c.bus.Read(pc + 1)}
	}
	instr := Lookup(key)
	if !instr.Defined() {
		return cycles, &DecodeError{Key: key, PC: pc, Dump: c.Dump(CrashDumpDepth)}
	}

	var operands []byte
	if !key.Prefixed && instr.length > 1 {
		operands = c.operands[:instr.length-1]
		for i := range operands {
			operands[i] = c.bus.Read(pc + 1 + uint16(i))
		}
	}
	if c.trace {
		c.traceInstruction(pc, key, instr, operands)
	}

	if advance := instr.Execute(c, operands); advance == 0 {
		cycles += uint32(instr.taken) * 4
	} else {
		c.PC += advance
		cycles += uint32(instr.cycles) * 4
	}

	c.irq.Tick()
	c.ops++

	return cycles, nil
}

func (c *CPU) traceInstruction(pc uint16, key Key, instr Instruction, operands []byte) {
	var b strings.Builder
	if key.Prefixed {
		b.WriteString("0xCB ")
	}
	fmt.Fprintf(&b, "0x%02X", key.Opcode)
	for _, o := range operands {
		fmt.Fprintf(&b, " 0x%02X", o)
	}
	c.log.Debugf("[0x%04X] %-15s %-16s %X", pc, b.String(), instr.Name(), c.ops)
}

// Mode returns the current power mode.
func (c *CPU) Mode() Mode {
	return c.mode
}

// Operations returns the number of instructions executed since Reset.
func (c *CPU) Operations() uint64 {
	return c.ops
}

// Snapshot is a read-only copy of the CPU state.
type Snapshot struct {
	PC, SP                           uint16
	A, F, B, C, D, E, H, L           uint8
	Zero, Subtract, HalfCarry, Carry bool
	IME                              bool
	Mode                             Mode
	Operations                       uint64
}

// Snapshot returns a copy of the registers and flags.
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		PC: c.PC, SP: c.SP,
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		Zero:       c.isFlagSet(FlagZero),
		Subtract:   c.isFlagSet(FlagSubtract),
		HalfCarry:  c.isFlagSet(FlagHalfCarry),
		Carry:      c.isFlagSet(FlagCarry),
		IME:        c.irq.IME(),
		Mode:       c.mode,
		Operations: c.ops,
	}
}

var _ types.Stater = (*CPU)(nil)

// Load implements the types.Stater interface.
func (c *CPU) Load(s *types.State) {
	c.PC = s.Read16()
	c.SP = s.Read16()
	c.AF.SetUint16(s.Read16())
	c.BC.SetUint16(s.Read16())
	c.DE.SetUint16(s.Read16())
	c.HL.SetUint16(s.Read16())
	c.mode = Mode(s.Read8())
	c.ops = s.Read64()
}

// Save implements the types.Stater interface.
func (c *CPU) Save(s *types.State) {
	s.Write16(c.PC)
	s.Write16(c.SP)
	s.Write16(c.AF.Uint16())
	s.Write16(c.BC.Uint16())
	s.Write16(c.DE.Uint16())
	s.Write16(c.HL.Uint16())
	s.Write8(uint8(c.mode))
	s.Write64(c.ops)
}
