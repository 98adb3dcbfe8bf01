// Package interrupts provides the interrupt controller. The request
// (types.IF) and enable (types.IE) registers live on the bus; the
// controller owns only the interrupt master enable (IME).
package interrupts

import (
	"fmt"

	"github.com/thelolagemann/dmgcore/internal/types"
)

const (
	// VBlankFlag is the VBlank interrupt flag (bit 0),
	// which is requested every time the PPU enters
	// VBlank mode (ppu.ModeVBlank).
	VBlankFlag = types.Bit0
	// LCDFlag is the LCD interrupt flag (bit 1), which
	// is requested by the LCD STAT register (types.STAT),
	// when certain conditions are met.
	LCDFlag = types.Bit1
	// TimerFlag is the Timer interrupt flag (bit 2), which is
	// requested when types.TIMA overflows.
	TimerFlag = types.Bit2
	// SerialFlag is the Serial interrupt flag (bit 3). Nothing
	// in the core requests it.
	SerialFlag = types.Bit3
	// JoypadFlag is the Joypad interrupt Flag (bit 4), which
	// is requested when any of types.P1 bits 0-3 go from high
	// to low.
	JoypadFlag = types.Bit4

	// mask covers the five defined interrupt bits.
	mask = 0x1F
)

// Vector returns the fixed handler address of interrupt bit i.
func Vector(bit uint8) uint16 {
	return 0x0040 + uint16(bit)*8
}

// State is the state of the interrupt master enable.
type State uint8

const (
	// Disabled means no interrupt is dispatched.
	Disabled State = iota
	// PendingEnable follows EI until the next instruction has
	// completed.
	PendingEnable
	// Enabled means requested and enabled interrupts are
	// dispatched before the next fetch.
	Enabled
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case PendingEnable:
		return "pending"
	case Enabled:
		return "enabled"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Bus is the memory the controller reads IE and IF from.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// Target is whatever is being interrupted: it must be able to push
// its program counter and jump to a vector.
type Target interface {
	Push(v uint16)
	ProgramCounter() uint16
	Jump(addr uint16)
}

// Service is the interrupt service, used to request interrupts and
// to find the next interrupt to dispatch.
//
// When an interrupt is requested, the corresponding bit in the IF
// register is set. When an interrupt is requested and enabled, and
// the IME is set, the CPU pushes its program counter and jumps to
// the interrupt vector, and the IF bit is acknowledged.
//
// The IME is changed by the DI, EI and RETI instructions. EI takes
// effect only after the instruction that follows it.
type Service struct {
	bus   Bus
	state State
	delay uint8
}

// NewService returns a new Service reading IE and IF through b.
func NewService(b Bus) *Service {
	return &Service{bus: b}
}

// IME reports whether the interrupt master enable is set.
func (s *Service) IME() bool {
	return s.state == Enabled
}

// State returns the current IME state.
func (s *Service) State() State {
	return s.state
}

// SetMasterEnable sets or clears the IME immediately, as RETI does.
func (s *Service) SetMasterEnable(enabled bool) {
	s.delay = 0
	if enabled {
		s.state = Enabled
	} else {
		s.state = Disabled
	}
}

// EnableDelayed is EI: IME is set once the instruction following
// the current one has completed.
func (s *Service) EnableDelayed() {
	if s.state == Enabled {
		return
	}
	s.state = PendingEnable
	s.delay = 2
}

// DisableImmediately is DI: IME is cleared and any pending EI is
// cancelled.
func (s *Service) DisableImmediately() {
	s.SetMasterEnable(false)
}

// Tick is called after every completed instruction.
func (s *Service) Tick() {
	if s.state != PendingEnable {
		return
	}
	s.delay--
	if s.delay == 0 {
		s.state = Enabled
	}
}

// Request requests the specified interrupt, by setting the
// corresponding bit in the IF register.
func (s *Service) Request(flag uint8) {
	s.bus.Write(types.IF, s.bus.Read(types.IF)|flag)
}

// HasInterrupts reports whether any interrupt is both requested and
// enabled, regardless of the IME. It is what wakes a halted CPU.
func (s *Service) HasInterrupts() bool {
	return s.bus.Read(types.IE)&s.bus.Read(types.IF)&mask != 0
}

// Pending returns the highest priority interrupt ready for dispatch.
// Interrupts are dispatched in the order of priority:
//
//   - VBlank
//   - LCD
//   - Timer
//   - Serial
//   - Joypad
func (s *Service) Pending() (bit uint8, vector uint16, ok bool) {
	if s.state != Enabled {
		return 0, 0, false
	}
	irq := s.bus.Read(types.IE) & s.bus.Read(types.IF) & mask
	if irq == 0 {
		return 0, 0, false
	}
	for i := uint8(0); i < 5; i++ {
		if irq&(1<<i) != 0 {
			return i, Vector(i), true
		}
	}
	return 0, 0, false
}

// Service dispatches interrupt bit on t: the program counter is
// pushed, execution jumps to vector, the IME is cleared and the
// request bit is acknowledged.
func (s *Service) Service(t Target, bit uint8, vector uint16) {
	t.Push(t.ProgramCounter())
	t.Jump(vector)
	s.SetMasterEnable(false)
	s.bus.Write(types.IF, s.bus.Read(types.IF)&^(1<<bit))
}

var _ types.Stater = (*Service)(nil)

// Load implements the types.Stater interface.
//
// The values are loaded in the following order:
//   - State (uint8)
//   - delay (uint8)
func (s *Service) Load(st *types.State) {
	s.state = State(st.Read8())
	s.delay = st.Read8()
}

// Save implements the types.Stater interface.
//
// The values are saved in the following order:
//   - State (uint8)
//   - delay (uint8)
func (s *Service) Save(st *types.State) {
	st.Write8(uint8(s.state))
	st.Write8(s.delay)
}
