// Package timer provides an implementation of the Game Boy
// timer. It is used to generate interrupts at a specific
// frequency. The frequency can be configured using the
// types.TAC register.
package timer

import (
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/mmu"
	"github.com/thelolagemann/dmgcore/internal/types"
)

// Bus is the part of the memory bus the timer needs. The registers
// live on the bus; the controller reserves them so that writes made
// by the program reach it.
type Bus interface {
	Write(addr uint16, v uint8)
	ReserveAddress(addr uint16, h mmu.WriteHandler)
}

// Requester raises interrupts.
type Requester interface {
	Request(flag uint8)
}

// Controller is a timer controller. TIMA counts on the falling edge
// of the system counter bit selected by TAC.
type Controller struct {
	bus Bus
	irq Requester

	div  uint16
	tima uint8
	tma  uint8
	tac  uint8

	// set while the controller writes its own registers
	internal bool
}

// bits maps the TAC clock select onto the system counter bit whose
// falling edge increments TIMA.
var bits = [4]uint16{512, 8, 32, 128}

// NewController returns a new timer controller and reserves its
// registers on b.
func NewController(b Bus, irq Requester) *Controller {
	c := &Controller{bus: b, irq: irq, tac: 0xF8}

	b.ReserveAddress(types.DIV, func(v uint8) uint8 {
		if c.internal {
			return v
		}
		// any write resets the whole counter
		c.div = 0
		return 0
	})
	b.ReserveAddress(types.TIMA, func(v uint8) uint8 {
		if !c.internal {
			c.tima = v
		}
		return v
	})
	b.ReserveAddress(types.TMA, func(v uint8) uint8 {
		c.tma = v
		return v
	})
	b.ReserveAddress(types.TAC, func(v uint8) uint8 {
		c.tac = v | 0xF8
		return c.tac
	})

	c.set(types.TAC, c.tac)
	return c
}

// Enabled reports whether TIMA is counting.
func (c *Controller) Enabled() bool {
	return c.tac&types.Bit2 != 0
}

// Tick advances the timer by the given number of clock cycles.
func (c *Controller) Tick(cycles uint32) {
	oldDiv, oldTima := uint8(c.div>>8), c.tima
	selected := bits[c.tac&0x03]
	for i := uint32(0); i < cycles; i++ {
		last := c.div&selected != 0
		c.div++
		if !c.Enabled() || !last || c.div&selected != 0 {
			continue
		}

		c.tima++
		if c.tima == 0 {
			c.tima = c.tma
			c.irq.Request(interrupts.TimerFlag)
		}
	}

	if div := uint8(c.div >> 8); div != oldDiv {
		c.set(types.DIV, div)
	}
	if c.tima != oldTima {
		c.set(types.TIMA, c.tima)
	}
}

// Divider returns the internal 16-bit system counter.
func (c *Controller) Divider() uint16 {
	return c.div
}

func (c *Controller) set(addr uint16, v uint8) {
	c.internal = true
	c.bus.Write(addr, v)
	c.internal = false
}

var _ types.Stater = (*Controller)(nil)

// Load loads the state of the controller.
func (c *Controller) Load(s *types.State) {
	c.div = s.Read16()
	c.tima = s.Read8()
	c.tma = s.Read8()
	c.tac = s.Read8()
}

// Save saves the state of the controller.
func (c *Controller) Save(s *types.State) {
	s.Write16(c.div)
	s.Write8(c.tima)
	s.Write8(c.tma)
	s.Write8(c.tac)
}
