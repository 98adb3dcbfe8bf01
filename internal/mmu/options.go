package mmu

import (
	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// BusOpt configures a Bus.
type BusOpt func(b *Bus)

// WithBootROM maps rom over 0x0000 - 0x00FF until DisableBootROM.
func WithBootROM(rom *boot.ROM) BusOpt {
	return func(b *Bus) {
		b.bootROM = rom
		b.bootROMMapped = rom != nil
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l log.Logger) BusOpt {
	return func(b *Bus) {
		b.log = l
	}
}

// WithBootDisableRegister nominates an I/O register whose writes
// unmap the boot ROM. The stored value is left untouched.
func WithBootDisableRegister(addr uint16) BusOpt {
	return func(b *Bus) {
		b.ReserveAddress(addr, func(v uint8) uint8 {
			// called with the lock held
			b.disableBootROM()
			return v
		})
	}
}
