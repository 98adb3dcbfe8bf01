// Package mmu provides the address bus for the Game Boy. The bus owns
// every backing store in the 64kB address space and is the only way
// the CPU and PPU communicate with each other.
package mmu

import (
	"fmt"
	"sync"

	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// Cartridge is the flat ROM image mapped at 0x0000-0x7FFF. Offsets
// are CPU addresses.
type Cartridge interface {
	Read(offset uint32) uint8
	Len() int
}

// WriteHandler intercepts a write to a reserved I/O register and
// returns the value that is actually stored. It is called with the
// bus locked and must not access the bus.
type WriteHandler func(v uint8) uint8

// Bus is the address bus for the Game Boy. Reads take the shared
// lock and writes the exclusive lock for the duration of a single
// access, so a renderer holding the shared lock through View never
// observes a half-applied write.
type Bus struct {
	mu sync.RWMutex

	// 0x0000 - 0x00FF - BOOT ROM (256B)
	bootROM       *boot.ROM
	bootROMMapped bool

	// 0x0000 - 0x7FFF - ROM (32kB)
	cart Cartridge

	// 0x8000 - 0x9FFF - Video RAM (8kB)
	vRAM [types.VRAMSize]byte

	// 0xA000 - 0xBFFF - External RAM (8kB)
	extRAM [types.ExtRAMSize]byte

	// 0xC000 - 0xDFFF - Work RAM (8kB)
	// 0xE000 - 0xFDFF - Echo RAM (7.5kB)
	wRAM [types.WRAMSize]byte

	// 0xFF00 - joypad input
	input uint8

	// 0xFF01 - 0xFF7F - I/O Registers
	io       [types.IOSize]byte
	handlers map[uint16]WriteHandler

	// 0xFF80 - 0xFFFE - Zero Page RAM (127B)
	hRAM [types.HRAMSize]byte

	// 0xFFFF - interrupt enable register
	ie uint8

	log log.Logger
}

// NewBus returns a new Bus mapping cart. A nil cart behaves as an
// empty ROM.
func NewBus(cart Cartridge, opts ...BusOpt) *Bus {
	if cart == nil {
		cart = emptyCartridge{}
	}
	b := &Bus{
		cart:     cart,
		handlers: make(map[uint16]WriteHandler),
		log:      log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Read returns the value at the given address. An unmapped address
// panics with an *AddressError; use Peek to receive it as an error.
func (b *Bus) Read(addr uint16) uint8 {
	b.mu.RLock()
	v, err := b.read(addr)
	b.mu.RUnlock()
	if err != nil {
		panic(err)
	}
	return v
}

// Write stores v at the given address. An unmapped or read-only
// address panics with an *AddressError; use Poke to receive it as
// an error.
func (b *Bus) Write(addr uint16, v uint8) {
	b.mu.Lock()
	err := b.write(addr, v)
	b.mu.Unlock()
	if err != nil {
		panic(err)
	}
}

// Peek is the checked variant of Read.
func (b *Bus) Peek(addr uint16) (uint8, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.read(addr)
}

// Poke is the checked variant of Write.
func (b *Bus) Poke(addr uint16, v uint8) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.write(addr, v)
}

// ReadRange returns a copy of the half-open range [start, end). Every
// byte in the range must be mapped.
func (b *Bus) ReadRange(start, end uint16) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.readRange(start, end)
}

// DisableBootROM unmaps the boot ROM, exposing the cartridge at
// 0x0000 - 0x00FF. It is a no-op when no boot ROM is mapped.
func (b *Bus) DisableBootROM() {
	b.mu.Lock()
	b.disableBootROM()
	b.mu.Unlock()
}

func (b *Bus) disableBootROM() {
	if b.bootROMMapped {
		b.log.Debugf("mmu: boot rom unmapped")
	}
	b.bootROMMapped = false
}

// BootROMMapped reports whether the boot ROM still overlays the
// cartridge.
func (b *Bus) BootROMMapped() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bootROMMapped
}

// ReserveAddress installs h as the write handler of the I/O register
// at addr. Reserving an address outside 0xFF00 - 0xFF7F, or one that
// has already been reserved, panics.
func (b *Bus) ReserveAddress(addr uint16, h WriteHandler) {
	if addr < types.P1 || addr > types.IOEnd {
		panic(fmt.Sprintf("mmu: address 0x%04X is not an I/O register", addr))
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.handlers[addr]; ok {
		panic(fmt.Sprintf("mmu: address 0x%04X has already been reserved", addr))
	}
	b.handlers[addr] = h
}

// read resolves addr without locking.
func (b *Bus) read(addr uint16) (uint8, error) {
	switch {
	case addr <= types.BootROMEnd && b.bootROMMapped:
		return b.bootROM.Read(addr), nil
	case addr <= types.CartROMEnd:
		if int(addr) >= b.cart.Len() {
			return 0, &AddressError{Addr: addr, Op: OpRead, Reason: "beyond cartridge length"}
		}
		return b.cart.Read(uint32(addr)), nil
	case addr <= types.VRAMEnd:
		return b.vRAM[addr-types.VRAMStart], nil
	case addr <= types.ExtRAMEnd:
		return b.extRAM[addr-types.ExtRAMStart], nil
	case addr <= types.WRAMEnd:
		return b.wRAM[addr-types.WRAMStart], nil
	case addr <= types.EchoEnd:
		return b.wRAM[addr-types.EchoStart], nil
	case addr < types.P1:
		return 0, &AddressError{Addr: addr, Op: OpRead}
	case addr == types.P1:
		return b.input, nil
	case addr <= types.IOEnd:
		return b.io[addr-types.IOStart], nil
	case addr <= types.HRAMEnd:
		return b.hRAM[addr-types.HRAMStart], nil
	default:
		return b.ie, nil
	}
}

// write stores v at addr without locking.
func (b *Bus) write(addr uint16, v uint8) error {
	switch {
	case addr <= types.BootROMEnd && b.bootROMMapped:
		return &AddressError{Addr: addr, Op: OpWrite, Reason: "boot rom is read-only"}
	case addr <= types.CartROMEnd:
		// bank control on real hardware, nothing to control here
		b.log.Debugf("mmu: discarded write of 0x%02X to cartridge rom at 0x%04X", v, addr)
		return nil
	case addr <= types.VRAMEnd:
		b.vRAM[addr-types.VRAMStart] = v
	case addr <= types.ExtRAMEnd:
		b.extRAM[addr-types.ExtRAMStart] = v
	case addr <= types.WRAMEnd:
		b.wRAM[addr-types.WRAMStart] = v
	case addr <= types.EchoEnd:
		b.wRAM[addr-types.EchoStart] = v
	case addr < types.P1:
		return &AddressError{Addr: addr, Op: OpWrite}
	case addr <= types.IOEnd:
		if h, ok := b.handlers[addr]; ok {
			v = h(v)
		}
		if addr == types.P1 {
			b.input = v
		} else {
			b.io[addr-types.IOStart] = v
		}
	case addr <= types.HRAMEnd:
		b.hRAM[addr-types.HRAMStart] = v
	default:
		b.ie = v
	}
	return nil
}

func (b *Bus) readRange(start, end uint16) ([]byte, error) {
	if end < start {
		return nil, &AddressError{Addr: start, Op: OpRange, Reason: "range end before start"}
	}
	out := make([]byte, 0, end-start)
	for addr := uint32(start); addr < uint32(end); addr++ {
		v, err := b.read(uint16(addr))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

type emptyCartridge struct{}

func (emptyCartridge) Read(uint32) uint8 { return 0xFF }
func (emptyCartridge) Len() int          { return 0 }
