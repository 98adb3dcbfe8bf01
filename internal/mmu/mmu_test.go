package mmu

import (
	"errors"
	"sync"
	"testing"

	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/internal/cartridge"
	"github.com/thelolagemann/dmgcore/internal/types"
)

func newTestBus(t *testing.T, opts ...BusOpt) *Bus {
	t.Helper()
	rom := make([]byte, 0x8000)
	for i := range rom {
		rom[i] = uint8(i)
	}
	return NewBus(cartridge.NewCartridge(rom), opts...)
}

func newTestBootROM(t *testing.T) *boot.ROM {
	t.Helper()
	raw := make([]byte, boot.Size)
	for i := range raw {
		raw[i] = 0xB0
	}
	r, err := boot.LoadBootROM(raw)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func writable(addr uint16) bool {
	return addr >= types.VRAMStart && (addr < 0xFE00 || addr >= types.P1)
}

func TestBus_RoundTrip(t *testing.T) {
	b := newTestBus(t)
	for addr := 0; addr <= 0xFFFF; addr++ {
		a := uint16(addr)
		if !writable(a) {
			continue
		}
		v := uint8(a) ^ uint8(a>>8)
		b.Write(a, v)
		if got := b.Read(a); got != v {
			t.Fatalf("0x%04X: expected 0x%02X, got 0x%02X", a, v, got)
		}
	}
}

func TestBus_Echo(t *testing.T) {
	b := newTestBus(t)

	b.Write(0xC010, 0x42)
	if got := b.Read(0xE010); got != 0x42 {
		t.Errorf("expected echo of 0xC010 to be 0x42, got 0x%02X", got)
	}

	b.Write(0xFDFF, 0x24)
	if got := b.Read(0xDDFF); got != 0x24 {
		t.Errorf("expected 0xDDFF to alias 0xFDFF, got 0x%02X", got)
	}
}

func TestBus_Unmapped(t *testing.T) {
	b := newTestBus(t)

	for _, addr := range []uint16{0xFE00, 0xFE9F, 0xFEA0, 0xFEFF} {
		if _, err := b.Peek(addr); err == nil {
			t.Errorf("0x%04X: expected read error", addr)
		}
		var addrErr *AddressError
		if err := b.Poke(addr, 0); !errors.As(err, &addrErr) || addrErr.Addr != addr {
			t.Errorf("0x%04X: expected *AddressError, got %v", addr, err)
		}
	}

	t.Run("panics", func(t *testing.T) {
		defer func() {
			r := recover()
			err, ok := r.(*AddressError)
			if !ok {
				t.Fatalf("expected *AddressError panic, got %v", r)
			}
			if err.Addr != 0xFE00 || err.Op != OpRead {
				t.Errorf("expected read of 0xFE00, got %s of 0x%04X", err.Op, err.Addr)
			}
		}()
		b.Read(0xFE00)
	})
}

func TestBus_Cartridge(t *testing.T) {
	b := newTestBus(t)
	if got := b.Read(0x0147); got != 0x47 {
		t.Errorf("expected cartridge offset to equal address, got 0x%02X", got)
	}

	// writes are discarded
	b.Write(0x2000, 0x01)
	if got := b.Read(0x2000); got != 0x00 {
		t.Errorf("expected rom write to be discarded, got 0x%02X", got)
	}

	short := NewBus(cartridge.NewCartridge(make([]byte, 0x200)))
	if _, err := short.Peek(0x0200); err == nil {
		t.Errorf("expected read past cartridge length to fail")
	}
	if _, err := short.Peek(0x01FF); err != nil {
		t.Errorf("expected last cartridge byte to be readable, got %v", err)
	}
}

func TestBus_BootROM(t *testing.T) {
	b := newTestBus(t, WithBootROM(newTestBootROM(t)))
	if !b.BootROMMapped() {
		t.Fatalf("expected boot rom to be mapped")
	}
	if got := b.Read(0x0010); got != 0xB0 {
		t.Errorf("expected boot rom byte 0xB0, got 0x%02X", got)
	}
	if got := b.Read(0x0100); got != 0x00 {
		t.Errorf("expected cartridge at 0x0100, got 0x%02X", got)
	}
	if err := b.Poke(0x0010, 0x00); err == nil {
		t.Errorf("expected write to mapped boot rom to fail")
	}

	b.DisableBootROM()
	if b.BootROMMapped() {
		t.Errorf("expected boot rom to be unmapped")
	}
	if got := b.Read(0x0010); got != 0x10 {
		t.Errorf("expected cartridge byte 0x10, got 0x%02X", got)
	}
}

func TestBus_BootDisableRegister(t *testing.T) {
	b := newTestBus(t, WithBootROM(newTestBootROM(t)), WithBootDisableRegister(types.BDIS))
	b.Write(types.BDIS, 0x01)
	if b.BootROMMapped() {
		t.Errorf("expected write to 0x%04X to unmap boot rom", types.BDIS)
	}

	// not chosen by default
	b = newTestBus(t, WithBootROM(newTestBootROM(t)))
	b.Write(types.BDIS, 0x01)
	if !b.BootROMMapped() {
		t.Errorf("expected boot rom to stay mapped without a disable register")
	}
}

func TestBus_ReserveAddress(t *testing.T) {
	b := newTestBus(t)
	b.ReserveAddress(types.P1, func(v uint8) uint8 {
		return v&0x30 | 0xCF
	})
	b.Write(types.P1, 0x10)
	if got := b.Read(types.P1); got != 0xDF {
		t.Errorf("expected handler result 0xDF, got 0x%02X", got)
	}

	defer func() {
		if recover() == nil {
			t.Errorf("expected second reservation to panic")
		}
	}()
	b.ReserveAddress(types.P1, func(v uint8) uint8 { return v })
}

func TestBus_ReadRange(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x8000, 0x11)
	b.Write(0x8001, 0x22)

	got, err := b.ReadRange(0x8000, 0x8002)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != 0x11 || got[1] != 0x22 {
		t.Fatalf("expected [11 22], got % X", got)
	}

	// the result is a copy
	got[0] = 0xFF
	if b.Read(0x8000) != 0x11 {
		t.Errorf("expected ReadRange to return a copy")
	}

	if _, err := b.ReadRange(0xFDF0, 0xFE10); err == nil {
		t.Errorf("expected range spanning OAM to fail")
	}
	if _, err := b.ReadRange(0x9000, 0x8000); err == nil {
		t.Errorf("expected inverted range to fail")
	}
}

func TestBus_State(t *testing.T) {
	b := newTestBus(t)
	b.Write(0x8123, 0x01)
	b.Write(0xC456, 0x02)
	b.Write(0xFF90, 0x03)
	b.Write(types.IE, 0x1F)

	s := types.NewState()
	b.Save(s)

	restored := newTestBus(t)
	restored.Load(types.StateFromBytes(s.Bytes()))
	for _, addr := range []uint16{0x8123, 0xC456, 0xFF90, types.IE} {
		if restored.Read(addr) != b.Read(addr) {
			t.Errorf("0x%04X: expected 0x%02X, got 0x%02X", addr, b.Read(addr), restored.Read(addr))
		}
	}
}

// TestBus_Concurrent checks that a reader holding a view never sees
// a half-applied pair of writes. Run with -race.
func TestBus_Concurrent(t *testing.T) {
	b := newTestBus(t)
	var wg sync.WaitGroup
	done := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			b.Write(0x8000, uint8(i))
			b.Write(0x8001, uint8(i))
		}
		close(done)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				_ = b.View(func(v View) error {
					first, _ := v.Read(0x8000)
					second, _ := v.Read(0x8001)
					if first != second && first != second+1 {
						t.Errorf("inconsistent view: 0x%02X 0x%02X", first, second)
					}
					return nil
				})
			}
		}()
	}
	wg.Wait()
}
