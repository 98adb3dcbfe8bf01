// Package gameboy wires the components of a DMG Game Boy together
// and drives them.
package gameboy

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/thelolagemann/dmgcore/internal/boot"
	"github.com/thelolagemann/dmgcore/internal/cartridge"
	"github.com/thelolagemann/dmgcore/internal/cpu"
	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/mmu"
	"github.com/thelolagemann/dmgcore/internal/ppu"
	"github.com/thelolagemann/dmgcore/internal/timer"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

const (
	// ClockSpeed is the clock speed of the Game Boy.
	ClockSpeed = cpu.ClockSpeed
	// CyclesPerFrame is the number of clock cycles per frame.
	CyclesPerFrame = ppu.CyclesPerFrame
	// FrameRate is the number of frames per second at normal speed.
	FrameRate = float64(ClockSpeed) / CyclesPerFrame
)

// GameBoy represents a Game Boy. It owns every component and is the
// main entry point for hosts.
type GameBoy struct {
	cfg Config
	log log.Logger

	cart *cartridge.Cartridge
	boot *boot.ROM
	bus  *mmu.Bus
	irq  *interrupts.Service
	cpu  *cpu.CPU
	ppu  *ppu.PPU
	tmr  *timer.Controller

	scanline     ppu.ScanlineFunc
	frameHooks   []func(frame uint64)
	pendingState []byte

	cycles  uint64
	stopped atomic.Bool
}

// NewGameBoy returns a GameBoy running rom. bootROM may be empty, in
// which case execution starts at the cartridge entry point with the
// registers the boot ROM would have left behind.
func NewGameBoy(bootROM, rom []byte, opts ...Opt) (*GameBoy, error) {
	g := &GameBoy{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(g)
	}
	if err := g.cfg.Validate(); err != nil {
		return nil, err
	}
	if g.log == nil {
		g.log = log.NewWithLevel(g.cfg.Verbosity, os.Stderr)
	}

	busOpts := []mmu.BusOpt{mmu.WithLogger(g.log)}
	if len(bootROM) > 0 {
		b, err := boot.LoadBootROM(bootROM)
		if err != nil {
			return nil, err
		}
		g.boot = b
		busOpts = append(busOpts, mmu.WithBootROM(b))
		g.log.Infof("loaded boot ROM (%s, md5 %s)", b.Model(), b.Checksum())
	}
	if g.cfg.BootDisableRegister != 0 {
		busOpts = append(busOpts, mmu.WithBootDisableRegister(g.cfg.BootDisableRegister))
	}

	g.cart = cartridge.NewCartridge(rom)
	if !g.cart.Valid() {
		g.log.Warnf("cartridge header checksum mismatch: %s", g.cart)
	} else {
		g.log.Infof("loaded cartridge %s", g.cart)
	}

	g.bus = mmu.NewBus(g.cart, busOpts...)
	// no buttons are ever pressed; the selection bits are kept
	g.bus.ReserveAddress(types.P1, func(v uint8) uint8 {
		return 0xC0 | v&0x30 | 0x0F
	})

	g.irq = interrupts.NewService(g.bus)
	g.tmr = timer.NewController(g.bus, g.irq)
	g.cpu = cpu.NewCPU(g.bus, g.irq,
		cpu.WithLogger(g.log),
		cpu.WithTrace(g.cfg.TraceInstructions),
		cpu.WithDumpDepth(g.cfg.StackDumpDepth),
	)
	ppuOpts := []ppu.Opt{ppu.WithLogger(g.log)}
	if g.scanline != nil {
		ppuOpts = append(ppuOpts, ppu.WithScanlineFunc(g.scanline))
	}
	g.ppu = ppu.New(g.bus, g.irq, ppuOpts...)

	g.reset()

	if g.pendingState != nil {
		if err := g.LoadState(g.pendingState); err != nil {
			return nil, err
		}
		g.pendingState = nil
	}

	return g, nil
}

// reset puts the machine in its power-on state. Without a boot ROM the
// I/O registers it would have programmed are written directly.
func (g *GameBoy) reset() {
	g.cpu.Reset(g.boot != nil)
	g.bus.Write(types.P1, 0x30)
	if g.boot == nil {
		g.bus.Write(types.LCDC, 0x91)
		g.bus.Write(types.BGP, 0xFC)
	}
	g.cycles = 0
}

// Step executes a single instruction, or an idle step while halted,
// and advances the timer and the video controller by the cycles it
// took. Any error is a *CrashError and emulation must stop.
func (g *GameBoy) Step() (uint32, error) {
	cycles, err := g.cpu.Step()
	if err != nil {
		return cycles, g.crash(err)
	}
	g.tmr.Tick(cycles)
	g.ppu.Advance(cycles)
	g.cycles += uint64(cycles)
	return cycles, nil
}

// Frame steps the emulation until the video controller has finished a
// frame. With the display off it returns after a frame's worth of
// cycles instead. Frame returns early, without error, once Stop has
// been called.
func (g *GameBoy) Frame() error {
	g.ppu.ClearFrame()
	var elapsed uint32
	for !g.ppu.FrameReady() {
		if g.stopped.Load() {
			return nil
		}
		c, err := g.Step()
		if err != nil {
			return err
		}
		elapsed += c
		if !g.ppu.Enabled() && elapsed >= CyclesPerFrame {
			break
		}
	}
	return nil
}

// Run steps frames until ctx is cancelled, Stop is called or the
// emulation crashes. Frames are paced to FrameRate scaled by
// Config.Speed.
func (g *GameBoy) Run(ctx context.Context) error {
	fired := make(chan struct{})
	release := context.AfterFunc(ctx, func() {
		g.Stop()
		close(fired)
	})
	defer func() {
		if !release() {
			<-fired
		}
		g.stopped.Store(false)
	}()

	var tick <-chan time.Time
	if g.cfg.Speed > 0 {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / (FrameRate * g.cfg.Speed)))
		defer ticker.Stop()
		tick = ticker.C
	}

	g.log.Debugf("running at %.2fx", g.cfg.Speed)
	for {
		if err := g.Frame(); err != nil {
			return err
		}
		if g.stopped.Load() {
			return ctx.Err()
		}
		frame := g.ppu.Frames()
		for _, hook := range g.frameHooks {
			hook(frame)
		}
		if tick != nil {
			select {
			case <-tick:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

// Stop requests the stepping loop to return at the next instruction
// boundary. It is safe to call from any goroutine. A Stop issued
// before Run makes Run return immediately; the request is cleared
// when Run returns.
func (g *GameBoy) Stop() {
	g.stopped.Store(true)
}

// DisableBootROM unmaps the boot ROM.
func (g *GameBoy) DisableBootROM() {
	g.bus.DisableBootROM()
}

// Bus returns the memory bus.
func (g *GameBoy) Bus() *mmu.Bus { return g.bus }

// CPU returns the processor.
func (g *GameBoy) CPU() *cpu.CPU { return g.cpu }

// PPU returns the video controller.
func (g *GameBoy) PPU() *ppu.PPU { return g.ppu }

// Timer returns the timer controller.
func (g *GameBoy) Timer() *timer.Controller { return g.tmr }

// Interrupts returns the interrupt service.
func (g *GameBoy) Interrupts() *interrupts.Service { return g.irq }

// Cartridge returns the loaded cartridge.
func (g *GameBoy) Cartridge() *cartridge.Cartridge { return g.cart }

// Config returns the configuration the GameBoy was built with.
func (g *GameBoy) Config() Config { return g.cfg }

// Cycles returns the number of clock cycles emulated since reset.
func (g *GameBoy) Cycles() uint64 { return g.cycles }
