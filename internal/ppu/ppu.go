// Package ppu provides the video controller of the Game Boy: a
// scanline timing state machine driven by the cycles the CPU reports.
// Pixels are not produced here; presentation reads a Snapshot of the
// video memory and display registers instead.
package ppu

import (
	"sync/atomic"

	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/mmu"
	"github.com/thelolagemann/dmgcore/internal/ppu/lcd"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

const (
	// ScreenWidth is the width of the screen in pixels.
	ScreenWidth = 160
	// ScreenHeight is the height of the screen in pixels.
	ScreenHeight = 144

	// LinesPerFrame counts the visible lines and the 10 lines of
	// VBlank.
	LinesPerFrame = 154
	// CyclesPerLine is the length of every line, visible or not.
	CyclesPerLine = 456
	// CyclesPerFrame is the length of a full frame.
	CyclesPerFrame = CyclesPerLine * LinesPerFrame
)

const (
	// ModeHBlank (Mode 0) - Horizontal Blanking Period
	//
	// 	Duration 204 dots, the rest of the 456 dot line
	//	- STAT interrupt available if enabled via STAT.3
	ModeHBlank = lcd.HBlank

	// ModeVBlank (Mode 1) - Vertical Blanking Period
	//
	//	Duration 4560 dots (10 lines)
	//	- VBlank interrupt requested on entry
	//	- STAT interrupt available if enabled via STAT.4
	//	- Active during LY 144-153
	ModeVBlank = lcd.VBlank

	// ModeOAM (Mode 2) - OAM Scan
	//
	//	Duration: 80 dots (fixed)
	//	- STAT interrupt available if enabled via STAT.5
	//	- Occurs at start of each line
	ModeOAM = lcd.OAM

	// ModeVRAM (Mode 3) - Pixel Transfer
	//
	//	Duration: 172 dots
	//	- No STAT interrupts available
	//	- The line is handed to the ScanlineFunc when it ends
	ModeVRAM = lcd.VRAM
)

const (
	oamCycles    = 80
	vramCycles   = 172
	hblankCycles = CyclesPerLine - oamCycles - vramCycles
)

// Bus is the memory the video controller reads its registers from
// and reports LY and STAT to.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
	View(fn func(v mmu.View) error) error
}

// Requester requests interrupts.
type Requester interface {
	Request(flag uint8)
}

// ScanlineFunc is called at the end of pixel transfer for line ly.
type ScanlineFunc func(ly uint8)

// PPU implements the timing of the Game Boy's (P)ixel (P)rocessing
// (U)nit.
//
// References:
//   - [Pan Docs](https://gbdev.io/pandocs/Graphics.html)
//   - [Hacktix GBEDG](https://hacktix.github.io/GBEDG/ppu/)
type PPU struct {
	bus Bus
	irq Requester

	mode    lcd.Mode
	line    uint8
	clock   uint32
	enabled bool

	// read by renderers without the bus lock
	frameReady atomic.Bool
	frames     atomic.Uint64

	scanline ScanlineFunc
	log      log.Logger
}

// Opt configures a PPU.
type Opt func(p *PPU)

// WithScanlineFunc installs fn to be called at the end of every
// visible line.
func WithScanlineFunc(fn ScanlineFunc) Opt {
	return func(p *PPU) {
		p.scanline = fn
	}
}

// WithLogger sets the logger.
func WithLogger(l log.Logger) Opt {
	return func(p *PPU) {
		p.log = l
	}
}

// New returns a new PPU on line 0 in HBlank. The first Advance with
// the display enabled begins OAM scan.
func New(b Bus, irq Requester, opts ...Opt) *PPU {
	p := &PPU{
		bus:  b,
		irq:  irq,
		mode: ModeHBlank,
		log:  log.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Advance moves the state machine forward by cycles clock cycles,
// taking every transition they cover. It does nothing while the
// display is disabled (LCDC bit 7).
func (p *PPU) Advance(cycles uint32) {
	if !lcd.DecodeController(p.bus.Read(types.LCDC)).Enabled {
		if p.enabled {
			p.log.Debugf("ppu: display disabled on line %d", p.line)
			p.enabled = false
			p.line, p.clock = 0, 0
			p.writeLY()
			p.setMode(ModeHBlank)
		}
		return
	}
	if !p.enabled {
		p.log.Debugf("ppu: display enabled")
		p.enabled = true
		p.line, p.clock = 0, 0
		p.writeLY()
		p.setMode(ModeOAM)
	}

	p.clock += cycles
	for {
		switch p.mode {
		case ModeOAM:
			if p.clock < oamCycles {
				return
			}
			p.clock -= oamCycles
			p.setMode(ModeVRAM)
		case ModeVRAM:
			if p.clock < vramCycles {
				return
			}
			p.clock -= vramCycles
			p.setMode(ModeHBlank)
			if p.scanline != nil {
				p.scanline(p.line)
			}
		case ModeHBlank:
			if p.clock < hblankCycles {
				return
			}
			p.clock -= hblankCycles
			p.line++
			p.writeLY()
			if p.line == ScreenHeight {
				p.setMode(ModeVBlank)
				p.irq.Request(interrupts.VBlankFlag)
				p.frameReady.Store(true)
				p.frames.Add(1)
			} else {
				p.setMode(ModeOAM)
			}
		case ModeVBlank:
			if p.clock < CyclesPerLine {
				return
			}
			p.clock -= CyclesPerLine
			p.line++
			if p.line == LinesPerFrame {
				p.line = 0
				p.writeLY()
				p.setMode(ModeOAM)
			} else {
				p.writeLY()
			}
		}
	}
}

// setMode enters mode, reporting it in STAT and requesting the STAT
// interrupt when enabled for it.
func (p *PPU) setMode(mode lcd.Mode) {
	p.mode = mode
	status := lcd.DecodeStatus(p.bus.Read(types.STAT))
	status.Mode = mode
	p.bus.Write(types.STAT, status.Value())
	if p.enabled && status.InterruptOn(mode) {
		p.irq.Request(interrupts.LCDFlag)
	}
}

// writeLY reports the current line in LY and updates the LY=LYC
// coincidence flag.
func (p *PPU) writeLY() {
	p.bus.Write(types.LY, p.line)
	status := lcd.DecodeStatus(p.bus.Read(types.STAT))
	status.Coincidence = p.line == p.bus.Read(types.LYC)
	p.bus.Write(types.STAT, status.Value())
	if p.enabled && status.Coincidence && status.CoincidenceInterrupt {
		p.irq.Request(interrupts.LCDFlag)
	}
}

// Mode returns the current mode.
func (p *PPU) Mode() lcd.Mode {
	return p.mode
}

// Line returns the current line (LY).
func (p *PPU) Line() uint8 {
	return p.line
}

// ModeClock returns the cycles elapsed in the current mode (or, in
// VBlank, the current line).
func (p *PPU) ModeClock() uint32 {
	return p.clock
}

// Enabled reports whether the display was enabled at the last
// Advance.
func (p *PPU) Enabled() bool {
	return p.enabled
}

// FrameReady reports whether VBlank has been entered since the last
// ClearFrame.
func (p *PPU) FrameReady() bool {
	return p.frameReady.Load()
}

// ClearFrame acknowledges a finished frame.
func (p *PPU) ClearFrame() {
	p.frameReady.Store(false)
}

// Frames returns the number of frames completed.
func (p *PPU) Frames() uint64 {
	return p.frames.Load()
}

var _ types.Stater = (*PPU)(nil)

// Load implements the types.Stater interface.
func (p *PPU) Load(s *types.State) {
	p.mode = lcd.Mode(s.Read8() & 0x03)
	p.line = s.Read8()
	p.clock = s.Read32()
	p.enabled = s.ReadBool()
	p.frameReady.Store(s.ReadBool())
	p.frames.Store(s.Read64())
}

// Save implements the types.Stater interface.
func (p *PPU) Save(s *types.State) {
	s.Write8(uint8(p.mode))
	s.Write8(p.line)
	s.Write32(p.clock)
	s.WriteBool(p.enabled)
	s.WriteBool(p.frameReady.Load())
	s.Write64(p.frames.Load())
}
