package gameboy

import (
	"github.com/thelolagemann/dmgcore/internal/ppu"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

// Opt is a function that modifies a GameBoy instance before its
// components are built.
type Opt func(gb *GameBoy)

// WithConfig replaces the default configuration.
func WithConfig(cfg Config) Opt {
	return func(gb *GameBoy) {
		gb.cfg = cfg
	}
}

// WithLogger sets the logger for every component. Without it a
// logger is created at Config.Verbosity.
func WithLogger(l log.Logger) Opt {
	return func(gb *GameBoy) {
		gb.log = l
	}
}

// WithState restores a state produced by SaveState once the
// components are built.
func WithState(b []byte) Opt {
	return func(gb *GameBoy) {
		gb.pendingState = b
	}
}

// WithScanlineHook is called at the end of every visible line.
func WithScanlineHook(fn ppu.ScanlineFunc) Opt {
	return func(gb *GameBoy) {
		gb.scanline = fn
	}
}

// WithFrameHook is called by Run after every completed frame.
func WithFrameHook(fn func(frame uint64)) Opt {
	return func(gb *GameBoy) {
		gb.frameHooks = append(gb.frameHooks, fn)
	}
}
