package gameboy

import (
	"fmt"
	"strings"

	"github.com/thelolagemann/dmgcore/internal/cpu"
	"github.com/thelolagemann/dmgcore/internal/types"
)

// Renderers a host can pair with the core.
const (
	RendererNone = "none"
	RendererWeb  = "web"
)

// Config holds everything a host decides about a GameBoy before it
// is constructed. Nothing is read from the environment.
type Config struct {
	// Verbosity is the log level: error, warn, info, debug or trace.
	Verbosity string
	// Renderer selects the presentation layer the host attaches.
	Renderer string
	// TraceInstructions logs every executed instruction at debug
	// level.
	TraceInstructions bool
	// BootDisableRegister is the I/O register whose writes unmap the
	// boot ROM. Zero leaves unmapping to GameBoy.DisableBootROM.
	BootDisableRegister uint16
	// StackDumpDepth is the number of stack rows in diagnostic
	// dumps that are not crashes.
	StackDumpDepth int
	// Speed scales the frame rate Run paces to. Zero runs
	// unthrottled.
	Speed float64
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		Verbosity:      "info",
		Renderer:       RendererNone,
		StackDumpDepth: cpu.DefaultDumpDepth,
		Speed:          1,
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	switch strings.ToLower(c.Verbosity) {
	case "error", "warn", "warning", "info", "debug", "trace":
	default:
		return fmt.Errorf("gameboy: unknown verbosity %q", c.Verbosity)
	}
	switch c.Renderer {
	case RendererNone, RendererWeb:
	default:
		return fmt.Errorf("gameboy: unknown renderer %q", c.Renderer)
	}
	if c.BootDisableRegister != 0 && (c.BootDisableRegister < types.P1 || c.BootDisableRegister > types.IOEnd) {
		return fmt.Errorf("gameboy: boot disable register 0x%04X is not an I/O register", c.BootDisableRegister)
	}
	switch c.BootDisableRegister {
	case types.P1, types.DIV, types.TIMA, types.TMA, types.TAC:
		return fmt.Errorf("gameboy: boot disable register 0x%04X is already in use", c.BootDisableRegister)
	}
	if c.StackDumpDepth < 0 || c.StackDumpDepth > 0x100 {
		return fmt.Errorf("gameboy: stack dump depth %d out of range", c.StackDumpDepth)
	}
	if c.Speed < 0 {
		return fmt.Errorf("gameboy: negative speed %v", c.Speed)
	}
	return nil
}
