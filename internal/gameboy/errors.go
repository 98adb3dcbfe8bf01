package gameboy

import (
	"errors"
	"fmt"

	"github.com/thelolagemann/dmgcore/internal/cpu"
)

// CrashError is returned when emulation cannot continue. It carries
// the CPU dump taken at the point of failure.
type CrashError struct {
	Err  error
	Dump *cpu.Dump
}

func (e *CrashError) Error() string {
	return fmt.Sprintf("gameboy: crashed: %v", e.Err)
}

func (e *CrashError) Unwrap() error {
	return e.Err
}

// crash wraps a fatal step error, reusing the dump the CPU attached
// to it when there is one.
func (g *GameBoy) crash(err error) *CrashError {
	c := &CrashError{Err: err}
	var decodeErr *cpu.DecodeError
	var faultErr *cpu.FaultError
	switch {
	case errors.As(err, &decodeErr):
		c.Dump = decodeErr.Dump
	case errors.As(err, &faultErr):
		c.Dump = faultErr.Dump
	default:
		c.Dump = g.cpu.Dump(cpu.CrashDumpDepth)
	}
	g.log.Errorf("%v", c)
	return c
}
