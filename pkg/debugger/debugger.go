// Package debugger is a line based prompt for inspecting a machine
// that has stopped, usually after a crash.
package debugger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/thelolagemann/dmgcore/internal/cpu"
	"golang.org/x/term"
)

// Prompt is printed before every command.
const Prompt = "(dmg) "

// CPU is the processor being inspected.
type CPU interface {
	Snapshot() cpu.Snapshot
	Dump(depth int) *cpu.Dump
}

// Memory is the bus being inspected. Unmapped addresses report an
// error rather than aborting.
type Memory interface {
	Peek(addr uint16) (uint8, error)
}

// Debugger executes inspection commands. It never modifies the
// machine.
type Debugger struct {
	cpu   CPU
	mem   Memory
	cause error
}

// New returns a debugger for c and m. cause, when not nil, is the
// error that stopped the machine.
func New(c CPU, m Memory, cause error) *Debugger {
	return &Debugger{cpu: c, mem: m, cause: cause}
}

const help = `commands:
  regs              print registers and flags
  dump [depth]      print the diagnostic dump
  mem addr [count]  print memory starting at addr (hex)
  cause             print the error that stopped the machine
  help              print this message
  quit              leave the debugger
`

// Execute runs a single command and returns its output. quit is true
// once the user asked to leave.
func (d *Debugger) Execute(line string) (out string, quit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}

	switch fields[0] {
	case "regs", "r":
		return d.registers(), false
	case "dump", "d":
		depth := 0
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				return fmt.Sprintf("invalid depth %q\n", fields[1]), false
			}
			depth = n
		}
		return d.cpu.Dump(depth).String(), false
	case "mem", "x":
		return d.memory(fields[1:]), false
	case "cause":
		if d.cause == nil {
			return "no error\n", false
		}
		return d.cause.Error() + "\n", false
	case "help", "h", "?":
		return help, false
	case "quit", "q", "exit":
		return "", true
	default:
		return fmt.Sprintf("unknown command %q, try help\n", fields[0]), false
	}
}

func (d *Debugger) registers() string {
	s := d.cpu.Snapshot()
	var b strings.Builder
	fmt.Fprintf(&b, "AF: %02X%02X  BC: %02X%02X  DE: %02X%02X  HL: %02X%02X\n", s.A, s.F, s.B, s.C, s.D, s.E, s.H, s.L)
	fmt.Fprintf(&b, "PC: %04X  SP: %04X  IME: %t  mode: %s\n", s.PC, s.SP, s.IME, s.Mode)
	fmt.Fprintf(&b, "Z: %s  N: %s  H: %s  C: %s\n", flag(s.Zero), flag(s.Subtract), flag(s.HalfCarry), flag(s.Carry))
	return b.String()
}

func flag(set bool) string {
	if set {
		return "1"
	}
	return "0"
}

// memory prints count bytes from addr, 16 to a row.
func (d *Debugger) memory(args []string) string {
	if len(args) == 0 {
		return "usage: mem addr [count]\n"
	}
	addr, err := strconv.ParseUint(strings.TrimPrefix(strings.ToLower(args[0]), "0x"), 16, 16)
	if err != nil {
		return fmt.Sprintf("invalid address %q\n", args[0])
	}
	count := uint64(16)
	if len(args) > 1 {
		if count, err = strconv.ParseUint(args[1], 0, 16); err != nil || count == 0 {
			return fmt.Sprintf("invalid count %q\n", args[1])
		}
	}
	if end := addr + count; end > 0x10000 {
		count = 0x10000 - addr
	}

	var b strings.Builder
	for i := uint64(0); i < count; i++ {
		a := uint16(addr + i)
		if i%16 == 0 {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%04X:", a)
		}
		if v, err := d.mem.Peek(a); err != nil {
			b.WriteString(" --")
		} else {
			fmt.Fprintf(&b, " %02X", v)
		}
	}
	b.WriteByte('\n')
	return b.String()
}

// Run reads commands from rw until quit or end of input.
func (d *Debugger) Run(rw io.ReadWriter) error {
	t := term.NewTerminal(rw, Prompt)
	if d.cause != nil {
		fmt.Fprintf(t, "stopped: %v\ntype help for commands\n", d.cause)
	}
	for {
		line, err := t.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		out, quit := d.Execute(line)
		if quit {
			return nil
		}
		if _, err := t.Write([]byte(out)); err != nil {
			return err
		}
	}
}

// ErrNotTerminal is returned by Interactive when stdin is not a
// terminal.
var ErrNotTerminal = errors.New("debugger: stdin is not a terminal")

// Interactive runs the debugger on the process's terminal, in raw
// mode for the duration of the session.
func (d *Debugger) Interactive() error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return ErrNotTerminal
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("debugger: failed to set raw mode: %w", err)
	}
	defer term.Restore(fd, oldState)

	return d.Run(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout})
}
