package debugger

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/thelolagemann/dmgcore/internal/cpu"
)

type fakeCPU struct {
	snap  cpu.Snapshot
	depth int
}

func (f *fakeCPU) Snapshot() cpu.Snapshot { return f.snap }

func (f *fakeCPU) Dump(depth int) *cpu.Dump {
	f.depth = depth
	return &cpu.Dump{Snapshot: f.snap}
}

type fakeMemory map[uint16]uint8

func (m fakeMemory) Peek(addr uint16) (uint8, error) {
	v, ok := m[addr]
	if !ok {
		return 0, errors.New("unmapped")
	}
	return v, nil
}

func newTestDebugger() (*Debugger, *fakeCPU) {
	c := &fakeCPU{snap: cpu.Snapshot{PC: 0x0150, SP: 0xFFFE, A: 0x01, F: 0xB0, Zero: true, Carry: true}}
	m := fakeMemory{0xC000: 0xAB, 0xC001: 0xCD}
	return New(c, m, errors.New("cpu: unknown opcode 0xD3 at 0x0150")), c
}

func TestDebugger_Registers(t *testing.T) {
	d, _ := newTestDebugger()
	out, quit := d.Execute("regs")
	if quit {
		t.Errorf("expected not to quit")
	}
	for _, want := range []string{"AF: 01B0", "PC: 0150", "SP: FFFE", "Z: 1", "N: 0", "C: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
}

func TestDebugger_Memory(t *testing.T) {
	d, _ := newTestDebugger()
	out, _ := d.Execute("mem c000 4")
	if out != "C000: AB CD -- --\n" {
		t.Errorf("expected %q, got %q", "C000: AB CD -- --\n", out)
	}

	out, _ = d.Execute("x 0xFFFE 0x20")
	if out != "FFFE: -- --\n" {
		t.Errorf("expected the range to stop at 0xFFFF, got %q", out)
	}

	out, _ = d.Execute("mem C000 17")
	if lines := strings.Count(out, "\n"); lines != 2 {
		t.Errorf("expected 2 rows, got %d in %q", lines, out)
	}

	for _, bad := range []string{"mem", "mem zz", "mem C000 0"} {
		if out, _ := d.Execute(bad); !strings.Contains(out, "usage") && !strings.Contains(out, "invalid") {
			t.Errorf("%s: expected an error message, got %q", bad, out)
		}
	}
}

func TestDebugger_Commands(t *testing.T) {
	d, c := newTestDebugger()

	if out, _ := d.Execute("dump 4"); !strings.Contains(out, "pc: 0150") {
		t.Errorf("expected a dump, got %q", out)
	}
	if c.depth != 4 {
		t.Errorf("expected depth 4, got %d", c.depth)
	}
	if out, _ := d.Execute("cause"); !strings.Contains(out, "unknown opcode") {
		t.Errorf("expected the cause, got %q", out)
	}
	if out, _ := d.Execute("frobnicate"); !strings.Contains(out, "unknown command") {
		t.Errorf("expected an unknown command message, got %q", out)
	}
	if out, quit := d.Execute("   "); out != "" || quit {
		t.Errorf("expected nothing for a blank line, got %q", out)
	}
	if _, quit := d.Execute("quit"); !quit {
		t.Errorf("expected to quit")
	}
}

func TestDebugger_Run(t *testing.T) {
	d, _ := newTestDebugger()
	var out bytes.Buffer
	rw := struct {
		io.Reader
		io.Writer
	}{strings.NewReader("regs\rquit\rregs\r"), &out}

	if err := d.Run(rw); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(out.String(), "stopped: cpu: unknown opcode") {
		t.Errorf("expected the cause to be printed, got %q", out.String())
	}
	if strings.Count(out.String(), "AF: 01B0") != 1 {
		t.Errorf("expected registers once, got %q", out.String())
	}

	out.Reset()
	rw.Reader = strings.NewReader("regs\r")
	if err := d.Run(rw); err != nil {
		t.Errorf("expected no error at end of input, got %v", err)
	}
}
