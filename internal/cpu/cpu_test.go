package cpu

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/thelolagemann/dmgcore/internal/interrupts"
	"github.com/thelolagemann/dmgcore/internal/mmu"
	"github.com/thelolagemann/dmgcore/internal/types"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

func TestCPU_Reset(t *testing.T) {
	resetCPU()
	want := Snapshot{PC: 0x0100, SP: 0xFFFE, A: 0x01, F: 0xB0, C: 0x13, E: 0xD8, H: 0x01, L: 0x4D,
		Zero: true, HalfCarry: true, Carry: true}
	if got := cpu.Snapshot(); got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	cpu.Reset(true)
	if cpu.PC != 0x0000 {
		t.Errorf("expected PC 0x0000 with a boot rom, got 0x%04X", cpu.PC)
	}
}

func TestCPU_Step(t *testing.T) {
	resetCPU()
	// NOP; LD A, 0x42; JP 0xC000
	load(0xC000, 0x00, 0x3E, 0x42, 0xC3, 0x00, 0xC0)
	f := cpu.F

	steps := []struct {
		cycles uint32
		pc     uint16
	}{
		{4, 0xC001},
		{8, 0xC003},
		{16, 0xC000},
	}
	for i, step := range steps {
		cycles, err := cpu.Step()
		if err != nil {
			t.Fatal(err)
		}
		if cycles != step.cycles {
			t.Errorf("step %d: expected %d cycles, got %d", i, step.cycles, cycles)
		}
		if cpu.PC != step.pc {
			t.Errorf("step %d: expected PC 0x%04X, got 0x%04X", i, step.pc, cpu.PC)
		}
	}
	if cpu.A != 0x42 {
		t.Errorf("expected A 0x42, got 0x%02X", cpu.A)
	}
	if cpu.F != f {
		t.Errorf("expected flags to be unchanged, got 0x%02X", cpu.F)
	}
	if cpu.Operations() != 3 {
		t.Errorf("expected 3 operations, got %d", cpu.Operations())
	}
}

func TestCPU_StepConditional(t *testing.T) {
	resetCPU()
	// JR NZ, +2 with Z set then clear
	load(0xC000, 0x20, 0x02)
	cpu.setFlag(FlagZero)
	if cycles, _ := cpu.Step(); cycles != 8 || cpu.PC != 0xC002 {
		t.Errorf("expected untaken branch in 8 cycles, got %d cycles at 0x%04X", cycles, cpu.PC)
	}
	cpu.PC = 0xC000
	cpu.clearFlag(FlagZero)
	if cycles, _ := cpu.Step(); cycles != 12 || cpu.PC != 0xC004 {
		t.Errorf("expected taken branch in 12 cycles, got %d cycles at 0x%04X", cycles, cpu.PC)
	}
}

func TestCPU_CallRet(t *testing.T) {
	resetCPU()
	// CALL 0xC010 ... 0xC010: RET
	load(0xC010, 0xC9)
	load(0xC000, 0xCD, 0x10, 0xC0)

	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}
	if cpu.PC != 0xC010 || cpu.SP != 0xFFFC {
		t.Errorf("expected PC 0xC010 and SP 0xFFFC, got 0x%04X and 0x%04X", cpu.PC, cpu.SP)
	}
	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}
	if cpu.PC != 0xC003 || cpu.SP != 0xFFFE {
		t.Errorf("expected PC 0xC003 and SP 0xFFFE, got 0x%04X and 0x%04X", cpu.PC, cpu.SP)
	}
}

func TestCPU_PushPop(t *testing.T) {
	resetCPU()
	for _, v := range []uint16{0x0000, 0x1234, 0xFFFF, 0xBEEF} {
		cpu.Push(v)
		if got := cpu.Pop(); got != v {
			t.Errorf("expected 0x%04X, got 0x%04X", v, got)
		}
	}
	if cpu.SP != 0xFFFE {
		t.Errorf("expected SP to be restored, got 0x%04X", cpu.SP)
	}
}

func TestCPU_UnknownOpcode(t *testing.T) {
	for _, opcode := range illegalOpcodes {
		resetCPU()
		load(0xC000, opcode)
		_, err := cpu.Step()

		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Fatalf("0x%02X: expected *DecodeError, got %v", opcode, err)
		}
		if decodeErr.PC != 0xC000 || decodeErr.Key.Opcode != opcode || decodeErr.Key.Prefixed {
			t.Errorf("0x%02X: expected key %02X at 0xC000, got %s at 0x%04X", opcode, opcode, decodeErr.Key, decodeErr.PC)
		}
		if decodeErr.Dump == nil || len(decodeErr.Dump.Rows) != CrashDumpDepth {
			t.Errorf("0x%02X: expected a crash dump", opcode)
		}
		if cpu.PC != 0xC000 {
			t.Errorf("0x%02X: expected PC to stay at the opcode, got 0x%04X", opcode, cpu.PC)
		}
	}
}

func TestCPU_Fault(t *testing.T) {
	resetCPU()
	// LD A, (0xFE00)
	load(0xC000, 0xFA, 0x00, 0xFE)
	_, err := cpu.Step()

	var fault *FaultError
	if !errors.As(err, &fault) {
		t.Fatalf("expected *FaultError, got %v", err)
	}
	var addrErr *mmu.AddressError
	if !errors.As(err, &addrErr) || addrErr.Addr != 0xFE00 {
		t.Errorf("expected wrapped *mmu.AddressError for 0xFE00, got %v", err)
	}
	if fault.PC != 0xC000 {
		t.Errorf("expected fault at 0xC000, got 0x%04X", fault.PC)
	}
}

func TestCPU_Interrupts(t *testing.T) {
	resetCPU()
	// EI; NOP; NOP
	load(0xC000, 0xFB, 0x00, 0x00)
	bus.Write(types.IE, interrupts.VBlankFlag)
	bus.Write(types.IF, interrupts.VBlankFlag)

	// EI
	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}
	// the instruction after EI runs before any dispatch
	if cycles, _ := cpu.Step(); cycles != 4 || cpu.PC != 0xC002 {
		t.Fatalf("expected NOP after EI to execute, got %d cycles at 0x%04X", cycles, cpu.PC)
	}
	// dispatch, then the handler's first instruction (NOP from the blank cart)
	cycles, err := cpu.Step()
	if err != nil {
		t.Fatal(err)
	}
	if cycles != InterruptCycles+4 {
		t.Errorf("expected %d cycles, got %d", InterruptCycles+4, cycles)
	}
	if cpu.PC != 0x0041 {
		t.Errorf("expected PC 0x0041, got 0x%04X", cpu.PC)
	}
	if cpu.Pop() != 0xC002 {
		t.Errorf("expected 0xC002 to be pushed")
	}
	if cpu.irq.IME() {
		t.Errorf("expected IME to be cleared")
	}
	if bus.Read(types.IF)&interrupts.VBlankFlag != 0 {
		t.Errorf("expected IF bit to be acknowledged")
	}
}

func TestCPU_Halt(t *testing.T) {
	resetCPU()
	// HALT; NOP
	load(0xC000, 0x76, 0x00)
	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if cycles, _ := cpu.Step(); cycles != 4 || cpu.PC != 0xC001 {
			t.Errorf("expected halted step of 4 cycles at 0xC001, got %d at 0x%04X", cycles, cpu.PC)
		}
	}

	// wake without IME: execution continues after HALT
	bus.Write(types.IE, interrupts.LCDFlag)
	bus.Write(types.IF, interrupts.LCDFlag)
	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}
	if cpu.Mode() != ModeNormal || cpu.PC != 0xC002 {
		t.Errorf("expected to wake and execute NOP, got %s at 0x%04X", cpu.Mode(), cpu.PC)
	}
}

func TestCPU_Trace(t *testing.T) {
	var buf bytes.Buffer
	resetCPU(WithLogger(log.NewWithLevel("debug", &buf)), WithTrace(true))
	load(0xC000, 0x3E, 0x42)
	if _, err := cpu.Step(); err != nil {
		t.Fatal(err)
	}
	if out := buf.String(); !strings.Contains(out, "[0xC000]") || !strings.Contains(out, "LD A, n") {
		t.Errorf("expected trace of LD A, n at 0xC000, got %q", out)
	}
}

func TestCPU_Dump(t *testing.T) {
	resetCPU(WithDumpDepth(4))
	cpu.PC = 0xFDFE
	d := cpu.Dump(0)
	if len(d.Rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(d.Rows))
	}
	if d.Rows[1].StackAddr != 0xFFFE || d.Rows[1].VRAMAddr != 0x9FFE {
		t.Errorf("expected row 0xFFFE/0x9FFE, got 0x%04X/0x%04X", d.Rows[1].StackAddr, d.Rows[1].VRAMAddr)
	}
	if !d.Code[1].Mapped || d.Code[2].Mapped {
		t.Errorf("expected 0xFDFF mapped and 0xFE00 unmapped")
	}

	out := d.String()
	for _, want := range []string{"pc: FDFE [00 00 -- --]", "sp: FFFE", "zero: true", ">   0xFFFE"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected dump to contain %q, got\n%s", want, out)
		}
	}
}

func TestCPU_State(t *testing.T) {
	resetCPU()
	cpu.PC, cpu.SP = 0x1234, 0xD000
	cpu.BC.SetUint16(0xBEEF)
	s := types.NewState()
	cpu.Save(s)

	resetCPU()
	cpu.Load(types.StateFromBytes(s.Bytes()))
	if cpu.PC != 0x1234 || cpu.SP != 0xD000 || cpu.BC.Uint16() != 0xBEEF || cpu.F != 0xB0 {
		t.Errorf("expected state to be restored, got %+v", cpu.Snapshot())
	}
}
