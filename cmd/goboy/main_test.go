package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/thelolagemann/dmgcore/internal/cartridge"
)

func writeROM(t *testing.T, program ...byte) string {
	t.Helper()
	rom := make([]byte, 0x8000)
	copy(rom[0x100:], []byte{0x00, 0xC3, 0x50, 0x01})
	copy(rom[0x134:], "GOBOY")
	rom[0x14D] = cartridge.HeaderChecksum(rom)
	copy(rom[0x150:], program)

	path := filepath.Join(t.TempDir(), "test.gb")
	if err := os.WriteFile(path, rom, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	rom := writeROM(t, 0x18, 0xFE)
	shot := filepath.Join(dir, "shot.bmp")
	plot := filepath.Join(dir, "plot.png")
	state := filepath.Join(dir, "test.state")

	var stderr bytes.Buffer
	status := run([]string{
		"-rom", rom, "-v", "error", "-speed", "0", "-frames", "3",
		"-screenshot", shot, "-plot", plot, "-save-state", state, "-scale", "2",
	}, &stderr)
	if status != 0 {
		t.Fatalf("expected status 0, got %d: %s", status, stderr.String())
	}
	for _, f := range []string{shot, plot, state} {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("expected %s to exist, got %v", f, err)
		}
	}

	stderr.Reset()
	if status := run([]string{"-rom", rom, "-v", "error", "-speed", "0", "-frames", "4", "-state", state}, &stderr); status != 0 {
		t.Errorf("expected status 0 resuming from state, got %d: %s", status, stderr.String())
	}
}

func TestRun_Crash(t *testing.T) {
	rom := writeROM(t, 0xD3)
	var stderr bytes.Buffer
	if status := run([]string{"-rom", rom, "-v", "error", "-speed", "0"}, &stderr); status != 1 {
		t.Fatalf("expected status 1, got %d", status)
	}
	if !strings.Contains(stderr.String(), "pc: 0150") {
		t.Errorf("expected a dump on stderr, got %q", stderr.String())
	}
}

func TestRun_BadFlags(t *testing.T) {
	rom := writeROM(t)
	for _, args := range [][]string{
		{},
		{"-rom", rom, "-palette", "sepia"},
		{"-rom", rom, "-boot-disable-register", "zz"},
		{"-no-such-flag"},
	} {
		var stderr bytes.Buffer
		if status := run(args, &stderr); status != 2 {
			t.Errorf("%v: expected status 2, got %d", args, status)
		}
	}

	var stderr bytes.Buffer
	if status := run([]string{"-rom", rom, "-renderer", "sdl"}, &stderr); status != 1 {
		t.Errorf("expected status 1 for an unknown renderer, got %d", status)
	}
}
