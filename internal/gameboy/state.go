package gameboy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/cespare/xxhash"
	"github.com/thelolagemann/dmgcore/internal/types"
)

const (
	stateMagic   = "DMGS"
	stateVersion = 1
	// magic, then the xxhash of the compressed payload
	stateHeaderSize = len(stateMagic) + 8
)

var (
	// ErrStateFormat is returned for data that is not a save state.
	ErrStateFormat = errors.New("gameboy: not a save state")
	// ErrStateChecksum is returned when a save state is corrupt.
	ErrStateChecksum = errors.New("gameboy: save state checksum mismatch")
)

// SaveState serializes the machine. The payload is brotli compressed
// and prefixed with a magic and a checksum.
func (g *GameBoy) SaveState() ([]byte, error) {
	raw := g.payload()

	var compressed bytes.Buffer
	w := brotli.NewWriterLevel(&compressed, brotli.DefaultCompression)
	if _, err := w.Write(raw); err != nil {
		return nil, fmt.Errorf("gameboy: compressing state: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gameboy: compressing state: %w", err)
	}

	out := make([]byte, stateHeaderSize, stateHeaderSize+compressed.Len())
	copy(out, stateMagic)
	binary.LittleEndian.PutUint64(out[len(stateMagic):], xxhash.Sum64(compressed.Bytes()))
	return append(out, compressed.Bytes()...), nil
}

// payload returns the uncompressed state of every component.
func (g *GameBoy) payload() []byte {
	s := types.NewState()
	s.Write8(stateVersion)
	s.Write8(g.cart.Header().HeaderChecksum)
	s.Write64(g.cycles)
	g.bus.Save(s)
	g.irq.Save(s)
	g.cpu.Save(s)
	g.tmr.Save(s)
	g.ppu.Save(s)
	return s.Bytes()
}

// LoadState restores a state produced by SaveState for the same
// cartridge. On error the machine is left untouched.
func (g *GameBoy) LoadState(b []byte) error {
	if len(b) < stateHeaderSize || string(b[:len(stateMagic)]) != stateMagic {
		return ErrStateFormat
	}
	compressed := b[stateHeaderSize:]
	if binary.LittleEndian.Uint64(b[len(stateMagic):]) != xxhash.Sum64(compressed) {
		return ErrStateChecksum
	}
	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		return fmt.Errorf("gameboy: decompressing state: %w", err)
	}
	// every component saves a fixed number of bytes
	if want := len(g.payload()); len(raw) != want {
		return fmt.Errorf("gameboy: state is %d bytes, expected %d", len(raw), want)
	}

	s := types.StateFromBytes(raw)
	if v := s.Read8(); v != stateVersion {
		return fmt.Errorf("gameboy: unsupported state version %d", v)
	}
	if sum := s.Read8(); sum != g.cart.Header().HeaderChecksum {
		return fmt.Errorf("gameboy: state belongs to another cartridge (header checksum 0x%02X)", sum)
	}
	g.cycles = s.Read64()
	g.bus.Load(s)
	g.irq.Load(s)
	g.cpu.Load(s)
	g.tmr.Load(s)
	g.ppu.Load(s)
	if err := s.Err(); err != nil {
		return fmt.Errorf("gameboy: loading state: %w", err)
	}
	g.log.Infof("loaded state at cycle %d", g.cycles)
	return nil
}
