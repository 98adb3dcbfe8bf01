package mmu

import "github.com/thelolagemann/dmgcore/internal/types"

var _ types.Stater = (*Bus)(nil)

// Save writes every RAM region to s. ROM is not part of a state.
func (b *Bus) Save(s *types.State) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	s.WriteBool(b.bootROMMapped)
	s.WriteData(b.vRAM[:])
	s.WriteData(b.extRAM[:])
	s.WriteData(b.wRAM[:])
	s.Write8(b.input)
	s.WriteData(b.io[:])
	s.WriteData(b.hRAM[:])
	s.Write8(b.ie)
}

// Load restores the regions written by Save.
func (b *Bus) Load(s *types.State) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bootROMMapped = s.ReadBool() && b.bootROM != nil
	s.ReadData(b.vRAM[:])
	s.ReadData(b.extRAM[:])
	s.ReadData(b.wRAM[:])
	b.input = s.Read8()
	s.ReadData(b.io[:])
	s.ReadData(b.hRAM[:])
	b.ie = s.Read8()
}
