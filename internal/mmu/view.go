package mmu

// View gives read access to the bus while the shared lock is held.
// It must not escape the function passed to Bus.View.
type View struct {
	b *Bus
}

// View runs fn with the shared lock held, so every read fn makes
// observes the same memory. Writers block until fn returns.
func (b *Bus) View(fn func(v View) error) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return fn(View{b: b})
}

// Read returns the value at addr.
func (v View) Read(addr uint16) (uint8, error) {
	return v.b.read(addr)
}

// ReadRange returns a copy of [start, end).
func (v View) ReadRange(start, end uint16) ([]byte, error) {
	return v.b.readRange(start, end)
}
