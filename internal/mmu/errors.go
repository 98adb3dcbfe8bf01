package mmu

import "fmt"

// Bus operations reported by AddressError.
const (
	OpRead  = "read"
	OpWrite = "write"
	OpRange = "read range"
)

// AddressError is returned (or raised, by Read and Write) when an
// address has no backing store for the requested operation. It is
// always fatal: it points at a decode bug or a broken test setup.
type AddressError struct {
	Addr   uint16
	Op     string
	Reason string
}

func (e *AddressError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("mmu: address 0x%04X has no known mapping (%s: %s)", e.Addr, e.Op, e.Reason)
	}
	return fmt.Sprintf("mmu: address 0x%04X has no known mapping (%s)", e.Addr, e.Op)
}
