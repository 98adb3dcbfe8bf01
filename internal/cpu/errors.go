package cpu

import "fmt"

// DecodeError is returned by Step when the fetched opcode has no
// instruction. Execution cannot continue past it.
type DecodeError struct {
	Key  Key
	PC   uint16
	Dump *Dump
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cpu: unknown opcode %s at 0x%04X", e.Key, e.PC)
}

// FaultError is returned by Step when the instruction at PC touched
// an address the bus could not map.
type FaultError struct {
	PC   uint16
	Err  error
	Dump *Dump
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("cpu: fault executing 0x%04X: %v", e.PC, e.Err)
}

func (e *FaultError) Unwrap() error {
	return e.Err
}
