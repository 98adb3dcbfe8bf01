package lcd

import "github.com/thelolagemann/dmgcore/internal/types"

// Status is the decoded LCD status register. Its value is stored in
// the STAT register (0xFF41) as follows:
//
//	Bit 6 - LYC=LY Coincidence Interrupt (1=Enable) (Read/Write)
//	Bit 5 - Mode 2 OAM Interrupt         (1=Enable) (Read/Write)
//	Bit 4 - Mode 1 V-Blank Interrupt     (1=Enable) (Read/Write)
//	Bit 3 - Mode 0 H-Blank Interrupt     (1=Enable) (Read/Write)
//	Bit 2 - Coincidence Flag  (0:LYC<>LY, 1:LYC=LY) (Read Only)
//	Bit 1-0 - Mode Flag       (Mode 0-3, see below) (Read Only)
//		0: During H-Blank
//		1: During V-Blank
//		2: During Searching OAM-RAM
//		3: During Transferring Data to LCD Driver
type Status struct {
	CoincidenceInterrupt bool
	OAMInterrupt         bool
	VBlankInterrupt      bool
	HBlankInterrupt      bool
	Coincidence          bool
	Mode                 Mode
}

// DecodeStatus decodes the value of the STAT register.
func DecodeStatus(value uint8) Status {
	return Status{
		CoincidenceInterrupt: types.TestBit(value, types.Bit6),
		OAMInterrupt:         types.TestBit(value, types.Bit5),
		VBlankInterrupt:      types.TestBit(value, types.Bit4),
		HBlankInterrupt:      types.TestBit(value, types.Bit3),
		Coincidence:          types.TestBit(value, types.Bit2),
		Mode:                 Mode(value & 0x03),
	}
}

// Value encodes the status back into the STAT register. Bit 7 always
// reads set.
func (s Status) Value() uint8 {
	value := uint8(types.Bit7)
	if s.CoincidenceInterrupt {
		value |= types.Bit6
	}
	if s.OAMInterrupt {
		value |= types.Bit5
	}
	if s.VBlankInterrupt {
		value |= types.Bit4
	}
	if s.HBlankInterrupt {
		value |= types.Bit3
	}
	if s.Coincidence {
		value |= types.Bit2
	}
	return value | uint8(s.Mode)&0x03
}

// InterruptOn reports whether entering mode m requests the STAT
// interrupt.
func (s Status) InterruptOn(m Mode) bool {
	switch m {
	case HBlank:
		return s.HBlankInterrupt
	case VBlank:
		return s.VBlankInterrupt
	case OAM:
		return s.OAMInterrupt
	}
	return false
}
