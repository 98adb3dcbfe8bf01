package types

// HardwareAddress represents the address of a hardware
// register. The hardware registers are mapped to memory
// addresses 0xFF00 - 0xFF7F & 0xFFFF.
type HardwareAddress = uint16

const (
	// P1 is the address of the joypad input register. It is
	// a single byte cell of its own, separate from the rest
	// of the I/O block.
	P1 HardwareAddress = 0xFF00
	// DIV is the address of the divider register, the upper byte
	// of the internal 16-bit system counter. Any write resets it.
	DIV HardwareAddress = 0xFF04
	// TIMA is the address of the timer counter.
	TIMA HardwareAddress = 0xFF05
	// TMA is the address of the timer modulo, loaded into TIMA
	// when it overflows.
	TMA HardwareAddress = 0xFF06
	// TAC is the address of the timer control register.
	//
	//  Bit 2:    Timer Enable
	//  Bit 1-0:  Input Clock Select
	//            00: 4096 Hz, 01: 262144 Hz, 10: 65536 Hz, 11: 16384 Hz
	TAC HardwareAddress = 0xFF07
	// IF is the address of the interrupt flag register.
	//
	//  Bit 0: V-Blank Interrupt Request (INT 40h)  (1=Request)
	//  Bit 1: LCD STAT Interrupt Request (INT 48h) (1=Request)
	//  Bit 2: Timer Interrupt Request (INT 50h)    (1=Request)
	//  Bit 3: Serial Interrupt Request (INT 58h)   (1=Request)
	//  Bit 4: Joypad Interrupt Request (INT 60h)   (1=Request)
	IF HardwareAddress = 0xFF0F
	// LCDC is the address of the LCD control register. Bit 7
	// gates the entire video controller.
	LCDC HardwareAddress = 0xFF40
	// STAT is the address of the LCD status register. Bits 0-1
	// report the current mode, bit 2 the LY=LYC coincidence and
	// bits 3-6 select which conditions raise the STAT interrupt.
	STAT HardwareAddress = 0xFF41
	// SCY is the address of the background scroll Y register.
	SCY HardwareAddress = 0xFF42
	// SCX is the address of the background scroll X register.
	SCX HardwareAddress = 0xFF43
	// LY is the address of the current scanline register.
	LY HardwareAddress = 0xFF44
	// LYC is the address of the scanline compare register.
	LYC HardwareAddress = 0xFF45
	// BGP is the address of the background palette register.
	BGP HardwareAddress = 0xFF47
	// WY is the address of the window Y position register.
	WY HardwareAddress = 0xFF4A
	// WX is the address of the window X position register.
	WX HardwareAddress = 0xFF4B
	// BDIS is the register the DMG boot ROM writes to when it
	// has finished. The bus only honours it when a host opts in
	// with mmu.WithBootDisableRegister.
	BDIS HardwareAddress = 0xFF50
	// IE is the address of the interrupt enable register.
	IE HardwareAddress = 0xFFFF
)

// Memory region boundaries (inclusive).
const (
	BootROMStart   = 0x0000
	BootROMEnd     = 0x00FF
	CartROMStart   = 0x0100
	CartROMEnd     = 0x7FFF
	VRAMStart      = 0x8000
	VRAMEnd        = 0x9FFF
	ExtRAMStart    = 0xA000
	ExtRAMEnd      = 0xBFFF
	WRAMStart      = 0xC000
	WRAMEnd        = 0xDFFF
	EchoStart      = 0xE000
	EchoEnd        = 0xFDFF
	IOStart        = 0xFF01
	IOEnd          = 0xFF7F
	HRAMStart      = 0xFF80
	HRAMEnd        = 0xFFFE
	BootROMSize    = BootROMEnd - BootROMStart + 1
	VRAMSize       = VRAMEnd - VRAMStart + 1
	ExtRAMSize     = ExtRAMEnd - ExtRAMStart + 1
	WRAMSize       = WRAMEnd - WRAMStart + 1
	IOSize         = IOEnd - IOStart + 1
	HRAMSize       = HRAMEnd - HRAMStart + 1
	EchoWRAMOffset = EchoStart - WRAMStart
)
