package psram

import "github.com/clktmr/ameba/soc/cpu"

// Base is the bus address of the PSRAM memory window.
const Base cpu.Addr = 0x0200_0000

// Reg is the byte offset of a controller register.
type Reg uint32

const (
	RegCCR         Reg = 0x000 // command control
	RegDCR         Reg = 0x004 // device configuration
	RegIOCR0       Reg = 0x008 // I/O configuration
	RegCSR         Reg = 0x00c // controller status
	RegDRR         Reg = 0x010 // device refresh/power-up timing
	RegCmdDPinNdge Reg = 0x030 // DPIN command address, negative edge bytes
	RegCmdDPin     Reg = 0x034 // DPIN command address, positive edge bytes
	RegMRInfo      Reg = 0x03c // read/write latency
	RegMR0         Reg = 0x040
	RegMR1         Reg = 0x044
	RegDPDRI       Reg = 0x0bc // DPIN data index
	RegDPDR        Reg = 0x0c0 // DPIN data
	RegUser0Index  Reg = 0x11c // PHY register index
	RegUser0Data   Reg = 0x120 // PHY register data
)

// Regs is the register block of the PSRAM controller.
type Regs interface {
	Load(r Reg) uint32
	Store(r Reg, v uint32)
}

// CCR bits
const (
	CCRInit uint32 = 1 << 0 // start device initialization, reads 1 when done
	CCRDPin uint32 = 1 << 3 // start DPIN transaction, reads 1 when done
)

// CSR bits
const (
	CSRMemIdle   uint32 = 1 << 8 // request idle / memory access stopped
	CSRDPinMode  uint32 = 0x3 << 18
	CSRDPinRead  uint32 = 0x0 << 18
	CSRDPinWrite uint32 = 0x1 << 18
)

// IOCR0 fields
const (
	IOCR0DfiPathDlyShift        = 8
	IOCR0DfiPathDlyMask  uint32 = 0xf << IOCR0DfiPathDlyShift
	IOCR0TPhyWrdataShift        = 12
	IOCR0TPhyWrdataMask  uint32 = 0x1f << IOCR0TPhyWrdataShift
	IOCR0TPhyRddataShift        = 20
	IOCR0TPhyRddataMask  uint32 = 0x1f << IOCR0TPhyRddataShift
	IOCR0FixTPhyLat      uint32 = 1 << 26
	IOCR0CSWrDlyShift           = 28
	IOCR0CSWrDlyMask     uint32 = 0x3 << IOCR0CSWrDlyShift
	IOCR0CSRdDlyShift           = 30
	IOCR0CSRdDlyMask     uint32 = 0x3 << IOCR0CSRdDlyShift
)

// DRR fields, in controller clock cycles
const (
	DRRCPHTimeShift        = 0
	DRRCPHTimeMask  uint32 = 0xf << DRRCPHTimeShift
	DRRCEMTimeShift        = 8
	DRRCEMTimeMask  uint32 = 0x3ff << DRRCEMTimeShift
	DRRPUTimeShift         = 28
	DRRPUTimeMask   uint32 = 0xf << DRRPUTimeShift
)

// MR_INFO fields
const (
	MRInfoWLShift        = 0
	MRInfoWLMask  uint32 = 0x1f << MRInfoWLShift
	MRInfoRLShift        = 5
	MRInfoRLMask  uint32 = 0x1f << MRInfoRLShift
)

// MR0 mirrors the device's configuration register 0.
const (
	MR0BurstLenShift           = 0
	MR0BurstLenMask     uint32 = 0x3 << MR0BurstLenShift
	MR0LegacyBurst      uint32 = 1 << 2 // hybrid burst disabled
	MR0FixedLatency     uint32 = 1 << 3
	MR0InitLatShift            = 4
	MR0InitLatMask      uint32 = 0xf << MR0InitLatShift
	MR0Reserved         uint32 = 0xf << 8
	MR0DrvStrengthShift        = 12
	MR0DrvStrengthMask  uint32 = 0x7 << MR0DrvStrengthShift
	MR0NormalMode       uint32 = 1 << 15 // deep power down disabled
)

// MR1 mirrors the device's configuration register 1.
const (
	MR1PASRShift           = 0
	MR1PASRMask     uint32 = 0x7 << MR1PASRShift
	MR1RefreshShift        = 3
	MR1RefreshMask  uint32 = 0x3 << MR1RefreshShift
	MR1HalfSleep    uint32 = 1 << 5
)

// DPDRI values select which word DPDR accesses.
const (
	dpdrReadData  = 0
	dpdrWriteData = 4
	dpdrByteEn    = 8
)
