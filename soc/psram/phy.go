package psram

// PHYReg is the index of a register in the PSRAM PHY, which is only reachable
// through the controller's USER0 index/data pair.
type PHYReg uint8

const (
	PHYCalCtrl PHYReg = 0x00 // calibration control
	PHYCalPara PHYReg = 0x04 // calibration parameters
)

// PHYCalCtrl bits
const CalEnable uint32 = 1 << 0 // hardware auto-calibration

// PHYCalPara fields. N is the sampling delay, J and JMax bound how far the
// auto-calibration may move away from N.
const (
	CalNShift           = 0
	CalNMask     uint32 = 0x1f << CalNShift
	CalJShift           = 8
	CalJMask     uint32 = 0x1f << CalJShift
	CalJMaxShift        = 16
	CalJMaxMask  uint32 = 0xf << CalJMaxShift

	calSeedMask uint32 = 0xfffff // cleared before seeding N, J and JMax
)

// PHY gives access to the PSRAM PHY registers.
type PHY interface {
	PHYRead(r PHYReg) uint32
	PHYWrite(r PHYReg, v uint32)
}

func (c *Controller) PHYRead(r PHYReg) uint32 {
	c.regs.Store(RegUser0Index, uint32(r))
	return c.regs.Load(RegUser0Data)
}

func (c *Controller) PHYWrite(r PHYReg, v uint32) {
	c.regs.Store(RegUser0Index, uint32(r))
	c.regs.Store(RegUser0Data, v)
}
