package psram

// BurstType selects between wrapped and linear bursts.
type BurstType uint8

const (
	WrappedBurst BurstType = 0
	LinearBurst  BurstType = 1
)

// AddrSpace selects between the memory array and the device registers.
type AddrSpace uint8

const (
	MemSpace AddrSpace = 0
	RegSpace AddrSpace = 1
)

type Transaction uint8

const (
	WriteTransaction Transaction = 0
	ReadTransaction  Transaction = 1
)

// CommandAddress encodes the command/address bytes of a DPIN transaction
// starting at addr.
func CommandAddress(addr uint32, burst BurstType, space AddrSpace, rw Transaction) (ca [6]byte) {
	ca[0] = byte(addr & 0x7)
	ca[1] = 0
	ca[2] = byte((addr >> 3) & 0xf)
	ca[3] = byte((addr >> 11) & 0xf)
	ca[4] = byte((addr >> 19) & 0xf)
	ca[5] = byte((addr>>27)&0xf) | byte(burst&1)<<5 | byte(space&1)<<6 | byte(rw&1)<<7
	return
}

// DecodeCommandAddress is the inverse of CommandAddress. Address bits that
// don't fit the command are lost.
func DecodeCommandAddress(ca [6]byte) (addr uint32, burst BurstType, space AddrSpace, rw Transaction) {
	addr = uint32(ca[0]&0x7) |
		uint32(ca[2]&0xf)<<3 |
		uint32(ca[3]&0xf)<<11 |
		uint32(ca[4]&0xf)<<19 |
		uint32(ca[5]&0xf)<<27
	burst = BurstType(ca[5] >> 5 & 1)
	space = AddrSpace(ca[5] >> 6 & 1)
	rw = Transaction(ca[5] >> 7 & 1)
	return
}
