package ipccfg

import (
	"github.com/sigurn/crc8"

	"github.com/clktmr/ameba/soc/ipc"
)

var kindCRC8 = crc8.MakeTable(crc8.Params{Poly: 0x07, Init: 0x00, RefIn: false, RefOut: false, XorOut: 0x00, Check: 0xF4, Name: "CRC-8 IPC kinds"})

// Fingerprint returns a checksum over the kind of every channel in t. Two
// images built from the same board file have the same fingerprint, regardless
// of which handlers they bind.
func Fingerprint(t ipc.Table) uint8 {
	var kinds [ipc.NumChannels]byte
	for ch, e := range t.Channels() {
		if ch >= ipc.NumChannels {
			break
		}
		kinds[ch] = byte(e.Kind)
	}
	csum := crc8.Init(kindCRC8)
	csum = crc8.Update(csum, kinds[:], kindCRC8)
	return crc8.Complete(csum, kindCRC8)
}

// Diff returns the channels whose kind differs between a and b. Channels
// missing from a table are taken as data channels.
func Diff(a, b ipc.Table) (chs []ipc.Channel) {
	ka, kb := a.Channels(), b.Channels()
	for ch := ipc.Channel(0); ch < ipc.NumChannels; ch++ {
		if kindOf(ka, ch) != kindOf(kb, ch) {
			chs = append(chs, ch)
		}
	}
	return
}

func kindOf(entries []ipc.Entry, ch ipc.Channel) ipc.MsgKind {
	if int(ch) < len(entries) {
		return entries[ch].Kind
	}
	return ipc.KindData
}
