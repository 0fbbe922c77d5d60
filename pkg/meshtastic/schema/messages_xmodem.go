package schema

import "google.golang.org/protobuf/encoding/protowire"

// XModem is the in-band block-transfer control/data message (§4.5).
// It is carried as a MeshPacket-adjacent field on ToRadio/FromRadio, not
// a mesh-packet payload — this is "not literal 1977 XMODEM bytes", only
// its control-code vocabulary.
type XModem struct {
	Control XModemControl
	Seq     uint32
	Crc16   uint32
	Buffer  []byte
}

func (x *XModem) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(x.Control))
	b = appendVarintField(b, 2, uint64(x.Seq))
	b = appendVarintField(b, 3, uint64(x.Crc16))
	b = appendBytesField(b, 4, x.Buffer)
	return b, nil
}

func (x *XModem) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			x.Control = XModemControl(decodeVarint(val))
		case 2:
			x.Seq = uint32(decodeVarint(val))
		case 3:
			x.Crc16 = uint32(decodeVarint(val))
		case 4:
			x.Buffer = append([]byte(nil), val...)
		}
		return nil
	})
}
