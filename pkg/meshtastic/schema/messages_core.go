package schema

import "google.golang.org/protobuf/encoding/protowire"

// Data is the decoded payload of a MeshPacket: an application port number
// plus its bytes and the fields the routing layer correlates sends by.
type Data struct {
	Portnum      PortNum
	Payload      []byte
	WantResponse bool
	Dest         uint32
	Source       uint32
	RequestId    uint32
	ReplyId      uint32
	Emoji        uint32
}

func (d *Data) MarshalVT() ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	var b []byte
	b = appendVarintField(b, 1, uint64(d.Portnum))
	b = appendBytesField(b, 2, d.Payload)
	b = appendBoolField(b, 3, d.WantResponse)
	b = appendVarintField(b, 4, uint64(d.Dest))
	b = appendVarintField(b, 5, uint64(d.Source))
	b = appendVarintField(b, 6, uint64(d.RequestId))
	b = appendVarintField(b, 7, uint64(d.ReplyId))
	b = appendVarintField(b, 8, uint64(d.Emoji))
	return b, nil
}

func (d *Data) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			d.Portnum = PortNum(decodeVarint(val))
		case 2:
			d.Payload = append([]byte(nil), val...)
		case 3:
			d.WantResponse = decodeVarint(val) != 0
		case 4:
			d.Dest = uint32(decodeVarint(val))
		case 5:
			d.Source = uint32(decodeVarint(val))
		case 6:
			d.RequestId = uint32(decodeVarint(val))
		case 7:
			d.ReplyId = uint32(decodeVarint(val))
		case 8:
			d.Emoji = uint32(decodeVarint(val))
		}
		return nil
	})
}

// MeshPacket is the radio's smallest routable unit.
type MeshPacket struct {
	From      uint32
	To        uint32
	Channel   uint32
	Id        uint32
	RxTime    uint32
	WantAck   bool
	Decoded   *Data
	Encrypted []byte
}

// GetDecoded mirrors the generated-code accessor idiom so call sites can
// do packet.GetDecoded() without a nil check.
func (p *MeshPacket) GetDecoded() *Data {
	if p == nil {
		return nil
	}
	return p.Decoded
}

func (p *MeshPacket) GetEncrypted() []byte {
	if p == nil {
		return nil
	}
	return p.Encrypted
}

func (p *MeshPacket) MarshalVT() ([]byte, error) {
	if p == nil {
		return nil, nil
	}
	var b []byte
	b = appendVarintField(b, 1, uint64(p.From))
	b = appendVarintField(b, 2, uint64(p.To))
	b = appendVarintField(b, 3, uint64(p.Channel))
	b = appendVarintField(b, 4, uint64(p.Id))
	b = appendVarintField(b, 5, uint64(p.RxTime))
	b = appendBoolField(b, 6, p.WantAck)
	if p.Decoded != nil {
		sub, err := appendMessageField(nil, 7, p.Decoded)
		if err != nil {
			return nil, err
		}
		b = append(b, sub...)
	}
	b = appendBytesField(b, 8, p.Encrypted)
	return b, nil
}

func (p *MeshPacket) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			p.From = uint32(decodeVarint(val))
		case 2:
			p.To = uint32(decodeVarint(val))
		case 3:
			p.Channel = uint32(decodeVarint(val))
		case 4:
			p.Id = uint32(decodeVarint(val))
		case 5:
			p.RxTime = uint32(decodeVarint(val))
		case 6:
			p.WantAck = decodeVarint(val) != 0
		case 7:
			d := new(Data)
			if err := d.UnmarshalVT(val); err != nil {
				return err
			}
			p.Decoded = d
		case 8:
			p.Encrypted = append([]byte(nil), val...)
		}
		return nil
	})
}

// ToRadio is the host-to-radio envelope.
type ToRadio struct {
	Packet        *MeshPacket
	WantConfigId  uint32
	Disconnect    bool
	XmodemPacket  *XModem
}

func (t *ToRadio) MarshalVT() ([]byte, error) {
	var b []byte
	var err error
	if t.Packet != nil {
		b, err = appendMessageField(b, 1, t.Packet)
		if err != nil {
			return nil, err
		}
	}
	b = appendVarintField(b, 2, uint64(t.WantConfigId))
	b = appendBoolField(b, 3, t.Disconnect)
	if t.XmodemPacket != nil {
		b, err = appendMessageField(b, 4, t.XmodemPacket)
		if err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (t *ToRadio) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			p := new(MeshPacket)
			if err := p.UnmarshalVT(val); err != nil {
				return err
			}
			t.Packet = p
		case 2:
			t.WantConfigId = uint32(decodeVarint(val))
		case 3:
			t.Disconnect = decodeVarint(val) != 0
		case 4:
			x := new(XModem)
			if err := x.UnmarshalVT(val); err != nil {
				return err
			}
			t.XmodemPacket = x
		}
		return nil
	})
}

// FromRadio is the radio-to-host envelope. Exactly one of the pointer
// fields (plus the scalar variants) is populated per message, mirroring
// the oneof payload_variant of the real schema.
type FromRadio struct {
	Packet                  *MeshPacket
	MyInfo                  *MyNodeInfo
	NodeInfo                *NodeInfo
	Config                  *Config
	LogRecord               *LogRecord
	ConfigCompleteId        uint32
	HasConfigCompleteId     bool
	Rebooted                bool
	ModuleConfig            *ModuleConfig
	Channel                 *Channel
	QueueStatus             *QueueStatus
	XmodemPacket            *XModem
	Metadata                *DeviceMetadata
	MqttClientProxyMessage  []byte
}

func (f *FromRadio) MarshalVT() ([]byte, error) {
	var b []byte
	var err error
	if f.Packet != nil {
		if b, err = appendMessageField(b, 1, f.Packet); err != nil {
			return nil, err
		}
	}
	if f.MyInfo != nil {
		if b, err = appendMessageField(b, 2, f.MyInfo); err != nil {
			return nil, err
		}
	}
	if f.NodeInfo != nil {
		if b, err = appendMessageField(b, 3, f.NodeInfo); err != nil {
			return nil, err
		}
	}
	if f.Config != nil {
		if b, err = appendMessageField(b, 4, f.Config); err != nil {
			return nil, err
		}
	}
	if f.LogRecord != nil {
		if b, err = appendMessageField(b, 5, f.LogRecord); err != nil {
			return nil, err
		}
	}
	if f.HasConfigCompleteId {
		b = protowire.AppendTag(b, 6, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(f.ConfigCompleteId))
	}
	b = appendBoolField(b, 7, f.Rebooted)
	if f.ModuleConfig != nil {
		if b, err = appendMessageField(b, 8, f.ModuleConfig); err != nil {
			return nil, err
		}
	}
	if f.Channel != nil {
		if b, err = appendMessageField(b, 9, f.Channel); err != nil {
			return nil, err
		}
	}
	if f.QueueStatus != nil {
		if b, err = appendMessageField(b, 10, f.QueueStatus); err != nil {
			return nil, err
		}
	}
	if f.XmodemPacket != nil {
		if b, err = appendMessageField(b, 11, f.XmodemPacket); err != nil {
			return nil, err
		}
	}
	if f.Metadata != nil {
		if b, err = appendMessageField(b, 12, f.Metadata); err != nil {
			return nil, err
		}
	}
	b = appendBytesField(b, 13, f.MqttClientProxyMessage)
	return b, nil
}

func (f *FromRadio) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			p := new(MeshPacket)
			if err := p.UnmarshalVT(val); err != nil {
				return err
			}
			f.Packet = p
		case 2:
			m := new(MyNodeInfo)
			if err := m.UnmarshalVT(val); err != nil {
				return err
			}
			f.MyInfo = m
		case 3:
			n := new(NodeInfo)
			if err := n.UnmarshalVT(val); err != nil {
				return err
			}
			f.NodeInfo = n
		case 4:
			c := new(Config)
			if err := c.UnmarshalVT(val); err != nil {
				return err
			}
			f.Config = c
		case 5:
			l := new(LogRecord)
			if err := l.UnmarshalVT(val); err != nil {
				return err
			}
			f.LogRecord = l
		case 6:
			f.ConfigCompleteId = uint32(decodeVarint(val))
			f.HasConfigCompleteId = true
		case 7:
			f.Rebooted = decodeVarint(val) != 0
		case 8:
			m := new(ModuleConfig)
			if err := m.UnmarshalVT(val); err != nil {
				return err
			}
			f.ModuleConfig = m
		case 9:
			c := new(Channel)
			if err := c.UnmarshalVT(val); err != nil {
				return err
			}
			f.Channel = c
		case 10:
			q := new(QueueStatus)
			if err := q.UnmarshalVT(val); err != nil {
				return err
			}
			f.QueueStatus = q
		case 11:
			x := new(XModem)
			if err := x.UnmarshalVT(val); err != nil {
				return err
			}
			f.XmodemPacket = x
		case 12:
			m := new(DeviceMetadata)
			if err := m.UnmarshalVT(val); err != nil {
				return err
			}
			f.Metadata = m
		case 13:
			f.MqttClientProxyMessage = append([]byte(nil), val...)
		}
		return nil
	})
}
