package schema

import "google.golang.org/protobuf/encoding/protowire"

// MyNodeInfo is the radio's self-identification, populated on receipt of
// the myInfo fromRadio message.
type MyNodeInfo struct {
	MyNodeNum uint32
}

func (m *MyNodeInfo) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.MyNodeNum))
	return b, nil
}

func (m *MyNodeInfo) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		if num == 1 {
			m.MyNodeNum = uint32(decodeVarint(val))
		}
		return nil
	})
}

// User identifies a node's owner.
type User struct {
	Id        string
	LongName  string
	ShortName string
	HwModel   uint32
}

func (u *User) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, u.Id)
	b = appendStringField(b, 2, u.LongName)
	b = appendStringField(b, 3, u.ShortName)
	b = appendVarintField(b, 4, uint64(u.HwModel))
	return b, nil
}

func (u *User) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			u.Id = string(val)
		case 2:
			u.LongName = string(val)
		case 3:
			u.ShortName = string(val)
		case 4:
			u.HwModel = uint32(decodeVarint(val))
		}
		return nil
	})
}

// Position is a GPS fix, in the 1e-7-degree integer encoding the radio uses.
type Position struct {
	LatitudeI  int32
	LongitudeI int32
	Altitude   int32
	Time       uint32
}

func (p *Position) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(uint32(p.LatitudeI)))
	b = appendVarintField(b, 2, uint64(uint32(p.LongitudeI)))
	b = appendVarintField(b, 3, uint64(uint32(p.Altitude)))
	b = appendVarintField(b, 4, uint64(p.Time))
	return b, nil
}

func (p *Position) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			p.LatitudeI = int32(uint32(decodeVarint(val)))
		case 2:
			p.LongitudeI = int32(uint32(decodeVarint(val)))
		case 3:
			p.Altitude = int32(uint32(decodeVarint(val)))
		case 4:
			p.Time = uint32(decodeVarint(val))
		}
		return nil
	})
}

// Channel is one of the eight LoRa channel slots.
type Channel struct {
	Index    uint32
	Role     uint32
	Settings []byte
}

func (c *Channel) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(c.Index))
	b = appendVarintField(b, 2, uint64(c.Role))
	b = appendBytesField(b, 3, c.Settings)
	return b, nil
}

func (c *Channel) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			c.Index = uint32(decodeVarint(val))
		case 2:
			c.Role = uint32(decodeVarint(val))
		case 3:
			c.Settings = append([]byte(nil), val...)
		}
		return nil
	})
}

// Config carries one of the device's top-level configuration sections.
// The section's own shape is left opaque (Payload) — admin.proto's
// get/set config family is a versioned codec concern this module does
// not need to interpret, only to move end to end intact.
type Config struct {
	Variant uint32
	Payload []byte
}

func (c *Config) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(c.Variant))
	b = appendBytesField(b, 2, c.Payload)
	return b, nil
}

func (c *Config) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			c.Variant = uint32(decodeVarint(val))
		case 2:
			c.Payload = append([]byte(nil), val...)
		}
		return nil
	})
}

// ModuleConfig is Config's counterpart for module (not core) settings.
type ModuleConfig struct {
	Variant uint32
	Payload []byte
}

func (m *ModuleConfig) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(m.Variant))
	b = appendBytesField(b, 2, m.Payload)
	return b, nil
}

func (m *ModuleConfig) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			m.Variant = uint32(decodeVarint(val))
		case 2:
			m.Payload = append([]byte(nil), val...)
		}
		return nil
	})
}

// LogRecord is a firmware log line forwarded to the host.
type LogRecord struct {
	Message string
	Level   uint32
}

func (l *LogRecord) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, l.Message)
	b = appendVarintField(b, 2, uint64(l.Level))
	return b, nil
}

func (l *LogRecord) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			l.Message = string(val)
		case 2:
			l.Level = uint32(decodeVarint(val))
		}
		return nil
	})
}

// QueueStatus reports the radio's own outbound queue depth.
type QueueStatus struct {
	Res          int32
	Free         uint32
	Maxlen       uint32
	MeshPacketId uint32
}

func (q *QueueStatus) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(uint32(q.Res)))
	b = appendVarintField(b, 2, uint64(q.Free))
	b = appendVarintField(b, 3, uint64(q.Maxlen))
	b = appendVarintField(b, 4, uint64(q.MeshPacketId))
	return b, nil
}

func (q *QueueStatus) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			q.Res = int32(uint32(decodeVarint(val)))
		case 2:
			q.Free = uint32(decodeVarint(val))
		case 3:
			q.Maxlen = uint32(decodeVarint(val))
		case 4:
			q.MeshPacketId = uint32(decodeVarint(val))
		}
		return nil
	})
}

// NodeInfo is the mesh's view of one node, including its optionally
// embedded user/position (see session dispatch's synthesized events).
type NodeInfo struct {
	Num      uint32
	User     *User
	Position *Position
	Channel  uint32
}

func (n *NodeInfo) MarshalVT() ([]byte, error) {
	var b []byte
	var err error
	b = appendVarintField(b, 1, uint64(n.Num))
	if n.User != nil {
		if b, err = appendMessageField(b, 2, n.User); err != nil {
			return nil, err
		}
	}
	if n.Position != nil {
		if b, err = appendMessageField(b, 3, n.Position); err != nil {
			return nil, err
		}
	}
	b = appendVarintField(b, 4, uint64(n.Channel))
	return b, nil
}

func (n *NodeInfo) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			n.Num = uint32(decodeVarint(val))
		case 2:
			u := new(User)
			if err := u.UnmarshalVT(val); err != nil {
				return err
			}
			n.User = u
		case 3:
			p := new(Position)
			if err := p.UnmarshalVT(val); err != nil {
				return err
			}
			n.Position = p
		case 4:
			n.Channel = uint32(decodeVarint(val))
		}
		return nil
	})
}

// DeviceMetadata is the radio firmware/hardware self-report.
type DeviceMetadata struct {
	FirmwareVersion string
	HwModel         uint32
}

func (m *DeviceMetadata) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendStringField(b, 1, m.FirmwareVersion)
	b = appendVarintField(b, 2, uint64(m.HwModel))
	return b, nil
}

func (m *DeviceMetadata) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			m.FirmwareVersion = string(val)
		case 2:
			m.HwModel = uint32(decodeVarint(val))
		}
		return nil
	})
}
