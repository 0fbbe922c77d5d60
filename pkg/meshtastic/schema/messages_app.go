package schema

import "google.golang.org/protobuf/encoding/protowire"

// Waypoint is a named point of interest shared over the mesh.
type Waypoint struct {
	Id          uint32
	LatitudeI   int32
	LongitudeI  int32
	Expire      uint32
	Name        string
	Description string
	Icon        uint32
}

func (w *Waypoint) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(w.Id))
	b = appendVarintField(b, 2, uint64(uint32(w.LatitudeI)))
	b = appendVarintField(b, 3, uint64(uint32(w.LongitudeI)))
	b = appendVarintField(b, 4, uint64(w.Expire))
	b = appendStringField(b, 5, w.Name)
	b = appendStringField(b, 6, w.Description)
	b = appendVarintField(b, 7, uint64(w.Icon))
	return b, nil
}

func (w *Waypoint) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			w.Id = uint32(decodeVarint(val))
		case 2:
			w.LatitudeI = int32(uint32(decodeVarint(val)))
		case 3:
			w.LongitudeI = int32(uint32(decodeVarint(val)))
		case 4:
			w.Expire = uint32(decodeVarint(val))
		case 5:
			w.Name = string(val)
		case 6:
			w.Description = string(val)
		case 7:
			w.Icon = uint32(decodeVarint(val))
		}
		return nil
	})
}

// Telemetry carries one of the device/environment/power metric samples.
// The sample's own submessage shape is left as Raw, same rationale as Config.
type Telemetry struct {
	Time uint32
	Raw  []byte
}

func (t *Telemetry) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(t.Time))
	b = appendBytesField(b, 2, t.Raw)
	return b, nil
}

func (t *Telemetry) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			t.Time = uint32(decodeVarint(val))
		case 2:
			t.Raw = append([]byte(nil), val...)
		}
		return nil
	})
}

// RouteDiscovery is the traceroute request/reply payload: the list of
// node numbers the packet has passed through so far.
type RouteDiscovery struct {
	Route []uint32
}

func (r *RouteDiscovery) MarshalVT() ([]byte, error) {
	var b []byte
	for _, hop := range r.Route {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(hop))
	}
	return b, nil
}

func (r *RouteDiscovery) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		if num == 1 {
			r.Route = append(r.Route, uint32(decodeVarint(val)))
		}
		return nil
	})
}

// NeighborInfo summarizes the radios a node can hear directly.
type NeighborInfo struct {
	NodeId          uint32
	LastSentById    uint32
	NodeBroadcastIntervalSecs uint32
}

func (n *NeighborInfo) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(n.NodeId))
	b = appendVarintField(b, 2, uint64(n.LastSentById))
	b = appendVarintField(b, 3, uint64(n.NodeBroadcastIntervalSecs))
	return b, nil
}

func (n *NeighborInfo) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			n.NodeId = uint32(decodeVarint(val))
		case 2:
			n.LastSentById = uint32(decodeVarint(val))
		case 3:
			n.NodeBroadcastIntervalSecs = uint32(decodeVarint(val))
		}
		return nil
	})
}

// Paxcount is a passive wifi/BLE people-counter sample.
type Paxcount struct {
	WifiCount uint32
	BleCount  uint32
}

func (p *Paxcount) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(p.WifiCount))
	b = appendVarintField(b, 2, uint64(p.BleCount))
	return b, nil
}

func (p *Paxcount) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			p.WifiCount = uint32(decodeVarint(val))
		case 2:
			p.BleCount = uint32(decodeVarint(val))
		}
		return nil
	})
}

// HardwareMessage is the REMOTE_HARDWARE_APP GPIO read/write payload.
type HardwareMessage struct {
	Type      uint32
	GpioMask  uint64
	GpioValue uint64
}

func (h *HardwareMessage) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendVarintField(b, 1, uint64(h.Type))
	b = appendVarintField(b, 2, h.GpioMask)
	b = appendVarintField(b, 3, h.GpioValue)
	return b, nil
}

func (h *HardwareMessage) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			h.Type = uint32(decodeVarint(val))
		case 2:
			h.GpioMask = decodeVarint(val)
		case 3:
			h.GpioValue = decodeVarint(val)
		}
		return nil
	})
}
