package schema

import "google.golang.org/protobuf/encoding/protowire"

// Routing is the radio's acknowledgement/rejection of a prior send,
// correlated by the original packet's id (carried in the enclosing
// Data.RequestId, not inside Routing itself).
type Routing struct {
	RouteRequest []byte
	RouteReply   []byte
	ErrorReason  RoutingError
	HasError     bool
}

func (r *Routing) MarshalVT() ([]byte, error) {
	var b []byte
	b = appendBytesField(b, 1, r.RouteRequest)
	b = appendBytesField(b, 2, r.RouteReply)
	if r.HasError {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(r.ErrorReason))
	}
	return b, nil
}

func (r *Routing) UnmarshalVT(data []byte) error {
	return consumeFields(data, func(num protowire.Number, typ protowire.Type, val []byte) error {
		switch num {
		case 1:
			r.RouteRequest = append([]byte(nil), val...)
		case 2:
			r.RouteReply = append([]byte(nil), val...)
		case 3:
			r.ErrorReason = RoutingError(decodeVarint(val))
			r.HasError = true
		}
		return nil
	})
}
