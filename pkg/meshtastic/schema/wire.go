package schema

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// vtMessage is implemented by every message in this package; the method
// names mirror the MarshalVT/UnmarshalVT convention planetscale/vtprotobuf
// generates so call sites read the same as they would against real
// generated code (packet.MarshalVT(), new(FromRadio).UnmarshalVT(buf)).
type vtMessage interface {
	MarshalVT() ([]byte, error)
	UnmarshalVT([]byte) error
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBoolField(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return appendVarintField(b, num, 1)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	return appendBytesField(b, num, []byte(v))
}

func appendMessageField(b []byte, num protowire.Number, m vtMessage) ([]byte, error) {
	if m == nil {
		return b, nil
	}
	sub, err := m.MarshalVT()
	if err != nil {
		return nil, fmt.Errorf("marshal field %d: %w", num, err)
	}
	return appendBytesField(b, num, sub), nil
}

// fieldVisitor receives one decoded field per call: val holds the raw
// varint/fixed bytes for scalar wire types, or the delimited payload for
// BytesType. It returns an error to abort unmarshalling.
type fieldVisitor func(num protowire.Number, typ protowire.Type, val []byte) error

func consumeFields(data []byte, visit fieldVisitor) error {
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return fmt.Errorf("consume tag: %w", protowire.ParseError(n))
		}
		data = data[n:]

		var (
			val []byte
			m   int
		)
		switch typ {
		case protowire.VarintType:
			v, n2 := protowire.ConsumeVarint(data)
			if n2 < 0 {
				return fmt.Errorf("consume varint: %w", protowire.ParseError(n2))
			}
			val, m = protowire.AppendVarint(nil, v), n2
		case protowire.BytesType:
			v, n2 := protowire.ConsumeBytes(data)
			if n2 < 0 {
				return fmt.Errorf("consume bytes: %w", protowire.ParseError(n2))
			}
			val, m = v, n2
		case protowire.Fixed32Type:
			v, n2 := protowire.ConsumeFixed32(data)
			if n2 < 0 {
				return fmt.Errorf("consume fixed32: %w", protowire.ParseError(n2))
			}
			val, m = protowire.AppendFixed32(nil, v), n2
		case protowire.Fixed64Type:
			v, n2 := protowire.ConsumeFixed64(data)
			if n2 < 0 {
				return fmt.Errorf("consume fixed64: %w", protowire.ParseError(n2))
			}
			val, m = protowire.AppendFixed64(nil, v), n2
		default:
			return fmt.Errorf("unsupported wire type %d for field %d", typ, num)
		}

		if err := visit(num, typ, val); err != nil {
			return err
		}
		data = data[m:]
	}
	return nil
}

func decodeVarint(val []byte) uint64 {
	v, _ := protowire.ConsumeVarint(val)
	return v
}
