// Package frame implements the length-prefixed host<->radio framing the
// session applies to every transport's byte stream (serial, BLE, HTTP):
// two magic bytes, a big-endian 16-bit length, then that many payload
// bytes.
package frame

import (
	"encoding/binary"
	"errors"
)

// MaxPayload is the largest payload a frame may carry.
const MaxPayload = 512

var (
	magic = [2]byte{0x94, 0xC3}

	// ErrPayloadTooLarge is returned by Encode when asked to frame more
	// than MaxPayload bytes.
	ErrPayloadTooLarge = errors.New("meshtastic/frame: payload exceeds 512 bytes")

	// ErrMalformedFrame is returned by Unframe when its input is not
	// exactly one well-formed frame.
	ErrMalformedFrame = errors.New("meshtastic/frame: malformed frame")
)

// Unframe is Encode's inverse: given exactly one frame (magic bytes,
// length prefix, payload, nothing more), it returns the payload.
func Unframe(framed []byte) ([]byte, error) {
	if len(framed) < 4 || framed[0] != magic[0] || framed[1] != magic[1] {
		return nil, ErrMalformedFrame
	}
	length := int(binary.BigEndian.Uint16(framed[2:4]))
	if len(framed) != 4+length {
		return nil, ErrMalformedFrame
	}
	return framed[4:], nil
}

// Encode prepends the magic bytes and length prefix to payload.
func Encode(payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	out := make([]byte, 4+len(payload))
	out[0], out[1] = magic[0], magic[1]
	binary.BigEndian.PutUint16(out[2:4], uint16(len(payload)))
	copy(out[4:], payload)
	return out, nil
}

// Decoder is a stateful frame reassembler fed with arbitrarily-sized
// chunks of a byte stream. It is not safe for concurrent use: callers
// must serialize Feed calls for a single input stream.
type Decoder struct {
	buf []byte
}

// Feed appends chunk to the decoder's internal buffer and extracts as
// many complete payloads as are now available, in on-wire order. Bytes
// preceding the next magic pair are discarded (resynchronization); a
// frame whose declared length exceeds MaxPayload is dropped and
// resynchronization resumes immediately after its magic bytes.
func (d *Decoder) Feed(chunk []byte) [][]byte {
	d.buf = append(d.buf, chunk...)

	var out [][]byte
	for {
		idx := indexMagic(d.buf)
		if idx < 0 {
			// Keep a single trailing byte that might be the first half
			// of a split magic pair; discard everything else as noise.
			if len(d.buf) > 0 && d.buf[len(d.buf)-1] == magic[0] {
				d.buf = d.buf[len(d.buf)-1:]
			} else {
				d.buf = d.buf[:0]
			}
			return out
		}
		if idx > 0 {
			d.buf = d.buf[idx:]
		}

		if len(d.buf) < 4 {
			return out // wait for the length prefix to arrive
		}

		length := int(binary.BigEndian.Uint16(d.buf[2:4]))
		if length > MaxPayload {
			// Drop the in-progress (bogus) frame and resume scanning
			// right after its magic bytes rather than re-matching them.
			d.buf = d.buf[2:]
			continue
		}

		if len(d.buf) < 4+length {
			return out // wait for the rest of the payload to arrive
		}

		payload := make([]byte, length)
		copy(payload, d.buf[4:4+length])
		out = append(out, payload)
		d.buf = d.buf[4+length:]
	}
}

func indexMagic(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == magic[0] && buf[i+1] == magic[1] {
			return i
		}
	}
	return -1
}
