package frame

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte("hello mesh")
	f, err := Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var d Decoder
	got := d.Feed(f)
	if len(got) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(got))
	}
	if !bytes.Equal(got[0], payload) {
		t.Fatalf("payload mismatch: got %q want %q", got[0], payload)
	}
}

func TestEncodeRejectsOversizePayload(t *testing.T) {
	_, err := Encode(make([]byte, MaxPayload+1))
	if err != ErrPayloadTooLarge {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}
}

func TestDecoderResynchronizesPastGarbage(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03}
	frame, err := Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	noisy := append([]byte{0xAA, 0xBB, 0x94, 0x00}, frame...)

	var d Decoder
	got := d.Feed(noisy)
	if len(got) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(got))
	}
	if !bytes.Equal(got[0], payload) {
		t.Fatalf("payload mismatch: got %x want %x", got[0], payload)
	}
}

func TestDecoderDropsOversizeFrameAndResyncs(t *testing.T) {
	var bogusLen [2]byte
	bogusLen[0], bogusLen[1] = 0x02, 0x01 // 513, over MaxPayload

	payload := []byte("recovered")
	good, err := Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	stream := append([]byte{0x94, 0xC3, bogusLen[0], bogusLen[1]}, good...)

	var d Decoder
	got := d.Feed(stream)
	if len(got) != 1 {
		t.Fatalf("expected 1 payload (bogus frame dropped), got %d", len(got))
	}
	if !bytes.Equal(got[0], payload) {
		t.Fatalf("payload mismatch: got %q want %q", got[0], payload)
	}
}

func TestUnframeIsEncodesInverse(t *testing.T) {
	payload := []byte("round trip")
	f, err := Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Unframe(f)
	if err != nil {
		t.Fatalf("unframe: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("payload mismatch: got %q want %q", got, payload)
	}
}

func TestUnframeRejectsTrailingGarbage(t *testing.T) {
	f, err := Encode([]byte("x"))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := Unframe(append(f, 0xFF)); err != ErrMalformedFrame {
		t.Fatalf("expected ErrMalformedFrame, got %v", err)
	}
}

func TestDecoderHandlesSplitChunks(t *testing.T) {
	payload := []byte("split across reads")
	f, err := Encode(payload)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var d Decoder
	mid := len(f) / 2
	got := d.Feed(f[:mid])
	if len(got) != 0 {
		t.Fatalf("expected no complete payloads yet, got %d", len(got))
	}
	got = d.Feed(f[mid:])
	if len(got) != 1 || !bytes.Equal(got[0], payload) {
		t.Fatalf("unexpected result after completing frame: %v", got)
	}
}
