package schema

import (
	"bytes"
	"testing"
)

func TestMeshPacketRoundTrip(t *testing.T) {
	want := &MeshPacket{
		From:    7,
		To:      0xFFFFFFFF,
		Channel: 0,
		Id:      12345,
		WantAck: true,
		Decoded: &Data{
			Portnum:   PortTextMessage,
			Payload:   []byte("hi"),
			RequestId: 99,
		},
	}

	buf, err := want.MarshalVT()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := new(MeshPacket)
	if err := got.UnmarshalVT(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.From != want.From || got.To != want.To || got.Id != want.Id || !got.WantAck {
		t.Fatalf("scalar fields mismatch: got %+v want %+v", got, want)
	}
	if got.Decoded == nil || got.Decoded.Portnum != PortTextMessage {
		t.Fatalf("decoded portnum mismatch: %+v", got.Decoded)
	}
	if !bytes.Equal(got.Decoded.Payload, want.Decoded.Payload) {
		t.Fatalf("payload mismatch: got %q want %q", got.Decoded.Payload, want.Decoded.Payload)
	}
	if got.Decoded.RequestId != 99 {
		t.Fatalf("request id mismatch: got %d", got.Decoded.RequestId)
	}
}

func TestFromRadioConfigCompleteRoundTrip(t *testing.T) {
	want := &FromRadio{ConfigCompleteId: 0x4242, HasConfigCompleteId: true}

	buf, err := want.MarshalVT()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got := new(FromRadio)
	if err := got.UnmarshalVT(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.HasConfigCompleteId || got.ConfigCompleteId != 0x4242 {
		t.Fatalf("config complete id mismatch: %+v", got)
	}
}

func TestToRadioWantConfigIdRoundTrip(t *testing.T) {
	want := &ToRadio{WantConfigId: 0x4242}
	buf, err := want.MarshalVT()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := new(ToRadio)
	if err := got.UnmarshalVT(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.WantConfigId != 0x4242 {
		t.Fatalf("want config id mismatch: got %d", got.WantConfigId)
	}
}

func TestAdminMessageShutdownSecondsRoundTrip(t *testing.T) {
	want := &AdminMessage{ShutdownSeconds: 5, HasShutdown: true}
	buf, err := want.MarshalVT()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := new(AdminMessage)
	if err := got.UnmarshalVT(buf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.HasShutdown || got.ShutdownSeconds != 5 {
		t.Fatalf("shutdown seconds mismatch: %+v", got)
	}
}
