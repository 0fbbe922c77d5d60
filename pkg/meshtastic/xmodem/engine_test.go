package xmodem

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/schema"
)

func TestCRC16XModemTestVector(t *testing.T) {
	if got := CRC16([]byte("123456789")); got != 0x31C3 {
		t.Fatalf("CRC16(\"123456789\") = %#04x, want 0x31c3", got)
	}
}

func TestSendReceiveRoundTrip(t *testing.T) {
	var sender, receiver *Engine
	sender = New(nil, func(msg *schema.XModem) error { return receiver.HandlePacket(msg) })
	receiver = New(nil, func(msg *schema.XModem) error { return sender.HandlePacket(msg) })

	payload := make([]byte, BlockSize*3+17)
	for i := range payload {
		payload[i] = byte(i % 256)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := sender.Send(ctx, payload); err != nil {
		t.Fatalf("send: %v", err)
	}

	select {
	case got := <-receiver.Received():
		if len(got) != len(payload) {
			t.Fatalf("length mismatch: got %d want %d", len(got), len(payload))
		}
		for i := range payload {
			if got[i] != payload[i] {
				t.Fatalf("byte mismatch at %d: got %d want %d", i, got[i], payload[i])
			}
		}
	default:
		t.Fatal("receiver never observed a completed transfer")
	}
}

func TestSendRetriesOnNakThenSucceeds(t *testing.T) {
	naksLeft := 2
	var engine *Engine
	engine = New(nil, func(msg *schema.XModem) error {
		switch msg.Control {
		case schema.XModemSOH:
			if naksLeft > 0 {
				naksLeft--
				return engine.HandlePacket(&schema.XModem{Control: schema.XModemNAK, Seq: msg.Seq})
			}
			return engine.HandlePacket(&schema.XModem{Control: schema.XModemACK, Seq: msg.Seq})
		case schema.XModemEOT:
			return engine.HandlePacket(&schema.XModem{Control: schema.XModemACK})
		}
		return nil
	})

	if err := engine.Send(context.Background(), []byte("short payload")); err != nil {
		t.Fatalf("send: %v", err)
	}
	if naksLeft != 0 {
		t.Fatalf("expected all scripted naks consumed, %d left", naksLeft)
	}
}

func TestSendExhaustsRetriesAndSendsCancel(t *testing.T) {
	var cancelSent bool
	var engine *Engine
	engine = New(nil, func(msg *schema.XModem) error {
		switch msg.Control {
		case schema.XModemSOH:
			return engine.HandlePacket(&schema.XModem{Control: schema.XModemNAK, Seq: msg.Seq})
		case schema.XModemCAN:
			cancelSent = true
		}
		return nil
	})
	engine.maxRetries = 2

	err := engine.Send(context.Background(), []byte("x"))
	if !errors.Is(err, ErrRetriesExhausted) {
		t.Fatalf("expected ErrRetriesExhausted, got %v", err)
	}
	if !cancelSent {
		t.Fatal("expected a CAN to be sent after retries exhausted")
	}
}

func TestHandlePacketRejectsBadCRC(t *testing.T) {
	var nak *schema.XModem
	receiver := New(nil, func(msg *schema.XModem) error {
		nak = msg
		return nil
	})

	err := receiver.HandlePacket(&schema.XModem{
		Control: schema.XModemSOH,
		Seq:     1,
		Crc16:   0, // wrong
		Buffer:  []byte("data"),
	})
	if err != nil {
		t.Fatalf("handle packet: %v", err)
	}
	if nak == nil || nak.Control != schema.XModemNAK {
		t.Fatalf("expected a NAK reply, got %+v", nak)
	}
}

func TestSendRejectsConcurrentSend(t *testing.T) {
	block := make(chan struct{})
	engine := New(nil, func(msg *schema.XModem) error {
		<-block
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- engine.Send(ctx, []byte("payload"))
	}()

	// Give the first Send time to mark itself in progress.
	time.Sleep(10 * time.Millisecond)
	if err := engine.Send(context.Background(), []byte("other")); !errors.Is(err, ErrSendInProgress) {
		t.Fatalf("expected ErrSendInProgress, got %v", err)
	}

	close(block)
	<-errCh // first Send unblocks once its context deadline passes
}
