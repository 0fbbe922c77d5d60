package meshtastic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/eventbus"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/frame"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/queue"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/schema"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/xmodem"
)

func xmodemCRC(t *testing.T, data []byte) uint16 {
	t.Helper()
	return xmodem.CRC16(data)
}

// fakeTransport is an in-memory Transport: Write appends the framed
// bytes it was given, and test code drives onBytes directly to simulate
// radio traffic without a real link.
type fakeTransport struct {
	mu       sync.Mutex
	onBytes  func([]byte)
	writes   [][]byte
	writeErr error
	connErr  error
}

func (f *fakeTransport) Connect(ctx context.Context, onBytes func([]byte)) error {
	if f.connErr != nil {
		return f.connErr
	}
	f.onBytes = onBytes
	return nil
}

func (f *fakeTransport) Disconnect() error { return nil }

func (f *fakeTransport) Write(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.writes = append(f.writes, append([]byte(nil), data...))
	return nil
}

func (f *fakeTransport) Ping(ctx context.Context) (bool, error) { return true, nil }

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// lastToRadio decodes the most recent write as a ToRadio the session just
// wrote, for assertions that need to look inside an outbound frame.
func (f *fakeTransport) lastToRadio(t *testing.T) *schema.ToRadio {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		t.Fatal("no writes recorded")
	}
	var dec frame.Decoder
	frames := dec.Feed(f.writes[len(f.writes)-1])
	if len(frames) != 1 {
		t.Fatalf("expected exactly one frame, got %d", len(frames))
	}
	msg := new(schema.ToRadio)
	if err := msg.UnmarshalVT(frames[0]); err != nil {
		t.Fatalf("unmarshal ToRadio: %v", err)
	}
	return msg
}

// deliverFromRadio marshals msg, frames it, and feeds it to the session
// through the transport's onBytes callback, as a real radio would.
func deliverFromRadio(t *testing.T, tr *fakeTransport, msg *schema.FromRadio) {
	payload, err := msg.MarshalVT()
	if err != nil {
		t.Fatalf("marshal FromRadio: %v", err)
	}
	framed, err := frame.Encode(payload)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	tr.onBytes(framed)
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func newConfiguredSession(t *testing.T) (*Session, *fakeTransport) {
	tr := &fakeTransport{}
	s := NewSession(tr, WithLockstepID(42))
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	deliverFromRadio(t, tr, &schema.FromRadio{MyInfo: &schema.MyNodeInfo{MyNodeNum: 0xAABBCCDD}})
	deliverFromRadio(t, tr, &schema.FromRadio{ConfigCompleteId: 42, HasConfigCompleteId: true})
	if got, want := s.Status(), Configured; got != want {
		t.Fatalf("status = %v, want %v", got, want)
	}
	return s, tr
}

func TestConnectRunsConfigurationHandshake(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSession(tr, WithLockstepID(7))

	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if got, want := s.Status(), Configuring; got != want {
		t.Fatalf("status after connect = %v, want %v", got, want)
	}

	sent := tr.lastToRadio(t)
	if sent.WantConfigId != 7 {
		t.Fatalf("wantConfigId = %d, want 7", sent.WantConfigId)
	}

	deliverFromRadio(t, tr, &schema.FromRadio{MyInfo: &schema.MyNodeInfo{MyNodeNum: 99}})
	deliverFromRadio(t, tr, &schema.FromRadio{ConfigCompleteId: 7, HasConfigCompleteId: true})

	if got, want := s.Status(), Configured; got != want {
		t.Fatalf("status after configComplete = %v, want %v", got, want)
	}
	if got, want := s.MyNodeNum(), uint32(99); got != want {
		t.Fatalf("myNodeNum = %d, want %d", got, want)
	}
}

func TestSendTextResolvesOnRoutingAck(t *testing.T) {
	s, tr := newConfiguredSession(t)

	future, err := s.SendText(context.Background(), "hello mesh", Broadcast, PrimaryChannel, true)
	if err != nil {
		t.Fatalf("sendtext: %v", err)
	}

	waitFor(t, time.Second, func() bool { return tr.writeCount() > 1 })
	outbound := tr.lastToRadio(t)
	if outbound.Packet == nil || outbound.Packet.Decoded == nil {
		t.Fatal("expected outbound mesh packet with decoded payload")
	}
	id := outbound.Packet.Id

	deliverFromRadio(t, tr, &schema.FromRadio{Packet: &schema.MeshPacket{
		From: 0xAABBCCDD,
		To:   broadcastAddr,
		Decoded: &schema.Data{
			Portnum:   schema.PortRouting,
			RequestId: id,
			Payload: mustMarshal(t, &schema.Routing{HasError: true, ErrorReason: schema.RoutingErrorNone}),
		},
	}})

	select {
	case res := <-future:
		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("future never resolved")
	}
}

func TestSendTextResolvesWithRoutingErrorOnNak(t *testing.T) {
	s, tr := newConfiguredSession(t)

	future, err := s.SendText(context.Background(), "hello mesh", Broadcast, PrimaryChannel, true)
	if err != nil {
		t.Fatalf("sendtext: %v", err)
	}
	waitFor(t, time.Second, func() bool { return tr.writeCount() > 1 })
	id := tr.lastToRadio(t).Packet.Id

	deliverFromRadio(t, tr, &schema.FromRadio{Packet: &schema.MeshPacket{
		From: 0xAABBCCDD,
		To:   broadcastAddr,
		Decoded: &schema.Data{
			Portnum:   schema.PortRouting,
			RequestId: id,
			Payload: mustMarshal(t, &schema.Routing{HasError: true, ErrorReason: schema.RoutingErrorTimeout}),
		},
	}})

	res := <-future
	var routingErr *RoutingError
	if !errors.As(res.Err, &routingErr) {
		t.Fatalf("expected RoutingError, got %v", res.Err)
	}
	if routingErr.Reason != schema.RoutingErrorTimeout {
		t.Fatalf("reason = %v, want timeout", routingErr.Reason)
	}
}

func TestSendPacketRejectsOversizePayload(t *testing.T) {
	s, tr := newConfiguredSession(t)
	before := tr.writeCount()

	oversized := strings.Repeat("x", 700)
	_, err := s.SendText(context.Background(), oversized, Broadcast, PrimaryChannel, false)
	if !errors.Is(err, ErrPayloadTooLarge) {
		t.Fatalf("expected ErrPayloadTooLarge, got %v", err)
	}

	time.Sleep(10 * time.Millisecond)
	if after := tr.writeCount(); after != before {
		t.Fatalf("expected no additional writes, before=%d after=%d", before, after)
	}
}

func TestRebootedTriggersReconfigure(t *testing.T) {
	s, tr := newConfiguredSession(t)
	writesBeforeReboot := tr.writeCount()

	deliverFromRadio(t, tr, &schema.FromRadio{Rebooted: true})

	waitFor(t, time.Second, func() bool { return tr.writeCount() > writesBeforeReboot })
	reconfig := tr.lastToRadio(t)
	if reconfig.WantConfigId != 42 {
		t.Fatalf("reconfigure wantConfigId = %d, want 42", reconfig.WantConfigId)
	}

	deliverFromRadio(t, tr, &schema.FromRadio{ConfigCompleteId: 42, HasConfigCompleteId: true})
	if got, want := s.Status(), Configured; got != want {
		t.Fatalf("status after reconfigure completes = %v, want %v", got, want)
	}
}

func TestSendPacketEchoesBeforeTransportWrite(t *testing.T) {
	s, tr := newConfiguredSession(t)

	var seenBeforeWrite bool
	var once sync.Once
	unsub := eventbus.Subscribe(s.Bus(), eventbus.TopicTextMessage, func(ev eventbus.TextMessageEvent) {
		once.Do(func() { seenBeforeWrite = tr.writeCount() == 1 })
	})
	defer unsub()

	_, err := s.SendPacket(context.Background(), []byte("echo me"), schema.PortTextMessage, Broadcast, PrimaryChannel, true, false, true, 0, 0)
	if err != nil {
		t.Fatalf("sendpacket: %v", err)
	}

	if !seenBeforeWrite {
		t.Fatal("expected echoed event to fire before the queued write completed")
	}
}

func TestFirmwareTooOldIsLoggedNotFatal(t *testing.T) {
	tr := &fakeTransport{}
	s := NewSession(tr, WithLockstepID(1), WithMinimumFirmwareVersion("2.3.2"))
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	var gotMetadata bool
	unsub := eventbus.Subscribe(s.Bus(), eventbus.TopicMetadata, func(eventbus.MetadataEvent) { gotMetadata = true })
	defer unsub()

	deliverFromRadio(t, tr, &schema.FromRadio{Metadata: &schema.DeviceMetadata{FirmwareVersion: "2.1.0"}})

	if !gotMetadata {
		t.Fatal("expected metadata event even when firmware is below the minimum")
	}
	if got, want := s.Status(), Configuring; got != want {
		t.Fatalf("status should be unaffected by a firmware warning: got %v, want %v", got, want)
	}
}

func TestSetConfigOpensAndCommitClosesPendingChanges(t *testing.T) {
	s, _ := newConfiguredSession(t)

	if s.PendingChanges() {
		t.Fatal("no edit window should be open yet")
	}
	if _, err := s.SetConfig(context.Background(), &schema.Config{Variant: 1}); err != nil {
		t.Fatalf("setconfig: %v", err)
	}
	if !s.PendingChanges() {
		t.Fatal("setconfig should have opened an edit window")
	}
	if _, err := s.CommitEditSettings(context.Background()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if s.PendingChanges() {
		t.Fatal("commit should have closed the edit window")
	}
}

func TestSecondSetConfigDoesNotReopenEditWindow(t *testing.T) {
	s, tr := newConfiguredSession(t)

	if _, err := s.SetConfig(context.Background(), &schema.Config{Variant: 1}); err != nil {
		t.Fatalf("setconfig: %v", err)
	}
	waitFor(t, time.Second, func() bool { return tr.writeCount() > 2 })
	countAfterFirst := tr.writeCount()

	if _, err := s.SetConfig(context.Background(), &schema.Config{Variant: 2}); err != nil {
		t.Fatalf("second setconfig: %v", err)
	}
	waitFor(t, time.Second, func() bool { return tr.writeCount() > countAfterFirst })

	// exactly one additional write (the second SetConfig's admin frame,
	// no extra BeginEditSettings frame in between).
	if got, want := tr.writeCount(), countAfterFirst+1; got != want {
		t.Fatalf("writes = %d, want %d", got, want)
	}
}

func TestDisconnectCancelsPendingSends(t *testing.T) {
	s, _ := newConfiguredSession(t)

	future, err := s.SendText(context.Background(), "in flight", Broadcast, PrimaryChannel, true)
	if err != nil {
		t.Fatalf("sendtext: %v", err)
	}

	if err := s.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}

	res := <-future
	if !errors.Is(res.Err, queue.ErrCancelled) {
		t.Fatalf("expected cancellation, got %v", res.Err)
	}
}

func TestSendFileTransfersOverXModem(t *testing.T) {
	s, tr := newConfiguredSession(t)
	baseline := tr.writeCount()

	done := make(chan error, 1)
	go func() { done <- s.SendFile(context.Background(), []byte("one block of data")) }()

	waitFor(t, time.Second, func() bool { return tr.writeCount() > baseline })
	block := tr.lastToRadio(t).XmodemPacket
	if block.Control != schema.XModemSOH || block.Seq != 1 {
		t.Fatalf("expected SOH seq 1, got control=%v seq=%d", block.Control, block.Seq)
	}
	deliverFromRadio(t, tr, &schema.FromRadio{XmodemPacket: &schema.XModem{Control: schema.XModemACK, Seq: 1}})

	waitFor(t, time.Second, func() bool { return tr.writeCount() > baseline+1 })
	eot := tr.lastToRadio(t).XmodemPacket
	if eot.Control != schema.XModemEOT {
		t.Fatalf("expected EOT, got control=%v", eot.Control)
	}
	deliverFromRadio(t, tr, &schema.FromRadio{XmodemPacket: &schema.XModem{Control: schema.XModemACK}})

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("sendfile: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("sendfile never returned")
	}
}

func TestReceivedFilesYieldsInboundTransfer(t *testing.T) {
	s, tr := newConfiguredSession(t)

	deliverFromRadio(t, tr, &schema.FromRadio{XmodemPacket: &schema.XModem{
		Control: schema.XModemSOH,
		Seq:     1,
		Crc16:   uint32(xmodemCRC(t, []byte("payload"))),
		Buffer:  []byte("payload"),
	}})
	deliverFromRadio(t, tr, &schema.FromRadio{XmodemPacket: &schema.XModem{Control: schema.XModemEOT}})

	select {
	case got := <-s.ReceivedFiles():
		if string(got) != "payload" {
			t.Fatalf("received = %q, want %q", got, "payload")
		}
	case <-time.After(time.Second):
		t.Fatal("no completed transfer delivered")
	}
}

func mustMarshal(t *testing.T, m interface{ MarshalVT() ([]byte, error) }) []byte {
	b, err := m.MarshalVT()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return b
}
