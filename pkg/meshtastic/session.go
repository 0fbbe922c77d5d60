// Package meshtastic implements the host-side protocol core for talking
// to a Meshtastic radio: frame codec, transmit queue, event bus, device
// session and configuration lifecycle, and the XMODEM block-transfer
// sub-protocol, independent of which concrete transport (serial, BLE,
// HTTP) moves the bytes.
package meshtastic

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/eventbus"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/frame"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/queue"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/schema"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/xmodem"
)

// MinimumFirmwareVersion is the build-time floor below which a connected
// radio's reported firmware triggers ErrFirmwareTooOld.
const MinimumFirmwareVersion = "2.3.2"

// Session owns the queue, event bus, XMODEM engine and transport for one
// radio connection. It is the unit of isolation: multiple Sessions may
// coexist, each addressing a different radio, sharing no state.
type Session struct {
	log       *slog.Logger
	transport Transport
	queue     *queue.Queue
	bus       *eventbus.Bus
	xmodem    *xmodem.Engine
	ids       *idGenerator
	decoder   frame.Decoder

	minFirmwareVersion string

	mu             sync.Mutex
	status         DeviceStatus
	myNode         uint32
	lockstepID     uint32
	lockstepIsSet  bool
	pendingChanges bool
	closed         bool
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithLogger overrides the session's slog.Logger. The default is
// slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithLockstepID injects a fixed configuration-lockstep identifier
// instead of drawing one from the CSPRNG, for deterministic testing.
func WithLockstepID(id uint32) Option {
	return func(s *Session) {
		s.lockstepID = id
		s.lockstepIsSet = true
	}
}

// WithIDSource overrides the entropy source packet ids are drawn from,
// for deterministic testing. The default is crypto/rand.Reader.
func WithIDSource(source io.Reader) Option {
	return func(s *Session) { s.ids = newIDGenerator(source) }
}

// WithMinimumFirmwareVersion overrides MinimumFirmwareVersion.
func WithMinimumFirmwareVersion(v string) Option {
	return func(s *Session) { s.minFirmwareVersion = v }
}

// NewSession constructs a Session bound to transport. Call Connect to
// establish the connection and run the initial configuration handshake.
func NewSession(transport Transport, opts ...Option) *Session {
	s := &Session{
		log:                 slog.Default(),
		transport:           transport,
		queue:               nil, // set below once the logger option is applied
		status:              Disconnected,
		minFirmwareVersion:  MinimumFirmwareVersion,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = newIDGenerator(nil)
	}
	if !s.lockstepIsSet {
		id, err := s.ids.next()
		if err != nil {
			// CSPRNG failure at construction time is vanishingly rare;
			// fall back to a fixed sentinel rather than leaving the
			// lockstep identifier unset.
			id = 1
		}
		s.lockstepID = id
		s.lockstepIsSet = true
	}
	s.queue = queue.New(s.log)
	s.bus = eventbus.New(s.log)
	s.xmodem = xmodem.New(s.log, s.sendXModem)
	return s
}

// Bus returns the session's event bus for Subscribe[T]/Tap calls.
func (s *Session) Bus() *eventbus.Bus { return s.bus }

// Status reports the session's current device status.
func (s *Session) Status() DeviceStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// MyNodeNum reports the locally known node number, valid once a myInfo
// message has been received.
func (s *Session) MyNodeNum() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.myNode
}

// setStatus applies a validated transition and dispatches DeviceStatusEvent.
// An invalid transition is logged and otherwise ignored.
func (s *Session) setStatus(next DeviceStatus) {
	s.mu.Lock()
	prev := s.status
	if !validTransition(prev, next) {
		s.mu.Unlock()
		s.log.Error("rejected invalid device status transition", "from", prev, "to", next)
		return
	}
	s.status = next
	s.mu.Unlock()

	eventbus.Publish(s.bus, eventbus.TopicDeviceStatus, eventbus.DeviceStatusEvent{
		Previous: int(prev), Current: int(next),
	})
}

// Connect opens the transport, wires its inbound byte pump into the
// frame decoder, and runs the initial configuration handshake.
func (s *Session) Connect(ctx context.Context) error {
	s.setStatus(Connecting)
	if err := s.transport.Connect(ctx, s.onBytes); err != nil {
		s.setStatus(Disconnected)
		return &TransportError{Err: err}
	}
	s.setStatus(Connected)
	return s.configure(ctx)
}

// configure transitions to Configuring and sends a fresh wantConfigId
// frame carrying the session's lockstep identifier.
func (s *Session) configure(ctx context.Context) error {
	s.setStatus(Configuring)

	msg := &schema.ToRadio{WantConfigId: s.lockstepIDValue()}
	payload, err := msg.MarshalVT()
	if err != nil {
		return fmt.Errorf("meshtastic: marshal wantConfigId: %w", err)
	}
	return s.writeControlFrame(ctx, payload)
}

func (s *Session) lockstepIDValue() uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lockstepID
}

// writeControlFrame frames and writes payload through the queue's shared
// single-writer slot, without creating a trackable queue entry.
func (s *Session) writeControlFrame(ctx context.Context, payload []byte) error {
	return s.queue.WriteDirect(ctx, s.transportWrite, payload)
}

func (s *Session) transportWrite(ctx context.Context, payload []byte) error {
	framed, err := frame.Encode(payload)
	if err != nil {
		return err
	}
	if err := s.transport.Write(ctx, framed); err != nil {
		s.setStatus(Disconnecting)
		s.setStatus(Disconnected)
		return &TransportError{Err: err}
	}
	return nil
}

func (s *Session) sendXModem(msg *schema.XModem) error {
	toRadio := &schema.ToRadio{XmodemPacket: msg}
	payload, err := toRadio.MarshalVT()
	if err != nil {
		return fmt.Errorf("meshtastic: marshal xmodem packet: %w", err)
	}
	return s.writeControlFrame(context.Background(), payload)
}

// onBytes is the transport's inbound pump callback: it feeds raw bytes
// into the frame decoder and dispatches each reassembled FromRadio.
func (s *Session) onBytes(chunk []byte) {
	for _, payload := range s.decoder.Feed(chunk) {
		msg := new(schema.FromRadio)
		if err := msg.UnmarshalVT(payload); err != nil {
			s.log.Error("dropping malformed frame", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
			continue
		}
		s.handleFromRadio(context.Background(), msg)
	}
}

// Disconnect tears down the transport and cancels every pending send.
func (s *Session) Disconnect() error {
	s.setStatus(Disconnecting)
	s.queue.Clear()
	err := s.transport.Disconnect()
	s.setStatus(Disconnected)
	return err
}

// Close tears down the session: disconnects the transport, cancels
// pending sends, and releases the event bus's tap goroutine. The Session
// must not be used after Close returns.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.Disconnect()
	s.bus.Close()
	return err
}

func (s *Session) setPendingChanges(pending bool) {
	s.mu.Lock()
	s.pendingChanges = pending
	s.mu.Unlock()
	eventbus.Publish(s.bus, eventbus.TopicPendingChanges, eventbus.PendingChangesEvent{Pending: pending})
}

// PendingChanges reports whether an edit-settings window is open.
func (s *Session) PendingChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingChanges
}
