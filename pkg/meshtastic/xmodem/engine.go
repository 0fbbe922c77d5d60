// Package xmodem implements the in-band block-transfer sub-protocol that
// runs over the same frame channel as ordinary mesh traffic, using the
// control-code vocabulary of 1977 XMODEM (SOH, EOT, ACK, NAK, CAN) without
// any of its literal byte-level framing: every control and data message
// here is a schema.XModem value, carried as a field of ToRadio/FromRadio.
package xmodem

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/schema"
)

// BlockSize is the fixed payload size of one outbound data block,
// matching the classic XMODEM convention.
const BlockSize = 128

// DefaultMaxRetries is the number of retransmissions attempted for a
// single block before the send aborts with a CAN.
const DefaultMaxRetries = 10

var (
	// ErrRetriesExhausted is returned by Send when a block is NAKed more
	// than the engine's retry limit (DefaultMaxRetries) times in a row.
	ErrRetriesExhausted = errors.New("meshtastic/xmodem: retries exhausted")

	// ErrSendInProgress is returned by Send if another Send is already
	// running on this Engine.
	ErrSendInProgress = errors.New("meshtastic/xmodem: send already in progress")

	// ErrCancelledByPeer is returned by Send when the peer replies CAN.
	ErrCancelledByPeer = errors.New("meshtastic/xmodem: cancelled by peer")
)

// SendFunc transmits one XModem control/data message over the frame
// channel. It is supplied by the session, which wraps it around the
// transmit queue and transport.
type SendFunc func(*schema.XModem) error

// Engine runs both directions of the block-transfer protocol. The zero
// value is not usable; construct with New.
type Engine struct {
	log        *slog.Logger
	sendRaw    SendFunc
	maxRetries int

	mu        sync.Mutex
	sendWait  chan *schema.XModem // non-nil while a Send is awaiting ACK/NAK/CAN
	sending   bool

	recvBuf   []byte
	recvSeq   uint32
	completed chan []byte
}

// New returns an Engine that writes outbound control/data messages
// through sendRaw. A nil logger defaults to slog.Default().
func New(log *slog.Logger, sendRaw SendFunc) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		log:        log,
		sendRaw:    sendRaw,
		maxRetries: DefaultMaxRetries,
		completed:  make(chan []byte, 1),
	}
}

// Received yields a reassembled buffer every time a peer-initiated
// transfer completes (SOH...EOT handled by HandlePacket).
func (e *Engine) Received() <-chan []byte {
	return e.completed
}

// Send divides data into fixed-size blocks and transmits them as
// SOH(seq)+block+CRC, awaiting ACK or NAK for each before advancing, then
// sends EOT and awaits its ACK. On repeated NAK for one block beyond
// maxRetries, it sends CAN and returns ErrRetriesExhausted.
func (e *Engine) Send(ctx context.Context, data []byte) error {
	e.mu.Lock()
	if e.sending {
		e.mu.Unlock()
		return ErrSendInProgress
	}
	e.sending = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.sending = false
		e.sendWait = nil
		e.mu.Unlock()
	}()

	blocks := chunk(data, BlockSize)
	var seq uint32 = 1
	for _, block := range blocks {
		if err := e.sendBlockWithRetry(ctx, seq, block); err != nil {
			return err
		}
		seq++
	}

	return e.sendAndAwait(ctx, &schema.XModem{Control: schema.XModemEOT}, schema.XModemACK)
}

func (e *Engine) sendBlockWithRetry(ctx context.Context, seq uint32, block []byte) error {
	msg := &schema.XModem{
		Control: schema.XModemSOH,
		Seq:     seq,
		Crc16:   uint32(CRC16(block)),
		Buffer:  block,
	}

	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		resp, err := e.roundTrip(ctx, msg)
		if err != nil {
			return err
		}
		switch resp.Control {
		case schema.XModemACK:
			return nil
		case schema.XModemCAN:
			return ErrCancelledByPeer
		case schema.XModemNAK:
			e.log.Warn("xmodem block nak", "seq", seq, "attempt", attempt)
			continue
		default:
			e.log.Warn("xmodem unexpected control while awaiting ack", "control", resp.Control, "seq", seq)
			continue
		}
	}

	_ = e.sendRaw(&schema.XModem{Control: schema.XModemCAN, Seq: seq})
	return fmt.Errorf("%w: seq %d", ErrRetriesExhausted, seq)
}

func (e *Engine) sendAndAwait(ctx context.Context, msg *schema.XModem, want schema.XModemControl) error {
	resp, err := e.roundTrip(ctx, msg)
	if err != nil {
		return err
	}
	if resp.Control == schema.XModemCAN {
		return ErrCancelledByPeer
	}
	if resp.Control != want {
		return fmt.Errorf("meshtastic/xmodem: expected control %d, got %d", want, resp.Control)
	}
	return nil
}

// roundTrip sends msg and blocks until HandlePacket delivers the peer's
// reply or ctx is done.
func (e *Engine) roundTrip(ctx context.Context, msg *schema.XModem) (*schema.XModem, error) {
	wait := make(chan *schema.XModem, 1)
	e.mu.Lock()
	e.sendWait = wait
	e.mu.Unlock()

	if err := e.sendRaw(msg); err != nil {
		return nil, fmt.Errorf("meshtastic/xmodem: send: %w", err)
	}

	select {
	case resp := <-wait:
		return resp, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// HandlePacket is the session's single entry point for inbound XModem
// messages, whether they are a reply to an outstanding Send or the start
// of a peer-initiated transfer.
func (e *Engine) HandlePacket(pkt *schema.XModem) error {
	e.mu.Lock()
	wait := e.sendWait
	e.mu.Unlock()

	if wait != nil {
		select {
		case wait <- pkt:
		default:
			e.log.Warn("xmodem dropped reply: no waiter reading", "control", pkt.Control)
		}
		return nil
	}

	switch pkt.Control {
	case schema.XModemSOH:
		e.handleInboundBlock(pkt)
	case schema.XModemEOT:
		e.handleInboundEOT()
	case schema.XModemCAN:
		e.log.Warn("xmodem peer cancelled inbound transfer")
		e.recvBuf = nil
		e.recvSeq = 0
	default:
		e.log.Warn("xmodem unexpected control with no send in progress", "control", pkt.Control)
	}
	return nil
}

func (e *Engine) handleInboundBlock(pkt *schema.XModem) {
	crc := uint32(CRC16(pkt.Buffer))
	if pkt.Seq == e.recvSeq+1 && crc == pkt.Crc16 {
		e.recvBuf = append(e.recvBuf, pkt.Buffer...)
		e.recvSeq = pkt.Seq
		if err := e.sendRaw(&schema.XModem{Control: schema.XModemACK, Seq: pkt.Seq}); err != nil {
			e.log.Warn("xmodem ack send failed", "error", err)
		}
		return
	}
	if err := e.sendRaw(&schema.XModem{Control: schema.XModemNAK, Seq: pkt.Seq}); err != nil {
		e.log.Warn("xmodem nak send failed", "error", err)
	}
}

func (e *Engine) handleInboundEOT() {
	if err := e.sendRaw(&schema.XModem{Control: schema.XModemACK}); err != nil {
		e.log.Warn("xmodem eot ack send failed", "error", err)
	}
	buf := e.recvBuf
	e.recvBuf = nil
	e.recvSeq = 0

	select {
	case e.completed <- buf:
	default:
		e.log.Warn("xmodem dropped completed transfer: receiver not reading")
	}
}

func chunk(data []byte, size int) [][]byte {
	if len(data) == 0 {
		return nil
	}
	var out [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		out = append(out, data[:n])
		data = data[n:]
	}
	return out
}
