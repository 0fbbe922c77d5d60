package serial

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic"
	"go.bug.st/serial"
)

var _ meshtastic.Transport = &StreamTransport{}

// NewTransport opens port at 115200 baud and wraps it as a StreamTransport.
func NewTransport(port string) (*StreamTransport, error) {
	mode := &serial.Mode{BaudRate: 115200}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, fmt.Errorf("meshtastic/serial: open %s: %w", port, err)
	}
	return &StreamTransport{stream: p}, nil
}

// StreamTransport implements meshtastic.Transport over a raw byte stream
// (a serial port, or any other io.ReadWriteCloser). It carries no framing
// of its own: the frame codec lives above the transport.
type StreamTransport struct {
	stream io.ReadWriteCloser
	log    *slog.Logger

	writeMu sync.Mutex

	mu     sync.Mutex
	cancel context.CancelFunc
}

// WithLogger sets the transport's logger. The default is slog.Default().
func (st *StreamTransport) WithLogger(log *slog.Logger) *StreamTransport {
	st.log = log
	return st
}

// Connect starts a background pump goroutine that reads from the stream
// and invokes onBytes with each chunk read.
func (st *StreamTransport) Connect(ctx context.Context, onBytes func([]byte)) error {
	pumpCtx, cancel := context.WithCancel(context.Background())
	st.mu.Lock()
	st.cancel = cancel
	st.mu.Unlock()

	go st.pump(pumpCtx, onBytes)
	return nil
}

func (st *StreamTransport) pump(ctx context.Context, onBytes func([]byte)) {
	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return
		}
		n, err := st.stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			onBytes(chunk)
		}
		if err != nil {
			if ctx.Err() == nil {
				st.logger().Warn("serial read pump stopped", "error", err)
			}
			return
		}
	}
}

// Disconnect stops the read pump and closes the underlying stream.
func (st *StreamTransport) Disconnect() error {
	st.mu.Lock()
	if st.cancel != nil {
		st.cancel()
	}
	st.mu.Unlock()
	return st.stream.Close()
}

// Write sends an already-framed buffer over the stream.
func (st *StreamTransport) Write(ctx context.Context, data []byte) error {
	st.writeMu.Lock()
	defer st.writeMu.Unlock()
	_, err := st.stream.Write(data)
	return err
}

// Ping reports true unconditionally: a serial connection has no
// application-level liveness probe, only the OS-level open file handle.
func (st *StreamTransport) Ping(ctx context.Context) (bool, error) {
	return true, nil
}

func (st *StreamTransport) logger() *slog.Logger {
	if st.log == nil {
		return slog.Default()
	}
	return st.log
}
