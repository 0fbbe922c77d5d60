package meshtastic

import "context"

// Transport is the byte-oriented contract a concrete adapter (serial,
// BLE, HTTP) must satisfy. The session owns the only Transport instance
// for its lifetime and is the exclusive writer to it.
type Transport interface {
	// Connect establishes the underlying connection and starts whatever
	// implementation-specific pump delivers inbound bytes: onBytes is
	// called, possibly from another goroutine, with each chunk of raw
	// bytes read from the radio, in order, for the session to feed into
	// its frame decoder.
	Connect(ctx context.Context, onBytes func([]byte)) error

	// Disconnect tears down the connection and stops the inbound pump.
	Disconnect() error

	// Write sends raw, already-framed bytes to the radio. The caller
	// (the transmit queue) guarantees at most one Write is in flight at
	// a time.
	Write(ctx context.Context, data []byte) error

	// Ping checks transport liveness without disturbing session state.
	Ping(ctx context.Context) (bool, error)
}
