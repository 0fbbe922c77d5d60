package meshtastic

import (
	"errors"
	"fmt"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/schema"
)

var (
	// ErrPayloadTooLarge is raised synchronously from the enqueue path
	// when an outbound frame would exceed the wire's 512-byte budget.
	ErrPayloadTooLarge = errors.New("meshtastic: outbound payload exceeds 512 bytes")

	// ErrProtocolError marks a malformed frame or a mesh-packet payload
	// variant that must not be silently ignored. The frame is dropped and
	// the stream continues.
	ErrProtocolError = errors.New("meshtastic: protocol error")

	// ErrRandomnessUnavailable is raised from the packet-id generator when
	// its entropy source fails or never produces a non-zero value.
	ErrRandomnessUnavailable = errors.New("meshtastic: randomness unavailable")

	// ErrFirmwareTooOld marks a metadata report below the minimum
	// supported firmware version. The session logs at error level and
	// continues; disconnecting is the caller's policy decision.
	ErrFirmwareTooOld = errors.New("meshtastic: firmware version below minimum supported")

	// ErrInvalidStatusTransition marks an attempted device-status
	// transition that violates the Configured invariant.
	ErrInvalidStatusTransition = errors.New("meshtastic: invalid device status transition")

	// ErrSessionClosed is returned by SendPacket, and so by every send and
	// admin operation built on it, once Close has run.
	ErrSessionClosed = errors.New("meshtastic: session closed")
)

// TransportError wraps an underlying I/O failure from the transport. It is
// surfaced via the affected queue entry's future and drives a transition
// to Disconnected.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("meshtastic: transport error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// RoutingError is the radio-reported delivery failure for a specific
// packet id, surfaced via that id's queue entry future.
type RoutingError struct {
	Reason schema.RoutingError
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("meshtastic: routing error: %s", e.Reason)
}

// ConfigLockstepMismatch marks a received configCompleteId that did not
// match the session's stored lockstep identifier. Logged; the lifecycle
// proceeds to Configured regardless (a known firmware quirk).
type ConfigLockstepMismatch struct {
	Want, Got uint32
}

func (e *ConfigLockstepMismatch) Error() string {
	return fmt.Sprintf("meshtastic: config lockstep mismatch: want %d got %d", e.Want, e.Got)
}
