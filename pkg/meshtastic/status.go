package meshtastic

import "fmt"

// DeviceStatus is the session's view of the connection/configuration
// lifecycle of the radio it is attached to.
type DeviceStatus int

const (
	Disconnected DeviceStatus = iota
	Connecting
	Connected
	Configuring
	Configured
	Reconnecting
	Disconnecting
	FirmwareUpdate
	Restarting
)

func (s DeviceStatus) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Configuring:
		return "configuring"
	case Configured:
		return "configured"
	case Reconnecting:
		return "reconnecting"
	case Disconnecting:
		return "disconnecting"
	case FirmwareUpdate:
		return "firmware-update"
	case Restarting:
		return "restarting"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// validTransition enforces the one hard invariant on the status machine:
// leaving Configured must pass through Configuring or Disconnecting, never
// straight to some other state.
func validTransition(from, to DeviceStatus) bool {
	if from == Configured && to != Configuring && to != Disconnecting && to != Configured {
		return false
	}
	return true
}
