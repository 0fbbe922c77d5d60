package eventbus

import (
	"time"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/schema"
)

// Topic constants name every event kind a session dispatches. Each has a
// single Go type it is always published with; see the Publish[T] call
// sites in pkg/meshtastic for the pairing.
const (
	// Raw envelope events, dispatched before any demultiplexing.
	TopicFromRadio  Topic = "from-radio"
	TopicMeshPacket Topic = "mesh-packet"

	// Device/session lifecycle.
	TopicDeviceStatus    Topic = "device-status"
	TopicHeartbeat       Topic = "heartbeat"
	TopicPendingChanges  Topic = "pending-changes"
	TopicMyInfo          Topic = "my-info"
	TopicNodeInfo        Topic = "node-info"
	TopicConfig          Topic = "config"
	TopicModuleConfig    Topic = "module-config"
	TopicChannel         Topic = "channel"
	TopicLogRecord       Topic = "log-record"
	TopicQueueStatus     Topic = "queue-status"
	TopicMetadata        Topic = "metadata"

	// Decoded application-port events.
	TopicTextMessage  Topic = "text-message"
	TopicPosition     Topic = "position"
	TopicUser         Topic = "user"
	TopicWaypoint     Topic = "waypoint"
	TopicTelemetry    Topic = "telemetry"
	TopicTraceRoute   Topic = "traceroute"
	TopicNeighborInfo Topic = "neighbor-info"
	TopicPaxcount     Topic = "paxcount"
	TopicRouting      Topic = "routing"
	TopicHardware     Topic = "hardware"
	TopicAdmin        Topic = "admin"
	TopicRawPort      Topic = "raw-port"
)

// PacketKind distinguishes a broadcast mesh packet from one addressed to
// a single node.
type PacketKind int

const (
	Direct PacketKind = iota
	Broadcast
)

// PacketMetadata is attached to every decoded application-port event.
type PacketMetadata struct {
	ID      uint32
	RxTime  time.Time
	From    uint32
	To      uint32
	Channel uint32
	Kind    PacketKind
}

// FromRadioEvent carries every fromRadio envelope, decoded or not, before
// the session demultiplexes it by payload variant.
type FromRadioEvent struct {
	Message *schema.FromRadio
}

// MeshPacketEvent carries every mesh packet the session sees, before its
// decoded payload is dispatched as a typed event.
type MeshPacketEvent struct {
	Packet *schema.MeshPacket
}

// HeartbeatEvent fires whenever a mesh packet arrives from a node other
// than the local device.
type HeartbeatEvent struct {
	At time.Time
}

// PendingChangesEvent reports whether the session has an open
// beginEditSettings/commitEditSettings window.
type PendingChangesEvent struct {
	Pending bool
}

// TextMessageEvent is a decoded TEXT_MESSAGE_APP payload.
type TextMessageEvent struct {
	Metadata PacketMetadata
	Text     string
}

// PositionEvent is a decoded POSITION_APP payload, or a position
// synthesized from an embedded NodeInfo.
type PositionEvent struct {
	Metadata PacketMetadata
	Position *schema.Position
}

// UserEvent is a decoded NODEINFO_APP payload, or a user synthesized
// from an embedded NodeInfo.
type UserEvent struct {
	Metadata PacketMetadata
	User     *schema.User
}

// WaypointEvent is a decoded WAYPOINT_APP payload.
type WaypointEvent struct {
	Metadata PacketMetadata
	Waypoint *schema.Waypoint
}

// TelemetryEvent is a decoded TELEMETRY_APP payload.
type TelemetryEvent struct {
	Metadata  PacketMetadata
	Telemetry *schema.Telemetry
}

// TraceRouteEvent is a decoded TRACEROUTE_APP payload.
type TraceRouteEvent struct {
	Metadata PacketMetadata
	Route    *schema.RouteDiscovery
}

// NeighborInfoEvent is a decoded NEIGHBORINFO_APP payload.
type NeighborInfoEvent struct {
	Metadata PacketMetadata
	Info     *schema.NeighborInfo
}

// PaxcountEvent is a decoded PAXCOUNTER_APP payload.
type PaxcountEvent struct {
	Metadata PacketMetadata
	Pax      *schema.Paxcount
}

// RoutingEvent is a decoded ROUTING_APP payload.
type RoutingEvent struct {
	Metadata  PacketMetadata
	Routing   *schema.Routing
	RequestID uint32
}

// HardwareEvent is a decoded message carried on a hardware-telemetry
// port.
type HardwareEvent struct {
	Metadata PacketMetadata
	Message  *schema.HardwareMessage
}

// AdminEvent is a decoded ADMIN_APP payload, before its response variant
// is re-routed as a top-level config/module-config/channel/owner/metadata
// event.
type AdminEvent struct {
	Metadata PacketMetadata
	Admin    *schema.AdminMessage
}

// RawPortEvent carries a port that has no dedicated schema decoder: the
// payload is passed through unparsed.
type RawPortEvent struct {
	Metadata PacketMetadata
	Port     schema.PortNum
	Payload  []byte
}

// MyInfoEvent, NodeInfoEvent, ConfigEvent, ModuleConfigEvent, ChannelEvent,
// LogRecordEvent, QueueStatusEvent and MetadataEvent mirror the device-level
// fromRadio payload variants that are not per-port application packets.
type MyInfoEvent struct{ Info *schema.MyNodeInfo }
type NodeInfoEvent struct{ Info *schema.NodeInfo }
type ConfigEvent struct{ Config *schema.Config }
type ModuleConfigEvent struct{ ModuleConfig *schema.ModuleConfig }
type ChannelEvent struct{ Channel *schema.Channel }
type LogRecordEvent struct{ Record *schema.LogRecord }
type QueueStatusEvent struct{ Status *schema.QueueStatus }
type MetadataEvent struct{ Metadata *schema.DeviceMetadata }

// DeviceStatusEvent reports a validated device status transition. The
// values are the same ordinal constants pkg/meshtastic's DeviceStatus
// type defines; duplicating the type here (as a plain int) avoids an
// import cycle back into this package.
type DeviceStatusEvent struct {
	Previous int
	Current  int
}
