package meshtastic

import (
	"context"
	"fmt"
	"time"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/frame"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/queue"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/schema"
)

// PrimaryChannel is channel index 0, used for local administrative
// traffic and as the default application channel.
const PrimaryChannel uint32 = 0

// SendPacket builds and transmits a mesh packet carrying payload on port,
// addressed to dest on channel. It assigns a fresh packet id, enqueues
// the marshaled frame on the transmit queue, and returns the queue
// entry's future. If echoResponse is true, the packet is dispatched into
// the session's own inbound handling (with rxTime set to now) before the
// transport write is scheduled, so a caller sees its own send echoed.
func (s *Session) SendPacket(
	ctx context.Context,
	payload []byte,
	port schema.PortNum,
	dest Destination,
	channel uint32,
	wantAck, wantResponse, echoResponse bool,
	replyID, emoji uint32,
) (<-chan queue.Result, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrSessionClosed
	}

	id, err := s.ids.next()
	if err != nil {
		return nil, err
	}

	myNode := s.MyNodeNum()
	to := dest.resolve(myNode)

	data := &schema.Data{
		Portnum:      port,
		Payload:      payload,
		WantResponse: wantResponse,
		Dest:         to,
		Source:       myNode,
		ReplyId:      replyID,
		Emoji:        emoji,
	}
	pkt := &schema.MeshPacket{
		From:    myNode,
		To:      to,
		Channel: channel,
		Id:      id,
		WantAck: wantAck,
		Decoded: data,
	}

	wire, err := (&schema.ToRadio{Packet: pkt}).MarshalVT()
	if err != nil {
		return nil, fmt.Errorf("meshtastic: marshal mesh packet: %w", err)
	}
	if len(wire) > frame.MaxPayload {
		return nil, ErrPayloadTooLarge
	}

	if echoResponse {
		pkt.RxTime = uint32(time.Now().Unix())
		s.handleMeshPacket(pkt)
	}

	future, err := s.queue.Enqueue(id, wire)
	if err != nil {
		return nil, err
	}
	go func() {
		if err := s.queue.Drain(ctx, s.transportWrite); err != nil {
			s.log.Warn("queue drain error", "error", err)
		}
	}()
	return future, nil
}

// SendText sends a plain-text message.
func (s *Session) SendText(ctx context.Context, text string, dest Destination, channel uint32, wantAck bool) (<-chan queue.Result, error) {
	return s.SendPacket(ctx, []byte(text), schema.PortTextMessage, dest, channel, wantAck, false, false, 0, 0)
}

// SendWaypoint shares a named point of interest.
func (s *Session) SendWaypoint(ctx context.Context, wp *schema.Waypoint, dest Destination, channel uint32) (<-chan queue.Result, error) {
	payload, err := wp.MarshalVT()
	if err != nil {
		return nil, fmt.Errorf("meshtastic: marshal waypoint: %w", err)
	}
	return s.SendPacket(ctx, payload, schema.PortWaypoint, dest, channel, true, false, false, 0, 0)
}

// TraceRoute requests the path to dest.
func (s *Session) TraceRoute(ctx context.Context, dest Destination) (<-chan queue.Result, error) {
	payload, err := (&schema.RouteDiscovery{}).MarshalVT()
	if err != nil {
		return nil, fmt.Errorf("meshtastic: marshal traceroute request: %w", err)
	}
	return s.SendPacket(ctx, payload, schema.PortTraceroute, dest, PrimaryChannel, true, true, false, 0, 0)
}

// RequestPosition asks dest to report its current position.
func (s *Session) RequestPosition(ctx context.Context, dest Destination) (<-chan queue.Result, error) {
	return s.SendPacket(ctx, nil, schema.PortPosition, dest, PrimaryChannel, true, true, false, 0, 0)
}

func (s *Session) sendAdmin(ctx context.Context, admin *schema.AdminMessage, dest Destination) (<-chan queue.Result, error) {
	payload, err := admin.MarshalVT()
	if err != nil {
		return nil, fmt.Errorf("meshtastic: marshal admin message: %w", err)
	}
	return s.SendPacket(ctx, payload, schema.PortAdmin, dest, PrimaryChannel, true, false, false, 0, 0)
}

// SetConfig applies a core configuration section. The first call while
// no edit-settings window is open automatically dispatches
// BeginEditSettings first and marks PendingChanges; CommitEditSettings
// must be called later to clear it.
func (s *Session) SetConfig(ctx context.Context, cfg *schema.Config) (<-chan queue.Result, error) {
	if !s.PendingChanges() {
		if _, err := s.BeginEditSettings(ctx); err != nil {
			return nil, err
		}
		s.setPendingChanges(true)
	}
	return s.sendAdmin(ctx, &schema.AdminMessage{SetConfig: cfg}, Self)
}

// SetLoRaPreset is a convenience over SetConfig for the common case of
// applying one of the named LoRa radio presets.
func (s *Session) SetLoRaPreset(ctx context.Context, preset RadioPreset) (<-chan queue.Result, error) {
	return s.SetConfig(ctx, &schema.Config{Variant: configVariantLoRa, Payload: []byte(preset.Name)})
}

// configVariantLoRa is this module's own tag for the LoRa config
// section; Config.Payload is otherwise opaque (see schema.Config).
const configVariantLoRa = 1

// SetModuleConfig applies a module configuration section.
func (s *Session) SetModuleConfig(ctx context.Context, cfg *schema.ModuleConfig) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{SetModuleConfig: cfg}, Self)
}

// SetChannel writes one channel slot.
func (s *Session) SetChannel(ctx context.Context, ch *schema.Channel) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{SetChannel: ch}, Self)
}

// ClearChannel disables the channel at index by writing an empty slot
// over it; there is no dedicated wire op for this in the admin schema.
func (s *Session) ClearChannel(ctx context.Context, index uint32) (<-chan queue.Result, error) {
	return s.SetChannel(ctx, &schema.Channel{Index: index})
}

// SetOwner sets the node's user/owner identity.
func (s *Session) SetOwner(ctx context.Context, owner *schema.User) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{SetOwner: owner}, Self)
}

// SetPosition sets a fixed (non-GPS) position.
func (s *Session) SetPosition(ctx context.Context, pos *schema.Position) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{SetFixedPosition: pos}, Self)
}

// SetCannedMessages replaces the canned-message module's message list.
func (s *Session) SetCannedMessages(ctx context.Context, messages string) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{SetCannedMessageModuleMessages: messages, HasSetCanned: true}, Self)
}

// GetChannel requests the channel slot at index.
func (s *Session) GetChannel(ctx context.Context, index uint32) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{GetChannelRequest: index, HasGetChannelReq: true}, Self)
}

// GetConfig requests a core configuration section by its variant tag.
func (s *Session) GetConfig(ctx context.Context, variant uint32) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{GetConfigRequest: variant, HasGetConfigReq: true}, Self)
}

// GetModuleConfig requests a module configuration section by its variant tag.
func (s *Session) GetModuleConfig(ctx context.Context, variant uint32) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{GetModuleConfigRequest: variant, HasGetModuleConfigReq: true}, Self)
}

// GetOwner requests the node's user/owner identity.
func (s *Session) GetOwner(ctx context.Context) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{GetOwnerRequest: true, HasGetOwnerReq: true}, Self)
}

// GetMetadata requests firmware/hardware metadata from nodeNum, which may
// be a remote node reached over the mesh rather than the local radio.
func (s *Session) GetMetadata(ctx context.Context, nodeNum uint32) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{GetDeviceMetadataRequest: true, HasGetMetadataReq: true}, Node(nodeNum))
}

// BeginEditSettings opens a settings edit window.
func (s *Session) BeginEditSettings(ctx context.Context) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{BeginEditSettings: true, HasBeginEdit: true}, Self)
}

// CommitEditSettings closes the settings edit window opened by
// BeginEditSettings (directly, or implicitly via SetConfig), clearing
// PendingChanges.
func (s *Session) CommitEditSettings(ctx context.Context) (<-chan queue.Result, error) {
	future, err := s.sendAdmin(ctx, &schema.AdminMessage{CommitEditSettings: true, HasCommitEdit: true}, Self)
	if err != nil {
		return nil, err
	}
	s.setPendingChanges(false)
	return future, nil
}

// ResetNodes clears the local node database.
func (s *Session) ResetNodes(ctx context.Context) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{NodedbReset: 1, HasNodedbReset: true}, Self)
}

// RemoveNodeByNum removes a single node from the local node database.
func (s *Session) RemoveNodeByNum(ctx context.Context, num uint32) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{RemoveByNodenum: num, HasRemoveByNodenum: true}, Self)
}

// Shutdown powers the device off after seconds. A threshold of 2 seconds
// or less is treated as immediate for logging purposes; the wire value
// carries the raw seconds regardless.
func (s *Session) Shutdown(ctx context.Context, seconds int32) (<-chan queue.Result, error) {
	if seconds <= 2 {
		s.log.Info("shutting down now")
	} else {
		s.log.Info("shutting down", "seconds", seconds)
	}
	return s.sendAdmin(ctx, &schema.AdminMessage{ShutdownSeconds: seconds, HasShutdown: true}, Self)
}

// Reboot restarts the device after seconds.
func (s *Session) Reboot(ctx context.Context, seconds int32) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{RebootSeconds: seconds, HasReboot: true}, Self)
}

// RebootOta restarts the device into its OTA update mode after seconds.
func (s *Session) RebootOta(ctx context.Context, seconds int32) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{RebootOtaSeconds: seconds, HasRebootOta: true}, Self)
}

// FactoryResetDevice erases all device state, including the node database.
func (s *Session) FactoryResetDevice(ctx context.Context) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{FactoryResetDevice: 1, HasFactoryResetDevice: true}, Self)
}

// FactoryResetConfig erases configuration but preserves the node database.
func (s *Session) FactoryResetConfig(ctx context.Context) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{FactoryResetConfig: 1, HasFactoryResetConfig: true}, Self)
}

// EnterDfuMode reboots the device into its firmware-flashing DFU mode.
func (s *Session) EnterDfuMode(ctx context.Context) (<-chan queue.Result, error) {
	return s.sendAdmin(ctx, &schema.AdminMessage{EnterDfuModeRequest: true, HasEnterDfu: true}, Self)
}

// SendFile transfers data to the device over the in-band block protocol,
// blocking until the last block's EOT is acknowledged, the peer cancels,
// or ctx is done. Only one transfer may be in flight at a time.
func (s *Session) SendFile(ctx context.Context, data []byte) error {
	return s.xmodem.Send(ctx, data)
}

// ReceivedFiles yields one reassembled buffer each time the device
// completes a peer-initiated block transfer to this session.
func (s *Session) ReceivedFiles() <-chan []byte {
	return s.xmodem.Received()
}
