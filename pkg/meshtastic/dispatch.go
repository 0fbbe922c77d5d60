package meshtastic

import (
	"context"
	"fmt"
	"time"

	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/eventbus"
	"github.com/carpaltunnel/meshtastic-go/pkg/meshtastic/schema"
)

// handleFromRadio is the fromRadio demultiplexer: every decoded message
// fires a raw onFromRadio event, then the payload variant is switched on.
func (s *Session) handleFromRadio(ctx context.Context, msg *schema.FromRadio) {
	eventbus.Publish(s.bus, eventbus.TopicFromRadio, eventbus.FromRadioEvent{Message: msg})

	switch {
	case msg.Packet != nil:
		s.handleMeshPacket(msg.Packet)
	case msg.MyInfo != nil:
		s.mu.Lock()
		s.myNode = msg.MyInfo.MyNodeNum
		s.mu.Unlock()
		eventbus.Publish(s.bus, eventbus.TopicMyInfo, eventbus.MyInfoEvent{Info: msg.MyInfo})
	case msg.NodeInfo != nil:
		eventbus.Publish(s.bus, eventbus.TopicNodeInfo, eventbus.NodeInfoEvent{Info: msg.NodeInfo})
		s.synthesizeFromNodeInfo(msg.NodeInfo)
	case msg.Config != nil:
		eventbus.Publish(s.bus, eventbus.TopicConfig, eventbus.ConfigEvent{Config: msg.Config})
	case msg.ModuleConfig != nil:
		eventbus.Publish(s.bus, eventbus.TopicModuleConfig, eventbus.ModuleConfigEvent{ModuleConfig: msg.ModuleConfig})
	case msg.Channel != nil:
		eventbus.Publish(s.bus, eventbus.TopicChannel, eventbus.ChannelEvent{Channel: msg.Channel})
	case msg.LogRecord != nil:
		eventbus.Publish(s.bus, eventbus.TopicLogRecord, eventbus.LogRecordEvent{Record: msg.LogRecord})
	case msg.HasConfigCompleteId:
		s.completeConfiguration(msg.ConfigCompleteId)
	case msg.Rebooted:
		s.log.Info("radio reported reboot, reconfiguring")
		go func() {
			if err := s.configure(ctx); err != nil {
				s.log.Error("reconfigure after reboot failed", "error", err)
			}
		}()
	case msg.QueueStatus != nil:
		eventbus.Publish(s.bus, eventbus.TopicQueueStatus, eventbus.QueueStatusEvent{Status: msg.QueueStatus})
	case msg.XmodemPacket != nil:
		if err := s.xmodem.HandlePacket(msg.XmodemPacket); err != nil {
			s.log.Warn("xmodem handler error", "error", err)
		}
	case msg.Metadata != nil:
		s.handleMetadata(msg.Metadata)
	case msg.MqttClientProxyMessage != nil:
		// Out of scope: MQTT proxying is not a supported transport.
	default:
		s.log.Warn("unhandled fromRadio payload variant")
	}
}

func (s *Session) completeConfiguration(id uint32) {
	s.mu.Lock()
	want := s.lockstepID
	s.mu.Unlock()

	if id != want {
		s.log.Warn("config lockstep mismatch", "error", &ConfigLockstepMismatch{Want: want, Got: id})
	}
	s.setStatus(Configured)
}

func (s *Session) handleMetadata(meta *schema.DeviceMetadata) {
	if compareVersions(meta.FirmwareVersion, s.minFirmwareVersion) < 0 {
		s.log.Error("firmware version below minimum supported",
			"error", ErrFirmwareTooOld, "have", meta.FirmwareVersion, "want", s.minFirmwareVersion)
	}
	eventbus.Publish(s.bus, eventbus.TopicMetadata, eventbus.MetadataEvent{Metadata: meta})
}

// synthesizeFromNodeInfo mirrors an embedded user/position onto the same
// typed events a standalone NODEINFO_APP/POSITION_APP packet would fire,
// addressed from and to the node itself on the primary channel.
func (s *Session) synthesizeFromNodeInfo(info *schema.NodeInfo) {
	meta := eventbus.PacketMetadata{
		RxTime:  time.Now(),
		From:    info.Num,
		To:      info.Num,
		Channel: PrimaryChannel,
		Kind:    eventbus.Direct,
	}
	if info.Position != nil {
		eventbus.Publish(s.bus, eventbus.TopicPosition, eventbus.PositionEvent{Metadata: meta, Position: info.Position})
	}
	if info.User != nil {
		eventbus.Publish(s.bus, eventbus.TopicUser, eventbus.UserEvent{Metadata: meta, User: info.User})
	}
}

// handleMeshPacket dispatches the raw mesh-packet event, fires a
// heartbeat for foreign traffic, then switches on the packet's payload
// variant.
func (s *Session) handleMeshPacket(pkt *schema.MeshPacket) {
	eventbus.Publish(s.bus, eventbus.TopicMeshPacket, eventbus.MeshPacketEvent{Packet: pkt})

	if pkt.From != s.MyNodeNum() {
		eventbus.Publish(s.bus, eventbus.TopicHeartbeat, eventbus.HeartbeatEvent{At: time.Now()})
	}

	switch {
	case pkt.Decoded != nil:
		s.dispatchDecoded(pkt)
	case pkt.Encrypted != nil:
		s.log.Debug("ignoring encrypted mesh packet", "from", pkt.From, "id", pkt.Id)
	default:
		s.log.Error("mesh packet has no payload variant", "error", ErrProtocolError, "from", pkt.From, "id", pkt.Id)
	}
}

// dispatchDecoded builds packet metadata, then switches on port number
// to the matching typed event, with ROUTING_APP and ADMIN_APP carrying
// extra correlation semantics.
func (s *Session) dispatchDecoded(pkt *schema.MeshPacket) {
	data := pkt.Decoded
	meta := eventbus.PacketMetadata{
		ID:      pkt.Id,
		RxTime:  rxTime(pkt.RxTime),
		From:    pkt.From,
		To:      pkt.To,
		Channel: pkt.Channel,
		Kind:    packetKind(pkt.To),
	}

	switch data.Portnum {
	case schema.PortTextMessage, schema.PortTextMessageCompressed:
		eventbus.Publish(s.bus, eventbus.TopicTextMessage, eventbus.TextMessageEvent{Metadata: meta, Text: string(data.Payload)})

	case schema.PortPosition:
		pos := new(schema.Position)
		if err := pos.UnmarshalVT(data.Payload); err != nil {
			s.log.Error("malformed position payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
			return
		}
		eventbus.Publish(s.bus, eventbus.TopicPosition, eventbus.PositionEvent{Metadata: meta, Position: pos})

	case schema.PortNodeInfo:
		u := new(schema.User)
		if err := u.UnmarshalVT(data.Payload); err != nil {
			s.log.Error("malformed nodeinfo payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
			return
		}
		eventbus.Publish(s.bus, eventbus.TopicUser, eventbus.UserEvent{Metadata: meta, User: u})

	case schema.PortWaypoint:
		wp := new(schema.Waypoint)
		if err := wp.UnmarshalVT(data.Payload); err != nil {
			s.log.Error("malformed waypoint payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
			return
		}
		eventbus.Publish(s.bus, eventbus.TopicWaypoint, eventbus.WaypointEvent{Metadata: meta, Waypoint: wp})

	case schema.PortTelemetry:
		tel := new(schema.Telemetry)
		if err := tel.UnmarshalVT(data.Payload); err != nil {
			s.log.Error("malformed telemetry payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
			return
		}
		eventbus.Publish(s.bus, eventbus.TopicTelemetry, eventbus.TelemetryEvent{Metadata: meta, Telemetry: tel})

	case schema.PortTraceroute:
		route := new(schema.RouteDiscovery)
		if err := route.UnmarshalVT(data.Payload); err != nil {
			s.log.Error("malformed traceroute payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
			return
		}
		eventbus.Publish(s.bus, eventbus.TopicTraceRoute, eventbus.TraceRouteEvent{Metadata: meta, Route: route})

	case schema.PortNeighborInfo:
		info := new(schema.NeighborInfo)
		if err := info.UnmarshalVT(data.Payload); err != nil {
			s.log.Error("malformed neighborinfo payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
			return
		}
		eventbus.Publish(s.bus, eventbus.TopicNeighborInfo, eventbus.NeighborInfoEvent{Metadata: meta, Info: info})

	case schema.PortPaxcounter:
		pax := new(schema.Paxcount)
		if err := pax.UnmarshalVT(data.Payload); err != nil {
			s.log.Error("malformed paxcounter payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
			return
		}
		eventbus.Publish(s.bus, eventbus.TopicPaxcount, eventbus.PaxcountEvent{Metadata: meta, Pax: pax})

	case schema.PortRemoteHardware:
		hw := new(schema.HardwareMessage)
		if err := hw.UnmarshalVT(data.Payload); err != nil {
			s.log.Error("malformed hardware payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
			return
		}
		eventbus.Publish(s.bus, eventbus.TopicHardware, eventbus.HardwareEvent{Metadata: meta, Message: hw})

	case schema.PortRouting:
		s.dispatchRouting(meta, data)

	case schema.PortAdmin:
		s.dispatchAdmin(meta, data)

	default:
		eventbus.Publish(s.bus, eventbus.TopicRawPort, eventbus.RawPortEvent{
			Metadata: meta, Port: data.Portnum, Payload: data.Payload,
		})
	}
}

func (s *Session) dispatchRouting(meta eventbus.PacketMetadata, data *schema.Data) {
	routing := new(schema.Routing)
	if err := routing.UnmarshalVT(data.Payload); err != nil {
		s.log.Error("malformed routing payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
		return
	}

	eventbus.Publish(s.bus, eventbus.TopicRouting, eventbus.RoutingEvent{
		Metadata: meta, Routing: routing, RequestID: data.RequestId,
	})

	if !routing.HasError {
		return
	}
	if routing.ErrorReason == schema.RoutingErrorNone {
		s.queue.ProcessAck(data.RequestId)
	} else {
		s.queue.ProcessError(data.RequestId, &RoutingError{Reason: routing.ErrorReason})
	}
}

// dispatchAdmin decodes an ADMIN_APP payload and, for response variants,
// re-routes them as the equivalent top-level event a get* admin request
// expects to observe.
func (s *Session) dispatchAdmin(meta eventbus.PacketMetadata, data *schema.Data) {
	admin := new(schema.AdminMessage)
	if err := admin.UnmarshalVT(data.Payload); err != nil {
		s.log.Error("malformed admin payload", "error", fmt.Errorf("%w: %v", ErrProtocolError, err))
		return
	}

	eventbus.Publish(s.bus, eventbus.TopicAdmin, eventbus.AdminEvent{Metadata: meta, Admin: admin})

	switch {
	case admin.GetConfigResponse != nil:
		eventbus.Publish(s.bus, eventbus.TopicConfig, eventbus.ConfigEvent{Config: admin.GetConfigResponse})
	case admin.GetModuleConfigResponse != nil:
		eventbus.Publish(s.bus, eventbus.TopicModuleConfig, eventbus.ModuleConfigEvent{ModuleConfig: admin.GetModuleConfigResponse})
	case admin.GetChannelResponse != nil:
		eventbus.Publish(s.bus, eventbus.TopicChannel, eventbus.ChannelEvent{Channel: admin.GetChannelResponse})
	case admin.GetOwnerResponse != nil:
		eventbus.Publish(s.bus, eventbus.TopicUser, eventbus.UserEvent{Metadata: meta, User: admin.GetOwnerResponse})
	case admin.GetDeviceMetadataResponse != nil:
		s.handleMetadata(admin.GetDeviceMetadataResponse)
	}
}

func packetKind(to uint32) eventbus.PacketKind {
	if to == broadcastAddr {
		return eventbus.Broadcast
	}
	return eventbus.Direct
}

func rxTime(epochSeconds uint32) time.Time {
	if epochSeconds == 0 {
		return time.Now()
	}
	return time.Unix(int64(epochSeconds), 0)
}
