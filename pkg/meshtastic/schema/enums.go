package schema

// PortNum multiplexes application payloads on top of a decoded MeshPacket.
// Values follow the upstream Meshtastic portnums.proto numbering.
type PortNum uint32

const (
	PortUnknown               PortNum = 0
	PortTextMessage           PortNum = 1
	PortRemoteHardware        PortNum = 2
	PortPosition              PortNum = 3
	PortNodeInfo              PortNum = 4
	PortRouting               PortNum = 5
	PortAdmin                 PortNum = 6
	PortTextMessageCompressed PortNum = 7
	PortWaypoint              PortNum = 8
	PortAudio                 PortNum = 9
	PortDetectionSensor       PortNum = 10
	PortReply                 PortNum = 32
	PortIPTunnel              PortNum = 33
	PortPaxcounter            PortNum = 34
	PortSerial                PortNum = 64
	PortStoreForward          PortNum = 65
	PortRangeTest             PortNum = 66
	PortTelemetry             PortNum = 67
	PortZPS                   PortNum = 68
	PortSimulator             PortNum = 69
	PortTraceroute            PortNum = 70
	PortNeighborInfo          PortNum = 71
	PortATAKPlugin            PortNum = 72
	PortMapReport             PortNum = 73
	PortPrivate               PortNum = 256
	PortATAKForwarder         PortNum = 257
)

// RoutingError is the delivery-failure reason a Routing message carries.
type RoutingError uint32

const (
	RoutingErrorNone          RoutingError = 0
	RoutingErrorNoRoute       RoutingError = 1
	RoutingErrorGotNak        RoutingError = 2
	RoutingErrorTimeout       RoutingError = 3
	RoutingErrorNoInterface   RoutingError = 4
	RoutingErrorMaxRetransmit RoutingError = 5
	RoutingErrorNoChannel     RoutingError = 6
	RoutingErrorTooLarge      RoutingError = 7
	RoutingErrorNoResponse    RoutingError = 8
	RoutingErrorDutyCycle     RoutingError = 9
	RoutingErrorTransport     RoutingError = 255 // local-only: not part of the wire enum
)

func (r RoutingError) String() string {
	switch r {
	case RoutingErrorNone:
		return "none"
	case RoutingErrorNoRoute:
		return "no-route"
	case RoutingErrorGotNak:
		return "got-nak"
	case RoutingErrorTimeout:
		return "timeout"
	case RoutingErrorNoInterface:
		return "no-interface"
	case RoutingErrorMaxRetransmit:
		return "max-retransmit"
	case RoutingErrorNoChannel:
		return "no-channel"
	case RoutingErrorTooLarge:
		return "too-large"
	case RoutingErrorNoResponse:
		return "no-response"
	case RoutingErrorDutyCycle:
		return "duty-cycle"
	case RoutingErrorTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// XModemControl enumerates the control codes the XMODEM sub-protocol uses.
type XModemControl uint32

const (
	XModemNUL XModemControl = 0
	XModemSOH XModemControl = 1
	XModemSTX XModemControl = 2
	XModemEOT XModemControl = 4
	XModemACK XModemControl = 6
	XModemNAK XModemControl = 21
	XModemCAN XModemControl = 24
)
