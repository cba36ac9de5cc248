package avapi

import (
	"encoding/binary"
	"fmt"
)

// Receive buffer sizes handed to avRecvFrameData2.
const (
	FrameBufferSize = 2304000
	FrameInfoSize   = 16
)

// IO control types sent with avSendIOCtrl.
const (
	IOTypeInnerSndDataDelay uint32 = 0xFF
	IOTypeUserIPCamStart    uint32 = 0x01FF
)

// CodecID identifies the payload codec carried in FrameInfo.
type CodecID uint16

const (
	CodecUnknown CodecID = 0x00
	CodecMPEG4   CodecID = 0x4C
	CodecH263    CodecID = 0x4D
	CodecH264    CodecID = 0x4E
	CodecMJPEG   CodecID = 0x4F
	CodecH265    CodecID = 0x50
)

func (c CodecID) String() string {
	switch c {
	case CodecMPEG4:
		return "MPEG4"
	case CodecH263:
		return "H263"
	case CodecH264:
		return "H264"
	case CodecMJPEG:
		return "MJPEG"
	case CodecH265:
		return "H265"
	default:
		return fmt.Sprintf("codec(0x%02x)", uint16(c))
	}
}

// FrameFlagIFrame is set in FrameInfo.Flags for intra frames.
const FrameFlagIFrame = 0x01

// FrameInfo mirrors FRAMEINFO_t:
//
//	offset 0  uint16 codec_id
//	offset 2  uint8  flags
//	offset 3  uint8  cam_index
//	offset 4  uint8  onlineNum
//	offset 5  uint8  reserve1[3]
//	offset 8  uint32 reserve2
//	offset 12 uint32 timestamp (ms)
type FrameInfo struct {
	Codec     CodecID
	Flags     uint8
	CamIndex  uint8
	OnlineNum uint8
	Timestamp uint32
}

// KeyFrame reports whether the device marked the frame as an I-frame.
func (fi FrameInfo) KeyFrame() bool { return fi.Flags&FrameFlagIFrame != 0 }

// ParseFrameInfo decodes a native FRAMEINFO_t record.
func ParseFrameInfo(b []byte) (FrameInfo, error) {
	if len(b) < FrameInfoSize {
		return FrameInfo{}, fmt.Errorf("frame info too short: %d bytes", len(b))
	}
	return FrameInfo{
		Codec:     CodecID(binary.NativeEndian.Uint16(b[0:2])),
		Flags:     b[2],
		CamIndex:  b[3],
		OnlineNum: b[4],
		Timestamp: binary.NativeEndian.Uint32(b[12:16]),
	}, nil
}

// Marshal encodes fi in the native FRAMEINFO_t layout.
func (fi FrameInfo) Marshal() []byte {
	b := make([]byte, FrameInfoSize)
	binary.NativeEndian.PutUint16(b[0:2], uint16(fi.Codec))
	b[2] = fi.Flags
	b[3] = fi.CamIndex
	b[4] = fi.OnlineNum
	binary.NativeEndian.PutUint32(b[12:16], fi.Timestamp)
	return b
}

// AVStreamMsgSize is sizeof(SMsgAVIoctrlAVStream).
const AVStreamMsgSize = 8

// AVStreamMsg mirrors SMsgAVIoctrlAVStream, the payload of
// IOTYPE_USER_IPCAM_START: a uint32 channel followed by 4 reserved bytes.
type AVStreamMsg struct {
	Channel uint32
}

// Marshal encodes the message with its reserved bytes zeroed.
func (m AVStreamMsg) Marshal() []byte {
	b := make([]byte, AVStreamMsgSize)
	binary.NativeEndian.PutUint32(b[0:4], m.Channel)
	return b
}

// SessionMode is st_SInfo.Mode.
type SessionMode uint8

const (
	SessionModeP2P   SessionMode = 0
	SessionModeRelay SessionMode = 1
	SessionModeLAN   SessionMode = 2
)

func (m SessionMode) String() string {
	switch m {
	case SessionModeP2P:
		return "p2p"
	case SessionModeRelay:
		return "relay"
	case SessionModeLAN:
		return "lan"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// SessionInfo mirrors struct st_SInfo field for field so that its size and
// alignment match the C definition. C unsigned long maps to uint on every
// supported platform (ILP32 and LP64).
type SessionInfo struct {
	Mode          SessionMode
	CorD          int8
	UID           [21]byte
	RemoteIP      [17]byte
	RemotePort    uint16
	TXPacketCount uint
	RXPacketCount uint
	IOTCVersion   uint32
	VID           uint16
	PID           uint16
	GID           uint16
	NatType       uint8
	IsSecure      uint8
}

// RemoteAddr returns "ip:port" of the peer.
func (si *SessionInfo) RemoteAddr() string {
	return fmt.Sprintf("%s:%d", goStringFromBytes(si.RemoteIP[:]), si.RemotePort)
}

// PeerUID returns the UID recorded by the SDK for the session.
func (si *SessionInfo) PeerUID() string { return goStringFromBytes(si.UID[:]) }

// FormatVersion renders a packed IOTC version as a.b.c.d.
func FormatVersion(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
