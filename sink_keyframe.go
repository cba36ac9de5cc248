package avapi

import (
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h265"
)

// KeyFrameGate drops frames until the first random access unit, then passes
// everything through to the wrapped sink. Recording that starts mid-GOP is
// undecodable until the next key frame.
type KeyFrameGate struct {
	next    FrameSink
	open    bool
	dropped int
}

// NewKeyFrameGate wraps next.
func NewKeyFrameGate(next FrameSink) *KeyFrameGate {
	return &KeyFrameGate{next: next}
}

// WriteFrame forwards f once a random access unit has been seen.
func (g *KeyFrameGate) WriteFrame(f *Frame) error {
	if !g.open {
		if !RandomAccess(f) {
			g.dropped++
			return nil
		}
		g.open = true
	}
	return g.next.WriteFrame(f)
}

// Dropped returns the number of frames discarded while waiting.
func (g *KeyFrameGate) Dropped() int { return g.dropped }

// RandomAccess reports whether decoding can start at f.
// H.264 and H.265 payloads are inspected for IDR/CRA NAL units; other codecs
// rely on the I-frame flag set by the device.
func RandomAccess(f *Frame) bool {
	switch f.Info.Codec {
	case CodecH264, CodecH265:
		var au h264.AnnexB
		if err := au.Unmarshal(f.Data); err != nil {
			return f.Info.KeyFrame()
		}
		if f.Info.Codec == CodecH264 {
			return h264.IsRandomAccess(au)
		}
		return h265.IsRandomAccess(au)

	default:
		return f.Info.KeyFrame()
	}
}
