package avapi

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/bluenviron/mediacommon/v2/pkg/codecs/h264"
	"github.com/pion/rtp"
)

const (
	rtpHeaderSize  = 12
	rtpClockRate   = 90000
	nalTypeFUA     = 28 // Fragmentation Unit A
	defaultRTPMTU  = 1200
	defaultRTPType = 96
)

// RTPSinkConfig configures an RTPSink. Zero values select defaults.
type RTPSinkConfig struct {
	SSRC        uint32 // random if 0
	PayloadType uint8  // 96 if 0
	MTU         int    // 1200 if 0
}

// RTPSink forwards H.264 frames as RTP packets (RFC 6184 single NAL unit and
// FU-A modes), one Write per packet. Frames of other codecs are skipped.
type RTPSink struct {
	w           io.Writer
	ssrc        uint32
	payloadType uint8
	mtu         int
	sequencer   rtp.Sequencer

	started bool
	firstMs uint32
	firstTS uint32
	skipped int
}

// NewRTPSink returns a sink writing marshaled packets to w, typically a
// connected UDP socket.
func NewRTPSink(w io.Writer, conf RTPSinkConfig) *RTPSink {
	if conf.SSRC == 0 {
		conf.SSRC = rand.Uint32()
	}
	if conf.PayloadType == 0 {
		conf.PayloadType = defaultRTPType
	}
	if conf.MTU <= rtpHeaderSize+2 {
		conf.MTU = defaultRTPMTU
	}
	return &RTPSink{
		w:           w,
		ssrc:        conf.SSRC,
		payloadType: conf.PayloadType,
		mtu:         conf.MTU,
		sequencer:   rtp.NewRandomSequencer(),
		firstTS:     rand.Uint32(),
	}
}

// WriteFrame packetizes f and writes the packets.
func (s *RTPSink) WriteFrame(f *Frame) error {
	if f.Info.Codec != CodecH264 {
		s.skipped++
		return nil
	}

	var au h264.AnnexB
	if err := au.Unmarshal(f.Data); err != nil {
		s.skipped++
		return nil
	}

	for _, pkt := range s.packetize(au, s.timestamp(f.Info.Timestamp)) {
		buf, err := pkt.Marshal()
		if err != nil {
			return fmt.Errorf("marshal rtp: %w", err)
		}
		if _, err := s.w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// Skipped returns the number of frames that were not forwarded.
func (s *RTPSink) Skipped() int { return s.skipped }

// SSRC returns the stream's synchronization source.
func (s *RTPSink) SSRC() uint32 { return s.ssrc }

// timestamp maps the device's millisecond clock onto a 90 kHz RTP clock.
func (s *RTPSink) timestamp(ms uint32) uint32 {
	if !s.started {
		s.started = true
		s.firstMs = ms
	}
	return s.firstTS + (ms-s.firstMs)*(rtpClockRate/1000)
}

func (s *RTPSink) packetize(au [][]byte, timestamp uint32) []*rtp.Packet {
	var packets []*rtp.Packet

	for i, nalu := range au {
		if len(nalu) == 0 {
			continue
		}
		isLast := i == len(au)-1

		if len(nalu) <= s.mtu-rtpHeaderSize {
			packets = append(packets, s.packet(nalu, timestamp, isLast))
			continue
		}
		packets = append(packets, s.fragment(nalu, timestamp, isLast)...)
	}

	return packets
}

// fragment splits a NAL unit into FU-A packets.
func (s *RTPSink) fragment(nalu []byte, timestamp uint32, isLastNALU bool) []*rtp.Packet {
	nalType := nalu[0] & 0x1F
	nri := nalu[0] & 0x60

	payload := nalu[1:]
	maxPayload := s.mtu - rtpHeaderSize - 2 // FU indicator + FU header

	var packets []*rtp.Packet
	for offset := 0; offset < len(payload); {
		end := min(offset+maxPayload, len(payload))

		fuHeader := nalType
		if offset == 0 {
			fuHeader |= 0x80
		}
		if end == len(payload) {
			fuHeader |= 0x40
		}

		buf := make([]byte, 2+end-offset)
		buf[0] = nri | nalTypeFUA
		buf[1] = fuHeader
		copy(buf[2:], payload[offset:end])

		packets = append(packets, s.packet(buf, timestamp, end == len(payload) && isLastNALU))
		offset = end
	}

	return packets
}

func (s *RTPSink) packet(payload []byte, timestamp uint32, marker bool) *rtp.Packet {
	return &rtp.Packet{
		Header: rtp.Header{
			Version:        2,
			Marker:         marker,
			PayloadType:    s.payloadType,
			SequenceNumber: s.sequencer.NextSequenceNumber(),
			Timestamp:      timestamp,
			SSRC:           s.ssrc,
		},
		Payload: payload,
	}
}
