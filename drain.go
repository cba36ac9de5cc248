package avapi

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Frame is one payload delivered by avRecvFrameData2.
// Data aliases the receive buffer and is only valid until WriteFrame returns.
type Frame struct {
	Data         []byte
	Info         FrameInfo
	Index        uint32
	ActualSize   int
	ExpectedSize int
}

// DrainStats counts what a Drain call saw.
type DrainStats struct {
	Frames     int
	Bytes      int64
	Idle       int
	Empty      int
	Lost       int
	Incomplete int
	Unknown    int

	// Terminal is the code that ended the drain, or 0.
	Terminal Code
}

// Drain receives frames from the AV channel and writes them to sink until
// the SDK reports the session is gone, ctx is done, Interrupt is called or
// the sink fails.
//
// Ending on a terminal SDK code (remote close, remote timeout, invalid
// session id) is a normal exit: the error is nil and stats.Terminal is set.
// Lost and incomplete frames are counted and skipped.
func (s *Session) Drain(ctx context.Context, sink FrameSink) (DrainStats, error) {
	var stats DrainStats
	if err := s.usable(); err != nil {
		return stats, err
	}
	if !s.armed {
		return stats, ErrNotArmed
	}

	log := s.log.WithFields(logrus.Fields{
		"function": "Drain",
		"sid":      s.sid,
		"av_index": s.avIndex,
	})

	buf := make([]byte, FrameBufferSize)
	info := make([]byte, FrameInfoSize)
	frame := &Frame{}

	var (
		actualSize     int32
		expectedSize   int32
		actualInfoSize int32
		frameIdx       uint32
	)

	perInterval := 0
	lastBeat := s.now()

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if s.interrupt.Load() {
			return stats, ErrInterrupted
		}

		ret := s.sdk.AVRecvFrameData2(s.avIndex, buf, &actualSize, &expectedSize,
			info, &actualInfoSize, &frameIdx)

		switch {
		case ret > 0:
			n := int(ret)
			if n > len(buf) {
				stats.Unknown++
				log.WithField("size", n).Warn("Frame larger than receive buffer, dropped")
				break
			}

			frame.Data = buf[:n]
			frame.Index = frameIdx
			frame.ActualSize = int(actualSize)
			frame.ExpectedSize = int(expectedSize)
			frame.Info = FrameInfo{}
			if actualInfoSize >= FrameInfoSize {
				frame.Info, _ = ParseFrameInfo(info)
			}

			if err := sink.WriteFrame(frame); err != nil {
				return stats, fmt.Errorf("%w: %w", ErrSink, err)
			}
			perInterval++
			stats.Frames++
			stats.Bytes += int64(n)

			log.WithFields(logrus.Fields{
				"size":      n,
				"frame_idx": frameIdx,
				"codec":     frame.Info.Codec.String(),
				"key":       frame.Info.KeyFrame(),
			}).Debug("Frame received")

		case ret == 0:
			stats.Empty++

		case ret == AVErrDataNoReady:
			stats.Idle++
			if err := s.wait(ctx, s.conf.IdleInterval); err != nil {
				return stats, err
			}

		case ret == AVErrLosedThisFrame:
			stats.Lost++
			log.WithField("frame_idx", frameIdx).Debug("Frame lost")

		case ret == AVErrIncompleteFrame:
			stats.Incomplete++
			log.WithFields(logrus.Fields{
				"frame_idx": frameIdx,
				"actual":    actualSize,
				"expected":  expectedSize,
			}).Debug("Incomplete frame discarded")

		case ret.Terminal():
			stats.Terminal = ret
			log.WithFields(logrus.Fields{
				"code":   ret.String(),
				"frames": stats.Frames,
				"bytes":  stats.Bytes,
			}).Info("Session ended")
			return stats, nil

		default:
			stats.Unknown++
			log.WithField("code", ret.String()).Warn("Unclassified receive result")
		}

		if now := s.now(); now.Sub(lastBeat) >= s.conf.HeartbeatInterval {
			log.WithFields(logrus.Fields{
				"frames":   perInterval,
				"interval": now.Sub(lastBeat).Round(time.Millisecond).String(),
			}).Info("Frame rate")
			perInterval = 0
			lastBeat = now
		}
	}
}
