package avapi

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestDrainScenarios(t *testing.T) {
	tests := []struct {
		name      string
		recv      []Code
		wantBytes int
		wantStats DrainStats
		wantWaits int
	}{
		{
			name:      "two frames then remote close",
			recv:      []Code{4, 3, AVErrSessionCloseByRemote},
			wantBytes: 7,
			wantStats: DrainStats{Frames: 2, Bytes: 7, Terminal: AVErrSessionCloseByRemote},
		},
		{
			name:      "idle then data",
			recv:      []Code{AVErrDataNoReady, AVErrDataNoReady, 10, AVErrRemoteTimeoutDisconnect},
			wantBytes: 10,
			wantStats: DrainStats{Frames: 1, Bytes: 10, Idle: 2, Terminal: AVErrRemoteTimeoutDisconnect},
			wantWaits: 2,
		},
		{
			name:      "lost frame interleaved",
			recv:      []Code{5, AVErrLosedThisFrame, AVErrIncompleteFrame, 5, IOTCErrInvalidSID},
			wantBytes: 10,
			wantStats: DrainStats{Frames: 2, Bytes: 10, Lost: 1, Incomplete: 1, Terminal: IOTCErrInvalidSID},
		},
		{
			name:      "frame fills the buffer",
			recv:      []Code{FrameBufferSize, AVErrSessionCloseByRemote},
			wantBytes: FrameBufferSize,
			wantStats: DrainStats{Frames: 1, Bytes: FrameBufferSize, Terminal: AVErrSessionCloseByRemote},
		},
		{
			name:      "unknown codes and empty reads continue",
			recv:      []Code{AVErrTimeout, 0, -99999, 2, AVErrSessionCloseByRemote},
			wantBytes: 2,
			wantStats: DrainStats{Frames: 1, Bytes: 2, Empty: 1, Unknown: 2, Terminal: AVErrSessionCloseByRemote},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeSDK()
			for _, c := range tt.recv {
				fake.recv = append(fake.recv, recvResult{code: c})
			}
			s, waits := armedSession(t, fake)

			var out bytes.Buffer
			stats, err := s.Drain(context.Background(), NewWriterSink(&out))
			require.NoError(t, err)
			require.Equal(t, tt.wantStats, stats)
			require.Equal(t, len(tt.recv), fake.recvCalls)

			require.Equal(t, tt.wantBytes, out.Len())
			require.Equal(t, bytes.Join(fake.delivered, nil), out.Bytes())

			require.Len(t, *waits, tt.wantWaits)
			for _, d := range *waits {
				require.Equal(t, 10*time.Millisecond, d)
			}
		})
	}
}

func TestDrainTerminalCodes(t *testing.T) {
	for _, code := range []Code{AVErrSessionCloseByRemote, AVErrRemoteTimeoutDisconnect, IOTCErrInvalidSID} {
		t.Run(code.String(), func(t *testing.T) {
			fake := newFakeSDK()
			// Anything after the terminal code must not be read.
			fake.recv = []recvResult{{code: code}, {code: 8}}
			s, _ := armedSession(t, fake)

			stats, err := s.Drain(context.Background(), NewWriterSink(&bytes.Buffer{}))
			require.NoError(t, err)
			require.Equal(t, code, stats.Terminal)
			require.Equal(t, 1, fake.recvCalls)
			require.Zero(t, stats.Frames)
		})
	}
}

func TestDrainFrameMetadata(t *testing.T) {
	fake := newFakeSDK()
	fake.recv = []recvResult{
		{code: 6, idx: 41, info: FrameInfo{Codec: CodecH264, Flags: FrameFlagIFrame, Timestamp: 1000}},
		{code: 4, idx: 42, expected: 9, info: FrameInfo{Codec: CodecH264, Timestamp: 1040}},
	}
	s, _ := armedSession(t, fake)

	var got []Frame
	stats, err := s.Drain(context.Background(), FrameSinkFunc(func(f *Frame) error {
		c := *f
		c.Data = append([]byte(nil), f.Data...)
		got = append(got, c)
		return nil
	}))
	require.NoError(t, err)
	require.Equal(t, 2, stats.Frames)

	require.Len(t, got, 2)
	require.Equal(t, uint32(41), got[0].Index)
	require.True(t, got[0].Info.KeyFrame())
	require.Equal(t, CodecH264, got[0].Info.Codec)
	require.Equal(t, uint32(1000), got[0].Info.Timestamp)
	require.Equal(t, fake.delivered[0], got[0].Data)

	require.Equal(t, uint32(42), got[1].Index)
	require.False(t, got[1].Info.KeyFrame())
	require.Equal(t, 4, got[1].ActualSize)
	require.Equal(t, 9, got[1].ExpectedSize)
}

func TestDrainHeartbeat(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		want     []int
	}{
		// The clock advances one second per read.
		{"every read", time.Second, []int{1, 0, 1}},
		{"every other read", 2 * time.Second, []int{1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFakeSDK()
			fake.recv = []recvResult{{code: 3}, {code: AVErrDataNoReady}, {code: 3}, {code: AVErrSessionCloseByRemote}}

			logger, hook := test.NewNullLogger()
			s, _ := newTestSession(t, fake, Config{Logger: logger, HeartbeatInterval: tt.interval})
			require.NoError(t, s.Connect("UID"))
			require.NoError(t, s.OpenAV("admin", "", 0))
			require.NoError(t, s.StartStream())

			clock := time.Unix(1700000000, 0)
			s.now = func() time.Time {
				now := clock
				clock = clock.Add(time.Second)
				return now
			}

			stats, err := s.Drain(context.Background(), NewWriterSink(&bytes.Buffer{}))
			require.NoError(t, err)
			require.Equal(t, 2, stats.Frames)

			var got []int
			for _, e := range hook.AllEntries() {
				if e.Message == "Frame rate" {
					require.Equal(t, logrus.InfoLevel, e.Level)
					got = append(got, e.Data["frames"].(int))
				}
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDrainReusesBuffers(t *testing.T) {
	fake := newFakeSDK()
	fake.recv = []recvResult{{code: 1}, {code: AVErrDataNoReady}, {code: 1}}
	s, _ := armedSession(t, fake)

	_, err := s.Drain(context.Background(), NewWriterSink(&bytes.Buffer{}))
	require.NoError(t, err)

	require.Len(t, fake.frameBufAddr, 4)
	for _, p := range fake.frameBufAddr[1:] {
		require.Same(t, fake.frameBufAddr[0], p)
	}
}

func TestDrainSinkError(t *testing.T) {
	fake := newFakeSDK()
	fake.recv = []recvResult{{code: 3}, {code: 3}}
	s, _ := armedSession(t, fake)

	errDiskFull := errors.New("disk full")
	stats, err := s.Drain(context.Background(), FrameSinkFunc(func(*Frame) error {
		return errDiskFull
	}))
	require.ErrorIs(t, err, ErrSink)
	require.ErrorIs(t, err, errDiskFull)
	require.Zero(t, stats.Frames)
	require.Equal(t, 1, fake.recvCalls)
}

func TestDrainContextCanceled(t *testing.T) {
	fake := newFakeSDK()
	fake.recv = []recvResult{{code: 3}}
	s, _ := armedSession(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Drain(ctx, NewWriterSink(&bytes.Buffer{}))
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, fake.recvCalls)
}

func TestDrainContextCanceledWhileIdle(t *testing.T) {
	fake := newFakeSDK()
	fake.recv = []recvResult{{code: AVErrDataNoReady}, {code: AVErrDataNoReady}}
	s, _ := armedSession(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	fake.onRecv = func(int) { cancel() }

	stats, err := s.Drain(ctx, NewWriterSink(&bytes.Buffer{}))
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, stats.Idle)
	require.Equal(t, 1, fake.recvCalls)
}

func TestDrainInterrupt(t *testing.T) {
	fake := newFakeSDK()
	fake.recv = []recvResult{{code: 2}, {code: 2}, {code: 2}}
	s, _ := armedSession(t, fake)

	stats, err := s.Drain(context.Background(), FrameSinkFunc(func(*Frame) error {
		s.Interrupt()
		return nil
	}))
	require.ErrorIs(t, err, ErrInterrupted)
	require.Equal(t, 1, stats.Frames)
	require.Equal(t, 1, fake.recvCalls)

	// Teardown still works after an interrupted drain.
	require.NoError(t, s.Close())
	require.Equal(t, 1, fake.count("avClientStop"))
}

func TestDrainNotArmed(t *testing.T) {
	fake := newFakeSDK()
	s, _ := newTestSession(t, fake, Config{})
	require.NoError(t, s.Connect("UID"))
	require.NoError(t, s.OpenAV("admin", "", 0))

	_, err := s.Drain(context.Background(), NewWriterSink(&bytes.Buffer{}))
	require.ErrorIs(t, err, ErrNotArmed)
	require.Zero(t, fake.recvCalls)
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
