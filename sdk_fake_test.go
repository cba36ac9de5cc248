package avapi

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type recvResult struct {
	code     Code
	info     FrameInfo
	idx      uint32
	expected int32
}

type ioctrl struct {
	ioType uint32
	data   []byte
}

// fakeSDK records every call and replays scripted results.
type fakeSDK struct {
	calls []string

	initCode    Code
	avInitCode  Code
	sid         Code
	connectCode Code
	avIndex     Code
	checkCodes  []Code
	ioctrlCodes []Code
	recv        []recvResult

	masters      []string
	uid          []byte
	account      []byte
	password     []byte
	timeoutSec   uint32
	channelID    uint8
	closedSIDs   []int32
	stoppedAVs   []int32
	ioctrls      []ioctrl
	delivered    [][]byte
	recvCalls    int
	checkCalls   int
	onRecv       func(n int)
	frameBufAddr []*byte
}

func newFakeSDK() *fakeSDK {
	return &fakeSDK{
		sid:     3,
		avIndex: 7,
	}
}

func (f *fakeSDK) record(name string) { f.calls = append(f.calls, name) }

func (f *fakeSDK) IOTCInitialize(udpPort uint16, m1, m2, m3, m4 CString) Code {
	f.record("IOTC_Initialize")
	for _, m := range []CString{m1, m2, m3, m4} {
		f.masters = append(f.masters, string(m))
	}
	return f.initCode
}

func (f *fakeSDK) IOTCGetVersion() uint32 {
	f.record("IOTC_Get_Version")
	return 0x01020304
}

func (f *fakeSDK) IOTCGetSessionID() Code {
	f.record("IOTC_Get_SessionID")
	return f.sid
}

func (f *fakeSDK) IOTCConnectByUIDParallel(uid CString, sid int32) Code {
	f.record("IOTC_Connect_ByUID_Parallel")
	f.uid = append([]byte(nil), uid...)
	return f.connectCode
}

func (f *fakeSDK) IOTCSessionCheck(sid int32, info *SessionInfo) Code {
	f.record("IOTC_Session_Check")
	f.checkCalls++
	if len(f.checkCodes) == 0 {
		info.Mode = SessionModeLAN
		copy(info.RemoteIP[:], "192.168.1.20")
		info.RemotePort = 32100
		return 0
	}
	code := f.checkCodes[0]
	if len(f.checkCodes) > 1 {
		f.checkCodes = f.checkCodes[1:]
	}
	return code
}

func (f *fakeSDK) IOTCSessionClose(sid int32) {
	f.record("IOTC_Session_Close")
	f.closedSIDs = append(f.closedSIDs, sid)
}

func (f *fakeSDK) IOTCDeInitialize() Code {
	f.record("IOTC_DeInitialize")
	return 0
}

func (f *fakeSDK) AVInitialize(maxChannels int32) Code {
	f.record("avInitialize")
	return f.avInitCode
}

func (f *fakeSDK) AVGetAVApiVer() int32 {
	f.record("avGetAVApiVer")
	return 0x03010203
}

func (f *fakeSDK) AVClientStart2(sid int32, account, password CString, timeoutSec uint32, servType *uint32, channelID uint8, resend *int32) Code {
	f.record("avClientStart2")
	f.account = append([]byte(nil), account...)
	f.password = append([]byte(nil), password...)
	f.timeoutSec = timeoutSec
	f.channelID = channelID
	*servType = 0x0C
	*resend = 0
	return f.avIndex
}

func (f *fakeSDK) AVSendIOCtrl(avIndex int32, ioType uint32, data []byte) Code {
	f.record("avSendIOCtrl")
	f.ioctrls = append(f.ioctrls, ioctrl{ioType: ioType, data: append([]byte(nil), data...)})
	if len(f.ioctrlCodes) == 0 {
		return 0
	}
	code := f.ioctrlCodes[0]
	f.ioctrlCodes = f.ioctrlCodes[1:]
	return code
}

func (f *fakeSDK) AVRecvFrameData2(avIndex int32, frame []byte, actualSize, expectedSize *int32, info []byte, actualInfoSize *int32, frameIdx *uint32) Code {
	f.recvCalls++
	f.frameBufAddr = append(f.frameBufAddr, &frame[0])

	// An exhausted script behaves like a remote close so loops always end.
	if len(f.recv) == 0 {
		return AVErrSessionCloseByRemote
	}
	r := f.recv[0]
	f.recv = f.recv[1:]

	*frameIdx = r.idx
	*actualInfoSize = 0

	if r.code > 0 {
		n := int(r.code)
		for i := range frame {
			frame[i] = 0xEE
		}
		for i := 0; i < n; i++ {
			frame[i] = byte(f.recvCalls*31 + i)
		}
		f.delivered = append(f.delivered, append([]byte(nil), frame[:n]...))

		*actualSize = int32(n)
		*expectedSize = int32(n)
		if r.expected != 0 {
			*expectedSize = r.expected
		}
		copy(info, r.info.Marshal())
		*actualInfoSize = FrameInfoSize
	}

	if f.onRecv != nil {
		f.onRecv(f.recvCalls)
	}
	return r.code
}

func (f *fakeSDK) AVClientStop(avIndex int32) {
	f.record("avClientStop")
	f.stoppedAVs = append(f.stoppedAVs, avIndex)
}

func (f *fakeSDK) AVDeInitialize() Code {
	f.record("avDeInitialize")
	return 0
}

func (f *fakeSDK) count(name string) int {
	n := 0
	for _, c := range f.calls {
		if c == name {
			n++
		}
	}
	return n
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// newTestSession builds a Session over fake and records every wait.
func newTestSession(t *testing.T, fake *fakeSDK, conf Config) (*Session, *[]time.Duration) {
	t.Helper()

	conf.SDK = fake
	if conf.Logger == nil {
		conf.Logger = quietLogger()
	}
	s, err := New(conf)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	waits := &[]time.Duration{}
	s.wait = func(ctx context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		return ctx.Err()
	}
	return s, waits
}

// armedSession returns a Session that has connected, opened AV and started
// the stream.
func armedSession(t *testing.T, fake *fakeSDK) (*Session, *[]time.Duration) {
	t.Helper()

	s, waits := newTestSession(t, fake, Config{})
	require.NoError(t, s.Connect("ABCDEFGHJKLMNPQRS111"))
	require.NoError(t, s.OpenAV("admin", "", 0))
	require.NoError(t, s.StartStream())
	return s, waits
}
