package avapi

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// sessionActive guards the SDK's process-wide state.
var sessionActive atomic.Bool

// Session owns the IOTC/AV global state, one IOTC session and at most one
// AV client channel on it.
//
// Lifecycle: New -> Connect -> OpenAV -> StartStream -> Drain -> Close.
// Close tears down in the order AV client stop, session close, AV deinit,
// IOTC deinit, skipping whatever was never set up.
//
// A Session is not safe for concurrent use, except for Interrupt.
type Session struct {
	sdk  SDK
	conf Config
	log  logrus.FieldLogger

	iotcUp   bool
	avUp     bool
	reserved int

	sid       int32
	avIndex   int32
	uid       string
	connected bool
	armed     bool
	failed    error
	closed    bool

	interrupt atomic.Bool

	wait func(ctx context.Context, d time.Duration) error
	now  func() time.Time
}

// New initializes the SDK: IOTC against the master hostnames, then AV with
// conf.Channels channels, then logs both versions.
// Only one Session may be live per process.
func New(conf Config) (*Session, error) {
	conf = conf.withDefaults()

	if !sessionActive.CompareAndSwap(false, true) {
		return nil, ErrSessionActive
	}

	sdk := conf.SDK
	if sdk == nil {
		var err error
		sdk, err = LoadSDK(conf.LibDir)
		if err != nil {
			sessionActive.Store(false)
			return nil, err
		}
	}

	s := &Session{
		sdk:     sdk,
		conf:    conf,
		log:     conf.Logger,
		sid:     -1,
		avIndex: -1,
		wait:    sleepContext,
		now:     time.Now,
	}

	if err := s.initialize(); err != nil {
		sessionActive.Store(false)
		return nil, err
	}
	return s, nil
}

func (s *Session) initialize() error {
	var masters [4]CString
	for i, host := range s.conf.Masters {
		cs, err := NewCString(host)
		if err != nil {
			return err
		}
		masters[i] = cs
	}

	code := s.sdk.IOTCInitialize(s.conf.UDPPort, masters[0], masters[1], masters[2], masters[3])
	if code != 0 {
		return sdkErr(ErrInit, "IOTC_Initialize", code)
	}
	s.iotcUp = true

	// avInitialize returns the number of channels actually reserved.
	code = s.sdk.AVInitialize(int32(s.conf.Channels))
	if code < 0 {
		s.sdk.IOTCDeInitialize()
		s.iotcUp = false
		return sdkErr(ErrInit, "avInitialize", code)
	}
	s.avUp = true
	s.reserved = s.conf.Channels
	if code > 0 {
		s.reserved = int(code)
	}

	s.log.WithFields(logrus.Fields{
		"function":     "New",
		"iotc_version": FormatVersion(s.sdk.IOTCGetVersion()),
		"av_version":   FormatVersion(uint32(s.sdk.AVGetAVApiVer())),
		"channels":     s.reserved,
	}).Info("IOTC/AV initialized")
	return nil
}

// Connect reserves a session id and connects it to the device uid.
// A failure poisons the session: later operations return the same error.
func (s *Session) Connect(uid string) error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.connected {
		return ErrConnected
	}

	cuid, err := NewCString(uid)
	if err != nil {
		return err
	}

	sid := s.sdk.IOTCGetSessionID()
	if sid < 0 {
		s.failed = sdkErr(ErrConnect, "IOTC_Get_SessionID", sid)
		return s.failed
	}
	s.sid = int32(sid)

	log := s.log.WithFields(logrus.Fields{
		"function": "Connect",
		"uid":      uid,
		"sid":      s.sid,
	})
	log.Debug("Session id reserved")

	code := s.sdk.IOTCConnectByUIDParallel(cuid, s.sid)
	if code < 0 {
		s.sdk.IOTCSessionClose(s.sid)
		s.sid = -1
		s.failed = sdkErr(ErrConnect, "IOTC_Connect_ByUID_Parallel", code)
		return s.failed
	}

	s.connected = true
	s.uid = uid
	log.Info("Connected")
	return nil
}

// OpenAV starts the AV client on the connected session and verifies the
// session with IOTC_Session_Check, retrying a bounded number of times.
// If the check fails the AV client is stopped and the session is poisoned.
// Interrupt aborts the retries with ErrInterrupted.
func (s *Session) OpenAV(username, password string, channelID uint8) error {
	if err := s.usable(); err != nil {
		return err
	}
	if !s.connected {
		return ErrNotConnected
	}
	if s.avIndex >= 0 {
		return ErrAlreadyOpen
	}

	account, err := NewCString(username)
	if err != nil {
		return err
	}
	secret, err := NewCString(password)
	if err != nil {
		return err
	}

	var servType uint32
	resend := int32(-1)
	idx := s.sdk.AVClientStart2(s.sid, account, secret,
		uint32(HandshakeTimeout/time.Second), &servType, channelID, &resend)
	if idx < 0 {
		return sdkErr(ErrAVOpen, "avClientStart2", idx)
	}
	s.avIndex = int32(idx)

	info, err := s.checkSession()
	if err != nil {
		s.sdk.AVClientStop(s.avIndex)
		s.avIndex = -1
		if !errors.Is(err, ErrInterrupted) {
			s.failed = err
		}
		return err
	}

	s.log.WithFields(logrus.Fields{
		"function":  "OpenAV",
		"sid":       s.sid,
		"av_index":  s.avIndex,
		"channel":   channelID,
		"serv_type": servType,
		"resend":    resend,
		"mode":      info.Mode.String(),
		"remote":    info.RemoteAddr(),
		"nat_type":  info.NatType,
	}).Info("AV channel open")
	return nil
}

func (s *Session) checkSession() (*SessionInfo, error) {
	var info SessionInfo
	for attempt := 1; ; attempt++ {
		code := s.sdk.IOTCSessionCheck(s.sid, &info)
		if code == 0 {
			return &info, nil
		}
		if sessionGone(code) || attempt >= s.conf.SessionCheckAttempts {
			return nil, sdkErr(ErrAVOpen, "IOTC_Session_Check", code)
		}

		s.log.WithFields(logrus.Fields{
			"function": "OpenAV",
			"sid":      s.sid,
			"attempt":  attempt,
			"code":     code.String(),
		}).Debug("Session check not ready, retrying")

		if s.interrupt.Load() {
			return nil, ErrInterrupted
		}
		if err := s.wait(context.Background(), s.conf.SessionCheckInterval); err != nil {
			return nil, err
		}
	}
}

func sessionGone(c Code) bool {
	switch c {
	case IOTCErrInvalidSID, IOTCErrSessionCloseByRemote, IOTCErrRemoteTimeout:
		return true
	}
	return false
}

// StartStream asks the device to begin streaming: a data-delay hint with a
// two-byte zero payload, then IPCAM start for channel 0.
func (s *Session) StartStream() error {
	if err := s.usable(); err != nil {
		return err
	}
	if s.avIndex < 0 {
		return ErrNotOpen
	}

	code := s.sdk.AVSendIOCtrl(s.avIndex, IOTypeInnerSndDataDelay, make([]byte, 2))
	if code < 0 {
		return sdkErr(ErrControl, "avSendIOCtrl(IOTYPE_INNER_SND_DATA_DELAY)", code)
	}

	code = s.sdk.AVSendIOCtrl(s.avIndex, IOTypeUserIPCamStart, AVStreamMsg{Channel: 0}.Marshal())
	if code < 0 {
		return sdkErr(ErrControl, "avSendIOCtrl(IOTYPE_USER_IPCAM_START)", code)
	}

	s.armed = true
	s.log.WithFields(logrus.Fields{
		"function": "StartStream",
		"av_index": s.avIndex,
	}).Info("Stream started")
	return nil
}

// Interrupt requests a running Drain, or OpenAV's session check retries,
// to return ErrInterrupted. It is safe to call from any goroutine.
func (s *Session) Interrupt() {
	s.interrupt.Store(true)
}

// Stop stops the AV client and closes the IOTC session.
// It is a no-op once nothing is open.
func (s *Session) Stop() {
	if s.avIndex >= 0 {
		s.sdk.AVClientStop(s.avIndex)
		s.log.WithFields(logrus.Fields{"function": "Stop", "av_index": s.avIndex}).Debug("AV client stopped")
		s.avIndex = -1
	}
	if s.sid >= 0 {
		s.sdk.IOTCSessionClose(s.sid)
		s.log.WithFields(logrus.Fields{"function": "Stop", "sid": s.sid}).Debug("Session closed")
		s.sid = -1
	}
	s.connected = false
	s.armed = false
}

// Close stops the session and deinitializes AV then IOTC.
// It is safe to call more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.Stop()

	var errs []error
	if s.avUp {
		if code := s.sdk.AVDeInitialize(); code < 0 {
			errs = append(errs, sdkErr(ErrInit, "avDeInitialize", code))
		}
		s.avUp = false
	}
	if s.iotcUp {
		if code := s.sdk.IOTCDeInitialize(); code < 0 {
			errs = append(errs, sdkErr(ErrInit, "IOTC_DeInitialize", code))
		}
		s.iotcUp = false
	}

	s.closed = true
	sessionActive.Store(false)
	return errors.Join(errs...)
}

// SID returns the IOTC session id, or -1.
func (s *Session) SID() int32 { return s.sid }

// AVIndex returns the AV channel index, or -1.
func (s *Session) AVIndex() int32 { return s.avIndex }

// ReservedChannels returns the channel count reported by avInitialize.
func (s *Session) ReservedChannels() int { return s.reserved }

func (s *Session) usable() error {
	if s.closed {
		return ErrClosed
	}
	return s.failed
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
