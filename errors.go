package avapi

import (
	"errors"
	"fmt"
)

var (
	// ErrInit is the kind of IOTC or AV initialization failures.
	ErrInit = errors.New("sdk initialization failed")
	// ErrConnect is the kind of session reservation and UID connect failures.
	ErrConnect = errors.New("connection failed")
	// ErrAVOpen is the kind of AV client start and session check failures.
	ErrAVOpen = errors.New("av open failed")
	// ErrControl is the kind of avSendIOCtrl failures while arming the stream.
	ErrControl = errors.New("control message failed")
	// ErrSink wraps errors returned by a FrameSink.
	ErrSink = errors.New("sink failed")
	// ErrMarshal is returned when a string cannot be passed to the SDK.
	ErrMarshal = errors.New("string marshalling failed")

	// ErrSessionActive is returned by New while another Session is live.
	ErrSessionActive = errors.New("another session is active in this process")
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("session closed")
	// ErrNotConnected is returned by OpenAV before Connect.
	ErrNotConnected = errors.New("session not connected")
	// ErrConnected is returned by Connect on a connected session.
	ErrConnected = errors.New("session already connected")
	// ErrAlreadyOpen is returned by OpenAV when the AV channel is open.
	ErrAlreadyOpen = errors.New("av channel already open")
	// ErrNotOpen is returned by StartStream before OpenAV.
	ErrNotOpen = errors.New("av channel not open")
	// ErrNotArmed is returned by Drain before StartStream.
	ErrNotArmed = errors.New("stream not started")
	// ErrInterrupted is returned after Interrupt stops a drain or a retry.
	ErrInterrupted = errors.New("interrupted")
	// ErrLibraryNotFound is returned when the native libraries cannot be loaded.
	ErrLibraryNotFound = errors.New("IOTC/AV library not found")
)

// SDKError reports a failing SDK call together with its return code.
// errors.Is matches both the error kind and the code.
type SDKError struct {
	Kind error
	Op   string
	Code Code
}

func (e *SDKError) Error() string {
	return fmt.Sprintf("%v: %s returned %v", e.Kind, e.Op, e.Code)
}

func (e *SDKError) Unwrap() error { return e.Kind }

// Is matches a Code target.
func (e *SDKError) Is(target error) bool {
	c, ok := target.(Code)
	return ok && c == e.Code
}

// Error lets a Code be used as an errors.Is target.
func (c Code) Error() string { return c.String() }

func sdkErr(kind error, op string, code Code) error {
	return &SDKError{Kind: kind, Op: op, Code: code}
}
