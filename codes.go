package avapi

import "strconv"

// Code is an integer returned by an IOTC or AV entry point.
// Zero or positive means success; negative values are SDK error codes.
type Code int32

// IOTC error codes (IOTCAPIs.h)
const (
	IOTCErrAlreadyInitialized   Code = -3
	IOTCErrUnlicense            Code = -10
	IOTCErrNotInitialized       Code = -12
	IOTCErrTimeout              Code = -13
	IOTCErrInvalidSID           Code = -14
	IOTCErrExceedMaxSession     Code = -18
	IOTCErrCanNotFindDevice     Code = -19
	IOTCErrSessionCloseByRemote Code = -22
	IOTCErrRemoteTimeout        Code = -23
	IOTCErrDeviceNotListening   Code = -24
)

// AV error codes (AVAPIs.h)
const (
	AVErrInvalidArg              Code = -20000
	AVErrBufPara                 Code = -20001
	AVErrExceedMaxChannel        Code = -20002
	AVErrMem                     Code = -20003
	AVErrFailCreateThread        Code = -20004
	AVErrWrongViewAccOrPwd       Code = -20009
	AVErrInvalidSID              Code = -20010
	AVErrTimeout                 Code = -20011
	AVErrDataNoReady             Code = -20012
	AVErrIncompleteFrame         Code = -20013
	AVErrLosedThisFrame          Code = -20014
	AVErrSessionCloseByRemote    Code = -20015
	AVErrRemoteTimeoutDisconnect Code = -20016
	AVErrClientExit              Code = -20018
	AVErrNotInitialized          Code = -20019
	AVErrClientNoAVLogin         Code = -20020
)

var codeNames = map[Code]string{
	IOTCErrUnlicense:             "IOTC_ER_UNLICENSE",
	IOTCErrNotInitialized:        "IOTC_ER_NOT_INITIALIZED",
	IOTCErrTimeout:               "IOTC_ER_TIMEOUT",
	IOTCErrInvalidSID:            "IOTC_ER_INVALID_SID",
	IOTCErrExceedMaxSession:      "IOTC_ER_EXCEED_MAX_SESSION",
	IOTCErrCanNotFindDevice:      "IOTC_ER_CAN_NOT_FIND_DEVICE",
	IOTCErrSessionCloseByRemote:  "IOTC_ER_SESSION_CLOSE_BY_REMOTE",
	IOTCErrRemoteTimeout:         "IOTC_ER_REMOTE_TIMEOUT_DISCONNECT",
	IOTCErrDeviceNotListening:    "IOTC_ER_DEVICE_NOT_LISTENING",
	IOTCErrAlreadyInitialized:    "IOTC_ER_ALREADY_INITIALIZED",
	AVErrInvalidArg:              "AV_ER_INVALID_ARG",
	AVErrBufPara:                 "AV_ER_BUFPARA_MAXSIZE_INSUFF",
	AVErrExceedMaxChannel:        "AV_ER_EXCEED_MAX_CHANNEL",
	AVErrMem:                     "AV_ER_MEM_INSUFF",
	AVErrFailCreateThread:        "AV_ER_FAIL_CREATE_THREAD",
	AVErrWrongViewAccOrPwd:       "AV_ER_WRONG_VIEWACCorPWD",
	AVErrInvalidSID:              "AV_ER_INVALID_SID",
	AVErrTimeout:                 "AV_ER_TIMEOUT",
	AVErrDataNoReady:             "AV_ER_DATA_NOREADY",
	AVErrIncompleteFrame:         "AV_ER_INCOMPLETE_FRAME",
	AVErrLosedThisFrame:          "AV_ER_LOSED_THIS_FRAME",
	AVErrSessionCloseByRemote:    "AV_ER_SESSION_CLOSE_BY_REMOTE",
	AVErrRemoteTimeoutDisconnect: "AV_ER_REMOTE_TIMEOUT_DISCONNECT",
	AVErrClientExit:              "AV_ER_CLIENT_EXIT",
	AVErrNotInitialized:          "AV_ER_NOT_INITIALIZED",
	AVErrClientNoAVLogin:         "AV_ER_CLIENT_NO_AVLOGIN",
}

func (c Code) String() string {
	if c >= 0 {
		return strconv.Itoa(int(c))
	}
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown(" + strconv.Itoa(int(c)) + ")"
}

// Terminal reports whether a receive result means the session cannot
// continue and the drain must stop.
func (c Code) Terminal() bool {
	switch c {
	case AVErrSessionCloseByRemote, AVErrRemoteTimeoutDisconnect, IOTCErrInvalidSID:
		return true
	}
	return false
}

// FrameLoss reports whether c is a recoverable frame-level loss.
func (c Code) FrameLoss() bool { return c == AVErrLosedThisFrame || c == AVErrIncompleteFrame }
