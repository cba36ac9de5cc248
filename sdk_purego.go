//go:build (darwin || linux) && !(cgo && iotc_cgo)

// IOTC/AV bindings loaded at runtime with purego. Works with CGO_ENABLED=0.

package avapi

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
)

var (
	nativeMu      sync.Mutex
	nativeLoaded  bool
	nativeHandles []uintptr

	loadNative = loadNativeLibs
)

// IOTCAPIs / AVAPIs function pointers
var (
	iotcInitialize           func(udpPort uint16, master1, master2, master3, master4 *byte) int32
	iotcGetVersion           func(version *uint32)
	iotcGetSessionID         func() int32
	iotcConnectByUIDParallel func(uid *byte, sid int32) int32
	iotcSessionCheck         func(sid int32, info *SessionInfo) int32
	iotcSessionClose         func(sid int32)
	iotcDeInitialize         func() int32

	avInitialize     func(maxChannels int32) int32
	avGetAVApiVer    func() int32
	avClientStart2   func(sid int32, account, password *byte, timeout uint32, servType *uint32, channelID uint8, resend *int32) int32
	avSendIOCtrl     func(avIndex int32, ioType uint32, data *byte, size int32) int32
	avRecvFrameData2 func(avIndex int32, frame *byte, frameMax int32, actualSize, expectedSize *int32, info *byte, infoMax int32, actualInfoSize *int32, frameIdx *uint32) int32
	avClientStop     func(avIndex int32)
	avDeInitialize   func() int32
)

// LoadSDK loads the IOTC/AV shared libraries and returns the native SDK.
// libDir, if set, is searched before the default locations. Once a load
// succeeds the libraries stay loaded and later libDir values are ignored;
// a failed load is retried on the next call.
func LoadSDK(libDir string) (SDK, error) {
	nativeMu.Lock()
	defer nativeMu.Unlock()

	if !nativeLoaded {
		if err := loadNative(libDir); err != nil {
			return nil, err
		}
		nativeLoaded = true
	}
	return nativeSDK{}, nil
}

func loadNativeLibs(libDir string) error {
	for _, name := range libraryNames() {
		handle, err := dlopenFirst(libraryPaths(libDir, name))
		if err != nil {
			closeNativeLibs()
			return fmt.Errorf("%w: %s: %v", ErrLibraryNotFound, name, err)
		}
		nativeHandles = append(nativeHandles, handle)
	}

	if err := loadNativeSymbols(); err != nil {
		closeNativeLibs()
		return err
	}
	return nil
}

func closeNativeLibs() {
	for _, h := range nativeHandles {
		purego.Dlclose(h)
	}
	nativeHandles = nil
}

func dlopenFirst(paths []string) (uintptr, error) {
	var lastErr error
	for _, path := range paths {
		// RTLD_GLOBAL so that AVAPIs resolves its IOTC imports.
		handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return handle, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("no candidate paths")
	}
	return 0, lastErr
}

// register binds fptr to the first loaded library exporting name.
func register(fptr any, name string) error {
	for _, h := range nativeHandles {
		sym, err := purego.Dlsym(h, name)
		if err == nil && sym != 0 {
			purego.RegisterFunc(fptr, sym)
			return nil
		}
	}
	return fmt.Errorf("%w: symbol %s not exported", ErrLibraryNotFound, name)
}

func loadNativeSymbols() error {
	symbols := []struct {
		fptr any
		name string
	}{
		{&iotcInitialize, "IOTC_Initialize"},
		{&iotcGetVersion, "IOTC_Get_Version"},
		{&iotcGetSessionID, "IOTC_Get_SessionID"},
		{&iotcConnectByUIDParallel, "IOTC_Connect_ByUID_Parallel"},
		{&iotcSessionCheck, "IOTC_Session_Check"},
		{&iotcSessionClose, "IOTC_Session_Close"},
		{&iotcDeInitialize, "IOTC_DeInitialize"},

		{&avInitialize, "avInitialize"},
		{&avGetAVApiVer, "avGetAVApiVer"},
		{&avClientStart2, "avClientStart2"},
		{&avSendIOCtrl, "avSendIOCtrl"},
		{&avRecvFrameData2, "avRecvFrameData2"},
		{&avClientStop, "avClientStop"},
		{&avDeInitialize, "avDeInitialize"},
	}
	for _, s := range symbols {
		if err := register(s.fptr, s.name); err != nil {
			return err
		}
	}
	return nil
}

// IsSDKAvailable reports whether the native libraries can be loaded from
// the default locations.
func IsSDKAvailable() bool {
	_, err := LoadSDK("")
	return err == nil
}

type nativeSDK struct{}

func (nativeSDK) IOTCInitialize(udpPort uint16, m1, m2, m3, m4 CString) Code {
	return Code(iotcInitialize(udpPort, m1.Ptr(), m2.Ptr(), m3.Ptr(), m4.Ptr()))
}

func (nativeSDK) IOTCGetVersion() uint32 {
	var v uint32
	iotcGetVersion(&v)
	return v
}

func (nativeSDK) IOTCGetSessionID() Code { return Code(iotcGetSessionID()) }

func (nativeSDK) IOTCConnectByUIDParallel(uid CString, sid int32) Code {
	return Code(iotcConnectByUIDParallel(uid.Ptr(), sid))
}

func (nativeSDK) IOTCSessionCheck(sid int32, info *SessionInfo) Code {
	return Code(iotcSessionCheck(sid, info))
}

func (nativeSDK) IOTCSessionClose(sid int32) { iotcSessionClose(sid) }

func (nativeSDK) IOTCDeInitialize() Code { return Code(iotcDeInitialize()) }

func (nativeSDK) AVInitialize(maxChannels int32) Code { return Code(avInitialize(maxChannels)) }

func (nativeSDK) AVGetAVApiVer() int32 { return avGetAVApiVer() }

func (nativeSDK) AVClientStart2(sid int32, account, password CString, timeoutSec uint32, servType *uint32, channelID uint8, resend *int32) Code {
	return Code(avClientStart2(sid, account.Ptr(), password.Ptr(), timeoutSec, servType, channelID, resend))
}

func (nativeSDK) AVSendIOCtrl(avIndex int32, ioType uint32, data []byte) Code {
	var p *byte
	if len(data) > 0 {
		p = &data[0]
	}
	return Code(avSendIOCtrl(avIndex, ioType, p, int32(len(data))))
}

func (nativeSDK) AVRecvFrameData2(avIndex int32, frame []byte, actualSize, expectedSize *int32, info []byte, actualInfoSize *int32, frameIdx *uint32) Code {
	return Code(avRecvFrameData2(avIndex,
		&frame[0], int32(len(frame)), actualSize, expectedSize,
		&info[0], int32(len(info)), actualInfoSize, frameIdx))
}

func (nativeSDK) AVClientStop(avIndex int32) { avClientStop(avIndex) }

func (nativeSDK) AVDeInitialize() Code { return Code(avDeInitialize()) }
