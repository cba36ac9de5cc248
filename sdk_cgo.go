//go:build (darwin || linux) && cgo && iotc_cgo

// IOTC/AV bindings linked with CGO against the libraries in lib/.
// Build with -tags iotc_cgo.

package avapi

/*
#cgo darwin LDFLAGS: -L${SRCDIR}/lib -lIOTCAPIs_ALL -Wl,-rpath,${SRCDIR}/lib
#cgo linux LDFLAGS: -L${SRCDIR}/lib -lIOTCAPIs -lAVAPIs -Wl,-rpath,${SRCDIR}/lib

int  IOTC_Initialize(unsigned short nUDPPort, const char *m1, const char *m2, const char *m3, const char *m4);
void IOTC_Get_Version(unsigned int *pnVersion);
int  IOTC_Get_SessionID(void);
int  IOTC_Connect_ByUID_Parallel(const char *cszUID, int SID);
int  IOTC_Session_Check(int nIOTCSessionID, void *psSessionInfo);
void IOTC_Session_Close(int nIOTCSessionID);
int  IOTC_DeInitialize(void);

int  avInitialize(int nMaxChannelNum);
int  avGetAVApiVer(void);
int  avClientStart2(int nIOTCSessionID, const char *cszViewAccount, const char *cszViewPassword,
                    unsigned int nTimeout, unsigned int *pnServType, unsigned char nIOTCChannelID, int *pnResend);
int  avSendIOCtrl(int nAVChannelID, unsigned int nIOCtrlType, const char *cabIOCtrlData, int nIOCtrlDataSize);
int  avRecvFrameData2(int nAVChannelID, char *abFrameData, int nFrameDataMaxSize,
                      int *pnActualFrameSize, int *pnExpectedFrameSize,
                      char *abFrameInfo, int nFrameInfoMaxSize, int *pnActualFrameInfoSize,
                      unsigned int *pnFrameIdx);
void avClientStop(int nAVChannelID);
int  avDeInitialize(void);
*/
import "C"

import "unsafe"

// LoadSDK returns the linked SDK. libDir is ignored: the libraries are
// resolved at link time.
func LoadSDK(libDir string) (SDK, error) {
	return cgoSDK{}, nil
}

// IsSDKAvailable is always true when the SDK is linked.
func IsSDKAvailable() bool { return true }

type cgoSDK struct{}

func cstr(c CString) *C.char { return (*C.char)(unsafe.Pointer(c.Ptr())) }

func (cgoSDK) IOTCInitialize(udpPort uint16, m1, m2, m3, m4 CString) Code {
	return Code(C.IOTC_Initialize(C.ushort(udpPort), cstr(m1), cstr(m2), cstr(m3), cstr(m4)))
}

func (cgoSDK) IOTCGetVersion() uint32 {
	var v C.uint
	C.IOTC_Get_Version(&v)
	return uint32(v)
}

func (cgoSDK) IOTCGetSessionID() Code { return Code(C.IOTC_Get_SessionID()) }

func (cgoSDK) IOTCConnectByUIDParallel(uid CString, sid int32) Code {
	return Code(C.IOTC_Connect_ByUID_Parallel(cstr(uid), C.int(sid)))
}

func (cgoSDK) IOTCSessionCheck(sid int32, info *SessionInfo) Code {
	return Code(C.IOTC_Session_Check(C.int(sid), unsafe.Pointer(info)))
}

func (cgoSDK) IOTCSessionClose(sid int32) { C.IOTC_Session_Close(C.int(sid)) }

func (cgoSDK) IOTCDeInitialize() Code { return Code(C.IOTC_DeInitialize()) }

func (cgoSDK) AVInitialize(maxChannels int32) Code { return Code(C.avInitialize(C.int(maxChannels))) }

func (cgoSDK) AVGetAVApiVer() int32 { return int32(C.avGetAVApiVer()) }

func (cgoSDK) AVClientStart2(sid int32, account, password CString, timeoutSec uint32, servType *uint32, channelID uint8, resend *int32) Code {
	return Code(C.avClientStart2(C.int(sid), cstr(account), cstr(password), C.uint(timeoutSec),
		(*C.uint)(unsafe.Pointer(servType)), C.uchar(channelID), (*C.int)(unsafe.Pointer(resend))))
}

func (cgoSDK) AVSendIOCtrl(avIndex int32, ioType uint32, data []byte) Code {
	var p *C.char
	if len(data) > 0 {
		p = (*C.char)(unsafe.Pointer(&data[0]))
	}
	return Code(C.avSendIOCtrl(C.int(avIndex), C.uint(ioType), p, C.int(len(data))))
}

func (cgoSDK) AVRecvFrameData2(avIndex int32, frame []byte, actualSize, expectedSize *int32, info []byte, actualInfoSize *int32, frameIdx *uint32) Code {
	return Code(C.avRecvFrameData2(C.int(avIndex),
		(*C.char)(unsafe.Pointer(&frame[0])), C.int(len(frame)),
		(*C.int)(unsafe.Pointer(actualSize)), (*C.int)(unsafe.Pointer(expectedSize)),
		(*C.char)(unsafe.Pointer(&info[0])), C.int(len(info)),
		(*C.int)(unsafe.Pointer(actualInfoSize)), (*C.uint)(unsafe.Pointer(frameIdx))))
}

func (cgoSDK) AVClientStop(avIndex int32) { C.avClientStop(C.int(avIndex)) }

func (cgoSDK) AVDeInitialize() Code { return Code(C.avDeInitialize()) }
