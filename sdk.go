package avapi

// Rendezvous masters passed to IOTC_Initialize.
var DefaultMasters = [4]string{
	"m1.iotcplatform.com",
	"m2.iotcplatform.com",
	"m4.iotcplatform.com",
	"m5.iotcplatform.com",
}

// SDK is the IOTC/AV entry point surface consumed by Session.
// Every method maps to one native function and may block.
// Implementations are not required to be goroutine-safe.
type SDK interface {
	// IOTC_Initialize
	IOTCInitialize(udpPort uint16, master1, master2, master3, master4 CString) Code
	// IOTC_Get_Version
	IOTCGetVersion() uint32
	// IOTC_Get_SessionID
	IOTCGetSessionID() Code
	// IOTC_Connect_ByUID_Parallel
	IOTCConnectByUIDParallel(uid CString, sid int32) Code
	// IOTC_Session_Check
	IOTCSessionCheck(sid int32, info *SessionInfo) Code
	// IOTC_Session_Close
	IOTCSessionClose(sid int32)
	// IOTC_DeInitialize
	IOTCDeInitialize() Code

	// avInitialize
	AVInitialize(maxChannels int32) Code
	// avGetAVApiVer
	AVGetAVApiVer() int32
	// avClientStart2
	AVClientStart2(sid int32, account, password CString, timeoutSec uint32, servType *uint32, channelID uint8, resend *int32) Code
	// avSendIOCtrl
	AVSendIOCtrl(avIndex int32, ioType uint32, data []byte) Code
	// avRecvFrameData2. frame and info are filled in place; their lengths are
	// passed as the capacities.
	AVRecvFrameData2(avIndex int32, frame []byte, actualSize, expectedSize *int32, info []byte, actualInfoSize *int32, frameIdx *uint32) Code
	// avClientStop
	AVClientStop(avIndex int32)
	// avDeInitialize
	AVDeInitialize() Code
}
