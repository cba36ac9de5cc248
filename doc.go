// Package avapi drives the TUTK IOTC/AV peer-to-peer SDK to pull video from
// a remote device.
//
// Key pieces include:
//   - SDK: the native entry points, bound with purego or cgo
//   - Session: SDK global state plus one IOTC session and one AV channel,
//     with ordered setup and teardown
//   - Drain: the receive loop that classifies SDK return codes
//   - FrameSink implementations: raw file, key-frame gate, RTP forwarder
//
// # Lifecycle
//
//	New -> Connect(uid) -> OpenAV(user, pass, ch) -> StartStream -> Drain(ctx, sink) -> Close
//
// Close stops the AV client, closes the session and deinitializes AV then
// IOTC, skipping whatever never came up. Only one Session may exist per
// process because the SDK keeps global state.
//
// # Native Libraries
//
// On darwin the SDK ships as libIOTCAPIs_ALL; elsewhere as libIOTCAPIs and
// libAVAPIs. The project-local lib directory is searched first. By default
// the libraries are loaded at runtime with purego (CGO_ENABLED=0 works).
// Build with -tags iotc_cgo to link them with cgo instead.
//
// # Output
//
// Payloads are written exactly as the device sends them, typically an H.264
// Annex-B elementary stream. No container is produced.
package avapi
