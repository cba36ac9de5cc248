//go:build !darwin && !linux

package avapi

import (
	"fmt"
	"runtime"
)

// LoadSDK fails: the IOTC/AV SDK is only bound on darwin and linux.
func LoadSDK(libDir string) (SDK, error) {
	return nil, fmt.Errorf("%w: unsupported platform %s", ErrLibraryNotFound, runtime.GOOS)
}

// IsSDKAvailable always returns false on this platform.
func IsSDKAvailable() bool { return false }
