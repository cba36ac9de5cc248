package avapi

import (
	"bytes"
	"fmt"
	"strings"
)

// CString is a NUL-terminated byte string owned by Go memory.
// The backing array stays valid for as long as the CString is reachable,
// so a value held across an SDK call outlives the call.
type CString []byte

// NewCString copies s and appends a terminator.
// It fails with ErrMarshal if s contains a NUL byte.
func NewCString(s string) (CString, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return nil, fmt.Errorf("%w: embedded NUL at offset %d in %q", ErrMarshal, i, s)
	}
	b := make([]byte, len(s)+1)
	copy(b, s)
	return CString(b), nil
}

// Ptr returns the address of the first byte, suitable for a const char* argument.
func (c CString) Ptr() *byte {
	if len(c) == 0 {
		return nil
	}
	return &c[0]
}

// String returns the content without the terminator.
func (c CString) String() string {
	if n := bytes.IndexByte(c, 0); n >= 0 {
		return string(c[:n])
	}
	return string(c)
}

// goStringFromBytes returns the NUL-terminated prefix of a fixed char array.
func goStringFromBytes(b []byte) string {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	return string(b)
}
