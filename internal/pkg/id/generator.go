package id

import (
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// RequestIDAlphabet omits characters that are easily confused when read
// back from a log line (0/O, 1/l/I, 2/Z, 5/S, ...).
const RequestIDAlphabet = "346789ABCDEFGHJKLMNPQRTUVWXYabcdefghijkmnpqrtwxyz"

// RequestIDLength is the length of a request ID
const RequestIDLength = 16

var fallbackCounter atomic.Uint64

// NewRequestID generates a new request correlation ID
func NewRequestID() string {
	id, err := gonanoid.Generate(RequestIDAlphabet, RequestIDLength)
	if err != nil {
		// Fallback to time-based ID if random fails
		return fallbackRequestID()
	}
	return id
}

// fallbackRequestID encodes the clock and a process-wide counter in the
// request ID alphabet so that IDs stay unique without an entropy source.
func fallbackRequestID() string {
	n := uint64(time.Now().UnixNano()) ^ (fallbackCounter.Add(1) << 40)
	base := uint64(len(RequestIDAlphabet))

	buf := make([]byte, RequestIDLength)
	for i := range buf {
		buf[i] = RequestIDAlphabet[n%base]
		n /= base
	}
	return string(buf)
}
