package retry

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"
)

// IsConnectionReset reports whether the peer reset the connection.
func IsConnectionReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET)
}

// IsTimeout reports whether err is a dial, read or client timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ETIMEDOUT) || errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsTransient is the retry predicate for provider calls.
func IsTransient(err error) bool {
	return IsConnectionReset(err) || IsTimeout(err)
}
