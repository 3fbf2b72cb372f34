package outcome

import (
	"errors"
	"io"
	"net"
	"os"
	"syscall"
)

// ClassifyRead maps an error returned by a connection read (or write) to a Kind.
// A nil error or io.EOF means the peer finished without sending anything.
func ClassifyRead(err error) Kind {
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return EmptyPayload
	case isTimeout(err):
		return ReadTimeout
	case errors.Is(err, syscall.ECONNRESET), errors.Is(err, syscall.EPIPE):
		return ConnectionReset
	default:
		return UnexpectedError
	}
}

// ClassifyDial maps an error returned while establishing a connection to a Kind.
func ClassifyDial(err error) Kind {
	var dnsErr *net.DNSError

	switch {
	case err == nil:
		return Success
	// check the resolver first, a failed lookup can also carry a timeout flag
	case errors.As(err, &dnsErr):
		return NameResolutionFailure
	case errors.Is(err, syscall.ECONNREFUSED):
		return ConnectionRefused
	default:
		return UnexpectedError
	}
}

// isTimeout matches both the deadline sentinel and net.Error implementations reporting a timeout
func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
