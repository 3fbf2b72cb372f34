package outcome

import (
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Kind
// --------------------------------------------------------------------------

// Kind classifies how a connection (or the acceptor itself) ended
type Kind uint8

const (
	Success               Kind = iota // 0: request read, transformed and answered
	BindError                         // 1: listener could not be created (fatal)
	AcceptError                       // 2: accept failed unexpectedly (fatal)
	ConnectionRefused                 // 3: probe target refused the connection
	NameResolutionFailure             // 4: probe hostname could not be resolved
	ReadTimeout                       // 5: no bytes before the read deadline
	EmptyPayload                      // 6: zero-byte read without error
	ConnectionReset                   // 7: peer aborted the connection
	DecodeError                       // 8: received bytes are not valid UTF-8
	UnexpectedError                   // 9: anything else
)

var kindNames = [...]string{
	Success:               "Success",
	BindError:             "BindError",
	AcceptError:           "AcceptError",
	ConnectionRefused:     "ConnectionRefused",
	NameResolutionFailure: "NameResolutionFailure",
	ReadTimeout:           "ReadTimeout",
	EmptyPayload:          "EmptyPayload",
	ConnectionReset:       "ConnectionReset",
	DecodeError:           "DecodeError",
	UnexpectedError:       "UnexpectedError",
}

// Kinds returns all kinds in declaration order
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindNames))
	for k := range kindNames {
		kinds = append(kinds, Kind(k))
	}
	return kinds
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Fatal reports whether the kind terminates the service instead of a single connection
func (k Kind) Fatal() bool {
	return k == BindError || k == AcceptError
}

// --------------------------------------------------------------------------
// Outcome
// --------------------------------------------------------------------------

// Outcome is the result of handling (server side) or probing (client side) one connection.
type Outcome struct {
	Kind         Kind
	ConnID       string
	LocalAddr    string
	RemoteAddr   string
	BytesRead    int
	BytesWritten int
	// Reply holds the bytes received by a probe. Unused on the server side.
	Reply []byte
	// Err is the underlying cause, nil for Success and EmptyPayload.
	Err      error
	Duration time.Duration
}

// Ok reports whether the exchange completed with a transformed reply
func (o Outcome) Ok() bool {
	return o.Kind == Success
}

func (o Outcome) String() string {
	s := fmt.Sprintf("%s conn=%s remote=%s read=%d written=%d took=%s",
		o.Kind, o.ConnID, o.RemoteAddr, o.BytesRead, o.BytesWritten, o.Duration)
	if o.Err != nil {
		s += fmt.Sprintf(" err=%v", o.Err)
	}
	return s
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is returned for acceptor-level failures. It wraps the cause so that
// errors.Is still matches the underlying syscall error.
type Error struct {
	Kind Kind
	Err  error
}

// NewError creates a new Error with the given kind and cause.
func NewError(kind Kind, err error) *Error {
	return &Error{
		Kind: kind,
		Err:  err,
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
