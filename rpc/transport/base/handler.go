package base

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/ValentinKolb/oneshot/rpc/transport"
	"net"
	"time"
	"unicode/utf8"
)

// errInvalidText is attached to DecodeError outcomes
var errInvalidText = errors.New("payload is not valid UTF-8 text")

// handleConnection owns conn until it returns: exactly one read, at most one
// write, then the grace interval and exactly one close on every path.
//
// Accepted -> Reading -> {Transforming -> Writing} | TerminalFailure -> Closing -> Closed
func (t *serverTransport) handleConnection(id string, conn net.Conn) (o outcome.Outcome) {
	start := time.Now()
	o = outcome.Outcome{
		ConnID:     id,
		LocalAddr:  addrString(conn.LocalAddr()),
		RemoteAddr: addrString(conn.RemoteAddr()),
	}

	// Closing: registered first so it runs last
	defer func() {
		time.Sleep(t.config.GraceInterval)
		closeQuietly(conn)
		o.Duration = time.Since(start)
	}()

	// Get a buffer from the pool, it is only used by this handler
	buf := t.bufferPool.Get().([]byte)
	defer t.bufferPool.Put(buf)

	// Reading
	if err := conn.SetReadDeadline(time.Now().Add(t.config.ReadTimeout)); err != nil {
		o.Kind, o.Err = outcome.UnexpectedError, fmt.Errorf("failed to set read deadline: %w", err)
		return o
	}

	n, err := conn.Read(buf)
	o.BytesRead = n

	// Case nothing read: empty payload, timeout, reset or other failure
	if n == 0 {
		o.Kind = outcome.ClassifyRead(err)
		if o.Kind != outcome.EmptyPayload {
			o.Err = err
		}

		if o.Kind == outcome.EmptyPayload || o.Kind == outcome.ReadTimeout {
			written, werr := t.write(conn, []byte(transport.WarningMessage))
			o.BytesWritten = written
			if werr != nil {
				Logger.Warningf("Failed to send warning to %s: %v", o.RemoteAddr, werr)
				o.Err = errors.Join(o.Err, werr)
			}
		}
		return o
	}

	payload := buf[:n]
	if !utf8.Valid(payload) {
		o.Kind, o.Err = outcome.DecodeError, errInvalidText
		return o
	}

	// Transforming
	reply, err := t.transform(payload)
	if err != nil {
		o.Kind, o.Err = outcome.UnexpectedError, err
		return o
	}

	// Writing
	written, err := t.write(conn, reply)
	o.BytesWritten = written
	if err != nil {
		o.Kind, o.Err = outcome.UnexpectedError, fmt.Errorf("failed to write reply: %w", err)
		return o
	}

	o.Kind = outcome.Success
	return o
}

// transform runs the registered handler, a panic is turned into an error
func (t *serverTransport) transform(payload []byte) (reply []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()
	return t.handler(payload), nil
}

// write writes p in full, bounded by the configured write timeout
func (t *serverTransport) write(conn net.Conn, p []byte) (int, error) {
	if t.config.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout)); err != nil {
			return 0, fmt.Errorf("failed to set write deadline: %w", err)
		}
	}
	return conn.Write(p)
}
