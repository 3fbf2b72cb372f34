package base

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/ValentinKolb/oneshot/rpc/transport"
	"github.com/google/uuid"
	"net"
	"time"
	"unicode/utf8"
)

// probeBufferSize bounds the single reply read. It is larger than the server
// buffer since case mapping may grow multi-byte text.
const probeBufferSize = 4 * common.DefaultBufferSize

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to endpoint
	Connect(ctx context.Context, endpoint string) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements the probe independent of the specific transport medium
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new probe transport with the specified connector
func NewBaseClientTransport(connector IClientConnector, config common.ClientConfig) transport.IClientTransport {
	return &clientTransport{
		connector: connector,
		config:    config,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) GetName() string {
	return t.connector.GetName()
}

func (t *clientTransport) Probe(ctx context.Context, endpoint string, payload []byte, opts transport.ProbeOptions) (o outcome.Outcome) {
	start := time.Now()
	o = outcome.Outcome{ConnID: uuid.NewString(), RemoteAddr: endpoint}
	defer func() {
		o.Duration = time.Since(start)
	}()

	// Connect
	dialCtx := ctx
	if t.config.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, t.config.ConnectTimeout)
		defer cancel()
	}

	conn, err := t.connector.Connect(dialCtx, endpoint)
	if err != nil {
		o.Kind, o.Err = outcome.ClassifyDial(err), err
		return o
	}
	defer closeQuietly(conn)

	o.LocalAddr = addrString(conn.LocalAddr())
	o.RemoteAddr = addrString(conn.RemoteAddr())
	Logger.Debugf("Connection established to %s", o.RemoteAddr)

	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		o.Kind, o.Err = outcome.UnexpectedError, fmt.Errorf("failed to upgrade connection: %w", err)
		return o
	}

	// A cancelled ctx aborts blocking reads and writes
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	// Send (an empty payload is written as zero bytes and still half-closes)
	if !opts.Idle {
		if t.config.WriteTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(t.config.WriteTimeout))
		}
		n, err := conn.Write(payload)
		o.BytesWritten = n
		if err != nil {
			o.Kind, o.Err = classifyWrite(err), err
			return o
		}
		// a failed half-close (peer already gone) is surfaced by the read below
		if err := closeWrite(conn); err != nil {
			Logger.Debugf("failed to half-close connection to %s: %v", o.RemoteAddr, err)
		}
	}

	// Wait for exactly one reply
	if t.config.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(t.config.ReadTimeout))
	}
	buf := make([]byte, probeBufferSize)
	n, err := conn.Read(buf)
	o.BytesRead = n

	// Case no reply: the server closed without answering, timed out or reset
	if n == 0 {
		o.Kind = outcome.ClassifyRead(err)
		if o.Kind != outcome.EmptyPayload {
			o.Err = err
		}
		return o
	}

	o.Reply = buf[:n]
	if !utf8.Valid(o.Reply) {
		o.Kind, o.Err = outcome.DecodeError, errInvalidText
		return o
	}

	o.Kind = outcome.Success
	return o
}

// classifyWrite maps a send error, only a reset is distinguished
func classifyWrite(err error) outcome.Kind {
	if kind := outcome.ClassifyRead(err); kind == outcome.ConnectionReset {
		return kind
	}
	return outcome.UnexpectedError
}
