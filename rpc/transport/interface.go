package transport

import (
	"context"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/ValentinKolb/oneshot/lib/transform"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"net"
)

// WarningMessage is sent when a client sends nothing before the read deadline
// or closes its write side without sending any data.
const WarningMessage = "You didn't send any data or sent an empty string"

// ObserverFunc is called once for every finished connection
type ObserverFunc func(o outcome.Outcome)

// --------------------------------------------------------------------------
// Server Transport
// --------------------------------------------------------------------------

// IServerTransport is the interface for the one-shot server transport layer
type IServerTransport interface {
	// RegisterHandler registers the transform applied to every request payload
	RegisterHandler(fn transform.Func)
	// RegisterObserver registers a function that receives the outcome of every connection
	RegisterObserver(fn ObserverFunc)
	// Listen binds the endpoint and runs the accept loop until ctx is cancelled.
	// A failed bind returns an *outcome.Error of kind BindError, a failed accept
	// one of kind AcceptError. A cancelled ctx returns nil.
	Listen(ctx context.Context, config common.ServerConfig) error
	// Addr returns the bound address, nil before Listen has bound the endpoint
	Addr() net.Addr
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// ProbeOptions alter a single probe
type ProbeOptions struct {
	// Idle sends nothing and keeps the write side open,
	// so the server runs into its read deadline.
	Idle bool
}

// IClientTransport is the interface for the probe client transport
type IClientTransport interface {
	// Probe opens one connection to endpoint, sends payload, reads one reply and closes.
	// It never returns an error, every failure is classified in the outcome.
	Probe(ctx context.Context, endpoint string, payload []byte, opts ProbeOptions) outcome.Outcome
	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string
}
