// Package base implements the protocol-agnostic core of the oneshot service:
// the acceptor, the connection handler and the probe. Concrete transports
// (tcp, unix) only supply connectors that create listeners and connections
// and apply socket options.
//
// Key Components:
//
//   - IClientConnector/IServerConnector: Interfaces for protocol-specific operations
//     that allow extending the base transport with different network protocols.
//
//   - serverTransport: runs a single blocking accept loop and hands every
//     connection to its own goroutine. Individual connection failures are
//     classified and survived, a failed bind or accept is fatal and returned
//     as *outcome.Error. Cancelling the context closes the listener, waits for
//     in-flight handlers (bounded by the shutdown timeout) and returns nil.
//
//   - handleConnection: one exchange per connection. Read once with a deadline,
//     classify, transform, write once with a deadline, sleep the grace interval
//     and close exactly once. Silent or empty clients receive
//     transport.WarningMessage.
//
//   - clientTransport: the probe. Connect, write the payload, half-close the
//     write side, read one reply and close. Connect and read failures are
//     classified the same way the handler classifies them.
//
// Buffer Pooling:
//
//	The server reuses read buffers through a sync.Pool. A buffer is owned by
//	exactly one handler from the read until the reply is written.
//
// Thread Safety:
//
//	RegisterHandler and RegisterObserver must be called before Listen.
//	Handlers share no mutable state besides the in-flight registry.
package base
