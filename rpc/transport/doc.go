// Package transport defines the contract between the oneshot server, the probe
// and the concrete transports. The protocol is deliberately minimal: one raw
// write per direction, no framing, one exchange per connection.
//
// The package focuses on:
//   - Defining interfaces for the server (acceptor plus connection handler) and
//     the probe client
//   - Enabling multiple transport implementations (TCP, Unix sockets)
//
// Key Components:
//
//   - IServerTransport: binds an endpoint, accepts connections and runs the
//     registered transform once per connection.
//
//   - IClientTransport: opens a connection, sends one payload and classifies
//     the reply.
//
//   - WarningMessage: the fixed reply for clients that send nothing.
package transport
