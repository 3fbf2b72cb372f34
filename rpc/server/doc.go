// Package server implements the oneshot server: it validates the configuration,
// initializes the loggers, builds the transform chain and runs the transport
// together with the optional metrics endpoint.
//
// Key Components:
//
//   - Server: wraps a transport.IServerTransport. Serve blocks until the
//     context is cancelled (clean shutdown, nil error) or the transport fails
//     fatally (bind or accept error, returned as *outcome.Error).
//
//   - Transform chain: the transform named in the configuration, wrapped in
//     the logging and metrics middlewares plus any caller supplied middleware.
package server
