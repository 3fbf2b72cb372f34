// Package tcp implements the TCP transport of the oneshot service. It provides
// concrete implementations of the base package's connector interfaces.
//
// Key Components:
//
//   - serverConnector: binds a TCP listener (default 0.0.0.0:8080) and applies
//     socket options to accepted connections.
//
//   - clientConnector: dials the probe target honoring the context deadline,
//     so connect-time failures (refused, unresolved host) surface as errors
//     the base package can classify.
//
// Socket options (no-delay, keep-alive, linger, buffer sizes) come from
// common.TCPConf and common.SocketConf. A linger of 0 makes close send a reset
// instead of a FIN, which is how the tests provoke ConnectionReset.
package tcp
