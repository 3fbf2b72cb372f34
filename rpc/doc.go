// Package rpc provides the network side of oneshot: a listener that serves exactly
// one message per connection and a probe client that classifies how an exchange ended.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structures, the logger factory and the connection metrics
//     used across the server and the probe.
//
//   - transport: Network communication abstractions with pluggable implementations
//     (TCP, Unix sockets). The base subpackage holds the accept loop, the connection
//     handler and the probe, the tcp and unix subpackages only provide connectors.
//
//   - client: The test case runner driving the probe (built-in cases or YAML files).
//
//   - server: Wires the configuration, the transform chain, the transport and the
//     metrics endpoint into a runnable server.
package rpc
