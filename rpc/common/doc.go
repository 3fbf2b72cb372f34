// Package common provides configuration structures and utilities shared by the
// oneshot server, the transports and the probe client.
//
// The package focuses on:
//   - Configuration structures for the server and the probe
//   - Custom logging implementation integrated with Dragonboat's logger registry
//   - Connection metrics backed by VictoriaMetrics
//
// Key Components:
//
//   - ServerConfig: endpoint, per-connection timings (read deadline, write
//     deadline, grace interval), buffer size, transform name, socket options
//     and observability settings. DefaultServerConfig returns the reference
//     values (0.0.0.0:8080, 1024 bytes, 3s, 100ms).
//
//   - ClientConfig: default probe target and probe timeouts.
//
//   - Logger: custom ILogger implementation installed as the global
//     Dragonboat logger factory, so every package logger shares one format.
//
//   - ConnectionMetrics: outcome counters and a duration histogram per
//     transport, exposed on /metrics by NewMetricsServer.
package common
