// Package outcome defines the classification attached to every connection
// handled by the oneshot server or opened by the probe.
//
// A connection ends in exactly one Kind. Per-connection kinds (ReadTimeout,
// EmptyPayload, ConnectionReset, ...) are reported as Outcome values and never
// escape the handler or probe as errors. The acceptor-level kinds (BindError,
// AcceptError) are fatal and are returned as *Error so callers can inspect
// them with errors.As.
//
// Key Components:
//
//   - Kind: enumeration of the failure taxonomy plus Success.
//
//   - Outcome: the per-connection record (addresses, byte counts, reply,
//     cause, duration) returned by handlers and probes.
//
//   - Error: typed error wrapping the cause of a fatal acceptor failure.
//
//   - ClassifyRead / ClassifyDial: map raw transport errors to a Kind using
//     errors.Is and errors.As on the syscall and net error types.
package outcome
