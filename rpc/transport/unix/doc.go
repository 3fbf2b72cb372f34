// Package unix implements the Unix domain socket transport of the oneshot
// service. The endpoint is a socket path. A stale socket file (no process
// accepts on it) is removed before binding, a socket served by a live process
// fails with EADDRINUSE and any other file is never touched. Host and port overrides of probe test cases do not apply.
package unix
