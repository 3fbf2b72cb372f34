// Package transform provides the pluggable payload transformation applied by
// the connection handler between the read and the reply.
//
// A Func receives the request bytes and returns the reply bytes. Funcs are
// looked up by name (upper, lower, echo) and wrapped in an ordered chain of
// Middleware. A middleware may call the next Func or short-circuit and return
// its own reply.
//
// Usage:
//
//	fn, err := transform.Lookup("upper")
//	if err != nil {
//		return err
//	}
//	fn = transform.Chain(fn, transform.Logging(log), transform.Metrics("upper"))
//	reply := fn([]byte("hello server")) // "HELLO SERVER"
package transform
