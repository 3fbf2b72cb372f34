package transform

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
)

// Func turns a request payload into the reply payload.
// Implementations must not retain the input slice, it is reused after the reply is written.
type Func func(payload []byte) []byte

// Upper uppercases the payload, everything else is echoed unchanged
func Upper(payload []byte) []byte {
	return bytes.ToUpper(payload)
}

// Lower lowercases the payload
func Lower(payload []byte) []byte {
	return bytes.ToLower(payload)
}

// Echo returns a copy of the payload
func Echo(payload []byte) []byte {
	return bytes.Clone(payload)
}

var registry = map[string]Func{
	"upper": Upper,
	"lower": Lower,
	"echo":  Echo,
}

// Lookup returns the transform registered under name (case-insensitive)
func Lookup(name string) (Func, error) {
	fn, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q (expected one of: %s)", name, strings.Join(Names(), ", "))
	}
	return fn, nil
}

// Names returns the registered transform names, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
