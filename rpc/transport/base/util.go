package base

import (
	"net"
)

// closeQuietly closes conn and swallows the error, close never propagates
func closeQuietly(conn net.Conn) {
	if err := conn.Close(); err != nil {
		Logger.Debugf("ignoring close error: %v", err)
	}
}

// closeWrite half-closes conn so the peer reads EOF after the payload.
// Connections without a write side of their own are left untouched.
func closeWrite(conn net.Conn) error {
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		return cw.CloseWrite()
	}
	return nil
}

// addrString formats addr, nil safe
func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
