package base

import (
	"context"
	"errors"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/stretchr/testify/require"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// fake connection with injectable read / write results
// --------------------------------------------------------------------------

type fakeConn struct {
	readData []byte
	readErr  error
	writeErr error

	mu      sync.Mutex
	written []byte
	closes  atomic.Int32
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if n := copy(p, c.readData); n > 0 {
		return n, nil
	}
	return 0, c.readErr
}

func (c *fakeConn) Write(p []byte) (int, error) {
	if c.writeErr != nil {
		return 0, c.writeErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.written = append(c.written, p...)
	return len(p), nil
}

func (c *fakeConn) Close() error {
	c.closes.Add(1)
	return errors.New("close always fails")
}

func (c *fakeConn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.written)
}

func (c *fakeConn) LocalAddr() net.Addr { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 8080} }
func (c *fakeConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

func (c *fakeConn) SetDeadline(time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

// --------------------------------------------------------------------------
// loopback connectors
// --------------------------------------------------------------------------

type testServerConnector struct {
	listen func(config common.ServerConfig) (net.Listener, error)
}

func (c *testServerConnector) GetName() string { return "test" }

func (c *testServerConnector) Listen(config common.ServerConfig) (net.Listener, error) {
	if c.listen != nil {
		return c.listen(config)
	}
	return net.Listen("tcp", config.Transport.Endpoint)
}

func (c *testServerConnector) UpgradeConnection(net.Conn, common.ServerConfig) error { return nil }

type testClientConnector struct{}

func (c *testClientConnector) GetName() string { return "test" }

func (c *testClientConnector) Connect(ctx context.Context, endpoint string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "tcp", endpoint)
}

func (c *testClientConnector) UpgradeConnection(net.Conn, common.ClientConfig) error { return nil }

// --------------------------------------------------------------------------
// helpers
// --------------------------------------------------------------------------

func testServerConfig() common.ServerConfig {
	config := common.DefaultServerConfig()
	config.Transport.Endpoint = "127.0.0.1:0"
	config.ReadTimeout = 300 * time.Millisecond
	config.GraceInterval = 5 * time.Millisecond
	config.ShutdownTimeout = time.Second
	return config
}

func testClientConfig() common.ClientConfig {
	config := common.DefaultClientConfig()
	config.ReadTimeout = 3 * time.Second
	return config
}

// runningServer is a server started on a random loopback port
type runningServer struct {
	transport *serverTransport
	outcomes  chan outcome.Outcome
	cancel    context.CancelFunc
	done      chan error
}

func (s *runningServer) endpoint() string {
	return s.transport.Addr().String()
}

// stop cancels the server and returns the error of Listen
func (s *runningServer) stop(t *testing.T) error {
	t.Helper()
	s.cancel()
	select {
	case err := <-s.done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
		return nil
	}
}

// nextOutcome waits for the outcome of the next finished connection
func (s *runningServer) nextOutcome(t *testing.T) outcome.Outcome {
	t.Helper()
	select {
	case o := <-s.outcomes:
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome reported")
		return outcome.Outcome{}
	}
}

func startServer(t *testing.T, config common.ServerConfig) *runningServer {
	t.Helper()

	st := NewBaseServerTransport(&testServerConnector{}).(*serverTransport)
	outcomes := make(chan outcome.Outcome, 64)
	st.RegisterObserver(func(o outcome.Outcome) { outcomes <- o })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	// closed after the result is sent, so stop and cleanup can both receive
	go func() {
		done <- st.Listen(ctx, config)
		close(done)
	}()

	require.Eventually(t, func() bool { return st.Addr() != nil }, 2*time.Second, 5*time.Millisecond)

	s := &runningServer{transport: st, outcomes: outcomes, cancel: cancel, done: done}
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return s
}
