package base

import (
	"context"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/ValentinKolb/oneshot/lib/transform"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/ValentinKolb/oneshot/rpc/transport"
	"github.com/google/uuid"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"net"
	"sync"
	"time"
)

var Logger = logger.GetLogger(common.LoggerTransport)

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IServerConnector defines the interface for transport-specific server operations
type IServerConnector interface {
	// Listen creates a listener and returns it
	Listen(config common.ServerConfig) (net.Listener, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an accepted connection
	UpgradeConnection(conn net.Conn, config common.ServerConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// serverTransport implements the acceptor: one blocking accept loop,
// one goroutine per accepted connection
type serverTransport struct {
	connector  IServerConnector
	handler    transform.Func
	observers  []transport.ObserverFunc
	config     common.ServerConfig
	bufferPool *sync.Pool
	metrics    *common.ConnectionMetrics

	listenerMu sync.Mutex
	listener   net.Listener

	// in-flight connections by connection id
	active *xsync.MapOf[string, net.Conn]
	wg     sync.WaitGroup
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseServerTransport creates a new base server transport with the specified connector.
// Without a registered handler the payload is uppercased.
func NewBaseServerTransport(connector IServerConnector) transport.IServerTransport {
	t := &serverTransport{
		connector: connector,
		handler:   transform.Upper,
		metrics:   common.NewConnectionMetrics(connector.GetName()),
		active:    xsync.NewMapOf[string, net.Conn](),
	}
	t.configure(common.DefaultServerConfig())
	common.RegisterActiveGauge(connector.GetName(), t.active.Size)
	return t
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServerTransport)
// --------------------------------------------------------------------------

func (t *serverTransport) RegisterHandler(fn transform.Func) {
	t.handler = fn
}

func (t *serverTransport) RegisterObserver(fn transport.ObserverFunc) {
	t.observers = append(t.observers, fn)
}

func (t *serverTransport) Addr() net.Addr {
	t.listenerMu.Lock()
	defer t.listenerMu.Unlock()

	if t.listener == nil {
		return nil
	}
	return t.listener.Addr()
}

func (t *serverTransport) Listen(ctx context.Context, config common.ServerConfig) error {
	t.configure(config)

	// Create listener using the connector
	listener, err := t.connector.Listen(config)
	if err != nil {
		return outcome.NewError(outcome.BindError, err)
	}

	t.listenerMu.Lock()
	t.listener = listener
	t.listenerMu.Unlock()

	Logger.Infof("Server listening on %s (%s)", listener.Addr(), t.connector.GetName())

	// Closing the listener unblocks the in-flight Accept
	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	// Accept connections
	for {
		conn, err := listener.Accept()
		if err != nil {
			// Case stop signal: drain and exit cleanly
			if ctx.Err() != nil {
				Logger.Infof("Server shutdown requested")
				t.drain(config.ShutdownTimeout)
				Logger.Infof("Server shut down cleanly")
				return nil
			}

			// Case any other accept error: fatal
			_ = listener.Close()
			Logger.Errorf("Unexpected error in accept loop: %v", err)
			return outcome.NewError(outcome.AcceptError, err)
		}

		// Handle the connection in a goroutine, the loop resumes immediately
		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.serveConnection(conn)
		}()
	}
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// configure stores the config and (re)creates the buffer pool for its buffer size
func (t *serverTransport) configure(config common.ServerConfig) {
	bufferSize := config.BufferSize
	if bufferSize <= 0 {
		bufferSize = common.DefaultBufferSize
		config.BufferSize = bufferSize
	}

	t.config = config
	t.bufferPool = &sync.Pool{
		New: func() interface{} {
			return make([]byte, bufferSize)
		},
	}
}

// serveConnection registers conn as in-flight, runs the handler and reports the outcome
func (t *serverTransport) serveConnection(conn net.Conn) {
	id := uuid.NewString()
	t.active.Store(id, conn)
	defer t.active.Delete(id)

	Logger.Infof("Connection from %s (id %s)", conn.RemoteAddr(), id)

	// socket options are best effort, the exchange works without them
	if err := t.connector.UpgradeConnection(conn, t.config); err != nil {
		Logger.Warningf("Failed to apply socket options for %s: %v", conn.RemoteAddr(), err)
	}

	o := t.handleConnection(id, conn)
	t.report(o)
}

// report logs, counts and forwards the outcome of one connection
func (t *serverTransport) report(o outcome.Outcome) {
	switch o.Kind {
	case outcome.Success:
		Logger.Infof("Received %d bytes from %s, replied with %d bytes", o.BytesRead, o.RemoteAddr, o.BytesWritten)
	case outcome.EmptyPayload:
		Logger.Warningf("Client %s sent nothing (closed connection)", o.RemoteAddr)
	case outcome.ReadTimeout:
		Logger.Warningf("Client %s timed out waiting for data", o.RemoteAddr)
	case outcome.ConnectionReset:
		Logger.Warningf("Client %s forcibly closed the connection", o.RemoteAddr)
	case outcome.DecodeError:
		Logger.Warningf("Received data from %s was not valid text", o.RemoteAddr)
	default:
		Logger.Errorf("Error handling client %s: %v", o.RemoteAddr, o.Err)
	}
	Logger.Debugf("connection %s", o)

	t.metrics.Observe(o)
	for _, observe := range t.observers {
		observe(o)
	}
}

// drain waits for in-flight handlers. After timeout the remaining connections get
// an immediate deadline, their handlers then classify the abort and close as usual.
func (t *serverTransport) drain(timeout time.Duration) {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	if timeout <= 0 {
		<-done
		return
	}

	select {
	case <-done:
		return
	case <-time.After(timeout):
	}

	Logger.Warningf("%d connection(s) still in flight after %s, aborting them", t.active.Size(), timeout)
	t.active.Range(func(id string, conn net.Conn) bool {
		Logger.Debugf("aborting connection %s from %s", id, conn.RemoteAddr())
		_ = conn.SetDeadline(time.Now())
		return true
	})
	<-done
}
