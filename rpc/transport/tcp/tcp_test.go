package tcp

import (
	"context"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/ValentinKolb/oneshot/lib/transform"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/ValentinKolb/oneshot/rpc/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"pgregory.net/rapid"
	"strings"
	"testing"
	"time"
)

func startServer(t *testing.T, config common.ServerConfig) (transport.IServerTransport, chan outcome.Outcome) {
	t.Helper()

	srv := NewTCPServerTransport()
	outcomes := make(chan outcome.Outcome, 256)
	srv.RegisterObserver(func(o outcome.Outcome) {
		select {
		case outcomes <- o:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Listen(ctx, config) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 2*time.Second, 5*time.Millisecond)
	return srv, outcomes
}

func testConfig() common.ServerConfig {
	config := common.DefaultServerConfig()
	config.Transport.Endpoint = "127.0.0.1:0"
	config.GraceInterval = time.Millisecond
	return config
}

func TestServerDetectsClientReset(t *testing.T) {
	srv, outcomes := startServer(t, testConfig())

	conn, err := net.Dial("tcp", srv.Addr().String())
	require.NoError(t, err)

	// wait for the accept, then abort: linger 0 sends a reset
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, conn.(*net.TCPConn).SetLinger(0))
	require.NoError(t, conn.Close())

	select {
	case o := <-outcomes:
		assert.Equal(t, outcome.ConnectionReset, o.Kind, "outcome: %s", o)
		assert.Zero(t, o.BytesWritten)
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome reported")
	}
}

func TestRoundTripProperty(t *testing.T) {
	srv, _ := startServer(t, testConfig())
	probe := NewTCPClientTransport(common.DefaultClientConfig())
	upper, err := transform.Lookup("upper")
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		// printable and control ASCII without NUL, up to the server buffer size
		payload := string(rapid.SliceOfN(rapid.ByteRange(1, 127), 1, 1024).Draw(rt, "payload"))

		o := probe.Probe(context.Background(), srv.Addr().String(), []byte(payload), transport.ProbeOptions{})
		if o.Kind != outcome.Success {
			rt.Fatalf("probe failed: %s", o)
		}
		if want := string(upper([]byte(payload))); string(o.Reply) != want {
			rt.Fatalf("reply %q, want %q", o.Reply, want)
		}
		if string(o.Reply) != strings.ToUpper(payload) {
			rt.Fatalf("reply %q is not the uppercased payload", o.Reply)
		}
	})
}

func TestNameResolutionFailure(t *testing.T) {
	probe := NewTCPClientTransport(common.DefaultClientConfig())

	o := probe.Probe(context.Background(), "no_such_host.invalid:8080", []byte("test"), transport.ProbeOptions{})

	assert.Equal(t, outcome.NameResolutionFailure, o.Kind, "outcome: %s", o)
}

func TestListenBindError(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()

	config := testConfig()
	config.Transport.Endpoint = occupied.Addr().String()

	err = NewTCPServerTransport().Listen(context.Background(), config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BindError")
	assert.Contains(t, err.Error(), "address already in use")
}

func TestApplySocketOptions(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	conn, err := net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	err = applySocketOptions(conn,
		common.SocketConf{WriteBufferSize: 64 * 1024, ReadBufferSize: 64 * 1024},
		common.TCPConf{TCPNoDelay: true, TCPKeepAliveSec: 30, TCPLingerSec: 1},
	)
	assert.NoError(t, err)

	// non tcp connections are left untouched
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()
	assert.NoError(t, applySocketOptions(a, common.SocketConf{}, common.TCPConf{}))
}
