package client

import (
	"context"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/ValentinKolb/oneshot/rpc/transport"
	"github.com/ValentinKolb/oneshot/rpc/transport/tcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// startServer runs a fresh tcp server on a random loopback port and returns its port
func startServer(t *testing.T) int {
	t.Helper()

	config := common.DefaultServerConfig()
	config.Transport.Endpoint = "127.0.0.1:0"
	config.ReadTimeout = 200 * time.Millisecond
	config.GraceInterval = 5 * time.Millisecond

	srv := tcp.NewTCPServerTransport()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Listen(ctx, config) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	require.Eventually(t, func() bool { return srv.Addr() != nil }, 2*time.Second, 5*time.Millisecond)
	return srv.Addr().(*net.TCPAddr).Port
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func testRunner(port int) *Runner {
	config := common.DefaultClientConfig()
	config.Host = "127.0.0.1"
	config.Port = port
	config.ReadTimeout = 3 * time.Second
	return NewRunner(tcp.NewTCPClientTransport(config), config)
}

func diagnosticCases(t *testing.T) []TestCase {
	return []TestCase{
		{Label: "normal", Payload: "hello server"},
		{Label: "empty", Payload: ""},
		{Label: "wrong port", Payload: "test", Port: freePort(t)},
		{Label: "bad host", Payload: "test", Host: "no_such_host.invalid"},
		{Label: "idle", Idle: true},
		{Label: "invalid text", PayloadHex: "fffe"},
	}
}

func TestRunnerClassifiesDiagnosticCases(t *testing.T) {
	port := startServer(t)
	results := testRunner(port).Run(context.Background(), diagnosticCases(t))

	require.Len(t, results, 6)
	assert.Equal(t, []outcome.Kind{
		outcome.Success,
		outcome.Success,
		outcome.ConnectionRefused,
		outcome.NameResolutionFailure,
		outcome.Success,
		outcome.EmptyPayload,
	}, Kinds(results))

	assert.Equal(t, "HELLO SERVER", string(results[0].Outcome.Reply))
	assert.Equal(t, transport.WarningMessage, string(results[1].Outcome.Reply))
	assert.Equal(t, transport.WarningMessage, string(results[4].Outcome.Reply))
}

func TestRunnerIsIdempotent(t *testing.T) {
	cases := diagnosticCases(t)

	first := Kinds(testRunner(startServer(t)).Run(context.Background(), cases))
	second := Kinds(testRunner(startServer(t)).Run(context.Background(), cases))

	assert.Equal(t, first, second)
}

func TestRunnerStopsProbingAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := testRunner(freePort(t)).Run(ctx, []TestCase{{Label: "a"}, {Label: "b"}})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, outcome.UnexpectedError, r.Outcome.Kind)
	}
}

func TestRunnerEndpoint(t *testing.T) {
	r := testRunner(8080)

	assert.Equal(t, "127.0.0.1:8080", r.Endpoint(TestCase{}))
	assert.Equal(t, "127.0.0.1:9999", r.Endpoint(TestCase{Port: 9999}))
	assert.Equal(t, "no_such_host:8080", r.Endpoint(TestCase{Host: "no_such_host"}))
	assert.Equal(t, "[::1]:7", r.Endpoint(TestCase{Host: "::1", Port: 7}))
	assert.Equal(t, "/tmp/x.sock", r.Endpoint(TestCase{Host: "ignored", Endpoint: "/tmp/x.sock"}))
}

func TestLoadTestCases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	content := `
- label: "1. Normal Message"
  payload: "hello server"
- payload: "test"
  port: 9999
- label: "idle"
  idle: true
- label: "bytes"
  payload_hex: "fffe"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cases, err := LoadTestCases(path)
	require.NoError(t, err)
	require.Len(t, cases, 4)

	assert.Equal(t, "hello server", cases[0].Payload)
	assert.Equal(t, "2. (unnamed)", cases[1].Label)
	assert.Equal(t, 9999, cases[1].Port)
	assert.True(t, cases[2].Idle)

	b, err := cases[3].Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xfe}, b)
}

func TestLoadTestCasesRejectsInvalidHex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`- payload_hex: "zz"`), 0o600))

	_, err := LoadTestCases(path)
	assert.ErrorContains(t, err, "payload_hex")
}

func TestReport(t *testing.T) {
	refused := Result{
		Case:     TestCase{Label: "3. Wrong Port"},
		Endpoint: "127.0.0.1:9999",
		Outcome:  outcome.Outcome{Kind: outcome.ConnectionRefused},
	}
	assert.Contains(t, refused.Report(), "Connection refused at 127.0.0.1:9999")

	unresolved := Result{
		Case:     TestCase{Label: "4. Bad Hostname"},
		Endpoint: "no_such_host:8080",
		Outcome:  outcome.Outcome{Kind: outcome.NameResolutionFailure},
	}
	assert.Contains(t, unresolved.Report(), "Hostname resolution failed for 'no_such_host'")

	ok := Result{
		Case:     TestCase{Label: "1. Normal Message"},
		Endpoint: "127.0.0.1:8080",
		Payload:  []byte("hello server"),
		Outcome:  outcome.Outcome{Kind: outcome.Success, LocalAddr: "127.0.0.1:50000", Reply: []byte("HELLO SERVER")},
	}
	report := ok.Report()
	assert.Contains(t, report, "SUCCESS: Connection established to 127.0.0.1:8080")
	assert.Contains(t, report, `Sending: "hello server"`)
	assert.Contains(t, report, "Server response: HELLO SERVER")
	assert.Contains(t, report, "Connection closed.")
}
