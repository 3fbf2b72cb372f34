package client

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/ValentinKolb/oneshot/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"net"
	"strconv"
	"strings"
)

var Logger = logger.GetLogger(common.LoggerProbe)

// Result is the outcome of one test case
type Result struct {
	Case     TestCase
	Endpoint string
	Payload  []byte
	Outcome  outcome.Outcome
}

// Runner executes test cases sequentially against a default target
type Runner struct {
	transport transport.IClientTransport
	config    common.ClientConfig
}

// NewRunner creates a new Runner using the host, port and socket path of config as defaults
func NewRunner(t transport.IClientTransport, config common.ClientConfig) *Runner {
	return &Runner{
		transport: t,
		config:    config,
	}
}

// Run executes all cases in order. A failing case does not stop the run,
// a cancelled ctx marks the remaining cases as UnexpectedError.
func (r *Runner) Run(ctx context.Context, cases []TestCase) []Result {
	results := make([]Result, 0, len(cases))
	for _, tc := range cases {
		results = append(results, r.RunCase(ctx, tc))
	}
	return results
}

// RunCase executes a single test case
func (r *Runner) RunCase(ctx context.Context, tc TestCase) Result {
	result := Result{Case: tc, Endpoint: r.Endpoint(tc)}

	payload, err := tc.Bytes()
	if err != nil {
		result.Outcome = outcome.Outcome{Kind: outcome.UnexpectedError, Err: err}
		return result
	}
	result.Payload = payload

	if err := ctx.Err(); err != nil {
		result.Outcome = outcome.Outcome{Kind: outcome.UnexpectedError, Err: err}
		return result
	}

	Logger.Debugf("running %q against %s", tc.Label, result.Endpoint)
	result.Outcome = r.transport.Probe(ctx, result.Endpoint, payload, transport.ProbeOptions{Idle: tc.Idle})
	return result
}

// Endpoint resolves the target of a test case
func (r *Runner) Endpoint(tc TestCase) string {
	if tc.Endpoint != "" {
		return tc.Endpoint
	}
	if r.transport.GetName() == "unix" {
		return r.config.SocketPath
	}

	host := r.config.Host
	if tc.Host != "" {
		host = tc.Host
	}
	port := r.config.Port
	if tc.Port != 0 {
		port = tc.Port
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Kinds returns the classification sequence of the results
func Kinds(results []Result) []outcome.Kind {
	kinds := make([]outcome.Kind, len(results))
	for i, r := range results {
		kinds[i] = r.Outcome.Kind
	}
	return kinds
}

// Report renders a human readable report of the result
func (res Result) Report() string {
	var sb strings.Builder
	o := res.Outcome

	sb.WriteString(fmt.Sprintf("\n--- %s ---\n", res.Case.Label))

	switch o.Kind {
	case outcome.ConnectionRefused:
		sb.WriteString(fmt.Sprintf("SOCKET ERROR: Connection refused at %s (server down or port incorrect).\n", res.Endpoint))
		return sb.String()
	case outcome.NameResolutionFailure:
		sb.WriteString(fmt.Sprintf("SOCKET ERROR: Hostname resolution failed for '%s'.\n", hostOf(res.Endpoint)))
		return sb.String()
	}

	// every other kind means the connection was established (or the case was invalid)
	if o.LocalAddr != "" {
		sb.WriteString(fmt.Sprintf("SUCCESS: Connection established to %s\n", res.Endpoint))
		if res.Case.Idle {
			sb.WriteString("Sending: nothing (idle)\n")
		} else {
			sb.WriteString(fmt.Sprintf("Sending: %q\n", res.Payload))
		}
	}

	switch o.Kind {
	case outcome.Success:
		sb.WriteString(fmt.Sprintf("Server response: %s\n", o.Reply))
	case outcome.EmptyPayload:
		sb.WriteString("Server closed the connection without a response.\n")
	case outcome.ReadTimeout:
		sb.WriteString("SOCKET ERROR: Timed out waiting for the server response.\n")
	case outcome.ConnectionReset:
		sb.WriteString("SOCKET ERROR: Connection was reset by the server.\n")
	case outcome.DecodeError:
		sb.WriteString("SOCKET ERROR: Received non-decodable data from server.\n")
	default:
		sb.WriteString(fmt.Sprintf("SOCKET ERROR: Unexpected issue - %v\n", o.Err))
	}

	if o.LocalAddr != "" {
		sb.WriteString("Connection closed.\n")
	}
	return sb.String()
}

// hostOf returns the host part of a host:port endpoint
func hostOf(endpoint string) string {
	host, _, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint
	}
	return host
}
