package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Shared socket configuration
// --------------------------------------------------------------------------

// SocketConf holds socket buffer sizes in bytes. Zero keeps the OS default.
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	// TCPLingerSec < 0 keeps the OS default
	TCPLingerSec int
}

// --------------------------------------------------------------------------
// Server configuration struct
// --------------------------------------------------------------------------

const (
	DefaultEndpoint            = "0.0.0.0:8080"
	DefaultBufferSize          = 1024
	DefaultReadTimeout         = 3 * time.Second
	DefaultWriteTimeout        = 3 * time.Second
	DefaultGraceInterval       = 100 * time.Millisecond
	DefaultShutdownTimeout     = 5 * time.Second
	DefaultTransform           = "upper"
	DefaultProbeReadTimeout    = 10 * time.Second
	DefaultProbeWriteTimeout   = 3 * time.Second
	DefaultProbeConnectTimeout = 5 * time.Second
)

// ServerTransportConfig holds the transport options of the server
type ServerTransportConfig struct {
	// Endpoint is a host:port pair for tcp or a socket path for unix
	Endpoint string
	SocketConf
	TCPConf
}

// ServerConfig holds all configuration parameters of the oneshot server.
type ServerConfig struct {
	Transport ServerTransportConfig

	// BufferSize is the capacity of the single read per connection
	BufferSize int

	// per connection timings
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	GraceInterval time.Duration

	// ShutdownTimeout bounds how long in-flight handlers may run after a stop signal
	ShutdownTimeout time.Duration

	// Transform is the name of the registered transform (see lib/transform)
	Transform string

	// MetricsEndpoint is the address of the /metrics http endpoint, empty disables it
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// DefaultServerConfig returns the reference configuration (port 8080, 3s read deadline, 100ms grace)
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Transport: ServerTransportConfig{
			Endpoint: DefaultEndpoint,
			TCPConf: TCPConf{
				TCPNoDelay:   true,
				TCPLingerSec: -1,
			},
		},
		BufferSize:      DefaultBufferSize,
		ReadTimeout:     DefaultReadTimeout,
		WriteTimeout:    DefaultWriteTimeout,
		GraceInterval:   DefaultGraceInterval,
		ShutdownTimeout: DefaultShutdownTimeout,
		Transform:       DefaultTransform,
		LogLevel:        "info",
	}
}

// Validate checks the configuration for values the server cannot work with
func (c *ServerConfig) Validate() error {
	if c.Transport.Endpoint == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("buffer size must be positive, got %d", c.BufferSize)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("read timeout must be positive, got %s", c.ReadTimeout)
	}
	if c.GraceInterval < 0 {
		return fmt.Errorf("grace interval must not be negative, got %s", c.GraceInterval)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Server")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Transform", c.Transform)
	addField("Buffer Size", fmt.Sprintf("%d bytes", c.BufferSize))
	addField("Read Timeout", c.ReadTimeout.String())
	addField("Write Timeout", c.WriteTimeout.String())
	addField("Grace Interval", c.GraceInterval.String())
	addField("Shutdown Timeout", c.ShutdownTimeout.String())

	addSection("Socket")
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.ReadBufferSize))

	addSection("Observability")
	addField("Log Level", c.LogLevel)
	if c.MetricsEndpoint != "" {
		addField("Metrics Endpoint", c.MetricsEndpoint)
	} else {
		addField("Metrics Endpoint", "disabled")
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Probe client configuration struct
// --------------------------------------------------------------------------

// ClientTransportConfig holds the transport options of the probe
type ClientTransportConfig struct {
	SocketConf
	TCPConf
}

// ClientConfig holds the configuration of the probe client
type ClientConfig struct {
	// Host and Port are the default target, test cases may override them
	Host string
	Port int
	// SocketPath is the target for the unix transport
	SocketPath string

	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	Transport ClientTransportConfig
}

// DefaultClientConfig returns a client configuration targeting the local reference server
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Host:           "127.0.0.1",
		Port:           8080,
		ConnectTimeout: DefaultProbeConnectTimeout,
		ReadTimeout:    DefaultProbeReadTimeout,
		WriteTimeout:   DefaultProbeWriteTimeout,
		Transport: ClientTransportConfig{
			TCPConf: TCPConf{
				TCPNoDelay:   true,
				TCPLingerSec: -1,
			},
		},
	}
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Probe Configuration")
	addField("Host", c.Host)
	addField("Port", strconv.Itoa(c.Port))
	if c.SocketPath != "" {
		addField("Socket Path", c.SocketPath)
	}
	addField("Connect Timeout", c.ConnectTimeout.String())
	addField("Read Timeout", c.ReadTimeout.String())
	addField("Write Timeout", c.WriteTimeout.String())

	return sb.String()
}
