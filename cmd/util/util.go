package util

import (
	"fmt"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/ValentinKolb/oneshot/rpc/transport"
	"github.com/ValentinKolb/oneshot/rpc/transport/tcp"
	"github.com/ValentinKolb/oneshot/rpc/transport/unix"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads the env files and configures viper's environment lookup
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("oneshot")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match

	// the probe host can also be set with APP (container setups)
	_ = viper.BindEnv("host", "ONESHOT_HOST", "APP")
}

// SetupSocketFlags adds the socket option flags shared by server and probe
func SetupSocketFlags(cmd *cobra.Command) {
	key := "write-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket write buffer (in KB, 0 keeps the OS default)"))

	key = "read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("The size of the socket read buffer (in KB, 0 keeps the OS default)"))

	key = "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval (in seconds, 0 disables it, only for tcp)"))

	key = "tcp-linger"
	cmd.PersistentFlags().Int(key, -1, WrapString("The linger time (in seconds, -1 keeps the OS default, only for tcp)"))
}

// DefaultSocketPath is the unix endpoint used by serve and probe when none is given
const DefaultSocketPath = "/tmp/oneshot.sock"

// ServerEndpoint returns the endpoint to bind. The tcp default endpoint is not a
// usable socket path, so the unix transport falls back to DefaultSocketPath
// unless the endpoint was set explicitly.
func ServerEndpoint(transportName, endpoint string, explicit bool) string {
	if transportName == "unix" && !explicit && endpoint == common.DefaultEndpoint {
		return DefaultSocketPath
	}
	return endpoint
}

// GetSocketConf reads the socket options from viper
func GetSocketConf() (common.SocketConf, common.TCPConf) {
	return common.SocketConf{
			WriteBufferSize: viper.GetInt("write-buffer") * 1024,
			ReadBufferSize:  viper.GetInt("read-buffer") * 1024,
		}, common.TCPConf{
			TCPNoDelay:      viper.GetBool("tcp-nodelay"),
			TCPKeepAliveSec: viper.GetInt("tcp-keepalive"),
			TCPLingerSec:    viper.GetInt("tcp-linger"),
		}
}

// SetupProbeFlags adds the probe connection flags to a command
func SetupProbeFlags(cmd *cobra.Command) {
	key := "host"
	cmd.PersistentFlags().String(key, "127.0.0.1", WrapString("The host of the oneshot server (also read from APP)"))

	key = "port"
	cmd.PersistentFlags().Int(key, 8080, WrapString("The port of the oneshot server"))

	key = "socket-path"
	cmd.PersistentFlags().String(key, DefaultSocketPath, WrapString("The socket path of the oneshot server (only for unix)"))

	key = "connect-timeout"
	cmd.PersistentFlags().Duration(key, common.DefaultProbeConnectTimeout, WrapString("How long to wait for the connection to be established"))

	key = "read-timeout"
	cmd.PersistentFlags().Duration(key, common.DefaultProbeReadTimeout, WrapString("How long to wait for the server response"))

	key = "write-timeout"
	cmd.PersistentFlags().Duration(key, common.DefaultProbeWriteTimeout, WrapString("How long sending the payload may take"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	SetupSocketFlags(cmd)
}

// GetClientConfig reads the probe configuration from viper
func GetClientConfig() *common.ClientConfig {
	socket, tcpConf := GetSocketConf()
	return &common.ClientConfig{
		Host:           viper.GetString("host"),
		Port:           viper.GetInt("port"),
		SocketPath:     viper.GetString("socket-path"),
		ConnectTimeout: viper.GetDuration("connect-timeout"),
		ReadTimeout:    viper.GetDuration("read-timeout"),
		WriteTimeout:   viper.GetDuration("write-timeout"),
		Transport: common.ClientTransportConfig{
			SocketConf: socket,
			TCPConf:    tcpConf,
		},
	}
}

// GetClientTransport creates the probe transport based on configuration
func GetClientTransport(config common.ClientConfig) (transport.IClientTransport, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPClientTransport(config), nil
	case "unix":
		return unix.NewUnixClientTransport(config), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetServerTransport creates the server transport based on configuration
func GetServerTransport() (transport.IServerTransport, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewTCPServerTransport(), nil
	case "unix":
		return unix.NewUnixServerTransport(), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
