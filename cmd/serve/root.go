package serve

import (
	"context"
	"errors"
	"fmt"
	cmdUtil "github.com/ValentinKolb/oneshot/cmd/util"
	"github.com/ValentinKolb/oneshot/lib/outcome"
	"github.com/ValentinKolb/oneshot/lib/transform"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/ValentinKolb/oneshot/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

var (
	serveCmdConfig = common.DefaultServerConfig()
	ServeCmd       = &cobra.Command{
		Use:          "serve",
		Short:        "Start the oneshot server",
		Long:         `Start the oneshot server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is ONESHOT_<flag> (e.g. ONESHOT_READ_TIMEOUT=5s)`,
		PreRunE:      processConfig,
		RunE:         run,
		SilenceUsage: true,
	}
)

func init() {
	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, common.DefaultEndpoint, cmdUtil.WrapString("The address on which the server will listen (e.g. 0.0.0.0:8080, /tmp/oneshot.sock, ...)"))

	key = "transform"
	ServeCmd.PersistentFlags().String(key, common.DefaultTransform, cmdUtil.WrapString(fmt.Sprintf("The transform applied to every message (%s)", strings.Join(transform.Names(), ", "))))

	key = "buffer-size"
	ServeCmd.PersistentFlags().Int(key, common.DefaultBufferSize, cmdUtil.WrapString("The maximum number of bytes read from a connection"))

	key = "read-timeout"
	ServeCmd.PersistentFlags().Duration(key, common.DefaultReadTimeout, cmdUtil.WrapString("How long a client may take to send its message"))

	key = "write-timeout"
	ServeCmd.PersistentFlags().Duration(key, common.DefaultWriteTimeout, cmdUtil.WrapString("How long writing the reply may take"))

	key = "grace"
	ServeCmd.PersistentFlags().Duration(key, common.DefaultGraceInterval, cmdUtil.WrapString("The pause before a connection is closed, so the client can read the reply"))

	key = "shutdown-timeout"
	ServeCmd.PersistentFlags().Duration(key, common.DefaultShutdownTimeout, cmdUtil.WrapString("How long in-flight connections may run after a stop signal"))

	key = "metrics-endpoint"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("The address of the prometheus /metrics endpoint (e.g. localhost:9100), empty disables it"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))

	cmdUtil.SetupSocketFlags(ServeCmd)
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Transport.Endpoint = cmdUtil.ServerEndpoint(viper.GetString("transport"), viper.GetString("endpoint"), cmd.Flags().Changed("endpoint"))
	serveCmdConfig.Transform = viper.GetString("transform")
	serveCmdConfig.BufferSize = viper.GetInt("buffer-size")
	serveCmdConfig.ReadTimeout = viper.GetDuration("read-timeout")
	serveCmdConfig.WriteTimeout = viper.GetDuration("write-timeout")
	serveCmdConfig.GraceInterval = viper.GetDuration("grace")
	serveCmdConfig.ShutdownTimeout = viper.GetDuration("shutdown-timeout")
	serveCmdConfig.MetricsEndpoint = viper.GetString("metrics-endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	serveCmdConfig.Transport.SocketConf, serveCmdConfig.Transport.TCPConf = cmdUtil.GetSocketConf()

	if _, err := transform.Lookup(serveCmdConfig.Transform); err != nil {
		return err
	}

	return serveCmdConfig.Validate()
}

// run starts the oneshot server and blocks until SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	serv, err := server.NewServer(serveCmdConfig, t)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = serv.Serve(ctx)
	return reportExit(os.Stdout, os.Stderr, ctx.Err() != nil, err, serveCmdConfig.Transport.Endpoint)
}

// reportExit prints the console diagnostics for the end of Serve and returns the error
// the process should exit with. interrupted is true when a stop signal ended the server.
func reportExit(stdout, stderr io.Writer, interrupted bool, err error, endpoint string) error {
	var oErr *outcome.Error
	if errors.As(err, &oErr) && oErr.Kind == outcome.BindError {
		fmt.Fprintf(stderr, "FATAL ERROR during startup: %v\n", oErr.Err)
		fmt.Fprintf(stderr, "Check if %s is already in use or if you have permission.\n", endpoint)
		return err
	}
	if err != nil {
		return err
	}

	if interrupted {
		fmt.Fprintln(stdout, "\nServer shutdown requested.")
	}
	fmt.Fprintln(stdout, "Server shut down cleanly.")
	return nil
}
