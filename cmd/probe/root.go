package probe

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/oneshot/cmd/util"
	"github.com/ValentinKolb/oneshot/rpc/client"
	"github.com/ValentinKolb/oneshot/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
)

var (
	runner *client.Runner

	// ProbeCmd represents the probe command group
	ProbeCmd = &cobra.Command{
		Use:   "probe",
		Short: "Run diagnostic test cases against a oneshot server",
		Long: `Run diagnostic test cases against a oneshot server. Every case opens one connection, sends one payload and reports how the exchange ended (success, refused, unresolved host, timeout, reset, invalid text, empty payload).
Without --cases and --payload the built-in cases are run.`,
		PersistentPreRunE: setupProbeClient,
		RunE:              runCases,
	}
)

func init() {
	// Add common probe flags to the command group
	util.SetupProbeFlags(ProbeCmd)

	key := "cases"
	ProbeCmd.Flags().String(key, "", util.WrapString("Optional path to a YAML file with test cases (list of label, payload, payload_hex, host, port, endpoint, idle)"))

	key = "payload"
	ProbeCmd.Flags().String(key, "", util.WrapString("Send only this payload instead of running the test cases"))

	// Add subcommands
	ProbeCmd.AddCommand(perfTestCmd)
}

// setupProbeClient initializes the runner from the flags
func setupProbeClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	config := util.GetClientConfig()

	t, err := util.GetClientTransport(*config)
	if err != nil {
		return err
	}

	runner = client.NewRunner(t, *config)
	return nil
}

// selectCases returns the test cases requested on the command line
func selectCases(cmd *cobra.Command) ([]client.TestCase, error) {
	if cmd.Flags().Changed("payload") {
		return []client.TestCase{{Label: "Custom Message", Payload: viper.GetString("payload")}}, nil
	}
	if path := viper.GetString("cases"); path != "" {
		return client.LoadTestCases(path)
	}
	return client.DefaultTestCases(), nil
}

func runCases(cmd *cobra.Command, _ []string) error {
	cases, err := selectCases(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// cases run one after another, a failed case does not affect the next one
	for _, tc := range cases {
		fmt.Fprint(os.Stdout, runner.RunCase(ctx, tc).Report())
	}
	return nil
}
