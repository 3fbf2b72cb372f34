package cmd

import (
	"fmt"
	"github.com/ValentinKolb/oneshot/cmd/probe"
	"github.com/ValentinKolb/oneshot/cmd/serve"
	"github.com/ValentinKolb/oneshot/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "oneshot",
		Short: "one-shot request/response socket service",
		Long: fmt.Sprintf(`oneshot (v%s)

A minimal connection-oriented request/response service: every accepted
connection carries exactly one message, which is transformed, answered
once and closed. The probe command exercises the failure modes
(refused, unresolved host, timeout, reset, invalid text, empty payload).`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of oneshot",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("oneshot v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(probe.ProbeCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "transport"
	RootCmd.PersistentFlags().String(key, "tcp", util.WrapString("transport to use (tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
