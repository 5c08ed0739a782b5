// Package cmd implements the offline voyage simulator CLI.
package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"liyu1981.xyz/vessel-resource-service/pkg/common"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Replay a voyage scenario against the resource engine",
	Long: `simulate runs a YAML voyage scenario through the same engine, scheduler and
alert pipeline as the server, on a simulated clock and an in-memory database.

Examples:
  simulate validate scenario.yaml
  simulate run scenario.yaml --format yaml`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		common.SetLogOptions(common.LogOptions{
			Dir:        "logs",
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 28,
			Level:      logLevel,
		})
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "console log level (debug, info, warn, error)")
}
