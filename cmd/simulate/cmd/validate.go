package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"liyu1981.xyz/vessel-resource-service/pkg/simulation"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scenario.yaml>",
	Short: "Check a scenario file without running it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := simulation.LoadScenarioFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "scenario %q ok: %s in steps of %s, %d events\n",
			sc.Name, sc.Duration, sc.Step, len(sc.Events))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
