package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"liyu1981.xyz/vessel-resource-service/pkg/models"
	"liyu1981.xyz/vessel-resource-service/pkg/simulation"
)

var outputFormat string

var runCmd = &cobra.Command{
	Use:   "run <scenario.yaml>",
	Short: "Run a scenario and print sampled levels, alerts and depletions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := simulation.LoadScenarioFile(args[0])
		if err != nil {
			return err
		}

		result, err := simulation.Run(cmd.Context(), sc)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch outputFormat {
		case "table":
			return writeTable(out, result)
		case "yaml":
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(result)
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		default:
			return fmt.Errorf("unknown format %q, use table, yaml or json", outputFormat)
		}
	},
}

func init() {
	runCmd.Flags().StringVarP(&outputFormat, "format", "f", "table", "output format (table, yaml, json)")
	rootCmd.AddCommand(runCmd)
}

func writeTable(out io.Writer, result *simulation.Result) error {
	fmt.Fprintf(out, "scenario %s: %s to %s\n\n", result.Scenario,
		result.Start.Format("2006-01-02 15:04"), result.End.Format("2006-01-02 15:04"))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "at\t")
	for _, t := range models.AllResourceTypes {
		fmt.Fprintf(tw, "%s %%\t", t)
	}
	fmt.Fprintln(tw, "engine\t")
	for _, s := range result.Samples {
		fmt.Fprintf(tw, "%s\t", s.At)
		for _, t := range models.AllResourceTypes {
			fmt.Fprintf(tw, "%.1f\t", s.Levels[t])
		}
		engine := "idle"
		if s.Running {
			engine = "running"
		}
		fmt.Fprintf(tw, "%s\t\n", engine)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(result.Depletions) > 0 {
		fmt.Fprintln(out, "\ndepletions:")
		for _, d := range result.Depletions {
			fmt.Fprintf(out, "  %s  %s ran dry, engine stopped\n", d.At, d.Resource)
		}
	}
	if len(result.AlertLog) > 0 {
		fmt.Fprintln(out, "\nalerts:")
		for _, line := range result.AlertLog {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(out, "\nrejected events:")
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  %s\n", w)
		}
	}
	return nil
}
