package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/cpusched/sim"
)

var comparePolicies []string

// compareCmd runs one workload under several policies side by side
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Simulate a workload under several policies and compare metrics",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := setup(cmd)
		ctx := context.Background()

		scenario, err := source.resolve(ctx, cfg.Presets, opts.Seed)
		if err != nil {
			logrus.Fatalf("Failed to load workload: %v", err)
		}
		o := applyScenario(cmd, opts, scenario)
		o.Policy = ""
		base, err := o.request(scenario.Processes)
		if err != nil {
			logrus.Fatalf("Invalid options: %v", err)
		}

		results, err := sim.NewEngine(cfg.Selector).Compare(ctx, base, comparePolicies)
		if err != nil {
			logrus.Fatalf("Comparison failed: %v", err)
		}
		if err := renderComparison(os.Stdout, scenario.Name, results, outputFormat); err != nil {
			logrus.Fatalf("Failed to write results: %v", err)
		}
	},
}

func defaultComparePolicies() []string {
	names := make([]string, len(sim.AllPolicies))
	for i, p := range sim.AllPolicies {
		names[i] = p.String()
	}
	return names
}

func init() {
	registerSimulationFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&comparePolicies, "policies", defaultComparePolicies(), "Comma-separated policies to compare")
	rootCmd.AddCommand(compareCmd)
}
