package cmd

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/inference-sim/cpusched/internal/tracing"
	"github.com/inference-sim/cpusched/sim"
	"github.com/inference-sim/cpusched/sim/workload"
)

// version is reported in trace resources.
var version = "dev"

var (
	// Simulation settings
	opts runOptions

	// Workload source
	source workloadSource

	// Output and environment
	outputFormat     string // table, json or yaml
	logLevel         string // Log verbosity level
	defaultsFilePath string // Path to defaults.yaml
	traceFile        string // Write OpenTelemetry spans here when set
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "cpusched",
	Short: "Discrete-event CPU scheduling simulator",
}

// runCmd simulates one workload under one policy
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate a workload under one scheduling policy",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := setup(cmd)
		ctx := context.Background()

		scenario, err := source.resolve(ctx, cfg.Presets, opts.Seed)
		if err != nil {
			logrus.Fatalf("Failed to load workload: %v", err)
		}
		o := applyScenario(cmd, opts, scenario)

		req, err := o.request(scenario.Processes)
		if err != nil {
			logrus.Fatalf("Invalid options: %v", err)
		}
		engine := sim.NewEngine(cfg.Selector)
		res, err := engine.SimulateContext(ctx, req)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}
		if err := renderResult(os.Stdout, scenario.Name, res, outputFormat); err != nil {
			logrus.Fatalf("Failed to write result: %v", err)
		}
		logrus.Info("Simulation complete.")
	},
}

// setup applies the logging level, loads defaults and installs tracing.
func setup(cmd *cobra.Command) Config {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)

	if !isValidOutput(outputFormat) {
		logrus.Fatalf("Invalid output format %q; valid: table, json, yaml", outputFormat)
	}
	if opts.Policy != "" && !sim.IsValidPolicy(opts.Policy) {
		logrus.Warnf("Unknown policy %q; FCFS will be used", opts.Policy)
	}

	cfg, err := loadDefaultsConfig(defaultsFilePath, cmd.Flags().Changed("defaults-filepath"))
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if traceFile != "" {
		if err := tracing.Init("cpusched", version, traceFile); err != nil {
			logrus.Fatalf("Failed to initialise tracing: %v", err)
		}
	}
	return cfg
}

// applyScenario fills settings carried by a workload file. Flags the user
// set explicitly always win.
func applyScenario(cmd *cobra.Command, o runOptions, s *workload.Scenario) runOptions {
	if s.Policy != "" && !cmd.Flags().Changed("policy") && o.CustomExpr == "" {
		o.Policy = s.Policy
	}
	if s.Quantum > 0 && !cmd.Flags().Changed("quantum") {
		o.Quantum = s.Quantum
	}
	if s.ContextSwitchCost > 0 && !cmd.Flags().Changed("switch-cost") {
		o.SwitchCost = s.ContextSwitchCost
	}
	return o
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerSimulationFlags adds the workload and simulation flags shared by run and compare.
func registerSimulationFlags(c *cobra.Command) {
	c.Flags().StringVar(&source.URL, "workload", "", "Workload file (YAML, JSON or CSV); local path or storage URL")
	c.Flags().StringVar(&source.Preset, "preset", "", "Built-in or defaults.yaml preset name")
	c.Flags().IntVar(&source.Random, "random", 0, "Generate N random processes")

	c.Flags().Float64Var(&opts.Quantum, "quantum", sim.DefaultQuantum, "Time quantum for quantum-driven policies")
	c.Flags().Float64Var(&opts.SwitchCost, "switch-cost", 0, "Duration of each context switch")
	c.Flags().BoolVar(&opts.NoAutoSwitch, "no-auto-switch", false, "Always run the requested policy")
	c.Flags().Int64Var(&opts.Seed, "seed", sim.DefaultSeed, "Seed for lottery draws and random workloads")
	c.Flags().IntVar(&opts.MLFQLevels, "mlfq-levels", sim.DefaultMLFQLevels, "Number of MLFQ feedback levels")
	c.Flags().BoolVar(&opts.Explain, "explain", false, "Explain every scheduling decision")

	c.Flags().StringVar(&outputFormat, "output", "table", "Output format (table, json, yaml)")
	c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	c.Flags().StringVar(&defaultsFilePath, "defaults-filepath", "defaults.yaml", "Path to default constants")
	c.Flags().StringVar(&traceFile, "trace-file", "", "Write OpenTelemetry spans to this file")
}

// init sets up CLI flags and subcommands
func init() {
	registerSimulationFlags(runCmd)
	runCmd.Flags().StringVar(&opts.Policy, "policy", "fcfs", "Scheduling policy (fcfs, sjf, srtf, ljf, lrtf, rr, priority, priority_preemptive, hrrn, lottery, stride, fcfs_io, mlq, mlfq, custom)")
	runCmd.Flags().StringVar(&opts.CustomExpr, "custom-expr", "", "Score expression for the custom policy; lowest score runs (e.g. \"remaining / (waiting + 1)\")")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}
