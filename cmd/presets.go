package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// presetsCmd lists the available presets
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List workload presets",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadDefaultsConfig(defaultsFilePath, cmd.Flags().Changed("defaults-filepath"))
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		renderPresets(os.Stdout, cfg.Presets)
	},
}

func init() {
	presetsCmd.Flags().StringVar(&defaultsFilePath, "defaults-filepath", "defaults.yaml", "Path to default constants")
	rootCmd.AddCommand(presetsCmd)
}
