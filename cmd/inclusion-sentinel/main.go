package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	logLevel   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "inclusion-sentinel",
		Short: "Financial inclusion forecasting and event impact analysis",
		Long: `Forecasts financial inclusion indicators from the unified dataset,
overlays the modelled effect of policy and market events, and back-tests
those effects against observed changes.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file (YAML), defaults to $CONFIG_PATH or configs/config.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(matrixCmd())
	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(effectsCmd())
	rootCmd.AddCommand(evidenceCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(scheduleCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
