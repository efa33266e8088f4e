package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/drivenpend/internal/config"
	"github.com/san-kum/drivenpend/internal/observability"
)

var (
	dataDir    string
	configFile string
	logLevel   string
	logFormat  string
	logFile    string

	// appCfg is the loaded config file, or the defaults.
	appCfg *config.Config
)

// main wires the commands and exits with status 1 when one fails.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "drivenpend",
		Short:         "driven double pendulum with decaying sinusoidal forcing",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			observability.Sync()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&dataDir, "data", ".drivenpend", "run store directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", config.DefaultLogFormat, "log format (console, json)")
	pf.StringVar(&logFile, "log-file", "", "also write JSON logs to this rotated file")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newListCmd(),
		newPlotCmd(),
		newAnalyzeCmd(),
		newExportCmd(),
		newPresetsCmd(),
		newInitCmd(),
		newSweepCmd(),
		newScenarioCmd(),
		newMonteCarloCmd(),
	)
	return rootCmd
}

func setup(cmd *cobra.Command) error {
	appCfg = config.DefaultConfig()
	if configFile != "" {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		appCfg = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		appCfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		appCfg.Log.Format = logFormat
	}
	if flags.Changed("log-file") {
		appCfg.Log.File = logFile
	}

	observability.InitializeLogger(appCfg.Log)
	return nil
}
