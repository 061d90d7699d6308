package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ripbench",
		Short: "Ripbench - diarization benchmarking for the Ripcord transcriber",
		Long: `Ripbench scores speaker-diarization output and tunes transcriber
parameters against reference datasets.

It computes Diarization Error Rate (DER) between reference and hypothesis
RTTM files, converts transcript JSON and AMI annotations to RTTM, and runs
a two-stage parameter sweep ranked by weighted DER across datasets.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	// Add subcommands
	cmd.AddCommand(newScoreCommand())
	cmd.AddCommand(newSweepCommand())
	cmd.AddCommand(newConvertCommand())
	cmd.AddCommand(newAMICommand())
	cmd.AddCommand(newCheckCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
