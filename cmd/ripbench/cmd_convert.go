package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unthingable/ripcord/internal/hypothesis"
	"github.com/unthingable/ripcord/internal/rttm"
)

func newConvertCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input.json> [output.rttm]",
		Short: "Convert a transcript JSON file to RTTM",
		Long: `Convert the transcriber's JSON output to RTTM segments for scoring.

With no output path, RTTM lines print to stdout.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: runConvert,
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	jsonPath := args[0]

	if len(args) == 2 {
		n, err := hypothesis.ConvertFile(jsonPath, args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d segments to %s\n", n, args[1])
		return nil
	}

	t, err := hypothesis.Load(jsonPath)
	if err != nil {
		return err
	}
	for _, seg := range t.RTTMSegments(t.FileID(jsonPath)) {
		fmt.Fprintln(cmd.OutOrStdout(), rttm.FormatLine(seg))
	}
	return nil
}
