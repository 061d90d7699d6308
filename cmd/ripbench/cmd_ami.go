package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/unthingable/ripcord/internal/ami"
	"github.com/unthingable/ripcord/internal/rttm"
)

func newAMICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ami <annotations_dir> <output_dir> [meeting_id ...]",
		Short: "Convert AMI word annotations to reference RTTM",
		Long: `Build reference RTTM files from AMI corpus NXT word annotations.

Each speaker's word timings are merged into contiguous speech segments.
With no meeting IDs, every meeting found in the annotations directory is
converted.`,
		Args: cobra.MinimumNArgs(2),
		RunE: runAMI,
	}
}

func runAMI(cmd *cobra.Command, args []string) error {
	annotationsDir := args[0]
	outputDir := args[1]
	meetingIDs := args[2:]
	out := cmd.OutOrStdout()

	if info, err := os.Stat(annotationsDir); err != nil || !info.IsDir() {
		return fmt.Errorf("annotations directory not found: %s", annotationsDir)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return err
	}

	if len(meetingIDs) == 0 {
		found, err := ami.Meetings(annotationsDir)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return &NoResultsError{Message: "no meetings found in annotations directory"}
		}
		meetingIDs = found
	}

	fmt.Fprintf(out, "Processing %d meetings...\n", len(meetingIDs))
	written := 0
	for _, mid := range meetingIDs {
		segments, warnings, err := ami.MeetingSegments(annotationsDir, mid)
		if err != nil {
			return fmt.Errorf("meeting %s: %w", mid, err)
		}
		for _, w := range warnings {
			fmt.Fprintf(out, "  WARNING: %s\n", w)
		}
		if len(segments) == 0 {
			fmt.Fprintf(out, "  %s: no segments (skipped)\n", mid)
			continue
		}

		outPath := filepath.Join(outputDir, mid+".rttm")
		if err := rttm.WriteFile(outPath, segments); err != nil {
			return fmt.Errorf("meeting %s: %w", mid, err)
		}
		fmt.Fprintf(out, "  %s: %d segments\n", mid, len(segments))
		written++
	}

	if written == 0 {
		return &NoResultsError{Message: "no meetings produced any segments"}
	}
	return nil
}
