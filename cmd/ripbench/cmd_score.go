package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/unthingable/ripcord/internal/der"
	"github.com/unthingable/ripcord/internal/reporting"
	"github.com/unthingable/ripcord/internal/rttm"
)

func newScoreCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score <ref_dir> <sys_dir>",
		Short: "Compute Diarization Error Rate (DER)",
		Long: `Score system hypothesis RTTM files against reference RTTM files.

Files are paired by basename; only files present in both directories are
scored. The corpus DER is a single ratio over summed error seconds, so
long recordings weigh more than short ones.`,
		Args: cobra.ExactArgs(2),
		RunE: runScore,
	}

	cmd.Flags().Float64("collar", der.DefaultCollar, "Collar in seconds around reference boundaries")
	cmd.Flags().Bool("skip-overlap", false, "Skip overlapping speech in scoring")
	cmd.Flags().Bool("per-file", false, "Print per-file DER breakdown")

	return cmd
}

func runScore(cmd *cobra.Command, args []string) error {
	collar, _ := cmd.Flags().GetFloat64("collar")
	skipOverlap, _ := cmd.Flags().GetBool("skip-overlap")
	perFile, _ := cmd.Flags().GetBool("per-file")
	out := cmd.OutOrStdout()

	refFiles, err := rttmIndex(args[0])
	if err != nil {
		return fmt.Errorf("reading ref dir: %w", err)
	}
	sysFiles, err := rttmIndex(args[1])
	if err != nil {
		return fmt.Errorf("reading sys dir: %w", err)
	}

	var common []string
	for id := range refFiles {
		if _, ok := sysFiles[id]; ok {
			common = append(common, id)
		}
	}
	sort.Strings(common)

	if len(common) == 0 {
		return &NoResultsError{Message: fmt.Sprintf(
			"no matching RTTM files between ref and sys directories\n  ref: %s\n  sys: %s",
			sampleIDs(refFiles), sampleIDs(sysFiles))}
	}

	if n := len(refFiles) - len(common); n > 0 {
		fmt.Fprintf(out, "WARNING: %d ref files have no sys match\n", n)
	}
	if n := len(sysFiles) - len(common); n > 0 {
		fmt.Fprintf(out, "WARNING: %d sys files have no ref match\n", n)
	}

	fmt.Fprintf(out, "Scoring %d files (collar=%gs, skip_overlap=%v)\n\n", len(common), collar, skipOverlap)

	opts := der.Options{Collar: collar, SkipOverlap: skipOverlap}
	var totals der.Totals
	var rows []reporting.FileScore

	for _, id := range common {
		refSegs, _, err := rttm.ParseFile(refFiles[id])
		if err != nil {
			return fmt.Errorf("parsing %s: %w", refFiles[id], err)
		}
		sysSegs, _, err := rttm.ParseFile(sysFiles[id])
		if err != nil {
			return fmt.Errorf("parsing %s: %w", sysFiles[id], err)
		}

		result := der.Score(refSegs, sysSegs, opts)
		totals.Add(result)
		rows = append(rows, reporting.FileScore{File: id, Result: result})
	}

	if perFile {
		reporting.WriteFileScores(out, rows)
		fmt.Fprintln(out)
	}
	reporting.WriteSummary(out, totals.Result(), totals.Files)
	return nil
}

// rttmIndex maps basename (sans extension) to path for every .rttm file
// in dir.
func rttmIndex(dir string) (map[string]string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.rttm"))
	if err != nil {
		return nil, err
	}
	index := make(map[string]string, len(paths))
	for _, p := range paths {
		base := filepath.Base(p)
		id := strings.TrimSuffix(base, filepath.Ext(base))
		index[id] = p
	}
	return index, nil
}

// sampleIDs lists up to five IDs for error context.
func sampleIDs(files map[string]string) string {
	ids := make([]string, 0, len(files))
	for id := range files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if len(ids) > 5 {
		ids = append(ids[:5], "...")
	}
	if len(ids) == 0 {
		return "(none)"
	}
	return strings.Join(ids, ", ")
}
