package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/unthingable/ripcord/internal/config"
	"github.com/unthingable/ripcord/internal/dataset"
	"github.com/unthingable/ripcord/internal/sweep"
	"github.com/unthingable/ripcord/internal/transcriber"
)

type sweepFlags struct {
	transcribe string
	dataDir    string
	resultsDir string
	listsDir   string
	configPath string
	stage      int
	maxCombos  int
	maxFiles   int
	topN       int
	workers    int
	collar     float64
	skipOvl    bool
	dryRun     bool
}

func newSweepCommand() *cobra.Command {
	flags := &sweepFlags{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run the two-stage diarization parameter sweep",
		Long: `Search the transcriber's diarization parameter space.

Stage 1 runs a coarse one-at-a-time sweep plus a focused grid on the
primary dataset. Stage 2 validates the top combos on every configured
dataset and ranks them by weighted DER. Stage 1 results persist under
the results directory, so the stages can run in separate invocations
and interrupted sweeps resume where they stopped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.transcribe, "transcribe", "", "Path to the transcribe binary (required)")
	cmd.Flags().StringVar(&flags.dataDir, "data-dir", "", "Benchmark data directory (required)")
	cmd.Flags().StringVar(&flags.resultsDir, "results-dir", "", "Benchmark results directory (required)")
	cmd.Flags().StringVar(&flags.listsDir, "lists-dir", "", "Benchmark list files directory (required)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Sweep config YAML (defaults built in)")
	cmd.Flags().IntVar(&flags.stage, "stage", 0, "Run only this stage: 1 or 2 (default: both)")
	cmd.Flags().IntVar(&flags.maxCombos, "max-combos", 0, "Limit combos per phase (for testing)")
	cmd.Flags().IntVar(&flags.maxFiles, "max-files", 0, "Limit audio files per dataset (for testing)")
	cmd.Flags().IntVar(&flags.topN, "top-n", 0, "Top combos to validate in Stage 2 (overrides config)")
	cmd.Flags().IntVar(&flags.workers, "workers", 1, "Parallel workers (each loads its own model)")
	cmd.Flags().Float64Var(&flags.collar, "collar", 0, "Scoring collar in seconds (overrides config)")
	cmd.Flags().BoolVar(&flags.skipOvl, "skip-overlap", false, "Skip overlapping speech in scoring (overrides config)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Print the combo grid and runtime estimate without running")

	for _, name := range []string{"transcribe", "data-dir", "results-dir", "lists-dir"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runSweep(cmd *cobra.Command, flags *sweepFlags) error {
	out := cmd.OutOrStdout()

	cfg, err := loadSweepConfig(flags.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("top-n") {
		cfg.TopN = flags.topN
	}
	if cmd.Flags().Changed("collar") {
		cfg.Collar = flags.collar
	}
	if cmd.Flags().Changed("skip-overlap") {
		cfg.SkipOverlap = flags.skipOvl
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	engine := transcriber.NewSubprocess(flags.transcribe)
	if err := engine.Verify(); err != nil {
		return err
	}

	datasets := make(map[string]dataset.Dataset, len(cfg.Datasets))
	for _, dc := range cfg.Datasets {
		ds := dataset.Dataset{
			Name:     dc.Name,
			AudioDir: filepath.Join(flags.dataDir, dc.Name, "audio"),
			RefDir:   filepath.Join(flags.dataDir, dc.Name, "rttm"),
			Suffix:   dc.AudioSuffix,
			Weight:   dc.Weight,
		}
		if dc.List != "" {
			ds.ListFile = filepath.Join(flags.listsDir, dc.List)
		}
		datasets[dc.Name] = ds

		if files, err := ds.Files(flags.maxFiles); err == nil {
			fmt.Fprintf(out, "%s: %d files\n", dc.Name, len(files))
		}
	}
	fmt.Fprintln(out)

	sweepDir := filepath.Join(flags.resultsDir, "sweep")
	if err := os.MkdirAll(sweepDir, 0o755); err != nil {
		return err
	}

	runner := &sweep.Runner{
		Engine:      engine,
		SweepDir:    sweepDir,
		Collar:      cfg.Collar,
		SkipOverlap: cfg.SkipOverlap,
		Workers:     flags.workers,
		MaxFiles:    flags.maxFiles,
		Out:         out,
	}
	orch := &sweep.Orchestrator{
		Runner:    runner,
		Config:    cfg,
		Datasets:  datasets,
		MaxCombos: flags.maxCombos,
		DryRun:    flags.dryRun,
		Out:       out,
	}

	ctx := cmd.Context()
	var stage1 []sweep.Outcome

	if flags.stage == 0 || flags.stage == 1 {
		stage1, err = orch.Stage1(ctx)
		if err != nil {
			return err
		}
		if len(stage1) > 0 {
			if err := orch.SaveStage1(stage1); err != nil {
				return err
			}
		} else if !flags.dryRun {
			return &NoResultsError{Message: "stage 1 produced no results"}
		}
	}

	if flags.stage == 0 || flags.stage == 2 {
		if len(stage1) == 0 {
			loaded, err := orch.LoadStage1()
			switch {
			case err == nil:
				stage1 = loaded
			case flags.dryRun:
				fmt.Fprintln(out, "Stage 2 dry-run: no Stage 1 results yet.")
				fmt.Fprintln(out, "  Run Stage 1 first; Stage 2 then validates the top combos.")
			case errors.Is(err, fs.ErrNotExist):
				return &NoResultsError{Message: "no Stage 1 results found; run Stage 1 first"}
			default:
				return err
			}
		}
		if len(stage1) > 0 {
			if err := orch.Stage2(ctx, stage1); err != nil {
				return err
			}
		}
	}

	if flags.dryRun {
		fmt.Fprintln(out, "\n(Dry run - no transcriptions were executed)")
	}
	return nil
}

func loadSweepConfig(path string) (*config.SweepConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
