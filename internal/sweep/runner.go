package sweep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/unthingable/ripcord/internal/dataset"
	"github.com/unthingable/ripcord/internal/der"
	"github.com/unthingable/ripcord/internal/hypothesis"
	"github.com/unthingable/ripcord/internal/rttm"
	"github.com/unthingable/ripcord/internal/transcriber"
)

// Runner executes parameter combos against a dataset: transcribe each
// audio file, convert the hypothesis to RTTM, score against the
// reference, and aggregate per combo.
type Runner struct {
	Engine transcriber.Engine

	// SweepDir is the root for combo output, laid out as
	// <SweepDir>/<comboID>/<dataset>/<file>.{json,rttm}.
	SweepDir string

	Collar      float64
	SkipOverlap bool

	// Workers caps concurrent combos. Values below 2 run sequentially.
	Workers int

	// MaxFiles > 0 limits files per dataset (smoke-testing support).
	MaxFiles int

	// Out receives progress output; defaults to os.Stdout.
	Out io.Writer
}

func (r *Runner) out() io.Writer {
	if r.Out != nil {
		return r.Out
	}
	return os.Stdout
}

// RunCombos runs every combo on the dataset and returns the outcomes
// of those that produced at least one scored file. A combo whose files
// all fail is dropped, not reported as zero error.
func (r *Runner) RunCombos(ctx context.Context, combos []transcriber.Params, ds dataset.Dataset) ([]Outcome, error) {
	files, err := ds.Files(r.MaxFiles)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("dataset %s: no files to process", ds.Name)
	}

	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > 1 {
		fmt.Fprintf(r.out(), "  Running %d combos with %d workers...\n\n", len(combos), workers)
	}

	var (
		mu        sync.Mutex
		outcomes  []Outcome
		completed int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, combo := range combos {
		g.Go(func() error {
			started := time.Now()
			score, err := r.runCombo(ctx, combo, ds, files)
			if err != nil {
				return err
			}
			elapsed := time.Since(started).Round(time.Second)

			mu.Lock()
			defer mu.Unlock()
			completed++
			cid := ComboID(combo)
			if score == nil {
				fmt.Fprintf(r.out(), "[%d/%d] %s: no results [%s]\n", completed, len(combos), cid, elapsed)
				return nil
			}
			outcomes = append(outcomes, Outcome{Params: combo, Score: *score})
			fmt.Fprintf(r.out(), "[%d/%d] %s: DER=%.1f%% (miss=%.1fs fa=%.1fs conf=%.1fs) [%s]\n",
				completed, len(combos), cid,
				score.DER*100, score.Missed, score.FalseAlarm, score.Confusion, elapsed)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// runCombo processes one combo over the dataset's files. Returns nil
// when no file could be scored. Per-file failures are logged and
// skipped so one bad file cannot sink a whole combo.
func (r *Runner) runCombo(ctx context.Context, combo transcriber.Params, ds dataset.Dataset, files []string) (*DatasetScore, error) {
	cid := ComboID(combo)
	comboDir := filepath.Join(r.SweepDir, cid, ds.Name)
	if err := os.MkdirAll(comboDir, 0o755); err != nil {
		return nil, fmt.Errorf("combo %s: %w", cid, err)
	}

	var totals der.Totals
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		refPath := ds.RefPath(name)
		if _, err := os.Stat(refPath); err != nil {
			continue
		}

		outJSON := filepath.Join(comboDir, name+".json")
		outRTTM := filepath.Join(comboDir, name+".rttm")

		// An existing hypothesis RTTM means this file already ran;
		// skip straight to scoring so interrupted sweeps resume.
		if _, err := os.Stat(outRTTM); err == nil {
			slog.Debug("resuming from existing hypothesis", "combo", cid, "file", name)
		} else {
			audioPath, ok := ds.FindAudio(name)
			if !ok {
				fmt.Fprintf(r.out(), "  [%s] %s: audio not found, skipping\n", cid, name)
				continue
			}

			fmt.Fprintf(r.out(), "  [%s] %s: transcribing...\n", cid, name)
			req := transcriber.Request{AudioPath: audioPath, OutputPath: outJSON, Params: combo}
			if err := r.Engine.Transcribe(ctx, req); err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				fmt.Fprintf(r.out(), "  [%s] ERROR: transcribe failed for %s\n    %v\n", cid, audioPath, err)
				continue
			}

			if _, err := hypothesis.ConvertFile(outJSON, outRTTM); err != nil {
				fmt.Fprintf(r.out(), "  [%s] ERROR: convert failed for %s: %v\n", cid, name, err)
				continue
			}
		}

		refSegs, _, err := rttm.ParseFile(refPath)
		if err != nil || len(refSegs) == 0 {
			continue
		}
		sysSegs, _, err := rttm.ParseFile(outRTTM)
		if err != nil {
			continue
		}

		result := der.Score(refSegs, sysSegs, der.Options{Collar: r.Collar, SkipOverlap: r.SkipOverlap})
		totals.Add(result)
	}

	if totals.RefTotal == 0 {
		return nil, nil
	}
	score := scoreFromResult(totals.Result())
	return &score, nil
}
