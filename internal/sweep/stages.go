package sweep

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/unthingable/ripcord/internal/config"
	"github.com/unthingable/ripcord/internal/dataset"
	"github.com/unthingable/ripcord/internal/reporting"
	"github.com/unthingable/ripcord/internal/transcriber"
)

// Rough wall-clock budgets used for dry-run estimates, in minutes per
// combo on a full quick list.
const (
	coarseMinutesPerCombo   = 16
	validateMinutesPerCombo = 100
)

// Orchestrator drives the two-stage sweep: Stage 1 searches the
// parameter space on the primary dataset, Stage 2 validates the top
// combos across every configured dataset and ranks by weighted DER.
type Orchestrator struct {
	Runner   *Runner
	Config   *config.SweepConfig
	Datasets map[string]dataset.Dataset

	// MaxCombos > 0 limits combos per phase (smoke-testing support).
	MaxCombos int

	// DryRun prints the combo grid and runtime estimate without
	// executing anything.
	DryRun bool

	Out io.Writer
}

func (o *Orchestrator) out() io.Writer {
	if o.Out != nil {
		return o.Out
	}
	return os.Stdout
}

func (o *Orchestrator) primaryDataset() (dataset.Dataset, error) {
	name := o.Config.Primary().Name
	ds, ok := o.Datasets[name]
	if !ok {
		return dataset.Dataset{}, fmt.Errorf("primary dataset %q not configured", name)
	}
	return ds, nil
}

// Stage1 runs the coarse one-at-a-time sweep followed by a focused
// grid over the top values per parameter, all on the primary dataset.
// Returns the merged outcomes sorted by DER, best first.
func (o *Orchestrator) Stage1(ctx context.Context) ([]Outcome, error) {
	ds, err := o.primaryDataset()
	if err != nil {
		return nil, err
	}
	w := o.out()

	reporting.Banner(w, fmt.Sprintf("STAGE 1: Coarse parameter sweep on %s", ds.Name))
	if o.Runner.Workers > 1 {
		fmt.Fprintf(w, "  (%d parallel workers)\n", o.Runner.Workers)
	}
	fmt.Fprintln(w)

	coarse := GenerateCoarse(o.Config.Ranges)
	fmt.Fprintf(w, "Phase 1a: %d one-at-a-time combos\n", len(coarse))
	if o.MaxCombos > 0 && len(coarse) > o.MaxCombos {
		coarse = coarse[:o.MaxCombos]
		fmt.Fprintf(w, "  (limited to %d combos by --max-combos)\n", o.MaxCombos)
	}
	fmt.Fprintln(w)

	if o.DryRun {
		for _, p := range coarse {
			fmt.Fprintf(w, "  %-30s  %s\n", ComboID(p), FormatParams(p))
		}
		o.printEstimate(len(coarse), coarseMinutesPerCombo)
		return nil, nil
	}

	coarseOutcomes, err := o.Runner.RunCombos(ctx, coarse, ds)
	if err != nil {
		return nil, err
	}
	if len(coarseOutcomes) == 0 {
		fmt.Fprintln(w, "No coarse results. Stopping.")
		return nil, nil
	}

	sortByDER(coarseOutcomes)
	fmt.Fprintf(w, "--- Coarse sweep results (sorted by %s DER) ---\n", ds.Name)
	for i, oc := range coarseOutcomes {
		fmt.Fprintf(w, "  %2d. %-30s  DER=%.1f%%\n", i+1, ComboID(oc.Params), oc.Score.DER*100)
	}
	fmt.Fprintln(w)

	best := BestPerParam(coarseOutcomes)
	fmt.Fprintln(w, "Best values per parameter:")
	for _, name := range config.ParamNames {
		values := best[name]
		if len(values) > 3 {
			values = values[:3]
		}
		fmt.Fprintf(w, "  %s: %v\n", name, values)
	}
	fmt.Fprintln(w)

	grid := GenerateGrid(best, o.Config.GridTopN)
	ran := make(map[string]struct{}, len(coarseOutcomes))
	for _, oc := range coarseOutcomes {
		ran[ComboID(oc.Params)] = struct{}{}
	}
	grid = ExcludeIDs(grid, ran)
	if o.MaxCombos > 0 && len(grid) > o.MaxCombos {
		grid = grid[:o.MaxCombos]
	}
	fmt.Fprintf(w, "Phase 1b: %d grid combos (after dedup)\n\n", len(grid))

	gridOutcomes, err := o.Runner.RunCombos(ctx, grid, ds)
	if err != nil {
		return nil, err
	}

	all := append(coarseOutcomes, gridOutcomes...)
	sortByDER(all)

	reporting.Banner(w, fmt.Sprintf("STAGE 1 LEADERBOARD (%s DER)", ds.Name))
	show := all
	if len(show) > 20 {
		show = show[:20]
	}
	for i, oc := range show {
		s := oc.Score
		fmt.Fprintf(w, "  %2d. %-30s  DER=%.1f%%  miss=%.1f%% fa=%.1f%% conf=%.1f%%\n",
			i+1, ComboID(oc.Params), s.DER*100,
			s.Missed/s.RefTotal*100, s.FalseAlarm/s.RefTotal*100, s.Confusion/s.RefTotal*100)
	}
	fmt.Fprintln(w)

	return all, nil
}

// SaveStage1 persists Stage 1 outcomes so Stage 2 can run separately.
func (o *Orchestrator) SaveStage1(outcomes []Outcome) error {
	path := filepath.Join(o.Runner.SweepDir, Stage1File)
	entries := EntriesFromOutcomes(outcomes, o.Config.Primary().Name)
	if err := SaveEntries(path, entries); err != nil {
		return err
	}
	fmt.Fprintf(o.out(), "Stage 1 results saved to %s\n\n", path)
	return nil
}

// LoadStage1 reads previously persisted Stage 1 outcomes, sorted by
// DER ascending.
func (o *Orchestrator) LoadStage1() ([]Outcome, error) {
	path := filepath.Join(o.Runner.SweepDir, Stage1File)
	entries, err := LoadEntries(path)
	if err != nil {
		return nil, err
	}
	return OutcomesFromEntries(entries, o.Config.Primary().Name), nil
}

// Stage2 re-runs the top Stage 1 combos on each validation dataset and
// ranks everything by weighted DER. Results land in results.json under
// the sweep directory.
func (o *Orchestrator) Stage2(ctx context.Context, stage1 []Outcome) error {
	w := o.out()
	primary := o.Config.Primary()

	topN := o.Config.TopN
	if topN > len(stage1) {
		topN = len(stage1)
	}
	top := stage1[:topN]

	names := make([]string, len(o.Config.Datasets))
	for i, dc := range o.Config.Datasets {
		names[i] = dc.Name
	}
	reporting.Banner(w, fmt.Sprintf("STAGE 2: Validate top %d combos on %s", topN, strings.Join(names, " + ")))
	if o.Runner.Workers > 1 {
		fmt.Fprintf(w, "  (%d parallel workers)\n", o.Runner.Workers)
	}
	fmt.Fprintln(w)

	if o.DryRun {
		for _, oc := range top {
			fmt.Fprintf(w, "  %-30s  %s DER=%.1f%%\n", ComboID(oc.Params), primary.Name, oc.Score.DER*100)
		}
		o.printEstimate(topN, validateMinutesPerCombo)
		return nil
	}

	combos := make([]transcriber.Params, len(top))
	for i, oc := range top {
		combos[i] = oc.Params
	}

	// Scores per combo, seeded with the primary results from Stage 1.
	scoresByID := make(map[string]map[string]DatasetScore, len(top))
	for _, oc := range top {
		scoresByID[ComboID(oc.Params)] = map[string]DatasetScore{primary.Name: oc.Score}
	}

	for _, dc := range o.Config.Secondaries() {
		ds, ok := o.Datasets[dc.Name]
		if !ok {
			return fmt.Errorf("dataset %q not configured", dc.Name)
		}
		outcomes, err := o.Runner.RunCombos(ctx, combos, ds)
		if err != nil {
			return err
		}
		for _, oc := range outcomes {
			scoresByID[ComboID(oc.Params)][dc.Name] = oc.Score
		}
	}

	entries := make([]Entry, 0, len(top))
	for _, oc := range top {
		cid := ComboID(oc.Params)
		scores := scoresByID[cid]
		weighted := o.weightedDER(scores)
		entries = append(entries, Entry{
			ComboID:     cid,
			Params:      oc.Params,
			Scores:      scores,
			WeightedDER: &weighted,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return *entries[i].WeightedDER < *entries[j].WeightedDER
	})

	reporting.Banner(w, fmt.Sprintf("FINAL LEADERBOARD (%s)", o.weightLabel()))
	rows := make([]reporting.LeaderboardEntry, len(entries))
	for i, e := range entries {
		scores := make(map[string]float64, len(e.Scores))
		for name, s := range e.Scores {
			scores[name] = s.DER
		}
		rows[i] = reporting.LeaderboardEntry{ComboID: e.ComboID, Scores: scores, Weighted: e.WeightedDER}
	}
	reporting.WriteLeaderboard(w, rows, names)
	fmt.Fprintln(w)

	path := filepath.Join(o.Runner.SweepDir, ResultsFile)
	if err := SaveEntries(path, entries); err != nil {
		return err
	}
	fmt.Fprintf(w, "Results saved to %s\n", path)
	return nil
}

// weightedDER combines per-dataset DERs using the configured weights,
// normalized over the datasets that actually produced a score. A combo
// scored only on the primary dataset falls back to its primary DER.
func (o *Orchestrator) weightedDER(scores map[string]DatasetScore) float64 {
	var sum, weightSum float64
	for _, dc := range o.Config.Datasets {
		score, ok := scores[dc.Name]
		if !ok {
			continue
		}
		sum += dc.Weight * score.DER
		weightSum += dc.Weight
	}
	if weightSum == 0 {
		return 0.0
	}
	return sum / weightSum
}

func (o *Orchestrator) weightLabel() string {
	parts := make([]string, len(o.Config.Datasets))
	for i, dc := range o.Config.Datasets {
		parts[i] = fmt.Sprintf("%.1f x %s", dc.Weight, dc.Name)
	}
	return strings.Join(parts, " + ")
}

func (o *Orchestrator) printEstimate(combos, minutesPerCombo int) {
	workers := o.Runner.Workers
	if workers < 1 {
		workers = 1
	}
	est := combos * minutesPerCombo / workers
	fmt.Fprintf(o.out(), "\nEstimated runtime: ~%dh %dm\n", est/60, est%60)
	fmt.Fprintf(o.out(), "  (%d combos x ~%d min/combo, %d worker(s))\n", combos, minutesPerCombo, workers)
}

func sortByDER(outcomes []Outcome) {
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Score.DER < outcomes[j].Score.DER
	})
}
