package sweep

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/unthingable/ripcord/internal/der"
	"github.com/unthingable/ripcord/internal/transcriber"
)

// Result file names, relative to the sweep directory.
const (
	Stage1File  = "stage1_results.json"
	ResultsFile = "results.json"
)

// DatasetScore is one combo's aggregate error breakdown on one dataset.
// Seconds throughout, except DER which is a fraction.
type DatasetScore struct {
	DER        float64 `json:"der"`
	Missed     float64 `json:"missed"`
	FalseAlarm float64 `json:"false_alarm"`
	Confusion  float64 `json:"confusion"`
	RefTotal   float64 `json:"ref_total"`
}

func scoreFromResult(r der.Result) DatasetScore {
	return DatasetScore{
		DER:        r.DER,
		Missed:     r.Missed,
		FalseAlarm: r.FalseAlarm,
		Confusion:  r.Confusion,
		RefTotal:   r.RefTotal,
	}
}

// Outcome pairs a combo with its aggregate score on a single dataset.
type Outcome struct {
	Params transcriber.Params
	Score  DatasetScore
}

// Entry is the persisted form of one combo's results, keyed by dataset.
type Entry struct {
	ComboID     string                  `json:"combo_id"`
	Params      transcriber.Params      `json:"params"`
	Scores      map[string]DatasetScore `json:"scores"`
	WeightedDER *float64                `json:"weighted_der,omitempty"`
}

// SaveEntries writes entries as indented JSON.
func SaveEntries(path string, entries []Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// LoadEntries reads a results file written by SaveEntries.
func LoadEntries(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing results %s: %w", path, err)
	}
	return entries, nil
}

// EntriesFromOutcomes converts single-dataset outcomes to entries.
func EntriesFromOutcomes(outcomes []Outcome, datasetName string) []Entry {
	entries := make([]Entry, len(outcomes))
	for i, o := range outcomes {
		entries[i] = Entry{
			ComboID: ComboID(o.Params),
			Params:  o.Params,
			Scores:  map[string]DatasetScore{datasetName: o.Score},
		}
	}
	return entries
}

// OutcomesFromEntries extracts the named dataset's outcomes from
// persisted entries, sorted by DER ascending. Entries without a score
// for that dataset are dropped.
func OutcomesFromEntries(entries []Entry, datasetName string) []Outcome {
	var outcomes []Outcome
	for _, e := range entries {
		score, ok := e.Scores[datasetName]
		if !ok {
			continue
		}
		outcomes = append(outcomes, Outcome{Params: e.Params, Score: score})
	}
	sort.SliceStable(outcomes, func(i, j int) bool {
		return outcomes[i].Score.DER < outcomes[j].Score.DER
	})
	return outcomes
}
