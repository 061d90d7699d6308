// Package reporting renders scoring output: per-file tables, corpus
// summaries, and the sweep leaderboard.
package reporting

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/unthingable/ripcord/internal/der"
)

const comboColumnWidth = 30

// FileScore is one file's scoring row.
type FileScore struct {
	File   string
	Result der.Result
}

// WriteFileScores prints a per-file breakdown table.
func WriteFileScores(w io.Writer, scores []FileScore) {
	header := fmt.Sprintf("%s %8s %8s %8s %8s %9s",
		padRight("File", comboColumnWidth), "DER", "Miss", "FA", "Conf", "Ref(s)")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))
	for _, s := range scores {
		fmt.Fprintf(w, "%s %7.1f%% %7.1f%% %7.1f%% %7.1f%% %9.1f\n",
			padRight(s.File, comboColumnWidth),
			s.Result.DER*100,
			fraction(s.Result.Missed, s.Result.RefTotal)*100,
			fraction(s.Result.FalseAlarm, s.Result.RefTotal)*100,
			fraction(s.Result.Confusion, s.Result.RefTotal)*100,
			s.Result.RefTotal)
	}
}

// WriteSummary prints the corpus-level result block.
func WriteSummary(w io.Writer, r der.Result, files int) {
	fmt.Fprintf(w, "Overall (%d files, %.1fs reference speech):\n", files, r.RefTotal)
	fmt.Fprintf(w, "  DER:         %.1f%%\n", r.DER*100)
	fmt.Fprintf(w, "  Missed:      %.1f%% (%.1fs)\n", fraction(r.Missed, r.RefTotal)*100, r.Missed)
	fmt.Fprintf(w, "  False alarm: %.1f%% (%.1fs)\n", fraction(r.FalseAlarm, r.RefTotal)*100, r.FalseAlarm)
	fmt.Fprintf(w, "  Confusion:   %.1f%% (%.1fs)\n", fraction(r.Confusion, r.RefTotal)*100, r.Confusion)
}

// LeaderboardEntry is one ranked row of the sweep leaderboard.
type LeaderboardEntry struct {
	ComboID string

	// Scores maps dataset name to DER. A dataset missing from the map
	// renders as a dash.
	Scores map[string]float64

	// Weighted is the cross-dataset weighted DER, when computed.
	Weighted *float64
}

// WriteLeaderboard prints ranked combos with one DER column per
// dataset plus a weighted column when more than one dataset is shown.
func WriteLeaderboard(w io.Writer, entries []LeaderboardEntry, datasets []string) {
	parts := []string{padRight("Rank", 5), padRight("Combo", comboColumnWidth)}
	for _, ds := range datasets {
		parts = append(parts, fmt.Sprintf("%12s", ds))
	}
	if len(datasets) > 1 {
		parts = append(parts, fmt.Sprintf("%12s", "Weighted"))
	}
	header := strings.Join(parts, " ")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for i, e := range entries {
		row := []string{padRight(fmt.Sprintf("%d", i+1), 5), padRight(e.ComboID, comboColumnWidth)}
		for _, ds := range datasets {
			if derVal, ok := e.Scores[ds]; ok {
				row = append(row, fmt.Sprintf("%11.1f%%", derVal*100))
			} else {
				row = append(row, fmt.Sprintf("%12s", "-"))
			}
		}
		if len(datasets) > 1 && e.Weighted != nil {
			row = append(row, fmt.Sprintf("%11.1f%%", *e.Weighted*100))
		}
		fmt.Fprintln(w, strings.Join(row, " "))
	}
}

// Banner prints a section header framed by rules.
func Banner(w io.Writer, text string) {
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, text)
	fmt.Fprintln(w, rule)
}

func fraction(part, whole float64) float64 {
	if whole <= 0 {
		return 0.0
	}
	return part / whole
}

// padRight pads s with spaces to the given display width, accounting
// for wide runes.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
