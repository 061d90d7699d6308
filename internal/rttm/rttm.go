// Package rttm reads and writes the RTTM interchange format used to
// exchange diarization segments between tools.
package rttm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// MinDuration is the shortest segment worth keeping, in seconds.
// Segments below this are dropped before emission.
const MinDuration = 0.01

// Segment is one labeled time interval. Segments for a file need not be
// sorted or non-overlapping; overlapping speech is meaningful.
type Segment struct {
	FileID   string
	Start    float64
	Duration float64
	Speaker  string
}

// End returns the segment's end time in seconds.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

// Parse reads RTTM lines from r. Blank lines and lines starting with ";"
// are ignored. Malformed lines (wrong field count, wrong type tag,
// non-numeric timestamps) are counted in skipped and never fatal.
func Parse(r io.Reader) (segments []Segment, skipped int, err error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}

		parts := strings.Fields(line)
		if len(parts) < 9 || parts[0] != "SPEAKER" {
			skipped++
			continue
		}

		start, startErr := strconv.ParseFloat(parts[3], 64)
		duration, durErr := strconv.ParseFloat(parts[4], 64)
		if startErr != nil || durErr != nil {
			skipped++
			continue
		}

		segments = append(segments, Segment{
			FileID:   parts[1],
			Start:    start,
			Duration: duration,
			Speaker:  parts[7],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("reading rttm: %w", err)
	}
	return segments, skipped, nil
}

// ParseFile reads all segments from an RTTM file.
func ParseFile(path string) ([]Segment, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close() //nolint:errcheck // read-only file

	segments, skipped, err := Parse(f)
	if err != nil {
		return nil, skipped, fmt.Errorf("%s: %w", path, err)
	}
	return segments, skipped, nil
}

// FormatLine renders one segment as an RTTM line (no trailing newline).
func FormatLine(s Segment) string {
	return fmt.Sprintf("SPEAKER %s 1 %.3f %.3f <NA> <NA> %s <NA> <NA>",
		s.FileID, s.Start, s.Duration, s.Speaker)
}

// Write emits segments to w sorted by start time ascending, dropping
// segments shorter than MinDuration.
func Write(w io.Writer, segments []Segment) error {
	kept := make([]Segment, 0, len(segments))
	for _, s := range segments {
		if s.Duration < MinDuration {
			continue
		}
		kept = append(kept, s)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Start < kept[j].Start
	})

	for _, s := range kept {
		if _, err := fmt.Fprintln(w, FormatLine(s)); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes segments to path, creating or truncating it.
func WriteFile(path string, segments []Segment) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := Write(f, segments); err != nil {
		f.Close() //nolint:errcheck,gosec // write error takes precedence
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
