// Package ami converts AMI corpus NXT word-level annotations into RTTM
// reference segments. Annotations are per-speaker word files named
// <meeting>.<speaker>.words.xml; consecutive words from one speaker are
// merged into speech segments.
package ami

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/unthingable/ripcord/internal/rttm"
)

// DefaultMergeGap is the largest silence, in seconds, still collapsed into
// the surrounding speech segment.
const DefaultMergeGap = 0.3

// Word is one timed word from an NXT annotation file.
type Word struct {
	Start float64
	End   float64
}

// Span is a merged contiguous speech interval.
type Span struct {
	Start float64
	End   float64
}

// ParseWordsFile extracts word timings from an NXT .words.xml file.
// Words without both timestamps, or with unparseable ones, are skipped.
func ParseWordsFile(path string) ([]Word, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only file

	var words []Word
	decoder := xml.NewDecoder(f)
	for {
		tok, err := decoder.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "w" {
			continue
		}

		var startAttr, endAttr string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "starttime":
				startAttr = attr.Value
			case "endtime":
				endAttr = attr.Value
			}
		}
		if startAttr == "" || endAttr == "" {
			continue
		}

		ws, err1 := strconv.ParseFloat(startAttr, 64)
		we, err2 := strconv.ParseFloat(endAttr, 64)
		if err1 != nil || err2 != nil {
			continue
		}
		words = append(words, Word{Start: ws, End: we})
	}
	return words, nil
}

// MergeWords collapses word timings into speech spans, merging consecutive
// words whose gap is under mergeGap seconds.
func MergeWords(words []Word, mergeGap float64) []Span {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	spans := []Span{{Start: sorted[0].Start, End: sorted[0].End}}
	for _, w := range sorted[1:] {
		last := &spans[len(spans)-1]
		if w.Start-last.End < mergeGap {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		spans = append(spans, Span{Start: w.Start, End: w.End})
	}
	return spans
}

// MeetingSegments builds reference segments for one meeting from its
// per-speaker word files. Unparseable word files are reported in warnings
// and skipped; a meeting with no word files at all is an error.
func MeetingSegments(annotationsDir, meetingID string) ([]rttm.Segment, []string, error) {
	wordFiles, err := findWordFiles(annotationsDir, meetingID)
	if err != nil {
		return nil, nil, err
	}
	if len(wordFiles) == 0 {
		return nil, nil, fmt.Errorf("no word files found for meeting %s", meetingID)
	}

	var segments []rttm.Segment
	var warnings []string
	prefix := meetingID + "."
	suffix := ".words.xml"

	for _, wf := range wordFiles {
		base := filepath.Base(wf)
		speaker := strings.TrimSuffix(strings.TrimPrefix(base, prefix), suffix)
		if speaker == "" || speaker == base {
			continue
		}

		words, err := ParseWordsFile(wf)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", base, err))
			continue
		}

		for _, span := range MergeWords(words, DefaultMergeGap) {
			duration := span.End - span.Start
			if duration < rttm.MinDuration {
				continue
			}
			segments = append(segments, rttm.Segment{
				FileID:   meetingID,
				Start:    span.Start,
				Duration: duration,
				Speaker:  speaker,
			})
		}
	}
	return segments, warnings, nil
}

// Meetings discovers meeting IDs from the annotations directory, looking
// in a words/ subdirectory first.
func Meetings(annotationsDir string) ([]string, error) {
	matches, err := globWordFiles(annotationsDir)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var meetings []string
	for _, m := range matches {
		base := filepath.Base(m)
		// ES2004a.A.words.xml -> ES2004a
		parts := strings.Split(base, ".")
		if len(parts) < 4 {
			continue
		}
		id := parts[0]
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			meetings = append(meetings, id)
		}
	}
	sort.Strings(meetings)
	return meetings, nil
}

func findWordFiles(annotationsDir, meetingID string) ([]string, error) {
	pattern := filepath.Join(annotationsDir, "words", meetingID+".*.words.xml")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		pattern = filepath.Join(annotationsDir, meetingID+".*.words.xml")
		matches, err = filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(matches)
	return matches, nil
}

func globWordFiles(annotationsDir string) ([]string, error) {
	wordsDir := filepath.Join(annotationsDir, "words")
	if info, err := os.Stat(wordsDir); err == nil && info.IsDir() {
		return filepath.Glob(filepath.Join(wordsDir, "*.words.xml"))
	}
	return filepath.Glob(filepath.Join(annotationsDir, "*.words.xml"))
}
