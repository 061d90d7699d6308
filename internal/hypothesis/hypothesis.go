// Package hypothesis models the transcriber's JSON output and converts it
// to RTTM segments for scoring.
package hypothesis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/unthingable/ripcord/internal/rttm"
)

// UnknownSpeaker is the sentinel used when a segment carries no speaker.
const UnknownSpeaker = "UNKNOWN"

// Transcript is the structured record produced by `transcribe --format json`.
type Transcript struct {
	Metadata Metadata  `json:"metadata"`
	Segments []Segment `json:"segments"`
}

// Metadata describes the source recording.
type Metadata struct {
	SourceFile string   `json:"source_file"`
	Duration   float64  `json:"duration,omitempty"`
	Speakers   []string `json:"speakers,omitempty"`
}

// Segment is one hypothesized utterance.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text,omitempty"`
	Speaker string  `json:"speaker,omitempty"`
}

// Load reads and decodes a transcript JSON file.
func Load(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parsing transcript %s: %w", path, err)
	}
	return &t, nil
}

// FileID derives the identifier used in RTTM lines: the basename of the
// source file without extension, falling back to fallbackPath when the
// transcript carries no source file.
func (t *Transcript) FileID(fallbackPath string) string {
	source := t.Metadata.SourceFile
	if source == "" {
		source = fallbackPath
	}
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// RTTMSegments converts the transcript 1:1 into interchange segments.
// Segments shorter than rttm.MinDuration are dropped and missing speakers
// default to UnknownSpeaker.
func (t *Transcript) RTTMSegments(fileID string) []rttm.Segment {
	segments := make([]rttm.Segment, 0, len(t.Segments))
	for _, seg := range t.Segments {
		duration := seg.End - seg.Start
		if duration < rttm.MinDuration {
			continue
		}
		speaker := seg.Speaker
		if speaker == "" {
			speaker = UnknownSpeaker
		}
		segments = append(segments, rttm.Segment{
			FileID:   fileID,
			Start:    seg.Start,
			Duration: duration,
			Speaker:  speaker,
		})
	}
	return segments
}

// ConvertFile converts a transcript JSON file to an RTTM file, returning
// the number of segments written.
func ConvertFile(jsonPath, rttmPath string) (int, error) {
	t, err := Load(jsonPath)
	if err != nil {
		return 0, err
	}

	segments := t.RTTMSegments(t.FileID(jsonPath))
	if err := rttm.WriteFile(rttmPath, segments); err != nil {
		return 0, err
	}
	return len(segments), nil
}
