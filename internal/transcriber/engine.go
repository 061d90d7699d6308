// Package transcriber defines the boundary to the external transcription
// engine that produces diarization hypotheses.
package transcriber

import (
	"context"
	"strconv"
)

// Params are the engine's tunable diarization parameters. A nil field
// means "engine default": no flag is passed and the engine decides.
type Params struct {
	Sensitivity     *float64 `json:"sensitivity"`
	SpeechThreshold *float64 `json:"speech_threshold"`
	MinSegment      *float64 `json:"min_segment"`
	MinGap          *float64 `json:"min_gap"`
}

// Flags renders the CLI flags for all non-default parameters.
func (p Params) Flags() []string {
	var flags []string
	if p.Sensitivity != nil {
		flags = append(flags, "--sensitivity", formatValue(*p.Sensitivity))
	}
	if p.SpeechThreshold != nil {
		flags = append(flags, "--speech-threshold", formatValue(*p.SpeechThreshold))
	}
	if p.MinSegment != nil {
		flags = append(flags, "--min-segment", formatValue(*p.MinSegment))
	}
	if p.MinGap != nil {
		flags = append(flags, "--min-gap", formatValue(*p.MinGap))
	}
	return flags
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Request asks the engine to transcribe one audio file into a JSON
// transcript at OutputPath.
type Request struct {
	AudioPath  string
	OutputPath string
	Params     Params
}

// Engine runs the external transcription engine for a single audio file.
type Engine interface {
	Transcribe(ctx context.Context, req Request) error
}
