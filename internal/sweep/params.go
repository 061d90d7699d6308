// Package sweep implements the two-stage parameter search: a coarse
// one-at-a-time pass plus a focused grid on the primary dataset, then
// validation of the top combos across all datasets.
package sweep

import (
	"strconv"
	"strings"

	"github.com/unthingable/ripcord/internal/config"
	"github.com/unthingable/ripcord/internal/transcriber"
)

// idPrefixes map each parameter to its short combo-ID prefix.
var idPrefixes = map[string]string{
	config.ParamMinGap:          "mg",
	config.ParamMinSegment:      "ms",
	config.ParamSensitivity:     "t",
	config.ParamSpeechThreshold: "s",
}

// displayOrder is the order parameters appear in human-readable output.
var displayOrder = []string{
	config.ParamSensitivity,
	config.ParamSpeechThreshold,
	config.ParamMinSegment,
	config.ParamMinGap,
}

// ComboID renders a short directory-safe identifier for a parameter
// combo. Parameters appear in sorted name order; "D" marks an engine
// default. The ID doubles as the combo's output directory name, so it
// must be stable across runs.
func ComboID(p transcriber.Params) string {
	parts := make([]string, 0, len(config.ParamNames))
	for _, name := range config.ParamNames {
		if v := paramValue(p, name); v != nil {
			parts = append(parts, idPrefixes[name]+formatValue(*v))
		} else {
			parts = append(parts, idPrefixes[name]+"D")
		}
	}
	return strings.Join(parts, "_")
}

// FormatParams renders a combo for display, listing only the
// parameters that deviate from the engine defaults.
func FormatParams(p transcriber.Params) string {
	var parts []string
	for _, name := range displayOrder {
		if v := paramValue(p, name); v != nil {
			parts = append(parts, name+"="+formatValue(*v))
		}
	}
	if len(parts) == 0 {
		return "(all defaults)"
	}
	return strings.Join(parts, ", ")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func paramValue(p transcriber.Params, name string) *float64 {
	switch name {
	case config.ParamSensitivity:
		return p.Sensitivity
	case config.ParamSpeechThreshold:
		return p.SpeechThreshold
	case config.ParamMinSegment:
		return p.MinSegment
	case config.ParamMinGap:
		return p.MinGap
	}
	return nil
}

func withParam(p transcriber.Params, name string, v float64) transcriber.Params {
	val := v
	switch name {
	case config.ParamSensitivity:
		p.Sensitivity = &val
	case config.ParamSpeechThreshold:
		p.SpeechThreshold = &val
	case config.ParamMinSegment:
		p.MinSegment = &val
	case config.ParamMinGap:
		p.MinGap = &val
	}
	return p
}
