package sweep

import (
	"sort"

	"github.com/unthingable/ripcord/internal/config"
	"github.com/unthingable/ripcord/internal/transcriber"
)

// GenerateCoarse builds the one-at-a-time combos: each parameter is
// varied over its candidate range while the others stay at engine
// defaults. Combos are deduplicated by ID.
func GenerateCoarse(ranges config.Ranges) []transcriber.Params {
	seen := make(map[string]struct{})
	var combos []transcriber.Params
	for _, name := range config.ParamNames {
		for _, val := range ranges[name] {
			p := withParam(transcriber.Params{}, name, val)
			id := ComboID(p)
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			combos = append(combos, p)
		}
	}
	return combos
}

// BestPerParam ranks each parameter's coarse values by DER, best first.
// Only outcomes where exactly that parameter deviates from the defaults
// count toward its ranking.
func BestPerParam(outcomes []Outcome) map[string][]float64 {
	best := make(map[string][]float64, len(config.ParamNames))
	for _, name := range config.ParamNames {
		type scored struct {
			value float64
			der   float64
		}
		var candidates []scored
		for _, o := range outcomes {
			v := paramValue(o.Params, name)
			if v == nil || !othersAtDefault(o.Params, name) {
				continue
			}
			candidates = append(candidates, scored{value: *v, der: o.Score.DER})
		}
		if len(candidates) == 0 {
			continue
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].der < candidates[j].der
		})
		values := make([]float64, len(candidates))
		for i, c := range candidates {
			values[i] = c.value
		}
		best[name] = values
	}
	return best
}

func othersAtDefault(p transcriber.Params, except string) bool {
	for _, name := range config.ParamNames {
		if name == except {
			continue
		}
		if paramValue(p, name) != nil {
			return false
		}
	}
	return true
}

// GenerateGrid builds the focused grid from the top-N values per
// parameter, taking the Cartesian product over sorted parameter names.
// A parameter with no ranked values stays at the engine default.
func GenerateGrid(best map[string][]float64, topN int) []transcriber.Params {
	var keys []string
	for k, values := range best {
		if len(values) > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return nil
	}

	axes := make([][]float64, len(keys))
	for i, k := range keys {
		values := best[k]
		if len(values) > topN {
			values = values[:topN]
		}
		axes[i] = values
	}

	var combos []transcriber.Params
	indices := make([]int, len(axes))
	for {
		p := transcriber.Params{}
		for i, k := range keys {
			p = withParam(p, k, axes[i][indices[i]])
		}
		combos = append(combos, p)

		// Advance the odometer, rightmost axis fastest.
		i := len(indices) - 1
		for ; i >= 0; i-- {
			indices[i]++
			if indices[i] < len(axes[i]) {
				break
			}
			indices[i] = 0
		}
		if i < 0 {
			return combos
		}
	}
}

// ExcludeIDs filters out combos whose ID appears in exclude.
func ExcludeIDs(combos []transcriber.Params, exclude map[string]struct{}) []transcriber.Params {
	var kept []transcriber.Params
	for _, p := range combos {
		if _, ok := exclude[ComboID(p)]; ok {
			continue
		}
		kept = append(kept, p)
	}
	return kept
}
