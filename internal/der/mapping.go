package der

import "sort"

// AlignSpeakers computes a mapping from system speaker labels to reference
// labels that approximately maximizes total temporal overlap. System labels
// are arbitrary, so they must be reconciled before confusion can be
// attributed.
//
// The assignment is greedy: system speakers are taken in order of their
// single best overlap (descending) and each is mapped to the reference
// speaker it overlaps most. A reference speaker may be claimed by more than
// one system speaker. This approximates the optimal bipartite matching and
// is deliberately not Hungarian.
// Ties are broken by lexicographically smallest speaker label so results
// are reproducible.
//
// System speakers with zero overlap against every reference speaker are
// absent from the mapping; their frames score as false alarms downstream.
func AlignSpeakers(ref, sys FrameMap, collar Mask) map[string]string {
	// Overlap count per (sys, ref) pair over non-collared frames where
	// both are active.
	overlap := make(map[string]map[string]int)
	for frame, sysSpeakers := range sys {
		if collar.contains(frame) {
			continue
		}
		refSpeakers, ok := ref[frame]
		if !ok {
			continue
		}
		for s := range sysSpeakers {
			for r := range refSpeakers {
				counts, ok := overlap[s]
				if !ok {
					counts = make(map[string]int)
					overlap[s] = counts
				}
				counts[r]++
			}
		}
	}

	sysSpeakers := make([]string, 0, len(overlap))
	for s := range overlap {
		sysSpeakers = append(sysSpeakers, s)
	}
	sort.Slice(sysSpeakers, func(i, j int) bool {
		bi, bj := bestOverlap(overlap[sysSpeakers[i]]), bestOverlap(overlap[sysSpeakers[j]])
		if bi != bj {
			return bi > bj
		}
		return sysSpeakers[i] < sysSpeakers[j]
	})

	mapping := make(map[string]string, len(sysSpeakers))
	for _, s := range sysSpeakers {
		mapping[s] = bestReference(overlap[s])
	}
	return mapping
}

func bestOverlap(counts map[string]int) int {
	best := 0
	for _, n := range counts {
		if n > best {
			best = n
		}
	}
	return best
}

func bestReference(counts map[string]int) string {
	var best string
	bestCount := -1
	for r, n := range counts {
		if n > bestCount || (n == bestCount && r < best) {
			best = r
			bestCount = n
		}
	}
	return best
}

// relabel applies mapping to every frame of sys, leaving unmapped labels
// unchanged.
func relabel(sys FrameMap, mapping map[string]string) FrameMap {
	mapped := make(FrameMap, len(sys))
	for frame, speakers := range sys {
		set := make(speakerSet, len(speakers))
		for s := range speakers {
			if r, ok := mapping[s]; ok {
				set.add(r)
			} else {
				set.add(s)
			}
		}
		mapped[frame] = set
	}
	return mapped
}
