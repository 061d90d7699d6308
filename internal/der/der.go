package der

import "github.com/unthingable/ripcord/internal/rttm"

// DefaultCollar is the standard forgiveness collar in seconds.
const DefaultCollar = 0.25

// Options control scoring for one file.
type Options struct {
	// Collar is the forgiveness radius in seconds around reference
	// segment boundaries. Zero disables the collar entirely.
	Collar float64

	// SkipOverlap excludes frames with more than one active reference
	// speaker, isolating non-overlap performance.
	SkipOverlap bool
}

// Result holds the error breakdown for one file (or a corpus), in seconds.
type Result struct {
	DER        float64
	Missed     float64
	FalseAlarm float64
	Confusion  float64
	RefTotal   float64
}

// Score computes the DER between reference and system segments for a
// single file, after aligning system speaker labels to reference labels.
func Score(ref, sys []rttm.Segment, opts Options) Result {
	refFrames := FramesFromSegments(ref)
	sysFrames := FramesFromSegments(sys)
	collar := CollarMask(ref, opts.Collar)

	mapping := AlignSpeakers(refFrames, sysFrames, collar)
	mappedSys := relabel(sysFrames, mapping)

	return scoreFrames(refFrames, mappedSys, collar, opts.SkipOverlap)
}

// scoreFrames walks every frame with reference or system speech and
// accumulates per-frame error counts:
//
//	n_ref == 0, n_sys > 0: all n_sys is false alarm; frame excluded
//	    from the reference total.
//	otherwise: missed    += n_ref - min(n_ref, n_sys)
//	           falseAlarm += max(0, n_sys - n_ref)
//	           confusion  += min(n_ref, n_sys) - |intersection|
func scoreFrames(ref, sys FrameMap, collar Mask, skipOverlap bool) Result {
	var totalRef, missed, falseAlarm, confusion int

	for frame := range unionFrames(ref, sys) {
		if collar.contains(frame) {
			continue
		}

		refSpeakers := ref[frame]
		sysSpeakers := sys[frame]

		if skipOverlap && len(refSpeakers) > 1 {
			continue
		}

		nRef := len(refSpeakers)
		nSys := len(sysSpeakers)

		if nRef == 0 {
			falseAlarm += nSys
			continue
		}

		totalRef += nRef

		if nSys == 0 {
			missed += nRef
			continue
		}

		nCorrect := 0
		for s := range sysSpeakers {
			if refSpeakers.contains(s) {
				nCorrect++
			}
		}

		minRS := min(nRef, nSys)
		missed += nRef - minRS
		if nSys > nRef {
			falseAlarm += nSys - nRef
		}
		confusion += minRS - nCorrect
	}

	r := Result{
		Missed:     float64(missed) * FrameStep,
		FalseAlarm: float64(falseAlarm) * FrameStep,
		Confusion:  float64(confusion) * FrameStep,
		RefTotal:   float64(totalRef) * FrameStep,
	}
	r.DER = ratio(r.Missed+r.FalseAlarm+r.Confusion, r.RefTotal)
	return r
}

// Totals accumulates per-file results into corpus-wide counters. The
// corpus DER is a single ratio over summed seconds, weighting files by
// reference speech duration rather than averaging per-file rates.
type Totals struct {
	Missed     float64
	FalseAlarm float64
	Confusion  float64
	RefTotal   float64
	Files      int
}

// Add folds one file's result into the corpus totals.
func (t *Totals) Add(r Result) {
	t.Missed += r.Missed
	t.FalseAlarm += r.FalseAlarm
	t.Confusion += r.Confusion
	t.RefTotal += r.RefTotal
	t.Files++
}

// Result derives the corpus-level result from the accumulated seconds.
func (t *Totals) Result() Result {
	r := Result{
		Missed:     t.Missed,
		FalseAlarm: t.FalseAlarm,
		Confusion:  t.Confusion,
		RefTotal:   t.RefTotal,
	}
	r.DER = ratio(r.Missed+r.FalseAlarm+r.Confusion, r.RefTotal)
	return r
}

// ratio guards against zero reference speech: DER is defined as exactly
// 0.0 when there is nothing to score, never a division error.
func ratio(errorSeconds, refSeconds float64) float64 {
	if refSeconds <= 0 {
		return 0.0
	}
	return errorSeconds / refSeconds
}
