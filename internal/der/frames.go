// Package der computes the Diarization Error Rate between reference and
// system segment collections using the frame-based interval-overlap method
// with a configurable forgiveness collar.
package der

import "github.com/unthingable/ripcord/internal/rttm"

// FrameStep is the scoring resolution in seconds (10 ms frames).
const FrameStep = 0.01

// speakerSet is the set of speaker labels active in one frame.
type speakerSet map[string]struct{}

func (s speakerSet) add(speaker string) {
	s[speaker] = struct{}{}
}

func (s speakerSet) contains(speaker string) bool {
	_, ok := s[speaker]
	return ok
}

// FrameMap maps a frame index to the set of speakers active in that frame.
// A frame belongs to a speaker iff any segment of that speaker covers it.
type FrameMap map[int]speakerSet

// FramesFromSegments discretizes segments into a FrameMap. Each segment
// marks frames in the half-open range [floor(start/step), floor(end/step)),
// so the end frame itself is excluded. Zero and negative durations contribute no
// frames. The result is independent of input order.
func FramesFromSegments(segments []rttm.Segment) FrameMap {
	frames := make(FrameMap)
	for _, seg := range segments {
		startFrame := int(seg.Start / FrameStep)
		endFrame := int(seg.End() / FrameStep)
		for i := startFrame; i < endFrame; i++ {
			set, ok := frames[i]
			if !ok {
				set = make(speakerSet)
				frames[i] = set
			}
			set.add(seg.Speaker)
		}
	}
	return frames
}

// Mask is a set of frame indices excluded from scoring.
type Mask map[int]struct{}

func (m Mask) contains(frame int) bool {
	_, ok := m[frame]
	return ok
}

// CollarMask returns the frames within collar seconds of any reference
// segment boundary (both start and end), clamped to non-negative indices.
// A collar of zero yields an empty mask; the check is explicit rather than
// relying on the window arithmetic.
func CollarMask(refSegments []rttm.Segment, collar float64) Mask {
	mask := make(Mask)
	if collar <= 0 {
		return mask
	}

	collarFrames := int(collar / FrameStep)
	for _, seg := range refSegments {
		startFrame := int(seg.Start / FrameStep)
		endFrame := int(seg.End() / FrameStep)
		for _, boundary := range [2]int{startFrame, endFrame} {
			lo := boundary - collarFrames
			if lo < 0 {
				lo = 0
			}
			for i := lo; i <= boundary+collarFrames; i++ {
				mask[i] = struct{}{}
			}
		}
	}
	return mask
}

// unionFrames returns every frame index active in either map.
func unionFrames(ref, sys FrameMap) map[int]struct{} {
	all := make(map[int]struct{}, len(ref)+len(sys))
	for i := range ref {
		all[i] = struct{}{}
	}
	for i := range sys {
		all[i] = struct{}{}
	}
	return all
}
