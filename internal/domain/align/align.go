// Package align pairs target events with the closest-in-time device sample
// from a recorded session timeline.
package align

import (
	"github.com/aimdrift/aimdrift/internal/domain/model"
)

// Default alignment configuration constants.
const (
	defaultMaxDeltaMS = 80
)

// Aligner matches each target event to its nearest device sample within a
// time tolerance. It is a pure function over its inputs and is safe for
// concurrent use.
type Aligner struct {
	maxDelta int64
	fullScan bool
}

// NewAligner creates an aligner with configuration options.
func NewAligner(opts ...Option) *Aligner {
	a := &Aligner{
		maxDelta: defaultMaxDeltaMS,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// MaxDelta reports the configured tolerance in milliseconds.
func (a *Aligner) MaxDelta() int64 {
	return a.maxDelta
}

// Align returns exactly one MatchResult per target event, preserving input
// order. A target with no sample within the tolerance yields an unmatched
// result; an empty timeline yields all-unmatched results.
func (a *Aligner) Align(targets []model.TargetEvent, timeline []model.DeviceSample) []model.MatchResult {
	results := make([]model.MatchResult, 0, len(targets))
	for _, target := range targets {
		results = append(results, a.closest(target, timeline))
	}
	return results
}

// closest scans the timeline for the sample minimizing |sample.Time -
// target.Time|. The timeline is monotonic by construction, so once the scan
// passes the target time and the gap exceeds the best distance found so far,
// no later sample can improve on it and the scan stops. Ties keep the sample
// encountered first, i.e. the earlier one, because only a strictly smaller
// distance replaces the current best.
func (a *Aligner) closest(target model.TargetEvent, timeline []model.DeviceSample) model.MatchResult {
	var best model.DeviceSample
	bestDelta := int64(-1)

	for _, sample := range timeline {
		delta := sample.Time - target.Time
		if delta < 0 {
			delta = -delta
		}
		if bestDelta < 0 || delta < bestDelta {
			bestDelta = delta
			best = sample
		}
		if !a.fullScan && sample.Time > target.Time && sample.Time-target.Time > bestDelta {
			break
		}
	}

	if bestDelta < 0 || bestDelta > a.maxDelta {
		return model.MatchResult{Target: target}
	}
	return model.MatchResult{
		Target:  target,
		Sample:  best,
		DeltaMS: bestDelta,
		Matched: true,
	}
}
