// Package model contains domain models passed between layers.
package model

// Source coordinate space bounds. Target events and device samples both live
// in this logical space; physical-unit conversion rescales against it.
const (
	PlayfieldWidth  = 512.0
	PlayfieldHeight = 384.0
)

// TargetEvent is a timed, positioned event the user is expected to hit.
type TargetEvent struct {
	Time int64 // milliseconds from sequence start
	X    float64
	Y    float64
}

// DeviceSample is a recorded pointer position. Time is absolute, rebuilt by
// the session parser from cumulative inter-frame deltas, so a parsed timeline
// is monotonically non-decreasing.
type DeviceSample struct {
	Time int64 // milliseconds from session start
	X    float64
	Y    float64
}

// MatchResult pairs a target event with its closest-in-time device sample.
// Matched is false when no sample fell within the alignment tolerance; Sample
// and DeltaMS are only meaningful when Matched is true.
type MatchResult struct {
	Target  TargetEvent
	Sample  DeviceSample
	DeltaMS int64 // |sample.Time - target.Time|
	Matched bool
}

// DeviationVector is the 2D offset of a matched sample from its target,
// sample minus target, in source units.
type DeviationVector struct {
	DX float64
	DY float64
}

// QuadrantShare is the percentage of deviations falling into each quadrant.
// Positive DY points downward in the source space, so "top" means DY < 0.
type QuadrantShare struct {
	TopLeft     float64
	TopRight    float64
	BottomLeft  float64
	BottomRight float64
}

// Shift is a suggested corrective offset for the active area, in physical
// millimetres, sign-opposed to the observed bias on each axis.
type Shift struct {
	DXMM float64
	DYMM float64
}

// BiasReport aggregates a set of deviation vectors. When InsufficientData is
// set no vectors reached the aggregator and every other field is zero.
// Adjustment is nil when the mean bias is below threshold on both axes.
type BiasReport struct {
	Samples          int
	MeanDX           float64
	MeanDY           float64
	MeanDXMM         float64
	MeanDYMM         float64
	Quadrants        QuadrantShare
	Adjustment       *Shift
	InsufficientData bool
}
