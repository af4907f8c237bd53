// Package bias reduces a set of deviation vectors to directional bias
// statistics and a corrective area-shift suggestion.
package bias

import (
	"fmt"
	"math"

	"github.com/aimdrift/aimdrift/internal/domain/model"
)

// Default aggregation configuration constants.
const (
	defaultThresholdMM = 0.25
	percentScale       = 100.0
)

// Aggregator summarizes accepted deviation vectors. The reduction is a
// multiset of sums and counts, so input order never affects the result.
type Aggregator struct {
	areaWidthMM  float64
	areaHeightMM float64
	thresholdMM  float64
}

// NewAggregator creates an aggregator with configuration options. The
// physical area dimensions are mandatory and must be positive; the
// suggestion threshold must be non-negative.
func NewAggregator(opts ...Option) (*Aggregator, error) {
	a := &Aggregator{
		thresholdMM: defaultThresholdMM,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.areaWidthMM <= 0 || a.areaHeightMM <= 0 {
		return nil, fmt.Errorf("%w: %gx%g", ErrInvalidArea, a.areaWidthMM, a.areaHeightMM)
	}
	if a.thresholdMM < 0 {
		return nil, fmt.Errorf("%w: %g", ErrInvalidThreshold, a.thresholdMM)
	}
	return a, nil
}

// Summarize computes the bias report for a vector set. An empty set yields a
// report flagged InsufficientData; no statistics are computed and no division
// takes place.
func (a *Aggregator) Summarize(vectors []model.DeviationVector) model.BiasReport {
	n := len(vectors)
	if n == 0 {
		return model.BiasReport{InsufficientData: true}
	}

	var sumDX, sumDY float64
	var topLeft, topRight, bottomLeft, bottomRight int
	for _, v := range vectors {
		sumDX += v.DX
		sumDY += v.DY
		switch {
		case v.DX < 0 && v.DY < 0:
			topLeft++
		case v.DX >= 0 && v.DY < 0:
			topRight++
		case v.DX < 0 && v.DY >= 0:
			bottomLeft++
		default:
			bottomRight++
		}
	}

	count := float64(n)
	report := model.BiasReport{
		Samples: n,
		MeanDX:  sumDX / count,
		MeanDY:  sumDY / count,
		Quadrants: model.QuadrantShare{
			TopLeft:     float64(topLeft) / count * percentScale,
			TopRight:    float64(topRight) / count * percentScale,
			BottomLeft:  float64(bottomLeft) / count * percentScale,
			BottomRight: float64(bottomRight) / count * percentScale,
		},
	}
	report.MeanDXMM = report.MeanDX / model.PlayfieldWidth * a.areaWidthMM
	report.MeanDYMM = report.MeanDY / model.PlayfieldHeight * a.areaHeightMM

	// Only the decision to suggest anything is gated by the joint threshold;
	// the per-axis magnitudes are not re-gated individually.
	if math.Abs(report.MeanDXMM) >= a.thresholdMM || math.Abs(report.MeanDYMM) >= a.thresholdMM {
		report.Adjustment = &model.Shift{
			DXMM: -report.MeanDXMM,
			DYMM: -report.MeanDYMM,
		}
	}

	return report
}
