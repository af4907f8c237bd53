// Package deviation computes the positional offset of a matched sample from
// its target and rejects offsets too large to be aiming-precision samples.
package deviation

import (
	"fmt"
	"math"

	"github.com/aimdrift/aimdrift/internal/domain/model"
)

// Filter accepts near-miss deviations and rejects whiffs. Deviations beyond
// the inclusion radius come from missed targets rather than systematic bias
// and would skew the aggregate statistics.
type Filter struct {
	radius float64
}

// NewFilter creates a filter with the given inclusion radius in source
// units. A negative radius is a programming error and is rejected.
func NewFilter(radius float64) (*Filter, error) {
	if radius < 0 || math.IsNaN(radius) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	return &Filter{radius: radius}, nil
}

// Evaluate returns the deviation vector for a matched result and whether it
// falls within the inclusion radius. Boundary equality is accepted.
// Unmatched results never produce a vector.
func (f *Filter) Evaluate(m model.MatchResult) (model.DeviationVector, bool) {
	if !m.Matched {
		return model.DeviationVector{}, false
	}
	v := model.DeviationVector{
		DX: m.Sample.X - m.Target.X,
		DY: m.Sample.Y - m.Target.Y,
	}
	if math.Hypot(v.DX, v.DY) > f.radius {
		return model.DeviationVector{}, false
	}
	return v, true
}
