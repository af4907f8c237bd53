package align

// Option applies a configuration option to the Aligner.
type Option func(*Aligner)

// WithMaxDelta sets the match tolerance in milliseconds. A tolerance of zero
// requires an exact time match; negative values are ignored.
func WithMaxDelta(ms int64) Option {
	return func(a *Aligner) {
		if ms >= 0 {
			a.maxDelta = ms
		}
	}
}

// WithFullScan disables the monotonic early exit and scans the whole
// timeline for every target. Use it when the timeline's time ordering
// cannot be guaranteed.
func WithFullScan() Option {
	return func(a *Aligner) {
		a.fullScan = true
	}
}
