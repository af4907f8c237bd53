package bias

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithArea sets the physical dimensions of the active input area in
// millimetres. Both dimensions must be positive; NewAggregator rejects the
// configuration otherwise.
func WithArea(widthMM, heightMM float64) Option {
	return func(a *Aggregator) {
		a.areaWidthMM = widthMM
		a.areaHeightMM = heightMM
	}
}

// WithThreshold sets the minimum mean bias in millimetres before a
// corrective shift is suggested.
func WithThreshold(mm float64) Option {
	return func(a *Aggregator) {
		a.thresholdMM = mm
	}
}
