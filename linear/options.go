package linear

import "github.com/KenkenGoda/trapi/pkg/log"

// DefaultAlpha is the L2 penalty used when neither WithAlpha nor the
// "alpha" parameter is given.
const DefaultAlpha = 1.0

// DefaultAlphaGrid is searched when training with tune=true.
var DefaultAlphaGrid = []float64{0.01, 0.1, 1, 10, 100}

// Option configures a Trainer
type Option func(*Trainer)

// WithAlpha sets the L2 penalty on standardized coefficients
func WithAlpha(alpha float64) Option {
	return func(t *Trainer) {
		t.alpha = alpha
	}
}

// WithAlphaGrid sets the penalties tried when tuning
func WithAlphaGrid(grid ...float64) Option {
	return func(t *Trainer) {
		t.grid = append([]float64(nil), grid...)
	}
}

// WithLogger sets the logger (default log.GetLogger())
func WithLogger(l log.Logger) Option {
	return func(t *Trainer) {
		t.logger = l
	}
}
