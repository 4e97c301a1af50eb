package preprocessing

import (
	"github.com/cespare/xxhash/v2"
	"gonum.org/v1/gonum/mat"

	"github.com/KenkenGoda/trapi/core/parallel"
	"github.com/KenkenGoda/trapi/pkg/errors"
)

// DefaultHashFeatures is the bucket count used by HashEncode callers that do
// not choose one.
const DefaultHashFeatures = 10

// FeatureHasher maps arbitrary string tokens into a fixed number of buckets.
// It is stateless: the same token always lands in the same bucket, so there
// is nothing to fit. Collisions are accepted.
type FeatureHasher struct {
	nFeatures     int
	alternateSign bool
}

// HasherOption configures a FeatureHasher.
type HasherOption func(*FeatureHasher)

// WithAlternateSign sets whether a hash bit flips the sign of the added value
// so that colliding tokens tend to cancel out instead of accumulating
// (default: true).
func WithAlternateSign(alternate bool) HasherOption {
	return func(h *FeatureHasher) {
		h.alternateSign = alternate
	}
}

// NewFeatureHasher creates a hasher with nFeatures buckets.
func NewFeatureHasher(nFeatures int, opts ...HasherOption) (*FeatureHasher, error) {
	if nFeatures < 1 {
		return nil, errors.NewValidationError("n_features", "must be positive", nFeatures)
	}
	h := &FeatureHasher{nFeatures: nFeatures, alternateSign: true}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// NFeatures returns the bucket count.
func (h *FeatureHasher) NFeatures() int { return h.nFeatures }

// Bucket returns the bucket index and sign of one token.
func (h *FeatureHasher) Bucket(token string) (int, float64) {
	sum := xxhash.Sum64String(token)
	idx := int(sum % uint64(h.nFeatures))
	if h.alternateSign && sum>>63 == 1 {
		return idx, -1
	}
	return idx, 1
}

// Transform hashes one token per sample into an n_samples × n_features matrix.
func (h *FeatureHasher) Transform(values []string) (*mat.Dense, error) {
	tokens := make([][]string, len(values))
	for i, v := range values {
		tokens[i] = []string{v}
	}
	return h.TransformTokens(tokens)
}

// TransformTokens hashes a list of tokens per sample. Tokens of one sample
// accumulate into the same row.
func (h *FeatureHasher) TransformTokens(samples [][]string) (*mat.Dense, error) {
	if len(samples) == 0 {
		return nil, errors.NewModelError("FeatureHasher.Transform", "empty data", errors.ErrEmptyData)
	}
	out := mat.NewDense(len(samples), h.nFeatures, nil)
	// each worker owns a disjoint row range of out
	parallel.ParallelizeWithThreshold(len(samples), parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for _, tok := range samples[i] {
				j, sign := h.Bucket(tok)
				out.Set(i, j, out.At(i, j)+sign)
			}
		}
	})
	return out, nil
}

// HashEncode hashes values into nFeatures buckets and returns the matrix
// together with the hasher used.
func HashEncode(values []string, nFeatures int) (*mat.Dense, *FeatureHasher, error) {
	h, err := NewFeatureHasher(nFeatures)
	if err != nil {
		return nil, nil, err
	}
	out, err := h.Transform(values)
	if err != nil {
		return nil, nil, err
	}
	return out, h, nil
}
