package pose

import (
	"context"
	"image"
)

// Estimator detects body landmarks in a decoded frame.
//
// A nil slice with a nil error means nothing was detected. Implementations
// must be safe for concurrent use: a single Estimator instance is shared
// across all session loops.
type Estimator interface {
	Estimate(ctx context.Context, frame image.Image) ([]Landmark, error)
}

// EstimatorFunc adapts a function to the Estimator interface.
type EstimatorFunc func(ctx context.Context, frame image.Image) ([]Landmark, error)

// Estimate calls f.
func (f EstimatorFunc) Estimate(ctx context.Context, frame image.Image) ([]Landmark, error) {
	return f(ctx, frame)
}
