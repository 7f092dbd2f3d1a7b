// Package estimator wraps a fitted regression function that predicts the
// travel time of one segment in minutes.
package estimator

import (
	"errors"
)

// ErrEstimatorUnavailable is returned when no trained model was loaded.
var ErrEstimatorUnavailable = errors.New("estimator unavailable: no trained model loaded")

// Features is the numeric input vector, in training column order.
type Features struct {
	PrevTime       float64
	Crowd          int
	Traffic        int
	UserExperience int
}

// Vector returns the features as the 4-dimensional vector the model was fit on.
func (f Features) Vector() [4]float64 {
	return [4]float64{f.PrevTime, float64(f.Crowd), float64(f.Traffic), float64(f.UserExperience)}
}

// Model is any fitted regressor. Implementations must be deterministic and
// safe for concurrent reads.
type Model interface {
	Predict(f Features) (float64, error)
}

// ModelFunc adapts a plain function to Model.
type ModelFunc func(f Features) (float64, error)

func (fn ModelFunc) Predict(f Features) (float64, error) { return fn(f) }

// Estimator is the serving-side handle on a model. The zero value and a nil
// *Estimator are both valid and report ErrEstimatorUnavailable.
type Estimator struct {
	model   Model
	version string
}

// New wraps m. A nil m yields an unavailable estimator.
func New(m Model, version string) *Estimator {
	return &Estimator{model: m, version: version}
}

// Available reports whether a model is loaded.
func (e *Estimator) Available() bool {
	return e != nil && e.model != nil
}

// Version is the artifact version string, or "fallback" when nothing is loaded.
func (e *Estimator) Version() string {
	if !e.Available() {
		return "fallback"
	}
	return e.version
}

// Predict returns the predicted duration in minutes.
func (e *Estimator) Predict(prevTime float64, crowd, traffic, userExperience int) (float64, error) {
	if !e.Available() {
		return 0, ErrEstimatorUnavailable
	}
	return e.model.Predict(Features{
		PrevTime:       prevTime,
		Crowd:          crowd,
		Traffic:        traffic,
		UserExperience: userExperience,
	})
}
