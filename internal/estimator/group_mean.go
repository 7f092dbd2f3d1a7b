package estimator

import (
	"errors"
	"fmt"
	"math"
)

// Sample is one labelled training row.
type Sample struct {
	Features Features
	Target   float64
}

// GroupMeanRegressor predicts the mean target of the training rows sharing the
// same encoded condition triple, plus a least-squares correction on PrevTime.
// Triples never seen in training fall back to the global mean.
type GroupMeanRegressor struct {
	Groups     map[string]float64 `json:"groups"`
	GlobalMean float64            `json:"global_mean"`
	PrevMean   float64            `json:"prev_mean"`
	PrevSlope  float64            `json:"prev_slope"`
	Samples    int                `json:"samples"`
}

var errNoSamples = errors.New("no training samples")

func groupKey(f Features) string {
	return fmt.Sprintf("%d/%d/%d", f.Crowd, f.Traffic, f.UserExperience)
}

// Fit trains a GroupMeanRegressor.
func Fit(samples []Sample) (*GroupMeanRegressor, error) {
	if len(samples) == 0 {
		return nil, errNoSamples
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	var total, prevTotal float64
	for _, s := range samples {
		if math.IsNaN(s.Target) || math.IsInf(s.Target, 0) {
			return nil, fmt.Errorf("invalid target %v", s.Target)
		}
		k := groupKey(s.Features)
		sums[k] += s.Target
		counts[k]++
		total += s.Target
		prevTotal += s.Features.PrevTime
	}

	n := float64(len(samples))
	m := &GroupMeanRegressor{
		Groups:     make(map[string]float64, len(sums)),
		GlobalMean: total / n,
		PrevMean:   prevTotal / n,
		Samples:    len(samples),
	}
	for k, sum := range sums {
		m.Groups[k] = sum / float64(counts[k])
	}

	// Slope of the residual (target minus group mean) on PrevTime. Zero when
	// PrevTime carries no variance, as with the constant-zero training column.
	var cov, varPrev float64
	for _, s := range samples {
		dx := s.Features.PrevTime - m.PrevMean
		cov += dx * (s.Target - m.Groups[groupKey(s.Features)])
		varPrev += dx * dx
	}
	if varPrev > 0 {
		m.PrevSlope = cov / varPrev
	}

	return m, nil
}

// Predict implements Model.
func (m *GroupMeanRegressor) Predict(f Features) (float64, error) {
	if m == nil {
		return 0, ErrEstimatorUnavailable
	}
	base, ok := m.Groups[groupKey(f)]
	if !ok {
		base = m.GlobalMean
	}
	out := base + m.PrevSlope*(f.PrevTime-m.PrevMean)
	if math.IsNaN(out) || math.IsInf(out, 0) {
		return 0, fmt.Errorf("model produced non-finite output for %v", f.Vector())
	}
	return out, nil
}
