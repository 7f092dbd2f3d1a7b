// Package prediction turns historical trip rows into per-segment travel-time
// predictions. The Policy decides between the trained estimator and a
// jittered fallback; the segmenter and selector walk the schedule.
package prediction

import (
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"

	"bustime.org/internal/categorical"
	"bustime.org/internal/estimator"
	"bustime.org/internal/logging"
)

// Inclusive bounds of the fallback jitter, in minutes.
const (
	JitterMin = -2
	JitterMax = 3
)

// MinimumMinutes is the floor applied to every prediction.
const MinimumMinutes = 1

// Source records which branch of the policy produced a prediction.
type Source int

const (
	SourceModel Source = iota
	SourceFallbackNoModel
	SourceFallbackUnknownCategory
	SourceFallbackEstimatorError
)

func (s Source) String() string {
	switch s {
	case SourceModel:
		return "model"
	case SourceFallbackNoModel:
		return "fallback_no_model"
	case SourceFallbackUnknownCategory:
		return "fallback_unknown_category"
	case SourceFallbackEstimatorError:
		return "fallback_estimator_error"
	default:
		return "unknown"
	}
}

// IsFallback reports whether the jittered actual time was used.
func (s Source) IsFallback() bool { return s != SourceModel }

// Input is one segment to predict.
type Input struct {
	PrevTime       float64
	Crowd          string
	Traffic        string
	UserExperience string
	ActualMinutes  float64
}

// Outcome is always usable: Minutes is at least MinimumMinutes whatever the
// source. Err holds the failure that forced a fallback, if any.
type Outcome struct {
	Minutes int
	Source  Source
	Err     error
}

// JitterFunc returns an integer offset in [JitterMin, JitterMax].
type JitterFunc func() int

// UniformJitter draws from math/rand/v2.
func UniformJitter() int {
	return JitterMin + rand.IntN(JitterMax-JitterMin+1)
}

// Recorder receives one call per prediction; metrics.Collector implements it.
type Recorder interface {
	RecordPrediction(source string)
}

// Policy is read-only after construction and safe for concurrent use as long
// as its JitterFunc is.
type Policy struct {
	estimator *estimator.Estimator
	encoders  *categorical.Set
	jitter    JitterFunc
	recorder  Recorder
	logger    *slog.Logger
}

// PolicyOption customizes a Policy.
type PolicyOption func(*Policy)

func WithJitter(fn JitterFunc) PolicyOption {
	return func(p *Policy) { p.jitter = fn }
}

func WithRecorder(r Recorder) PolicyOption {
	return func(p *Policy) { p.recorder = r }
}

func WithLogger(l *slog.Logger) PolicyOption {
	return func(p *Policy) { p.logger = l }
}

// NewPolicy builds a policy. A nil or unavailable estimator, or a nil encoder
// set, puts the policy in fallback-only mode.
func NewPolicy(est *estimator.Estimator, encoders *categorical.Set, opts ...PolicyOption) *Policy {
	p := &Policy{
		estimator: est,
		encoders:  encoders,
		jitter:    UniformJitter,
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ModelAvailable reports whether predictions can come from the estimator.
func (p *Policy) ModelAvailable() bool {
	return p.estimator.Available() && p.encoders != nil
}

// Predict runs the policy for one segment.
func (p *Policy) Predict(in Input) Outcome {
	out := p.decide(in)
	if p.recorder != nil {
		p.recorder.RecordPrediction(out.Source.String())
	}
	return out
}

func (p *Policy) decide(in Input) Outcome {
	if !p.ModelAvailable() {
		return Outcome{Minutes: p.fallback(in.ActualMinutes), Source: SourceFallbackNoModel}
	}

	codes, err := p.encoders.Encode(in.Crowd, in.Traffic, in.UserExperience)
	if err != nil {
		var unknown *categorical.UnknownCategoryError
		src := SourceFallbackEstimatorError
		if errors.As(err, &unknown) {
			src = SourceFallbackUnknownCategory
		}
		return p.recover(in, src, err)
	}

	raw, err := p.estimator.Predict(in.PrevTime, codes.Crowd, codes.Traffic, codes.UserExperience)
	if err != nil {
		return p.recover(in, SourceFallbackEstimatorError, err)
	}
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return p.recover(in, SourceFallbackEstimatorError, errors.New("estimator returned a non-finite value"))
	}

	return Outcome{Minutes: atLeastMinimum(int(math.Round(raw))), Source: SourceModel}
}

func (p *Policy) recover(in Input, src Source, err error) Outcome {
	minutes := p.fallback(in.ActualMinutes)
	logging.LogWarning(p.logger, "prediction fell back to actual time", err,
		slog.String("source", src.String()),
		slog.Float64("prev_time", in.PrevTime),
		slog.String("crowd", in.Crowd),
		slog.String("traffic", in.Traffic),
		slog.String("user_experience", in.UserExperience),
		slog.Float64("actual_minutes", in.ActualMinutes),
		slog.Int("predicted_minutes", minutes),
		slog.String("component", "prediction_policy"))
	return Outcome{Minutes: minutes, Source: src, Err: err}
}

// fallback is floor(actual + jitter), floored at MinimumMinutes.
func (p *Policy) fallback(actual float64) int {
	j := p.jitter()
	if j < JitterMin {
		j = JitterMin
	} else if j > JitterMax {
		j = JitterMax
	}
	return atLeastMinimum(int(math.Floor(actual + float64(j))))
}

func atLeastMinimum(m int) int {
	if m < MinimumMinutes {
		return MinimumMinutes
	}
	return m
}
