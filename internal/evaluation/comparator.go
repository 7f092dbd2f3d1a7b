// Package evaluation scores a trained estimator against whole city datasets.
package evaluation

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/montanaflynn/stats"

	"bustime.org/internal/categorical"
	"bustime.org/internal/dataset"
	"bustime.org/internal/estimator"
	"bustime.org/internal/logging"
)

// BestFit is the least-squares line predicted = Slope*actual + Intercept.
type BestFit struct {
	Slope     float64
	Intercept float64
}

// CityReport is the evaluation of one dataset.
type CityReport struct {
	City      string
	Target    string
	Rows      int
	MAE       float64
	R2        float64
	Actual    []float64
	Predicted []float64
	Fit       BestFit
}

type Comparator struct {
	estimator *estimator.Estimator
	encoders  *categorical.Set
	logger    *slog.Logger
}

func NewComparator(est *estimator.Estimator, encoders *categorical.Set, logger *slog.Logger) *Comparator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Comparator{estimator: est, encoders: encoders, logger: logger}
}

// Evaluate predicts every row of t and scores the predictions against the
// target column.
func (c *Comparator) Evaluate(t *dataset.Table) (*CityReport, error) {
	if !c.estimator.Available() {
		return nil, estimator.ErrEstimatorUnavailable
	}
	if t.Empty() {
		return nil, fmt.Errorf("dataset %s is empty", t.City)
	}

	start := time.Now()
	target, err := TargetColumn(t)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", t.City, err)
	}
	samples, err := Samples(t, c.encoders, target)
	if err != nil {
		return nil, err
	}

	report := &CityReport{
		City:      t.City,
		Target:    target,
		Rows:      len(samples),
		Actual:    make([]float64, len(samples)),
		Predicted: make([]float64, len(samples)),
	}
	for i, s := range samples {
		f := s.Features
		p, err := c.estimator.Predict(f.PrevTime, f.Crowd, f.Traffic, f.UserExperience)
		if err != nil {
			return nil, fmt.Errorf("dataset %s row %d: %w", t.City, i, err)
		}
		report.Actual[i] = s.Target
		report.Predicted[i] = p
	}

	if report.MAE, err = MeanAbsoluteError(report.Actual, report.Predicted); err != nil {
		return nil, err
	}
	if report.R2, err = RSquared(report.Actual, report.Predicted); err != nil {
		return nil, err
	}
	if report.Fit, err = FitLine(report.Actual, report.Predicted); err != nil {
		return nil, err
	}

	logging.LogOperation(c.logger, "dataset_evaluated",
		slog.String("city", report.City),
		slog.String("target", report.Target),
		slog.Int("rows", report.Rows),
		slog.Float64("mae", report.MAE),
		slog.Float64("r2", report.R2),
		slog.Float64("fit_slope", report.Fit.Slope),
		slog.Float64("fit_intercept", report.Fit.Intercept),
		slog.Duration("duration", time.Since(start)),
		slog.String("component", "comparator"))
	return report, nil
}

// Compare evaluates each table in order. The first failure aborts.
func (c *Comparator) Compare(tables ...*dataset.Table) ([]*CityReport, error) {
	reports := make([]*CityReport, 0, len(tables))
	for _, t := range tables {
		r, err := c.Evaluate(t)
		if err != nil {
			logging.LogError(c.logger, "evaluation failed", err,
				slog.String("city", t.City),
				slog.String("component", "comparator"))
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}

// MeanAbsoluteError is mean(|actual - predicted|).
func MeanAbsoluteError(actual, predicted []float64) (float64, error) {
	if err := checkPaired(actual, predicted); err != nil {
		return 0, err
	}
	abs := make([]float64, len(actual))
	for i := range actual {
		abs[i] = math.Abs(actual[i] - predicted[i])
	}
	return stats.Mean(abs)
}

// RSquared is the coefficient of determination. A constant actual series
// scores 1 when predicted exactly and 0 otherwise.
func RSquared(actual, predicted []float64) (float64, error) {
	if err := checkPaired(actual, predicted); err != nil {
		return 0, err
	}
	variance, err := stats.PopulationVariance(actual)
	if err != nil {
		return 0, err
	}
	ssTot := variance * float64(len(actual))

	var ssRes float64
	for i := range actual {
		d := actual[i] - predicted[i]
		ssRes += d * d
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

// FitLine regresses predicted on actual. With fewer than two points or no
// spread in actual the line is flat at the mean prediction.
func FitLine(actual, predicted []float64) (BestFit, error) {
	if err := checkPaired(actual, predicted); err != nil {
		return BestFit{}, err
	}
	meanPred, err := stats.Mean(predicted)
	if err != nil {
		return BestFit{}, err
	}
	if len(actual) < 2 {
		return BestFit{Intercept: meanPred}, nil
	}

	varActual, err := stats.SampleVariance(actual)
	if err != nil {
		return BestFit{}, err
	}
	if varActual == 0 {
		return BestFit{Intercept: meanPred}, nil
	}
	cov, err := stats.Covariance(actual, predicted)
	if err != nil {
		return BestFit{}, err
	}
	meanActual, err := stats.Mean(actual)
	if err != nil {
		return BestFit{}, err
	}

	slope := cov / varActual
	return BestFit{Slope: slope, Intercept: meanPred - slope*meanActual}, nil
}

func checkPaired(actual, predicted []float64) error {
	if len(actual) == 0 {
		return fmt.Errorf("no values to score")
	}
	if len(actual) != len(predicted) {
		return fmt.Errorf("series length mismatch: %d actual, %d predicted", len(actual), len(predicted))
	}
	return nil
}
