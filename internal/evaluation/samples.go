package evaluation

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"bustime.org/internal/categorical"
	"bustime.org/internal/dataset"
	"bustime.org/internal/estimator"
)

// TargetPriority lists the candidate target columns in preference order.
var TargetPriority = []string{"travel_time", "total_journey", "duration", "time", "journey_time"}

// ErrNoTargetColumn is returned when a table has none of TargetPriority.
var ErrNoTargetColumn = errors.New("no valid target column found in dataset")

// TargetColumn picks the first column of TargetPriority present in t.
func TargetColumn(t *dataset.Table) (string, error) {
	for _, c := range TargetPriority {
		if t.HasColumn(c) {
			return c, nil
		}
	}
	return "", ErrNoTargetColumn
}

// FitEncoders fits the encoder set on the condition columns of t.
func FitEncoders(t *dataset.Table) (*categorical.Set, error) {
	for _, c := range []string{dataset.ColumnCrowd, dataset.ColumnTraffic, dataset.ColumnUserExperience} {
		if !t.HasColumn(c) {
			return nil, fmt.Errorf("dataset %s has no %s column", t.City, c)
		}
	}
	return categorical.FitSet(
		t.Column(dataset.ColumnCrowd),
		t.Column(dataset.ColumnTraffic),
		t.Column(dataset.ColumnUserExperience),
	), nil
}

// Samples encodes every row of t into an estimator sample. prev_time is held
// at zero, matching how the model is trained. An unknown label or an
// unparsable target aborts with the offending row named.
func Samples(t *dataset.Table, encoders *categorical.Set, target string) ([]estimator.Sample, error) {
	if !t.HasColumn(target) {
		return nil, fmt.Errorf("dataset %s: %w: %s", t.City, ErrNoTargetColumn, target)
	}

	samples := make([]estimator.Sample, 0, t.Len())
	for row := 0; row < t.Len(); row++ {
		crowd, _ := t.Value(row, dataset.ColumnCrowd)
		traffic, _ := t.Value(row, dataset.ColumnTraffic)
		ux, _ := t.Value(row, dataset.ColumnUserExperience)

		codes, err := encoders.Encode(crowd, traffic, ux)
		if err != nil {
			return nil, fmt.Errorf("dataset %s row %d: %w", t.City, row, err)
		}

		raw, _ := t.Value(row, target)
		y, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, fmt.Errorf("dataset %s row %d: invalid %s value %q", t.City, row, target, raw)
		}

		samples = append(samples, estimator.Sample{
			Features: estimator.Features{
				Crowd:          codes.Crowd,
				Traffic:        codes.Traffic,
				UserExperience: codes.UserExperience,
			},
			Target: y,
		})
	}
	return samples, nil
}
