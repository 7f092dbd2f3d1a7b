package prediction

import (
	"fmt"
	"log/slog"
	"time"

	"bustime.org/internal/dataset"
)

// SegmentPrediction is the prediction for travel between two consecutive stops.
type SegmentPrediction struct {
	Index            int
	CurrentStop      string
	NextStop         string
	PredictedMinutes int
	ActualMinutes    int
	Source           Source
	Crowd            string
	Traffic          string
	UserExperience   string
	ArrivalCurrent   string
	ArrivalNext      string
}

// ServiceResult is the ordered set of segment predictions for one trip.
type ServiceResult struct {
	BusID       int
	Row         int
	TripStart   string
	TripEnd     string
	Predictions []SegmentPrediction
}

// StopLabel names stop n as shown to riders.
func StopLabel(n int) string {
	return fmt.Sprintf("Stop %d", n)
}

// stopTime returns the parsed clock of the 1-based stop n.
func stopTime(trip dataset.TripRecord, n int) (time.Time, bool) {
	if n < 1 || n > len(trip.StopTimes) {
		return time.Time{}, false
	}
	return ParseClock(trip.StopTimes[n-1])
}

// SegmentTrip walks stops start..end of one trip. ok is false when either
// boundary stop is unparsable, in which case the whole trip is rejected.
// Individual segments with an unparsable endpoint are skipped. The running
// prev_time seeds each estimator call and is advanced with the actual minutes
// of the segment just processed, not the prediction.
func SegmentTrip(policy *Policy, trip dataset.TripRecord, start, end int, logger *slog.Logger) (ServiceResult, bool) {
	tStart, okStart := stopTime(trip, start)
	tEnd, okEnd := stopTime(trip, end)
	if !okStart || !okEnd {
		if logger != nil {
			logger.Debug("trip rejected: unparsable boundary time",
				slog.String("city", trip.City),
				slog.Int("bus", trip.BusID),
				slog.Int("row", trip.Row),
				slog.Int("start_stop", start),
				slog.Int("end_stop", end),
				slog.String("component", "trip_segmenter"))
		}
		return ServiceResult{}, false
	}

	result := ServiceResult{
		BusID:       trip.BusID,
		Row:         trip.Row,
		TripStart:   FormatClock(tStart),
		TripEnd:     FormatClock(tEnd),
	}
	if end > start {
		result.Predictions = make([]SegmentPrediction, 0, end-start)
	}

	prevTime := 0.0
	for i := start; i < end; i++ {
		tCurr, okCurr := stopTime(trip, i)
		tNext, okNext := stopTime(trip, i+1)
		if !okCurr || !okNext {
			if logger != nil {
				logger.Debug("segment skipped: unparsable stop time",
					slog.String("city", trip.City),
					slog.Int("bus", trip.BusID),
					slog.Int("row", trip.Row),
					slog.Int("stop", i),
					slog.String("component", "trip_segmenter"))
			}
			continue
		}

		actual := minutesBetween(tCurr, tNext)

		seed := prevTime
		if seed <= 0 {
			seed = actual
		}

		outcome := policy.Predict(Input{
			PrevTime:       seed,
			Crowd:          trip.Crowd,
			Traffic:        trip.Traffic,
			UserExperience: trip.UserExperience,
			ActualMinutes:  actual,
		})

		result.Predictions = append(result.Predictions, SegmentPrediction{
			Index:            len(result.Predictions),
			CurrentStop:      StopLabel(i),
			NextStop:         StopLabel(i + 1),
			PredictedMinutes: outcome.Minutes,
			ActualMinutes:    int(actual),
			Source:           outcome.Source,
			Crowd:            trip.Crowd,
			Traffic:          trip.Traffic,
			UserExperience:   trip.UserExperience,
			ArrivalCurrent:   FormatClock(tCurr),
			ArrivalNext:      FormatClock(tNext),
		})

		prevTime = actual
	}

	return result, true
}
