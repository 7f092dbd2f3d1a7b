package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bustime.org/internal/prediction"
)

func sampleResult() *prediction.Result {
	service := func(row int, start, end string) prediction.ServiceResult {
		return prediction.ServiceResult{
			BusID:     12,
			Row:       row,
			TripStart: start,
			TripEnd:   end,
			Predictions: []prediction.SegmentPrediction{{
				CurrentStop:      "Stop 1",
				NextStop:         "Stop 2",
				PredictedMinutes: 8,
				ActualMinutes:    7,
				Source:           prediction.SourceFallbackNoModel,
				Crowd:            "High",
				Traffic:          "Low",
				UserExperience:   "Good",
				ArrivalCurrent:   start,
				ArrivalNext:      end,
			}},
		}
	}
	next := service(0, "08:00 AM", "08:07 AM")
	return &prediction.Result{
		City:        "singapore",
		BusID:       12,
		StartStop:   1,
		EndStop:     2,
		CurrentTime: time.Date(2024, 3, 5, 18, 30, 0, 0, time.UTC),
		Range: &prediction.RangePrediction{
			FromStop:       "Stop 1",
			ToStop:         "Stop 2",
			ArrivalAtStart: "08:00 AM",
			ArrivalAtEnd:   "08:07 AM",
			TotalStops:     1,
			Crowd:          "High",
			Traffic:        "Low",
			UserExperience: "Good",
		},
		Next:     &next,
		Upcoming: []prediction.ServiceResult{service(3, "11:00 AM", "11:10 AM")},
	}
}

func TestNewTripRangeData(t *testing.T) {
	data := NewTripRangeData(sampleResult(), "fallback")

	assert.Equal(t, 12, data.Bus)
	assert.Equal(t, "06:30 PM, 05-03-2024", data.CurrentTime)
	assert.Equal(t, "fallback", data.ModelVersion)
	assert.Equal(t, 12, data.NextService.ServiceNumber)
	assert.Equal(t, "08:00 AM", data.NextService.TripStartTime)
	require.Len(t, data.NextService.Predictions, 1)

	seg := data.NextService.Predictions[0]
	assert.Equal(t, "8 minutes", seg.PredictedTime)
	assert.Equal(t, "7 minutes", seg.ActualTime)
	assert.Equal(t, 8, seg.PredictedMinutes)
	assert.Equal(t, "fallback_no_model", seg.Source)
	require.Len(t, data.UpcomingServices, 1)
	assert.Equal(t, "11:10 AM", data.UpcomingServices[0].TripEndTime)
	assert.Equal(t, 1, data.RangePrediction.TotalStops)
}

func TestTripRangeDataJSON(t *testing.T) {
	r := sampleResult()
	r.Upcoming = nil
	b, err := json.Marshal(NewTripRangeData(r, "v1"))
	require.NoError(t, err)

	out := string(b)
	assert.Contains(t, out, `"upcoming_services":[]`)
	assert.Contains(t, out, `"arrival_time_current_stop":"08:00 AM"`)
	assert.Contains(t, out, `"range_prediction":{"from_stop":"Stop 1"`)
}

func TestNewNoTripData(t *testing.T) {
	r := &prediction.Result{City: "singapore", BusID: 5, StartStop: 1, EndStop: 2, NoData: true, Message: "No valid trip data found for bus 5 between stop 1 and stop 2"}
	data := NewNoTripData(r)
	assert.Equal(t, NoTripData{Message: r.Message, Bus: 5, City: "singapore", StartStop: 1, EndStop: 2}, data)
}
