package models

import (
	"fmt"

	"bustime.org/internal/prediction"
)

type SegmentPredictionModel struct {
	CurrentStop            string `json:"current_stop"`
	NextStop               string `json:"next_stop"`
	PredictedTime          string `json:"predicted_time"`
	ActualTime             string `json:"actual_time"`
	PredictedMinutes       int    `json:"predicted_minutes"`
	ActualMinutes          int    `json:"actual_minutes"`
	Source                 string `json:"source"`
	Crowd                  string `json:"crowd"`
	Traffic                string `json:"traffic"`
	UserExperience         string `json:"user_experience"`
	ArrivalTimeCurrentStop string `json:"arrival_time_current_stop"`
	ArrivalTimeNextStop    string `json:"arrival_time_next_stop"`
}

type ServiceModel struct {
	ServiceNumber int                      `json:"service_number"`
	TripStartTime string                   `json:"trip_start_time"`
	TripEndTime   string                   `json:"trip_end_time"`
	Predictions   []SegmentPredictionModel `json:"predictions"`
}

type RangePredictionModel struct {
	FromStop       string `json:"from_stop"`
	ToStop         string `json:"to_stop"`
	ArrivalAtStart string `json:"arrival_at_start"`
	ArrivalAtEnd   string `json:"arrival_at_end"`
	TotalStops     int    `json:"total_stops"`
	Crowd          string `json:"crowd"`
	Traffic        string `json:"traffic"`
	UserExperience string `json:"user_experience"`
}

// TripRangeData is the payload of a successful trip range request.
type TripRangeData struct {
	Bus              int                  `json:"bus"`
	City             string               `json:"city"`
	CurrentTime      string               `json:"current_time"`
	ModelVersion     string               `json:"model_version"`
	RangePrediction  RangePredictionModel `json:"range_prediction"`
	NextService      ServiceModel         `json:"next_service"`
	UpcomingServices []ServiceModel       `json:"upcoming_services"`
}

// NoTripData is returned instead of TripRangeData when no trip of the bus
// yielded a prediction over the requested range.
type NoTripData struct {
	Message   string `json:"message"`
	Bus       int    `json:"bus"`
	City      string `json:"city"`
	StartStop int    `json:"start_stop"`
	EndStop   int    `json:"end_stop"`
}

// FormatMinutes renders a duration the way riders read it, e.g. "7 minutes".
func FormatMinutes(m int) string {
	return fmt.Sprintf("%d minutes", m)
}

func NewServiceModel(s prediction.ServiceResult) ServiceModel {
	preds := make([]SegmentPredictionModel, 0, len(s.Predictions))
	for _, p := range s.Predictions {
		preds = append(preds, SegmentPredictionModel{
			CurrentStop:            p.CurrentStop,
			NextStop:               p.NextStop,
			PredictedTime:          FormatMinutes(p.PredictedMinutes),
			ActualTime:             FormatMinutes(p.ActualMinutes),
			PredictedMinutes:       p.PredictedMinutes,
			ActualMinutes:          p.ActualMinutes,
			Source:                 p.Source.String(),
			Crowd:                  p.Crowd,
			Traffic:                p.Traffic,
			UserExperience:         p.UserExperience,
			ArrivalTimeCurrentStop: p.ArrivalCurrent,
			ArrivalTimeNextStop:    p.ArrivalNext,
		})
	}
	return ServiceModel{
		ServiceNumber: s.BusID,
		TripStartTime: s.TripStart,
		TripEndTime:   s.TripEnd,
		Predictions:   preds,
	}
}

// NewTripRangeData renders a selector result that has data.
func NewTripRangeData(r *prediction.Result, modelVersion string) TripRangeData {
	upcoming := make([]ServiceModel, 0, len(r.Upcoming))
	for _, s := range r.Upcoming {
		upcoming = append(upcoming, NewServiceModel(s))
	}

	data := TripRangeData{
		Bus:              r.BusID,
		City:             r.City,
		CurrentTime:      prediction.FormatCurrentTime(r.CurrentTime),
		ModelVersion:     modelVersion,
		UpcomingServices: upcoming,
	}
	if r.Next != nil {
		data.NextService = NewServiceModel(*r.Next)
	}
	if r.Range != nil {
		data.RangePrediction = RangePredictionModel{
			FromStop:       r.Range.FromStop,
			ToStop:         r.Range.ToStop,
			ArrivalAtStart: r.Range.ArrivalAtStart,
			ArrivalAtEnd:   r.Range.ArrivalAtEnd,
			TotalStops:     r.Range.TotalStops,
			Crowd:          r.Range.Crowd,
			Traffic:        r.Range.Traffic,
			UserExperience: r.Range.UserExperience,
		}
	}
	return data
}

func NewNoTripData(r *prediction.Result) NoTripData {
	return NoTripData{
		Message:   r.Message,
		Bus:       r.BusID,
		City:      r.City,
		StartStop: r.StartStop,
		EndStop:   r.EndStop,
	}
}
