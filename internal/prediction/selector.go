package prediction

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bustime.org/internal/dataset"
	"bustime.org/internal/logging"
)

// Request asks for predictions between two stops of one bus.
type Request struct {
	City      string
	BusID     int
	StartStop int
	EndStop   int
	// CurrentTime is an optional HH:MM override of the reference clock.
	CurrentTime string
}

// RangePrediction summarizes the primary service over the requested range.
// The condition labels are those of its first segment.
type RangePrediction struct {
	FromStop       string
	ToStop         string
	ArrivalAtStart string
	ArrivalAtEnd   string
	TotalStops     int
	Crowd          string
	Traffic        string
	UserExperience string
}

// Result is the answer to a Request. When NoData is set only Message and the
// request echo fields are meaningful.
type Result struct {
	City        string
	BusID       int
	StartStop   int
	EndStop     int
	CurrentTime time.Time

	NoData  bool
	Message string

	Range    *RangePrediction
	Next     *ServiceResult
	Upcoming []ServiceResult
}

// Selector validates requests against the catalog and runs the segmenter over
// every trip of the requested bus.
type Selector struct {
	catalog  *dataset.Catalog
	policy   *Policy
	now      func() time.Time
	location *time.Location
	logger   *slog.Logger
}

// SelectorOption customizes a Selector.
type SelectorOption func(*Selector)

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) SelectorOption {
	return func(s *Selector) { s.now = now }
}

// WithLocation sets the zone the reference time is expressed in.
func WithLocation(loc *time.Location) SelectorOption {
	return func(s *Selector) { s.location = loc }
}

func WithSelectorLogger(l *slog.Logger) SelectorOption {
	return func(s *Selector) { s.logger = l }
}

func NewSelector(catalog *dataset.Catalog, policy *Policy, opts ...SelectorOption) *Selector {
	s := &Selector{
		catalog:  catalog,
		policy:   policy,
		now:      time.Now,
		location: time.Local,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy exposes the prediction policy the selector uses.
func (s *Selector) Policy() *Policy { return s.policy }

func (s *Selector) table(city string) (*dataset.Table, error) {
	t, ok := s.catalog.Table(city)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCity, city)
	}
	if t.Empty() || !t.HasColumn(dataset.ColumnBus) {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, city)
	}
	return t, nil
}

// ListBuses returns the bus identifiers of a city, ascending.
func (s *Selector) ListBuses(city string) ([]int, error) {
	t, err := s.table(city)
	if err != nil {
		return nil, err
	}
	return t.BusIDs(), nil
}

// PredictTripRange validates req and predicts every trip of the bus over the
// requested range. Trips stay in dataset row order; the first one with at
// least one segment is the next service.
func (s *Selector) PredictTripRange(ctx context.Context, req Request) (*Result, error) {
	t, err := s.table(req.City)
	if err != nil {
		return nil, err
	}

	schema, err := s.catalog.BusSchema(req.City, req.BusID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, req.City)
	}
	if len(schema.Rows) == 0 {
		return nil, fmt.Errorf("%w: bus %d not found in %s", ErrBusNotFound, req.BusID, req.City)
	}

	if req.StartStop < 1 {
		return nil, fmt.Errorf("%w: start_stop must be at least 1", ErrInvalidStopRange)
	}
	if req.StartStop >= req.EndStop {
		return nil, fmt.Errorf("%w: start_stop must be less than end_stop", ErrInvalidStopRange)
	}
	if len(schema.StopColumns) == 0 {
		return nil, ErrNoStopColumns
	}
	maxStops := len(schema.StopColumns)
	if req.EndStop > maxStops {
		return nil, fmt.Errorf("%w: bus has %d stops (stop1 to stop%d)", ErrInvalidStopRange, maxStops, maxStops)
	}

	result := &Result{
		City:        req.City,
		BusID:       req.BusID,
		StartStop:   req.StartStop,
		EndStop:     req.EndStop,
		CurrentTime: referenceTime(s.now(), req.CurrentTime, s.location),
	}

	var services []ServiceResult
	for _, row := range schema.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		trip := t.Trip(req.BusID, row, schema.StopColumns)
		service, ok := SegmentTrip(s.policy, trip, req.StartStop, req.EndStop, s.logger)
		if !ok || len(service.Predictions) == 0 {
			continue
		}
		services = append(services, service)
	}

	if len(services) == 0 {
		result.NoData = true
		result.Message = fmt.Sprintf("No valid trip data found for bus %d between stop %d and stop %d",
			req.BusID, req.StartStop, req.EndStop)
		return result, nil
	}

	result.Next = &services[0]
	result.Upcoming = services[1:]
	result.Range = summarize(req, result.Next)
	return result, nil
}

func summarize(req Request, primary *ServiceResult) *RangePrediction {
	first := primary.Predictions[0]
	last := primary.Predictions[len(primary.Predictions)-1]
	return &RangePrediction{
		FromStop:       StopLabel(req.StartStop),
		ToStop:         StopLabel(req.EndStop),
		ArrivalAtStart: first.ArrivalCurrent,
		ArrivalAtEnd:   last.ArrivalNext,
		TotalStops:     len(primary.Predictions),
		Crowd:          first.Crowd,
		Traffic:        first.Traffic,
		UserExperience: first.UserExperience,
	}
}
