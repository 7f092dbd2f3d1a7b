package prediction

import "errors"

// Request rejections. Callers match them with errors.Is; the wrapped message
// carries the human-readable detail.
var (
	ErrUnsupportedCity  = errors.New("unsupported city")
	ErrDataUnavailable  = errors.New("no data for city")
	ErrBusNotFound      = errors.New("bus not found")
	ErrInvalidStopRange = errors.New("invalid stop range")
	ErrNoStopColumns    = errors.New("no stop columns found in dataset")
)

// Reason returns a stable machine-readable code for a rejection, or "" if err
// is not one.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedCity):
		return "unsupported_city"
	case errors.Is(err, ErrDataUnavailable):
		return "data_unavailable"
	case errors.Is(err, ErrBusNotFound):
		return "bus_not_found"
	case errors.Is(err, ErrInvalidStopRange):
		return "invalid_stop_range"
	case errors.Is(err, ErrNoStopColumns):
		return "no_stop_columns"
	default:
		return ""
	}
}
