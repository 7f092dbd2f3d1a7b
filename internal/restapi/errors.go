package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bustime.org/internal/logging"
	"bustime.org/internal/models"
	"bustime.org/internal/prediction"
)

// errorBody is the envelope of every error response. It carries no data.
type errorBody struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
}

func (api *RestAPI) writeError(w http.ResponseWriter, status int, text string) {
	setJSONResponseType(&w)
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(errorBody{
		Code:        status,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        text,
		Version:     models.ResponseVersion,
	})
	if err != nil {
		logging.LogError(api.Logger, "failed to encode error response", err,
			slog.Int("status", status),
			slog.String("component", "http_server"))
	}
}

// invalidAPIKeyResponse sends a 401 Unauthorized response
func (api *RestAPI) invalidAPIKeyResponse(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, http.StatusUnauthorized, "permission denied")
}

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.Logger, "internal server error", err,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("component", "http_server"))
	api.writeError(w, http.StatusInternalServerError, "internal server error")
}

func (api *RestAPI) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func (api *RestAPI) sendNotFound(w http.ResponseWriter, r *http.Request) {
	api.writeError(w, http.StatusNotFound, "resource not found")
}

// validationErrorResponse sends a 400 Bad Request response with field-specific validation errors
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	api.recordRejection("invalid_parameters")

	response := struct {
		Code        int                 `json:"code"`
		CurrentTime int64               `json:"currentTime"`
		Text        string              `json:"text"`
		Version     int                 `json:"version"`
		FieldErrors map[string][]string `json:"fieldErrors"`
	}{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(),
		Text:        "invalid request parameters",
		Version:     models.ResponseVersion,
		FieldErrors: fieldErrors,
	}

	setJSONResponseType(&w)
	w.WriteHeader(http.StatusBadRequest)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logging.LogError(api.Logger, "failed to encode validation error response", err,
			slog.String("component", "http_server"))
	}
}

// rejectionStatus maps a selector rejection to its HTTP status.
func rejectionStatus(err error) int {
	switch {
	case errors.Is(err, prediction.ErrUnsupportedCity), errors.Is(err, prediction.ErrInvalidStopRange):
		return http.StatusBadRequest
	case errors.Is(err, prediction.ErrDataUnavailable), errors.Is(err, prediction.ErrBusNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// rejectionResponse answers a request the selector refused. Errors that are
// not rejections become a generic 500.
func (api *RestAPI) rejectionResponse(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		api.recordRejection("cancelled")
		api.writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}

	reason := prediction.Reason(err)
	if reason == "" {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.recordRejection(reason)
	status := rejectionStatus(err)
	if status >= http.StatusInternalServerError {
		logging.LogError(api.Logger, "trip range request failed", err,
			slog.String("path", r.URL.Path),
			slog.String("reason", reason),
			slog.String("component", "http_server"))
	}
	api.writeError(w, status, err.Error())
}

func (api *RestAPI) recordRejection(reason string) {
	if api.Metrics != nil {
		api.Metrics.RecordRejection(reason)
	}
}
