package restapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"bustime.org/internal/logging"
	"bustime.org/internal/models"
)

func (api *RestAPI) sendResponse(w http.ResponseWriter, r *http.Request, response models.ResponseModel) {
	setJSONResponseType(&w)
	if response.Code != 0 && response.Code != http.StatusOK {
		w.WriteHeader(response.Code)
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Headers are already sent.
		logging.LogError(api.Logger, "failed to encode response", err,
			slog.String("path", r.URL.Path),
			slog.String("component", "http_server"))
	}
}

func setJSONResponseType(w *http.ResponseWriter) {
	(*w).Header().Set("Content-Type", "application/json")
}
