package restapi

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func validateAPIKey(api *RestAPI, finalHandler handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.recordRejection("invalid_api_key")
			api.invalidAPIKeyResponse(w, r)
			return
		}
		finalHandler(w, r)
	})
}

// SetRoutes registers the API on router. httprouter cannot hold both a static
// "list" segment and the :bus wildcard at the same position, so
// /bus/:city/list is served by busHandler.
func (api *RestAPI) SetRoutes(router *httprouter.Router) {
	router.Handler(http.MethodGet, "/", http.HandlerFunc(api.rootHandler))
	router.Handler(http.MethodGet, "/health", http.HandlerFunc(api.healthHandler))
	router.Handler(http.MethodGet, "/bus/:city/:bus", validateAPIKey(api, api.busHandler))
	router.Handler(http.MethodGet, "/bus/:city/:bus/predict_trip_range", validateAPIKey(api, api.tripRangeHandler))
	if api.Metrics != nil {
		router.Handler(http.MethodGet, "/metrics", api.Metrics.Handler())
	}
}
