package restapi

import (
	"net/http"

	"bustime.org/internal/models"
)

func (api *RestAPI) rootHandler(w http.ResponseWriter, r *http.Request) {
	api.sendResponse(w, r, models.NewOKResponse(models.MessageData{
		Message: "Bus Transit Prediction API is running",
	}))
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	data := models.HealthData{
		Status:       "OK",
		ModelLoaded:  api.Policy != nil && api.Policy.ModelAvailable(),
		ModelVersion: api.Estimator.Version(),
		Cities:       []string{},
	}
	if api.Catalog != nil {
		data.Cities = api.Catalog.Cities()
	}
	api.sendResponse(w, r, models.NewOKResponse(data))
}
