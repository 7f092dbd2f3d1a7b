package restapi

import (
	"net/http"
	"time"

	"bustime.org/internal/models"
	"bustime.org/internal/prediction"
	"bustime.org/internal/utils"
)

// busHandler serves /bus/:city/:bus. The only valid value of :bus at this
// depth is "list".
func (api *RestAPI) busHandler(w http.ResponseWriter, r *http.Request) {
	if utils.PathParam(r, "bus") != "list" {
		api.sendNotFound(w, r)
		return
	}
	api.listBusesHandler(w, r)
}

func (api *RestAPI) listBusesHandler(w http.ResponseWriter, r *http.Request) {
	city := utils.PathParam(r, "city")
	if err := utils.ValidateCity(city); err != nil {
		api.validationErrorResponse(w, r, map[string][]string{"city": {err.Error()}})
		return
	}

	buses, err := api.Selector.ListBuses(city)
	if err != nil {
		api.rejectionResponse(w, r, err)
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(models.NewBusListData(city, buses)))
}

func (api *RestAPI) tripRangeHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	fieldErrors := make(map[string][]string)

	city := utils.PathParam(r, "city")
	if err := utils.ValidateCity(city); err != nil {
		fieldErrors["city"] = append(fieldErrors["city"], err.Error())
	}

	var busID, startStop, endStop int
	query := r.URL.Query()
	busID, fieldErrors = utils.PathParamInt(r, "bus", fieldErrors)
	startStop, fieldErrors = utils.ParseIntParam(query, "start_stop", fieldErrors)
	endStop, fieldErrors = utils.ParseIntParam(query, "end_stop", fieldErrors)
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	result, err := api.Selector.PredictTripRange(r.Context(), prediction.Request{
		City:        city,
		BusID:       busID,
		StartStop:   startStop,
		EndStop:     endStop,
		CurrentTime: query.Get("current_time"),
	})
	if api.Metrics != nil {
		api.Metrics.ObserveTripRange(time.Since(start))
	}
	if err != nil {
		api.rejectionResponse(w, r, err)
		return
	}

	if result.NoData {
		api.sendResponse(w, r, models.NewResponse(http.StatusOK, models.NewNoTripData(result), result.Message))
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(models.NewTripRangeData(result, api.Estimator.Version())))
}
