package models

// MessageData is the payload of the root endpoint.
type MessageData struct {
	Message string `json:"message"`
}

type HealthData struct {
	Status       string   `json:"status"`
	ModelLoaded  bool     `json:"modelLoaded"`
	ModelVersion string   `json:"modelVersion"`
	Cities       []string `json:"cities"`
}

type BusListData struct {
	City  string `json:"city"`
	Buses []int  `json:"buses"`
}

// NewBusListData never returns a nil bus list so the JSON is always an array.
func NewBusListData(city string, buses []int) BusListData {
	if buses == nil {
		buses = []int{}
	}
	return BusListData{City: city, Buses: buses}
}
