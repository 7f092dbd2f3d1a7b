package webui

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"bustime.org/internal/app"
)

//go:embed debug_index.html
var templateFS embed.FS

var debugTemplate = template.Must(template.ParseFS(templateFS, "debug_index.html"))

// WebUI serves developer pages that dump the loaded state.
type WebUI struct {
	*app.Application
}

type debugData struct {
	Title string
	Pre   string
}

type citySummary struct {
	City        string
	Rows        int
	Buses       []int
	StopColumns []string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := debugTemplate.Execute(w, debugData{
		Title: title,
		Pre:   spew.Sdump(data),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	var data interface{}
	var title string

	switch r.URL.Query().Get("dataType") {
	case "model":
		title = "Estimator - " + webUI.Estimator.Version()
		data = webUI.Estimator
	case "encoders":
		title = "Categorical encoders"
		if webUI.Encoders == nil {
			data = map[string]string{"error": "no encoders loaded"}
			break
		}
		data = map[string][]string{
			"crowd":           webUI.Encoders.Crowd.Classes(),
			"traffic":         webUI.Encoders.Traffic.Classes(),
			"user_experience": webUI.Encoders.UserExperience.Classes(),
		}
	case "cities":
		title = "City datasets"
		data = webUI.citySummaries()
	default:
		title = "Choose a data type"
		data = map[string]string{
			"error": "Please use one of the following: model, encoders, cities.",
		}
	}

	writeDebugData(w, title, data)
}

func (webUI *WebUI) citySummaries() []citySummary {
	if webUI.Catalog == nil {
		return nil
	}
	var out []citySummary
	for _, city := range webUI.Catalog.Cities() {
		t, _ := webUI.Catalog.Table(city)
		s := citySummary{City: city, Rows: t.Len(), Buses: t.BusIDs()}
		for _, sc := range t.StopColumns() {
			s.StopColumns = append(s.StopColumns, sc.Name)
		}
		out = append(out, s)
	}
	return out
}
