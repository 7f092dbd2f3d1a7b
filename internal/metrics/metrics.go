package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Predictions        *prometheus.CounterVec // source label: model|fallback_*
	PredictionFailures *prometheus.CounterVec // kind label: the fallback source
	RequestsRejected   *prometheus.CounterVec // reason label: prediction.Reason values

	TripRangeDuration prometheus.Histogram

	ModelLoaded prometheus.Gauge
	DatasetRows *prometheus.GaugeVec // city label
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bustime_predictions_total",
			Help: "Segment predictions served, by source.",
		}, []string{"source"}),
		PredictionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bustime_prediction_failures_total",
			Help: "Segment predictions that fell back to the jittered actual time.",
		}, []string{"kind"}),
		RequestsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bustime_requests_rejected_total",
			Help: "Trip range requests rejected before prediction.",
		}, []string{"reason"}),
		TripRangeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bustime_trip_range_duration_seconds",
			Help:    "Time spent answering a trip range request.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		ModelLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "bustime_model_loaded",
			Help: "1 if a trained model is loaded, 0 in fallback-only mode.",
		}),
		DatasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bustime_dataset_rows",
			Help: "Rows loaded per city dataset.",
		}, []string{"city"}),
	}

	reg.MustRegister(
		c.Predictions, c.PredictionFailures, c.RequestsRejected,
		c.TripRangeDuration, c.ModelLoaded, c.DatasetRows,
	)

	return c
}

// RecordPrediction counts one segment prediction. Every source other than
// "model" is also counted as a failure.
func (c *Collector) RecordPrediction(source string) {
	c.Predictions.WithLabelValues(source).Inc()
	if source != "model" {
		c.PredictionFailures.WithLabelValues(source).Inc()
	}
}

func (c *Collector) RecordRejection(reason string) {
	c.RequestsRejected.WithLabelValues(reason).Inc()
}

func (c *Collector) ObserveTripRange(d time.Duration) {
	c.TripRangeDuration.Observe(d.Seconds())
}

func (c *Collector) SetModelLoaded(loaded bool) {
	if loaded {
		c.ModelLoaded.Set(1)
		return
	}
	c.ModelLoaded.Set(0)
}

func (c *Collector) SetDatasetRows(city string, rows int) {
	c.DatasetRows.WithLabelValues(city).Set(float64(rows))
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }
