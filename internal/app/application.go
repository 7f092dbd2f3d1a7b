package app

import (
	"log/slog"
	"time"

	"bustime.org/internal/appconf"
	"bustime.org/internal/artifact"
	"bustime.org/internal/categorical"
	"bustime.org/internal/dataset"
	"bustime.org/internal/estimator"
	"bustime.org/internal/logging"
	"bustime.org/internal/metrics"
	"bustime.org/internal/prediction"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware. It is built once at startup and only read afterwards.
type Application struct {
	Config    appconf.Config
	Logger    *slog.Logger
	Catalog   *dataset.Catalog
	Estimator *estimator.Estimator
	Encoders  *categorical.Set
	Policy    *prediction.Policy
	Selector  *prediction.Selector
	Metrics   *metrics.Collector
}

// New wires the prediction components around an already loaded catalog and
// model. A nil estimator or encoder set leaves the service in fallback-only
// mode.
func New(cfg appconf.Config, logger *slog.Logger, catalog *dataset.Catalog, est *estimator.Estimator, encoders *categorical.Set, opts ...prediction.PolicyOption) *Application {
	if logger == nil {
		logger = logging.Discard()
	}
	collector := metrics.NewCollector()

	policyOpts := append([]prediction.PolicyOption{
		prediction.WithRecorder(collector),
		prediction.WithLogger(logger),
	}, opts...)
	policy := prediction.NewPolicy(est, encoders, policyOpts...)

	selectorOpts := []prediction.SelectorOption{prediction.WithSelectorLogger(logger)}
	if cfg.Location != nil {
		selectorOpts = append(selectorOpts, prediction.WithLocation(cfg.Location))
	}
	selector := prediction.NewSelector(catalog, policy, selectorOpts...)

	collector.SetModelLoaded(policy.ModelAvailable())
	for _, city := range catalog.Cities() {
		t, _ := catalog.Table(city)
		collector.SetDatasetRows(city, t.Len())
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Catalog:   catalog,
		Estimator: est,
		Encoders:  encoders,
		Policy:    policy,
		Selector:  selector,
		Metrics:   collector,
	}
}

// Load reads the datasets and the model artifact named by cfg. A missing or
// unreadable artifact is logged and the service starts without a model.
func Load(cfg appconf.Config, logger *slog.Logger) *Application {
	if logger == nil {
		logger = logging.Discard()
	}

	sources := make([]dataset.Source, 0, len(cfg.Cities))
	for _, c := range cfg.Cities {
		sources = append(sources, dataset.Source{City: c.City, Path: c.Path})
	}
	catalog := dataset.LoadCatalog(sources, cfg.SchemaCacheSize, logger)

	est, encoders := loadModel(cfg.ModelPath, logger)
	return New(cfg, logger, catalog, est, encoders)
}

func loadModel(path string, logger *slog.Logger) (*estimator.Estimator, *categorical.Set) {
	start := time.Now()
	bundle, err := artifact.Load(path, logger)
	if err != nil {
		logging.LogWarning(logger, "model artifact unavailable, serving fallback predictions", err,
			slog.String("path", path),
			slog.String("component", "startup"))
		return nil, nil
	}
	encoders, err := bundle.EncoderSet()
	if err != nil {
		logging.LogWarning(logger, "model artifact has invalid encoders, serving fallback predictions", err,
			slog.String("path", path),
			slog.String("component", "startup"))
		return nil, nil
	}

	est := bundle.Estimator()
	logging.LogOperation(logger, "model_loaded",
		slog.String("path", path),
		slog.String("version", est.Version()),
		slog.String("target", bundle.Target),
		slog.Duration("duration", time.Since(start)),
		slog.String("component", "startup"))
	return est, encoders
}
