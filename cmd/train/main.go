// Command train fits the travel-time model on a historical dataset and writes
// the artifact the API server loads at startup.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"bustime.org/internal/artifact"
	"bustime.org/internal/dataset"
	"bustime.org/internal/estimator"
	"bustime.org/internal/evaluation"
	"bustime.org/internal/logging"
)

type options struct {
	data     string
	city     string
	out      string
	gtfs     string
	gtfsOut  string
	gtfsCity string
	logLevel string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&o.data, "data", "bus_dataset.csv", "Training dataset (CSV); empty to only convert -gtfs")
	fs.StringVar(&o.city, "city", "training", "Name recorded for the training dataset in logs")
	fs.StringVar(&o.out, "out", "saved_model.zst", "Where to write the model artifact")
	fs.StringVar(&o.gtfs, "gtfs", "", "Optional static GTFS zip to convert into a serving dataset")
	fs.StringVar(&o.gtfsOut, "gtfs-out", "", "CSV written from -gtfs")
	fs.StringVar(&o.gtfsCity, "gtfs-city", "gtfs", "City name for the converted GTFS dataset")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if o.gtfs != "" && o.gtfsOut == "" {
		return options{}, errors.New("-gtfs requires -gtfs-out")
	}
	if o.gtfs == "" && o.data == "" {
		return options{}, errors.New("nothing to do: set -data or -gtfs")
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(o.logLevel))
	if err := run(o, logger, time.Now); err != nil {
		logging.LogError(logger, "training failed", err, slog.String("component", "train"))
		os.Exit(1)
	}
}

func run(o options, logger *slog.Logger, now func() time.Time) error {
	if o.gtfs != "" {
		if err := importGTFS(o, logger); err != nil {
			return err
		}
	}
	if o.data == "" {
		return nil
	}

	t, err := dataset.LoadCSV(o.city, o.data, logger)
	if err != nil {
		return err
	}
	bundle, err := train(t, now())
	if err != nil {
		return err
	}
	if err := artifact.Save(o.out, bundle, logger); err != nil {
		return fmt.Errorf("saving artifact: %w", err)
	}

	logging.LogOperation(logger, "model_trained",
		slog.String("data", o.data),
		slog.String("out", o.out),
		slog.String("target", bundle.Target),
		slog.Int("samples", bundle.Model.Samples),
		slog.Int("groups", len(bundle.Model.Groups)),
		slog.String("version", bundle.Label()),
		slog.String("component", "train"))
	return nil
}

// train fits the encoders and the regressor on every row of t.
func train(t *dataset.Table, trainedAt time.Time) (*artifact.Bundle, error) {
	if t.Empty() {
		return nil, fmt.Errorf("dataset %s is empty", t.City)
	}
	target, err := evaluation.TargetColumn(t)
	if err != nil {
		return nil, err
	}
	encoders, err := evaluation.FitEncoders(t)
	if err != nil {
		return nil, err
	}
	samples, err := evaluation.Samples(t, encoders, target)
	if err != nil {
		return nil, err
	}
	model, err := estimator.Fit(samples)
	if err != nil {
		return nil, err
	}
	return artifact.NewBundle(model, encoders, target, trainedAt), nil
}

func importGTFS(o options, logger *slog.Logger) (err error) {
	static, err := dataset.LoadGTFS(o.gtfs)
	if err != nil {
		return err
	}
	t := dataset.FromGTFS(o.gtfsCity, static)

	f, err := os.Create(o.gtfsOut)
	if err != nil {
		return err
	}
	defer logging.HandleDeferredError(&err, f.Close, logger, "close converted dataset")

	if err := dataset.WriteCSV(f, t); err != nil {
		return err
	}
	logging.LogOperation(logger, "gtfs_imported",
		slog.String("feed", o.gtfs),
		slog.String("out", o.gtfsOut),
		slog.Int("rows", t.Len()),
		slog.Int("buses", len(t.BusIDs())),
		slog.Int("stop_columns", len(t.StopColumns())),
		slog.String("component", "train"))
	return nil
}
