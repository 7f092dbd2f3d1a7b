// Command compare scores a trained model against several city datasets and
// prints MAE, R² and the best-fit line for each.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"bustime.org/internal/appconf"
	"bustime.org/internal/artifact"
	"bustime.org/internal/dataset"
	"bustime.org/internal/evaluation"
	"bustime.org/internal/logging"
)

type options struct {
	model    string
	cities   []appconf.CitySource
	logLevel string
}

func parseFlags(args []string, output io.Writer) (options, error) {
	var (
		o       options
		cities  string
		dataDir string
	)
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	fs.SetOutput(output)
	fs.StringVar(&o.model, "model", "saved_model.zst", "Model artifact to evaluate")
	fs.StringVar(&cities, "cities", "singapore=bus_dataset_singapore.csv,mumbai=bus_dataset_mumbai.csv", "Comma separated city=file pairs")
	fs.StringVar(&dataDir, "data-dir", ".", "Directory holding the city datasets")
	fs.StringVar(&o.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	var err error
	if o.cities, err = appconf.ParseCities(cities, dataDir); err != nil {
		return options{}, err
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

	logger := logging.NewStructuredLogger(os.Stderr, logging.ParseLevel(o.logLevel))
	if err := run(o, os.Stdout, logger); err != nil {
		logging.LogError(logger, "comparison failed", err, slog.String("component", "compare"))
		os.Exit(1)
	}
}

func run(o options, out io.Writer, logger *slog.Logger) error {
	bundle, err := artifact.Load(o.model, logger)
	if err != nil {
		return err
	}
	encoders, err := bundle.EncoderSet()
	if err != nil {
		return err
	}

	tables := make([]*dataset.Table, 0, len(o.cities))
	for _, c := range o.cities {
		t, err := dataset.LoadCSV(c.City, c.Path, logger)
		if err != nil {
			return err
		}
		tables = append(tables, t)
	}

	reports, err := evaluation.NewComparator(bundle.Estimator(), encoders, logger).Compare(tables...)
	if err != nil {
		return err
	}
	return writeSummary(out, bundle.Label(), reports)
}

func writeSummary(out io.Writer, version string, reports []*evaluation.CityReport) error {
	if _, err := fmt.Fprintf(out, "model %s\n\n", version); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CITY\tTARGET\tROWS\tMAE\tR2\tBEST FIT")
	for _, r := range reports {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.2f\ty = %.2fx + %.2f\n",
			r.City, r.Target, r.Rows, r.MAE, r.R2, r.Fit.Slope, r.Fit.Intercept)
	}
	return tw.Flush()
}
