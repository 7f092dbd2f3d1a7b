// Package appconf holds the service configuration. Values come from
// command-line flags whose defaults are read from the environment, after any
// .env file in the working directory has been loaded.
package appconf

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"bustime.org/internal/logging"
)

type Environment int

const (
	Development Environment = iota
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Test:
		return "test"
	case Production:
		return "production"
	default:
		return "development"
	}
}

// EnvFlagToEnvironment maps an -env flag value to an Environment. Anything
// unrecognised is treated as development.
func EnvFlagToEnvironment(env string) Environment {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "test":
		return Test
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// CitySource names the dataset file of one supported city.
type CitySource struct {
	City string
	Path string
}

type Config struct {
	Port            int
	Env             Environment
	ApiKeys         []string
	RateLimit       int
	ModelPath       string
	DataDir         string
	Cities          []CitySource
	Location        *time.Location
	LogLevel        slog.Level
	SchemaCacheSize int
}

const (
	defaultPort      = 8000
	defaultRateLimit = 100
	defaultModelPath = "saved_model.zst"
	defaultCities    = "singapore=bus_dataset_singapore.csv,mumbai=bus_dataset_mumbai.csv"
)

// Load reads configuration for the API server from args, falling back to
// environment variables and then to built-in defaults.
func Load(args []string, output io.Writer) (Config, error) {
	_ = godotenv.Load()

	var (
		cfg      Config
		env      string
		apiKeys  string
		cities   string
		tz       string
		logLevel string
	)

	fs := flag.NewFlagSet("bustime", flag.ContinueOnError)
	if output != nil {
		fs.SetOutput(output)
	}
	fs.IntVar(&cfg.Port, "port", getenvInt("PORT", defaultPort), "API server port")
	fs.StringVar(&env, "env", getenvDefault("APP_ENV", "development"), "Environment (development|test|production)")
	fs.StringVar(&apiKeys, "api-keys", os.Getenv("API_KEYS"), "Comma separated API keys; empty disables the key check")
	fs.IntVar(&cfg.RateLimit, "rate-limit", getenvInt("RATE_LIMIT", defaultRateLimit), "Requests per second allowed per API key")
	fs.StringVar(&cfg.ModelPath, "model", getenvDefault("MODEL_PATH", defaultModelPath), "Path to the trained model artifact")
	fs.StringVar(&cfg.DataDir, "data-dir", getenvDefault("DATA_DIR", "."), "Directory holding the city datasets")
	fs.StringVar(&cities, "cities", getenvDefault("CITIES", defaultCities), "Comma separated city=file pairs")
	fs.StringVar(&tz, "tz", getenvDefault("TZ", "Local"), "Time zone for the reference clock")
	fs.StringVar(&logLevel, "log-level", getenvDefault("LOG_LEVEL", "info"), "Log level (debug|info|warn|error)")
	fs.IntVar(&cfg.SchemaCacheSize, "schema-cache-size", getenvInt("SCHEMA_CACHE_SIZE", 1024), "Number of per-bus schemas kept in memory")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.Env = EnvFlagToEnvironment(env)
	cfg.ApiKeys = SplitList(apiKeys)
	cfg.LogLevel = logging.ParseLevel(logLevel)

	var err error
	if cfg.Cities, err = ParseCities(cities, cfg.DataDir); err != nil {
		return Config{}, err
	}
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return Config{}, fmt.Errorf("invalid time zone %q: %w", tz, err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	return cfg, nil
}

// KeyCheckEnabled reports whether requests must carry a valid API key.
func (c Config) KeyCheckEnabled() bool { return len(c.ApiKeys) > 0 }

// ParseCities parses "city=file,city=file". Relative files are resolved
// against dataDir. City names are lower-cased.
func ParseCities(list, dataDir string) ([]CitySource, error) {
	var out []CitySource
	seen := make(map[string]bool)
	for _, pair := range SplitList(list) {
		name, file, ok := strings.Cut(pair, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		file = strings.TrimSpace(file)
		if !ok || name == "" || file == "" {
			return nil, fmt.Errorf("invalid city entry %q, want city=file", pair)
		}
		if seen[name] {
			return nil, fmt.Errorf("city %q configured twice", name)
		}
		seen[name] = true
		if !filepath.IsAbs(file) && dataDir != "" {
			file = filepath.Join(dataDir, file)
		}
		out = append(out, CitySource{City: name, Path: file})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no cities configured")
	}
	return out, nil
}

// SplitList splits a comma separated list, trimming blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
