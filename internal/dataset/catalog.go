package dataset

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bluele/gcache"

	"bustime.org/internal/logging"
)

// DefaultSchemaCacheSize bounds the number of cached per-bus schemas.
const DefaultSchemaCacheSize = 1024

// Source names the CSV file backing one supported city.
type Source struct {
	City string
	Path string
}

// BusSchema is the discovered layout of one bus within a city table: its
// ordered stop columns and the rows that belong to it.
type BusSchema struct {
	City        string
	BusID       int
	StopColumns []StopColumn
	Rows        []int
}

type schemaKey struct {
	city string
	bus  int
}

// Catalog is the read-only set of city tables. The schema cache is the only
// mutable part and gcache synchronizes it internally.
type Catalog struct {
	tables  map[string]*Table
	cities  []string
	schemas gcache.Cache
}

// NewCatalog indexes tables by lower-cased city name. Order of tables is kept
// as the order of Cities().
func NewCatalog(tables []*Table, cacheSize int) *Catalog {
	if cacheSize <= 0 {
		cacheSize = DefaultSchemaCacheSize
	}
	c := &Catalog{tables: make(map[string]*Table, len(tables))}
	for _, t := range tables {
		key := normalizeCity(t.City)
		if _, dup := c.tables[key]; dup {
			continue
		}
		c.tables[key] = t
		c.cities = append(c.cities, key)
	}
	c.schemas = gcache.New(cacheSize).
		LRU().
		LoaderFunc(func(k interface{}) (interface{}, error) {
			return c.discoverSchema(k.(schemaKey))
		}).
		Build()
	return c
}

// LoadCatalog reads every source. A file that cannot be read leaves an empty
// table for its city so the service still starts; requests for that city
// then report the data as unavailable.
func LoadCatalog(sources []Source, cacheSize int, logger *slog.Logger) *Catalog {
	tables := make([]*Table, 0, len(sources))
	for _, src := range sources {
		start := time.Now()
		t, err := LoadCSV(src.City, src.Path, logger)
		if err != nil {
			logging.LogError(logger, "failed to load dataset", err,
				slog.String("city", src.City),
				slog.String("path", src.Path),
				slog.String("component", "dataset"))
			tables = append(tables, NewTable(src.City, nil, nil))
			continue
		}
		logging.LogOperation(logger, "dataset_loaded",
			slog.String("city", src.City),
			slog.Int("rows", t.Len()),
			slog.Int("buses", len(t.BusIDs())),
			slog.Int("stop_columns", len(t.StopColumns())),
			slog.Duration("duration", time.Since(start)),
			slog.String("component", "dataset"))
		tables = append(tables, t)
	}
	return NewCatalog(tables, cacheSize)
}

func normalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Cities lists the supported cities in configuration order.
func (c *Catalog) Cities() []string {
	out := make([]string, len(c.cities))
	copy(out, c.cities)
	return out
}

// Table looks up a city case-insensitively.
func (c *Catalog) Table(city string) (*Table, bool) {
	t, ok := c.tables[normalizeCity(city)]
	return t, ok
}

// BusSchema returns the cached layout for bus in city, discovering it on
// first use.
func (c *Catalog) BusSchema(city string, bus int) (*BusSchema, error) {
	v, err := c.schemas.Get(schemaKey{city: normalizeCity(city), bus: bus})
	if err != nil {
		return nil, err
	}
	return v.(*BusSchema), nil
}

func (c *Catalog) discoverSchema(k schemaKey) (*BusSchema, error) {
	t, ok := c.tables[k.city]
	if !ok {
		return nil, fmt.Errorf("no dataset for city %q", k.city)
	}
	return &BusSchema{
		City:        t.City,
		BusID:       k.bus,
		StopColumns: t.StopColumns(),
		Rows:        t.RowsForBus(k.bus),
	}, nil
}
