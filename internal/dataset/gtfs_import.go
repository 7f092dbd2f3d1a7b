package dataset

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jamespfennell/gtfs"
)

// LoadGTFS parses a static GTFS zip from disk.
func LoadGTFS(path string) (*gtfs.Static, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading local GTFS file: %w", err)
	}
	static, err := gtfs.ParseStatic(b, gtfs.ParseStaticOptions{})
	if err != nil {
		return nil, fmt.Errorf("error parsing GTFS data: %w", err)
	}
	return static, nil
}

type gtfsRow struct {
	bus   int
	first time.Duration
	times []string
}

// FromGTFS flattens a static feed into the wide per-stop layout: one row per
// scheduled trip, the bus identifier taken from the numeric route short name
// (or route id), stop N being the N-th stop time of the trip by sequence.
// Feeds carry no ride conditions, so the default labels are used. Trips on
// routes without a numeric identifier are skipped.
func FromGTFS(city string, static *gtfs.Static) *Table {
	var rows []gtfsRow
	maxStops := 0

	for _, trip := range static.Trips {
		if trip.Route == nil {
			continue
		}
		bus, ok := ParseBusID(trip.Route.ShortName)
		if !ok {
			bus, ok = ParseBusID(trip.Route.Id)
		}
		if !ok || len(trip.StopTimes) == 0 {
			continue
		}

		stopTimes := make([]gtfs.ScheduledStopTime, len(trip.StopTimes))
		copy(stopTimes, trip.StopTimes)
		sort.SliceStable(stopTimes, func(i, j int) bool {
			return stopTimes[i].StopSequence < stopTimes[j].StopSequence
		})

		row := gtfsRow{bus: bus, times: make([]string, len(stopTimes))}
		for i, st := range stopTimes {
			at := st.ArrivalTime
			if at == 0 {
				at = st.DepartureTime
			}
			if at == 0 && i > 0 {
				// non-timepoint stop, left blank like a sparse schedule cell
				continue
			}
			row.times[i] = formatGTFSClock(at)
		}
		row.first = stopTimes[0].ArrivalTime
		if len(stopTimes) > maxStops {
			maxStops = len(stopTimes)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].bus != rows[j].bus {
			return rows[i].bus < rows[j].bus
		}
		return rows[i].first < rows[j].first
	})

	columns := []string{ColumnBus, ColumnCrowd, ColumnTraffic, ColumnUserExperience}
	for n := 1; n <= maxStops; n++ {
		columns = append(columns, fmt.Sprintf("stop%d_time", n))
	}

	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := make([]string, len(columns))
		rec[0] = fmt.Sprintf("%d", r.bus)
		rec[1] = DefaultCrowd
		rec[2] = DefaultTraffic
		rec[3] = DefaultUserExperience
		copy(rec[4:], r.times)
		out = append(out, rec)
	}

	return NewTable(city, columns, out)
}

// formatGTFSClock renders a GTFS stop-time offset as a 24-hour HH:MM clock.
// Times past midnight wrap.
func formatGTFSClock(d time.Duration) string {
	mins := int(d / time.Minute)
	h := (mins / 60) % 24
	m := mins % 60
	return fmt.Sprintf("%02d:%02d", h, m)
}
