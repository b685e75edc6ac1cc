package climate

import (
	"context"
	"time"
)

// StatsFilter narrows a temperature aggregate. Zero values mean no restriction.
type StatsFilter struct {
	Range     *DateRange
	StationID string
}

// Store is the read-only table store the report builder and query service run against.
// Row-returning methods yield rows ordered by date ascending, then by insertion order.
type Store interface {
	Ping(ctx context.Context) error

	// DateBounds returns the earliest and latest measurement dates.
	// It returns ErrDataUnavailable when there are no measurements.
	DateBounds(ctx context.Context) (first, latest time.Time, err error)

	Precipitation(ctx context.Context, from time.Time) ([]DatedValue, error)
	Temperatures(ctx context.Context, stationID string, from time.Time) ([]DatedValue, error)

	// Activity ranks stations by observation count, descending, ties by station id.
	Activity(ctx context.Context) (Ranking, error)

	TemperatureStats(ctx context.Context, f StatsFilter) (TemperatureStats, error)
	Stations(ctx context.Context) ([]Station, error)
}
