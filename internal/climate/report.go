package climate

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Report holds the snapshots computed once at startup. It is never mutated afterwards.
type Report struct {
	FirstDate   time.Time
	LatestDate  time.Time
	WindowStart time.Time

	Precipitation Series
	Activity      Ranking
	Temperatures  Series

	MostActive        string
	MostActiveStation *Station // nil when the station table has no matching row
	MostActiveStats   TemperatureStats
}

// BuildReport computes the trailing-window precipitation series, the station activity
// ranking and the most active station's trailing-window temperature series.
func BuildReport(ctx context.Context, store Store, logger *zap.SugaredLogger) (*Report, error) {
	first, latest, err := store.DateBounds(ctx)
	if err != nil {
		return nil, fmt.Errorf("date bounds: %w", err)
	}

	rep := &Report{
		FirstDate:   first,
		LatestDate:  latest,
		WindowStart: WindowStart(latest),
	}

	var stations []Station
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := store.Precipitation(gctx, rep.WindowStart)
		if err != nil {
			return fmt.Errorf("precipitation: %w", err)
		}
		rep.Precipitation = NewSeries(rows)
		return nil
	})

	g.Go(func() error {
		ranking, err := store.Activity(gctx)
		if err != nil {
			return fmt.Errorf("station activity: %w", err)
		}
		if len(ranking) == 0 {
			return ErrNoStations
		}
		rep.Activity = ranking
		rep.MostActive = ranking[0].StationID

		rows, err := store.Temperatures(gctx, rep.MostActive, rep.WindowStart)
		if err != nil {
			return fmt.Errorf("temperatures for %s: %w", rep.MostActive, err)
		}
		rep.Temperatures = NewSeries(rows)

		stats, err := store.TemperatureStats(gctx, StatsFilter{StationID: rep.MostActive})
		if err != nil {
			return fmt.Errorf("temperature stats for %s: %w", rep.MostActive, err)
		}
		rep.MostActiveStats = stats
		return nil
	})

	g.Go(func() error {
		var err error
		stations, err = store.Stations(gctx)
		if err != nil {
			return fmt.Errorf("stations: %w", err)
		}
		logger.Debugw("station table loaded", "stations", len(stations))
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range stations {
		if stations[i].StationID == rep.MostActive {
			rep.MostActiveStation = &stations[i]
			break
		}
	}

	logger.Infow("report built",
		"firstDate", FormatDate(rep.FirstDate),
		"latestDate", FormatDate(rep.LatestDate),
		"windowStart", FormatDate(rep.WindowStart),
		"precipitationDays", len(rep.Precipitation),
		"stations", len(rep.Activity),
		"mostActive", rep.MostActive,
		"temperatureDays", len(rep.Temperatures),
	)
	if st := rep.MostActiveStation; st != nil {
		logger.Infow("most active station", "station", st.StationID, "name", st.Name)
	}
	if s := rep.MostActiveStats; !s.NoData() {
		logger.Infow("most active station temperatures",
			"station", rep.MostActive,
			"min", *s.Min,
			"avg", *s.Avg,
			"max", *s.Max,
			"observations", s.Count,
		)
	}

	return rep, nil
}
