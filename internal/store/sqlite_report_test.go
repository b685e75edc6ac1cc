package store

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/climate-api/internal/climate"
)

// writeRawFixture builds the two tables with hand-written DDL, the way an
// externally produced database declares them, and loads the three-row scenario.
func writeRawFixture(t *testing.T, dateType string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hawaii.sqlite")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("open fixture: %v", err)
	}

	stmts := []string{
		`CREATE TABLE measurement (
			id INTEGER NOT NULL PRIMARY KEY,
			station TEXT,
			date ` + dateType + `,
			prcp FLOAT,
			tobs FLOAT
		)`,
		`CREATE TABLE station (
			id INTEGER NOT NULL PRIMARY KEY,
			station TEXT,
			name TEXT,
			latitude FLOAT,
			longitude FLOAT,
			elevation FLOAT
		)`,
		`INSERT INTO measurement (station, date, prcp, tobs) VALUES
			('S1', '2017-08-20', 0.5, 80),
			('S1', '2017-08-21', 0.0, 81),
			('S2', '2017-08-21', 1.2, 75),
			('S2', '2016-08-20', NULL, 70)`,
		`INSERT INTO station (station, name, latitude, longitude, elevation) VALUES
			('S1', 'WAIKIKI 717.2, HI US', 21.2716, -157.8168, 3.0)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("exec fixture: %v", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("fixture db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close fixture: %v", err)
	}
	return path
}

func TestReportOverSQLiteSchemas(t *testing.T) {
	for _, dateType := range []string{"TEXT", "DATE"} {
		t.Run(dateType, func(t *testing.T) {
			s := openFixture(t, writeRawFixture(t, dateType))

			svc, err := climate.NewService(context.Background(), s, zap.NewNop().Sugar(), climate.Options{})
			if err != nil {
				t.Fatalf("NewService: %v", err)
			}
			rep := svc.Report()

			if got := climate.FormatDate(rep.LatestDate); got != "2017-08-21" {
				t.Fatalf("latest date %s", got)
			}
			if got := climate.FormatDate(rep.FirstDate); got != "2016-08-20" {
				t.Fatalf("first date %s", got)
			}
			if len(rep.Activity) != 2 || rep.Activity[0] != (climate.StationActivity{StationID: "S1", Count: 2}) {
				t.Fatalf("unexpected ranking %v", rep.Activity)
			}

			// 2016-08-20 falls one day before the window start of 2016-08-21.
			prcp := rep.Precipitation.Map()
			if len(prcp) != 2 || *prcp["2017-08-20"] != 0.5 || *prcp["2017-08-21"] != 1.2 {
				t.Fatalf("unexpected precipitation %v", rep.Precipitation)
			}
			tobs := rep.Temperatures.Map()
			if len(tobs) != 2 || *tobs["2017-08-20"] != 80 || *tobs["2017-08-21"] != 81 {
				t.Fatalf("unexpected temperatures %v", rep.Temperatures)
			}
			if rep.MostActiveStation == nil || rep.MostActiveStation.Name != "WAIKIKI 717.2, HI US" {
				t.Fatalf("unexpected most active station %+v", rep.MostActiveStation)
			}

			r, err := climate.ParseDateRange("2017-08-21", "2017-08-21")
			if err != nil {
				t.Fatalf("range: %v", err)
			}
			stats, err := svc.RangeStats(context.Background(), r)
			if err != nil {
				t.Fatalf("RangeStats: %v", err)
			}
			if stats.Count != 2 || *stats.Min != 75 || *stats.Avg != 78 || *stats.Max != 81 {
				t.Fatalf("unexpected stats %+v", stats)
			}
		})
	}
}
