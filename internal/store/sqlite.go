package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/i474232898/climate-api/internal/climate"
)

// MeasurementRecord maps the measurement table.
type MeasurementRecord struct {
	ID      int64    `gorm:"column:id;primaryKey"`
	Station string   `gorm:"column:station;index"`
	Date    string   `gorm:"column:date;index"`
	Prcp    *float64 `gorm:"column:prcp"`
	Tobs    *float64 `gorm:"column:tobs"`
}

func (MeasurementRecord) TableName() string { return "measurement" }

// StationRecord maps the station table.
type StationRecord struct {
	ID        int64   `gorm:"column:id;primaryKey"`
	Station   string  `gorm:"column:station;uniqueIndex"`
	Name      string  `gorm:"column:name"`
	Latitude  float64 `gorm:"column:latitude"`
	Longitude float64 `gorm:"column:longitude"`
	Elevation float64 `gorm:"column:elevation"`
}

func (StationRecord) TableName() string { return "station" }

// dayExpr reads measurement.date as YYYY-MM-DD text. A column declared DATE
// would otherwise come back from the driver as a time.Time.
const dayExpr = "strftime('%Y-%m-%d', date)"

// SQLiteConfig describes how to reach the SQLite file.
type SQLiteConfig struct {
	Path         string // ignored when DSN is set
	DSN          string
	MaxOpenConns int
	Logger       logger.Interface
}

// SQLiteStore is a read-only climate.Store backed by SQLite through gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLite opens the database read-only and checks that both tables exist.
// All failures wrap climate.ErrStoreUnavailable.
func OpenSQLite(ctx context.Context, cfg SQLiteConfig) (*SQLiteStore, error) {
	dsn := cfg.DSN
	if dsn == "" {
		// mode=ro would otherwise surface as an opaque "unable to open" later.
		if _, err := os.Stat(cfg.Path); err != nil {
			return nil, fmt.Errorf("%w: %w", climate.ErrStoreUnavailable, err)
		}
		dsn = fmt.Sprintf("file:%s?mode=ro&_query_only=1&_busy_timeout=5000", cfg.Path)
	}

	gl := cfg.Logger
	if gl == nil {
		gl = logger.Discard
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: open: %w", climate.ErrStoreUnavailable, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", climate.ErrStoreUnavailable, err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	s := &SQLiteStore{db: db}
	if err := s.Ping(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	m := db.WithContext(ctx).Migrator()
	for _, table := range []string{MeasurementRecord{}.TableName(), StationRecord{}.TableName()} {
		if !m.HasTable(table) {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("%w: missing table %q", climate.ErrStoreUnavailable, table)
		}
	}

	return s, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return storeError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return storeError("ping", err)
	}
	return nil
}

func (s *SQLiteStore) DateBounds(ctx context.Context) (time.Time, time.Time, error) {
	var bounds struct {
		FirstDate  sql.NullString
		LatestDate sql.NullString
	}
	err := s.db.WithContext(ctx).
		Model(&MeasurementRecord{}).
		Select("MIN("+dayExpr+") AS first_date, MAX("+dayExpr+") AS latest_date").
		Scan(&bounds).Error
	if err != nil {
		return time.Time{}, time.Time{}, storeError("date bounds", err)
	}
	if !bounds.LatestDate.Valid || !bounds.FirstDate.Valid {
		return time.Time{}, time.Time{}, climate.ErrDataUnavailable
	}

	first, err := climate.ParseDate(bounds.FirstDate.String)
	if err != nil {
		return time.Time{}, time.Time{}, storeError("date bounds", err)
	}
	latest, err := climate.ParseDate(bounds.LatestDate.String)
	if err != nil {
		return time.Time{}, time.Time{}, storeError("date bounds", err)
	}
	return first, latest, nil
}

func (s *SQLiteStore) Precipitation(ctx context.Context, from time.Time) ([]climate.DatedValue, error) {
	var rows []MeasurementRecord
	err := s.db.WithContext(ctx).
		Select("id, "+dayExpr+" AS date, prcp").
		Where(dayExpr+" >= ?", climate.FormatDate(from)).
		Order("date ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeError("precipitation", err)
	}

	out := make([]climate.DatedValue, 0, len(rows))
	for _, r := range rows {
		d, err := climate.ParseDate(r.Date)
		if err != nil {
			return nil, storeError("precipitation", err)
		}
		out = append(out, climate.DatedValue{Date: d, Value: r.Prcp})
	}
	return out, nil
}

func (s *SQLiteStore) Temperatures(ctx context.Context, stationID string, from time.Time) ([]climate.DatedValue, error) {
	var rows []MeasurementRecord
	err := s.db.WithContext(ctx).
		Select("id, "+dayExpr+" AS date, tobs").
		Where("station = ? AND "+dayExpr+" >= ?", stationID, climate.FormatDate(from)).
		Order("date ASC").Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, storeError("temperatures", err)
	}

	out := make([]climate.DatedValue, 0, len(rows))
	for _, r := range rows {
		d, err := climate.ParseDate(r.Date)
		if err != nil {
			return nil, storeError("temperatures", err)
		}
		out = append(out, climate.DatedValue{Date: d, Value: r.Tobs})
	}
	return out, nil
}

func (s *SQLiteStore) Activity(ctx context.Context) (climate.Ranking, error) {
	var rows []struct {
		Station      string
		Observations int64
	}
	err := s.db.WithContext(ctx).
		Model(&MeasurementRecord{}).
		Select("station, COUNT(*) AS observations").
		Group("station").
		Order("observations DESC").Order("station ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, storeError("activity", err)
	}

	ranking := make(climate.Ranking, 0, len(rows))
	for _, r := range rows {
		ranking = append(ranking, climate.StationActivity{StationID: r.Station, Count: r.Observations})
	}
	return ranking, nil
}

func (s *SQLiteStore) TemperatureStats(ctx context.Context, f climate.StatsFilter) (climate.TemperatureStats, error) {
	q := s.db.WithContext(ctx).
		Model(&MeasurementRecord{}).
		Select("MIN(tobs) AS min_tobs, AVG(tobs) AS avg_tobs, MAX(tobs) AS max_tobs, COUNT(tobs) AS observations")
	if f.Range != nil {
		q = q.Where(dayExpr+" >= ?", climate.FormatDate(f.Range.Start))
		if f.Range.End != nil {
			q = q.Where(dayExpr+" <= ?", climate.FormatDate(*f.Range.End))
		}
	}
	if f.StationID != "" {
		q = q.Where("station = ?", f.StationID)
	}

	var agg struct {
		MinTobs      sql.NullFloat64
		AvgTobs      sql.NullFloat64
		MaxTobs      sql.NullFloat64
		Observations int64
	}
	if err := q.Scan(&agg).Error; err != nil {
		return climate.TemperatureStats{}, storeError("temperature stats", err)
	}

	stats := climate.TemperatureStats{Count: agg.Observations}
	if agg.Observations > 0 {
		stats.Min = &agg.MinTobs.Float64
		stats.Avg = &agg.AvgTobs.Float64
		stats.Max = &agg.MaxTobs.Float64
	}
	return stats, nil
}

func (s *SQLiteStore) Stations(ctx context.Context) ([]climate.Station, error) {
	var rows []StationRecord
	if err := s.db.WithContext(ctx).Order("station ASC").Find(&rows).Error; err != nil {
		return nil, storeError("stations", err)
	}

	out := make([]climate.Station, 0, len(rows))
	for _, r := range rows {
		out = append(out, climate.Station{
			StationID: r.Station,
			Name:      r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			Elevation: r.Elevation,
		})
	}
	return out, nil
}

// storeError keeps context errors distinguishable and marks everything else unavailable.
func storeError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, climate.ErrStoreUnavailable, err)
}
