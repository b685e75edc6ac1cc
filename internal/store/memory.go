package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/climate-api/internal/climate"
)

// MemoryStore is a concurrency-safe in-memory implementation of climate.Store.
// Rows keep insertion order, which acts as the row id for tie-breaks.
type MemoryStore struct {
	mu sync.RWMutex

	measurements []climate.Measurement
	stations     []climate.Station

	// failure, when set, is returned by every read.
	failure error
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AddMeasurements appends measurements in the given order.
func (s *MemoryStore) AddMeasurements(ms ...climate.Measurement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.measurements = append(s.measurements, ms...)
}

// AddStations appends station records.
func (s *MemoryStore) AddStations(sts ...climate.Station) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = append(s.stations, sts...)
}

// SetFailure makes every subsequent read fail with err (nil clears it).
func (s *MemoryStore) SetFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = err
}

func (s *MemoryStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.failure != nil {
		return fmt.Errorf("%w: %w", climate.ErrStoreUnavailable, s.failure)
	}
	return nil
}

// byDate returns measurements ordered by date, then insertion order.
func (s *MemoryStore) byDate() []climate.Measurement {
	out := make([]climate.Measurement, len(s.measurements))
	copy(out, s.measurements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.check(ctx)
}

func (s *MemoryStore) DateBounds(ctx context.Context) (time.Time, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if len(s.measurements) == 0 {
		return time.Time{}, time.Time{}, climate.ErrDataUnavailable
	}

	first, latest := s.measurements[0].Date, s.measurements[0].Date
	for _, m := range s.measurements[1:] {
		if m.Date.Before(first) {
			first = m.Date
		}
		if m.Date.After(latest) {
			latest = m.Date
		}
	}
	return first, latest, nil
}

func (s *MemoryStore) Precipitation(ctx context.Context, from time.Time) ([]climate.DatedValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var out []climate.DatedValue
	for _, m := range s.byDate() {
		if m.Date.Before(from) {
			continue
		}
		out = append(out, climate.DatedValue{Date: m.Date, Value: m.Precipitation})
	}
	return out, nil
}

func (s *MemoryStore) Temperatures(ctx context.Context, stationID string, from time.Time) ([]climate.DatedValue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	var out []climate.DatedValue
	for _, m := range s.byDate() {
		if m.StationID != stationID || m.Date.Before(from) {
			continue
		}
		v := m.Temperature
		out = append(out, climate.DatedValue{Date: m.Date, Value: &v})
	}
	return out, nil
}

func (s *MemoryStore) Activity(ctx context.Context) (climate.Ranking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, m := range s.measurements {
		counts[m.StationID]++
	}

	ranking := make(climate.Ranking, 0, len(counts))
	for id, n := range counts {
		ranking = append(ranking, climate.StationActivity{StationID: id, Count: n})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].StationID < ranking[j].StationID
	})
	return ranking, nil
}

func (s *MemoryStore) TemperatureStats(ctx context.Context, f climate.StatsFilter) (climate.TemperatureStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return climate.TemperatureStats{}, err
	}

	var (
		stats  climate.TemperatureStats
		sum    float64
		lo, hi float64
	)
	for _, m := range s.measurements {
		if f.StationID != "" && m.StationID != f.StationID {
			continue
		}
		if f.Range != nil && !f.Range.Contains(m.Date) {
			continue
		}
		if stats.Count == 0 || m.Temperature < lo {
			lo = m.Temperature
		}
		if stats.Count == 0 || m.Temperature > hi {
			hi = m.Temperature
		}
		sum += m.Temperature
		stats.Count++
	}

	if stats.Count > 0 {
		avg := sum / float64(stats.Count)
		stats.Min, stats.Avg, stats.Max = &lo, &avg, &hi
	}
	return stats, nil
}

func (s *MemoryStore) Stations(ctx context.Context) ([]climate.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.check(ctx); err != nil {
		return nil, err
	}

	out := make([]climate.Station, len(s.stations))
	copy(out, s.stations)
	sort.Slice(out, func(i, j int) bool { return out[i].StationID < out[j].StationID })
	return out, nil
}
