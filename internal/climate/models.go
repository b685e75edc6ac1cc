package climate

import (
	"bytes"
	"encoding/json"
	"time"
)

// Measurement is one station observation for a single day.
type Measurement struct {
	StationID     string
	Date          time.Time // UTC midnight
	Precipitation *float64
	Temperature   float64
}

// Station holds the descriptive record of a weather station.
type Station struct {
	StationID string  `json:"station"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation"`
}

// DatedValue is a single (date, value) row read from the store.
type DatedValue struct {
	Date  time.Time
	Value *float64
}

// StationActivity is one entry of the activity ranking.
type StationActivity struct {
	StationID string
	Count     int64
}

// TemperatureStats is the min/avg/max aggregate over a set of observations.
// When Count is zero the aggregate fields are nil.
type TemperatureStats struct {
	Min   *float64
	Avg   *float64
	Max   *float64
	Count int64
}

// NoData reports whether the aggregate matched no rows.
func (s TemperatureStats) NoData() bool {
	return s.Count == 0
}

// Series is an ascending date -> value mapping with unique dates.
type Series []DatedValue

// NewSeries collapses rows ordered by date ascending into a Series.
// Later rows with the same date replace earlier ones.
func NewSeries(rows []DatedValue) Series {
	out := make(Series, 0, len(rows))
	for _, r := range rows {
		if n := len(out); n > 0 && out[n-1].Date.Equal(r.Date) {
			out[n-1].Value = r.Value
			continue
		}
		out = append(out, r)
	}
	return out
}

// Map returns the series as a date string keyed map.
func (s Series) Map() map[string]*float64 {
	m := make(map[string]*float64, len(s))
	for _, p := range s {
		m[FormatDate(p.Date)] = p.Value
	}
	return m
}

// MarshalJSON encodes the series as a JSON object whose keys keep the series order.
func (s Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(FormatDate(p.Date))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Ranking is the station activity ranking, most active first.
type Ranking []StationActivity

// Flatten returns the ranking as an alternating station id, count list.
func (r Ranking) Flatten() []any {
	out := make([]any, 0, len(r)*2)
	for _, a := range r {
		out = append(out, a.StationID, a.Count)
	}
	return out
}

// Total returns the sum of all observation counts.
func (r Ranking) Total() int64 {
	var n int64
	for _, a := range r {
		n += a.Count
	}
	return n
}
