package climate

import (
	"encoding/json"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestNewSeriesLastRowWins(t *testing.T) {
	rows := []DatedValue{
		{Date: mustDate(t, "2017-08-20"), Value: fp(0.5)},
		{Date: mustDate(t, "2017-08-21"), Value: fp(0.0)},
		{Date: mustDate(t, "2017-08-21"), Value: fp(1.2)},
		{Date: mustDate(t, "2017-08-22"), Value: nil},
	}

	s := NewSeries(rows)
	if len(s) != 3 {
		t.Fatalf("expected 3 unique dates, got %d", len(s))
	}
	if got := *s[1].Value; got != 1.2 {
		t.Fatalf("expected later duplicate to win, got %v", got)
	}
	if s[2].Value != nil {
		t.Fatal("expected nil value preserved")
	}
	for i := 1; i < len(s); i++ {
		if !s[i-1].Date.Before(s[i].Date) {
			t.Fatalf("series not strictly ascending at %d", i)
		}
	}
}

func TestSeriesJSONKeepsOrderAndRoundTrips(t *testing.T) {
	s := NewSeries([]DatedValue{
		{Date: mustDate(t, "2016-12-31"), Value: fp(0.25)},
		{Date: mustDate(t, "2017-01-01"), Value: nil},
		{Date: mustDate(t, "2017-01-02"), Value: fp(3)},
	})

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"2016-12-31":0.25,"2017-01-01":null,"2017-01-02":3}`
	if string(raw) != want {
		t.Fatalf("got %s, want %s", raw, want)
	}

	var back map[string]*float64
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	orig := s.Map()
	if len(back) != len(orig) {
		t.Fatalf("round trip size %d, want %d", len(back), len(orig))
	}
	for k, v := range orig {
		got, ok := back[k]
		if !ok {
			t.Fatalf("missing key %s", k)
		}
		if (v == nil) != (got == nil) || (v != nil && *v != *got) {
			t.Fatalf("value mismatch for %s", k)
		}
	}
}

func TestEmptySeriesMarshalsToObject(t *testing.T) {
	raw, err := json.Marshal(Series(nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != "{}" {
		t.Fatalf("got %s, want {}", raw)
	}
}

func TestRankingFlattenAndTotal(t *testing.T) {
	r := Ranking{{StationID: "S1", Count: 2}, {StationID: "S2", Count: 1}}

	flat := r.Flatten()
	if len(flat) != 4 || flat[0] != "S1" || flat[1] != int64(2) || flat[2] != "S2" || flat[3] != int64(1) {
		t.Fatalf("unexpected flattening %v", flat)
	}
	if r.Total() != 3 {
		t.Fatalf("expected total 3, got %d", r.Total())
	}
}
