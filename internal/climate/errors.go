package climate

import "errors"

var (
	// ErrStoreUnavailable is returned when the table store cannot be opened or read.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrDataUnavailable is returned when the measurement table has no rows.
	ErrDataUnavailable = errors.New("no measurement data")
	// ErrNoStations is returned when no station has any observations.
	ErrNoStations = errors.New("no stations with observations")
	// ErrMalformedDate is returned when a date parameter is not YYYY-MM-DD.
	ErrMalformedDate = errors.New("malformed date, expected YYYY-MM-DD")
)
