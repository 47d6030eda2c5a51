package domain

import (
	"fmt"
	"math"
	"time"
)

// GatingPolicy decides which readings may share one snapshot.
type GatingPolicy string

const (
	// GatingStrict keeps only readings whose timestamp equals that of the
	// first non-NaN reading.
	GatingStrict GatingPolicy = "strict"

	// GatingPermissive keeps every non-NaN reading regardless of timestamp.
	GatingPermissive GatingPolicy = "permissive"
)

// ParseGatingPolicy validates a policy name. An empty name selects GatingStrict.
func ParseGatingPolicy(s string) (GatingPolicy, error) {
	switch GatingPolicy(s) {
	case "", GatingStrict:
		return GatingStrict, nil
	case GatingPermissive:
		return GatingPermissive, nil
	default:
		return "", fmt.Errorf("unknown gating policy %q", s)
	}
}

// Correlation is the output of Correlate.
type Correlation struct {
	Measurements []Measurement
	DatasetTime  time.Time
	Filtered     FilterStats
}

// Correlate pairs values[i] with positions[i], resolves each position to its
// station and drops NaN and, under GatingStrict, off-time readings.
// Measurements keep the order of the positions block.
//
// Sequences of different length fail with ErrMisalignedSequence; a surviving
// position without a station fails the whole dataset with ErrUnknownStation.
func Correlate(values []float64, positions []Position, stations StationRegistry, policy GatingPolicy) (Correlation, error) {
	if len(values) != len(positions) {
		return Correlation{}, fmt.Errorf("%w: %d values, %d positions", ErrMisalignedSequence, len(values), len(positions))
	}

	var (
		result   Correlation
		haveTime bool
	)
	result.Measurements = make([]Measurement, 0, len(values))

	for i, v := range values {
		if math.IsNaN(v) {
			result.Filtered.NaN++
			continue
		}

		pos := positions[i]
		station, ok := stations[pos.Key()]
		if !ok {
			return Correlation{}, fmt.Errorf("%w: %q at index %d", ErrUnknownStation, pos.Key(), i)
		}

		if !haveTime {
			result.DatasetTime = pos.Time
			haveTime = true
		} else if policy != GatingPermissive && !pos.Time.Equal(result.DatasetTime) {
			result.Filtered.Timestamp++
			continue
		}

		result.Measurements = append(result.Measurements, Measurement{
			Site:      station.Name,
			Latitude:  pos.Latitude,
			Longitude: pos.Longitude,
			Value:     v,
			StationID: station.ID,
			Time:      pos.Time,
		})
	}

	return result, nil
}
