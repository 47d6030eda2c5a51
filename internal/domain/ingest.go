package domain

import "fmt"

// IngestOptions tunes a single Ingest call.
type IngestOptions struct {
	Policy GatingPolicy
}

// Ingest converts one raw WFS response into a snapshot of measurements.
// It holds no state between calls. A nil or empty payload is treated as an
// unavailable dataset and returns ErrEmptyDataset. FetchedAt is left for the
// caller to set.
func Ingest(raw []byte, opts IngestOptions) (Snapshot, error) {
	if len(raw) == 0 {
		return Snapshot{}, fmt.Errorf("%w: no payload", ErrEmptyDataset)
	}

	doc, err := ParseDocument(raw)
	if err != nil {
		return Snapshot{}, err
	}

	stations := BuildStationRegistry(doc)

	values, err := DecodeValues(doc)
	if err != nil {
		return Snapshot{}, err
	}
	positions, err := DecodePositions(doc)
	if err != nil {
		return Snapshot{}, err
	}

	policy := opts.Policy
	if policy == "" {
		policy = GatingStrict
	}

	c, err := Correlate(values, positions, stations, policy)
	if err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		DatasetTime:  c.DatasetTime,
		Measurements: c.Measurements,
		Filtered:     c.Filtered,
	}, nil
}
