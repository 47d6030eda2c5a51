package domain

import "time"

// Station is one gml:Point feature of the dataset.
type Station struct {
	ID        string
	Name      string
	Latitude  float64
	Longitude float64
}

// StationRegistry maps the verbatim "<lat> <lon>" coordinate key to its station.
type StationRegistry map[string]Station

// Position is one decoded line of the gmlcov:positions block. Latitude and
// Longitude keep their source text so they can be used as a registry key.
type Position struct {
	Latitude  string
	Longitude string
	Time      time.Time
}

// Key returns the coordinate key used to look up the station of this position.
func (p Position) Key() string {
	return p.Latitude + " " + p.Longitude
}

// Measurement is a single dose rate reading attributed to a station.
type Measurement struct {
	Site      string    `json:"site"`
	Latitude  string    `json:"lat"`
	Longitude string    `json:"lon"`
	Value     float64   `json:"value"` // microsieverts per hour
	StationID string    `json:"station_id,omitempty"`
	Time      time.Time `json:"time"`
}

// FilterStats counts readings dropped while correlating a dataset.
type FilterStats struct {
	NaN       int
	Timestamp int
}

// Snapshot is the result of ingesting one dataset.
type Snapshot struct {
	ID           string // unique per cycle, set by the pipeline
	DatasetTime  time.Time
	FetchedAt    time.Time
	Measurements []Measurement
	Filtered     FilterStats
}
