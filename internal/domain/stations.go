package domain

import (
	"strconv"
	"strings"
)

// BuildStationRegistry collects every gml:Point feature of the document into
// a registry keyed by its trimmed gml:pos text. Later points with the same key
// replace earlier ones. Points lacking an id, name or position are ignored;
// an empty registry is not an error here.
func BuildStationRegistry(doc *Element) StationRegistry {
	registry := make(StationRegistry)
	for _, point := range doc.FindAll(GMLNamespace, "Point") {
		station, key, ok := parseStation(point)
		if !ok {
			continue
		}
		registry[key] = station
	}
	return registry
}

func parseStation(point *Element) (Station, string, bool) {
	gmlID, ok := point.Attr(GMLNamespace, "id")
	if !ok {
		return Station{}, "", false
	}
	name := point.Child(GMLNamespace, "name")
	pos := point.Child(GMLNamespace, "pos")
	if name == nil || pos == nil {
		return Station{}, "", false
	}

	key := strings.TrimSpace(pos.Text())
	if key == "" {
		return Station{}, "", false
	}

	station := Station{
		ID:   stationID(gmlID),
		Name: strings.TrimSpace(name.Text()),
	}
	// The key is what joins positions to stations, so unparsable coordinates
	// still register.
	if fields := strings.Fields(key); len(fields) >= 2 {
		station.Latitude, _ = strconv.ParseFloat(fields[0], 64)
		station.Longitude, _ = strconv.ParseFloat(fields[1], 64)
	}
	return station, key, true
}

// stationID returns the trailing segment of a composite gml:id such as "point-101004".
func stationID(gmlID string) string {
	if i := strings.LastIndex(gmlID, "-"); i >= 0 {
		return gmlID[i+1:]
	}
	return gmlID
}
