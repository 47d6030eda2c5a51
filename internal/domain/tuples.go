package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DecodeValues decodes the first token of every line of the
// gml:doubleOrNilReasonTupleList block. A "NaN" token decodes to math.NaN().
func DecodeValues(doc *Element) ([]float64, error) {
	block := doc.Find(GMLNamespace, "doubleOrNilReasonTupleList")
	if block == nil {
		return nil, fmt.Errorf("%w: missing doubleOrNilReasonTupleList", ErrEmptyDataset)
	}

	lines := tupleLines(block.Text())
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: empty doubleOrNilReasonTupleList", ErrEmptyDataset)
	}

	values := make([]float64, 0, len(lines))
	allNaN := true
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%w: value line %d is blank", ErrMalformedDocument, i)
		}
		v, err := parseValue(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: value line %d: %w", ErrMalformedDocument, i, err)
		}
		if !math.IsNaN(v) {
			allNaN = false
		}
		values = append(values, v)
	}

	if allNaN {
		return nil, ErrAllNaNValues
	}
	return values, nil
}

// DecodePositions decodes every "<lat> <lon> <epoch>" line of the
// gmlcov:positions block.
func DecodePositions(doc *Element) ([]Position, error) {
	block := doc.Find(GMLCOVNamespace, "positions")
	if block == nil {
		return nil, fmt.Errorf("%w: missing positions", ErrEmptyDataset)
	}

	lines := tupleLines(block.Text())
	positions := make([]Position, 0, len(lines))
	for i, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			return nil, fmt.Errorf("%w: position line %d has %d fields, want 3", ErrMalformedDocument, i, len(fields))
		}
		epoch, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: position line %d: %w", ErrMalformedDocument, i, err)
		}
		positions = append(positions, Position{
			Latitude:  fields[0],
			Longitude: fields[1],
			Time:      time.Unix(epoch, 0).UTC(),
		})
	}
	return positions, nil
}

// tupleLines splits a tuple block into lines and drops the first and last
// line, which only hold the whitespace around the element's content.
func tupleLines(text string) []string {
	lines := strings.Split(text, "\n")
	if len(lines) <= 2 {
		return nil
	}
	return lines[1 : len(lines)-1]
}

func parseValue(token string) (float64, error) {
	if strings.EqualFold(token, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(token, 64)
}
