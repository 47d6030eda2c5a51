package prom

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/dose-rate-exporter/internal/domain"
)

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// FormatLine renders one measurement in the text exposition format:
//
//	dose_rate{site="Helsinki",lat="60.17",lon="24.94"} 0.08
func FormatLine(m domain.Measurement) string {
	var b strings.Builder
	b.WriteString(MetricName)
	b.WriteString(`{site="`)
	b.WriteString(labelEscaper.Replace(m.Site))
	b.WriteString(`",lat="`)
	b.WriteString(labelEscaper.Replace(m.Latitude))
	b.WriteString(`",lon="`)
	b.WriteString(labelEscaper.Replace(m.Longitude))
	b.WriteString(`"} `)
	b.WriteString(FormatValue(m.Value))
	return b.String()
}

// FormatValue renders v as the shortest round-tripping decimal: fixed
// notation with at least one fractional digit for exponents in [-4, 16),
// scientific notation otherwise.
//
//	1 -> 1.0    0.08 -> 0.08    1e-05 -> 1e-05    1e16 -> 1e+16
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	exp, err := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if err != nil || exp < -4 || exp >= 16 {
		return sci
	}
	fixed := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(fixed, '.') {
		fixed += ".0"
	}
	return fixed
}

// WriteText writes one line per measurement.
func WriteText(w io.Writer, ms []domain.Measurement) error {
	bw := bufio.NewWriter(w)
	for _, m := range ms {
		if _, err := bw.WriteString(FormatLine(m) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
