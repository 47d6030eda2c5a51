package domain

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testPoint describes one gml:Point feature for wfsDocument.
type testPoint struct {
	id   string
	name string
	pos  string
}

// wfsDocument renders a minimal multipoint coverage response. A nil positions
// or values slice omits that block entirely.
func wfsDocument(points []testPoint, positions, values []string) []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<wfs:FeatureCollection xmlns:wfs="http://www.opengis.net/wfs/2.0" xmlns:gml="http://www.opengis.net/gml/3.2" xmlns:gmlcov="http://www.opengis.net/gmlcov/1.0">
  <wfs:member>
    <gml:MultiPoint gml:id="mp-1">
`)
	for _, p := range points {
		fmt.Fprintf(&b, `      <gml:pointMember>
        <gml:Point gml:id=%q>
          <gml:name>%s</gml:name>
          <gml:pos>%s </gml:pos>
        </gml:Point>
      </gml:pointMember>
`, p.id, p.name, p.pos)
	}
	b.WriteString("    </gml:MultiPoint>\n")
	if positions != nil {
		fmt.Fprintf(&b, "    <gmlcov:positions>%s</gmlcov:positions>\n", tupleBlock(positions))
	}
	if values != nil {
		fmt.Fprintf(&b, "    <gml:doubleOrNilReasonTupleList>%s</gml:doubleOrNilReasonTupleList>\n", tupleBlock(values))
	}
	b.WriteString("  </wfs:member>\n</wfs:FeatureCollection>\n")
	return []byte(b.String())
}

// tupleBlock lays out lines the way FMI does: a leading newline, indented
// lines with trailing spaces, and a closing indentation-only line.
func tupleBlock(lines []string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString("                " + l + " \n")
	}
	b.WriteString("                ")
	return b.String()
}

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func mustParse(t *testing.T, raw []byte) *Element {
	t.Helper()
	doc, err := ParseDocument(raw)
	require.NoError(t, err)
	return doc
}

var helsinki = testPoint{id: "point-100971", name: "Helsinki", pos: "60.17 24.94"}
