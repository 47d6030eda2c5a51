// Package domain turns Finnish Meteorological Institute (FMI) open data WFS
// responses into external dose rate measurements.
//
// # Data Source
//
// Dose rates are measured by the Radiation and Nuclear Safety Authority (STUK)
// and published through the FMI WFS endpoint as the stored query
// "stuk::observations::external-radiation::multipointcoverage". One response
// holds the latest reading of every station as a GML multipoint coverage.
//
// # Wire Format
//
// Stations are gml:Point features (namespace http://www.opengis.net/gml/3.2):
//
//	<gml:Point gml:id="point-101004">
//	  <gml:name>Helsinki Kumpula</gml:name>
//	  <gml:pos>60.20307 24.96131 </gml:pos>
//	</gml:Point>
//
// The station id is the last "-" separated segment of gml:id. The trimmed
// gml:pos text is the coordinate key.
//
// Readings are two parallel tuple lists. gmlcov:positions
// (namespace http://www.opengis.net/gmlcov/1.0) holds one
// "<lat> <lon> <epoch-seconds>" line per reading and
// gml:doubleOrNilReasonTupleList holds one "<value> ..." line per reading.
// Both blocks open and close with a delimiter line that carries no data:
//
//	<gmlcov:positions>
//	                60.20307 24.96131  1700000000
//	                60.37830 26.90400  1700000000
//	            </gmlcov:positions>
//
// Line i of the values block belongs to line i of the positions block. The
// positions line is joined to its station by the verbatim "<lat> <lon>" text,
// never by re-formatted floats.
//
// # Validity Rules
//
//	NaN        the station reported nothing this cycle; the reading is dropped.
//	All NaN    the dataset is unusable (ErrAllNaNValues).
//	Timestamp  under the strict policy the first surviving reading fixes the
//	           dataset time and readings with any other timestamp are dropped.
//	           FMI occasionally repeats a station with a reading a minute off.
package domain
