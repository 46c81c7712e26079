package measurements

import (
	"bytes"
	"encoding/json"
	"time"

	"snexviz/internal/store"
)

// FilterSeries is the photometry of one filter as parallel sequences.
// Missing magnitudes and errors are NaN.
type FilterSeries struct {
	Filter    string
	Time      []time.Time
	Magnitude []float64
	Error     []float64
}

// Len returns the number of points
func (fs *FilterSeries) Len() int {
	return len(fs.Time)
}

// PhotometrySet groups photometry by filter. Filters keep the order in
// which they first appear in the records.
type PhotometrySet struct {
	order   []string
	byName  map[string]*FilterSeries
	skipped []uint
}

// Skipped returns the ids of the records whose payload was empty or
// malformed
func (ps *PhotometrySet) Skipped() []uint {
	return ps.skipped
}

// Filters returns the filter names in first-appearance order
func (ps *PhotometrySet) Filters() []string {
	return ps.order
}

// Get returns the series of a filter
func (ps *PhotometrySet) Get(filter string) (*FilterSeries, bool) {
	fs, ok := ps.byName[filter]
	return fs, ok
}

// Series returns every filter series in first-appearance order
func (ps *PhotometrySet) Series() []*FilterSeries {
	out := make([]*FilterSeries, 0, len(ps.order))
	for _, name := range ps.order {
		out = append(out, ps.byName[name])
	}
	return out
}

// Len returns the number of filters
func (ps *PhotometrySet) Len() int {
	return len(ps.order)
}

// Empty reports whether no photometry was aggregated
func (ps *PhotometrySet) Empty() bool {
	return len(ps.order) == 0
}

func (ps *PhotometrySet) add(filter string, t time.Time, mag, magErr float64) {
	fs, ok := ps.byName[filter]
	if !ok {
		fs = &FilterSeries{Filter: filter}
		ps.byName[filter] = fs
		ps.order = append(ps.order, filter)
	}
	fs.Time = append(fs.Time, t)
	fs.Magnitude = append(fs.Magnitude, mag)
	fs.Error = append(fs.Error, magErr)
}

type photometryPoint struct {
	Filter    *string `json:"filter"`
	Magnitude number  `json:"magnitude"`
	Error     number  `json:"error"`
}

// Photometry groups photometric records by filter. Empty and malformed
// payloads are skipped.
func Photometry(records []store.ReducedDatum) *PhotometrySet {
	ps := &PhotometrySet{byName: map[string]*FilterSeries{}}
	for _, rd := range records {
		point, ok := decodePhotometry(rd.Value)
		if !ok {
			ps.skipped = append(ps.skipped, rd.ID)
			continue
		}

		filter := ""
		if point.Filter != nil {
			filter = *point.Filter
		}
		ps.add(filter, rd.Timestamp, point.Magnitude.Float(), point.Error.Float())
	}
	return ps
}

func decodePhotometry(payload string) (photometryPoint, bool) {
	var point photometryPoint
	raw := bytes.TrimSpace([]byte(payload))
	if len(raw) == 0 || raw[0] != '{' {
		return point, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || len(fields) == 0 {
		return point, false
	}
	if err := json.Unmarshal(raw, &point); err != nil {
		return point, false
	}
	return point, true
}
