package measurements

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"snexviz/internal/store"
)

// Spectrum is one reduced spectrum, points in payload order
type Spectrum struct {
	Name       string // observation date, YYYY-MM-DD
	Timestamp  time.Time
	Wavelength []float64
	Flux       []float64
}

// Len returns the number of points
func (s *Spectrum) Len() int {
	return len(s.Wavelength)
}

type spectrumPoint struct {
	Wavelength number `json:"wavelength"`
	Flux       number `json:"flux"`
}

// Spectra decodes spectroscopic records. Each payload is an object of
// {wavelength, flux} points. Empty and malformed spectra are skipped and
// their record ids returned.
func Spectra(records []store.ReducedDatum) ([]Spectrum, []uint) {
	spectra := make([]Spectrum, 0, len(records))
	var skipped []uint
	for _, rd := range records {
		wavelength, flux, err := decodeSpectrum(rd.Value)
		if err != nil || len(wavelength) == 0 {
			skipped = append(skipped, rd.ID)
			continue
		}
		spectra = append(spectra, Spectrum{
			Name:       rd.Timestamp.UTC().Format("2006-01-02"),
			Timestamp:  rd.Timestamp,
			Wavelength: wavelength,
			Flux:       flux,
		})
	}
	return spectra, skipped
}

// decodeSpectrum walks the payload object token by token so the points
// keep their stored order
func decodeSpectrum(payload string) ([]float64, []float64, error) {
	dec := json.NewDecoder(strings.NewReader(payload))

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("spectrum payload is not an object")
	}

	var wavelength, flux []float64
	for dec.More() {
		if _, err := dec.Token(); err != nil { // point key
			return nil, nil, err
		}
		var point spectrumPoint
		if err := dec.Decode(&point); err != nil {
			return nil, nil, err
		}
		if !point.Wavelength.set || !point.Flux.set {
			return nil, nil, fmt.Errorf("spectrum point without wavelength or flux")
		}
		wavelength = append(wavelength, point.Wavelength.value)
		flux = append(flux, point.Flux.value)
	}

	if _, err := dec.Token(); err != nil { // closing brace
		return nil, nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, fmt.Errorf("trailing data after spectrum payload")
	}
	return wavelength, flux, nil
}
