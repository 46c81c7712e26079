package astro

import (
	"fmt"
	"time"

	"snexviz/internal/config"
)

// Twilight is the Sun altitude, in degrees, below which a site is in
// astronomical night
const Twilight = -18.0

// Position is a fixed sky position in degrees
type Position struct {
	RA    float64
	Dec   float64
	Epoch float64
	Frame string
}

// NewPosition returns a sidereal J2000 position
func NewPosition(ra, dec float64) Position {
	return Position{RA: ra, Dec: dec, Epoch: 2000, Frame: "icrs"}
}

// Site is an observing site of a facility
type Site struct {
	Facility  string
	Name      string
	Longitude float64 // degrees, east positive
	Latitude  float64
	Elevation float64 // meters
	Color     string
}

// Label is the legend label of the site, e.g. "(LCO) Teide"
func (s Site) Label() string {
	return fmt.Sprintf("(%s) %s", s.Facility, s.Name)
}

// SitesFromSettings flattens the configured facilities into sites
func SitesFromSettings(settings *config.Settings) []Site {
	var sites []Site
	for _, facility := range settings.Facilities {
		for _, s := range facility.Sites {
			sites = append(sites, Site{
				Facility:  facility.Name,
				Name:      s.Name,
				Longitude: s.Longitude,
				Latitude:  s.Latitude,
				Elevation: s.Elevation,
				Color:     s.Color,
			})
		}
	}
	return sites
}

// TimeGrid returns the times from start up to, not including, end at step
func TimeGrid(start, end time.Time, step time.Duration) []time.Time {
	if step <= 0 || !end.After(start) {
		return nil
	}
	grid := make([]time.Time, 0, int(end.Sub(start)/step)+1)
	for t := start; t.Before(end); t = t.Add(step) {
		grid = append(grid, t)
	}
	return grid
}

// Calculator computes visibility series for a fixed set of sites
type Calculator struct {
	sites []Site
}

// NewCalculator creates a calculator for the given sites
func NewCalculator(sites []Site) *Calculator {
	return &Calculator{sites: sites}
}

// Sites returns the configured sites
func (c *Calculator) Sites() []Site {
	return c.sites
}
