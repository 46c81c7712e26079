package astro

import (
	"fmt"
	"math"
	"time"
)

// SiteSeries is the masked airmass of a target at one site
type SiteSeries struct {
	Site    Site
	Label   string
	Times   []time.Time
	Airmass []float64 // NaN where the target is not observable
}

// Airmass computes the airmass of pos at every configured site over the 24
// hours following start. Samples above limit, at or below the horizon, or
// outside astronomical night are NaN.
func (c *Calculator) Airmass(pos Position, start time.Time, interval time.Duration, limit float64) ([]SiteSeries, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("airmass interval must be positive, got %s", interval)
	}

	grid := TimeGrid(start, start.Add(24*time.Hour), interval)
	target := FromPosition(pos)

	// The Sun moves about a degree a day, so one position at the middle of
	// the window serves the whole grid.
	sun := SunPosition(grid[len(grid)/2])

	series := make([]SiteSeries, 0, len(c.sites))
	for _, site := range c.sites {
		sunAlt := make([]float64, len(grid))
		airmass := make([]float64, len(grid))
		for i, t := range grid {
			sunAlt[i] = Altitude(sun, site, t)
			airmass[i] = AirmassFromAltitude(Altitude(target, site, t))
		}

		series = append(series, SiteSeries{
			Site:    site,
			Label:   site.Label(),
			Times:   grid,
			Airmass: MaskAirmass(airmass, sunAlt, limit),
		})
	}
	return series, nil
}

// MaskAirmass returns a copy of airmass with unusable samples set to NaN:
// airmass at or above limit, airmass at or below 1, or the Sun above
// astronomical twilight.
func MaskAirmass(airmass, sunAlt []float64, limit float64) []float64 {
	masked := make([]float64, len(airmass))
	for i, x := range airmass {
		if x >= limit || x <= 1 || math.IsNaN(x) || (i < len(sunAlt) && sunAlt[i] > Twilight) {
			masked[i] = math.NaN()
			continue
		}
		masked[i] = x
	}
	return masked
}
