package astro

import "time"

const (
	moonDays = 30
	moonStep = 0.2 // days
)

// MoonSeries is the Moon geometry relative to a target over a month
type MoonSeries struct {
	Times        []time.Time
	Days         []float64 // days since the first sample
	Separation   []float64 // degrees
	Illumination []float64 // illuminated fraction
}

// Moon samples the Moon distance from pos and the lunar phase every 0.2
// days for 30 days after start
func (c *Calculator) Moon(pos Position, start time.Time) MoonSeries {
	n := int(moonDays / moonStep)
	target := FromPosition(pos)

	ms := MoonSeries{
		Times:        make([]time.Time, n),
		Days:         make([]float64, n),
		Separation:   make([]float64, n),
		Illumination: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		day := float64(i) * moonStep
		t := start.Add(time.Duration(day * float64(24*time.Hour)))

		ms.Times[i] = t
		ms.Days[i] = day
		ms.Separation[i] = Separation(MoonPosition(t), target)
		ms.Illumination[i] = MoonIllumination(t)
	}
	return ms
}
