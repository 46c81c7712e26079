package astro

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/angle"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonillum"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// Equatorial is an apparent equatorial position
type Equatorial struct {
	RA  unit.RA
	Dec unit.Angle
}

// FromPosition converts a position in degrees to an equatorial position
func FromPosition(pos Position) Equatorial {
	return Equatorial{RA: unit.RAFromDeg(pos.RA), Dec: unit.AngleFromDeg(pos.Dec)}
}

// Dynamical time is approximated by UT; the difference is about a minute
// and invisible at plot resolution.
func jde(t time.Time) float64 {
	return julian.TimeToJD(t.UTC())
}

// SunPosition returns the apparent position of the Sun at t
func SunPosition(t time.Time) Equatorial {
	ra, dec := solar.ApparentEquatorial(jde(t))
	return Equatorial{RA: ra, Dec: dec}
}

// MoonPosition returns the apparent geocentric position of the Moon at t
func MoonPosition(t time.Time) Equatorial {
	j := jde(t)
	λ, β, _ := moonposition.Position(j)
	Δψ, Δε := nutation.Nutation(j)
	ε := nutation.MeanObliquity(j) + Δε
	sε, cε := math.Sincos(ε.Rad())
	ra, dec := coord.EclToEq(λ+Δψ, β, sε, cε)
	return Equatorial{RA: ra, Dec: dec}
}

// MoonIllumination returns the illuminated fraction of the lunar disk at t
func MoonIllumination(t time.Time) float64 {
	return base.Illuminated(moonillum.PhaseAngle3(jde(t)))
}

// Separation returns the angular distance between two positions in degrees
func Separation(a, b Equatorial) float64 {
	return angle.Sep(unit.Angle(a.RA), a.Dec, unit.Angle(b.RA), b.Dec).Deg()
}

// Altitude returns the altitude in degrees of p seen from site at t.
// Refraction is ignored.
func Altitude(p Equatorial, site Site, t time.Time) float64 {
	st := sidereal.Apparent(julian.TimeToJD(t.UTC()))
	φ := unit.AngleFromDeg(site.Latitude)
	ψ := unit.AngleFromDeg(-site.Longitude) // meeus longitudes are west positive
	_, h := coord.EqToHz(p.RA, p.Dec, φ, ψ, st)
	return h.Deg()
}

// AirmassFromAltitude returns sec z for an altitude in degrees. Objects on
// or below the horizon give a non-positive or infinite value.
func AirmassFromAltitude(alt float64) float64 {
	return 1 / math.Sin(alt*math.Pi/180)
}
