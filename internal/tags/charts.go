package tags

import (
	"context"
	"fmt"
	"html/template"
	"time"

	"snexviz/internal/astro"
	"snexviz/internal/charts"
	"snexviz/internal/measurements"
	"snexviz/internal/store"
)

var (
	airmassLayout         = charts.Layout{Width: 600, Height: 300, ShowLegend: true}
	airmassCollapseLayout = charts.Layout{Width: 250, Height: 200, Static: true}

	lightcurveLayout         = charts.Layout{ShowLegend: true}
	lightcurveCollapseLayout = charts.Layout{Width: 250, Height: 200, Static: true}

	moonLayout = charts.Layout{Width: 600, Height: 300, ShowLegend: true, XTitle: "Days from now"}

	spectraLayout         = charts.Layout{Width: 700, Height: 600, ShowLegend: true, XTitle: "Wavelength (angstroms)", YTitle: "Flux"}
	spectraCollapseLayout = charts.Layout{Width: 250, Height: 200, Static: true}
)

// AirmassCollapse is the small static airmass preview
func (l *Library) AirmassCollapse(ctx context.Context, target *store.Target) (Context, error) {
	figure, err := l.airmass(target, AirmassCollapseInterval, airmassCollapseLayout)
	if err != nil {
		return nil, err
	}
	return Context{"target": target, "figure": figure}, nil
}

// AirmassPlot is the interactive airmass plot of the next 24 hours
func (l *Library) AirmassPlot(ctx context.Context, target *store.Target) (Context, error) {
	figure, err := l.airmass(target, AirmassInterval, airmassLayout)
	if err != nil {
		return nil, err
	}
	return Context{"target": target, "figure": figure}, nil
}

func (l *Library) airmass(target *store.Target, interval time.Duration, layout charts.Layout) (template.HTML, error) {
	start := l.now().UTC()
	siteSeries, err := l.calc.Airmass(astro.NewPosition(target.RA, target.Dec), start, interval, AirmassLimit)
	if err != nil {
		return "", fmt.Errorf("failed to compute airmass of target %d: %w", target.ID, err)
	}

	series := make([]charts.Series, 0, len(siteSeries))
	for _, ss := range siteSeries {
		series = append(series, charts.Series{
			Name:  ss.Label,
			Color: ss.Site.Color,
			Times: ss.Times,
			Y:     ss.Airmass,
		})
	}

	snippet, err := l.charts.Airmass(series, AirmassLimit, layout)
	if err != nil {
		return "", err
	}
	return template.HTML(snippet.HTML), nil
}

// Lightcurve is the interactive light curve of the photometry user may see
func (l *Library) Lightcurve(ctx context.Context, target *store.Target, user *store.User) (Context, error) {
	return l.lightcurve(ctx, target, user, lightcurveLayout)
}

// LightcurveCollapse is the small static light curve preview
func (l *Library) LightcurveCollapse(ctx context.Context, target *store.Target, user *store.User) (Context, error) {
	return l.lightcurve(ctx, target, user, lightcurveCollapseLayout)
}

func (l *Library) lightcurve(ctx context.Context, target *store.Target, user *store.User, layout charts.Layout) (Context, error) {
	records, err := l.repo.ReducedData(ctx, l.dataQuery(target, store.DataTypePhotometry, user))
	if err != nil {
		return nil, fmt.Errorf("failed to load photometry of target %d: %w", target.ID, err)
	}

	photometry := measurements.Photometry(records)
	l.logSkipped("photometry", target, photometry.Skipped())
	l.log.Debug("aggregated photometry", map[string]interface{}{
		"target_id": target.ID,
		"records":   len(records),
		"filters":   photometry.Filters(),
	})
	if photometry.Empty() {
		return Context{"target": target, "plot": template.HTML(NoPhotometry)}, nil
	}

	series := make([]charts.Series, 0, photometry.Len())
	for _, fs := range photometry.Series() {
		series = append(series, charts.Series{
			Name:  fs.Filter,
			Color: charts.FilterColor(fs.Filter),
			Times: fs.Time,
			Y:     fs.Magnitude,
			Err:   fs.Error,
		})
	}

	snippet, err := l.charts.Lightcurve(series, layout)
	if err != nil {
		return nil, err
	}
	return Context{"target": target, "plot": template.HTML(snippet.HTML)}, nil
}

// MoonVis plots the Moon distance and phase over the next 30 days
func (l *Library) MoonVis(ctx context.Context, target *store.Target) (Context, error) {
	moon := l.calc.Moon(astro.NewPosition(target.RA, target.Dec), l.now().UTC())

	distance := charts.Series{Name: "Moon distance (degrees)", X: moon.Days, Y: moon.Separation}
	phase := charts.Series{Name: "Moon phase", X: moon.Days, Y: moon.Illumination}

	snippet, err := l.charts.Moon(distance, phase, moonLayout)
	if err != nil {
		return nil, err
	}
	return Context{"plot": template.HTML(snippet.HTML)}, nil
}

// SpectraPlot is the interactive plot of the target spectra. With a data
// product only the spectra of that product are shown.
func (l *Library) SpectraPlot(ctx context.Context, target *store.Target, dataProductID *uint, user *store.User) (Context, error) {
	return l.spectra(ctx, target, dataProductID, user, spectraLayout)
}

// SpectraCollapse is the small static spectra preview
func (l *Library) SpectraCollapse(ctx context.Context, target *store.Target, user *store.User) (Context, error) {
	return l.spectra(ctx, target, nil, user, spectraCollapseLayout)
}

func (l *Library) spectra(ctx context.Context, target *store.Target, dataProductID *uint, user *store.User, layout charts.Layout) (Context, error) {
	q := l.dataQuery(target, store.DataTypeSpectroscopy, user)
	q.DataProductID = dataProductID
	records, err := l.repo.ReducedData(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to load spectra of target %d: %w", target.ID, err)
	}

	spectra, skipped := measurements.Spectra(records)
	l.logSkipped("spectrum", target, skipped)
	l.log.Debug("decoded spectra", map[string]interface{}{
		"target_id": target.ID,
		"records":   len(records),
		"spectra":   len(spectra),
	})
	if len(spectra) == 0 {
		return Context{"target": target, "plot": template.HTML(NoSpectra)}, nil
	}

	series := make([]charts.Series, 0, len(spectra))
	for _, s := range spectra {
		series = append(series, charts.Series{Name: s.Name, X: s.Wavelength, Y: s.Flux})
	}

	snippet, err := l.charts.Spectra(series, layout)
	if err != nil {
		return nil, err
	}
	return Context{"target": target, "plot": template.HTML(snippet.HTML)}, nil
}

func (l *Library) logSkipped(kind string, target *store.Target, ids []uint) {
	for _, id := range ids {
		l.log.Debug("skipping malformed "+kind+" payload", map[string]interface{}{
			"target_id": target.ID,
			"datum_id":  id,
		})
	}
}

// AladinCollapse hands the target to the sky viewer template
func (l *Library) AladinCollapse(target *store.Target) Context {
	return Context{"target": target}
}
