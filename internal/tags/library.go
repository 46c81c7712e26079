package tags

import (
	"time"

	"snexviz/internal/astro"
	"snexviz/internal/charts"
	"snexviz/internal/config"
	"snexviz/internal/logger"
	"snexviz/internal/store"
)

// Placeholders shown instead of an empty chart
const (
	NoPhotometry = "No photometry for this target yet."
	NoSpectra    = "No spectra for this target yet."
)

// Airmass plot parameters
const (
	AirmassLimit            = 3.0
	AirmassInterval         = 15 * time.Minute
	AirmassCollapseInterval = 30 * time.Minute
)

// Context is the set of values a tag hands to its template
type Context map[string]any

// Library builds the contexts of the target page tags
type Library struct {
	repo     store.Repository
	calc     *astro.Calculator
	charts   *charts.Generator
	settings *config.Settings
	log      *logger.Logger

	// targetPermissionsOnly disables per-datum permission checks
	targetPermissionsOnly bool
	now                   func() time.Time
}

// Options holds the optional settings of a Library
type Options struct {
	TargetPermissionsOnly bool
	Now                   func() time.Time
}

// New creates a tag library
func New(repo store.Repository, calc *astro.Calculator, gen *charts.Generator, settings *config.Settings, log *logger.Logger, options Options) *Library {
	if log == nil {
		log = logger.NewNop()
	}
	if settings == nil {
		settings = config.DefaultSettings()
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}
	return &Library{
		repo:                  repo,
		calc:                  calc,
		charts:                gen,
		settings:              settings,
		log:                   log.WithComponent("tags"),
		targetPermissionsOnly: options.TargetPermissionsOnly,
		now:                   now,
	}
}

// dataQuery selects the data of a target visible to user
func (l *Library) dataQuery(target *store.Target, dataType string, user *store.User) store.ReducedDataQuery {
	return store.ReducedDataQuery{
		TargetID:         target.ID,
		DataType:         dataType,
		CheckPermissions: !l.targetPermissionsOnly,
		Viewer:           user,
	}
}
