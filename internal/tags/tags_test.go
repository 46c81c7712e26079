package tags

import (
	"bytes"
	"context"
	"html/template"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"snexviz/internal/astro"
	"snexviz/internal/charts"
	"snexviz/internal/config"
	"snexviz/internal/logger"
	"snexviz/internal/store"
)

var fixedNow = time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db      *gorm.DB
	lib     *Library
	target  store.Target
	owner   store.User
	outside store.User
	admin   store.User
	group   store.Group
}

func newFixture(t *testing.T, options Options) *fixture {
	t.Helper()
	db, err := store.Open("sqlite", filepath.Join(t.TempDir(), "tags.db"), logger.NewNop())
	require.NoError(t, err)
	require.NoError(t, store.Migrate(db))

	f := &fixture{
		db:      db,
		target:  store.Target{Name: "SN 2023ixf", RA: 210.91, Dec: 54.31},
		owner:   store.User{Username: "owner"},
		outside: store.User{Username: "outsider"},
		admin:   store.User{Username: "admin", IsSuperuser: true},
		group:   store.Group{Name: "Global Supernova Project"},
	}
	require.NoError(t, db.Create(&f.target).Error)
	for _, u := range []*store.User{&f.owner, &f.outside, &f.admin} {
		require.NoError(t, db.Create(u).Error)
	}
	require.NoError(t, db.Create(&f.group).Error)
	require.NoError(t, db.Create(&store.UserGroup{UserID: f.owner.ID, GroupID: f.group.ID}).Error)

	settings := config.DefaultSettings()
	gen := charts.NewGenerator("https://cdn.example.org/echarts.min.js")
	if options.Now == nil {
		options.Now = func() time.Time { return fixedNow }
	}
	f.lib = New(store.NewGormRepository(db), astro.NewCalculator(astro.SitesFromSettings(settings)), gen, settings, logger.NewNop(), options)
	return f
}

// addDatum stores a reduced datum, granting view permission to grantee when set
func (f *fixture) addDatum(t *testing.T, rd store.ReducedDatum, grantee *store.User) store.ReducedDatum {
	t.Helper()
	rd.TargetID = f.target.ID
	require.NoError(t, f.db.Create(&rd).Error)
	if grantee != nil {
		require.NoError(t, f.db.Create(&store.UserObjectPermission{
			UserID:   grantee.ID,
			ObjectID: rd.ID,
			Codename: store.PermViewReducedDatum,
		}).Error)
	}
	return rd
}

func uintPtr(v uint) *uint { return &v }

func idString(id uint) string { return strconv.FormatUint(uint64(id), 10) }

func TestLightcurvePlaceholder(t *testing.T) {
	f := newFixture(t, Options{})

	c, err := f.lib.Lightcurve(context.Background(), &f.target, &f.owner)
	require.NoError(t, err)
	assert.Equal(t, template.HTML(NoPhotometry), c["plot"])

	c, err = f.lib.LightcurveCollapse(context.Background(), &f.target, &f.owner)
	require.NoError(t, err)
	assert.Equal(t, template.HTML(NoPhotometry), c["plot"])
	assert.Equal(t, &f.target, c["target"])
}

func TestLightcurvePermissions(t *testing.T) {
	f := newFixture(t, Options{})
	ts := time.Date(2023, 5, 20, 3, 0, 0, 0, time.UTC)
	f.addDatum(t, store.ReducedDatum{DataType: store.DataTypePhotometry, Timestamp: ts, Value: `{"filter":"g","magnitude":14.1,"error":0.02}`}, &f.owner)

	c, err := f.lib.Lightcurve(context.Background(), &f.target, &f.owner)
	require.NoError(t, err)
	plot := string(c["plot"].(template.HTML))
	assert.NotEqual(t, NoPhotometry, plot)
	assert.Contains(t, plot, "echarts.min.js")

	c, err = f.lib.Lightcurve(context.Background(), &f.target, &f.outside)
	require.NoError(t, err)
	assert.Equal(t, template.HTML(NoPhotometry), c["plot"])

	c, err = f.lib.Lightcurve(context.Background(), &f.target, nil)
	require.NoError(t, err)
	assert.Equal(t, template.HTML(NoPhotometry), c["plot"])

	c, err = f.lib.Lightcurve(context.Background(), &f.target, &f.admin)
	require.NoError(t, err)
	assert.NotEqual(t, template.HTML(NoPhotometry), c["plot"])
}

func TestLightcurveTargetPermissionsOnly(t *testing.T) {
	f := newFixture(t, Options{TargetPermissionsOnly: true})
	ts := time.Date(2023, 5, 20, 3, 0, 0, 0, time.UTC)
	f.addDatum(t, store.ReducedDatum{DataType: store.DataTypePhotometry, Timestamp: ts, Value: `{"filter":"r","magnitude":13.9,"error":0.03}`}, nil)

	c, err := f.lib.Lightcurve(context.Background(), &f.target, &f.outside)
	require.NoError(t, err)
	assert.NotEqual(t, template.HTML(NoPhotometry), c["plot"])
}

func TestLightcurveSkipsInfinitePayloads(t *testing.T) {
	f := newFixture(t, Options{TargetPermissionsOnly: true})
	var logs bytes.Buffer
	f.lib.log = logger.New(logger.Config{Level: logger.DEBUG, Format: logger.JSONFormat, Output: &logs}).WithComponent("tags")

	ts := time.Date(2023, 5, 20, 3, 0, 0, 0, time.UTC)
	f.addDatum(t, store.ReducedDatum{DataType: store.DataTypePhotometry, Timestamp: ts, Value: `{"filter":"g","magnitude":14.1,"error":0.02}`}, nil)
	bad := f.addDatum(t, store.ReducedDatum{DataType: store.DataTypePhotometry, Timestamp: ts.Add(time.Hour), Value: `{"filter":"g","magnitude":15,"error":"inf"}`}, nil)

	c, err := f.lib.Lightcurve(context.Background(), &f.target, nil)
	require.NoError(t, err)
	assert.NotEqual(t, template.HTML(NoPhotometry), c["plot"])

	assert.Contains(t, logs.String(), "skipping malformed photometry payload")
	assert.Contains(t, logs.String(), `"datum_id":`+idString(bad.ID))
}

func TestLightcurveCollapseStatic(t *testing.T) {
	f := newFixture(t, Options{TargetPermissionsOnly: true})
	ts := time.Date(2023, 5, 20, 3, 0, 0, 0, time.UTC)
	for i, value := range []string{
		`{"filter":"V","magnitude":14.1,"error":0.05}`,
		`{"filter":"V","magnitude":14.3,"error":0.05}`,
		`{"filter":"V","magnitude":14.6,"error":0.05}`,
	} {
		f.addDatum(t, store.ReducedDatum{
			DataType:  store.DataTypePhotometry,
			Timestamp: ts.Add(time.Duration(i) * 24 * time.Hour),
			Value:     value,
		}, nil)
	}

	c, err := f.lib.LightcurveCollapse(context.Background(), &f.target, nil)
	require.NoError(t, err)
	assert.Contains(t, string(c["plot"].(template.HTML)), "data:image/png;base64,")
}

func TestSpectraFilterByDataProduct(t *testing.T) {
	f := newFixture(t, Options{TargetPermissionsOnly: true})
	first := store.DataProduct{TargetID: f.target.ID, DataProductType: store.DataTypeSpectroscopy}
	second := store.DataProduct{TargetID: f.target.ID, DataProductType: store.DataTypeSpectroscopy}
	require.NoError(t, f.db.Create(&first).Error)
	require.NoError(t, f.db.Create(&second).Error)

	f.addDatum(t, store.ReducedDatum{
		DataType:      store.DataTypeSpectroscopy,
		DataProductID: uintPtr(first.ID),
		Timestamp:     time.Date(2023, 5, 21, 4, 0, 0, 0, time.UTC),
		Value:         `{"0":{"wavelength":4000,"flux":1.2},"1":{"wavelength":4010,"flux":1.3}}`,
	}, nil)
	f.addDatum(t, store.ReducedDatum{
		DataType:      store.DataTypeSpectroscopy,
		DataProductID: uintPtr(second.ID),
		Timestamp:     time.Date(2023, 6, 2, 4, 0, 0, 0, time.UTC),
		Value:         `{"0":{"wavelength":5000,"flux":0.8},"1":{"wavelength":5010,"flux":0.9}}`,
	}, nil)

	c, err := f.lib.SpectraPlot(context.Background(), &f.target, nil, nil)
	require.NoError(t, err)
	plot := string(c["plot"].(template.HTML))
	assert.Contains(t, plot, "2023-05-21")
	assert.Contains(t, plot, "2023-06-02")

	c, err = f.lib.SpectraPlot(context.Background(), &f.target, uintPtr(second.ID), nil)
	require.NoError(t, err)
	plot = string(c["plot"].(template.HTML))
	assert.NotContains(t, plot, "2023-05-21")
	assert.Contains(t, plot, "2023-06-02")

	c, err = f.lib.SpectraCollapse(context.Background(), &f.target, nil)
	require.NoError(t, err)
	assert.Contains(t, string(c["plot"].(template.HTML)), "data:image/png;base64,")
}

func TestSpectraPlaceholder(t *testing.T) {
	f := newFixture(t, Options{})
	f.addDatum(t, store.ReducedDatum{
		DataType:  store.DataTypeSpectroscopy,
		Timestamp: time.Date(2023, 5, 21, 4, 0, 0, 0, time.UTC),
		Value:     `{"0":{"wavelength":4000,"flux":1.2}}`,
	}, nil)

	// no view permission on the only spectrum
	c, err := f.lib.SpectraPlot(context.Background(), &f.target, nil, &f.outside)
	require.NoError(t, err)
	assert.Equal(t, template.HTML(NoSpectra), c["plot"])
}

func TestAirmassContexts(t *testing.T) {
	f := newFixture(t, Options{})

	c, err := f.lib.AirmassPlot(context.Background(), &f.target)
	require.NoError(t, err)
	assert.Equal(t, &f.target, c["target"])
	figure := string(c["figure"].(template.HTML))
	assert.Contains(t, figure, "(LCO) Teide")
	assert.Contains(t, figure, "echarts.min.js")

	c, err = f.lib.AirmassCollapse(context.Background(), &f.target)
	require.NoError(t, err)
	assert.Contains(t, string(c["figure"].(template.HTML)), "data:image/png;base64,")
}

func TestMoonVis(t *testing.T) {
	f := newFixture(t, Options{})

	c, err := f.lib.MoonVis(context.Background(), &f.target)
	require.NoError(t, err)
	plot := string(c["plot"].(template.HTML))
	assert.Contains(t, plot, "Moon distance (degrees)")
	assert.Contains(t, plot, "Moon phase")
}

func TestTargetExtraID(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	id, err := f.lib.TargetExtraID(ctx, &f.target, "redshift")
	require.NoError(t, err)
	assert.Equal(t, "null", id)

	extra := store.TargetExtra{TargetID: f.target.ID, Key: "redshift", Value: "0.0008"}
	require.NoError(t, f.db.Create(&extra).Error)
	id, err = f.lib.TargetExtraID(ctx, &f.target, "redshift")
	require.NoError(t, err)
	assert.Equal(t, idString(extra.ID), id)
}

func TestDropdowns(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	c := f.lib.ClassificationsDropdown(&f.target)
	assert.Equal(t, config.DefaultSettings().TargetClassifications, c["classifications"])

	for _, tag := range []string{"stripped", "SLSN", "bright", "Interacting"} {
		require.NoError(t, f.db.Create(&store.ScienceTag{Tag: tag}).Error)
	}
	c, err := f.lib.ScienceTagsDropdown(ctx, &f.target)
	require.NoError(t, err)
	assert.Equal(t, []string{"bright", "Interacting", "SLSN", "stripped"}, c["sciencetags"])
}

func TestTargetTags(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	tags, err := f.lib.TargetTags(ctx, &f.target)
	require.NoError(t, err)
	assert.Equal(t, `""`, tags)

	a := store.ScienceTag{Tag: "SN Ia"}
	b := store.ScienceTag{Tag: "nearby"}
	require.NoError(t, f.db.Create(&a).Error)
	require.NoError(t, f.db.Create(&b).Error)
	require.NoError(t, f.db.Create(&store.TargetTag{TargetID: f.target.ID, TagID: a.ID}).Error)
	require.NoError(t, f.db.Create(&store.TargetTag{TargetID: f.target.ID, TagID: b.ID}).Error)

	tags, err = f.lib.TargetTags(ctx, &f.target)
	require.NoError(t, err)
	assert.Equal(t, `"SN Ia,nearby,"`, tags)
}

func TestCustomUploadDataProduct(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	other := store.Group{Name: "ePESSTO"}
	require.NoError(t, f.db.Create(&other).Error)

	c, err := f.lib.CustomUploadDataProduct(ctx, &f.owner, UploadSubject{Target: &f.target})
	require.NoError(t, err)
	form := c["data_product_form"].(DataProductForm)
	assert.Equal(t, "/targets/"+idString(f.target.ID)+"/", form.Referrer)
	require.Len(t, form.Groups, 1)
	assert.Equal(t, "Global Supernova Project", form.Groups[0].Name)
	assert.Equal(t, config.DefaultSettings().DataProductTypes, form.DataProductTypes)

	c, err = f.lib.CustomUploadDataProduct(ctx, &f.admin, UploadSubject{Target: &f.target})
	require.NoError(t, err)
	assert.Len(t, c["data_product_form"].(DataProductForm).Groups, 2)

	c, err = f.lib.CustomUploadDataProduct(ctx, nil, UploadSubject{Target: &f.target})
	require.NoError(t, err)
	assert.Empty(t, c["data_product_form"].(DataProductForm).Groups)

	record := store.ObservationRecord{TargetID: f.target.ID, Facility: "LCO"}
	require.NoError(t, f.db.Create(&record).Error)
	c, err = f.lib.CustomUploadDataProduct(ctx, &f.owner, UploadSubject{ObservationRecord: &record})
	require.NoError(t, err)
	form = c["data_product_form"].(DataProductForm)
	assert.Nil(t, form.Target)
	assert.Equal(t, "/observations/"+idString(record.ID)+"/", form.Referrer)
}

func TestCustomUploadDataProductTargetPermissionsOnly(t *testing.T) {
	f := newFixture(t, Options{TargetPermissionsOnly: true})

	c, err := f.lib.CustomUploadDataProduct(context.Background(), &f.admin, UploadSubject{Target: &f.target})
	require.NoError(t, err)
	assert.Empty(t, c["data_product_form"].(DataProductForm).Groups)
}

func TestDashLightcurve(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()

	mine := store.DataProduct{TargetID: f.target.ID, DataProductType: store.DataTypePhotometry}
	require.NoError(t, f.db.Create(&mine).Error)
	f.addDatum(t, store.ReducedDatum{DataType: store.DataTypePhotometry, DataProductID: uintPtr(mine.ID), Timestamp: fixedNow, Value: `{"filter":"g","magnitude":15,"error":0.1}`}, nil)

	otherTarget := store.Target{Name: "SN 2024abc"}
	require.NoError(t, f.db.Create(&otherTarget).Error)
	foreign := store.DataProduct{TargetID: otherTarget.ID, DataProductType: store.DataTypePhotometry}
	require.NoError(t, f.db.Create(&foreign).Error)

	extras := []store.ReducedDatumExtra{
		{DataType: store.DataTypePhotometry, Key: store.UploadExtrasKey, Value: `{"data_product_id":` + idString(mine.ID) + `,"instrument":"Swift","used_in":"Smith et al. 2024","reducer_group":"UCSB"}`},
		{DataType: store.DataTypePhotometry, Key: store.UploadExtrasKey, Value: `{"data_product_id":"` + idString(mine.ID) + `","instrument":"NTT","used_in":"","reducer_group":"ePESSTO"}`},
		{DataType: store.DataTypePhotometry, Key: store.UploadExtrasKey, Value: `{"data_product_id":` + idString(mine.ID) + `,"instrument":"LCO","used_in":"","reducer_group":"UCSB"}`},
		{DataType: store.DataTypePhotometry, Key: store.UploadExtrasKey, Value: `{"data_product_id":` + idString(foreign.ID) + `,"instrument":"ZTF","used_in":"Other 2023","reducer_group":"Caltech"}`},
		{DataType: store.DataTypePhotometry, Key: store.UploadExtrasKey, Value: `not json`},
		{DataType: store.DataTypeSpectroscopy, Key: store.UploadExtrasKey, Value: `{"data_product_id":` + idString(mine.ID) + `,"instrument":"NOT"}`},
	}
	for i := range extras {
		require.NoError(t, f.db.Create(&extras[i]).Error)
	}

	r := httptest.NewRequest("GET", "/targets/1/dash-lightcurve", nil)
	c, err := f.lib.DashLightcurve(ctx, &f.target, r)
	require.NoError(t, err)
	assert.Same(t, r, c["request"])

	dash := c["dash_context"].(map[string]any)
	assert.Equal(t, map[string]any{"value": f.target.ID}, dash["target_id"])
	assert.Equal(t, map[string]any{"options": []Option{{"LCO", "LCO"}, {"Swift", "Swift"}}}, dash["telescopes-checklist"])
	assert.Equal(t, map[string]any{"options": []Option{{"LCO", ""}, {"UCSB", "UCSB"}}}, dash["reducer-group-checklist"])
	assert.Equal(t, map[string]any{"options": []Option{{"Smith et al. 2024", "Smith et al. 2024"}}}, dash["papers-dropdown"])
}

func TestDataProductUpdateAndGroups(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	other := store.Group{Name: "ePESSTO"}
	require.NoError(t, f.db.Create(&other).Error)

	dp := store.DataProduct{TargetID: f.target.ID, DataProductType: store.DataTypePhotometry}
	require.NoError(t, f.db.Create(&dp).Error)

	c, err := f.lib.DataProductUpdate(ctx, &dp)
	require.NoError(t, err)
	assert.Equal(t, &dp, c["dataproduct"])
	assert.ElementsMatch(t, []string{"Global Supernova Project", "ePESSTO"}, c["groups"])

	groups, err := f.lib.DataProductGroups(ctx, &dp)
	require.NoError(t, err)
	assert.Equal(t, `""`, groups)

	require.NoError(t, f.db.Create(&store.GroupObjectPermission{GroupID: other.ID, ObjectID: dp.ID, Codename: store.PermViewDataProduct}).Error)
	groups, err = f.lib.DataProductGroups(ctx, &dp)
	require.NoError(t, err)
	assert.Equal(t, `"ePESSTO,"`, groups)
}

func TestUploadExtrasDataProductID(t *testing.T) {
	tests := []struct {
		raw  string
		id   uint
		want bool
	}{
		{`5`, 5, true},
		{`5.0`, 5, true},
		{`"5"`, 0, false},
		{`5.5`, 0, false},
		{`-3`, 0, false},
		{`null`, 0, false},
		{``, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, ok := uploadExtras{DataProductID: []byte(tt.raw)}.dataProductID()
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}
