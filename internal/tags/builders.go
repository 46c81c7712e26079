package tags

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/chrispappas/golang-generics-set/set"
	"github.com/pkg/errors"

	"snexviz/internal/config"
	"snexviz/internal/store"
)

const jsonNull = "null"

// TargetExtraID returns the id of the target extra stored under key, or
// "null" when there is none
func (l *Library) TargetExtraID(ctx context.Context, target *store.Target, key string) (string, error) {
	extra, err := l.repo.TargetExtra(ctx, target.ID, key)
	if errors.Is(err, store.ErrNotFound) {
		return jsonNull, nil
	}
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(uint64(extra.ID), 10), nil
}

// ClassificationsDropdown lists the configured target classifications
func (l *Library) ClassificationsDropdown(target *store.Target) Context {
	classifications := make([]string, len(l.settings.TargetClassifications))
	copy(classifications, l.settings.TargetClassifications)
	return Context{"target": target, "classifications": classifications}
}

// ScienceTagsDropdown lists every science tag, sorted case-insensitively
func (l *Library) ScienceTagsDropdown(ctx context.Context, target *store.Target) (Context, error) {
	tags, err := l.repo.ScienceTags(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(tags))
	for _, tag := range tags {
		names = append(names, tag.Tag)
	}
	return Context{"target": target, "sciencetags": names}, nil
}

// joinTrailing joins names as "a,b," the way the page scripts split them
func joinTrailing(names []string) string {
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(',')
	}
	return b.String()
}

func jsonString(s string) (string, error) {
	out, err := json.Marshal(s)
	if err != nil {
		return "", errors.Wrap(err, "encode json string")
	}
	return string(out), nil
}

// TargetTags returns the target's science tags as a JSON string "a,b,"
func (l *Library) TargetTags(ctx context.Context, target *store.Target) (string, error) {
	names, err := l.repo.TargetTagNames(ctx, target.ID)
	if err != nil {
		return "", err
	}
	return jsonString(joinTrailing(names))
}

// UploadSubject is the record a data product upload is attached to:
// either a target or an observation record
type UploadSubject struct {
	Target            *store.Target
	ObservationRecord *store.ObservationRecord
}

// DataProductForm is the initial state of the upload form
type DataProductForm struct {
	Target            *store.Target
	ObservationRecord *store.ObservationRecord
	Referrer          string
	DataProductTypes  []config.DataProductType
	Groups            []store.Group
}

// CustomUploadDataProduct builds the upload form for a target or an
// observation record. Group choices are offered only when per-datum
// permissions apply: all groups to superusers, their own groups to others.
func (l *Library) CustomUploadDataProduct(ctx context.Context, user *store.User, subject UploadSubject) (Context, error) {
	form := DataProductForm{DataProductTypes: l.settings.DataProductTypes}

	switch {
	case subject.Target != nil:
		form.Target = subject.Target
		form.Referrer = fmt.Sprintf("/targets/%d/", subject.Target.ID)
	case subject.ObservationRecord != nil:
		form.ObservationRecord = subject.ObservationRecord
		form.Referrer = fmt.Sprintf("/observations/%d/", subject.ObservationRecord.ID)
	}

	if !l.targetPermissionsOnly && user != nil && user.ID != 0 {
		var err error
		if user.IsSuperuser {
			form.Groups, err = l.repo.Groups(ctx)
		} else {
			form.Groups, err = l.repo.UserGroups(ctx, user.ID)
		}
		if err != nil {
			return nil, err
		}
	}
	return Context{"data_product_form": form}, nil
}

// Option is a label/value choice of a dash component
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func options(values []string) []Option {
	out := make([]Option, 0, len(values))
	for _, v := range values {
		out = append(out, Option{Label: v, Value: v})
	}
	return out
}

// uploadExtras is the metadata stored with uploaded photometry
type uploadExtras struct {
	DataProductID json.RawMessage `json:"data_product_id"`
	Instrument    string          `json:"instrument"`
	UsedIn        string          `json:"used_in"`
	ReducerGroup  string          `json:"reducer_group"`
}

// dataProductID returns the product id when it is stored as a positive
// integral JSON number
func (e uploadExtras) dataProductID() (uint, bool) {
	var v float64
	if err := json.Unmarshal(e.DataProductID, &v); err != nil {
		return 0, false
	}
	if v <= 0 || v != math.Trunc(v) {
		return 0, false
	}
	return uint(v), true
}

// uniqueList keeps values in first-seen order
type uniqueList struct {
	seen   set.Set[string]
	values []string
}

func newUniqueList(initial ...string) *uniqueList {
	values := append([]string{}, initial...)
	return &uniqueList{seen: set.FromSlice(values), values: values}
}

func (u *uniqueList) add(v string) {
	if v == "" || u.seen.Has(v) {
		return
	}
	u.seen.Add(v)
	u.values = append(u.values, v)
}

// DashLightcurve collects the initial choices of the interactive light
// curve: telescopes, reducer groups and papers found in the upload
// metadata of the target's photometry
func (l *Library) DashLightcurve(ctx context.Context, target *store.Target, r *http.Request) (Context, error) {
	productIDs, err := l.repo.DataProductIDs(ctx, target.ID, store.DataTypePhotometry)
	if err != nil {
		return nil, err
	}
	products := set.FromSlice(productIDs)

	extras, err := l.repo.ReducedDatumExtras(ctx, store.UploadExtrasKey, store.DataTypePhotometry)
	if err != nil {
		return nil, err
	}

	telescopes := newUniqueList("LCO")
	reducerGroups := newUniqueList()
	papers := newUniqueList()
	for _, extra := range extras {
		var meta uploadExtras
		if err := json.Unmarshal([]byte(extra.Value), &meta); err != nil {
			l.log.Debug("skipping malformed upload extras", map[string]interface{}{"extra_id": extra.ID})
			continue
		}
		id, ok := meta.dataProductID()
		if !ok || !products.Has(id) {
			continue
		}
		telescopes.add(meta.Instrument)
		papers.add(meta.UsedIn)
		reducerGroups.add(meta.ReducerGroup)
	}

	reducerOptions := append([]Option{{Label: "LCO", Value: ""}}, options(reducerGroups.values)...)

	dash := map[string]any{
		"target_id":               map[string]any{"value": target.ID},
		"telescopes-checklist":    map[string]any{"options": options(telescopes.values)},
		"reducer-group-checklist": map[string]any{"options": reducerOptions},
		"papers-dropdown":         map[string]any{"options": options(papers.values)},
	}
	return Context{"dash_context": dash, "request": r}, nil
}

// DataProductUpdate lists every group for the sharing form of a data product
func (l *Library) DataProductUpdate(ctx context.Context, dp *store.DataProduct) (Context, error) {
	groups, err := l.repo.Groups(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return Context{"dataproduct": dp, "groups": names}, nil
}

// DataProductGroups returns the groups that may view dp as a JSON string
// "g1,g2,"
func (l *Library) DataProductGroups(ctx context.Context, dp *store.DataProduct) (string, error) {
	groups, err := l.repo.GroupsWithPermission(ctx, store.PermViewDataProduct, dp.ID)
	if err != nil {
		return "", err
	}
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	return jsonString(joinTrailing(names))
}
