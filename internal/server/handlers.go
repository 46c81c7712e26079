package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"snexviz/internal/metrics"
	"snexviz/internal/store"
	"snexviz/internal/tags"
)

const defaultRemoteUserHeader = "X-Remote-User"

var errBadRequest = errors.New("bad request")

// fragmentFunc builds the context of one tag and names its template
type fragmentFunc func(r *http.Request) (string, tags.Context, error)

// valueFunc builds a tag whose value is already JSON
type valueFunc func(r *http.Request) (string, error)

// fragment renders the template returned by build as an HTML fragment
func (s *Server) fragment(name string, build fragmentFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		tmpl, c, err := build(r)
		var buf bytes.Buffer
		if err == nil {
			err = s.Renderer.Render(&buf, tmpl, c)
		}
		if err != nil {
			s.fail(w, r, name, start, err)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
		s.done(r, name, metrics.OutcomeOK, start)
	}
}

// value writes the JSON value returned by build
func (s *Server) value(name string, build valueFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		out, err := build(r)
		if err != nil {
			s.fail(w, r, name, start, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(out))
		s.done(r, name, metrics.OutcomeOK, start)
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, name string, start time.Time, err error) {
	switch {
	case errors.Is(err, errBadRequest):
		http.Error(w, err.Error(), http.StatusBadRequest)
		s.done(r, name, metrics.OutcomeBadRequest, start)
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
		s.done(r, name, metrics.OutcomeNotFound, start)
	default:
		s.log.Error("failed to build fragment", err, map[string]interface{}{
			"fragment": name,
			"path":     r.URL.Path,
		})
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		s.done(r, name, metrics.OutcomeError, start)
	}
}

func (s *Server) done(r *http.Request, name, outcome string, start time.Time) {
	elapsed := time.Since(start)
	s.Metrics.Observe(name, outcome, elapsed)
	s.log.Debug("served fragment", map[string]interface{}{
		"fragment": name,
		"path":     r.URL.Path,
		"outcome":  outcome,
		"duration": elapsed.String(),
	})
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	database := "ok"
	if p, ok := s.Repo.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			s.log.Error("database health check failed", err)
			status, code, database = "unhealthy", http.StatusServiceUnavailable, "failed"
		}
	}

	health := map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": map[string]string{
			"database": database,
			"config":   "ok",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}

func pathID(r *http.Request) (uint, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, raw)
	}
	return uint(id), nil
}

func collapsed(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("collapse"))
	return err == nil && v
}

func (s *Server) target(r *http.Request) (*store.Target, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	return s.Repo.Target(r.Context(), id)
}

// user resolves the trusted user header. A missing header or an unknown
// user is anonymous.
func (s *Server) user(r *http.Request) (*store.User, error) {
	header := defaultRemoteUserHeader
	if s.Config != nil && s.Config.RemoteUserHeader != "" {
		header = s.Config.RemoteUserHeader
	}
	name := r.Header.Get(header)
	if name == "" {
		return nil, nil
	}
	u, err := s.Repo.UserByName(r.Context(), name)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	return u, err
}

// targetAndUser loads the target of the path and the requesting user
func (s *Server) targetAndUser(r *http.Request) (*store.Target, *store.User, error) {
	t, err := s.target(r)
	if err != nil {
		return nil, nil, err
	}
	u, err := s.user(r)
	if err != nil {
		return nil, nil, err
	}
	return t, u, nil
}

func (s *Server) airmass(r *http.Request) (string, tags.Context, error) {
	t, err := s.target(r)
	if err != nil {
		return "", nil, err
	}
	if collapsed(r) {
		c, err := s.Tags.AirmassCollapse(r.Context(), t)
		return tags.TemplateAirmassCollapse, c, err
	}
	c, err := s.Tags.AirmassPlot(r.Context(), t)
	return tags.TemplateAirmass, c, err
}

func (s *Server) lightcurve(r *http.Request) (string, tags.Context, error) {
	t, u, err := s.targetAndUser(r)
	if err != nil {
		return "", nil, err
	}
	if collapsed(r) {
		c, err := s.Tags.LightcurveCollapse(r.Context(), t, u)
		return tags.TemplateLightcurveCollapse, c, err
	}
	c, err := s.Tags.Lightcurve(r.Context(), t, u)
	return tags.TemplateLightcurve, c, err
}

func (s *Server) moon(r *http.Request) (string, tags.Context, error) {
	t, err := s.target(r)
	if err != nil {
		return "", nil, err
	}
	c, err := s.Tags.MoonVis(r.Context(), t)
	return tags.TemplateMoon, c, err
}

func (s *Server) spectra(r *http.Request) (string, tags.Context, error) {
	t, u, err := s.targetAndUser(r)
	if err != nil {
		return "", nil, err
	}
	if collapsed(r) {
		c, err := s.Tags.SpectraCollapse(r.Context(), t, u)
		return tags.TemplateSpectraCollapse, c, err
	}

	var dataProductID *uint
	if raw := r.URL.Query().Get("dataproduct"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return "", nil, fmt.Errorf("%w: invalid data product %q", errBadRequest, raw)
		}
		v := uint(id)
		dataProductID = &v
	}
	c, err := s.Tags.SpectraPlot(r.Context(), t, dataProductID, u)
	return tags.TemplateSpectra, c, err
}

func (s *Server) aladin(r *http.Request) (string, tags.Context, error) {
	t, err := s.target(r)
	if err != nil {
		return "", nil, err
	}
	return tags.TemplateAladinCollapse, s.Tags.AladinCollapse(t), nil
}

func (s *Server) classifications(r *http.Request) (string, tags.Context, error) {
	t, err := s.target(r)
	if err != nil {
		return "", nil, err
	}
	return tags.TemplateClassificationsDropdown, s.Tags.ClassificationsDropdown(t), nil
}

func (s *Server) scienceTags(r *http.Request) (string, tags.Context, error) {
	t, err := s.target(r)
	if err != nil {
		return "", nil, err
	}
	c, err := s.Tags.ScienceTagsDropdown(r.Context(), t)
	return tags.TemplateScienceTagsDropdown, c, err
}

func (s *Server) targetUpload(r *http.Request) (string, tags.Context, error) {
	t, u, err := s.targetAndUser(r)
	if err != nil {
		return "", nil, err
	}
	c, err := s.Tags.CustomUploadDataProduct(r.Context(), u, tags.UploadSubject{Target: t})
	return tags.TemplateCustomUploadDataProduct, c, err
}

func (s *Server) observationUpload(r *http.Request) (string, tags.Context, error) {
	id, err := pathID(r)
	if err != nil {
		return "", nil, err
	}
	record, err := s.Repo.ObservationRecord(r.Context(), id)
	if err != nil {
		return "", nil, err
	}
	u, err := s.user(r)
	if err != nil {
		return "", nil, err
	}
	c, err := s.Tags.CustomUploadDataProduct(r.Context(), u, tags.UploadSubject{ObservationRecord: record})
	return tags.TemplateCustomUploadDataProduct, c, err
}

func (s *Server) dashLightcurve(r *http.Request) (string, tags.Context, error) {
	t, err := s.target(r)
	if err != nil {
		return "", nil, err
	}
	c, err := s.Tags.DashLightcurve(r.Context(), t, r)
	return tags.TemplateDashLightcurve, c, err
}

func (s *Server) dataProduct(r *http.Request) (*store.DataProduct, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	return s.Repo.DataProduct(r.Context(), id)
}

func (s *Server) dataProductUpdate(r *http.Request) (string, tags.Context, error) {
	dp, err := s.dataProduct(r)
	if err != nil {
		return "", nil, err
	}
	c, err := s.Tags.DataProductUpdate(r.Context(), dp)
	return tags.TemplateDataProductUpdate, c, err
}

func (s *Server) targetTags(r *http.Request) (string, error) {
	t, err := s.target(r)
	if err != nil {
		return "", err
	}
	return s.Tags.TargetTags(r.Context(), t)
}

func (s *Server) targetExtra(r *http.Request) (string, error) {
	t, err := s.target(r)
	if err != nil {
		return "", err
	}
	return s.Tags.TargetExtraID(r.Context(), t, r.PathValue("key"))
}

func (s *Server) dataProductGroups(r *http.Request) (string, error) {
	dp, err := s.dataProduct(r)
	if err != nil {
		return "", err
	}
	return s.Tags.DataProductGroups(r.Context(), dp)
}
