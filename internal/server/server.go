package server

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/handlers"

	"snexviz/internal/config"
	"snexviz/internal/logger"
	"snexviz/internal/metrics"
	"snexviz/internal/store"
	"snexviz/internal/tags"
)

// Pinger is implemented by stores that can check their connection
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the target page fragments
type Server struct {
	Config   *config.Config
	Repo     store.Repository
	Tags     *tags.Library
	Renderer *tags.Renderer
	Metrics  *metrics.Metrics

	log *logger.Logger
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, repo store.Repository, lib *tags.Library, m *metrics.Metrics, log *logger.Logger) (*Server, error) {
	renderer, err := tags.NewRenderer()
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		Config:   cfg,
		Repo:     repo,
		Tags:     lib,
		Renderer: renderer,
		Metrics:  m,
		log:      log.WithComponent("server"),
	}, nil
}

// SetupRoutes configures HTTP routes for the server
func (s *Server) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.HandleHealth)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics.Handler())
	}

	// Target page fragments
	mux.HandleFunc("GET /targets/{id}/airmass", s.fragment("airmass", s.airmass))
	mux.HandleFunc("GET /targets/{id}/lightcurve", s.fragment("lightcurve", s.lightcurve))
	mux.HandleFunc("GET /targets/{id}/moon", s.fragment("moon", s.moon))
	mux.HandleFunc("GET /targets/{id}/spectra", s.fragment("spectra", s.spectra))
	mux.HandleFunc("GET /targets/{id}/aladin", s.fragment("aladin", s.aladin))
	mux.HandleFunc("GET /targets/{id}/classifications", s.fragment("classifications", s.classifications))
	mux.HandleFunc("GET /targets/{id}/sciencetags", s.fragment("sciencetags", s.scienceTags))
	mux.HandleFunc("GET /targets/{id}/upload", s.fragment("upload", s.targetUpload))
	mux.HandleFunc("GET /targets/{id}/dash-lightcurve", s.fragment("dash_lightcurve", s.dashLightcurve))
	mux.HandleFunc("GET /observations/{id}/upload", s.fragment("upload", s.observationUpload))
	mux.HandleFunc("GET /dataproducts/{id}/update", s.fragment("dataproduct_update", s.dataProductUpdate))

	// JSON values
	mux.HandleFunc("GET /targets/{id}/tags", s.value("target_tags", s.targetTags))
	mux.HandleFunc("GET /targets/{id}/extras/{key}", s.value("target_extra", s.targetExtra))
	mux.HandleFunc("GET /dataproducts/{id}/groups", s.value("dataproduct_groups", s.dataProductGroups))

	return mux
}

// recoveryLogger reports recovered panics through the service logger
type recoveryLogger struct {
	log *logger.Logger
}

func (r recoveryLogger) Println(v ...interface{}) {
	r.log.Error("recovered from panic", fmt.Errorf("%s", fmt.Sprint(v...)))
}

// Handler wraps the routes with panic recovery and, when accessLog is
// set, a combined-format access log
func (s *Server) Handler(accessLog io.Writer) http.Handler {
	var h http.Handler = s.SetupRoutes()
	if accessLog != nil {
		h = handlers.CombinedLoggingHandler(accessLog, h)
	}
	return handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{log: s.log}))(h)
}
