// Package site serves the Ayra landing page, its JSON API and the playback
// websocket.
package site

import (
	"embed"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/carousel"
	"github.com/ayrahq/ayra/internal/clock"
	"github.com/ayrahq/ayra/internal/events"
	"github.com/ayrahq/ayra/internal/logging"
	"github.com/ayrahq/ayra/internal/metrics"
	"github.com/ayrahq/ayra/internal/models"
	"github.com/ayrahq/ayra/internal/playback"
	"github.com/ayrahq/ayra/internal/preferences"
	"github.com/ayrahq/ayra/internal/scenarios"
	"github.com/ayrahq/ayra/internal/waitlist"
)

//go:embed static/*
var staticFS embed.FS

// Deps are the services the site handlers use.
type Deps struct {
	Catalog  *scenarios.Catalog
	Themes   *preferences.ThemeStore
	Waitlist *waitlist.Service

	// Events receives demo and playback audit events. Nil disables them.
	Events events.Repository

	// Metrics is optional; nil disables /metrics and request metrics.
	Metrics *metrics.Collector

	Playback   playback.Config
	ReplyDelay time.Duration
	Slides     []models.Slide
	Autoplay   bool
	Interval   time.Duration

	// AllowedOrigins restricts websocket upgrades. Empty allows same-host only.
	AllowedOrigins []string

	Clock  clock.Clock
	Logger *zerolog.Logger
}

type handlers struct {
	deps   Deps
	logger zerolog.Logger
}

// NewRouter builds the HTTP handler for the landing site.
func NewRouter(deps Deps) http.Handler {
	if deps.Events == nil {
		deps.Events = events.Discard
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real()
	}
	if deps.Interval <= 0 {
		deps.Interval = carousel.DefaultInterval
	}

	logger := logging.Component("site")
	if deps.Logger != nil {
		logger = *deps.Logger
	}
	h := &handlers{deps: deps, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(recovery(logger))
	r.Use(requestLogger(logger, deps.Metrics))

	r.Get("/", h.landing)
	r.Post("/theme/toggle", h.toggleThemeForm)
	r.Post("/waitlist", h.joinWaitlistForm)
	r.Post("/demo", h.demoForm)

	r.Route("/api", func(api chi.Router) {
		api.Get("/scenarios", h.listScenarios)
		api.Get("/scenarios/{name}", h.getScenario)
		api.Post("/demo/ask", h.askDemo)
		api.Get("/theme", h.getTheme)
		api.Put("/theme", h.putTheme)
	})

	r.Get("/ws/playback", h.playbackSocket)
	r.Get("/healthz", health)

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	static, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Error: "not found"})
	})

	return r
}
