package main

import (
	"fmt"
	"html/template"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/config"
	mw "finitefield.org/hanko-blog/internal/middleware"
	"finitefield.org/hanko-blog/internal/observability"
	"finitefield.org/hanko-blog/internal/posts"
	"finitefield.org/hanko-blog/internal/render"
)

const requestTimeout = 30 * time.Second

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	source   posts.Source
	// tmplCache is nil in dev mode, where templates are reparsed per request.
	tmplCache *template.Template
}

func newApp(cfg config.Config, logger *zap.Logger, registry *prometheus.Registry) (*app, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		metrics:  metrics,
		source:   newSource(cfg, metrics),
	}
	if !cfg.Server.DevMode {
		tc, err := render.ParseDir(cfg.Pages.TemplatesDir)
		if err != nil {
			return nil, fmt.Errorf("parse templates: %w", err)
		}
		a.tmplCache = tc
	}
	return a, nil
}

// newSource builds the upstream client, wrapped in the response cache when a TTL is configured.
func newSource(cfg config.Config, metrics *observability.Metrics) posts.Source {
	client := posts.NewClient(cfg.Upstream.BaseURL,
		posts.WithTimeout(cfg.Upstream.Timeout),
		posts.WithMetrics(metrics),
	)
	if cfg.Upstream.CacheTTL > 0 {
		return posts.NewCachedSource(client, cfg.Upstream.CacheTTL)
	}
	return client
}

func (a *app) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TraceMiddleware)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP.
	r.Use(middleware.RealIP)
	r.Use(mw.HTMX)
	r.Use(observability.InjectLoggerMiddleware(a.logger))
	r.Use(observability.RequestLoggerMiddleware)
	r.Use(observability.RecoveryMiddleware(a.logger))
	r.Use(middleware.Compress(5))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	r.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	publicDir := a.cfg.Pages.PublicDir
	r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(publicDir, "assets"))))
	r.Handle("/imagens/*", http.StripPrefix("/imagens", mw.AssetsWithCache(filepath.Join(publicDir, "imagens"))))

	r.Get("/", a.ListingHandler)
	r.Get("/index.html", a.ListingHandler)
	r.Get("/"+a.cfg.Pages.DetailPath, a.DetailHandler)
	r.Get(render.OpenPath, a.OpenPostHandler)
	return r
}

// templates returns the parsed template set. In dev mode, templates are reparsed on each call.
func (a *app) templates() (*template.Template, error) {
	if a.cfg.Server.DevMode {
		return render.ParseDir(a.cfg.Pages.TemplatesDir)
	}
	if a.tmplCache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	return a.tmplCache, nil
}

func (a *app) renderer(tmpl *template.Template) *render.Renderer {
	return render.New(tmpl,
		render.WithDebounce(a.cfg.Pages.ClickDebounce),
		render.WithDetailPath(a.cfg.Pages.DetailPath),
	)
}
