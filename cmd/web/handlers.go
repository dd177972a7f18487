package main

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"finitefield.org/hanko-blog/internal/handlers"
	"finitefield.org/hanko-blog/internal/httpx"
	"finitefield.org/hanko-blog/internal/loader"
	mw "finitefield.org/hanko-blog/internal/middleware"
	"finitefield.org/hanko-blog/internal/posts"
	"finitefield.org/hanko-blog/internal/render"
	"finitefield.org/hanko-blog/internal/requestctx"
)

// ListingHandler renders the landing page. Each request is one page lifetime with its own guard.
func (a *app) ListingHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tmpl, ok := a.loadTemplates(w, r)
	if !ok {
		return
	}

	renderer := a.renderer(tmpl)
	container := render.NewContainer(render.PostsContainerID)
	target := &listingOutcome{ListingRenderer: renderer.Listing(container)}
	listing := loader.NewListing(a.source,
		loader.WithLogger(requestctx.Logger(ctx)),
		loader.WithMetrics(a.metrics),
	)
	if err := listing.Load(ctx, target); err != nil {
		a.renderFailed(w, r, err)
		return
	}

	a.render(w, r, tmpl, handlers.BuildListingPage(a.cfg.Pages.Lang, r.URL.Path, container, renderer.Dispatch(), target.fallback))
}

// DetailHandler renders the single-post page for the postId query parameter.
func (a *app) DetailHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tmpl, ok := a.loadTemplates(w, r)
	if !ok {
		return
	}

	id := loader.RequestedID(r.URL.Query())
	target := render.NewDetailTarget()
	detail := loader.NewDetail(a.source,
		loader.WithLogger(requestctx.Logger(ctx)),
		loader.WithMetrics(a.metrics),
	)
	if err := detail.Load(ctx, id, a.renderer(tmpl).Detail(target)); err != nil {
		a.renderFailed(w, r, err)
		return
	}

	a.render(w, r, tmpl, handlers.BuildDetailPage(a.cfg.Pages.Lang, r.URL.Path, id, target))
}

// OpenPostHandler is the debounced click target of the posts container. It navigates to the
// detail page of the post named by the postId parameter.
func (a *app) OpenPostHandler(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get(loader.PostIDParam)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		httpx.WriteError(r.Context(), w, httpx.NewError("invalid_post_id", "post id must be a positive integer", http.StatusBadRequest).
			WithDetails(map[string]any{"post_id": raw}))
		return
	}
	requestctx.Logger(r.Context()).Debug("navigating to post", zap.Int("post_id", id))
	mw.Redirect(w, r, render.DetailURL(a.cfg.Pages.DetailPath, id))
}

// listingOutcome remembers whether the listing was drawn from fallback content.
type listingOutcome struct {
	loader.ListingRenderer
	fallback bool
}

func (l *listingOutcome) RenderListing(items []posts.Summary, fallback bool) error {
	l.fallback = fallback
	return l.ListingRenderer.RenderListing(items, fallback)
}

func (a *app) loadTemplates(w http.ResponseWriter, r *http.Request) (*template.Template, bool) {
	tmpl, err := a.templates()
	if err != nil {
		requestctx.Logger(r.Context()).Error("template parse failed", zap.Error(err))
		httpx.WriteError(r.Context(), w, httpx.NewError("template_error", "templates unavailable", http.StatusInternalServerError))
		return nil, false
	}
	return tmpl, true
}

func (a *app) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	requestctx.Logger(r.Context()).Error("page render failed", zap.Error(err))
	httpx.WriteError(r.Context(), w, httpx.NewError("render_failed", "page could not be rendered", http.StatusInternalServerError))
}

// render executes the base layout into a buffer so a failing template never sends a partial page.
func (a *app) render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		a.renderFailed(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
