package handlers

import (
	"finitefield.org/hanko-blog/internal/render"
)

const (
	SiteName    = "Blog de Viagens"
	DefaultLang = "pt-BR"

	PageListing = "listing"
	PageDetail  = "detail"
)

// SEOData carries the meta tags rendered by the shared layout.
type SEOData struct {
	Title       string
	Description string
	Canonical   string
}

// ListingPage is the view model for the landing page.
type ListingPage struct {
	Title    string
	SiteName string
	Lang     string
	Page     string
	Path     string
	SEO      SEOData

	Heading  string
	Message  string
	Posts    *render.Container
	Dispatch render.Dispatch
	Fallback bool
}

// BuildListingPage constructs the landing page view model around a rendered posts container
// and the click trigger it carries.
func BuildListingPage(lang, path string, posts *render.Container, dispatch render.Dispatch, fallback bool) ListingPage {
	return ListingPage{
		Title:    SiteName,
		SiteName: SiteName,
		Lang:     langOrDefault(lang),
		Page:     PageListing,
		Path:     path,
		SEO: SEOData{
			Title:       SiteName,
			Description: "Destinos, roteiros e dicas de viagem ao redor do mundo.",
			Canonical:   "/",
		},
		Heading:  "Últimos posts",
		Message:  "Inspire-se para a sua próxima viagem.",
		Posts:    posts,
		Dispatch: dispatch,
		Fallback: fallback,
	}
}

// DetailPage is the view model for the single-post page.
type DetailPage struct {
	Title    string
	SiteName string
	Lang     string
	Page     string
	Path     string
	SEO      SEOData

	PostID string
	Post   *render.DetailTarget
}

// BuildDetailPage constructs the detail page view model from a filled detail target.
func BuildDetailPage(lang, path, postID string, post *render.DetailTarget) DetailPage {
	title := post.DocumentTitle
	if title == "" {
		title = SiteName
	}
	return DetailPage{
		Title:    title,
		SiteName: SiteName,
		Lang:     langOrDefault(lang),
		Page:     PageDetail,
		Path:     path,
		SEO: SEOData{
			Title:       title,
			Description: post.Title,
		},
		PostID: postID,
		Post:   post,
	}
}

func langOrDefault(lang string) string {
	if lang == "" {
		return DefaultLang
	}
	return lang
}
