package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"

	"finitefield.org/hanko-blog/internal/loader"
	"finitefield.org/hanko-blog/internal/posts"
)

const (
	defaultDebounce   = 150 * time.Millisecond
	defaultDetailPath = "pagina2.html"

	cardsTemplate   = "cards"
	contentTemplate = "post_content"

	entranceStep = 100 * time.Millisecond
)

// Renderer turns posts into page markup using the parsed template set.
type Renderer struct {
	tmpl       *template.Template
	md         goldmark.Markdown
	policy     *bluemonday.Policy
	debounce   time.Duration
	detailPath string
	openPath   string
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithDebounce sets the click debounce window of the posts container trigger.
func WithDebounce(d time.Duration) Option {
	return func(r *Renderer) {
		if d >= 0 {
			r.debounce = d
		}
	}
}

// WithDetailPath sets the detail page path cards navigate to.
func WithDetailPath(p string) Option {
	return func(r *Renderer) {
		if p = strings.TrimLeft(strings.TrimSpace(p), "/"); p != "" {
			r.detailPath = p
		}
	}
}

// WithOpenPath sets the endpoint the posts container requests when a card is clicked.
func WithOpenPath(p string) Option {
	return func(r *Renderer) {
		if p = strings.TrimSpace(p); p != "" {
			r.openPath = p
		}
	}
}

// New builds a Renderer over tmpl, which must define the cards and post_content templates.
func New(tmpl *template.Template, opts ...Option) *Renderer {
	r := &Renderer{
		tmpl:       tmpl,
		// Raw HTML in descriptions is kept here and cleaned by the bluemonday policy.
		md:         goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe())),
		policy:     bluemonday.UGCPolicy(),
		debounce:   defaultDebounce,
		detailPath: defaultDetailPath,
		openPath:   OpenPath,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OpenPath is the default click dispatch endpoint. The clicked post travels as the postId parameter.
const OpenPath = "/posts/open"

// DetailURL builds the site-rooted detail page address for a post.
func DetailURL(detailPath string, id int) string {
	return "/" + strings.TrimLeft(detailPath, "/") + "?" + loader.PostIDParam + "=" + strconv.Itoa(id)
}

// Card is the view model for one post card.
type Card struct {
	ID        int
	Title     string
	Image     string
	Alt       string
	Delay     string
	DetailURL string
}

// Dispatch is the single click trigger installed on the posts container.
// One shared delay timer means only the most recent click on any card navigates.
type Dispatch struct {
	URL     string
	Trigger string
}

// Dispatch returns the container trigger for the configured endpoint and debounce window.
func (r *Renderer) Dispatch() Dispatch {
	return Dispatch{
		URL:     r.openPath,
		Trigger: "click[event.target.closest('.post')] delay:" + strconv.FormatInt(r.debounce.Milliseconds(), 10) + "ms",
	}
}

// CardsView is the data passed to the cards template.
type CardsView struct {
	Cards    []Card
	Fallback bool
}

// Cards builds the card view models for items in display order.
func (r *Renderer) Cards(items []posts.Summary, fallback bool) []Card {
	cards := make([]Card, 0, len(items))
	for i, item := range items {
		image := item.ThumbImage
		if strings.TrimSpace(image) == "" {
			image = PlaceholderImage
		}
		cards = append(cards, Card{
			ID:        item.ID,
			Title:     item.Title,
			Image:     image,
			Alt:       item.ThumbImageAltText,
			Delay:     strconv.FormatInt((time.Duration(i) * entranceStep).Milliseconds(), 10) + "ms",
			DetailURL: DetailURL(r.detailPath, item.ID),
		})
	}
	return cards
}

// Listing binds the renderer to the posts container.
func (r *Renderer) Listing(c *Container) loader.ListingRenderer {
	return &listingTarget{r: r, c: c}
}

type listingTarget struct {
	r *Renderer
	c *Container
}

func (t *listingTarget) RenderListing(items []posts.Summary, fallback bool) error {
	t.c.Reset()
	view := CardsView{Cards: t.r.Cards(items, fallback), Fallback: fallback}
	if err := t.r.execute(&t.c.buf, cardsTemplate, view); err != nil {
		t.c.Reset()
		return err
	}
	return nil
}

// ContentView is the data passed to the post_content template.
type ContentView struct {
	Title    string
	Body     template.HTML
	Author   string
	Date     string
	Fallback bool
}

// Detail binds the renderer to the detail page targets.
func (r *Renderer) Detail(t *DetailTarget) loader.DetailRenderer {
	if t.Content == nil {
		t.Content = NewContainer(PostContentID)
	}
	return &detailTarget{r: r, t: t}
}

type detailTarget struct {
	r *Renderer
	t *DetailTarget
}

func (d *detailTarget) RenderDetail(post posts.Detail, fallback bool) error {
	body, err := d.r.Markdown(post.Description)
	if err != nil {
		return err
	}
	image := post.ThumbImage
	if strings.TrimSpace(image) == "" {
		image = PlaceholderImage
	}

	d.t.DocumentTitle = ""
	if !fallback {
		d.t.DocumentTitle = "Post - " + post.Title
	}
	d.t.Title = post.Title
	d.t.Image = image
	d.t.Alt = post.ThumbImageAltText
	d.t.Fallback = fallback

	d.t.Content.Reset()
	view := ContentView{
		Title:    post.Title,
		Body:     body,
		Author:   post.ProfileName,
		Date:     post.PostDate,
		Fallback: fallback,
	}
	if err := d.r.execute(&d.t.Content.buf, contentTemplate, view); err != nil {
		d.t.Content.Reset()
		return err
	}
	return nil
}

// Markdown converts a post description to sanitised HTML.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	if strings.TrimSpace(src) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render: convert description: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

func (r *Renderer) execute(buf *bytes.Buffer, name string, data any) error {
	if r.tmpl == nil {
		return fmt.Errorf("render: templates not initialised")
	}
	if err := r.tmpl.ExecuteTemplate(buf, name, data); err != nil {
		return fmt.Errorf("render: execute %s: %w", name, err)
	}
	return nil
}
