package render

import (
	"bytes"
	"html/template"
)

// DOM ids the page templates expose to the renderer.
const (
	PostsContainerID = "posts-container"
	PostTitleID      = "post-title"
	PostImageID      = "post-image"
	PostContentID    = "post-content"
)

// PlaceholderImage replaces missing or broken post images.
const PlaceholderImage = "imagens/tecn.svg"

// Container is a named region of a page whose markup is rebuilt on every render.
type Container struct {
	id  string
	buf bytes.Buffer
}

// NewContainer returns an empty container for the given DOM id.
func NewContainer(id string) *Container {
	return &Container{id: id}
}

// ID returns the DOM id of the container.
func (c *Container) ID() string { return c.id }

// Reset discards previously rendered markup.
func (c *Container) Reset() { c.buf.Reset() }

// HTML returns the rendered markup. It is produced by trusted templates only.
func (c *Container) HTML() template.HTML {
	return template.HTML(c.buf.String())
}

// DetailTarget holds the regions of the detail page filled by a detail render.
type DetailTarget struct {
	// DocumentTitle is left empty for fallback content so the page keeps the site title.
	DocumentTitle string
	Title         string
	Image         string
	Alt           string
	Fallback      bool
	Content       *Container
}

// NewDetailTarget returns an empty target bound to the post-content container.
func NewDetailTarget() *DetailTarget {
	return &DetailTarget{Content: NewContainer(PostContentID)}
}
