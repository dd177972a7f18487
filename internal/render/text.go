package render

import (
	"fmt"
	"io"
	"strings"

	"finitefield.org/hanko-blog/internal/posts"
)

// TextRenderer writes posts as plain text lines for terminal output.
type TextRenderer struct {
	W io.Writer
}

// RenderListing writes one tab-separated line per card: id, title, image.
func (t TextRenderer) RenderListing(items []posts.Summary, fallback bool) error {
	if fallback {
		if _, err := fmt.Fprintln(t.W, "# fallback content"); err != nil {
			return err
		}
	}
	for _, item := range items {
		if _, err := fmt.Fprintf(t.W, "%d\t%s\t%s\n", item.ID, oneLine(item.Title), item.ThumbImage); err != nil {
			return err
		}
	}
	return nil
}

// RenderDetail writes the post header followed by its raw description.
func (t TextRenderer) RenderDetail(d posts.Detail, fallback bool) error {
	if fallback {
		if _, err := fmt.Fprintln(t.W, "# fallback content"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(t.W, "%s\n%s\t%s\n\n%s\n", oneLine(d.Title), d.ProfileName, d.PostDate, strings.TrimSpace(d.Description))
	return err
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
