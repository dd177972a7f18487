package posts

import (
	"errors"
	"fmt"
)

// ListingLimit caps how many summaries the landing page ever displays.
const ListingLimit = 8

// Summary is the short post representation shown as a card on the landing page.
type Summary struct {
	// ID is the identifier used for navigation to the detail page.
	ID                int    `json:"-" yaml:"id"`
	Title             string `json:"title" yaml:"title"`
	ThumbImage        string `json:"thumbImage" yaml:"thumbImage"`
	ThumbImageAltText string `json:"thumbImageAltText" yaml:"thumbImageAltText"`
}

// Detail is the full post representation rendered on the single-post page.
type Detail struct {
	Title             string `json:"title" yaml:"title"`
	ThumbImage        string `json:"thumbImage" yaml:"thumbImage"`
	ThumbImageAltText string `json:"thumbImageAltText" yaml:"thumbImageAltText"`
	Description       string `json:"description" yaml:"description"`
	ProfileName       string `json:"profileName" yaml:"profileName"`
	PostDate          string `json:"postDate" yaml:"postDate"`
}

// ErrUnusable is returned when the blog API answers successfully with a body that cannot be used.
var ErrUnusable = errors.New("posts: unusable response")

// StatusError reports a non-2xx answer from the blog API.
type StatusError struct {
	Resource string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("posts: %s returned status %d", e.Resource, e.Code)
}

// Truncate returns at most ListingLimit summaries, sharing no backing array with items.
func Truncate(items []Summary) []Summary {
	n := len(items)
	if n > ListingLimit {
		n = ListingLimit
	}
	out := make([]Summary, n)
	copy(out, items[:n])
	return out
}
