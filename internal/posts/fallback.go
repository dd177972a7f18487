package posts

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackDocument struct {
	Summaries []Summary `yaml:"summaries"`
	Detail    Detail    `yaml:"detail"`
}

var fallbackContent = mustLoadFallback(fallbackYAML)

func mustLoadFallback(data []byte) fallbackDocument {
	doc, err := parseFallback(data)
	if err != nil {
		panic(err)
	}
	return doc
}

func parseFallback(data []byte) (fallbackDocument, error) {
	var doc fallbackDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fallbackDocument{}, fmt.Errorf("posts: parse fallback content: %w", err)
	}
	if len(doc.Summaries) != ListingLimit {
		return fallbackDocument{}, fmt.Errorf("posts: fallback content has %d summaries, want %d", len(doc.Summaries), ListingLimit)
	}
	for i, s := range doc.Summaries {
		if s.ID <= 0 || s.Title == "" {
			return fallbackDocument{}, fmt.Errorf("posts: fallback summary %d is missing id or title", i)
		}
	}
	if doc.Detail.Title == "" {
		return fallbackDocument{}, fmt.Errorf("posts: fallback detail is missing a title")
	}
	return doc, nil
}

// Fallback returns a copy of the fixed summaries shown when the listing cannot be fetched.
func Fallback() []Summary {
	out := make([]Summary, len(fallbackContent.Summaries))
	copy(out, fallbackContent.Summaries)
	return out
}

// FallbackDetail returns the fixed post shown when a detail cannot be fetched.
func FallbackDetail() Detail {
	return fallbackContent.Detail
}
