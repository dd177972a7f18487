package testutil

import (
	"bytes"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

// ParseHTML parses the provided HTML payload into a goquery document for assertions.
func ParseHTML(t testing.TB, body []byte) *goquery.Document {
	t.Helper()

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

// ParseFragment wraps a markup fragment in a document body before parsing it.
func ParseFragment(t testing.TB, fragment string) *goquery.Document {
	t.Helper()
	return ParseHTML(t, []byte("<!DOCTYPE html><html><body>"+fragment+"</body></html>"))
}
