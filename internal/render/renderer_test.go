package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finitefield.org/hanko-blog/internal/posts"
	"finitefield.org/hanko-blog/internal/testutil"
)

func parseTemplates(t *testing.T) *template.Template {
	t.Helper()
	tmpl, err := ParseDir(testutil.RepoPath(t, "templates"))
	require.NoError(t, err)
	return tmpl
}

func remoteSummaries(n int) []posts.Summary {
	out := make([]posts.Summary, n)
	for i := range out {
		out[i] = posts.Summary{
			ID:                i + 1,
			Title:             fmt.Sprintf("Post %d", i+1),
			ThumbImage:        fmt.Sprintf("https://img.example.test/%d.jpg", i+1),
			ThumbImageAltText: fmt.Sprintf("Alt %d", i+1),
		}
	}
	return out
}

func renderListing(t *testing.T, r *Renderer, items []posts.Summary, fallback bool) *goquery.Document {
	t.Helper()
	c := NewContainer(PostsContainerID)
	require.NoError(t, r.Listing(c).RenderListing(items, fallback))
	return testutil.ParseFragment(t, string(c.HTML()))
}

func TestListingRendersCards(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t))

	doc := renderListing(t, r, remoteSummaries(3), false)

	cards := doc.Find(".post")
	require.Equal(t, 3, cards.Length())
	cards.Each(func(i int, card *goquery.Selection) {
		id := fmt.Sprint(i + 1)
		assert.Equal(t, id, card.AttrOr("data-post-id", ""))
		_, ownTrigger := card.Attr("hx-trigger")
		assert.False(t, ownTrigger, "cards share the container trigger")
		assert.Contains(t, card.AttrOr("style", ""), fmt.Sprintf("animation-delay: %dms", i*100))

		img := card.Find("img")
		assert.Equal(t, "https://img.example.test/"+id+".jpg", img.AttrOr("src", ""))
		assert.Equal(t, "Alt "+id, img.AttrOr("alt", ""))
		assert.Equal(t, "lazy", img.AttrOr("loading", ""))
		assert.Contains(t, img.AttrOr("onerror", ""), PlaceholderImage)

		assert.Equal(t, "Post "+id, card.Find(".post-texto p").Text())
		assert.Equal(t, "VER MAIS", strings.TrimSpace(card.Find(".btn-vermais").Text()))
	})
}

func TestListingFallbackCardsFallBackToPlaceholder(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t))

	doc := renderListing(t, r, posts.Fallback(), true)

	cards := doc.Find(".post")
	require.Equal(t, posts.ListingLimit, cards.Length())
	first := cards.First()
	assert.Equal(t, "1", first.AttrOr("data-post-id", ""))
	assert.Equal(t, "imagens/paris.jpg", first.Find("img").AttrOr("src", ""))
	assert.Contains(t, first.Find("img").AttrOr("onerror", ""), PlaceholderImage)
	assert.Equal(t, "8", cards.Last().AttrOr("data-post-id", ""))
}

func TestListingEmptyState(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t))

	doc := renderListing(t, r, nil, false)

	assert.Zero(t, doc.Find(".post").Length())
	assert.Equal(t, 1, doc.Find(".empty-state").Length())
}

func TestListingReplacesPriorContent(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t))
	c := NewContainer(PostsContainerID)
	target := r.Listing(c)

	require.NoError(t, target.RenderListing(remoteSummaries(5), false))
	require.NoError(t, target.RenderListing(remoteSummaries(2), false))

	doc := testutil.ParseFragment(t, string(c.HTML()))
	assert.Equal(t, 2, doc.Find(".post").Length())
}

func TestListingHonoursOptions(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t),
		WithDebounce(300*time.Millisecond),
		WithDetailPath("/artigo.html"),
		WithOpenPath("/go"),
	)

	cards := r.Cards(remoteSummaries(1), false)
	require.Len(t, cards, 1)
	assert.Equal(t, "/artigo.html?postId=1", cards[0].DetailURL)

	d := r.Dispatch()
	assert.Equal(t, "/go", d.URL)
	assert.Equal(t, "click[event.target.closest('.post')] delay:300ms", d.Trigger)
}

func TestDispatchDefaults(t *testing.T) {
	t.Parallel()
	d := New(nil).Dispatch()
	assert.Equal(t, OpenPath, d.URL)
	assert.Equal(t, "click[event.target.closest('.post')] delay:150ms", d.Trigger)
}

func TestCardsUsePlaceholderForMissingImage(t *testing.T) {
	t.Parallel()
	r := New(nil)
	cards := r.Cards([]posts.Summary{{ID: 1, Title: "x"}}, false)
	assert.Equal(t, PlaceholderImage, cards[0].Image)
}

func TestListingWithoutTemplates(t *testing.T) {
	t.Parallel()
	c := NewContainer(PostsContainerID)
	err := New(nil).Listing(c).RenderListing(remoteSummaries(1), false)
	require.Error(t, err)
	assert.Empty(t, c.HTML())
}

func TestDetailRendersRemotePost(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t))
	target := NewDetailTarget()

	err := r.Detail(target).RenderDetail(posts.Detail{
		Title:             "Tóquio",
		ThumbImage:        "https://img.example.test/3.jpg",
		ThumbImageAltText: "Tóquio à noite",
		Description:       "Luzes e **templos**.",
		ProfileName:       "Ana",
		PostDate:          "2024-03-01",
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Post - Tóquio", target.DocumentTitle)
	assert.Equal(t, "Tóquio", target.Title)
	assert.Equal(t, "https://img.example.test/3.jpg", target.Image)
	assert.Equal(t, "Tóquio à noite", target.Alt)
	assert.False(t, target.Fallback)

	doc := testutil.ParseFragment(t, string(target.Content.HTML()))
	text := doc.Text()
	assert.Contains(t, doc.Find("strong").Text(), "templos")
	assert.Contains(t, text, "Autor: Ana")
	assert.Contains(t, text, "Data: 2024-03-01")
	assert.Contains(t, text, "Sobre este artigo")
	assert.Contains(t, text, "Continue Explorando")
}

func TestDetailRendersFallbackPost(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t))
	target := NewDetailTarget()

	require.NoError(t, r.Detail(target).RenderDetail(posts.FallbackDetail(), true))

	assert.Empty(t, target.DocumentTitle)
	assert.Equal(t, "Paris: A Cidade Luz Que Encanta em Cada Esquina", target.Title)
	assert.Equal(t, "imagens/paris.jpg", target.Image)
	assert.Equal(t, "Paris", target.Alt)
	assert.True(t, target.Fallback)

	doc := testutil.ParseFragment(t, string(target.Content.HTML()))
	assert.Equal(t, 2, doc.Find("p").Length())
	assert.Contains(t, doc.Text(), "Paris: Amor à Primeira Vista")
	assert.Contains(t, doc.Text(), "Primeiras Impressões")
	assert.NotContains(t, doc.Text(), "Sobre este artigo")
	assert.NotContains(t, doc.Text(), "Autor:")
}

func TestDetailSanitisesDescription(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t))
	target := NewDetailTarget()

	err := r.Detail(target).RenderDetail(posts.Detail{
		Title:       "x",
		Description: `Olá <script>alert(1)</script> <img src=x onerror="alert(2)"> [link](javascript:alert(3))`,
	}, false)
	require.NoError(t, err)

	html := string(target.Content.HTML())
	assert.NotContains(t, html, "<script")
	assert.NotContains(t, html, "onerror")
	assert.NotContains(t, html, "javascript:")
	assert.Contains(t, html, "Olá")
}

func TestDetailFallbackAfterRemoteClearsTitle(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t))
	target := NewDetailTarget()
	detail := r.Detail(target)

	require.NoError(t, detail.RenderDetail(posts.Detail{Title: "Roma"}, false))
	require.Equal(t, "Post - Roma", target.DocumentTitle)
	require.NoError(t, detail.RenderDetail(posts.FallbackDetail(), true))
	assert.Empty(t, target.DocumentTitle)
}

func TestDetailKeepsSafeHTMLDescription(t *testing.T) {
	t.Parallel()
	r := New(parseTemplates(t))
	target := NewDetailTarget()

	err := r.Detail(target).RenderDetail(posts.Detail{
		Title:       "Roma",
		Description: `<p>Roma <strong>eterna</strong></p><h2>Coliseu</h2><ul><li>Fórum</li></ul>`,
	}, false)
	require.NoError(t, err)

	doc := testutil.ParseFragment(t, string(target.Content.HTML()))
	assert.Equal(t, "eterna", doc.Find("strong").Text())
	assert.Equal(t, "Coliseu", doc.Find("h2").Text())
	assert.Equal(t, "Fórum", doc.Find("li").Text())
	assert.NotContains(t, string(target.Content.HTML()), "raw HTML omitted")
}

func TestMarkdownMixedWithHTML(t *testing.T) {
	t.Parallel()
	out, err := New(nil).Markdown(`Praias de **Bali**

<em>imperdível</em> <span onclick="x()">sol</span>`)
	require.NoError(t, err)

	doc := testutil.ParseFragment(t, string(out))
	assert.Equal(t, "Bali", doc.Find("strong").Text())
	assert.Equal(t, "imperdível", doc.Find("em").Text())
	assert.NotContains(t, string(out), "onclick")
	assert.Contains(t, doc.Text(), "sol")
}

func TestDetailUsesPlaceholderForMissingImage(t *testing.T) {
	t.Parallel()
	target := NewDetailTarget()
	require.NoError(t, New(parseTemplates(t)).Detail(target).RenderDetail(posts.Detail{Title: "x"}, false))
	assert.Equal(t, PlaceholderImage, target.Image)
}

func TestTextRenderer(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	tr := TextRenderer{W: &buf}

	require.NoError(t, tr.RenderListing([]posts.Summary{
		{ID: 1, Title: "Paris:\n  Cidade Luz", ThumbImage: "imagens/paris.jpg"},
		{ID: 2, Title: "Brasil", ThumbImage: "imagens/brasil.jpg"},
	}, true))

	assert.Equal(t, "# fallback content\n1\tParis: Cidade Luz\timagens/paris.jpg\n2\tBrasil\timagens/brasil.jpg\n", buf.String())
}

func TestDetailURL(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "/pagina2.html?postId=4", DetailURL("pagina2.html", 4))
	assert.Equal(t, "/pagina2.html?postId=4", DetailURL("/pagina2.html", 4))
}
