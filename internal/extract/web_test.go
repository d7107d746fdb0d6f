package extract_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koopa0/secondbrain/internal/extract"
)

func TestWebStripsBoilerplate(t *testing.T) {
	html := `<html>
	<head>
		<title>My Notes</title>
		<style>body { color: red }</style>
		<script>console.log("tracking")</script>
	</head>
	<body>
		<nav>Home | About</nav>
		<header>Site Header</header>
		<p>First   paragraph
		with   ragged    whitespace.</p>
		<p>Second paragraph.</p>
		<footer>Copyright</footer>
	</body>
	</html>`

	page, err := extract.Web(strings.NewReader(html), "https://example.com/notes")
	require.NoError(t, err)

	assert.Equal(t, "My Notes", page.Title)
	assert.Equal(t, "First paragraph with ragged whitespace. Second paragraph.", page.Text)
	assert.NotContains(t, page.Text, "tracking")
	assert.NotContains(t, page.Text, "Home | About")
	assert.NotContains(t, page.Text, "Site Header")
	assert.NotContains(t, page.Text, "Copyright")
}

func TestWebTitleFallsBackToURL(t *testing.T) {
	page, err := extract.Web(strings.NewReader("<html><body><p>content</p></body></html>"), "https://example.com/page")
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/page", page.Title)
	assert.Equal(t, "content", page.Text)
}

func TestWebEmptyBody(t *testing.T) {
	page, err := extract.Web(strings.NewReader("<html><head><title>Empty</title></head><body></body></html>"), "fallback")
	require.NoError(t, err)

	assert.Equal(t, "Empty", page.Title)
	assert.Empty(t, page.Text)
}

func TestWebMalformedHTMLStillExtracts(t *testing.T) {
	// html.Parse is forgiving; unclosed tags must not fail extraction.
	page, err := extract.Web(strings.NewReader("<title>Loose</title><body><p>text without closing tags"), "fb")
	require.NoError(t, err)

	assert.Equal(t, "Loose", page.Title)
	assert.Contains(t, page.Text, "text without closing tags")
}
