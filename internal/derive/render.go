package derive

import (
	"bytes"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in the source is dropped by goldmark's default (unsafe disabled) renderer.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
)

// Render converts markdown to display HTML. On a conversion error the content
// is returned escaped inside a paragraph.
func Render(content string) string {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(content), &buf); err != nil {
		return "<p>" + html.EscapeString(content) + "</p>"
	}
	return buf.String()
}

// Excerpt extracts the visible text of rendered HTML, collapses whitespace
// and truncates it to at most limit runes.
func Excerpt(renderedHTML string, limit int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return ""
	}
	doc.Find("pre, script, style").Remove()

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if limit <= 0 {
		return text
	}
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return strings.TrimSpace(string(r[:limit])) + "..."
}
