package compose

import (
	"bytes"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// RenderHTML converts the generated markdown body to HTML for the
// stored rich-text field. On conversion failure the raw markdown is
// returned so the article is never lost.
func RenderHTML(markdown string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return markdown
	}
	return buf.String()
}
