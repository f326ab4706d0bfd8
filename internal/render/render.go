// Package render turns answer text into HTML for the chat page.
package render

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Raw HTML in answers is dropped; line breaks are kept.
var md = goldmark.New(
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// Markdown renders text as HTML, falling back to the escaped text.
func Markdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}
