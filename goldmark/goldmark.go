// Package goldmark renders chat answers and wiki pages to ANSI-styled
// terminal output using goldmark for parsing and lipgloss for styling.
//
// Links are not printed inline. Each distinct destination gets a number and
// is listed once under a trailing "Sources" block, which keeps answers that
// cite many repository documents readable in a narrow terminal.
package goldmark

import (
	"github.com/enciclo/control"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// DefaultWidth is used when Render is given a non-positive width.
const DefaultWidth = 80

var markdown = goldmark.New(goldmark.WithExtensions(
	extension.Table,
	extension.Strikethrough,
	extension.Linkify,
))

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs, quotes and list items are word-wrapped to width. Code blocks
// are rendered without reflow.
func Render(source string, width int, theme control.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = DefaultWidth
	}
	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))
	r := newRenderer(theme, src, width)
	return r.document(doc)
}

// Links returns the distinct link destinations in source in order of first
// appearance.
func Links(source string) []string {
	src := []byte(source)
	doc := markdown.Parser().Parse(text.NewReader(src))
	r := newRenderer(control.DefaultTheme(), src, DefaultWidth)
	_ = r.document(doc)
	return r.refs
}
