package goldmark

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/enciclo/control"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

var (
	htmlTag   = regexp.MustCompile(`<[^>]*>`)
	htmlBreak = regexp.MustCompile(`(?i)<br\s*/?>`)
)

type renderer struct {
	source []byte
	width  int

	heading lipgloss.Style
	strong  lipgloss.Style
	italic  lipgloss.Style
	strike  lipgloss.Style
	code    lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style
	border  lipgloss.Style

	refs  []string
	index map[string]int
}

func newRenderer(theme control.Theme, source []byte, width int) *renderer {
	return &renderer{
		source:  source,
		width:   width,
		heading: lipgloss.NewStyle().Foreground(color(theme.Header)).Bold(true),
		strong:  lipgloss.NewStyle().Bold(true),
		italic:  lipgloss.NewStyle().Italic(true),
		strike:  lipgloss.NewStyle().Strikethrough(true),
		code:    lipgloss.NewStyle().Foreground(color(theme.Accent)),
		link:    lipgloss.NewStyle().Foreground(color(theme.Accent)).Underline(true),
		muted:   lipgloss.NewStyle().Foreground(color(theme.Muted)).Faint(true),
		border:  lipgloss.NewStyle().Foreground(color(theme.Border)),
		index:   make(map[string]int),
	}
}

func color(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) document(doc ast.Node) string {
	var b strings.Builder
	r.blocks(doc, r.width, &b)
	out := strings.TrimRight(b.String(), "\n")
	if len(r.refs) > 0 {
		out += "\n\n" + r.sources()
	}
	return out
}

// blocks renders the children of parent separated by blank lines.
func (r *renderer) blocks(parent ast.Node, width int, b *strings.Builder) {
	for c := parent.FirstChild(); c != nil; c = c.NextSibling() {
		before := b.Len()
		r.block(c, width, b)
		if b.Len() > before && c.NextSibling() != nil {
			b.WriteString("\n")
		}
	}
}

func (r *renderer) block(node ast.Node, width int, b *strings.Builder) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		b.WriteString(wrap(r.inline(n), width))
		b.WriteString("\n")

	case *ast.Heading:
		style := r.strong
		if n.Level <= 2 {
			style = r.heading
		}
		b.WriteString(wrap(style.Render(r.inline(n)), width))
		b.WriteString("\n")

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(r.source)); lang != "" {
			b.WriteString(r.muted.Render(lang))
			b.WriteString("\n")
		}
		r.codeLines(n, b)

	case *ast.CodeBlock:
		r.codeLines(n, b)

	case *ast.Blockquote:
		var inner strings.Builder
		r.blocks(n, max(width-2, 10), &inner)
		gutter := r.border.Render("│") + " "
		for _, line := range strings.Split(strings.TrimRight(inner.String(), "\n"), "\n") {
			b.WriteString(gutter + line + "\n")
		}

	case *ast.List:
		r.list(n, width, b, 0)

	case *ast.ThematicBreak:
		b.WriteString(r.border.Render(strings.Repeat("─", min(width, 40))))
		b.WriteString("\n")

	case *ast.HTMLBlock:
		var raw strings.Builder
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			raw.Write(seg.Value(r.source))
		}
		if text := stripHTML(raw.String()); text != "" {
			b.WriteString(wrap(text, width))
			b.WriteString("\n")
		}

	case *east.Table:
		b.WriteString(r.table(n, width))
		b.WriteString("\n")

	default:
		r.blocks(node, width, b)
	}
}

func (r *renderer) codeLines(n ast.Node, b *strings.Builder) {
	gutter := r.border.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.WriteString(gutter + strings.TrimRight(string(seg.Value(r.source)), "\n") + "\n")
	}
}

func (r *renderer) list(n *ast.List, width int, b *strings.Builder, depth int) {
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		prefix := strings.Repeat("  ", depth) + marker

		var content []string
		flush := func() {
			if len(content) == 0 {
				return
			}
			writeHanging(b, prefix, strings.Join(content, " "), width)
			prefix = strings.Repeat(" ", lipgloss.Width(prefix))
			content = nil
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				content = append(content, r.inline(in))
			case *ast.List:
				flush()
				r.list(in, width, b, depth+1)
			default:
				flush()
				var nested strings.Builder
				r.block(in, max(width-lipgloss.Width(prefix), 10), &nested)
				writeHanging(b, prefix, strings.TrimRight(nested.String(), "\n"), 0)
				prefix = strings.Repeat(" ", lipgloss.Width(prefix))
			}
		}
		flush()
	}
}

// writeHanging writes content after prefix and indents every following line
// by the width of prefix. A zero width writes content without wrapping.
func writeHanging(b *strings.Builder, prefix, content string, width int) {
	pad := lipgloss.Width(prefix)
	if width > 0 {
		content = wrap(content, max(width-pad, 10))
	}
	indent := strings.Repeat(" ", pad)
	for i, line := range strings.Split(content, "\n") {
		if i == 0 {
			b.WriteString(prefix + line + "\n")
			continue
		}
		b.WriteString(indent + line + "\n")
	}
}

func (r *renderer) table(n *east.Table, width int) string {
	var headers []string
	var rows [][]string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		var cells []string
		for cell := c.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, r.inline(cell))
		}
		if _, ok := c.(*east.TableHeader); ok {
			headers = cells
			continue
		}
		rows = append(rows, cells)
	}
	aligns := n.Alignments
	header := r.heading
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Inherit(header)
			}
			if col < len(aligns) {
				switch aligns[col] {
				case east.AlignRight:
					s = s.Align(lipgloss.Right)
				case east.AlignCenter:
					s = s.Align(lipgloss.Center)
				}
			}
			return s
		})
	out := t.Render()
	if lipgloss.Width(out) > width {
		out = t.Width(width).Render()
	}
	return out
}

// inline renders the inline children of node.
func (r *renderer) inline(node ast.Node) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.span(c, &b)
	}
	return b.String()
}

func (r *renderer) span(node ast.Node, b *strings.Builder) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.source))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}

	case *ast.String:
		b.Write(n.Value)

	case *ast.Emphasis:
		if n.Level == 1 {
			b.WriteString(r.italic.Render(r.inline(n)))
			return
		}
		b.WriteString(r.strong.Render(r.inline(n)))

	case *east.Strikethrough:
		b.WriteString(r.strike.Render(r.inline(n)))

	case *ast.CodeSpan:
		b.WriteString(r.code.Render(r.inline(n)))

	case *ast.Link:
		b.WriteString(r.link.Render(r.inline(n)))
		b.WriteString(r.muted.Render(r.cite(string(n.Destination))))

	case *ast.Image:
		alt := r.inline(n)
		if alt == "" {
			alt = "image"
		}
		b.WriteString(r.link.Render(alt))
		b.WriteString(r.muted.Render(r.cite(string(n.Destination))))

	case *ast.AutoLink:
		b.WriteString(r.link.Render(string(n.URL(r.source))))

	case *ast.RawHTML:
		var raw strings.Builder
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			raw.Write(seg.Value(r.source))
		}
		if htmlBreak.MatchString(raw.String()) {
			b.WriteByte('\n')
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.span(c, b)
		}
	}
}

// cite returns the reference marker for dest, numbering it on first use.
func (r *renderer) cite(dest string) string {
	i, ok := r.index[dest]
	if !ok {
		r.refs = append(r.refs, dest)
		i = len(r.refs)
		r.index[dest] = i
	}
	return fmt.Sprintf("[%d]", i)
}

func (r *renderer) sources() string {
	var b strings.Builder
	b.WriteString(r.muted.Render("Sources"))
	for i, ref := range r.refs {
		b.WriteString("\n")
		b.WriteString(r.muted.Render(fmt.Sprintf("[%d]", i+1)))
		b.WriteString(" ")
		b.WriteString(ref)
	}
	return b.String()
}

// wrap word-wraps s to width without the trailing padding lipgloss adds.
func wrap(s string, width int) string {
	lines := strings.Split(lipgloss.NewStyle().Width(width).Render(s), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}

func stripHTML(s string) string {
	s = htmlBreak.ReplaceAllString(s, "\n")
	s = htmlTag.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
