package lipgloss

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/enciclo/control/datatable"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// DefaultCellWidth caps cells of columns that set no Width.
const DefaultCellWidth = 32

// EmptyMessage is shown under the header of a page with no rows.
const EmptyMessage = "No records found"

// Column is one rendered column. Field is the JSON name of the value in
// the row.
type Column struct {
	Title string
	Field string
	Width int
	Right bool
}

// Table renders rows under cols. Rows are addressed through their JSON
// encoding, so any row type with JSON tags can be shown. Without cols, the
// columns are the fields of the first row in alphabetical order.
func Table[T any](cols []Column, rows []T, styles Styles) (string, error) {
	decoded := make([]map[string]any, len(rows))
	for i, row := range rows {
		fields, err := fieldsOf(row)
		if err != nil {
			return "", err
		}
		decoded[i] = fields
	}
	if len(cols) == 0 && len(decoded) > 0 {
		cols = ColumnsOf(decoded[0])
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Title
	}
	cells := make([][]string, 0, len(decoded))
	for _, fields := range decoded {
		line := make([]string, len(cols))
		for i, c := range cols {
			w := c.Width
			if w <= 0 {
				w = DefaultCellWidth
			}
			line[i] = Truncate(Cell(fields[c.Field]), w)
		}
		cells = append(cells, line)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.Border).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return s.Inherit(styles.Header)
			}
			if col < len(cols) && cols[col].Right {
				s = s.Align(lipgloss.Right)
			}
			return s
		})
	out := t.Render()
	if len(rows) == 0 {
		out += "\n" + styles.Muted.Render(EmptyMessage)
	}
	return out, nil
}

// ColumnsOf returns one column per field, titled by the field name, in
// alphabetical order.
func ColumnsOf(fields map[string]any) []Column {
	names := slices.Sorted(maps.Keys(fields))
	cols := make([]Column, len(names))
	for i, n := range names {
		_, numeric := fields[n].(float64)
		cols[i] = Column{Title: n, Field: n, Right: numeric}
	}
	return cols
}

func fieldsOf(row any) (map[string]any, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, fmt.Errorf("row is not an object: %w", err)
	}
	return fields, nil
}

// Cell formats a decoded JSON value for display.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.Join(strings.Fields(x), " ")
	case bool:
		if x {
			return "✓"
		}
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = Cell(item)
		}
		return strings.Join(parts, ", ")
	}
	b, _ := json.Marshal(v)
	return string(b)
}

// Truncate shortens s to at most width terminal cells, marking the cut with
// an ellipsis. Wide runes and grapheme clusters are measured as the
// terminal draws them.
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}

// Pager summarizes the page a state selects out of total rows.
func Pager(s datatable.State, total int, styles Styles) string {
	if total == 0 {
		return styles.Muted.Render("Showing 0 entries")
	}
	q := s.Query()
	pages := 1
	if s.Rows > 0 {
		pages = (total + s.Rows - 1) / s.Rows
	}
	from := s.First + 1
	to := min(s.First+s.Rows, total)
	line := fmt.Sprintf("Showing %d to %d of %d entries · page %d/%d", from, to, total, q.Page, pages)
	if q.Order != "" {
		line += " · sorted by " + q.Order
	}
	return styles.Muted.Render(line)
}
