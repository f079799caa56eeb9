package fake

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/enciclo/control"
)

// parseQuery reads the paged-list parameters out of a request body.
func parseQuery(body map[string]any) (control.Query, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return control.Query{}, err
	}
	var q control.Query
	if err := json.Unmarshal(b, &q); err != nil {
		return control.Query{}, fmt.Errorf("invalid query: %w", err)
	}
	if err := q.Validate(); err != nil {
		return control.Query{}, err
	}
	return q, nil
}

// page filters, sorts and slices the rows seeded for endpoint.
func (s *Server) page(endpoint string, q control.Query) ([]map[string]any, int) {
	s.mu.Lock()
	all := s.rows[endpoint]
	matched := make([]map[string]any, 0, len(all))
	for _, row := range all {
		if matches(row, q.Filter) {
			matched = append(matched, row)
		}
	}
	s.mu.Unlock()

	if field, desc, ok := parseOrder(q.Order); ok {
		sort.SliceStable(matched, func(i, j int) bool {
			c := compare(matched[i][field], matched[j][field])
			if desc {
				return c > 0
			}
			return c < 0
		})
	}

	total := len(matched)
	start := (q.Page - 1) * q.Items
	if start >= total {
		return []map[string]any{}, total
	}
	end := min(start+q.Items, total)
	return matched[start:end], total
}

func parseOrder(order string) (field string, desc bool, ok bool) {
	parts := strings.Fields(order)
	if len(parts) != 2 {
		return "", false, false
	}
	return parts[0], parts[1] == "desc", true
}

func matches(row map[string]any, filters map[string]control.Filter) bool {
	for field, f := range filters {
		if field == "global" {
			if !matchGlobal(row, f) {
				return false
			}
			continue
		}
		if !matchFilter(row[field], f) {
			return false
		}
	}
	return true
}

// matchGlobal passes when any string column satisfies the filter.
func matchGlobal(row map[string]any, f control.Filter) bool {
	if isEmpty(f.Value) {
		return true
	}
	for _, v := range row {
		if _, ok := v.(string); ok && matchOne(v, f.MatchMode, f.Value) {
			return true
		}
	}
	return false
}

func matchFilter(v any, f control.Filter) bool {
	if f.Operator == "" {
		return isEmpty(f.Value) || matchOne(v, f.MatchMode, f.Value)
	}
	active := 0
	hits := 0
	for _, c := range f.Constraints {
		if isEmpty(c.Value) {
			continue
		}
		active++
		if matchOne(v, c.MatchMode, c.Value) {
			hits++
		}
	}
	if active == 0 {
		return true
	}
	if f.Operator == control.OperatorOr {
		return hits > 0
	}
	return hits == active
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case []any:
		return len(x) == 0
	}
	return false
}

func matchOne(v any, mode string, want any) bool {
	got := strings.ToLower(fmt.Sprint(v))
	w := strings.ToLower(fmt.Sprint(want))
	switch mode {
	case control.MatchStartsWith:
		return strings.HasPrefix(got, w)
	case control.MatchContains:
		return strings.Contains(got, w)
	case control.MatchNotContain:
		return !strings.Contains(got, w)
	case control.MatchEndsWith:
		return strings.HasSuffix(got, w)
	case control.MatchEquals, control.MatchDateIs:
		return got == w
	case control.MatchNotEquals:
		return got != w
	case control.MatchIn:
		list, _ := want.([]any)
		for _, item := range list {
			if strings.ToLower(fmt.Sprint(item)) == got {
				return true
			}
		}
		return false
	case control.MatchLessThan, control.MatchDateBefore:
		return compare(v, want) < 0
	case control.MatchGreater, control.MatchDateAfter:
		return compare(v, want) > 0
	}
	return false
}

// compare orders numbers numerically and everything else as text.
func compare(a, b any) int {
	fa, aok := number(a)
	fb, bok := number(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}
