package control

import (
	"encoding/json"
	"fmt"
)

// Filter match modes and operators, as the backend spells them.
const (
	MatchStartsWith = "startsWith"
	MatchContains   = "contains"
	MatchNotContain = "notContains"
	MatchEndsWith   = "endsWith"
	MatchEquals     = "equals"
	MatchNotEquals  = "notEquals"
	MatchIn         = "in"
	MatchLessThan   = "lt"
	MatchGreater    = "gt"
	MatchDateIs     = "dateIs"
	MatchDateBefore = "dateBefore"
	MatchDateAfter  = "dateAfter"

	OperatorAnd = "and"
	OperatorOr  = "or"
)

// Query is the paged-list parameter shape shared by every list endpoint.
// It is derived from table state on each request and never stored.
type Query struct {
	Page   int               `json:"page"`  // 1-based
	Items  int               `json:"items"` // rows per page
	Filter map[string]Filter `json:"filter"`
	Order  string            `json:"order"` // "<field> asc|desc", empty = backend default
}

// MarshalJSON always sends filter as an object and sends order as null
// when there is no sort.
func (q Query) MarshalJSON() ([]byte, error) {
	w := struct {
		Page   int               `json:"page"`
		Items  int               `json:"items"`
		Filter map[string]Filter `json:"filter"`
		Order  *string           `json:"order"`
	}{Page: q.Page, Items: q.Items, Filter: q.Filter}
	if w.Filter == nil {
		w.Filter = map[string]Filter{}
	}
	if q.Order != "" {
		w.Order = &q.Order
	}
	return json.Marshal(w)
}

// Validate checks that Page and Items are usable.
func (q Query) Validate() error {
	if q.Page < 1 {
		return fmt.Errorf("page must be >= 1, got %d: %w", q.Page, ErrValidation)
	}
	if q.Items <= 0 {
		return fmt.Errorf("items must be > 0, got %d: %w", q.Items, ErrValidation)
	}
	return nil
}

// Constraint is one predicate inside an operator filter.
type Constraint struct {
	Value     any    `json:"value"`
	MatchMode string `json:"matchMode"`
}

// Filter is a column predicate. It has two wire shapes:
//
//	{"value": ..., "matchMode": "contains"}
//	{"operator": "and", "constraints": [{"value": ..., "matchMode": ...}]}
//
// The second is used whenever Operator is set.
type Filter struct {
	Value       any
	MatchMode   string
	Operator    string
	Constraints []Constraint
}

// Match returns a single-predicate filter.
func Match(mode string, value any) Filter {
	return Filter{MatchMode: mode, Value: value}
}

// All returns an operator filter combining constraints.
func All(operator string, constraints ...Constraint) Filter {
	return Filter{Operator: operator, Constraints: constraints}
}

type operatorFilter struct {
	Operator    string       `json:"operator"`
	Constraints []Constraint `json:"constraints"`
}

// MarshalJSON emits the shape selected by Operator.
func (f Filter) MarshalJSON() ([]byte, error) {
	if f.Operator != "" {
		cs := f.Constraints
		if cs == nil {
			cs = []Constraint{}
		}
		return json.Marshal(operatorFilter{Operator: f.Operator, Constraints: cs})
	}
	return json.Marshal(Constraint{Value: f.Value, MatchMode: f.MatchMode})
}

// UnmarshalJSON accepts either wire shape.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var probe struct {
		Operator    *string      `json:"operator"`
		Constraints []Constraint `json:"constraints"`
		Value       any          `json:"value"`
		MatchMode   string       `json:"matchMode"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Operator != nil {
		*f = Filter{Operator: *probe.Operator, Constraints: probe.Constraints}
		return nil
	}
	*f = Filter{Value: probe.Value, MatchMode: probe.MatchMode}
	return nil
}

// DefaultFilters are the filters list screens start with: a global
// "contains" search and a "starts with" match on user.
func DefaultFilters() map[string]Filter {
	return map[string]Filter{
		"global": Match(MatchContains, nil),
		"user":   All(OperatorAnd, Constraint{MatchMode: MatchStartsWith}),
	}
}
