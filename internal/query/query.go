// Package query describes row selection for gateway collections: equality
// and pattern filters, ordering on one field and a result limit.
package query

import (
	"fmt"
	"strconv"
	"strings"
)

// Op is a filter comparison.
type Op string

const (
	OpEq    Op = "eq"
	OpNeq   Op = "neq"
	OpILike Op = "ilike"
)

// Filter compares one field against a value.
type Filter struct {
	Field string
	Op    Op
	Value string
}

// Query selects rows from a collection. The zero value selects everything in
// storage order.
type Query struct {
	Filters    []Filter
	OrderBy    string
	Descending bool
	Limit      int
}

// New returns an empty query.
func New() Query {
	return Query{}
}

// Eq adds an equality filter.
func (q Query) Eq(field, value string) Query {
	return q.with(Filter{Field: field, Op: OpEq, Value: value})
}

// Neq adds an inequality filter.
func (q Query) Neq(field, value string) Query {
	return q.with(Filter{Field: field, Op: OpNeq, Value: value})
}

// ILike adds a case-insensitive substring filter. The value is the bare
// substring, without wildcards.
func (q Query) ILike(field, substring string) Query {
	return q.with(Filter{Field: field, Op: OpILike, Value: substring})
}

// Order sets the ordering field.
func (q Query) Order(field string, descending bool) Query {
	q.OrderBy = field
	q.Descending = descending
	return q
}

// WithLimit caps the number of rows. Zero or negative means unlimited.
func (q Query) WithLimit(limit int) Query {
	if limit < 0 {
		limit = 0
	}
	q.Limit = limit
	return q
}

// Value returns the value of the first equality filter on field.
func (q Query) Value(field string) (string, bool) {
	for _, f := range q.Filters {
		if f.Field == field && f.Op == OpEq {
			return f.Value, true
		}
	}
	return "", false
}

func (q Query) with(f Filter) Query {
	filters := make([]Filter, len(q.Filters), len(q.Filters)+1)
	copy(filters, q.Filters)
	q.Filters = append(filters, f)
	return q
}

// Encode renders the query as URL parameters in the form
// field=op.value, order=field.asc|desc and limit=n.
func (q Query) Encode() map[string][]string {
	params := make(map[string][]string)
	for _, f := range q.Filters {
		params[f.Field] = append(params[f.Field], string(f.Op)+"."+f.Value)
	}
	if q.OrderBy != "" {
		direction := "asc"
		if q.Descending {
			direction = "desc"
		}
		params["order"] = []string{q.OrderBy + "." + direction}
	}
	if q.Limit > 0 {
		params["limit"] = []string{strconv.Itoa(q.Limit)}
	}
	return params
}

// Decode parses parameters produced by Encode. Parameters whose names are not
// in allowed are ignored.
func Decode(params map[string][]string, allowed ...string) (Query, error) {
	q := New()
	permitted := make(map[string]bool, len(allowed))
	for _, field := range allowed {
		permitted[field] = true
	}

	for name, values := range params {
		switch name {
		case "order":
			if len(values) == 0 {
				continue
			}
			field, direction, ok := strings.Cut(values[0], ".")
			if !ok || !permitted[field] {
				return Query{}, fmt.Errorf("query: invalid order %q", values[0])
			}
			switch direction {
			case "asc":
				q = q.Order(field, false)
			case "desc":
				q = q.Order(field, true)
			default:
				return Query{}, fmt.Errorf("query: invalid order direction %q", direction)
			}
		case "limit":
			if len(values) == 0 {
				continue
			}
			limit, err := strconv.Atoi(values[0])
			if err != nil || limit < 0 {
				return Query{}, fmt.Errorf("query: invalid limit %q", values[0])
			}
			q = q.WithLimit(limit)
		default:
			if !permitted[name] {
				continue
			}
			for _, raw := range values {
				op, value, ok := strings.Cut(raw, ".")
				if !ok {
					return Query{}, fmt.Errorf("query: invalid filter %s=%q", name, raw)
				}
				switch Op(op) {
				case OpEq, OpNeq, OpILike:
					q = q.with(Filter{Field: name, Op: Op(op), Value: value})
				default:
					return Query{}, fmt.Errorf("query: unsupported operator %q", op)
				}
			}
		}
	}
	return q, nil
}
