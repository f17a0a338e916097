package sqlstore

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/example/eventhub/internal/persistence"
	"github.com/example/eventhub/internal/query"
)

// collection maps the field names clients filter on to SQL column
// expressions. Only listed fields can be filtered or ordered.
type collection struct {
	fields   map[string]string
	tiebreak string
}

// where renders the query filters as a WHERE clause.
func (c collection) where(q query.Query) (string, []any, error) {
	if len(q.Filters) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(q.Filters))
	args := make([]any, 0, len(q.Filters))
	for _, filter := range q.Filters {
		column, ok := c.fields[filter.Field]
		if !ok {
			return "", nil, fmt.Errorf("%w: unknown field %q", persistence.ErrInvalidQuery, filter.Field)
		}
		switch filter.Op {
		case query.OpEq:
			clauses = append(clauses, column+" = ?")
			args = append(args, filter.Value)
		case query.OpNeq:
			clauses = append(clauses, column+" <> ?")
			args = append(args, filter.Value)
		case query.OpILike:
			clauses = append(clauses, "LOWER("+column+`) LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(strings.ToLower(filter.Value))+"%")
		default:
			return "", nil, fmt.Errorf("%w: unsupported operator %q", persistence.ErrInvalidQuery, filter.Op)
		}
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// suffix renders ORDER BY and LIMIT. Rows are always ordered so that results
// are stable; the tiebreak column applies when no order is requested.
func (c collection) suffix(q query.Query) (string, error) {
	var b strings.Builder
	b.WriteString(" ORDER BY ")
	if q.OrderBy != "" {
		column, ok := c.fields[q.OrderBy]
		if !ok {
			return "", fmt.Errorf("%w: unknown order field %q", persistence.ErrInvalidQuery, q.OrderBy)
		}
		b.WriteString(column)
		if q.Descending {
			b.WriteString(" DESC")
		}
		b.WriteString(", ")
	}
	b.WriteString(c.tiebreak)
	if q.Limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(q.Limit))
	}
	return b.String(), nil
}

func (c collection) build(base string, q query.Query) (string, []any, error) {
	where, args, err := c.where(q)
	if err != nil {
		return "", nil, err
	}
	suffix, err := c.suffix(q)
	if err != nil {
		return "", nil, err
	}
	return base + where + suffix, args, nil
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return replacer.Replace(value)
}
