package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rowq/rowq/output"
	"github.com/rowq/rowq/record"
)

// TableProvider supplies named tables of rows. Rows must return a snapshot
// the engine may reorder and slice freely.
type TableProvider interface {
	HasTable(name string) bool
	TableNames() []string
	Rows(name string) ([]*record.Row, error)
}

// Response statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the uniform result envelope of Execute. On success Data holds
// the formatter's payload ([]*record.Row for json, a string for csv and
// table) and Count the number of result rows. On error only Error is set.
type Response struct {
	Status string      `json:"status"`
	Format string      `json:"format"`
	Count  int         `json:"count"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func errorResponse(format, msg string) *Response {
	return &Response{Status: StatusError, Format: strings.ToLower(format), Error: msg}
}

// Execute runs a query against the provider and formats the result. It
// never returns a Go error: every failure becomes an error Response so
// callers have a single result path. limit caps the result row count when
// the query itself has no LIMIT clause; a LIMIT clause wins over the
// argument. limit <= 0 means unlimited.
func Execute(queryStr string, limit int, format string, provider TableProvider) *Response {
	formatter, err := output.New(format)
	if err != nil {
		return errorResponse(format, err.Error())
	}

	pq, err := ParseQuery(queryStr)
	if err != nil {
		return errorResponse(format, fmt.Sprintf("query syntax error: %v", err))
	}

	if !provider.HasTable(pq.Table) {
		names := append([]string(nil), provider.TableNames()...)
		sort.Strings(names)
		return errorResponse(format, fmt.Sprintf("unknown table '%s', available tables: %s",
			pq.Table, strings.Join(names, ", ")))
	}

	rows, err := provider.Rows(pq.Table)
	if err != nil {
		return errorResponse(format, fmt.Sprintf("error loading data from table '%s': %v", pq.Table, err))
	}

	if msg := checkFields(pq, rows); msg != "" {
		return errorResponse(format, msg)
	}

	if pq.Where != nil && len(pq.Where.Conditions) > 0 {
		filtered := rows[:0:0]
		for _, row := range rows {
			if pq.Where.Evaluate(row) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	if len(pq.GroupBy) > 0 {
		rows, err = applyGroupBy(rows, pq)
		if err != nil {
			return errorResponse(format, fmt.Sprintf("error applying GROUP BY: %v", err))
		}
	} else if len(pq.Aggregates) > 0 {
		rows, err = applyBareAggregates(rows, pq)
		if err != nil {
			return errorResponse(format, fmt.Sprintf("error applying aggregate functions: %v", err))
		}
	}

	if pq.Distinct && len(pq.GroupBy) == 0 {
		rows = applyDistinct(rows, pq)
	}

	if len(pq.OrderBy) > 0 {
		rows = applyOrderBy(rows, pq)
	}

	effective := limit
	if pq.HasLimit {
		effective = pq.Limit
	}
	if effective > 0 && len(rows) > effective {
		rows = rows[:effective]
	}

	if !pq.selectsAll() && len(pq.Aggregates) == 0 {
		rows = projectFields(rows, pq)
	}

	payload, err := formatter.Format(rows)
	if err != nil {
		return errorResponse(format, fmt.Sprintf("error formatting output: %v", err))
	}

	return &Response{
		Status: StatusSuccess,
		Format: strings.ToLower(format),
		Count:  len(rows),
		Data:   payload,
	}
}

// checkFields verifies that every plain selected field exists somewhere in
// the first rows of the table, so typos fail with a field listing instead
// of silently producing null columns. Aliased and aggregate columns are
// exempt; dotted paths are checked as given.
func checkFields(pq *ParsedQuery, rows []*record.Row) string {
	if len(rows) == 0 || pq.selectsAll() {
		return ""
	}

	probe := rows
	if len(probe) > 5 {
		probe = probe[:5]
	}

	for _, field := range pq.Fields {
		if field == "*" || pq.isAggregateAlias(field) {
			continue
		}
		if _, aliased := pq.Aliases[field]; aliased {
			continue
		}
		found := false
		for _, row := range probe {
			if _, ok := record.Resolve(row, field); ok {
				found = true
				break
			}
		}
		if !found {
			return fmt.Sprintf("field '%s' not found, available fields: %s",
				field, strings.Join(availableFields(rows), ", "))
		}
	}
	return ""
}

// availableFields lists the field paths present in the first rows, walking
// nested maps (and maps inside lists) three levels below the top, so paths
// of up to four segments appear. The listing is sorted and capped at 20
// entries with a trailing ellipsis.
func availableFields(rows []*record.Row) []string {
	seen := make(map[string]bool)

	var walk func(r *record.Row, prefix string, depth int)
	walk = func(r *record.Row, prefix string, depth int) {
		if depth > 3 {
			return
		}
		for _, key := range r.Keys() {
			path := prefix + key
			seen[path] = true
			v, _ := r.Get(key)
			switch v.Kind() {
			case record.KindMap:
				walk(v.Map(), path+".", depth+1)
			case record.KindList:
				if items := v.List(); len(items) > 0 && items[0].Kind() == record.KindMap {
					walk(items[0].Map(), path+".", depth+1)
				}
			}
		}
	}

	probe := rows
	if len(probe) > 3 {
		probe = probe[:3]
	}
	for _, row := range probe {
		walk(row, "", 0)
	}

	fields := make([]string, 0, len(seen))
	for path := range seen {
		fields = append(fields, path)
	}
	sort.Strings(fields)
	if len(fields) > 20 {
		fields = append(fields[:20], "...")
	}
	return fields
}

// applyGroupBy buckets rows by the group fields in first-seen order and
// emits one row per bucket: the group field values first, then each
// aggregate under its alias, following SELECT list order.
func applyGroupBy(rows []*record.Row, pq *ParsedQuery) ([]*record.Row, error) {
	type group struct {
		values []record.Value
		rows   []*record.Row
	}
	groups := make(map[string]*group)
	var order []string

	for _, row := range rows {
		values := make([]record.Value, len(pq.GroupBy))
		parts := make([]string, len(pq.GroupBy))
		for i, field := range pq.GroupBy {
			v, _ := record.Resolve(row, field)
			values[i] = v
			parts[i] = v.Key()
		}
		key := strings.Join(parts, "\x00||\x00")
		g, ok := groups[key]
		if !ok {
			g = &group{values: values}
			groups[key] = g
			order = append(order, key)
		}
		g.rows = append(g.rows, row)
	}

	result := make([]*record.Row, 0, len(order))
	for _, key := range order {
		g := groups[key]
		out := record.NewRow()
		for i, field := range pq.GroupBy {
			out.Set(field, g.values[i])
		}
		for _, agg := range pq.Aggregates {
			v, err := ApplyAggregate(agg.Function, agg.Field, g.rows)
			if err != nil {
				return nil, err
			}
			out.Set(agg.Alias, v)
		}
		result = append(result, out)
	}
	return result, nil
}

// applyBareAggregates collapses the whole row set into a single row, one
// column per aggregate in SELECT list order.
func applyBareAggregates(rows []*record.Row, pq *ParsedQuery) ([]*record.Row, error) {
	out := record.NewRow()
	for _, agg := range pq.Aggregates {
		v, err := ApplyAggregate(agg.Function, agg.Field, rows)
		if err != nil {
			return nil, err
		}
		out.Set(agg.Alias, v)
	}
	return []*record.Row{out}, nil
}

// applyDistinct deduplicates rows keeping the first occurrence. SELECT *
// keys on the full row; otherwise on the selected field tuple, with aliases
// resolved to their source expressions.
func applyDistinct(rows []*record.Row, pq *ParsedQuery) []*record.Row {
	seen := make(map[string]bool)
	result := rows[:0:0]

	for _, row := range rows {
		var key string
		if pq.selectsAll() {
			key = row.Key()
		} else {
			parts := make([]string, len(pq.Fields))
			for i, field := range pq.Fields {
				v, _ := record.Resolve(row, pq.sourceExpr(field))
				parts[i] = v.Key()
			}
			key = strings.Join(parts, "\x00||\x00")
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		result = append(result, row)
	}
	return result
}

// applyOrderBy sorts a copy of rows. Nulls and missing fields sort last
// regardless of direction; DESC flips the comparison, not the null rule.
// The sort is stable so equal keys keep their incoming order.
func applyOrderBy(rows []*record.Row, pq *ParsedQuery) []*record.Row {
	sorted := append([]*record.Row(nil), rows...)

	sort.SliceStable(sorted, func(i, j int) bool {
		for _, of := range pq.OrderBy {
			source := pq.sourceExpr(of.Field)
			vi, _ := record.Resolve(sorted[i], source)
			vj, _ := record.Resolve(sorted[j], source)

			iNull, jNull := vi.IsNull(), vj.IsNull()
			if iNull && jNull {
				continue
			}
			if iNull {
				return false
			}
			if jNull {
				return true
			}

			cmp := orderValues(vi, vj)
			if cmp == 0 {
				continue
			}
			if of.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
	return sorted
}

// projectFields narrows each row to the selected columns. Output columns
// use the SELECT list names; a missing source yields an explicit null so
// every row keeps the same shape.
func projectFields(rows []*record.Row, pq *ParsedQuery) []*record.Row {
	result := make([]*record.Row, len(rows))
	for i, row := range rows {
		out := record.NewRow()
		for _, field := range pq.Fields {
			v, _ := record.Resolve(row, pq.sourceExpr(field))
			out.Set(field, v)
		}
		result[i] = out
	}
	return result
}
