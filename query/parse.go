package query

import (
	"fmt"
	"regexp"
	"strings"
)

// Aggregate is one aggregate item of the SELECT list. Alias is the output
// column name, either user supplied or the canonical "FUNC(field)" form.
type Aggregate struct {
	Alias    string
	Function string
	Field    string
}

// OrderField is one ORDER BY term.
type OrderField struct {
	Field string
	Desc  bool
}

// ParsedQuery is the fully parsed form of a query, ready for execution.
type ParsedQuery struct {
	Fields     []string
	Distinct   bool
	Aggregates []Aggregate
	Aliases    map[string]string
	Table      string
	Where      *WhereExpression
	GroupBy    []string
	OrderBy    []OrderField
	Limit      int
	HasLimit   bool
}

var (
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*$`)
	aliasRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	aggRe   = regexp.MustCompile(`(?i)^(COUNT|SUM|AVG|MIN|MAX|STDDEV|VARIANCE)\s*\(\s*(.*?)\s*\)$`)
)

// ParseQuery parses a full query string. Errors name the offending clause.
func ParseQuery(query string) (*ParsedQuery, error) {
	query = strings.TrimSpace(query)
	query = strings.TrimSuffix(query, ";")
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty query")
	}
	if !balancedParens(query) {
		return nil, fmt.Errorf("unbalanced parentheses in query")
	}
	if !balancedQuotes(query) {
		return nil, fmt.Errorf("unbalanced quotes in query")
	}

	c, err := extractClauses(query)
	if err != nil {
		return nil, err
	}

	pq := &ParsedQuery{
		Table:    c.Table,
		Limit:    c.Limit,
		HasLimit: c.HasLimit,
	}

	if err := pq.parseSelect(c.SelectList); err != nil {
		return nil, fmt.Errorf("SELECT clause error: %v", err)
	}

	pq.Where, err = ParseWhere(c.Where)
	if err != nil {
		return nil, fmt.Errorf("WHERE clause error: %v", err)
	}

	pq.GroupBy, err = parseGroupBy(c.GroupBy)
	if err != nil {
		return nil, fmt.Errorf("GROUP BY clause error: %v", err)
	}

	pq.OrderBy, err = parseOrderBy(c.OrderBy)
	if err != nil {
		return nil, fmt.Errorf("ORDER BY clause error: %v", err)
	}

	return pq, nil
}

// splitTopLevel splits s on sep outside quoted runs and parentheses.
// Whitespace-trimmed empty parts are dropped.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	var current strings.Builder
	depth := 0
	i := 0
	for i < len(s) {
		ch := s[i]
		switch {
		case ch == '\'' || ch == '"':
			j := skipQuoted(s, i)
			current.WriteString(s[i:j])
			i = j
			continue
		case ch == '(':
			depth++
		case ch == ')':
			if depth > 0 {
				depth--
			}
		case ch == sep && depth == 0:
			if part := strings.TrimSpace(current.String()); part != "" {
				parts = append(parts, part)
			}
			current.Reset()
			i++
			continue
		}
		current.WriteByte(ch)
		i++
	}
	if part := strings.TrimSpace(current.String()); part != "" {
		parts = append(parts, part)
	}
	return parts
}

func (pq *ParsedQuery) parseSelect(selectList string) error {
	pq.Aliases = make(map[string]string)

	if len(selectList) >= 8 && strings.EqualFold(selectList[:8], "DISTINCT") &&
		(len(selectList) == 8 || isSpaceByte(selectList[8])) {
		pq.Distinct = true
		selectList = strings.TrimSpace(selectList[8:])
		if selectList == "" {
			return fmt.Errorf("empty field list after DISTINCT")
		}
	}

	items := splitTopLevel(selectList, ',')
	if len(items) == 0 {
		return fmt.Errorf("empty field list")
	}

	for _, item := range items {
		expr := item
		alias := ""
		if asStart, asEnd := findKeyword(item, 0, "AS"); asStart != -1 {
			expr = strings.TrimSpace(item[:asStart])
			alias = strings.TrimSpace(item[asEnd:])
			if !aliasRe.MatchString(alias) {
				return fmt.Errorf("invalid alias %q", alias)
			}
			if expr == "" {
				return fmt.Errorf("missing expression before AS %s", alias)
			}
		}

		if m := aggRe.FindStringSubmatch(expr); m != nil {
			function := strings.ToUpper(m[1])
			field := m[2]
			if field == "*" {
				if function != "COUNT" {
					return fmt.Errorf("%s(*) is not supported, only COUNT(*)", function)
				}
			} else if !identRe.MatchString(field) {
				return fmt.Errorf("invalid field name in %s(): %q", function, field)
			}
			canonical := function + "(" + field + ")"
			if alias == "" {
				alias = canonical
			} else {
				pq.Aliases[alias] = canonical
			}
			pq.Aggregates = append(pq.Aggregates, Aggregate{Alias: alias, Function: function, Field: field})
			pq.Fields = append(pq.Fields, alias)
			continue
		}

		if expr != "*" && !identRe.MatchString(expr) {
			return fmt.Errorf("invalid field name %q", expr)
		}
		if alias != "" {
			pq.Aliases[alias] = expr
			pq.Fields = append(pq.Fields, alias)
		} else {
			pq.Fields = append(pq.Fields, expr)
		}
	}

	return nil
}

func parseGroupBy(groupBy string) ([]string, error) {
	if groupBy == "" {
		return nil, nil
	}
	var fields []string
	for _, raw := range strings.Split(groupBy, ",") {
		field := strings.TrimSpace(raw)
		if field == "" {
			return nil, fmt.Errorf("empty field name")
		}
		if !identRe.MatchString(field) {
			return nil, fmt.Errorf("invalid field name %q", field)
		}
		fields = append(fields, field)
	}
	return fields, nil
}

func parseOrderBy(orderBy string) ([]OrderField, error) {
	if orderBy == "" {
		return nil, nil
	}
	var fields []OrderField
	for _, item := range splitTopLevel(orderBy, ',') {
		words := strings.Fields(item)
		switch len(words) {
		case 1:
			// direction defaults to ASC
		case 2:
			switch strings.ToUpper(words[1]) {
			case "ASC":
			case "DESC":
			default:
				return nil, fmt.Errorf("invalid sort direction %q (use ASC or DESC)", words[1])
			}
		default:
			return nil, fmt.Errorf("invalid ORDER BY term %q", item)
		}
		if words[0] != "*" && !identRe.MatchString(words[0]) {
			return nil, fmt.Errorf("invalid field name %q", words[0])
		}
		fields = append(fields, OrderField{
			Field: words[0],
			Desc:  len(words) == 2 && strings.EqualFold(words[1], "DESC"),
		})
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty field list")
	}
	return fields, nil
}

// sourceExpr maps an output column name back to the expression that fills
// it. A plain alias resolves to its source field; an aggregate alias stays
// as-is because the aggregation stage writes the column under the alias.
func (pq *ParsedQuery) sourceExpr(field string) string {
	if pq.isAggregateAlias(field) {
		return field
	}
	if src, ok := pq.Aliases[field]; ok {
		return src
	}
	return field
}

func (pq *ParsedQuery) isAggregateAlias(field string) bool {
	for _, agg := range pq.Aggregates {
		if agg.Alias == field {
			return true
		}
	}
	return false
}

// selectsAll reports whether the select list is exactly "*".
func (pq *ParsedQuery) selectsAll() bool {
	return len(pq.Fields) == 1 && pq.Fields[0] == "*"
}
