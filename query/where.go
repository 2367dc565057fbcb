package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rowq/rowq/record"
)

// WhereCondition is one comparison of a row field against a literal. For
// BETWEEN and IN the literal is a list value.
type WhereCondition struct {
	Field    string
	Operator string
	Value    record.Value
	Negated  bool
}

// WhereExpression is a flat chain of conditions joined by AND/OR
// combinators, evaluated strictly left to right with no precedence.
// Combinators[i] joins Conditions[i] with Conditions[i+1].
type WhereExpression struct {
	Conditions  []*WhereCondition
	Combinators []string
}

var (
	isNullRe  = regexp.MustCompile(`(?i)^([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s+IS\s+(NOT\s+)?NULL$`)
	betweenRe = regexp.MustCompile(`(?i)^([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s+(NOT\s+)?BETWEEN\s+(.+?)\s+AND\s+(.+)$`)
	inRe      = regexp.MustCompile(`(?i)^([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z_][A-Za-z0-9_]*)*)\s+(NOT\s+)?IN\s*\((.*)\)$`)
)

// comparisonOps in match order: two-character operators before their
// one-character prefixes, negated word operators before the plain forms.
var comparisonOps = []string{">=", "<=", "!=", "<>", ">", "<", "=", "NOT LIKE", "NOT ILIKE", "LIKE", "ILIKE"}

// ParseWhere parses a raw WHERE clause. An empty clause yields an expression
// that accepts every row.
func ParseWhere(clause string) (*WhereExpression, error) {
	expr := &WhereExpression{}
	clause = strings.TrimSpace(clause)
	if clause == "" {
		return expr, nil
	}

	parts, combinators := splitConditions(clause)
	for _, part := range parts {
		cond, err := parseCondition(part)
		if err != nil {
			return nil, err
		}
		expr.Conditions = append(expr.Conditions, cond)
	}
	expr.Combinators = combinators
	return expr, nil
}

// splitConditions cuts the clause at top-level AND/OR keywords. An AND that
// completes a pending BETWEEN stays inside the current condition instead of
// splitting it.
func splitConditions(clause string) ([]string, []string) {
	type pair struct {
		cond  string
		combo string
	}
	var pairs []pair
	var current strings.Builder
	pendingBetween := false

	flush := func(combo string) {
		pairs = append(pairs, pair{cond: strings.TrimSpace(current.String()), combo: combo})
		current.Reset()
		pendingBetween = false
	}

	i := 0
	for i < len(clause) {
		ch := clause[i]
		if ch == '\'' || ch == '"' {
			j := skipQuoted(clause, i)
			current.WriteString(clause[i:j])
			i = j
			continue
		}
		if i == 0 || isSpaceByte(clause[i-1]) {
			if end, ok := matchWords(clause, i, []string{"AND"}); ok {
				if pendingBetween {
					current.WriteString(clause[i:end])
					pendingBetween = false
					i = end
					continue
				}
				flush("AND")
				i = end
				continue
			}
			if end, ok := matchWords(clause, i, []string{"OR"}); ok {
				flush("OR")
				i = end
				continue
			}
			if end, ok := matchWords(clause, i, []string{"BETWEEN"}); ok {
				pendingBetween = true
				current.WriteString(clause[i:end])
				i = end
				continue
			}
		}
		current.WriteByte(ch)
		i++
	}
	flush("")

	var conditions []string
	var combinators []string
	for i, p := range pairs {
		if p.cond == "" {
			continue
		}
		conditions = append(conditions, p.cond)
		if p.combo != "" && i < len(pairs)-1 {
			combinators = append(combinators, p.combo)
		}
	}
	// A trailing or dangling combinator has nothing to join.
	if len(conditions) == 0 {
		return conditions, nil
	}
	if len(combinators) > len(conditions)-1 {
		combinators = combinators[:len(conditions)-1]
		if len(combinators) == 0 {
			combinators = nil
		}
	}
	return conditions, combinators
}

// parseCondition parses one comparison. Check order matters: IS [NOT] NULL
// and [NOT] BETWEEN/IN first, then the operator scan, so that "IS" is never
// mistaken for a field named is.
func parseCondition(s string) (*WhereCondition, error) {
	s = strings.TrimSpace(s)

	if m := isNullRe.FindStringSubmatch(s); m != nil {
		op := "IS"
		if m[2] != "" {
			op = "IS NOT"
		}
		return &WhereCondition{Field: m[1], Operator: op, Value: record.Null()}, nil
	}

	if m := betweenRe.FindStringSubmatch(s); m != nil {
		op := "BETWEEN"
		if m[2] != "" {
			op = "NOT BETWEEN"
		}
		low := parseLiteral(m[3])
		high := parseLiteral(m[4])
		return &WhereCondition{Field: m[1], Operator: op, Value: record.ListValue(low, high)}, nil
	}

	if m := inRe.FindStringSubmatch(s); m != nil {
		op := "IN"
		if m[2] != "" {
			op = "NOT IN"
		}
		var values []record.Value
		for _, item := range splitTopLevel(m[3], ',') {
			values = append(values, parseLiteral(item))
		}
		return &WhereCondition{Field: m[1], Operator: op, Value: record.ListValue(values...)}, nil
	}

	for _, op := range comparisonOps {
		pos := findOperator(s, op)
		if pos == -1 {
			continue
		}
		field := strings.TrimSpace(s[:pos])
		if field == "" {
			return nil, fmt.Errorf("missing field name in condition %q", s)
		}
		rawValue := strings.TrimSpace(s[pos+len(op):])
		if rawValue == "" {
			return nil, fmt.Errorf("missing value in condition %q", s)
		}
		return &WhereCondition{
			Field:    field,
			Operator: strings.ToUpper(op),
			Value:    parseLiteral(rawValue),
		}, nil
	}

	return nil, fmt.Errorf("no valid operator found in condition %q", s)
}

// findOperator locates op in s outside quoted runs. Word operators (LIKE
// and friends) additionally require whitespace boundaries.
func findOperator(s, op string) int {
	wordOp := op[0] >= 'A' && op[0] <= 'Z'
	i := 0
	for i < len(s) {
		ch := s[i]
		if ch == '\'' || ch == '"' {
			i = skipQuoted(s, i)
			continue
		}
		if i+len(op) <= len(s) && strings.EqualFold(s[i:i+len(op)], op) {
			if !wordOp {
				return i
			}
			before := i == 0 || isSpaceByte(s[i-1])
			after := i+len(op) == len(s) || isSpaceByte(s[i+len(op)])
			if before && after {
				return i
			}
		}
		i++
	}
	return -1
}

// parseLiteral converts the raw text of a comparison value into a typed
// literal. Unquoted text that is not NULL, a bool or a number stays a bare
// string.
func parseLiteral(s string) record.Value {
	s = strings.TrimSpace(s)
	if s == "" {
		return record.StringValue("")
	}

	switch strings.ToUpper(s) {
	case "NULL":
		return record.Null()
	case "TRUE":
		return record.BoolValue(true)
	case "FALSE":
		return record.BoolValue(false)
	}

	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return record.StringValue(unescapeLiteral(s[1 : len(s)-1]))
	}

	if strings.ContainsAny(s, ".eE") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return record.FloatValue(f)
		}
		return record.StringValue(s)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return record.IntValue(n)
	}
	return record.StringValue(s)
}

// unescapeLiteral undoes doubled-quote and backslash escapes inside a
// quoted literal body.
func unescapeLiteral(s string) string {
	s = strings.ReplaceAll(s, "''", "'")
	s = strings.ReplaceAll(s, `""`, `"`)
	s = strings.ReplaceAll(s, `\n`, "\n")
	s = strings.ReplaceAll(s, `\t`, "\t")
	s = strings.ReplaceAll(s, `\r`, "\r")
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}

// Evaluate applies the condition to one row. A missing field fails every
// operator except IS NULL, which treats missing as null.
func (c *WhereCondition) Evaluate(row *record.Row) bool {
	value, ok := record.Resolve(row, c.Field)
	if !ok && c.Operator != "IS" && c.Operator != "IS NOT" {
		return c.negate(false)
	}

	literal := c.Value
	switch c.Operator {
	case "IS", "IS NOT", "IN", "NOT IN", "BETWEEN", "NOT BETWEEN":
	default:
		literal = coerceLiteral(value, literal)
	}

	var result bool
	switch c.Operator {
	case "=":
		result = record.Equal(value, literal)
	case "!=", "<>":
		result = !record.Equal(value, literal)
	case ">":
		result = orderValues(value, literal) > 0
	case ">=":
		result = orderValues(value, literal) >= 0
	case "<":
		result = orderValues(value, literal) < 0
	case "<=":
		result = orderValues(value, literal) <= 0
	case "LIKE", "ILIKE":
		result = likeMatch(value, literal)
	case "NOT LIKE", "NOT ILIKE":
		result = !likeMatch(value, literal)
	case "IN":
		result = listContains(literal, value)
	case "NOT IN":
		result = !listContains(literal, value)
	case "IS":
		result = value.IsNull()
	case "IS NOT":
		result = !value.IsNull()
	case "BETWEEN":
		result = betweenMatch(value, literal)
	case "NOT BETWEEN":
		result = !betweenMatch(value, literal)
	}
	return c.negate(result)
}

func (c *WhereCondition) negate(result bool) bool {
	if c.Negated {
		return !result
	}
	return result
}

// coerceLiteral narrows a string literal toward the row value's kind so
// that age > '25' and active = 'yes' behave as users expect. A numeric
// literal against a string row value is left alone: equality is then false
// and ordering falls back to display-string comparison.
func coerceLiteral(rowValue, literal record.Value) record.Value {
	if literal.Kind() != record.KindString {
		return literal
	}
	s := literal.Str()

	switch {
	case rowValue.IsNumeric():
		if strings.ContainsAny(s, ".eE") {
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return record.FloatValue(f)
			}
		} else if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return record.IntValue(n)
		}
	case rowValue.Kind() == record.KindBool:
		switch strings.ToLower(s) {
		case "true", "1", "yes", "on":
			return record.BoolValue(true)
		default:
			return record.BoolValue(false)
		}
	}
	return literal
}

// orderValues compares for the ordering operators. Values that have no
// native ordering (type mismatch, lists, maps) fall back to comparing their
// display strings, so mixed-type data still orders deterministically.
func orderValues(a, b record.Value) int {
	if cmp, err := record.Compare(a, b); err == nil {
		return cmp
	}
	return strings.Compare(a.String(), b.String())
}

func listContains(list, v record.Value) bool {
	if list.Kind() != record.KindList {
		return false
	}
	for _, item := range list.List() {
		if record.Equal(v, item) {
			return true
		}
	}
	return false
}

// betweenMatch tests inclusive bounds. The bounds are never coerced toward
// the row value's kind; a type mismatch falls back to display-string
// ordering inside orderValues.
func betweenMatch(v, bounds record.Value) bool {
	if bounds.Kind() != record.KindList || len(bounds.List()) != 2 {
		return false
	}
	return orderValues(v, bounds.List()[0]) >= 0 && orderValues(v, bounds.List()[1]) <= 0
}

// likeMatch implements LIKE/ILIKE: % matches any run, _ matches one
// character, everything else is literal. Matching is case insensitive and
// unanchored unless the pattern anchors itself.
func likeMatch(value, pattern record.Value) bool {
	var sb strings.Builder
	for _, r := range pattern.String() {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	re, err := regexp.Compile("(?is)" + sb.String())
	if err != nil {
		return false
	}
	return re.MatchString(value.String())
}

// Evaluate folds the chain left to right: the running result combines with
// each next condition through its combinator. An empty expression accepts
// the row.
func (e *WhereExpression) Evaluate(row *record.Row) bool {
	if len(e.Conditions) == 0 {
		return true
	}

	result := e.Conditions[0].Evaluate(row)
	for i := 1; i < len(e.Conditions); i++ {
		next := e.Conditions[i].Evaluate(row)
		combo := "AND"
		if i-1 < len(e.Combinators) {
			combo = e.Combinators[i-1]
		}
		if combo == "OR" {
			result = result || next
		} else {
			result = result && next
		}
	}
	return result
}
