package query

import (
	"fmt"
	"strconv"
	"strings"
)

// clauses holds the raw text of each query clause after keyword slicing,
// before any per-clause parsing.
type clauses struct {
	SelectList string
	Table      string
	Where      string
	GroupBy    string
	OrderBy    string
	Limit      int
	HasLimit   bool
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isWordByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// skipQuoted returns the index just past the quoted run starting at i, where
// s[i] is the opening quote. A doubled quote character inside the run is an
// escape, not a terminator. An unterminated run consumes the rest of s.
func skipQuoted(s string, i int) int {
	quote := s[i]
	j := i + 1
	for j < len(s) {
		if s[j] == quote {
			if j+1 < len(s) && s[j+1] == quote {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return j
}

// findKeyword scans s from offset from for a top-level keyword made of one
// or more words separated by whitespace ("GROUP", "BY"). Matches are case
// insensitive, must sit at a word boundary, and are ignored inside quoted
// runs and parentheses. It returns the start index and the index just past
// the keyword, or (-1, -1).
func findKeyword(s string, from int, words ...string) (int, int) {
	depth := 0
	i := from
	for i < len(s) {
		switch ch := s[i]; {
		case ch == '\'' || ch == '"':
			i = skipQuoted(s, i)
		case ch == '(':
			depth++
			i++
		case ch == ')':
			if depth > 0 {
				depth--
			}
			i++
		default:
			if depth == 0 && (i == 0 || isSpaceByte(s[i-1])) {
				if end, ok := matchWords(s, i, words); ok {
					return i, end
				}
			}
			i++
		}
	}
	return -1, -1
}

// matchWords matches the word sequence at position i, requiring at least one
// space between words and a word boundary after the last.
func matchWords(s string, i int, words []string) (int, bool) {
	pos := i
	for wi, word := range words {
		if wi > 0 {
			start := pos
			for pos < len(s) && isSpaceByte(s[pos]) {
				pos++
			}
			if pos == start {
				return 0, false
			}
		}
		if pos+len(word) > len(s) || !strings.EqualFold(s[pos:pos+len(word)], word) {
			return 0, false
		}
		pos += len(word)
	}
	if pos < len(s) && isWordByte(s[pos]) {
		return 0, false
	}
	return pos, true
}

// balancedParens reports whether every top-level parenthesis in s closes.
// Parentheses inside quoted runs do not count.
func balancedParens(s string) bool {
	depth := 0
	i := 0
	for i < len(s) {
		switch s[i] {
		case '\'', '"':
			i = skipQuoted(s, i)
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
		i++
	}
	return depth == 0
}

// balancedQuotes reports whether every quoted run in s closes, counting a
// doubled quote character as an escaped literal.
func balancedQuotes(s string) bool {
	for _, quote := range []byte{'\'', '"'} {
		count := 0
		i := 0
		for i < len(s) {
			if s[i] == quote {
				if i+1 < len(s) && s[i+1] == quote {
					i += 2
					continue
				}
				count++
			}
			i++
		}
		if count%2 != 0 {
			return false
		}
	}
	return true
}

// extractClauses slices the query into raw clause strings by locating the
// top-level keywords. Clause text between keywords is taken verbatim; it is
// NOT tokenized here.
func extractClauses(query string) (*clauses, error) {
	selStart, selEnd := findKeyword(query, 0, "SELECT")
	if selStart == -1 {
		return nil, fmt.Errorf("SELECT clause error: expected SELECT <fields> FROM <table>")
	}
	fromStart, fromEnd := findKeyword(query, selEnd, "FROM")
	if fromStart == -1 {
		return nil, fmt.Errorf("SELECT clause error: expected SELECT <fields> FROM <table>")
	}

	c := &clauses{SelectList: strings.TrimSpace(query[selEnd:fromStart])}
	if c.SelectList == "" {
		return nil, fmt.Errorf("SELECT clause error: empty field list")
	}

	// Table name: the word run after FROM, lowercased.
	i := fromEnd
	for i < len(query) && isSpaceByte(query[i]) {
		i++
	}
	start := i
	for i < len(query) && isWordByte(query[i]) {
		i++
	}
	if i == start {
		return nil, fmt.Errorf("FROM clause error: missing table name")
	}
	c.Table = strings.ToLower(query[start:i])

	whereStart, whereEnd := findKeyword(query, i, "WHERE")
	groupStart, groupEnd := findKeyword(query, i, "GROUP", "BY")
	havingStart, _ := findKeyword(query, i, "HAVING")
	orderStart, orderEnd := findKeyword(query, i, "ORDER", "BY")
	limitStart, limitEnd := findKeyword(query, i, "LIMIT")

	boundary := func(candidates ...int) int {
		end := len(query)
		for _, pos := range candidates {
			if pos >= 0 && pos < end {
				end = pos
			}
		}
		return end
	}

	if whereStart != -1 {
		c.Where = strings.TrimSpace(query[whereEnd:boundary(groupStart, havingStart, orderStart, limitStart)])
	}
	if groupStart != -1 {
		c.GroupBy = strings.TrimSpace(query[groupEnd:boundary(havingStart, orderStart, limitStart)])
	}
	if orderStart != -1 {
		c.OrderBy = strings.TrimSpace(query[orderEnd:boundary(limitStart)])
	}
	if limitStart != -1 {
		raw := strings.TrimSpace(query[limitEnd:])
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("LIMIT clause error: invalid LIMIT value %q", raw)
		}
		c.Limit = n
		c.HasLimit = true
	}

	return c, nil
}
