package sqltext

import "strings"

var rowKeywords = map[string]bool{
	"SELECT":   true,
	"SHOW":     true,
	"DESCRIBE": true,
	"DESC":     true,
	"EXPLAIN":  true,
	"PRAGMA":   true,
	"WITH":     true,
	"VALUES":   true,
	"TABLE":    true,
}

// LeadingKeyword returns the first keyword of sql in upper case, skipping
// whitespace, opening parentheses and comments.
func LeadingKeyword(sql string) string {
	i := 0
	n := len(sql)
	for i < n {
		switch {
		case sql[i] == ' ' || sql[i] == '\t' || sql[i] == '\n' || sql[i] == '\r' || sql[i] == '(':
			i++
		case hasPrefixAt(sql, i, "--") || (sql[i] == '#' && !hasPrefixAt(sql, i, DefaultPrefixToken)):
			nl := strings.IndexByte(sql[i:], '\n')
			if nl < 0 {
				return ""
			}
			i += nl + 1
		case hasPrefixAt(sql, i, "/*"):
			e := strings.Index(sql[i+2:], "*/")
			if e < 0 {
				return ""
			}
			i += e + 4
		default:
			e := i
			for e < n && isIdentByte(sql[e]) {
				e++
			}
			return strings.ToUpper(sql[i:e])
		}
	}
	return ""
}

// ReturnsRows reports whether executing sql produces a result set: it starts
// with a row-returning keyword or carries a RETURNING clause outside quoted
// literals.
func ReturnsRows(sql string) bool {
	if rowKeywords[LeadingKeyword(sql)] {
		return true
	}
	return hasReturning(sql)
}

func hasReturning(sql string) bool {
	n := len(sql)
	start := 0
	for start < n {
		j, quote := nextQuote(sql, start, DefaultLiteralQuotes)
		if containsWord(sql[start:j], "RETURNING") {
			return true
		}
		if j+1 >= n {
			return false
		}
		k := closingQuote(sql, j+1, quote)
		if k < 0 {
			return false
		}
		start = k + 1
	}
	return false
}

func containsWord(s, word string) bool {
	upper := strings.ToUpper(s)
	from := 0
	for {
		i := strings.Index(upper[from:], word)
		if i < 0 {
			return false
		}
		i += from
		e := i + len(word)
		if (i == 0 || !isIdentByte(upper[i-1])) && (e == len(upper) || !isIdentByte(upper[e])) {
			return true
		}
		from = i + 1
	}
}
