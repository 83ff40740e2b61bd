package sqltext

import (
	"strconv"
	"strings"
)

// ParameterMap is the result of rewriting named parameters.
type ParameterMap struct {
	// SQL is the rewritten statement text.
	SQL string
	// Names holds, for each positional placeholder in SQL, the name that was
	// there before rewriting (without the leading colon).
	Names []string
	// Index maps each name to the position of its last occurrence.
	Index map[string]int
}

// Len returns the number of positional placeholders.
func (m ParameterMap) Len() int {
	return len(m.Names)
}

// Has reports whether name occurs in the statement.
func (m ParameterMap) Has(name string) bool {
	_, ok := m.Index[strings.TrimPrefix(name, ":")]
	return ok
}

// Distinct returns the names in order of first occurrence.
func (m ParameterMap) Distinct() []string {
	seen := make(map[string]bool, len(m.Index))
	out := make([]string, 0, len(m.Index))
	for _, name := range m.Names {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

// QuestionMark is the placeholder style of MySQL and SQLite.
func QuestionMark(int) string { return "?" }

// DollarNumber is the PostgreSQL placeholder style ($1, $2, ...).
func DollarNumber(pos int) string { return "$" + strconv.Itoa(pos+1) }

// MapParameterKeys replaces every :name placeholder outside quoted literals
// with '?'.
func MapParameterKeys(sql string) ParameterMap {
	return MapParameterKeysFunc(sql, QuestionMark)
}

// MapParameterKeysFunc replaces every :name placeholder outside quoted
// literals with placeholder(pos), pos being the zero-based occurrence index.
// A name may occur several times; each occurrence gets its own position.
// PostgreSQL casts (value::type) are left alone.
func MapParameterKeysFunc(sql string, placeholder func(pos int) string) ParameterMap {
	m := ParameterMap{SQL: sql, Index: map[string]int{}}
	if !strings.Contains(sql, ":") {
		return m
	}

	var out strings.Builder
	out.Grow(len(sql))

	n := len(sql)
	start := 0
	for start < n {
		j, quote := nextQuote(sql, start, DefaultLiteralQuotes)
		m.rewriteSegment(&out, sql, start, j, placeholder)
		start = j

		if j+1 >= n {
			break
		}

		k := closingQuote(sql, j+1, quote)
		if k < 0 {
			break
		}

		out.WriteString(sql[start : k+1])
		start = k + 1
	}

	if start < n {
		out.WriteString(sql[start:])
	}

	m.SQL = out.String()
	return m
}

// rewriteSegment copies sql[from:to], which lies outside any literal, into out
// while replacing named placeholders.
func (m *ParameterMap) rewriteSegment(out *strings.Builder, sql string, from, to int, placeholder func(int) string) {
	i := from
	for i < to {
		c := sql[i]
		if c != ':' || i+1 >= to || !isIdentByte(sql[i+1]) || (i > 0 && sql[i-1] == ':') {
			out.WriteByte(c)
			i++
			continue
		}

		e := i + 1
		for e < to && isIdentByte(sql[e]) {
			e++
		}

		name := sql[i+1 : e]
		pos := len(m.Names)
		m.Names = append(m.Names, name)
		m.Index[name] = pos
		out.WriteString(placeholder(pos))
		i = e
	}
}
