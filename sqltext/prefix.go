package sqltext

import "strings"

// DefaultLiteralQuotes are the characters that open a string literal when no
// dialect-specific set is given.
const DefaultLiteralQuotes = `'"`

// ReplacePrefix replaces every occurrence of token outside single or double
// quoted literals with prefix.
func ReplacePrefix(sql, token, prefix string) string {
	return ReplacePrefixQuotes(sql, token, prefix, DefaultLiteralQuotes)
}

// ReplacePrefixQuotes replaces every occurrence of token that is not inside a
// literal delimited by one of the bytes in quotes. Dialects that quote
// identifiers with double quotes pass only "'" so that "#__table" is
// rewritten. A literal that is never closed is copied verbatim to the end.
func ReplacePrefixQuotes(sql, token, prefix, quotes string) string {
	if token == "" || !strings.Contains(sql, token) {
		return sql
	}

	var out strings.Builder
	out.Grow(len(sql))

	n := len(sql)
	start := 0
	for start < n {
		if !strings.Contains(sql[start:], token) {
			break
		}

		j, quote := nextQuote(sql, start, quotes)
		out.WriteString(strings.ReplaceAll(sql[start:j], token, prefix))
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

	return out.String()
}
