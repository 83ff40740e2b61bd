package sqltext

import "strings"

// DefaultHints lists the comment-like openers that carry optimizer hints and
// must stay part of the statement.
var DefaultHints = []string{"/*!", "/*+"}

// SplitSQL splits a script into trimmed statements using DefaultHints.
func SplitSQL(sql string) []string {
	return SplitSQLWith(sql, DefaultHints)
}

// SplitSQLWith splits a script on every unescaped ';' found outside quoted
// literals and comments. Comments are removed from the output and statements
// are trimmed. Empty statements, including a lone ';', are dropped and the
// final statement gets a trailing ';' when it has none. A '#' followed by "__"
// is the prefix token, not a comment, and block comments starting with one of
// hints are kept as part of the statement.
func SplitSQLWith(sql string, hints []string) []string {
	var (
		queries   []string
		query     strings.Builder
		start     int
		open      bool
		comment   bool
		endString string
	)

	end := len(sql)
	for i := 0; i < end; i++ {
		current := sql[i]

		opener := current == '"' || current == '\'' ||
			hasPrefixAt(sql, i, "--") ||
			(hasPrefixAt(sql, i, "/*") && !hasAnyPrefixAt(sql, i, hints)) ||
			(current == '#' && !hasPrefixAt(sql, i, DefaultPrefixToken))

		if (opener || (comment && hasPrefixAt(sql, i, endString))) && !escaped(sql, i) {
			if open {
				if hasPrefixAt(sql, i, endString) {
					if comment {
						comment = false
						i += len(endString) - 1
						current = sql[i]
						start = i + 1
					}
					open = false
					endString = ""
				}
			} else {
				open = true
				switch {
				case hasPrefixAt(sql, i, "--"), current == '#':
					endString, comment = "\n", true
				case hasPrefixAt(sql, i, "/*"):
					endString, comment = "*/", true
				default:
					endString = string(current)
				}
				if comment && start < i {
					query.WriteString(sql[start:i])
				}
			}
		}

		if comment {
			start = i + 1
		}

		if (current == ';' && !open) || i == end-1 {
			if start <= i {
				query.WriteString(sql[start : i+1])
			}
			stmt := strings.TrimSpace(query.String())
			if stmt != "" && stmt != ";" {
				if i == end-1 && current != ';' {
					stmt += ";"
				}
				queries = append(queries, stmt)
			}
			query.Reset()
			start = i + 1
		}
	}

	return queries
}
