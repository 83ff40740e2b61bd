// Package sqltext rewrites raw SQL text: it splits scripts into statements,
// substitutes the table prefix token and turns named parameters into
// positional ones. Every function here scans the text character by character
// so that quoted literals and comments are never altered, and none of them
// fail: malformed input (an unterminated quote or comment) stops the special
// handling at the end of the string instead of dropping text.
package sqltext

import "strings"

// DefaultPrefixToken is the placeholder stored SQL uses for the table prefix.
const DefaultPrefixToken = "#__"

// escaped reports whether the byte at i is preceded by an odd number of
// backslashes.
func escaped(s string, i int) bool {
	n := 0
	for j := i - 1; j >= 0 && s[j] == '\\'; j-- {
		n++
	}
	return n%2 == 1
}

// hasPrefixAt reports whether s contains prefix starting at offset i.
func hasPrefixAt(s string, i int, prefix string) bool {
	return prefix != "" && i <= len(s) && strings.HasPrefix(s[i:], prefix)
}

func hasAnyPrefixAt(s string, i int, prefixes []string) bool {
	for _, p := range prefixes {
		if hasPrefixAt(s, i, p) {
			return true
		}
	}
	return false
}

// nextQuote returns the offset of the first byte at or after from that is one
// of quotes, together with that byte. It returns len(s) when there is none.
func nextQuote(s string, from int, quotes string) (int, byte) {
	if from >= len(s) || quotes == "" {
		return len(s), 0
	}
	i := strings.IndexAny(s[from:], quotes)
	if i < 0 {
		return len(s), 0
	}
	return from + i, s[from+i]
}

// closingQuote returns the offset of the first unescaped quote at or after
// from, or -1 when the literal is never closed.
func closingQuote(s string, from int, quote byte) int {
	for from < len(s) {
		k := strings.IndexByte(s[from:], quote)
		if k < 0 {
			return -1
		}
		k += from
		if escaped(s, k) {
			from = k + 1
			continue
		}
		return k
	}
	return -1
}

func isIdentByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
