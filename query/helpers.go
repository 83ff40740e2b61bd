package query

import (
	"fmt"
	"strings"
)

// Quote returns text as an escaped string literal.
func (q *Query) Quote(text string) string { return q.dialect.Quote(text, true) }

// QuoteName quotes an identifier such as "a.title".
func (q *Query) QuoteName(name string) string { return q.dialect.QuoteName(name, "") }

// QuoteNameAs quotes an identifier and appends a quoted alias.
func (q *Query) QuoteNameAs(name, as string) string { return q.dialect.QuoteName(name, as) }

func (q *Query) Escape(text string, extra bool) string { return q.dialect.Escape(text, extra) }

func (q *Query) QuoteBinary(data []byte) string { return q.dialect.QuoteBinary(data) }

// NullDate returns the dialect's null date, quoted when quoted is set.
func (q *Query) NullDate(quoted bool) string {
	if quoted {
		return q.dialect.Quote(q.dialect.NullDate(), false)
	}
	return q.dialect.NullDate()
}

// CastAs casts value to typ ("CHAR" or "INT"). An unsupported type is
// recorded in Err and value is returned unchanged.
func (q *Query) CastAs(typ, value string, length int) string {
	out, err := q.dialect.CastAs(typ, value, length)
	if err != nil {
		q.setErr(err)
	}
	return out
}

func (q *Query) Concatenate(values []string, separator string) string {
	return q.dialect.Concatenate(values, separator)
}

func (q *Query) CharLength(field, operator, condition string) string {
	return q.dialect.CharLength(field, operator, condition)
}

func (q *Query) Length(value string) string { return q.dialect.Length(value) }

func (q *Query) CurrentTimestamp() string { return q.dialect.CurrentTimestamp() }

func (q *Query) DateAdd(date, interval string, part DatePart) string {
	return q.dialect.DateAdd(date, interval, part)
}

func (q *Query) Year(date string) string   { return q.dialect.DatePart(Year, date) }
func (q *Query) Month(date string) string  { return q.dialect.DatePart(Month, date) }
func (q *Query) Day(date string) string    { return q.dialect.DatePart(Day, date) }
func (q *Query) Hour(date string) string   { return q.dialect.DatePart(Hour, date) }
func (q *Query) Minute(date string) string { return q.dialect.DatePart(Minute, date) }
func (q *Query) Second(date string) string { return q.dialect.DatePart(Second, date) }

func (q *Query) Rand() string { return q.dialect.Rand() }

// Format expands a template whose verbs consume args in order:
//
//	%n  quoted name
//	%q  quoted and escaped string
//	%Q  quoted string, not escaped
//	%e  escaped string
//	%E  escaped string with LIKE wildcards escaped
//	%a  the argument as is
//	%%  a literal percent sign
//
// Unknown verbs are copied through; missing arguments render empty.
func (q *Query) Format(format string, args ...any) string {
	var b strings.Builder
	next := 0
	arg := func() string {
		if next >= len(args) {
			return ""
		}
		next++
		return fmt.Sprint(args[next-1])
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' || i+1 == len(format) {
			b.WriteByte(c)
			continue
		}

		i++
		switch format[i] {
		case 'n':
			b.WriteString(q.QuoteName(arg()))
		case 'q':
			b.WriteString(q.dialect.Quote(arg(), true))
		case 'Q':
			b.WriteString(q.dialect.Quote(arg(), false))
		case 'e':
			b.WriteString(q.dialect.Escape(arg(), false))
		case 'E':
			b.WriteString(q.dialect.Escape(arg(), true))
		case 'a':
			b.WriteString(arg())
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
	return b.String()
}
