package query

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// DatePart names a component of a date or time value.
type DatePart string

// Date parts understood by every dialect.
const (
	Year   DatePart = "YEAR"
	Month  DatePart = "MONTH"
	Day    DatePart = "DAY"
	Hour   DatePart = "HOUR"
	Minute DatePart = "MINUTE"
	Second DatePart = "SECOND"
)

// Dialect holds the backend specific rules the builder and the driver must
// honor when producing SQL text.
type Dialect interface {
	// Name is the registry key of the dialect.
	Name() string

	// QuoteName quotes an identifier. Dotted names are quoted per part and
	// as, when not empty, is appended as a quoted alias.
	QuoteName(name, as string) string
	// Quote returns text as a string literal, escaped unless escape is false.
	Quote(text string, escape bool) string
	// Escape escapes text for use inside a string literal. With extra set,
	// LIKE wildcards are escaped too.
	Escape(text string, extra bool) string
	// QuoteBinary returns data as a binary literal.
	QuoteBinary(data []byte) string
	// DecodeBinary turns a fetched binary column back into raw bytes. Values
	// that are not in the dialect's binary text form are returned unchanged.
	DecodeBinary(value string) []byte
	// LiteralQuotes lists the characters that delimit string literals.
	LiteralQuotes() string
	// Placeholder renders the positional marker for zero-based position pos.
	Placeholder(pos int) string

	NullDate() string
	DateFormat() string

	CastAs(typ, value string, length int) (string, error)
	Concatenate(values []string, separator string) string
	CharLength(field, operator, condition string) string
	Length(value string) string
	DatePart(part DatePart, date string) string
	DateAdd(date, interval string, part DatePart) string
	CurrentTimestamp() string
	Rand() string

	// Limit appends the dialect's LIMIT/OFFSET clause to sql.
	Limit(sql string, limit, offset int) string
	// Truncate returns the statement emptying table.
	Truncate(table string) string

	StartTransaction() string
	Savepoint(name string) string
	ReleaseSavepoint(name string) string
	RollbackToSavepoint(name string) string
}

// standard is the ANSI flavoured base every dialect builds on. Dialects
// configure it with their quoting rules and override what differs.
type standard struct {
	name       string
	nameOpen   string
	nameClose  string
	literals   string
	nullDate   string
	backslash  bool
	startTxSQL string
}

// Name implements Dialect.
func (s *standard) Name() string { return s.name }

// QuoteName implements Dialect.
func (s *standard) QuoteName(name, as string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		if part == "*" {
			continue
		}
		parts[i] = s.nameOpen + strings.ReplaceAll(part, s.nameClose, s.nameClose+s.nameClose) + s.nameClose
	}

	quoted := strings.Join(parts, ".")
	if as != "" {
		quoted += " AS " + s.QuoteName(as, "")
	}
	return quoted
}

// Quote implements Dialect.
func (s *standard) Quote(text string, escape bool) string {
	if escape {
		text = s.Escape(text, false)
	}
	return "'" + text + "'"
}

// Escape implements Dialect.
func (s *standard) Escape(text string, extra bool) string {
	var b strings.Builder
	b.Grow(len(text) + 8)

	for i := 0; i < len(text); i++ {
		c := text[i]
		if s.backslash {
			switch c {
			case 0:
				b.WriteString(`\0`)
				continue
			case '\n':
				b.WriteString(`\n`)
				continue
			case '\r':
				b.WriteString(`\r`)
				continue
			case '\\', '\'', '"':
				b.WriteByte('\\')
				b.WriteByte(c)
				continue
			case 0x1a:
				b.WriteString(`\Z`)
				continue
			}
		} else if c == '\'' {
			b.WriteString("''")
			continue
		}

		if extra && (c == '%' || c == '_') {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

// QuoteBinary implements Dialect.
func (s *standard) QuoteBinary(data []byte) string {
	return "X'" + hex.EncodeToString(data) + "'"
}

// DecodeBinary implements Dialect.
func (s *standard) DecodeBinary(value string) []byte {
	return []byte(value)
}

// LiteralQuotes implements Dialect.
func (s *standard) LiteralQuotes() string { return s.literals }

// Placeholder implements Dialect.
func (s *standard) Placeholder(int) string { return "?" }

// NullDate implements Dialect.
func (s *standard) NullDate() string { return s.nullDate }

// DateFormat implements Dialect.
func (s *standard) DateFormat() string { return "2006-01-02 15:04:05" }

// CastAs implements Dialect.
func (s *standard) CastAs(typ, value string, length int) (string, error) {
	switch strings.ToUpper(typ) {
	case "CHAR":
		if length > 0 {
			return fmt.Sprintf("CAST(%s AS CHAR(%d))", value, length), nil
		}
		return "CAST(" + value + " AS TEXT)", nil
	case "INT":
		return "CAST(" + value + " AS INTEGER)", nil
	}
	return value, fmt.Errorf("%w: %s", ErrUnsupportedCast, typ)
}

// Concatenate implements Dialect.
func (s *standard) Concatenate(values []string, separator string) string {
	if separator == "" {
		return strings.Join(values, " || ")
	}
	return strings.Join(values, " || "+s.Quote(separator, true)+" || ")
}

// CharLength implements Dialect.
func (s *standard) CharLength(field, operator, condition string) string {
	return withCondition("LENGTH("+field+")", operator, condition)
}

// Length implements Dialect.
func (s *standard) Length(value string) string {
	return "LENGTH(" + value + ")"
}

// DatePart implements Dialect.
func (s *standard) DatePart(part DatePart, date string) string {
	return "EXTRACT(" + string(part) + " FROM " + date + ")"
}

// DateAdd implements Dialect.
func (s *standard) DateAdd(date, interval string, part DatePart) string {
	return "(" + date + " + INTERVAL " + s.Quote(interval+" "+string(part), true) + ")"
}

// CurrentTimestamp implements Dialect.
func (s *standard) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

// Rand implements Dialect.
func (s *standard) Rand() string { return "RANDOM()" }

// Limit implements Dialect.
func (s *standard) Limit(sql string, limit, offset int) string {
	if limit > 0 {
		sql += "\nLIMIT " + strconv.Itoa(limit)
	} else if offset > 0 {
		sql += "\nLIMIT -1"
	}
	if offset > 0 {
		sql += " OFFSET " + strconv.Itoa(offset)
	}
	return sql
}

// Truncate implements Dialect.
func (s *standard) Truncate(table string) string {
	return "TRUNCATE TABLE " + s.QuoteName(table, "")
}

// StartTransaction implements Dialect.
func (s *standard) StartTransaction() string { return s.startTxSQL }

// Savepoint implements Dialect.
func (s *standard) Savepoint(name string) string {
	return "SAVEPOINT " + s.QuoteName(name, "")
}

// ReleaseSavepoint implements Dialect.
func (s *standard) ReleaseSavepoint(name string) string {
	return "RELEASE SAVEPOINT " + s.QuoteName(name, "")
}

// RollbackToSavepoint implements Dialect.
func (s *standard) RollbackToSavepoint(name string) string {
	return "ROLLBACK TO SAVEPOINT " + s.QuoteName(name, "")
}

func withCondition(expr, operator, condition string) string {
	if operator == "" || condition == "" {
		return expr
	}
	return expr + " " + operator + " " + condition
}

var (
	dialectsMu sync.RWMutex
	dialects   = map[string]Dialect{}
)

// RegisterDialect makes d available under d.Name(). It panics when the name
// is empty or already taken.
func RegisterDialect(d Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()

	if d == nil || d.Name() == "" {
		panic("query: RegisterDialect dialect is nil or unnamed")
	}
	if _, dup := dialects[d.Name()]; dup {
		panic("query: RegisterDialect called twice for dialect " + d.Name())
	}
	dialects[d.Name()] = d
}

// DialectFor returns the dialect registered under name.
func DialectFor(name string) (Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[name]
	return d, ok
}

// Dialects returns the sorted names of the registered dialects.
func Dialects() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()

	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	RegisterDialect(MySQL())
	RegisterDialect(PostgreSQL())
	RegisterDialect(SQLite())
}
