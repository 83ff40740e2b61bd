package query

import "strings"

type sqliteDialect struct {
	standard
}

// SQLite returns the dialect for SQLite 3.
func SQLite() Dialect {
	return &sqliteDialect{standard{
		name:       "sqlite",
		nameOpen:   "`",
		nameClose:  "`",
		literals:   "'",
		nullDate:   "0000-00-00 00:00:00",
		startTxSQL: "BEGIN",
	}}
}

var strftimeFormats = map[DatePart]string{
	Year:   "%Y",
	Month:  "%m",
	Day:    "%d",
	Hour:   "%H",
	Minute: "%M",
	Second: "%S",
}

func (d *sqliteDialect) DatePart(part DatePart, date string) string {
	format, ok := strftimeFormats[part]
	if !ok {
		return d.standard.DatePart(part, date)
	}
	return "CAST(strftime('" + format + "', " + date + ") AS INTEGER)"
}

func (d *sqliteDialect) DateAdd(date, interval string, part DatePart) string {
	if !strings.HasPrefix(interval, "-") && !strings.HasPrefix(interval, "+") {
		interval = "+" + interval
	}
	return "datetime(" + date + ", " + d.Quote(interval+" "+strings.ToLower(string(part)), true) + ")"
}

// Truncate empties table with DELETE; SQLite has no TRUNCATE statement.
func (d *sqliteDialect) Truncate(table string) string {
	return "DELETE FROM " + d.QuoteName(table, "")
}
