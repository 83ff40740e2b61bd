package query

import (
	"fmt"
	"strconv"
	"strings"
)

type mysqlDialect struct {
	standard
}

// MySQL returns the dialect for MySQL and MariaDB servers.
func MySQL() Dialect {
	return &mysqlDialect{standard{
		name:       "mysql",
		nameOpen:   "`",
		nameClose:  "`",
		literals:   `'"`,
		nullDate:   "0000-00-00 00:00:00",
		backslash:  true,
		startTxSQL: "START TRANSACTION",
	}}
}

func (d *mysqlDialect) CastAs(typ, value string, length int) (string, error) {
	switch strings.ToUpper(typ) {
	case "CHAR":
		if length > 0 {
			return fmt.Sprintf("CAST(%s AS CHAR(%d))", value, length), nil
		}
		return "CAST(" + value + " AS CHAR)", nil
	case "INT":
		return "CAST(" + value + " AS SIGNED INTEGER)", nil
	}
	return value, fmt.Errorf("%w: %s", ErrUnsupportedCast, typ)
}

func (d *mysqlDialect) Concatenate(values []string, separator string) string {
	if separator == "" {
		return "CONCAT(" + strings.Join(values, ", ") + ")"
	}
	return "CONCAT_WS(" + d.Quote(separator, true) + ", " + strings.Join(values, ", ") + ")"
}

func (d *mysqlDialect) CharLength(field, operator, condition string) string {
	return withCondition("CHAR_LENGTH("+field+")", operator, condition)
}

func (d *mysqlDialect) DatePart(part DatePart, date string) string {
	return string(part) + "(" + date + ")"
}

func (d *mysqlDialect) DateAdd(date, interval string, part DatePart) string {
	return "DATE_ADD(" + date + ", INTERVAL " + interval + " " + string(part) + ")"
}

func (d *mysqlDialect) CurrentTimestamp() string { return "CURRENT_TIMESTAMP()" }

func (d *mysqlDialect) Rand() string { return "RAND()" }

// Limit renders MySQL's "LIMIT offset, count" form. An offset without a
// limit uses the largest row count the server accepts.
func (d *mysqlDialect) Limit(sql string, limit, offset int) string {
	switch {
	case limit > 0 && offset > 0:
		return sql + "\nLIMIT " + strconv.Itoa(offset) + ", " + strconv.Itoa(limit)
	case limit > 0:
		return sql + "\nLIMIT " + strconv.Itoa(limit)
	case offset > 0:
		return sql + "\nLIMIT " + strconv.Itoa(offset) + ", 18446744073709551615"
	}
	return sql
}
