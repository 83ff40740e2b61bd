package query

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

type postgresDialect struct {
	standard
}

// PostgreSQL returns the dialect shared by both PostgreSQL backends.
func PostgreSQL() Dialect {
	return &postgresDialect{standard{
		name:       "postgresql",
		nameOpen:   `"`,
		nameClose:  `"`,
		literals:   "'",
		nullDate:   "1970-01-01 00:00:00",
		startTxSQL: "START TRANSACTION",
	}}
}

func (d *postgresDialect) Placeholder(pos int) string {
	return "$" + strconv.Itoa(pos+1)
}

func (d *postgresDialect) QuoteBinary(data []byte) string {
	return "decode('" + hex.EncodeToString(data) + "', 'hex')"
}

// DecodeBinary decodes bytea values returned in the hex output format.
func (d *postgresDialect) DecodeBinary(value string) []byte {
	if !strings.HasPrefix(value, `\x`) {
		return []byte(value)
	}
	raw, err := hex.DecodeString(value[2:])
	if err != nil {
		return []byte(value)
	}
	return raw
}

func (d *postgresDialect) CastAs(typ, value string, length int) (string, error) {
	switch strings.ToUpper(typ) {
	case "CHAR":
		if length > 0 {
			return fmt.Sprintf("CAST(%s AS CHAR(%d))", value, length), nil
		}
		return value + "::text", nil
	case "INT":
		return "CAST(" + value + " AS INTEGER)", nil
	}
	return value, fmt.Errorf("%w: %s", ErrUnsupportedCast, typ)
}

func (d *postgresDialect) DateAdd(date, interval string, part DatePart) string {
	op := "+"
	if strings.HasPrefix(interval, "-") {
		op, interval = "-", strings.TrimPrefix(interval, "-")
	}
	return "(CAST(" + date + " AS TIMESTAMP) " + op + " INTERVAL " + d.Quote(interval+" "+string(part), true) + ")"
}

func (d *postgresDialect) Limit(sql string, limit, offset int) string {
	if limit > 0 {
		sql += "\nLIMIT " + strconv.Itoa(limit)
	}
	if offset > 0 {
		sql += "\nOFFSET " + strconv.Itoa(offset)
	}
	return sql
}

func (d *postgresDialect) Truncate(table string) string {
	return "TRUNCATE TABLE " + d.QuoteName(table, "") + " RESTART IDENTITY"
}
