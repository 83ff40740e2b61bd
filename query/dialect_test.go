package query_test

import (
	"testing"

	"github.com/satishbabariya/dbkit/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialect_Quoting(t *testing.T) {
	my, pg, lite := query.MySQL(), query.PostgreSQL(), query.SQLite()

	assert.Equal(t, "`a`.`title` AS `t`", my.QuoteName("a.title", "t"))
	assert.Equal(t, `"a"."ti""tle"`, pg.QuoteName(`a.ti"tle`, ""))
	assert.Equal(t, "`a`.*", lite.QuoteName("a.*", ""))

	assert.Equal(t, `'it\'s'`, my.Quote("it's", true))
	assert.Equal(t, `'it''s'`, pg.Quote("it's", true))
	assert.Equal(t, `'it's'`, lite.Quote("it's", false))

	assert.Equal(t, `a\\b\n\"c\"`, my.Escape("a\\b\n\"c\"", false))
	assert.Equal(t, `50\% off\_x`, pg.Escape("50% off_x", true))
	assert.Equal(t, `50% off_x`, lite.Escape("50% off_x", false))
}

func TestDialect_LiteralQuotes(t *testing.T) {
	assert.Equal(t, `'"`, query.MySQL().LiteralQuotes())
	assert.Equal(t, "'", query.PostgreSQL().LiteralQuotes())
	assert.Equal(t, "'", query.SQLite().LiteralQuotes())
}

func TestDialect_Binary(t *testing.T) {
	data := []byte{0xde, 0xad, 0x01}

	assert.Equal(t, "X'dead01'", query.MySQL().QuoteBinary(data))
	assert.Equal(t, "decode('dead01', 'hex')", query.PostgreSQL().QuoteBinary(data))

	assert.Equal(t, data, query.PostgreSQL().DecodeBinary(`\xdead01`))
	assert.Equal(t, []byte("plain"), query.PostgreSQL().DecodeBinary("plain"))
	assert.Equal(t, []byte(`\xzz`), query.PostgreSQL().DecodeBinary(`\xzz`))
}

func TestDialect_CastAs(t *testing.T) {
	tests := []struct {
		dialect query.Dialect
		typ     string
		length  int
		want    string
	}{
		{query.MySQL(), "CHAR", 0, "CAST(a AS CHAR)"},
		{query.MySQL(), "char", 5, "CAST(a AS CHAR(5))"},
		{query.MySQL(), "INT", 0, "CAST(a AS SIGNED INTEGER)"},
		{query.PostgreSQL(), "CHAR", 0, "a::text"},
		{query.PostgreSQL(), "INT", 0, "CAST(a AS INTEGER)"},
		{query.SQLite(), "CHAR", 0, "CAST(a AS TEXT)"},
		{query.SQLite(), "INT", 0, "CAST(a AS INTEGER)"},
	}
	for _, tt := range tests {
		got, err := tt.dialect.CastAs(tt.typ, "a", tt.length)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.dialect.Name(), tt.typ)
	}

	q := query.New(query.MySQL())
	assert.Equal(t, "a", q.CastAs("FLOAT", "a", 0))
	require.ErrorIs(t, q.Err(), query.ErrUnsupportedCast)
}

func TestDialect_Functions(t *testing.T) {
	my := query.New(query.MySQL())
	pg := query.New(query.PostgreSQL())
	lite := query.New(query.SQLite())

	assert.Equal(t, "CONCAT(a, b)", my.Concatenate([]string{"a", "b"}, ""))
	assert.Equal(t, "CONCAT_WS(' ', a, b)", my.Concatenate([]string{"a", "b"}, " "))
	assert.Equal(t, "a || ', ' || b", pg.Concatenate([]string{"a", "b"}, ", "))

	assert.Equal(t, "CHAR_LENGTH(title) > 3", my.CharLength("title", ">", "3"))
	assert.Equal(t, "LENGTH(title)", lite.CharLength("title", "", ""))

	assert.Equal(t, "YEAR(created)", my.Year("created"))
	assert.Equal(t, "EXTRACT(MONTH FROM created)", pg.Month("created"))
	assert.Equal(t, "CAST(strftime('%d', created) AS INTEGER)", lite.Day("created"))

	assert.Equal(t, "DATE_ADD(d, INTERVAL 1 DAY)", my.DateAdd("d", "1", query.Day))
	assert.Equal(t, "(CAST(d AS TIMESTAMP) - INTERVAL '2 HOUR')", pg.DateAdd("d", "-2", query.Hour))
	assert.Equal(t, "datetime(d, '+3 minute')", lite.DateAdd("d", "3", query.Minute))

	assert.Equal(t, "RAND()", my.Rand())
	assert.Equal(t, "RANDOM()", pg.Rand())
	assert.Equal(t, "CURRENT_TIMESTAMP()", my.CurrentTimestamp())
	assert.Equal(t, "CURRENT_TIMESTAMP", lite.CurrentTimestamp())

	assert.Equal(t, "'0000-00-00 00:00:00'", my.NullDate(true))
	assert.Equal(t, "1970-01-01 00:00:00", pg.NullDate(false))
}

func TestDialect_TableAndTransactionSQL(t *testing.T) {
	assert.Equal(t, "TRUNCATE TABLE `t`", query.MySQL().Truncate("t"))
	assert.Equal(t, `TRUNCATE TABLE "t" RESTART IDENTITY`, query.PostgreSQL().Truncate("t"))
	assert.Equal(t, "DELETE FROM `t`", query.SQLite().Truncate("t"))

	assert.Equal(t, "START TRANSACTION", query.MySQL().StartTransaction())
	assert.Equal(t, "BEGIN", query.SQLite().StartTransaction())
	assert.Equal(t, `SAVEPOINT "SP_1"`, query.PostgreSQL().Savepoint("SP_1"))
	assert.Equal(t, "RELEASE SAVEPOINT `SP_0`", query.MySQL().ReleaseSavepoint("SP_0"))
	assert.Equal(t, "ROLLBACK TO SAVEPOINT `SP_0`", query.SQLite().RollbackToSavepoint("SP_0"))
}

func TestDialect_Placeholder(t *testing.T) {
	assert.Equal(t, "?", query.MySQL().Placeholder(0))
	assert.Equal(t, "$1", query.PostgreSQL().Placeholder(0))
	assert.Equal(t, "$3", query.PostgreSQL().Placeholder(2))
}

func TestDialectRegistry(t *testing.T) {
	assert.Equal(t, []string{"mysql", "postgresql", "sqlite"}, query.Dialects())

	d, ok := query.DialectFor("postgresql")
	require.True(t, ok)
	assert.Equal(t, "postgresql", d.Name())

	_, ok = query.DialectFor("oracle")
	assert.False(t, ok)

	assert.Panics(t, func() { query.RegisterDialect(query.MySQL()) })
}

func TestQuery_Format(t *testing.T) {
	q := query.New(query.MySQL())

	got := q.Format("SELECT %n FROM %n WHERE %n = %q AND pct LIKE '%E%%' LIMIT %a", "a.id", "#__t", "name", "O'Brien", "5_", 3)
	assert.Equal(t, "SELECT `a`.`id` FROM `#__t` WHERE `name` = 'O\\'Brien' AND pct LIKE '5\\_%' LIMIT 3", got)

	assert.Equal(t, "x = ''", q.Format("x = %q"))
	assert.Equal(t, "%z", q.Format("%z"))
}
