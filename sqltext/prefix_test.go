package sqltext_test

import (
	"testing"

	"github.com/satishbabariya/dbkit/sqltext"
	"github.com/stretchr/testify/assert"
)

func TestReplacePrefix(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{
			name: "outside literals",
			sql:  "SELECT * FROM #__users AS u JOIN #__groups AS g ON g.id = u.gid",
			want: "SELECT * FROM jos_users AS u JOIN jos_groups AS g ON g.id = u.gid",
		},
		{
			name: "single quoted literal untouched",
			sql:  "SELECT * FROM #__users WHERE name = '#__x'",
			want: "SELECT * FROM jos_users WHERE name = '#__x'",
		},
		{
			name: "double quoted literal untouched",
			sql:  `SELECT * FROM "#__table" WHERE x='#__lit'`,
			want: `SELECT * FROM "#__table" WHERE x='#__lit'`,
		},
		{
			name: "escaped quote does not end the literal",
			sql:  `SELECT 'a\'#__b', #__c`,
			want: `SELECT 'a\'#__b', jos_c`,
		},
		{
			name: "unterminated literal copied verbatim",
			sql:  "SELECT #__a, '#__b FROM #__c",
			want: "SELECT jos_a, '#__b FROM #__c",
		},
		{
			name: "no token",
			sql:  "SELECT 1",
			want: "SELECT 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqltext.ReplacePrefix(tt.sql, "#__", "jos_"))
		})
	}
}

func TestReplacePrefixQuotes_DoubleQuotedIdentifiers(t *testing.T) {
	got := sqltext.ReplacePrefixQuotes(`SELECT * FROM "#__table" WHERE x='#__lit'`, "#__", "jos_", "'")
	assert.Equal(t, `SELECT * FROM "jos_table" WHERE x='#__lit'`, got)
}

func TestReplacePrefix_QuotedOnlyIsNoop(t *testing.T) {
	inputs := []string{
		"SELECT '#__a'",
		`SELECT "#__a", '#__b'`,
		`  INSERT INTO x VALUES ('#__one', "#__two", 'it\'s #__three')  `,
		"'#__'",
	}

	for _, sql := range inputs {
		assert.Equal(t, sql, sqltext.ReplacePrefix(sql, "#__", "jos_"))
	}
}

func TestReplacePrefix_CustomToken(t *testing.T) {
	assert.Equal(t, "SELECT * FROM app_users", sqltext.ReplacePrefix("SELECT * FROM {p}users", "{p}", "app_"))
	assert.Equal(t, "SELECT * FROM #__users", sqltext.ReplacePrefix("SELECT * FROM #__users", "", "app_"))
}
