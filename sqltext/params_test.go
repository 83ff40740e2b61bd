package sqltext_test

import (
	"strings"
	"testing"

	"github.com/satishbabariya/dbkit/sqltext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapParameterKeys(t *testing.T) {
	tests := []struct {
		name      string
		sql       string
		wantSQL   string
		wantNames []string
		wantIndex map[string]int
	}{
		{
			name:      "repeated name",
			sql:       "SELECT * FROM t WHERE id = :id OR parent = :id",
			wantSQL:   "SELECT * FROM t WHERE id = ? OR parent = ?",
			wantNames: []string{"id", "id"},
			wantIndex: map[string]int{"id": 1},
		},
		{
			name:      "placeholder inside literal is skipped",
			sql:       "WHERE a = :a AND b = ':b' AND c = :c",
			wantSQL:   "WHERE a = ? AND b = ':b' AND c = ?",
			wantNames: []string{"a", "c"},
			wantIndex: map[string]int{"a": 0, "c": 1},
		},
		{
			name:      "double quoted text is skipped",
			sql:       `SELECT "x:y" FROM t WHERE z = :z`,
			wantSQL:   `SELECT "x:y" FROM t WHERE z = ?`,
			wantNames: []string{"z"},
			wantIndex: map[string]int{"z": 0},
		},
		{
			name:      "time literal",
			sql:       "SELECT * FROM t WHERE at > '10:30' AND user_id = :user_id",
			wantSQL:   "SELECT * FROM t WHERE at > '10:30' AND user_id = ?",
			wantNames: []string{"user_id"},
			wantIndex: map[string]int{"user_id": 0},
		},
		{
			name:      "no parameters",
			sql:       "SELECT 1",
			wantSQL:   "SELECT 1",
			wantNames: nil,
			wantIndex: map[string]int{},
		},
		{
			name:      "mixed order",
			sql:       "INSERT INTO t (a, b, c) VALUES (:b, :a, :b)",
			wantSQL:   "INSERT INTO t (a, b, c) VALUES (?, ?, ?)",
			wantNames: []string{"b", "a", "b"},
			wantIndex: map[string]int{"a": 1, "b": 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := sqltext.MapParameterKeys(tt.sql)
			assert.Equal(t, tt.wantSQL, m.SQL)
			assert.Equal(t, tt.wantNames, m.Names)
			assert.Equal(t, tt.wantIndex, m.Index)
		})
	}
}

func TestMapParameterKeysFunc_Dollar(t *testing.T) {
	m := sqltext.MapParameterKeysFunc("SELECT :a::text, :b FROM t WHERE c = ':c'", sqltext.DollarNumber)

	assert.Equal(t, "SELECT $1::text, $2 FROM t WHERE c = ':c'", m.SQL)
	assert.Equal(t, []string{"a", "b"}, m.Names)
}

func TestMapParameterKeys_PlaceholderCount(t *testing.T) {
	inputs := []string{
		"SELECT :a, :b, :a, :c FROM t",
		"UPDATE t SET x = :x, y = ':y', z = \":z\" WHERE id = :id AND id2 = :id",
		"SELECT * FROM t WHERE a IN (:p1,:p2,:p3) OR b = :p2",
	}

	for _, sql := range inputs {
		m := sqltext.MapParameterKeys(sql)
		require.Equal(t, len(m.Names), strings.Count(m.SQL, "?"), sql)
		for name, pos := range m.Index {
			last := -1
			for i, n := range m.Names {
				if n == name {
					last = i
				}
			}
			assert.Equal(t, last, pos, "%s in %s", name, sql)
		}
	}
}

func TestParameterMap_Helpers(t *testing.T) {
	m := sqltext.MapParameterKeys("SELECT :b, :a, :b")

	assert.Equal(t, 3, m.Len())
	assert.True(t, m.Has(":a"))
	assert.True(t, m.Has("b"))
	assert.False(t, m.Has("c"))
	assert.Equal(t, []string{"b", "a"}, m.Distinct())
}

func TestReturnsRows(t *testing.T) {
	tests := []struct {
		sql  string
		want bool
	}{
		{"SELECT 1", true},
		{"  (SELECT 1) UNION (SELECT 2)", true},
		{"-- comment\nSHOW TABLES", true},
		{"/* c */ pragma table_info(t)", true},
		{"WITH x AS (SELECT 1) SELECT * FROM x", true},
		{"INSERT INTO t VALUES (1)", false},
		{"INSERT INTO t VALUES (1) RETURNING id", true},
		{"INSERT INTO t VALUES ('returning')", false},
		{"UPDATE t SET returning_count = 1", false},
		{"DELETE FROM t", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, sqltext.ReturnsRows(tt.sql), tt.sql)
	}
}
