package sqltext_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/satishbabariya/dbkit/sqltext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSQL(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "line comment and quoted semicolon",
			sql:  "SELECT 1; -- comment\nSELECT ';' ;",
			want: []string{"SELECT 1;", "SELECT ';' ;"},
		},
		{
			name: "missing final semicolon",
			sql:  "SELECT 1;SELECT 2",
			want: []string{"SELECT 1;", "SELECT 2;"},
		},
		{
			name: "block and hash comments are dropped",
			sql:  "/* header; */\nCREATE TABLE a (id int);\n# note; here\nINSERT INTO #__a VALUES (1);",
			want: []string{"CREATE TABLE a (id int);", "INSERT INTO #__a VALUES (1);"},
		},
		{
			name: "optimizer hints stay in the statement",
			sql:  "SELECT /*+ MAX_EXECUTION_TIME(1) */ 1; SELECT /*!40101 2 */;",
			want: []string{"SELECT /*+ MAX_EXECUTION_TIME(1) */ 1;", "SELECT /*!40101 2 */;"},
		},
		{
			name: "escaped quote inside literal",
			sql:  `INSERT INTO t VALUES ('it\'s; fine');SELECT 1`,
			want: []string{`INSERT INTO t VALUES ('it\'s; fine');`, "SELECT 1;"},
		},
		{
			name: "double quoted semicolon",
			sql:  `SELECT "a;b" FROM t;`,
			want: []string{`SELECT "a;b" FROM t;`},
		},
		{
			name: "trailing comment without semicolon",
			sql:  "SELECT 1 -- trailing",
			want: []string{"SELECT 1;"},
		},
		{
			name: "empty statements are skipped",
			sql:  "  ;  ; SELECT 1;;",
			want: []string{"SELECT 1;"},
		},
		{
			name: "unterminated quote keeps the rest",
			sql:  "SELECT 'abc; SELECT 2",
			want: []string{"SELECT 'abc; SELECT 2;"},
		},
		{
			name: "unterminated block comment",
			sql:  "SELECT 1; /* never closed",
			want: []string{"SELECT 1;"},
		},
		{
			name: "empty input",
			sql:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sqltext.SplitSQL(tt.sql))
		})
	}
}

func TestSplitSQL_StatementCount(t *testing.T) {
	decorations := []string{
		"-- line comment; with semicolon\n",
		"/* block; comment */ ",
		"# hash comment;\n",
		"",
	}

	for n := 1; n <= 12; n++ {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteString(decorations[i%len(decorations)])
			fmt.Fprintf(&b, "INSERT INTO #__t VALUES (%d, 'a;b', \"c;d\");\n", i)
		}

		got := sqltext.SplitSQL(b.String())
		require.Len(t, got, n)
		for i, stmt := range got {
			assert.Equal(t, fmt.Sprintf("INSERT INTO #__t VALUES (%d, 'a;b', \"c;d\");", i), stmt)
		}
	}
}

func TestSplitSQLWith_CustomHints(t *testing.T) {
	sql := "SELECT /*+ hint */ 1; SELECT /*~ kept */ 2;"

	got := sqltext.SplitSQLWith(sql, []string{"/*~"})
	assert.Equal(t, []string{"SELECT  1;", "SELECT /*~ kept */ 2;"}, got)
}
