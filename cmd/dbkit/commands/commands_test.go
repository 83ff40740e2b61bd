package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/satishbabariya/dbkit/database"
	_ "github.com/satishbabariya/dbkit/database/mysql"
	_ "github.com/satishbabariya/dbkit/database/postgres"
	_ "github.com/satishbabariya/dbkit/database/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func count(t *testing.T, file, prefix, table string) any {
	t.Helper()
	ctx := context.Background()
	db, err := database.New(database.Options{Driver: "sqlite", Database: file, Prefix: prefix})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.SetQuery(ctx, "SELECT COUNT(*) FROM "+table))
	n, err := db.LoadResult(ctx)
	require.NoError(t, err)
	return n
}

const script = `CREATE TABLE #__items (id INTEGER PRIMARY KEY AUTOINCREMENT, title VARCHAR(100) NOT NULL);
INSERT INTO #__items (title) VALUES ('first; with semicolon');
INSERT INTO #__items (title) VALUES ('second');
SELECT id, title FROM #__items ORDER BY id;
`

func TestSplit(t *testing.T) {
	out, err := run(t, "split", writeFile(t, "script.sql", script))
	require.NoError(t, err)
	assert.Contains(t, out, "[1/4]")
	assert.Contains(t, out, "[4/4]")
	assert.Contains(t, out, "'first; with semicolon'")
}

func TestPrefix(t *testing.T) {
	out, err := run(t, "prefix", "--prefix", "jos_", writeFile(t, "q.sql", "SELECT '#__kept' FROM #__users"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT '#__kept' FROM jos_users\n", out)
}

func TestExecWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	metrics := filepath.Join(dir, "dbkit.prom")
	conn := []string{"--driver", "sqlite", "--database", filepath.Join(dir, "app.db"), "--metrics", metrics}

	_, err := run(t, append([]string{"exec", writeFile(t, "script.sql", script)}, conn...)...)
	require.NoError(t, err)

	data, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(data), `dbkit_statements_total{operation="insert",status="success"} 2`)
	assert.Contains(t, string(data), `dbkit_statements_total{operation="select",status="success"} 1`)
	assert.Contains(t, string(data), "dbkit_statement_duration_seconds_bucket")
}

func TestPrefixFollowsDriverQuotes(t *testing.T) {
	file := writeFile(t, "q.sql", `SELECT '#__kept' FROM "#__users"`)

	out, err := run(t, "prefix", "--driver", "pgsql", "--prefix", "jos_", file)
	require.NoError(t, err)
	assert.Equal(t, "SELECT '#__kept' FROM \"jos_users\"\n", out)

	out, err = run(t, "prefix", "--driver", "mysql", "--prefix", "jos_", file)
	require.NoError(t, err)
	assert.Equal(t, "SELECT '#__kept' FROM \"#__users\"\n", out)
}

func TestExecAndInspect(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "app.db")
	conn := []string{"--driver", "sqlite", "--database", dbFile, "--prefix", "x_"}

	out, err := run(t, append([]string{"exec", writeFile(t, "script.sql", script)}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "1 rows affected")
	assert.Contains(t, out, "first; with semicolon")
	assert.Contains(t, out, "Executed 4 statements")

	out, err = run(t, append([]string{"tables"}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "x_items")

	out, err = run(t, append([]string{"columns", "#__items"}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "title")
	assert.Contains(t, out, "VARCHAR(100)")

	out, err = run(t, append([]string{"describe", "--raw", "#__items"}, conn...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "# x_items")
	assert.Contains(t, out, "| title | VARCHAR(100) | NO |")
	assert.Contains(t, out, "CREATE TABLE x_items")
}

func TestExecTransactionRollsBack(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "app.db")
	conn := []string{"--driver", "sqlite", "--database", dbFile}

	_, err := run(t, append([]string{"exec", writeFile(t, "schema.sql", "CREATE TABLE t (id INTEGER);")}, conn...)...)
	require.NoError(t, err)

	failing := writeFile(t, "data.sql", "INSERT INTO t VALUES (1);\nINSERT INTO missing VALUES (2);\n")
	_, err = run(t, append([]string{"exec", "--transaction", failing}, conn...)...)
	require.Error(t, err)

	assert.Equal(t, "0", count(t, dbFile, "", "t"))
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.db")
	dst := filepath.Join(dir, "dst.db")
	doc := filepath.Join(dir, "dump.yaml")

	_, err := run(t, "exec", writeFile(t, "script.sql", script), "--driver", "sqlite", "--database", src, "--prefix", "a_")
	require.NoError(t, err)

	out, err := run(t, "export", "#__items", "--data", "-f", "yaml", "-o", doc, "--driver", "sqlite", "--database", src, "--prefix", "a_")
	require.NoError(t, err)
	assert.Contains(t, out, "Exported to")

	out, err = run(t, "import", doc, "--driver", "sqlite", "--database", dst, "--prefix", "b_")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported")

	assert.Equal(t, "2", count(t, dst, "b_", "#__items"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, err := run(t, "export", "-f", "json", "--driver", "sqlite")
	assert.ErrorIs(t, err, database.ErrInvalidArgument)
}

func TestDrivers(t *testing.T) {
	out, err := run(t, "drivers")
	require.NoError(t, err)
	assert.Contains(t, out, "sqlite")
	assert.Contains(t, out, "3.8.3")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version", "--server", "--driver", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "dbkit version dev")
	assert.Contains(t, out, "Server: sqlite 3.")
}

func TestConfigSaveAndShow(t *testing.T) {
	file := filepath.Join(t.TempDir(), "dbkit.yaml")

	out, err := run(t, "config", "save", "-o", file, "--driver", "sqlite", "--database", "/data/app.db", "--prefix", "p_")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved "+file)

	out, err = run(t, "config", "show", "--config", file)
	require.NoError(t, err)
	assert.Contains(t, out, "/data/app.db")
	assert.Contains(t, out, "p_")
}

func TestFormatFromExt(t *testing.T) {
	assert.Equal(t, "yaml", formatFromExt("dump.yml"))
	assert.Equal(t, "xml", formatFromExt("dump.xml"))
	assert.Equal(t, "xml", formatFromExt("dump"))
}
