package mysql

import (
	"fmt"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/satishbabariya/dbkit/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	off := false
	tests := []struct {
		name string
		opts database.Options
		want string
	}{
		{
			name: "tcp",
			opts: database.Options{Host: "db:3307", User: "root", Password: "secret", Database: "app"},
			want: "root:secret@tcp(db:3307)/app",
		},
		{
			name: "socket",
			opts: database.Options{Host: "unix:/tmp/mysql.sock", User: "root", Database: "app"},
			want: "root@unix(/tmp/mysql.sock)/app",
		},
		{
			name: "no select",
			opts: database.Options{Host: "localhost", User: "root", Database: "app", Select: &off},
			want: "root@tcp(localhost:3306)/",
		},
		{
			name: "timeout",
			opts: database.Options{User: "u", ConnectTimeout: 5 * time.Second},
			want: "u@tcp(localhost:3306)/?timeout=5s",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DSN(tt.opts))
		})
	}
}

func TestDowngradeCharset(t *testing.T) {
	assert.Equal(t,
		"CREATE TABLE `utf8mb4_t` (a TEXT) DEFAULT CHARSET=utf8 COLLATE=utf8_unicode_ci COMMENT 'utf8mb4'",
		DowngradeCharset("CREATE TABLE `utf8mb4_t` (a TEXT) DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci COMMENT 'utf8mb4'"))
	assert.Equal(t, "alter table t convert to character set utf8", DowngradeCharset("alter table t convert to character set UTF8MB4"))
	assert.Equal(t, "SELECT 'utf8mb4', utf8mb4", DowngradeCharset("SELECT 'utf8mb4', utf8mb4"))
}

func TestRewriteSQL(t *testing.T) {
	sql := "CREATE TABLE t (a TEXT) CHARSET=utf8mb4"
	assert.Equal(t, sql, (&Conn{utf8mb4: true}).RewriteSQL(sql))
	assert.Equal(t, "CREATE TABLE t (a TEXT) CHARSET=utf8", (&Conn{}).RewriteSQL(sql))
}

func TestDescribe(t *testing.T) {
	err := fmt.Errorf("exec: %w", &gomysql.MySQLError{Number: 1146, Message: "Table 'app.x' doesn't exist"})
	code, msg := Backend{}.Describe(err)
	assert.Equal(t, "1146", code)
	assert.Equal(t, "Table 'app.x' doesn't exist", msg)

	code, msg = Backend{}.Describe(fmt.Errorf("other"))
	assert.Empty(t, code)
	assert.Empty(t, msg)
}

func TestRegistered(t *testing.T) {
	require.Contains(t, database.Drivers(), Name)
	db, err := database.New(database.Options{Driver: Name})
	require.NoError(t, err)
	assert.Equal(t, database.ServerMySQL, db.ServerType())
	assert.Equal(t, "5.6", db.MinimumVersion())
}
