package database

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/satishbabariya/dbkit/query"
)

// Server families reported by Backend.ServerType.
const (
	ServerMySQL      = "mysql"
	ServerPostgreSQL = "postgresql"
	ServerSQLite     = "sqlite"
)

// Backend adapts one native client library. Backends register themselves
// under a driver name with Register.
type Backend interface {
	// Name is the driver name the backend is registered under.
	Name() string
	// ServerType names the server family, shared by backends talking to the
	// same kind of server.
	ServerType() string
	Dialect() query.Dialect
	// MinimumVersion is the oldest server version the backend supports.
	MinimumVersion() string

	// Open establishes a connection and applies the session settings the
	// backend needs.
	Open(ctx context.Context, opts Options, log *slog.Logger) (Conn, error)
	Inspector() Inspector
	// Describe extracts the native error code and message from err.
	Describe(err error) (code, message string)
}

// Conn is one physical connection.
type Conn interface {
	// Prepare prepares sql. Named parameters have already been rewritten to
	// positional ones unless NamedParameters reports true.
	Prepare(ctx context.Context, sql string) (Stmt, error)
	// Exec runs sql without preparing it and returns the affected row count.
	Exec(ctx context.Context, sql string) (int64, error)
	Ping(ctx context.Context) error
	Close() error

	// NamedParameters reports whether the connection binds :name markers
	// natively.
	NamedParameters() bool
	// LastInsertID returns the key generated by the last insert.
	LastInsertID(ctx context.Context) (int64, error)
}

// Stmt is a native prepared statement.
type Stmt interface {
	Exec(ctx context.Context, args []Arg) (Cursor, error)
	Close() error
}

// Arg is one value sent with a statement execution. Name is empty for
// positional arguments.
type Arg struct {
	Name  string
	Value any
}

// Cursor is the forward-only result of one execution. Statements that
// return no rows yield a cursor without columns.
type Cursor interface {
	Columns() []string
	Next() bool
	// Scan copies the current row into dest, which has one entry per column.
	Scan(dest []sql.NullString) error
	Err() error
	Close() error
	RowsAffected() int64
}

// Rewriter is implemented by connections that adjust statement text after
// prefix replacement.
type Rewriter interface {
	RewriteSQL(sql string) string
}

// Selector is implemented by connections able to switch databases.
type Selector interface {
	Select(ctx context.Context, database string) error
}

// Inspector reads schema metadata through a driver.
type Inspector interface {
	TableList(ctx context.Context, db *Driver) ([]string, error)
	TableColumns(ctx context.Context, db *Driver, table string) ([]Column, error)
	TableKeys(ctx context.Context, db *Driver, table string) ([]Key, error)
	TableCreate(ctx context.Context, db *Driver, table string) (string, error)
	Version(ctx context.Context, db *Driver) (string, error)
	Collation(ctx context.Context, db *Driver) (string, error)
}

// Column describes a table column.
type Column struct {
	Name      string  `xml:"Field,attr" yaml:"name"`
	Type      string  `xml:"Type,attr" yaml:"type"`
	Null      bool    `xml:"Null,attr" yaml:"null"`
	Key       string  `xml:"Key,attr,omitempty" yaml:"key,omitempty"`
	Default   *string `xml:"Default,attr,omitempty" yaml:"default,omitempty"`
	Extra     string  `xml:"Extra,attr,omitempty" yaml:"extra,omitempty"`
	Comment   string  `xml:"Comment,attr,omitempty" yaml:"comment,omitempty"`
	Collation string  `xml:"Collation,attr,omitempty" yaml:"collation,omitempty"`
}

// Key describes one column of a table index.
type Key struct {
	Name    string `xml:"Key_name,attr" yaml:"name"`
	Column  string `xml:"Column_name,attr" yaml:"column"`
	Seq     int    `xml:"Seq_in_index,attr" yaml:"seq"`
	Unique  bool   `xml:"Unique,attr" yaml:"unique"`
	Primary bool   `xml:"Primary,attr" yaml:"primary"`
}
