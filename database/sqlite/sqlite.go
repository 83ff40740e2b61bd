// Package sqlite registers the "sqlite" driver, backed by
// github.com/mattn/go-sqlite3. Options.Database is the database file, or
// ":memory:".
package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/internal/sqlconn"
	"github.com/satishbabariya/dbkit/query"
)

// Name is the driver name.
const Name = "sqlite"

func init() {
	database.Register(Name, Backend{})
}

// Backend implements database.Backend. SQLite binds :name markers itself,
// so statements reach it unrewritten.
type Backend struct{}

func (Backend) Name() string                  { return Name }
func (Backend) ServerType() string            { return database.ServerSQLite }
func (Backend) Dialect() query.Dialect        { return query.SQLite() }
func (Backend) MinimumVersion() string        { return "3.8.3" }
func (Backend) Inspector() database.Inspector { return inspector{} }

// DSN returns the go-sqlite3 data source for opts. Params become URI query
// parameters such as _busy_timeout or _foreign_keys.
func DSN(opts database.Options) string {
	path := opts.Database
	if path == "" {
		path = ":memory:"
	}
	if len(opts.Params) == 0 {
		return path
	}

	v := url.Values{}
	for k, p := range opts.Params {
		v.Set(k, p)
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + v.Encode()
}

// Open implements database.Backend.
func (Backend) Open(ctx context.Context, opts database.Options, log *slog.Logger) (database.Conn, error) {
	return sqlconn.Open(ctx, sqlconn.Config{
		DriverName: "sqlite3",
		DSN:        DSN(opts),
		Named:      true,
		Log:        log,
	})
}

// Describe implements database.Backend.
func (Backend) Describe(err error) (string, string) {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return strconv.Itoa(int(se.ExtendedCode)), se.Error()
	}
	return "", ""
}
