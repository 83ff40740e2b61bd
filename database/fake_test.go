package database

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/satishbabariya/dbkit/query"
)

// fakeServer is an in-memory stand-in for a SQL server. It records every
// statement it runs and answers SELECTs from canned results.
type fakeServer struct {
	named   bool
	alive   bool
	opens   int
	openErr error
	lastID  int64
	version string

	executed []string
	args     [][]Arg
	results  map[string]fakeResult

	// execErr fails the next failures statement executions. With drop set a
	// failure also kills the connection.
	execErr  error
	failures int
	drop     bool

	tables  []string
	columns map[string][]Column
	keys    map[string][]Key
}

type fakeResult struct {
	columns []string
	rows    [][]sql.NullString
}

type fakeError struct {
	code int
	msg  string
}

func (e *fakeError) Error() string { return e.msg }

var fake = newFakeServer()

func newFakeServer() *fakeServer {
	return &fakeServer{
		version: "8.0.36",
		results: map[string]fakeResult{},
		columns: map[string][]Column{},
		keys:    map[string][]Key{},
	}
}

func init() {
	Register("fake", fakeBackend{})
}

// newFakeDriver resets the fake server and returns a driver bound to it.
func newFakeDriver(t *testing.T, opts Options, options ...Option) (*Driver, *fakeServer) {
	t.Helper()
	fake = newFakeServer()
	opts.Driver = "fake"
	d, err := New(opts, options...)
	if err != nil {
		t.Fatalf("new fake driver: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d, fake
}

func text(values ...string) []sql.NullString {
	out := make([]sql.NullString, len(values))
	for i, v := range values {
		out[i] = sql.NullString{String: v, Valid: true}
	}
	return out
}

type fakeBackend struct{}

func (fakeBackend) Name() string           { return "fake" }
func (fakeBackend) ServerType() string     { return ServerMySQL }
func (fakeBackend) Dialect() query.Dialect { return query.MySQL() }
func (fakeBackend) MinimumVersion() string { return "5.6" }
func (fakeBackend) Inspector() Inspector   { return fakeInspector{} }

func (fakeBackend) Open(_ context.Context, _ Options, _ *slog.Logger) (Conn, error) {
	if fake.openErr != nil {
		return nil, fake.openErr
	}
	fake.opens++
	fake.alive = true
	return &fakeConn{srv: fake}, nil
}

func (fakeBackend) Describe(err error) (string, string) {
	var fe *fakeError
	if errors.As(err, &fe) {
		return strconv.Itoa(fe.code), fe.msg
	}
	return "", ""
}

type fakeConn struct {
	srv    *fakeServer
	closed bool
}

func (c *fakeConn) Prepare(_ context.Context, text string) (Stmt, error) {
	if strings.Contains(text, "SYNTAX ERROR") {
		return nil, &fakeError{code: 1064, msg: "syntax error"}
	}
	return &fakeStmt{srv: c.srv, sql: text}, nil
}

func (c *fakeConn) Exec(_ context.Context, text string) (int64, error) {
	c.srv.executed = append(c.srv.executed, text)
	return 0, nil
}

func (c *fakeConn) Ping(context.Context) error {
	if c.closed || !c.srv.alive {
		return errors.New("server has gone away")
	}
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func (c *fakeConn) NamedParameters() bool { return c.srv.named }

func (c *fakeConn) LastInsertID(context.Context) (int64, error) { return c.srv.lastID, nil }

type fakeStmt struct {
	srv *fakeServer
	sql string
}

func (s *fakeStmt) Exec(_ context.Context, args []Arg) (Cursor, error) {
	s.srv.executed = append(s.srv.executed, s.sql)
	s.srv.args = append(s.srv.args, args)
	if s.srv.failures > 0 {
		s.srv.failures--
		if s.srv.drop {
			s.srv.alive = false
		}
		return nil, s.srv.execErr
	}
	res := s.srv.results[s.sql]
	return &fakeCursor{columns: res.columns, rows: res.rows, pos: -1, affected: int64(len(res.rows))}, nil
}

func (s *fakeStmt) Close() error { return nil }

type fakeCursor struct {
	columns  []string
	rows     [][]sql.NullString
	pos      int
	affected int64
}

func (c *fakeCursor) Columns() []string { return c.columns }

func (c *fakeCursor) Next() bool {
	c.pos++
	return c.pos < len(c.rows)
}

func (c *fakeCursor) Scan(dest []sql.NullString) error {
	copy(dest, c.rows[c.pos])
	return nil
}

func (c *fakeCursor) Err() error          { return nil }
func (c *fakeCursor) Close() error        { return nil }
func (c *fakeCursor) RowsAffected() int64 { return c.affected }

type fakeInspector struct{}

func (fakeInspector) TableList(context.Context, *Driver) ([]string, error) {
	return fake.tables, nil
}

func (fakeInspector) TableColumns(_ context.Context, _ *Driver, table string) ([]Column, error) {
	return fake.columns[table], nil
}

func (fakeInspector) TableKeys(_ context.Context, _ *Driver, table string) ([]Key, error) {
	return fake.keys[table], nil
}

func (fakeInspector) TableCreate(_ context.Context, _ *Driver, table string) (string, error) {
	return "CREATE TABLE `" + table + "` ()", nil
}

func (fakeInspector) Version(context.Context, *Driver) (string, error) {
	return fake.version, nil
}

func (fakeInspector) Collation(context.Context, *Driver) (string, error) {
	return "utf8mb4_unicode_ci", nil
}
