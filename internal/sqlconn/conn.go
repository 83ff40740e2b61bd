// Package sqlconn adapts a database/sql driver to database.Conn. The pool is
// pinned to a single connection so that session state such as open
// transactions, SET statements and the last insert id stays on it.
package sqlconn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/sqltext"
	"github.com/spf13/cast"
)

// Config describes how to open a connection.
type Config struct {
	// DriverName is the name the native driver registered with database/sql.
	DriverName string
	DSN        string
	// Named makes the connection bind :name markers natively.
	Named bool
	// TimeLayout formats time values returned by the driver. Defaults to
	// "2006-01-02 15:04:05".
	TimeLayout string
	// Setup runs on the fresh connection, in order.
	Setup []string
	Log   *slog.Logger
}

// Conn is one pinned database/sql connection.
type Conn struct {
	db     *sql.DB
	conn   *sql.Conn
	named  bool
	layout string
	last   sql.Result
	log    *slog.Logger
}

// Open opens the pool, checks out its single connection and runs the setup
// statements.
func Open(ctx context.Context, cfg Config) (*Conn, error) {
	db, err := sql.Open(cfg.DriverName, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DriverName, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c := &Conn{db: db, conn: conn, named: cfg.Named, layout: cfg.TimeLayout, log: cfg.Log}
	if c.layout == "" {
		c.layout = time.DateTime
	}
	if c.log == nil {
		c.log = slog.Default()
	}

	for _, stmt := range cfg.Setup {
		if _, err := c.conn.ExecContext(ctx, stmt); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("session setup %q: %w", stmt, err)
		}
		c.log.Debug("Session setup", "sql", stmt)
	}
	return c, nil
}

// Raw returns the underlying connection.
func (c *Conn) Raw() *sql.Conn { return c.conn }

// Prepare implements database.Conn.
func (c *Conn) Prepare(ctx context.Context, text string) (database.Stmt, error) {
	st, err := c.conn.PrepareContext(ctx, text)
	if err != nil {
		return nil, err
	}
	return &stmt{conn: c, native: st, rows: sqltext.ReturnsRows(text)}, nil
}

// Exec implements database.Conn.
func (c *Conn) Exec(ctx context.Context, text string) (int64, error) {
	res, err := c.conn.ExecContext(ctx, text)
	if err != nil {
		return 0, err
	}
	c.last = res
	n, _ := res.RowsAffected()
	return n, nil
}

// Ping implements database.Conn.
func (c *Conn) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

// Close implements database.Conn.
func (c *Conn) Close() error {
	return errors.Join(c.conn.Close(), c.db.Close())
}

// NamedParameters implements database.Conn.
func (c *Conn) NamedParameters() bool { return c.named }

// LastInsertID implements database.Conn using the result of the last
// statement that did not return rows.
func (c *Conn) LastInsertID(context.Context) (int64, error) {
	if c.last == nil {
		return 0, nil
	}
	return c.last.LastInsertId()
}

type stmt struct {
	conn   *Conn
	native *sql.Stmt
	rows   bool
}

func (s *stmt) Exec(ctx context.Context, args []database.Arg) (database.Cursor, error) {
	values := make([]any, len(args))
	for i, a := range args {
		if a.Name != "" {
			values[i] = sql.Named(a.Name, a.Value)
		} else {
			values[i] = a.Value
		}
	}

	if s.rows {
		rows, err := s.native.QueryContext(ctx, values...)
		if err != nil {
			return nil, err
		}
		cols, err := rows.Columns()
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		return &cursor{rows: rows, columns: cols, layout: s.conn.layout, raw: make([]any, len(cols))}, nil
	}

	res, err := s.native.ExecContext(ctx, values...)
	if err != nil {
		return nil, err
	}
	s.conn.last = res
	n, _ := res.RowsAffected()
	return Affected(n), nil
}

func (s *stmt) Close() error { return s.native.Close() }

type cursor struct {
	rows    *sql.Rows
	columns []string
	layout  string
	raw     []any
}

func (c *cursor) Columns() []string   { return c.columns }
func (c *cursor) Next() bool          { return c.rows.Next() }
func (c *cursor) Err() error          { return c.rows.Err() }
func (c *cursor) Close() error        { return c.rows.Close() }
func (c *cursor) RowsAffected() int64 { return 0 }

func (c *cursor) Scan(dest []sql.NullString) error {
	ptrs := make([]any, len(c.raw))
	for i := range c.raw {
		ptrs[i] = &c.raw[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		return err
	}
	for i, v := range c.raw {
		s, ok, err := Text(v, c.layout)
		if err != nil {
			return fmt.Errorf("column %s: %w", c.columns[i], err)
		}
		dest[i] = sql.NullString{String: s, Valid: ok}
	}
	return nil
}

// Text renders a driver value as the text form rows carry. ok is false for
// NULL.
func Text(v any, layout string) (s string, ok bool, err error) {
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case []byte:
		return string(t), true, nil
	case string:
		return t, true, nil
	case time.Time:
		return t.Format(layout), true, nil
	case bool:
		if t {
			return "1", true, nil
		}
		return "0", true, nil
	}
	s, err = cast.ToStringE(v)
	return s, err == nil, err
}

// Affected is the cursor of a statement that returned no rows.
type Affected int64

func (Affected) Columns() []string           { return nil }
func (Affected) Next() bool                  { return false }
func (Affected) Scan([]sql.NullString) error { return errors.New("statement returned no rows") }
func (Affected) Err() error                  { return nil }
func (Affected) Close() error                { return nil }
func (a Affected) RowsAffected() int64       { return int64(a) }
