package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/internal/sqlconn"
	"github.com/satishbabariya/dbkit/sqltext"
)

// PgxName is the name of the pgx driver.
const PgxName = "postgresql"

// PgxBackend talks to the server with pgx. Results are requested in text
// format so rows carry the server's own rendering of every value.
type PgxBackend struct{ base }

func (PgxBackend) Name() string { return PgxName }

// Open implements database.Backend.
func (PgxBackend) Open(ctx context.Context, opts database.Options, log *slog.Logger) (database.Conn, error) {
	cfg, err := pgx.ParseConfig(DSN(opts))
	if err != nil {
		return nil, err
	}
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Debug("Connected with pgx", "host", cfg.Host, "port", cfg.Port, "pid", conn.PgConn().PID())
	return &pgxConn{conn: conn}, nil
}

type pgxConn struct {
	conn *pgx.Conn
}

func (c *pgxConn) Prepare(ctx context.Context, text string) (database.Stmt, error) {
	name := "dbkit_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := c.conn.Prepare(ctx, name, text); err != nil {
		return nil, err
	}
	return &pgxStmt{conn: c.conn, name: name, rows: sqltext.ReturnsRows(text)}, nil
}

func (c *pgxConn) Exec(ctx context.Context, text string) (int64, error) {
	tag, err := c.conn.Exec(ctx, text)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *pgxConn) Ping(ctx context.Context) error { return c.conn.Ping(ctx) }

func (c *pgxConn) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.conn.Close(ctx)
}

func (c *pgxConn) NamedParameters() bool { return false }

func (c *pgxConn) LastInsertID(ctx context.Context) (int64, error) {
	var id int64
	err := c.conn.QueryRow(ctx, lastvalSQL).Scan(&id)
	return id, err
}

type pgxStmt struct {
	conn *pgx.Conn
	name string
	rows bool
}

func (s *pgxStmt) Exec(ctx context.Context, args []database.Arg) (database.Cursor, error) {
	values := make([]any, 0, len(args)+1)
	if s.rows {
		values = append(values, pgx.QueryResultFormats{pgx.TextFormatCode})
	}
	for _, a := range args {
		values = append(values, a.Value)
	}

	if !s.rows {
		tag, err := s.conn.Exec(ctx, s.name, values...)
		if err != nil {
			return nil, err
		}
		return sqlconn.Affected(tag.RowsAffected()), nil
	}

	rows, err := s.conn.Query(ctx, s.name, values...)
	if err != nil {
		return nil, err
	}
	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}
	return &pgxCursor{rows: rows, columns: cols}, nil
}

func (s *pgxStmt) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.conn.Deallocate(ctx, s.name)
}

type pgxCursor struct {
	rows    pgx.Rows
	columns []string
}

func (c *pgxCursor) Columns() []string { return c.columns }
func (c *pgxCursor) Next() bool        { return c.rows.Next() }
func (c *pgxCursor) Err() error        { return c.rows.Err() }

func (c *pgxCursor) Scan(dest []sql.NullString) error {
	for i, v := range c.rows.RawValues() {
		if v == nil {
			dest[i] = sql.NullString{}
		} else {
			dest[i] = sql.NullString{String: string(v), Valid: true}
		}
	}
	return nil
}

func (c *pgxCursor) Close() error {
	c.rows.Close()
	return c.rows.Err()
}

func (c *pgxCursor) RowsAffected() int64 {
	return c.rows.CommandTag().RowsAffected()
}
