package postgres

import (
	"context"
	"log/slog"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/internal/sqlconn"
)

// PQName is the name of the lib/pq driver.
const PQName = "pgsql"

// PQBackend runs on lib/pq through database/sql.
type PQBackend struct{ base }

func (PQBackend) Name() string { return PQName }

// Open implements database.Backend.
func (PQBackend) Open(ctx context.Context, opts database.Options, log *slog.Logger) (database.Conn, error) {
	c, err := sqlconn.Open(ctx, sqlconn.Config{
		DriverName: "postgres",
		DSN:        DSN(opts),
		Log:        log,
	})
	if err != nil {
		return nil, err
	}
	return &pqConn{Conn: c}, nil
}

type pqConn struct {
	*sqlconn.Conn
}

// LastInsertID reads lastval(), lib/pq having no insert id of its own.
func (c *pqConn) LastInsertID(ctx context.Context) (int64, error) {
	var id int64
	err := c.Raw().QueryRowContext(ctx, lastvalSQL).Scan(&id)
	return id, err
}
