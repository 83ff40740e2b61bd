// Package postgres registers two PostgreSQL drivers: "pgsql", which runs on
// lib/pq through database/sql, and "postgresql", which talks to the server
// directly with pgx.
package postgres

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/query"
)

func init() {
	database.Register(PQName, PQBackend{})
	database.Register(PgxName, PgxBackend{})
}

// base holds what both drivers share.
type base struct{}

func (base) ServerType() string            { return database.ServerPostgreSQL }
func (base) Dialect() query.Dialect        { return query.PostgreSQL() }
func (base) MinimumVersion() string        { return "9.2" }
func (base) Inspector() database.Inspector { return inspector{} }

// Describe implements database.Backend for errors of either client.
func (base) Describe(err error) (string, string) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), pqErr.Message
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.Message
	}
	return "", ""
}

// DSN builds a key/value connection string understood by both lib/pq and
// pgx. sslmode defaults to disable.
func DSN(opts database.Options) string {
	addr := opts.Address("localhost", 5432)

	params := map[string]string{"sslmode": "disable"}
	if addr.Socket != "" {
		params["host"] = addr.Socket
	} else {
		params["host"] = addr.Host
		params["port"] = strconv.Itoa(addr.Port)
	}
	if opts.User != "" {
		params["user"] = opts.User
	}
	if opts.Password != "" {
		params["password"] = opts.Password
	}
	if opts.SelectDatabase() && opts.Database != "" {
		params["dbname"] = opts.Database
	}
	if opts.SSLMode != "" {
		params["sslmode"] = opts.SSLMode
	}
	if s := int(opts.ConnectTimeout.Seconds()); s > 0 {
		params["connect_timeout"] = strconv.Itoa(s)
	}
	for k, v := range opts.Params {
		params[k] = v
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + quoteValue(params[k])
	}
	return strings.Join(parts, " ")
}

func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// lastvalSQL reads the value most recently returned by nextval in the
// session. It fails when no sequence was used yet.
const lastvalSQL = "SELECT lastval()"
