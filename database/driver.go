// Package database is a client abstraction over SQL servers. A Driver owns a
// single connection, text-processes SQL (prefix substitution and named
// parameter mapping), prepares and executes statements, and exposes results
// in several row shapes. Backends live in sub packages and register
// themselves by driver name:
//
//	import _ "github.com/satishbabariya/dbkit/database/sqlite"
//
//	db, err := database.New(database.Options{Driver: "sqlite", Database: "app.db", Prefix: "app_"})
//	err = db.SetQuery(ctx, db.CreateQuery().Select("*").From("#__users").Where("id = :id").Bind("id", &id, query.ParamInt))
//	row, err := db.LoadAssoc(ctx)
//
// A Driver is not safe for concurrent use.
package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/satishbabariya/dbkit/internal/debug"
	"github.com/satishbabariya/dbkit/query"
	"github.com/satishbabariya/dbkit/sqltext"
)

// Driver runs SQL on one lazily opened connection.
type Driver struct {
	name       string
	serverType string
	backend    Backend
	dialect    query.Dialect
	opts       Options
	log        *slog.Logger
	monitor    QueryMonitor

	conn  Conn
	query *query.Query
	text  string
	stmt  *Statement

	count    int
	affected int64
	txDepth  int
	version  string
}

// Option customises a Driver.
type Option func(*Driver)

// WithLogger sets the logger. The default is the process debug logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.log = l
		}
	}
}

// WithMonitor sets the query monitor.
func WithMonitor(m QueryMonitor) Option {
	return func(d *Driver) {
		if m != nil {
			d.monitor = m
		}
	}
}

// New returns a disconnected driver for the backend registered under
// opts.Driver.
func New(opts Options, options ...Option) (*Driver, error) {
	b, err := lookup(opts.Driver)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		name:       b.Name(),
		serverType: b.ServerType(),
		backend:    b,
		dialect:    b.Dialect(),
		opts:       opts,
		log:        debug.Logger(),
		monitor:    noopMonitor{},
	}
	for _, o := range options {
		o(d)
	}
	d.log = d.log.With("driver", d.name)
	return d, nil
}

// Name returns the driver name.
func (d *Driver) Name() string { return d.name }

// ServerType returns the server family, such as "mysql" or "postgresql".
func (d *Driver) ServerType() string { return d.serverType }

// Dialect returns the SQL dialect of the backend.
func (d *Driver) Dialect() query.Dialect { return d.dialect }

// Options returns the options the driver was created with.
func (d *Driver) Options() Options { return d.opts }

// Prefix returns the table prefix substituted for #__.
func (d *Driver) Prefix() string { return d.opts.Prefix }

// NullDate returns the dialect's null date.
func (d *Driver) NullDate() string { return d.dialect.NullDate() }

// DateFormat returns the Go time layout of the dialect's date literals.
func (d *Driver) DateFormat() string { return d.dialect.DateFormat() }

// Connect opens the connection unless it is already open.
func (d *Driver) Connect(ctx context.Context) error {
	if d.conn != nil {
		return nil
	}

	if d.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.ConnectTimeout)
		defer cancel()
	}

	conn, err := d.backend.Open(ctx, d.opts, d.log)
	if err != nil {
		return d.wrap(ErrConnectionFailure, "", err)
	}
	d.conn = conn
	d.log.Debug("Connected", "database", d.opts.Database)
	return nil
}

// Disconnect frees the current statement and closes the connection.
func (d *Driver) Disconnect() error {
	var errs []error
	if d.stmt != nil {
		errs = append(errs, d.stmt.Close())
		d.stmt = nil
	}
	if d.conn != nil {
		errs = append(errs, d.conn.Close())
		d.conn = nil
		d.version = ""
		d.log.Debug("Disconnected")
	}
	return errors.Join(errs...)
}

// Close implements io.Closer.
func (d *Driver) Close() error { return d.Disconnect() }

// IsConnected reports whether a connection is open, without probing it.
func (d *Driver) IsConnected() bool { return d.conn != nil }

// Connected probes the connection.
func (d *Driver) Connected(ctx context.Context) bool {
	return d.conn != nil && d.conn.Ping(ctx) == nil
}

// Select switches the connection to database when the backend supports it.
func (d *Driver) Select(ctx context.Context, database string) error {
	if err := d.Connect(ctx); err != nil {
		return err
	}
	s, ok := d.conn.(Selector)
	if !ok {
		return nil
	}
	if err := s.Select(ctx, database); err != nil {
		return d.wrap(ErrConnectionFailure, "", err)
	}
	d.opts.Database = database
	return nil
}

// CreateQuery returns an empty query for the driver's dialect.
func (d *Driver) CreateQuery() *query.Query {
	return query.New(d.dialect)
}

// ReplacePrefix substitutes the table prefix for #__ outside literals.
func (d *Driver) ReplacePrefix(sql string) string {
	return sqltext.ReplacePrefixQuotes(sql, sqltext.DefaultPrefixToken, d.opts.Prefix, d.dialect.LiteralQuotes())
}

// SplitSQL splits a script into statements.
func (d *Driver) SplitSQL(sql string) []string {
	return sqltext.SplitSQL(sql)
}

// SetQuery prepares q, which is either SQL text or a *query.Query. The
// previous statement is freed first.
func (d *Driver) SetQuery(ctx context.Context, q any) error {
	return d.SetQueryLimit(ctx, q, 0, 0)
}

// SetQueryLimit is SetQuery with a row window. A zero offset or limit keeps
// the value already set on the query.
func (d *Driver) SetQueryLimit(ctx context.Context, q any, offset, limit int) error {
	var built *query.Query
	switch v := q.(type) {
	case string:
		built = d.CreateQuery().SetSQL(v)
	case *query.Query:
		if v == nil {
			return invalidArgument("query is nil")
		}
		built = v
	default:
		return invalidArgument("query must be a string or *query.Query, got %T", q)
	}
	if err := built.Err(); err != nil {
		return &Error{Kind: ErrInvalidArgument, Message: "query builder failed", Cause: err}
	}

	if err := d.Connect(ctx); err != nil {
		return err
	}
	if err := d.freeResult(); err != nil {
		d.log.Debug("Freeing previous statement failed", "error", err)
	}

	if limit <= 0 {
		limit = built.Limit()
	}
	if offset <= 0 {
		offset = built.Offset()
	}
	built.SetLimit(limit, offset)

	text := d.ReplacePrefix(built.String())
	if rw, ok := d.conn.(Rewriter); ok {
		text = rw.RewriteSQL(text)
	}

	stmt, err := d.prepare(ctx, text)
	if err != nil {
		return err
	}
	d.query, d.text, d.stmt = built, text, stmt
	return nil
}

// Query returns the query set by the last SetQuery.
func (d *Driver) Query() *query.Query { return d.query }

// SQL returns the prepared text of the current statement.
func (d *Driver) SQL() string {
	if d.stmt == nil {
		return ""
	}
	return d.stmt.SQL()
}

// Statement returns the current prepared statement.
func (d *Driver) Statement() *Statement { return d.stmt }

func (d *Driver) prepare(ctx context.Context, text string) (*Statement, error) {
	stmt, err := Prepare(ctx, d.conn, d.dialect, text)
	if err != nil {
		return nil, d.wrap(ErrPrepareFailure, text, err)
	}
	return stmt, nil
}

func (d *Driver) freeResult() error {
	if d.stmt == nil {
		return nil
	}
	err := d.stmt.Close()
	d.stmt = nil
	return err
}

// Execute runs the current statement with the query's bindings. When the
// execution fails because the connection dropped, the driver reconnects,
// prepares the statement again and retries once. If reconnecting fails the
// original execution error is returned. Inside a transaction there is no
// retry: the transaction is gone with the connection, so the depth is reset
// and ErrConnectionFailure is returned.
func (d *Driver) Execute(ctx context.Context) error {
	if d.stmt == nil {
		return invalidArgument("no query has been set")
	}
	if err := d.Connect(ctx); err != nil {
		return err
	}

	err := d.run(ctx)
	if err == nil || !errors.Is(err, ErrExecutionFailure) || d.Connected(ctx) {
		return err
	}

	d.dropConnection()
	if d.txDepth > 0 {
		d.log.Warn("Connection lost inside a transaction", "depth", d.txDepth, "error", err)
		d.txDepth = 0
		lost := &Error{Kind: ErrConnectionFailure, Query: d.text, Message: "connection lost inside a transaction", Cause: err}
		var e *Error
		if errors.As(err, &e) {
			lost.Cause = e.Cause
		}
		return lost
	}

	d.log.Warn("Connection lost, reconnecting", "error", err)
	if rerr := d.Connect(ctx); rerr != nil {
		d.log.Error("Reconnect failed", "error", rerr)
		return err
	}
	stmt, perr := d.prepare(ctx, d.text)
	if perr != nil {
		d.log.Error("Prepare after reconnect failed", "error", perr)
		return err
	}
	d.stmt = stmt
	return d.run(ctx)
}

func (d *Driver) run(ctx context.Context) error {
	bounded := d.query.Bounded()
	d.count++

	mctx := d.monitor.StartQuery(ctx, d.stmt.SQL(), bounded)
	err := d.stmt.Execute(mctx, bounded)
	d.monitor.StopQuery(mctx, err)

	if err != nil {
		d.log.Debug("Query failed", "sql", d.stmt.SQL(), "error", err)
		return d.wrap(ErrExecutionFailure, d.stmt.SQL(), err)
	}
	d.affected = d.stmt.RowsAffected()
	return nil
}

// dropConnection forgets a connection that is known to be dead.
func (d *Driver) dropConnection() {
	if d.stmt != nil {
		_ = d.stmt.Close()
		d.stmt = nil
	}
	if d.conn != nil {
		_ = d.conn.Close()
		d.conn = nil
	}
	d.version = ""
}

// ExecuteUnprepared runs sql without preparing it and without bindings. It
// is meant for control statements such as transaction commands.
func (d *Driver) ExecuteUnprepared(ctx context.Context, sql string) (int64, error) {
	if err := d.Connect(ctx); err != nil {
		return 0, err
	}

	sql = d.ReplacePrefix(sql)
	d.count++

	mctx := d.monitor.StartQuery(ctx, sql, nil)
	n, err := d.conn.Exec(mctx, sql)
	d.monitor.StopQuery(mctx, err)

	if err != nil {
		return 0, d.wrap(ErrExecutionFailure, sql, err)
	}
	d.affected = n
	return n, nil
}

// AffectedRows returns the rows changed by the last execution.
func (d *Driver) AffectedRows() int64 { return d.affected }

// Count returns the number of statements executed so far, retries included.
func (d *Driver) Count() int { return d.count }

// InsertID returns the key generated by the last insert.
func (d *Driver) InsertID(ctx context.Context) (int64, error) {
	if d.conn == nil {
		return 0, &Error{Kind: ErrNotConnected}
	}
	id, err := d.conn.LastInsertID(ctx)
	if err != nil {
		return 0, d.wrap(ErrExecutionFailure, "", err)
	}
	return id, nil
}

// Quote returns text as an escaped string literal.
func (d *Driver) Quote(text string) string { return d.dialect.Quote(text, true) }

// QuoteName quotes an identifier.
func (d *Driver) QuoteName(name string) string { return d.dialect.QuoteName(name, "") }

// Escape escapes text for use inside a literal.
func (d *Driver) Escape(text string, extra bool) string { return d.dialect.Escape(text, extra) }

// QuoteBinary returns data as a binary literal.
func (d *Driver) QuoteBinary(data []byte) string { return d.dialect.QuoteBinary(data) }

// DecodeBinary turns a fetched binary value back into bytes.
func (d *Driver) DecodeBinary(value string) []byte { return d.dialect.DecodeBinary(value) }

// Version returns the server version. It is read once per connection.
func (d *Driver) Version(ctx context.Context) (string, error) {
	if d.version != "" {
		return d.version, nil
	}
	if err := d.Connect(ctx); err != nil {
		return "", err
	}
	v, err := d.backend.Inspector().Version(ctx, d)
	if err != nil {
		return "", err
	}
	d.version = v
	return v, nil
}

// MinimumVersion returns the oldest server version the backend supports.
func (d *Driver) MinimumVersion() string { return d.backend.MinimumVersion() }

// IsMinimumVersion reports whether the server is at least MinimumVersion.
func (d *Driver) IsMinimumVersion(ctx context.Context) (bool, error) {
	raw, err := d.Version(ctx)
	if err != nil {
		return false, err
	}
	return AtLeast(raw, d.backend.MinimumVersion())
}

var leadingVersion = regexp.MustCompile(`^\d+(\.\d+)*`)

// AtLeast compares a server version string against min. Vendor suffixes such
// as "-MariaDB" or " (Debian ...)" are ignored.
func AtLeast(serverVersion, min string) (bool, error) {
	if strings.HasPrefix(serverVersion, "5.5.5-") && strings.Contains(serverVersion, "MariaDB") {
		serverVersion = strings.TrimPrefix(serverVersion, "5.5.5-")
	}
	clean := leadingVersion.FindString(strings.TrimSpace(serverVersion))
	have, err := version.NewVersion(clean)
	if err != nil {
		return false, invalidArgument("unparsable server version %q", serverVersion)
	}
	want, err := version.NewVersion(min)
	if err != nil {
		return false, invalidArgument("unparsable version %q", min)
	}
	return have.GreaterThanOrEqual(want), nil
}

// wrap turns err into an *Error of kind, filling in the native code and
// message.
func (d *Driver) wrap(kind error, sql string, err error) error {
	var e *Error
	if !errors.As(err, &e) {
		e = &Error{Kind: kind, Query: sql, Cause: err}
	}
	if e.Code == "" && e.Message == "" && e.Cause != nil {
		e.Code, e.Message = d.backend.Describe(e.Cause)
	}
	return e
}

func (d *Driver) String() string {
	return fmt.Sprintf("%s(%s)", d.name, d.opts.Database)
}
