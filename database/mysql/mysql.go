// Package mysql registers the "mysql" driver, backed by
// github.com/go-sql-driver/mysql.
package mysql

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/internal/sqlconn"
	"github.com/satishbabariya/dbkit/query"
)

// Name is the driver name.
const Name = "mysql"

// utf8mb4 needs at least this server version.
const utf8mb4Version = "5.5.3"

func init() {
	database.Register(Name, Backend{})
}

// Backend implements database.Backend for MySQL and MariaDB.
type Backend struct{}

func (Backend) Name() string                  { return Name }
func (Backend) ServerType() string            { return database.ServerMySQL }
func (Backend) Dialect() query.Dialect        { return query.MySQL() }
func (Backend) MinimumVersion() string        { return "5.6" }
func (Backend) Inspector() database.Inspector { return inspector{} }

// DSN builds the go-sql-driver DSN for opts.
func DSN(opts database.Options) string {
	addr := opts.Address("localhost", 3306)

	cfg := gomysql.NewConfig()
	cfg.User = opts.User
	cfg.Passwd = opts.Password
	if addr.Socket != "" {
		cfg.Net = "unix"
		cfg.Addr = addr.Socket
	} else {
		cfg.Net = "tcp"
		cfg.Addr = addr.HostPort()
	}
	if opts.SelectDatabase() {
		cfg.DBName = opts.Database
	}
	cfg.Timeout = opts.ConnectTimeout
	if len(opts.Params) > 0 {
		cfg.Params = make(map[string]string, len(opts.Params))
		for k, v := range opts.Params {
			cfg.Params[k] = v
		}
	}
	return cfg.FormatDSN()
}

// Open implements database.Backend. The session gets the configured SQL
// modes and the widest character set the server supports.
func (Backend) Open(ctx context.Context, opts database.Options, log *slog.Logger) (database.Conn, error) {
	var setup []string
	if modes := opts.Modes(); len(modes) > 0 {
		setup = append(setup, "SET @@SESSION.sql_mode = '"+strings.Join(modes, ",")+"'")
	}

	c, err := sqlconn.Open(ctx, sqlconn.Config{
		DriverName: "mysql",
		DSN:        DSN(opts),
		Setup:      setup,
		Log:        log,
	})
	if err != nil {
		return nil, err
	}

	conn := &Conn{Conn: c}
	if opts.WideCharset() {
		var v string
		if err := c.Raw().QueryRowContext(ctx, "SELECT VERSION()").Scan(&v); err == nil {
			conn.utf8mb4, _ = database.AtLeast(v, utf8mb4Version)
		}
	}

	charset := "utf8"
	if conn.utf8mb4 {
		charset = "utf8mb4"
	}
	if _, err := c.Exec(ctx, "SET NAMES "+charset); err != nil {
		_ = c.Close()
		return nil, err
	}
	log.Debug("Session charset", "charset", charset)
	return conn, nil
}

// Describe implements database.Backend.
func (Backend) Describe(err error) (string, string) {
	var me *gomysql.MySQLError
	if errors.As(err, &me) {
		return strconv.Itoa(int(me.Number)), me.Message
	}
	return "", ""
}

// Conn is a MySQL connection.
type Conn struct {
	*sqlconn.Conn
	utf8mb4 bool
}

// UTF8MB4 reports whether the session uses utf8mb4.
func (c *Conn) UTF8MB4() bool { return c.utf8mb4 }

// RewriteSQL implements database.Rewriter. Without utf8mb4 support, CREATE
// and ALTER TABLE statements fall back to utf8.
func (c *Conn) RewriteSQL(sql string) string {
	if c.utf8mb4 {
		return sql
	}
	return DowngradeCharset(sql)
}

// Select implements database.Selector.
func (c *Conn) Select(ctx context.Context, name string) error {
	_, err := c.Exec(ctx, "USE "+query.MySQL().QuoteName(name, ""))
	return err
}

// DowngradeCharset replaces utf8mb4 with utf8 outside quotes in CREATE TABLE
// and ALTER TABLE statements. Other statements are returned as is.
func DowngradeCharset(sql string) string {
	head := strings.Fields(strings.ToUpper(sql))
	if len(head) < 2 || (head[0] != "CREATE" && head[0] != "ALTER") || head[1] != "TABLE" {
		return sql
	}
	if !strings.Contains(strings.ToLower(sql), "utf8mb4") {
		return sql
	}

	var b strings.Builder
	b.Grow(len(sql))
	for i := 0; i < len(sql); {
		switch c := sql[i]; c {
		case '`', '"', '\'':
			end := strings.IndexByte(sql[i+1:], c)
			if end < 0 {
				b.WriteString(sql[i:])
				return b.String()
			}
			b.WriteString(sql[i : i+end+2])
			i += end + 2
		default:
			if i+7 <= len(sql) && strings.EqualFold(sql[i:i+7], "utf8mb4") {
				b.WriteString("utf8")
				i += 7
				continue
			}
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}
