package database

import (
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Default MySQL session modes.
const DefaultSQLModes = "STRICT_TRANS_TABLES,ERROR_FOR_DIVISION_BY_ZERO,NO_ENGINE_SUBSTITUTION"

// Options configures a Driver. The same struct is filled from YAML, the
// environment or command line flags.
type Options struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port,omitempty"`
	Socket   string `mapstructure:"socket" yaml:"socket,omitempty"`
	User     string `mapstructure:"user" yaml:"user,omitempty"`
	Password string `mapstructure:"password" yaml:"-"`
	Database string `mapstructure:"database" yaml:"database"`

	// Select picks Database on connect. Defaults to true.
	Select *bool `mapstructure:"select" yaml:"select,omitempty"`

	// Prefix replaces the #__ token in SQL text.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`

	// SQLModes sets MySQL's sql_mode. Nil means DefaultSQLModes, an empty
	// slice leaves the server default untouched.
	SQLModes []string `mapstructure:"sql_modes" yaml:"sql_modes,omitempty"`

	// UTF8MB4 opts MySQL connections into utf8mb4 when the server has it.
	// Defaults to true.
	UTF8MB4 *bool `mapstructure:"utf8mb4" yaml:"utf8mb4,omitempty"`

	// SSLMode is passed to PostgreSQL as sslmode.
	SSLMode string `mapstructure:"sslmode" yaml:"sslmode,omitempty"`

	// Params are appended to the backend DSN as is.
	Params map[string]string `mapstructure:"params" yaml:"params,omitempty"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout,omitempty"`
}

// SelectDatabase reports whether the database should be selected on connect.
func (o Options) SelectDatabase() bool {
	return o.Select == nil || *o.Select
}

// WideCharset reports whether utf8mb4 was requested.
func (o Options) WideCharset() bool {
	return o.UTF8MB4 == nil || *o.UTF8MB4
}

// Modes returns the MySQL session modes to apply.
func (o Options) Modes() []string {
	if o.SQLModes == nil {
		return strings.Split(DefaultSQLModes, ",")
	}
	return o.SQLModes
}

// Address is a resolved connection target.
type Address struct {
	Host   string
	Port   int
	Socket string
}

// HostPort joins Host and Port, bracketing IPv6 literals.
func (a Address) HostPort() string {
	if a.Port == 0 {
		if strings.Contains(a.Host, ":") {
			return "[" + a.Host + "]"
		}
		return a.Host
	}
	return net.JoinHostPort(a.Host, strconv.Itoa(a.Port))
}

var (
	ipv4Host  = regexp.MustCompile(`^(?P<host>((25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(25[0-5]|2[0-4]\d|[01]?\d\d?))(:(?P<port>.+))?$`)
	ipv6Host  = regexp.MustCompile(`^\[(?P<host>.*)\](:(?P<port>.+))?$`)
	namedHost = regexp.MustCompile(`(?i)^(?P<host>(\w+:\/{2,3})?[a-z0-9\.\-]+)(:(?P<port>[^:]+))?$`)
)

// Address resolves Host, Port and Socket into a connection target. Host may
// be "unix:/path", a bare host name, an IPv4 address or a bracketed IPv6
// address, each with an optional ":port", or just ":port". A port part that
// is not numeric is taken as a socket path. An explicit Port or Socket option
// wins over the one embedded in Host.
func (o Options) Address(defaultHost string, defaultPort int) Address {
	addr := Address{Host: defaultHost, Port: defaultPort}
	host := strings.TrimSpace(o.Host)

	var port string
	switch {
	case strings.HasPrefix(host, "unix:"):
		addr.Socket = strings.TrimPrefix(host, "unix:")
		addr.Host = ""
	case host == "":
	case strings.HasPrefix(host, ":") && !strings.Contains(host[1:], ":"):
		port = host[1:]
	default:
		addr.Host = host
		for _, re := range []*regexp.Regexp{ipv4Host, ipv6Host, namedHost} {
			if m := re.FindStringSubmatch(host); m != nil {
				addr.Host = m[re.SubexpIndex("host")]
				port = m[re.SubexpIndex("port")]
				break
			}
		}
	}

	if port != "" {
		if n, err := strconv.Atoi(port); err == nil {
			addr.Port = n
		} else {
			addr.Socket = port
		}
	}
	if o.Port > 0 {
		addr.Port = o.Port
	}
	if o.Socket != "" {
		addr.Socket = o.Socket
	}
	return addr
}
