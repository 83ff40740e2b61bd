package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsAddress(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want Address
	}{
		{"empty", Options{}, Address{Host: "localhost", Port: 3306}},
		{"named", Options{Host: "db.example.com"}, Address{Host: "db.example.com", Port: 3306}},
		{"named with port", Options{Host: "db.example.com:3307"}, Address{Host: "db.example.com", Port: 3307}},
		{"ipv4 with port", Options{Host: "10.0.0.1:3310"}, Address{Host: "10.0.0.1", Port: 3310}},
		{"ipv6", Options{Host: "[::1]:3308"}, Address{Host: "::1", Port: 3308}},
		{"bare ipv6", Options{Host: "::1"}, Address{Host: "::1", Port: 3306}},
		{"port only", Options{Host: ":3309"}, Address{Host: "localhost", Port: 3309}},
		{"socket in host", Options{Host: "localhost:/tmp/mysql.sock"}, Address{Host: "localhost", Port: 3306, Socket: "/tmp/mysql.sock"}},
		{"unix", Options{Host: "unix:/var/run/mysqld.sock"}, Address{Port: 3306, Socket: "/var/run/mysqld.sock"}},
		{"explicit port wins", Options{Host: "db:3307", Port: 4000}, Address{Host: "db", Port: 4000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.opts.Address("localhost", 3306))
		})
	}
}

func TestAddressHostPort(t *testing.T) {
	assert.Equal(t, "db:3306", Address{Host: "db", Port: 3306}.HostPort())
	assert.Equal(t, "[::1]:5432", Address{Host: "::1", Port: 5432}.HostPort())
	assert.Equal(t, "db", Address{Host: "db"}.HostPort())
}

func TestOptionDefaults(t *testing.T) {
	var o Options
	assert.True(t, o.SelectDatabase())
	assert.True(t, o.WideCharset())
	assert.Equal(t, []string{"STRICT_TRANS_TABLES", "ERROR_FOR_DIVISION_BY_ZERO", "NO_ENGINE_SUBSTITUTION"}, o.Modes())

	off := false
	o = Options{Select: &off, UTF8MB4: &off, SQLModes: []string{}}
	assert.False(t, o.SelectDatabase())
	assert.False(t, o.WideCharset())
	assert.Empty(t, o.Modes())
}
