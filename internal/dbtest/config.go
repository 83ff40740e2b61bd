// Package dbtest holds the behaviour suite every backend runs against a live
// server, and the environment lookup that decides which servers are
// available.
package dbtest

import (
	"os"
	"strconv"

	"github.com/satishbabariya/dbkit/database"
)

// FromEnv returns options for driver from DBKIT_TEST_<SERVER>_* variables.
// ok is false when DBKIT_TEST_<SERVER>_HOST is unset.
func FromEnv(server, driver string) (database.Options, bool) {
	key := "DBKIT_TEST_" + server + "_"
	host := os.Getenv(key + "HOST")
	if host == "" {
		return database.Options{}, false
	}
	return database.Options{
		Driver:   driver,
		Host:     host,
		Port:     getEnvInt(key+"PORT", 0),
		User:     getEnv(key+"USER", "root"),
		Password: os.Getenv(key + "PASSWORD"),
		Database: getEnv(key+"DATABASE", "dbkit_test"),
		Prefix:   "dbkit_",
	}, true
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}
