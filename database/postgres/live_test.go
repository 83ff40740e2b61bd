package postgres

import (
	"testing"

	"github.com/satishbabariya/dbkit/internal/dbtest"
	"github.com/stretchr/testify/suite"
)

func TestLive(t *testing.T) {
	for _, name := range []string{PQName, PgxName} {
		t.Run(name, func(t *testing.T) {
			opts, ok := dbtest.FromEnv("POSTGRES", name)
			if !ok {
				t.Skip("DBKIT_TEST_POSTGRES_HOST not set")
			}
			suite.Run(t, &dbtest.Suite{Options: opts})
		})
	}
}
