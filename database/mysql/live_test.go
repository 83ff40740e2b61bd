package mysql

import (
	"testing"

	"github.com/satishbabariya/dbkit/internal/dbtest"
	"github.com/stretchr/testify/suite"
)

func TestLive(t *testing.T) {
	opts, ok := dbtest.FromEnv("MYSQL", Name)
	if !ok {
		t.Skip("DBKIT_TEST_MYSQL_HOST not set")
	}
	suite.Run(t, &dbtest.Suite{Options: opts})
}
