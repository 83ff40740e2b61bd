package postgres

import (
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/satishbabariya/dbkit/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		opts database.Options
		want string
	}{
		{
			name: "defaults",
			opts: database.Options{User: "postgres", Database: "app"},
			want: "dbname=app host=localhost port=5432 sslmode=disable user=postgres",
		},
		{
			name: "quoted password",
			opts: database.Options{Host: "db:5433", User: "u", Password: "it's a secret", SSLMode: "require"},
			want: `host=db password='it\'s a secret' port=5433 sslmode=require user=u`,
		},
		{
			name: "socket and timeout",
			opts: database.Options{Host: "unix:/var/run/postgresql", ConnectTimeout: 3 * time.Second, Params: map[string]string{"application_name": "dbkit"}},
			want: "application_name=dbkit connect_timeout=3 host=/var/run/postgresql sslmode=disable",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DSN(tt.opts))
		})
	}
}

func TestDescribe(t *testing.T) {
	code, msg := base{}.Describe(fmt.Errorf("exec: %w", &pq.Error{Code: "42P01", Message: `relation "x" does not exist`}))
	assert.Equal(t, "42P01", code)
	assert.Equal(t, `relation "x" does not exist`, msg)

	code, msg = base{}.Describe(&pgconn.PgError{Code: "23505", Message: "duplicate key"})
	assert.Equal(t, "23505", code)
	assert.Equal(t, "duplicate key", msg)
}

func TestRegistered(t *testing.T) {
	for _, name := range []string{PQName, PgxName} {
		db, err := database.New(database.Options{Driver: name})
		require.NoError(t, err, name)
		assert.Equal(t, database.ServerPostgreSQL, db.ServerType())
		assert.Equal(t, "postgresql", db.Dialect().Name())
	}
}

func TestCreateTableSQL(t *testing.T) {
	db, err := database.New(database.Options{Driver: PgxName})
	require.NoError(t, err)

	seq := "nextval('jos_users_id_seq'::regclass)"
	name := "'x'::character varying"
	stmts := db.CreateTableSQL("pre_users",
		[]database.Column{
			{Name: "id", Type: "integer", Default: &seq},
			{Name: "name", Type: "character varying(50)", Null: true, Default: &name},
		},
		[]database.Key{
			{Name: "pre_users_pkey", Column: "id", Seq: 1, Unique: true, Primary: true},
			{Name: "idx_name", Column: "name", Seq: 1, Unique: true},
		})

	assert.Equal(t, []string{
		"CREATE TABLE \"pre_users\" (\n" +
			"  \"id\" serial NOT NULL,\n" +
			"  \"name\" character varying(50) DEFAULT 'x'::character varying,\n" +
			"  PRIMARY KEY (\"id\")\n" +
			")",
		`CREATE UNIQUE INDEX "idx_name" ON "pre_users" ("name")`,
	}, stmts)
}
