package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/satishbabariya/dbkit/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowShapes(t *testing.T) {
	r := &Row{columns: []string{"id", "title"}, values: []sql.NullString{{String: "1", Valid: true}, {}}}

	assert.Equal(t, []any{"1", nil}, r.Num())
	assert.Equal(t, map[string]any{"id": "1", "title": nil}, r.Assoc())
	assert.Equal(t, map[any]any{0: "1", 1: nil, "id": "1", "title": nil}, r.Mixed())
	assert.Equal(t, r.Assoc(), r.As(FetchAssoc))

	v, ok := r.Value("id")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
	_, ok = r.Value("missing")
	assert.False(t, ok)
}

type article struct {
	ID        int
	Title     string
	Hits      *uint
	Rating    float64
	Published bool
	CreatedAt time.Time
	Body      []byte
	Note      sql.NullString `db:"note_text"`
	Ignored   string         `db:"-"`
}

func TestRowScanStruct(t *testing.T) {
	r := &Row{
		columns: []string{"id", "title", "hits", "rating", "published", "created_at", "body", "note_text", "extra"},
		values:  text("3", "Hello", "10", "4.5", "1", "2024-03-01 10:20:30", `\x6869`, "n", "x"),
		dialect: query.PostgreSQL(),
	}

	var a article
	require.NoError(t, r.Scan(&a))
	assert.Equal(t, 3, a.ID)
	assert.Equal(t, "Hello", a.Title)
	require.NotNil(t, a.Hits)
	assert.Equal(t, uint(10), *a.Hits)
	assert.Equal(t, 4.5, a.Rating)
	assert.True(t, a.Published)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), a.CreatedAt.UTC())
	assert.Equal(t, []byte("hi"), a.Body)
	assert.Equal(t, sql.NullString{String: "n", Valid: true}, a.Note)
}

func TestRowScanNulls(t *testing.T) {
	hits := uint(5)
	a := article{ID: 9, Hits: &hits}
	r := &Row{columns: []string{"id", "hits"}, values: make([]sql.NullString, 2)}

	require.NoError(t, r.Scan(&a))
	assert.Zero(t, a.ID)
	assert.Nil(t, a.Hits)
}

func TestRowScanErrors(t *testing.T) {
	r := &Row{columns: []string{"id"}, values: text("abc")}

	var a article
	assert.ErrorIs(t, r.Scan(&a), ErrInvalidArgument)
	assert.ErrorIs(t, r.Scan(a), ErrInvalidArgument)

	var m map[string]any
	require.NoError(t, r.Scan(&m))
	assert.Equal(t, map[string]any{"id": "abc"}, m)
}

func TestSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"ID":         "id",
		"CreatedBy":  "created_by",
		"UserID":     "user_id",
		"HTTPServer": "http_server",
		"already_ok": "already_ok",
	} {
		assert.Equal(t, want, snakeCase(in), in)
	}
}
