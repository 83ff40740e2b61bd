package dbtest

import (
	"context"
	"errors"
	"time"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/query"
	"github.com/stretchr/testify/suite"
)

// Suite exercises a driver against a live server. Each test starts from an
// empty #__items table.
type Suite struct {
	suite.Suite
	Options database.Options

	ctx context.Context
	db  *database.Driver
}

type item struct {
	ID      int64
	Title   string
	Hits    int
	Created *time.Time
}

func (s *Suite) SetupSuite() {
	s.ctx = context.Background()
	db, err := database.New(s.Options)
	s.Require().NoError(err)
	s.Require().NoError(db.Connect(s.ctx))
	s.db = db
}

func (s *Suite) TearDownSuite() {
	if s.db == nil {
		return
	}
	_ = s.db.DropTable(s.ctx, "#__items", true)
	_ = s.db.Close()
}

func (s *Suite) SetupTest() {
	s.Require().NoError(s.db.DropTable(s.ctx, "#__items", true))

	var ddl []string
	switch s.db.ServerType() {
	case database.ServerMySQL:
		ddl = []string{"CREATE TABLE #__items (id INT NOT NULL AUTO_INCREMENT, title VARCHAR(100) NOT NULL, hits INT NOT NULL DEFAULT 0, created DATETIME NULL, PRIMARY KEY (id), KEY idx_title (title)) DEFAULT CHARSET=utf8mb4"}
	case database.ServerPostgreSQL:
		ddl = []string{
			"CREATE TABLE #__items (id SERIAL PRIMARY KEY, title VARCHAR(100) NOT NULL, hits INTEGER NOT NULL DEFAULT 0, created TIMESTAMP NULL)",
			"CREATE INDEX #__idx_title ON #__items (title)",
		}
	default:
		ddl = []string{
			"CREATE TABLE #__items (id INTEGER PRIMARY KEY AUTOINCREMENT, title VARCHAR(100) NOT NULL, hits INTEGER NOT NULL DEFAULT 0, created DATETIME NULL)",
			"CREATE INDEX #__idx_title ON #__items (title)",
		}
	}
	for _, sql := range ddl {
		_, err := s.db.ExecuteUnprepared(s.ctx, sql)
		s.Require().NoError(err)
	}
}

func (s *Suite) insert(title string, hits int) int64 {
	q := s.db.CreateQuery().
		Insert("#__items").
		Columns("title", "hits").
		Values(":title, :hits").
		Bind("title", title, query.ParamString).
		Bind("hits", hits, query.ParamInt)
	s.Require().NoError(s.db.SetQuery(s.ctx, q))
	s.Require().NoError(s.db.Execute(s.ctx))
	s.Equal(int64(1), s.db.AffectedRows())

	id, err := s.db.InsertID(s.ctx)
	s.Require().NoError(err)
	return id
}

func (s *Suite) titles() []any {
	q := s.db.CreateQuery().Select("title").From("#__items").Order("id")
	s.Require().NoError(s.db.SetQuery(s.ctx, q))
	out, err := s.db.LoadColumn(s.ctx, 0)
	s.Require().NoError(err)
	return out
}

func (s *Suite) TestRepeatedNamedParameter() {
	s.insert("a", 2)
	s.insert("b", 5)

	id := 2
	q := s.db.CreateQuery().
		Select("id", "title").
		From("#__items").
		Where("id = :id OR hits = :id").
		Order("id").
		Bind("id", &id, query.ParamInt)
	s.Require().NoError(s.db.SetQuery(s.ctx, q))

	rows, err := s.db.LoadAssocList(s.ctx)
	s.Require().NoError(err)
	s.Equal([]map[string]any{{"id": "1", "title": "a"}, {"id": "2", "title": "b"}}, rows)

	id = 5
	rows, err = s.db.LoadAssocList(s.ctx)
	s.Require().NoError(err)
	s.Equal([]map[string]any{{"id": "2", "title": "b"}}, rows)
}

func (s *Suite) TestLoaders() {
	s.insert("a", 1)
	s.insert("b", 2)

	s.Require().NoError(s.db.SetQuery(s.ctx, "SELECT COUNT(*) FROM #__items"))
	n, err := s.db.LoadResult(s.ctx)
	s.Require().NoError(err)
	s.Equal("2", n)

	s.Require().NoError(s.db.SetQuery(s.ctx, s.db.CreateQuery().Select("*").From("#__items").Order("id")))
	var items []item
	s.Require().NoError(s.db.LoadObjectList(s.ctx, &items))
	s.Require().Len(items, 2)
	s.Equal(item{ID: 2, Title: "b", Hits: 2}, items[1])

	row, err := s.db.LoadRow(s.ctx)
	s.Require().NoError(err)
	s.Equal([]any{"1", "a", "1", nil}, row)
}

func (s *Suite) TestIterator() {
	s.insert("a", 1)
	s.insert("b", 2)
	s.insert("c", 3)

	q := s.db.CreateQuery().Select("title").From("#__items").Order("id")
	s.Require().NoError(s.db.SetQuery(s.ctx, q))
	it, err := s.db.Iterator(s.ctx)
	s.Require().NoError(err)

	var got []any
	for i, row := range it.All() {
		got = append(got, row.Num()[0])
		if i == 1 {
			break
		}
	}
	s.NoError(it.Err())
	s.Equal([]any{"a", "b"}, got)
}

func (s *Suite) TestLimit() {
	s.insert("a", 1)
	s.insert("b", 2)
	s.insert("c", 3)

	q := s.db.CreateQuery().Select("title").From("#__items").Order("id")
	s.Require().NoError(s.db.SetQueryLimit(s.ctx, q, 1, 1))
	out, err := s.db.LoadColumn(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal([]any{"b"}, out)
}

func (s *Suite) TestSavepointRollback() {
	s.Require().NoError(s.db.TransactionStart(s.ctx, false))
	s.insert("kept", 1)
	s.Require().NoError(s.db.TransactionStart(s.ctx, true))
	s.insert("discarded", 2)
	s.Require().NoError(s.db.TransactionRollback(s.ctx, true))
	s.Equal(1, s.db.TransactionDepth())
	s.Require().NoError(s.db.TransactionCommit(s.ctx, false))
	s.Zero(s.db.TransactionDepth())

	s.Equal([]any{"kept"}, s.titles())
}

func (s *Suite) TestTransactionRollback() {
	boom := errors.New("boom")
	err := s.db.Transaction(s.ctx, func(context.Context) error {
		s.insert("gone", 1)
		return boom
	})
	s.ErrorIs(err, boom)
	s.Empty(s.titles())
}

func (s *Suite) TestObjects() {
	it := &item{Title: "object", Hits: 3}
	s.Require().NoError(s.db.InsertObject(s.ctx, "#__items", it, "id"))
	s.NotZero(it.ID)

	it.Hits = 4
	s.Require().NoError(s.db.UpdateObject(s.ctx, "#__items", it, []string{"id"}, false))

	q := s.db.CreateQuery().Select("*").From("#__items").Where("id = :id").Bind("id", it.ID, query.ParamInt)
	s.Require().NoError(s.db.SetQuery(s.ctx, q))
	var got item
	found, err := s.db.LoadObject(s.ctx, &got)
	s.Require().NoError(err)
	s.True(found)
	s.Equal(*it, got)
}

func (s *Suite) TestSchema() {
	tables, err := s.db.TableList(s.ctx)
	s.Require().NoError(err)
	s.Contains(tables, s.db.Prefix()+"items")

	ok, err := s.db.HasTable(s.ctx, "#__items")
	s.Require().NoError(err)
	s.True(ok)

	cols, err := s.db.TableColumns(s.ctx, "#__items")
	s.Require().NoError(err)
	var names []string
	for _, c := range cols {
		names = append(names, c.Name)
	}
	s.Equal([]string{"id", "title", "hits", "created"}, names)
	s.False(cols[1].Null)
	s.True(cols[3].Null)
	s.Equal("PRI", cols[0].Key)

	keys, err := s.db.TableKeys(s.ctx, "#__items")
	s.Require().NoError(err)
	var primary []string
	for _, k := range keys {
		if k.Primary {
			primary = append(primary, k.Column)
		}
	}
	s.Equal([]string{"id"}, primary)

	create, err := s.db.TableCreate(s.ctx, "#__items")
	s.Require().NoError(err)
	s.Contains(create["#__items"], s.db.Prefix()+"items")
}

func (s *Suite) TestExportImport() {
	s.insert("a", 1)
	s.insert("b", 2)

	data, err := database.NewExporter(s.db).From("#__items").WithData(true).AsYAML().Bytes(s.ctx)
	s.Require().NoError(err)
	s.Contains(string(data), "name: '#__items'")

	s.Require().NoError(s.db.DropTable(s.ctx, "#__items", false))
	im := database.NewImporter(s.db).From(data).AsYAML()
	s.Require().NoError(im.MergeStructure(s.ctx))
	s.Require().NoError(im.ImportData(s.ctx))

	s.Equal([]any{"a", "b"}, s.titles())
}

func (s *Suite) TestErrors() {
	err := s.db.SetQuery(s.ctx, "SELECT * FROM #__missing")
	if err == nil {
		err = s.db.Execute(s.ctx)
	}
	s.Require().Error(err)
	s.True(errors.Is(err, database.ErrPrepareFailure) || errors.Is(err, database.ErrExecutionFailure), err.Error())

	var e *database.Error
	s.Require().ErrorAs(err, &e)
	s.NotEmpty(e.Code)
}

func (s *Suite) TestQuote() {
	text := `it's a "test" \ here`
	s.Require().NoError(s.db.SetQuery(s.ctx, "SELECT "+s.db.Quote(text)))
	v, err := s.db.LoadResult(s.ctx)
	s.Require().NoError(err)
	s.Equal(text, v)
}

func (s *Suite) TestVersion() {
	v, err := s.db.Version(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(v)

	ok, err := s.db.IsMinimumVersion(s.ctx)
	s.Require().NoError(err)
	s.True(ok, v)
}
