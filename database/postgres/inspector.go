package postgres

import (
	"context"
	"strings"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/query"
	"github.com/spf13/cast"
)

const tableListSQL = `SELECT table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE' AND table_schema = current_schema()
ORDER BY table_name`

const tableColumnsSQL = `SELECT a.attname AS name,
	pg_catalog.format_type(a.atttypid, a.atttypmod) AS type,
	CASE WHEN a.attnotnull THEN 'NO' ELSE 'YES' END AS nullable,
	pg_catalog.pg_get_expr(d.adbin, d.adrelid, true) AS "default",
	CASE WHEN EXISTS (
		SELECT 1 FROM pg_catalog.pg_index i
		WHERE i.indrelid = a.attrelid AND i.indisprimary AND a.attnum = ANY(i.indkey)
	) THEN 'PRI' ELSE '' END AS key,
	COALESCE(pg_catalog.col_description(a.attrelid, a.attnum), '') AS comment,
	COALESCE(c.collname, '') AS collation
FROM pg_catalog.pg_attribute a
LEFT JOIN pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
LEFT JOIN pg_catalog.pg_collation c ON c.oid = a.attcollation AND c.collname <> 'default'
WHERE a.attrelid = (
	SELECT t.oid FROM pg_catalog.pg_class t
	JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
	WHERE t.relname = :table AND n.nspname = current_schema()
)
AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum`

const tableKeysSQL = `SELECT i.relname AS key_name,
	a.attname AS column_name,
	k.n AS seq,
	ix.indisunique AS is_unique,
	ix.indisprimary AS is_primary
FROM pg_catalog.pg_index ix
JOIN pg_catalog.pg_class t ON t.oid = ix.indrelid
JOIN pg_catalog.pg_namespace ns ON ns.oid = t.relnamespace
JOIN pg_catalog.pg_class i ON i.oid = ix.indexrelid
JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, n) ON true
JOIN pg_catalog.pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
WHERE t.relname = :table AND ns.nspname = current_schema()
ORDER BY i.relname, k.n`

type inspector struct{}

func (inspector) TableList(ctx context.Context, db *database.Driver) ([]string, error) {
	if err := db.SetQuery(ctx, tableListSQL); err != nil {
		return nil, err
	}
	names, err := db.LoadColumn(ctx, 0)
	if err != nil {
		return nil, err
	}
	return cast.ToStringSliceE(names)
}

func byTable(db *database.Driver, sql, table string) *query.Query {
	return db.CreateQuery().SetSQL(sql).Bind("table", table, query.ParamString)
}

func (inspector) TableColumns(ctx context.Context, db *database.Driver, table string) ([]database.Column, error) {
	if err := db.SetQuery(ctx, byTable(db, tableColumnsSQL, table)); err != nil {
		return nil, err
	}
	rows, err := db.LoadAssocList(ctx)
	if err != nil {
		return nil, err
	}

	cols := make([]database.Column, 0, len(rows))
	for _, r := range rows {
		col := database.Column{
			Name:      cast.ToString(r["name"]),
			Type:      cast.ToString(r["type"]),
			Null:      cast.ToString(r["nullable"]) == "YES",
			Key:       cast.ToString(r["key"]),
			Comment:   cast.ToString(r["comment"]),
			Collation: cast.ToString(r["collation"]),
		}
		if d, ok := r["default"].(string); ok {
			col.Default = &d
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (inspector) TableKeys(ctx context.Context, db *database.Driver, table string) ([]database.Key, error) {
	if err := db.SetQuery(ctx, byTable(db, tableKeysSQL, table)); err != nil {
		return nil, err
	}
	rows, err := db.LoadAssocList(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]database.Key, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, database.Key{
			Name:    cast.ToString(r["key_name"]),
			Column:  cast.ToString(r["column_name"]),
			Seq:     cast.ToInt(r["seq"]),
			Unique:  cast.ToBool(r["is_unique"]),
			Primary: cast.ToBool(r["is_primary"]),
		})
	}
	return keys, nil
}

// TableCreate synthesises the statements from the catalog, PostgreSQL
// having no SHOW CREATE TABLE.
func (in inspector) TableCreate(ctx context.Context, db *database.Driver, table string) (string, error) {
	cols, err := in.TableColumns(ctx, db, table)
	if err != nil {
		return "", err
	}
	keys, err := in.TableKeys(ctx, db, table)
	if err != nil {
		return "", err
	}
	return strings.Join(db.CreateTableSQL(table, cols, keys), ";\n"), nil
}

func (inspector) Version(ctx context.Context, db *database.Driver) (string, error) {
	return loadString(ctx, db, "SHOW server_version")
}

func (inspector) Collation(ctx context.Context, db *database.Driver) (string, error) {
	return loadString(ctx, db, "SELECT datcollate FROM pg_catalog.pg_database WHERE datname = current_database()")
}

func loadString(ctx context.Context, db *database.Driver, sql string) (string, error) {
	if err := db.SetQuery(ctx, sql); err != nil {
		return "", err
	}
	v, err := db.LoadResult(ctx)
	return cast.ToString(v), err
}
