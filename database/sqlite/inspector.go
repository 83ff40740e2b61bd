package sqlite

import (
	"context"

	"github.com/satishbabariya/dbkit/database"
	"github.com/satishbabariya/dbkit/query"
	"github.com/spf13/cast"
)

type inspector struct{}

func (inspector) TableList(ctx context.Context, db *database.Driver) ([]string, error) {
	err := db.SetQuery(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, err
	}
	names, err := db.LoadColumn(ctx, 0)
	if err != nil {
		return nil, err
	}
	return cast.ToStringSliceE(names)
}

func tableInfo(ctx context.Context, db *database.Driver, table string) ([]map[string]any, error) {
	if err := db.SetQuery(ctx, "PRAGMA table_info("+db.QuoteName(table)+")"); err != nil {
		return nil, err
	}
	return db.LoadAssocList(ctx)
}

func (inspector) TableColumns(ctx context.Context, db *database.Driver, table string) ([]database.Column, error) {
	rows, err := tableInfo(ctx, db, table)
	if err != nil {
		return nil, err
	}

	cols := make([]database.Column, 0, len(rows))
	for _, r := range rows {
		col := database.Column{
			Name: cast.ToString(r["name"]),
			Type: cast.ToString(r["type"]),
			Null: cast.ToString(r["notnull"]) == "0",
		}
		if cast.ToInt(r["pk"]) > 0 {
			col.Key = "PRI"
		}
		if d, ok := r["dflt_value"].(string); ok {
			col.Default = &d
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// TableKeys lists the columns of every index of table. A rowid alias
// primary key has no index of its own and is reported from table_info.
func (inspector) TableKeys(ctx context.Context, db *database.Driver, table string) ([]database.Key, error) {
	if err := db.SetQuery(ctx, "PRAGMA index_list("+db.QuoteName(table)+")"); err != nil {
		return nil, err
	}
	indexes, err := db.LoadAssocList(ctx)
	if err != nil {
		return nil, err
	}

	var keys []database.Key
	hasPrimary := false
	for _, ix := range indexes {
		name := cast.ToString(ix["name"])
		primary := cast.ToString(ix["origin"]) == "pk"
		hasPrimary = hasPrimary || primary

		if err := db.SetQuery(ctx, "PRAGMA index_info("+db.QuoteName(name)+")"); err != nil {
			return nil, err
		}
		cols, err := db.LoadAssocList(ctx)
		if err != nil {
			return nil, err
		}
		for _, c := range cols {
			keys = append(keys, database.Key{
				Name:    name,
				Column:  cast.ToString(c["name"]),
				Seq:     cast.ToInt(c["seqno"]) + 1,
				Unique:  cast.ToString(ix["unique"]) == "1",
				Primary: primary,
			})
		}
	}

	if hasPrimary {
		return keys, nil
	}
	info, err := tableInfo(ctx, db, table)
	if err != nil {
		return nil, err
	}
	for _, r := range info {
		if pk := cast.ToInt(r["pk"]); pk > 0 {
			keys = append(keys, database.Key{Name: "PRIMARY", Column: cast.ToString(r["name"]), Seq: pk, Unique: true, Primary: true})
		}
	}
	return keys, nil
}

func (inspector) TableCreate(ctx context.Context, db *database.Driver, table string) (string, error) {
	q := db.CreateQuery().
		Select("sql").
		From("sqlite_master").
		Where("type = 'table'", "name = :table").
		Bind("table", table, query.ParamString)
	if err := db.SetQuery(ctx, q); err != nil {
		return "", err
	}
	v, err := db.LoadResult(ctx)
	return cast.ToString(v), err
}

func (inspector) Version(ctx context.Context, db *database.Driver) (string, error) {
	return loadString(ctx, db, "SELECT sqlite_version()")
}

func (inspector) Collation(ctx context.Context, db *database.Driver) (string, error) {
	return loadString(ctx, db, "PRAGMA encoding")
}

func loadString(ctx context.Context, db *database.Driver, sql string) (string, error) {
	if err := db.SetQuery(ctx, sql); err != nil {
		return "", err
	}
	v, err := db.LoadResult(ctx)
	return cast.ToString(v), err
}
