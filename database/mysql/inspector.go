package mysql

import (
	"context"

	"github.com/satishbabariya/dbkit/database"
	"github.com/spf13/cast"
)

type inspector struct{}

func (inspector) TableList(ctx context.Context, db *database.Driver) ([]string, error) {
	if err := db.SetQuery(ctx, "SHOW TABLES"); err != nil {
		return nil, err
	}
	names, err := db.LoadColumn(ctx, 0)
	if err != nil {
		return nil, err
	}
	return cast.ToStringSliceE(names)
}

func (inspector) TableColumns(ctx context.Context, db *database.Driver, table string) ([]database.Column, error) {
	if err := db.SetQuery(ctx, "SHOW FULL COLUMNS FROM "+db.QuoteName(table)); err != nil {
		return nil, err
	}
	rows, err := db.LoadAssocList(ctx)
	if err != nil {
		return nil, err
	}

	cols := make([]database.Column, 0, len(rows))
	for _, r := range rows {
		col := database.Column{
			Name:      cast.ToString(r["Field"]),
			Type:      cast.ToString(r["Type"]),
			Null:      cast.ToString(r["Null"]) == "YES",
			Key:       cast.ToString(r["Key"]),
			Extra:     cast.ToString(r["Extra"]),
			Comment:   cast.ToString(r["Comment"]),
			Collation: cast.ToString(r["Collation"]),
		}
		if d, ok := r["Default"].(string); ok {
			col.Default = &d
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func (inspector) TableKeys(ctx context.Context, db *database.Driver, table string) ([]database.Key, error) {
	if err := db.SetQuery(ctx, "SHOW KEYS FROM "+db.QuoteName(table)); err != nil {
		return nil, err
	}
	rows, err := db.LoadAssocList(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]database.Key, 0, len(rows))
	for _, r := range rows {
		name := cast.ToString(r["Key_name"])
		keys = append(keys, database.Key{
			Name:    name,
			Column:  cast.ToString(r["Column_name"]),
			Seq:     cast.ToInt(r["Seq_in_index"]),
			Unique:  cast.ToString(r["Non_unique"]) == "0",
			Primary: name == "PRIMARY",
		})
	}
	return keys, nil
}

func (inspector) TableCreate(ctx context.Context, db *database.Driver, table string) (string, error) {
	if err := db.SetQuery(ctx, "SHOW CREATE TABLE "+db.QuoteName(table)); err != nil {
		return "", err
	}
	row, err := db.LoadRow(ctx)
	if err != nil || len(row) < 2 {
		return "", err
	}
	return cast.ToString(row[1]), nil
}

func (inspector) Version(ctx context.Context, db *database.Driver) (string, error) {
	return loadString(ctx, db, "SELECT VERSION()")
}

func (inspector) Collation(ctx context.Context, db *database.Driver) (string, error) {
	return loadString(ctx, db, "SELECT @@collation_database")
}

func loadString(ctx context.Context, db *database.Driver, sql string) (string, error) {
	if err := db.SetQuery(ctx, sql); err != nil {
		return "", err
	}
	v, err := db.LoadResult(ctx)
	return cast.ToString(v), err
}
