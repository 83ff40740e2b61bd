package database

import (
	"context"
	"strings"
)

// TableList returns the tables of the current database.
func (d *Driver) TableList(ctx context.Context) ([]string, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}
	return d.backend.Inspector().TableList(ctx, d)
}

// TableColumns returns the columns of table in definition order. table may
// use the #__ prefix token.
func (d *Driver) TableColumns(ctx context.Context, table string) ([]Column, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}
	return d.backend.Inspector().TableColumns(ctx, d, d.ReplacePrefix(table))
}

// TableColumnTypes returns the type of every column of table.
func (d *Driver) TableColumnTypes(ctx context.Context, table string) (map[string]string, error) {
	cols, err := d.TableColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(cols))
	for _, c := range cols {
		out[c.Name] = c.Type
	}
	return out, nil
}

// TableKeys returns the index columns of table.
func (d *Driver) TableKeys(ctx context.Context, table string) ([]Key, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}
	return d.backend.Inspector().TableKeys(ctx, d, d.ReplacePrefix(table))
}

// TableCreate returns the CREATE statement of each table, keyed by the
// name as given.
func (d *Driver) TableCreate(ctx context.Context, tables ...string) (map[string]string, error) {
	if err := d.Connect(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(tables))
	for _, t := range tables {
		sql, err := d.backend.Inspector().TableCreate(ctx, d, d.ReplacePrefix(t))
		if err != nil {
			return nil, err
		}
		out[t] = sql
	}
	return out, nil
}

// Collation returns the collation of the current database.
func (d *Driver) Collation(ctx context.Context) (string, error) {
	if err := d.Connect(ctx); err != nil {
		return "", err
	}
	return d.backend.Inspector().Collation(ctx, d)
}

// DropTable drops table, tolerating a missing table when ifExists is set.
func (d *Driver) DropTable(ctx context.Context, table string, ifExists bool) error {
	sql := "DROP TABLE "
	if ifExists {
		sql += "IF EXISTS "
	}
	_, err := d.ExecuteUnprepared(ctx, sql+d.QuoteName(table))
	return err
}

// RenameTable renames table to newName.
func (d *Driver) RenameTable(ctx context.Context, table, newName string) error {
	_, err := d.ExecuteUnprepared(ctx, "ALTER TABLE "+d.QuoteName(table)+" RENAME TO "+d.QuoteName(newName))
	return err
}

// TruncateTable removes every row of table.
func (d *Driver) TruncateTable(ctx context.Context, table string) error {
	_, err := d.ExecuteUnprepared(ctx, d.dialect.Truncate(table))
	return err
}

// HasTable reports whether table exists. table may use the #__ token.
func (d *Driver) HasTable(ctx context.Context, table string) (bool, error) {
	tables, err := d.TableList(ctx)
	if err != nil {
		return false, err
	}
	want := d.ReplacePrefix(table)
	for _, t := range tables {
		if strings.EqualFold(t, want) {
			return true, nil
		}
	}
	return false, nil
}
