package database

import (
	"context"
	"iter"
	"reflect"
)

// fetchAll executes the current statement and calls fn for each row until fn
// returns false. The result is freed afterwards.
func (d *Driver) fetchAll(ctx context.Context, fn func(*Row) bool) error {
	if err := d.Execute(ctx); err != nil {
		return err
	}
	defer d.stmt.CloseCursor()

	for {
		row, err := d.stmt.Fetch()
		if err != nil {
			return err
		}
		if row == nil || !fn(row) {
			return nil
		}
	}
}

// LoadResult returns the first column of the first row, or nil when there
// are no rows.
func (d *Driver) LoadResult(ctx context.Context) (any, error) {
	var out any
	err := d.fetchAll(ctx, func(r *Row) bool {
		if vals := r.Num(); len(vals) > 0 {
			out = vals[0]
		}
		return false
	})
	return out, err
}

// LoadColumn returns column offset of every row.
func (d *Driver) LoadColumn(ctx context.Context, offset int) ([]any, error) {
	var out []any
	err := d.fetchAll(ctx, func(r *Row) bool {
		vals := r.Num()
		if offset >= 0 && offset < len(vals) {
			out = append(out, vals[offset])
		}
		return true
	})
	return out, err
}

// LoadRow returns the first row in column order, or nil.
func (d *Driver) LoadRow(ctx context.Context) ([]any, error) {
	var out []any
	err := d.fetchAll(ctx, func(r *Row) bool {
		out = r.Num()
		return false
	})
	return out, err
}

// LoadAssoc returns the first row keyed by column name, or nil.
func (d *Driver) LoadAssoc(ctx context.Context) (map[string]any, error) {
	var out map[string]any
	err := d.fetchAll(ctx, func(r *Row) bool {
		out = r.Assoc()
		return false
	})
	return out, err
}

// LoadObject decodes the first row into dest and reports whether there was
// one. See Row.Scan for the decoding rules.
func (d *Driver) LoadObject(ctx context.Context, dest any) (bool, error) {
	found := false
	var scanErr error
	err := d.fetchAll(ctx, func(r *Row) bool {
		found = true
		scanErr = r.Scan(dest)
		return false
	})
	if err != nil {
		return false, err
	}
	return found, scanErr
}

// LoadRowList returns every row in column order.
func (d *Driver) LoadRowList(ctx context.Context) ([][]any, error) {
	var out [][]any
	err := d.fetchAll(ctx, func(r *Row) bool {
		out = append(out, r.Num())
		return true
	})
	return out, err
}

// LoadAssocList returns every row keyed by column name.
func (d *Driver) LoadAssocList(ctx context.Context) ([]map[string]any, error) {
	var out []map[string]any
	err := d.fetchAll(ctx, func(r *Row) bool {
		out = append(out, r.Assoc())
		return true
	})
	return out, err
}

// LoadObjectList decodes every row into dest, a pointer to a slice of structs
// or of struct pointers.
func (d *Driver) LoadObjectList(ctx context.Context, dest any) error {
	sv := reflect.ValueOf(dest)
	if sv.Kind() != reflect.Pointer || sv.IsNil() || sv.Elem().Kind() != reflect.Slice {
		return invalidArgument("destination must be a pointer to a slice, got %T", dest)
	}
	slice := sv.Elem()
	elem := slice.Type().Elem()
	ptr := elem.Kind() == reflect.Pointer
	if ptr {
		elem = elem.Elem()
	}

	var scanErr error
	err := d.fetchAll(ctx, func(r *Row) bool {
		item := reflect.New(elem)
		if scanErr = r.Scan(item.Interface()); scanErr != nil {
			return false
		}
		if ptr {
			slice.Set(reflect.Append(slice, item))
		} else {
			slice.Set(reflect.Append(slice, item.Elem()))
		}
		return true
	})
	if err != nil {
		return err
	}
	return scanErr
}

// Iterator executes the current statement and returns a lazy iterator over
// its rows. The caller must Close it.
func (d *Driver) Iterator(ctx context.Context) (*Iterator, error) {
	if err := d.Execute(ctx); err != nil {
		return nil, err
	}
	return &Iterator{stmt: d.stmt}, nil
}

// Iterator walks the rows of one execution.
//
//	it, err := db.Iterator(ctx)
//	defer it.Close()
//	for it.Next() {
//		row := it.Row()
//	}
//	err = it.Err()
type Iterator struct {
	stmt *Statement
	row  *Row
	err  error
	done bool
	n    int
}

// Next advances to the next row.
func (it *Iterator) Next() bool {
	if it.done {
		return false
	}
	it.row, it.err = it.stmt.Fetch()
	if it.err != nil || it.row == nil {
		it.done = true
		it.row = nil
		return false
	}
	it.n++
	return true
}

// Row returns the current row.
func (it *Iterator) Row() *Row { return it.row }

// Key returns the zero-based index of the current row.
func (it *Iterator) Key() int { return it.n - 1 }

// Err returns the error that stopped the iteration, if any.
func (it *Iterator) Err() error { return it.err }

// Close frees the result.
func (it *Iterator) Close() error {
	it.done = true
	return it.stmt.CloseCursor()
}

// All ranges over the remaining rows and closes the iterator when done.
func (it *Iterator) All() iter.Seq2[int, *Row] {
	return func(yield func(int, *Row) bool) {
		defer it.Close()
		for it.Next() {
			if !yield(it.Key(), it.Row()) {
				return
			}
		}
	}
}
