package database

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/jmoiron/sqlx/reflectx"
	"github.com/satishbabariya/dbkit/query"
	"github.com/spf13/cast"
)

// FetchMode is the shape a row is materialised in.
type FetchMode int

const (
	// FetchNum returns values in column order.
	FetchNum FetchMode = iota
	// FetchAssoc returns values keyed by column name.
	FetchAssoc
	// FetchBoth returns values keyed by both position and column name.
	FetchBoth
)

// Row is one fetched result row. Values are the text the server returned;
// SQL NULL is nil.
type Row struct {
	columns []string
	values  []sql.NullString
	dialect query.Dialect
}

// Columns returns the column names in result order.
func (r *Row) Columns() []string { return r.columns }

// Num returns the values in column order.
func (r *Row) Num() []any {
	out := make([]any, len(r.values))
	for i, v := range r.values {
		out[i] = nullable(v)
	}
	return out
}

// Assoc returns the values keyed by column name. A later column wins over an
// earlier one with the same name.
func (r *Row) Assoc() map[string]any {
	out := make(map[string]any, len(r.values))
	for i, v := range r.values {
		out[r.columns[i]] = nullable(v)
	}
	return out
}

// Mixed returns the values keyed by both their int position and their
// column name.
func (r *Row) Mixed() map[any]any {
	out := make(map[any]any, 2*len(r.values))
	for i, v := range r.values {
		out[i] = nullable(v)
		out[r.columns[i]] = nullable(v)
	}
	return out
}

// As returns the row in the given shape.
func (r *Row) As(mode FetchMode) any {
	switch mode {
	case FetchAssoc:
		return r.Assoc()
	case FetchBoth:
		return r.Mixed()
	}
	return r.Num()
}

// Value returns the value of column name.
func (r *Row) Value(name string) (any, bool) {
	for i := len(r.columns) - 1; i >= 0; i-- {
		if r.columns[i] == name {
			return nullable(r.values[i]), true
		}
	}
	return nil, false
}

// Bytes returns the value at position i decoded from the dialect's binary
// text form.
func (r *Row) Bytes(i int) []byte {
	if i < 0 || i >= len(r.values) || !r.values[i].Valid {
		return nil
	}
	if r.dialect == nil {
		return []byte(r.values[i].String)
	}
	return r.dialect.DecodeBinary(r.values[i].String)
}

func nullable(v sql.NullString) any {
	if !v.Valid {
		return nil
	}
	return v.String
}

var mapper = reflectx.NewMapperFunc("db", snakeCase)

// snakeCase turns a Go field name into its column name: CreatedBy becomes
// created_by and ID becomes id.
func snakeCase(name string) string {
	var b strings.Builder
	runes := []rune(name)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) && runes[i-1] != '_' {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	timeType    = reflect.TypeOf(time.Time{})
	bytesType   = reflect.TypeOf([]byte(nil))
	scannerType = reflect.TypeOf((*sql.Scanner)(nil)).Elem()
)

// Scan decodes the row into dest, a pointer to a struct or to a
// map[string]any. Struct fields are matched by their db tag or by the snake
// case form of their name; columns without a field are ignored. Text values
// are converted to the field type.
func (r *Row) Scan(dest any) error {
	if m, ok := dest.(*map[string]any); ok {
		*m = r.Assoc()
		return nil
	}

	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return invalidArgument("scan destination must be a non-nil pointer to a struct, got %T", dest)
	}
	v = v.Elem()

	for i, idx := range mapper.TraversalsByName(v.Type(), r.columns) {
		if len(idx) == 0 {
			continue
		}
		field := reflectx.FieldByIndexes(v, idx)
		if err := assign(field, r.values[i], r.dialect); err != nil {
			return invalidArgument("column %s: %v", r.columns[i], err)
		}
	}
	return nil
}

// assign stores a text value, or NULL, into f.
func assign(f reflect.Value, ns sql.NullString, d query.Dialect) error {
	if f.CanAddr() && f.Addr().Type().Implements(scannerType) {
		s := f.Addr().Interface().(sql.Scanner)
		if !ns.Valid {
			return s.Scan(nil)
		}
		return s.Scan(ns.String)
	}

	if f.Kind() == reflect.Pointer {
		if !ns.Valid {
			f.Set(reflect.Zero(f.Type()))
			return nil
		}
		if f.IsNil() {
			f.Set(reflect.New(f.Type().Elem()))
		}
		f = f.Elem()
	}
	if !ns.Valid {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}

	return setText(f, ns.String, d)
}

func setText(f reflect.Value, s string, d query.Dialect) error {
	switch f.Type() {
	case timeType:
		t, err := cast.ToTimeE(s)
		if err != nil {
			return err
		}
		f.Set(reflect.ValueOf(t))
		return nil
	case bytesType:
		if d != nil {
			f.SetBytes(d.DecodeBinary(s))
		} else {
			f.SetBytes([]byte(s))
		}
		return nil
	}

	switch f.Kind() {
	case reflect.String:
		f.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := cast.ToInt64E(s)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := cast.ToUint64E(s)
		if err != nil {
			return err
		}
		f.SetUint(n)
	case reflect.Float32, reflect.Float64:
		n, err := cast.ToFloat64E(s)
		if err != nil {
			return err
		}
		f.SetFloat(n)
	case reflect.Bool:
		b, err := cast.ToBoolE(s)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Interface:
		f.Set(reflect.ValueOf(s))
	default:
		return fmt.Errorf("unsupported field type %s", f.Type())
	}
	return nil
}
