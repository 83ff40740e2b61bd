package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"reflect"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/satishbabariya/dbkit/query"
	"github.com/spf13/cast"
)

// objectField is one persistable field of a record.
type objectField struct {
	name  string
	value any
	null  bool
}

var valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()

// objectFields lists the fields of obj, a struct, a pointer to one or a
// map[string]any. Fields whose name starts with "_" and values that are
// slices, maps or structs (other than []byte, time.Time and driver.Valuer
// implementations) are left out.
func objectFields(obj any) ([]objectField, error) {
	if m, ok := obj.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var out []objectField
		for _, k := range keys {
			if strings.HasPrefix(k, "_") {
				continue
			}
			if f, ok := persistable(k, reflect.ValueOf(m[k])); ok {
				out = append(out, f)
			}
		}
		return out, nil
	}

	v := reflect.Indirect(reflect.ValueOf(obj))
	if v.Kind() != reflect.Struct {
		return nil, invalidArgument("object must be a struct or map[string]any, got %T", obj)
	}

	var out []objectField
	for _, fi := range mapper.TypeMap(v.Type()).Index {
		if fi.Embedded || strings.HasPrefix(fi.Name, "_") || strings.Contains(fi.Path, ".") {
			continue
		}
		if f, ok := persistable(fi.Name, v.FieldByIndex(fi.Index)); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func persistable(name string, v reflect.Value) (objectField, bool) {
	f := objectField{name: name}
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.Type().Implements(valuerType) && !v.IsNil() {
			break
		}
		if v.IsNil() {
			f.null = true
			return f, true
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		f.null = true
		return f, true
	}

	if v.Type().Implements(valuerType) {
		val, err := v.Interface().(driver.Valuer).Value()
		if err != nil {
			return f, false
		}
		f.value, f.null = val, val == nil
		return f, true
	}

	switch v.Type() {
	case timeType:
		f.value = v.Interface()
		return f, true
	case bytesType:
		f.value = v.Bytes()
		return f, true
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Func, reflect.Chan:
		return f, false
	}
	f.value = v.Interface()
	return f, true
}

// parameterType picks the binding type for a Go value.
func parameterType(v any) query.ParameterType {
	switch v.(type) {
	case nil:
		return query.ParamNull
	case bool:
		return query.ParamBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return query.ParamInt
	case []byte:
		return query.ParamLOB
	}
	return query.ParamString
}

// emptyFor reports whether v is an empty value a column of type typ cannot
// take, such as "" for an integer column.
func emptyFor(typ string, v any) bool {
	typ = strings.ToLower(typ)
	switch {
	case strings.Contains(typ, "date") || strings.Contains(typ, "time"):
		switch t := v.(type) {
		case string:
			return t == ""
		case time.Time:
			return t.IsZero()
		}
	case strings.Contains(typ, "int"):
		s, ok := v.(string)
		return ok && s == ""
	}
	return false
}

// InsertObject inserts the fields of obj that match columns of table. Null
// values and a zero key are skipped. When key names a field and the server generated a key,
// it is written back into obj, which must then be a pointer to a struct or a
// map.
func (d *Driver) InsertObject(ctx context.Context, table string, obj any, key string) error {
	fields, err := objectFields(obj)
	if err != nil {
		return err
	}
	columns, err := d.TableColumnTypes(ctx, table)
	if err != nil {
		return err
	}

	q := d.CreateQuery().Insert(d.QuoteName(table))
	var names, markers []string
	for i, f := range fields {
		typ, ok := columns[f.name]
		if !ok || f.null || emptyFor(typ, f.value) {
			continue
		}
		if f.name == key && zeroKey(f.value) {
			continue
		}
		marker := ":object" + strconv.Itoa(i)
		names = append(names, d.QuoteName(f.name))
		markers = append(markers, marker)
		q.Bind(marker, f.value, parameterType(f.value))
	}
	if len(names) == 0 {
		return invalidArgument("no field of %T matches a column of %s", obj, table)
	}
	q.Columns(names...).Values(strings.Join(markers, ", "))

	if err := d.SetQuery(ctx, q); err != nil {
		return err
	}
	if err := d.Execute(ctx); err != nil {
		return err
	}
	if key == "" {
		return nil
	}

	id, err := d.InsertID(ctx)
	if err != nil {
		d.log.Debug("No generated key", "table", table, "error", err)
		return nil
	}
	if id == 0 {
		return nil
	}
	return writeKey(obj, key, id)
}

// UpdateObject updates the row of table identified by the keys fields of
// obj. With nulls set, nil fields are written as NULL; otherwise they are
// left alone.
func (d *Driver) UpdateObject(ctx context.Context, table string, obj any, keys []string, nulls bool) error {
	if len(keys) == 0 {
		return invalidArgument("UpdateObject needs at least one key")
	}
	fields, err := objectFields(obj)
	if err != nil {
		return err
	}
	columns, err := d.TableColumnTypes(ctx, table)
	if err != nil {
		return err
	}

	q := d.CreateQuery().Update(d.QuoteName(table))
	var sets, where []string
	for i, f := range fields {
		if _, ok := columns[f.name]; !ok {
			continue
		}
		marker := ":object" + strconv.Itoa(i)
		name := d.QuoteName(f.name)

		if slices.Contains(keys, f.name) {
			where = append(where, name+" = "+marker)
			q.Bind(marker, f.value, parameterType(f.value))
			continue
		}
		if f.null {
			if nulls {
				sets = append(sets, name+" = NULL")
			}
			continue
		}
		sets = append(sets, name+" = "+marker)
		q.Bind(marker, f.value, parameterType(f.value))
	}

	if len(where) != len(keys) {
		return invalidArgument("not every key of %v is a field of %T and a column of %s", keys, obj, table)
	}
	if len(sets) == 0 {
		return nil
	}
	q.Set(sets...).Where(where...)

	if err := d.SetQuery(ctx, q); err != nil {
		return err
	}
	return d.Execute(ctx)
}

// zeroKey reports whether v is an unset generated key.
func zeroKey(v any) bool {
	switch k := v.(type) {
	case string:
		return k == "" || k == "0"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, err := cast.ToInt64E(k)
		return err == nil && n == 0
	}
	return false
}

func writeKey(obj any, key string, id int64) error {
	if m, ok := obj.(map[string]any); ok {
		m[key] = id
		return nil
	}

	v := reflect.ValueOf(obj)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return nil
	}
	field := mapper.FieldByName(v.Elem(), key)
	if !field.IsValid() || !field.CanSet() {
		return nil
	}
	return assign(field, sql.NullString{String: strconv.FormatInt(id, 10), Valid: true}, nil)
}
