package query

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ParameterType declares how a bound value is sent to the server.
type ParameterType string

// Supported parameter types.
const (
	ParamBool   ParameterType = "boolean"
	ParamInt    ParameterType = "int"
	ParamLOB    ParameterType = "lob"
	ParamNull   ParameterType = "null"
	ParamString ParameterType = "string"
)

// Valid reports whether t is one of the supported parameter types.
func (t ParameterType) Valid() bool {
	switch t {
	case ParamBool, ParamInt, ParamLOB, ParamNull, ParamString:
		return true
	}
	return false
}

// Binding is a named parameter registered on a query. The value is read when
// the statement executes, not when it is bound.
type Binding struct {
	Key   string
	Type  ParameterType
	value func() any
}

// Value returns the current value of the binding.
func (b Binding) Value() any {
	if b.value == nil {
		return nil
	}
	return b.value()
}

// reference returns a getter for v. Pointers are dereferenced on every call,
// so later writes through them are observed.
func reference(v any) func() any {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return func() any { return v }
	}
	return func() any {
		if rv.IsNil() {
			return nil
		}
		return rv.Elem().Interface()
	}
}

func normalizeKey(key string) string {
	return strings.TrimPrefix(key, ":")
}

// Bind registers value under key. Passing a pointer binds by reference: the
// pointee is read at execute time.
func (q *Query) Bind(key string, value any, dataType ParameterType) *Query {
	return q.BindFunc(key, reference(value), dataType)
}

// BindFunc registers a getter under key. fn is called each time the statement
// executes.
func (q *Query) BindFunc(key string, fn func() any, dataType ParameterType) *Query {
	key = normalizeKey(key)
	if q.bindings == nil {
		q.bindings = map[string]int{}
	}

	b := Binding{Key: key, Type: dataType, value: fn}
	if i, ok := q.bindings[key]; ok {
		q.bounded[i] = b
		return q
	}
	q.bindings[key] = len(q.bounded)
	q.bounded = append(q.bounded, b)
	return q
}

// Unbind removes the bindings registered under keys.
func (q *Query) Unbind(keys ...string) *Query {
	for _, key := range keys {
		key = normalizeKey(key)
		i, ok := q.bindings[key]
		if !ok {
			continue
		}
		q.bounded = append(q.bounded[:i], q.bounded[i+1:]...)
		delete(q.bindings, key)
		for k, j := range q.bindings {
			if j > i {
				q.bindings[k] = j - 1
			}
		}
	}
	return q
}

// Bounded returns the registered bindings in registration order, followed by
// those of derived tables, the query set and union operands that q does not
// bind itself. The first binding of a key wins.
func (q *Query) Bounded() []Binding {
	seen := make(map[string]bool)
	return q.collectBindings(nil, seen)
}

func (q *Query) collectBindings(out []Binding, seen map[string]bool) []Binding {
	for _, b := range q.bounded {
		if !seen[b.Key] {
			seen[b.Key] = true
			out = append(out, b)
		}
	}
	for _, sub := range q.derived {
		out = sub.collectBindings(out, seen)
	}
	if q.querySet != nil {
		out = q.querySet.collectBindings(out, seen)
	}
	for _, m := range q.merge {
		if m.query != nil {
			out = m.query.collectBindings(out, seen)
		}
	}
	return out
}

// Binding returns the binding registered under key.
func (q *Query) Binding(key string) (Binding, bool) {
	i, ok := q.bindings[normalizeKey(key)]
	if !ok {
		return Binding{}, false
	}
	return q.bounded[i], true
}

// BindArray binds each value under a generated ":preparedArrayN" name and
// returns the names in order. types holds either a single type applied to
// every value or exactly one type per value; it defaults to ParamInt.
func (q *Query) BindArray(values []any, types ...ParameterType) ([]string, error) {
	if len(types) > 1 && len(types) != len(values) {
		return nil, fmt.Errorf("%w: %d types for %d values", ErrBindingMismatch, len(types), len(values))
	}

	names := make([]string, 0, len(values))
	for i, v := range values {
		typ := ParamInt
		switch {
		case len(types) == 1:
			typ = types[0]
		case len(types) > 1:
			typ = types[i]
		}

		q.arrayIndex++
		name := ":preparedArray" + strconv.Itoa(q.arrayIndex)
		q.Bind(name, v, typ)
		names = append(names, name)
	}
	return names, nil
}

// WhereIn adds "column IN (...)" with every value bound. An empty list
// renders a condition that matches nothing.
func (q *Query) WhereIn(column string, values []any, types ...ParameterType) *Query {
	return q.whereList(column, "IN", "1 = 0", values, types)
}

// WhereNotIn adds "column NOT IN (...)" with every value bound. An empty list
// renders a condition that matches everything.
func (q *Query) WhereNotIn(column string, values []any, types ...ParameterType) *Query {
	return q.whereList(column, "NOT IN", "1 = 1", values, types)
}

func (q *Query) whereList(column, op, empty string, values []any, types []ParameterType) *Query {
	if len(values) == 0 {
		return q.Where(empty)
	}
	names, err := q.BindArray(values, types...)
	if err != nil {
		q.setErr(err)
		return q
	}
	return q.Where(column + " " + op + " (" + strings.Join(names, ",") + ")")
}
