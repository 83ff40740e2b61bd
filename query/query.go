// Package query builds SQL statements clause by clause and renders them for a
// target Dialect.
package query

import (
	"fmt"
	"strings"
)

// Type is the statement kind a Query renders.
type Type string

// Statement kinds.
const (
	TypeNone     Type = ""
	TypeSelect   Type = "select"
	TypeInsert   Type = "insert"
	TypeUpdate   Type = "update"
	TypeDelete   Type = "delete"
	TypeQuerySet Type = "querySet"
)

// Query accumulates clauses until String renders them. Builder methods
// return the receiver for chaining; the first misuse is kept in Err.
type Query struct {
	dialect Dialect
	typ     Type
	raw     string

	sel     *element
	from    *element
	joins   []*element
	where   *element
	group   *element
	having  *element
	order   *element
	update  *element
	set     *element
	insert  *element
	columns *element
	values  *element

	merge    []mergeElement
	querySet *Query
	derived  []*Query
	alias    string

	limit  int
	offset int

	bounded    []Binding
	bindings   map[string]int
	arrayIndex int

	err error
}

type mergeElement struct {
	kind  string
	query *Query
}

// New returns an empty query rendering for d.
func New(d Dialect) *Query {
	if d == nil {
		d = SQLite()
	}
	return &Query{dialect: d}
}

// Dialect returns the dialect the query renders for.
func (q *Query) Dialect() Dialect { return q.dialect }

// Type returns the statement kind, TypeNone until one is chosen.
func (q *Query) Type() Type { return q.typ }

// Err returns the first builder error, if any.
func (q *Query) Err() error { return q.err }

func (q *Query) setErr(err error) {
	if q.err == nil {
		q.err = err
	}
}

func (q *Query) setType(t Type) bool {
	if q.typ != TypeNone && q.typ != t {
		q.setErr(fmt.Errorf("%w: cannot change %s to %s", ErrQueryTypeAlreadyDefined, q.typ, t))
		return false
	}
	q.typ = t
	return true
}

// SetSQL replaces the builder with raw SQL text. Limit and offset still
// apply; bindings are kept.
func (q *Query) SetSQL(sql string) *Query {
	q.raw = sql
	return q
}

// Select adds columns to the select list.
func (q *Query) Select(columns ...string) *Query {
	if !q.setType(TypeSelect) {
		return q
	}
	q.sel = appendTo(q.sel, "SELECT", ", ", columns)
	return q
}

// From adds tables to the FROM clause.
func (q *Query) From(tables ...string) *Query {
	q.from = appendTo(q.from, "FROM", ", ", tables)
	return q
}

// FromQuery uses a copy of sub as a derived table named alias. Its bindings
// are sent with q; later changes to sub are not seen.
func (q *Query) FromQuery(sub *Query, alias string) *Query {
	derived := sub.Clone()
	derived.alias = alias
	q.from = appendTo(q.from, "FROM", ", ", []string{derived.String()})
	q.derived = append(q.derived, derived)
	return q
}

// Join adds a join of the given kind, such as "INNER" or "LEFT".
func (q *Query) Join(kind, table, condition string) *Query {
	name := "JOIN"
	if kind != "" {
		name = strings.ToUpper(kind) + " JOIN"
	}
	if condition != "" {
		table += " ON " + condition
	}
	q.joins = append(q.joins, newElement(name, []string{table}, ""))
	return q
}

func (q *Query) InnerJoin(table, condition string) *Query { return q.Join("INNER", table, condition) }
func (q *Query) LeftJoin(table, condition string) *Query  { return q.Join("LEFT", table, condition) }
func (q *Query) RightJoin(table, condition string) *Query { return q.Join("RIGHT", table, condition) }
func (q *Query) OuterJoin(table, condition string) *Query { return q.Join("OUTER", table, condition) }

// Where adds conditions joined with AND.
func (q *Query) Where(conditions ...string) *Query {
	q.where = appendTo(q.where, "WHERE", " AND ", conditions)
	return q
}

// ExtendWhere wraps the current WHERE clause in parentheses and joins it with
// the new conditions, themselves joined by innerGlue, using outerGlue.
func (q *Query) ExtendWhere(outerGlue string, conditions []string, innerGlue string) *Query {
	outer := " " + strings.ToUpper(outerGlue) + " "
	inner := newElement("()", conditions, " "+strings.ToUpper(innerGlue)+" ")

	if q.where == nil {
		q.where = newElement("WHERE", []string{inner.String()}, outer)
		return q
	}
	prev := newElement("()", q.where.items, q.where.glue)
	q.where = newElement("WHERE", []string{prev.String(), inner.String()}, outer)
	return q
}

// OrWhere extends the WHERE clause with OR and groups conditions with AND.
func (q *Query) OrWhere(conditions ...string) *Query {
	return q.ExtendWhere("OR", conditions, "AND")
}

// AndWhere extends the WHERE clause with AND and groups conditions with OR.
func (q *Query) AndWhere(conditions ...string) *Query {
	return q.ExtendWhere("AND", conditions, "OR")
}

func (q *Query) Group(columns ...string) *Query {
	q.group = appendTo(q.group, "GROUP BY", ", ", columns)
	return q
}

func (q *Query) Having(conditions ...string) *Query {
	q.having = appendTo(q.having, "HAVING", " AND ", conditions)
	return q
}

func (q *Query) Order(columns ...string) *Query {
	q.order = appendTo(q.order, "ORDER BY", ", ", columns)
	return q
}

// Insert starts an INSERT INTO table statement.
func (q *Query) Insert(table string) *Query {
	if !q.setType(TypeInsert) {
		return q
	}
	q.insert = newElement("INSERT INTO", []string{table}, "")
	return q
}

// Columns sets the column list of an INSERT.
func (q *Query) Columns(columns ...string) *Query {
	q.columns = appendTo(q.columns, "()", ", ", columns)
	return q
}

// Values adds rows to an INSERT. Each row is a comma separated value list
// without the surrounding parentheses.
func (q *Query) Values(rows ...string) *Query {
	q.values = appendTo(q.values, "()", "), (", rows)
	return q
}

// Update starts an UPDATE table statement.
func (q *Query) Update(table string) *Query {
	if !q.setType(TypeUpdate) {
		return q
	}
	q.update = newElement("UPDATE", []string{table}, "")
	return q
}

// Set adds assignments to an UPDATE or an INSERT ... SET.
func (q *Query) Set(assignments ...string) *Query {
	q.set = appendTo(q.set, "SET", ", ", assignments)
	return q
}

// Delete starts a DELETE statement, optionally naming the table.
func (q *Query) Delete(table ...string) *Query {
	if !q.setType(TypeDelete) {
		return q
	}
	if len(table) > 0 {
		q.From(table...)
	}
	return q
}

// SetLimit sets the row limit and offset; zero disables either.
func (q *Query) SetLimit(limit, offset int) *Query {
	q.limit = max(0, limit)
	q.offset = max(0, offset)
	return q
}

func (q *Query) Limit() int  { return q.limit }
func (q *Query) Offset() int { return q.offset }

// Alias names the query when it renders as a subquery.
func (q *Query) Alias(alias string) *Query {
	q.alias = alias
	return q
}

// Union appends other with UNION.
func (q *Query) Union(other *Query) *Query { return q.addMerge("UNION", other) }

// UnionAll appends other with UNION ALL.
func (q *Query) UnionAll(other *Query) *Query { return q.addMerge("UNION ALL", other) }

func (q *Query) addMerge(kind string, other *Query) *Query {
	if q.typ == TypeNone {
		q.typ = TypeSelect
	}
	q.merge = append(q.merge, mergeElement{kind: kind, query: other})
	return q
}

// QuerySet makes q a wrapper rendering sub followed by q's own unions, order
// and limit.
func (q *Query) QuerySet(sub *Query) *Query {
	if !q.setType(TypeQuerySet) {
		return q
	}
	q.querySet = sub
	return q
}

// ToQuerySet returns a new query set built around a copy of q.
func (q *Query) ToQuerySet() *Query {
	return New(q.dialect).QuerySet(q.Clone())
}

// Clear resets the named clauses, or the whole query when none are given.
// Clearing "select", "insert", "update" or "delete" also clears the type.
func (q *Query) Clear(clauses ...string) *Query {
	if len(clauses) == 0 {
		*q = Query{dialect: q.dialect}
		return q
	}

	for _, clause := range clauses {
		switch strings.ToLower(clause) {
		case "select":
			q.sel = nil
			q.resetType(TypeSelect)
		case "from":
			q.from, q.derived = nil, nil
		case "join":
			q.joins = nil
		case "where":
			q.where = nil
		case "group":
			q.group = nil
		case "having":
			q.having = nil
		case "order":
			q.order = nil
		case "insert":
			q.insert, q.columns, q.values = nil, nil, nil
			q.resetType(TypeInsert)
		case "update":
			q.update = nil
			q.resetType(TypeUpdate)
		case "delete":
			q.resetType(TypeDelete)
		case "set":
			q.set = nil
		case "columns":
			q.columns = nil
		case "values":
			q.values = nil
		case "union":
			q.merge = nil
		case "queryset":
			q.querySet = nil
			q.resetType(TypeQuerySet)
		case "limit":
			q.limit, q.offset = 0, 0
		case "bounded":
			q.bounded, q.bindings = nil, nil
		case "sql":
			q.raw = ""
		}
	}
	return q
}

func (q *Query) resetType(t Type) {
	if q.typ == t {
		q.typ = TypeNone
	}
}

// Clone returns a deep copy of the clauses and bindings. Bound references
// are shared.
func (q *Query) Clone() *Query {
	c := *q
	c.sel = q.sel.clone()
	c.from = q.from.clone()
	c.where = q.where.clone()
	c.group = q.group.clone()
	c.having = q.having.clone()
	c.order = q.order.clone()
	c.update = q.update.clone()
	c.set = q.set.clone()
	c.insert = q.insert.clone()
	c.columns = q.columns.clone()
	c.values = q.values.clone()

	c.joins = make([]*element, len(q.joins))
	for i, j := range q.joins {
		c.joins[i] = j.clone()
	}
	c.merge = append([]mergeElement(nil), q.merge...)
	c.derived = make([]*Query, len(q.derived))
	for i, sub := range q.derived {
		c.derived[i] = sub.Clone()
	}
	if q.querySet != nil {
		c.querySet = q.querySet.Clone()
	}

	c.bounded = append([]Binding(nil), q.bounded...)
	c.bindings = make(map[string]int, len(q.bindings))
	for k, v := range q.bindings {
		c.bindings[k] = v
	}
	return &c
}

type element struct {
	name  string
	items []string
	glue  string
}

func newElement(name string, items []string, glue string) *element {
	return &element{name: name, items: append([]string(nil), items...), glue: glue}
}

func appendTo(e *element, name, glue string, items []string) *element {
	if e == nil {
		return newElement(name, items, glue)
	}
	e.items = append(e.items, items...)
	return e
}

func (e *element) clone() *element {
	if e == nil {
		return nil
	}
	return newElement(e.name, e.items, e.glue)
}

func (e *element) String() string {
	body := strings.Join(e.items, e.glue)
	switch e.name {
	case "":
		return body
	case "()":
		return "(" + body + ")"
	}
	return e.name + " " + body
}
