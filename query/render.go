package query

import "strings"

// String renders the query. It does not modify the builder, so repeated
// calls return the same text.
func (q *Query) String() string {
	sql := q.render()
	if q.alias != "" && sql != "" {
		sql = "(" + sql + ") AS " + q.dialect.QuoteName(q.alias, "")
	}
	return sql
}

func (q *Query) render() string {
	if q.raw != "" {
		return q.dialect.Limit(q.raw, q.limit, q.offset)
	}

	var parts []string
	add := func(elements ...*element) {
		for _, e := range elements {
			if e != nil {
				parts = append(parts, e.String())
			}
		}
	}

	switch q.typ {
	case TypeSelect:
		add(q.sel, q.from)
		add(q.joins...)
		add(q.where, q.group, q.having)
		parts = append(parts, q.renderMerge()...)
		add(q.order)
		return q.dialect.Limit(strings.Join(parts, "\n"), q.limit, q.offset)

	case TypeQuerySet:
		if q.querySet != nil {
			parts = append(parts, operand(q.querySet))
		}
		parts = append(parts, q.renderMerge()...)
		add(q.order)
		return q.dialect.Limit(strings.Join(parts, "\n"), q.limit, q.offset)

	case TypeDelete:
		parts = append(parts, "DELETE")
		add(q.from)
		add(q.joins...)
		add(q.where)

	case TypeUpdate:
		add(q.update)
		add(q.joins...)
		add(q.set, q.where)

	case TypeInsert:
		add(q.insert)
		switch {
		case q.set != nil:
			add(q.set)
		case q.values != nil:
			add(q.columns)
			parts = append(parts, "VALUES "+q.values.String())
		}
	}

	return strings.Join(parts, "\n")
}

func (q *Query) renderMerge() []string {
	out := make([]string, 0, len(q.merge))
	for _, m := range q.merge {
		out = append(out, m.kind+" "+operand(m.query))
	}
	return out
}

// operand renders a query taking part in a compound statement. Operands with
// their own ordering or limit are parenthesised.
func operand(q *Query) string {
	sql := q.render()
	if q.order != nil || q.limit > 0 || q.offset > 0 {
		return "(" + sql + ")"
	}
	return sql
}
