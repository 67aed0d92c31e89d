package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// sqlWriter accumulates query text and positional args. Placeholders are
// numbered in append order, so every fragment goes through the same writer.
type sqlWriter struct {
	sql  strings.Builder
	args []any
}

func (w *sqlWriter) text(s string) {
	w.sql.WriteString(s)
}

func (w *sqlWriter) arg(value any) {
	w.args = append(w.args, value)
	w.sql.WriteString("$")
	w.sql.WriteString(strconv.Itoa(len(w.args)))
}

// expr appends raw SQL, rewriting each ? into the next $N placeholder.
// Extra ? marks beyond the supplied args pass through untouched.
func (w *sqlWriter) expr(sql string, args []any) {
	if len(args) == 0 {
		w.text(sql)
		return
	}

	next := 0
	for i := 0; i < len(sql); i++ {
		if sql[i] == '?' && next < len(args) {
			w.arg(args[next])
			next++
			continue
		}
		w.sql.WriteByte(sql[i])
	}
}

// Condition is one WHERE fragment. Conditions combine with AND.
type Condition func(w *sqlWriter)

func Eq(column string, value any) Condition {
	return func(w *sqlWriter) {
		w.text(column)
		w.text(" = ")
		w.arg(value)
	}
}

func In(column string, values []any) Condition {
	return func(w *sqlWriter) {
		if len(values) == 0 {
			w.text("1=0")
			return
		}
		w.text(column)
		w.text(" IN (")
		for i, v := range values {
			if i > 0 {
				w.text(", ")
			}
			w.arg(v)
		}
		w.text(")")
	}
}

func IsNull(column string) Condition {
	return func(w *sqlWriter) {
		w.text(column)
		w.text(" IS NULL")
	}
}

func Expr(sql string, args ...any) Condition {
	return func(w *sqlWriter) {
		w.expr(sql, args)
	}
}

func EqLiteral(column, value string) Condition {
	return func(w *sqlWriter) {
		w.text(column)
		w.text(" = '")
		w.text(strings.ReplaceAll(value, "'", "''"))
		w.text("'")
	}
}

func writeWhere(w *sqlWriter, conditions []Condition) {
	if len(conditions) == 0 {
		return
	}
	w.text(" WHERE ")
	for i, cond := range conditions {
		if i > 0 {
			w.text(" AND ")
		}
		cond(w)
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	groupBy []string
	orderBy []string
	limit   int
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) GroupBy(parts ...string) *SelectBuilder {
	b.groupBy = append(b.groupBy, parts...)
	return b
}

func (b *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	b.orderBy = append(b.orderBy, parts...)
	return b
}

func (b *SelectBuilder) Limit(limit int) *SelectBuilder {
	b.limit = limit
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var w sqlWriter
	w.text("SELECT ")
	w.text(strings.Join(b.columns, ", "))
	w.text(" FROM ")
	w.text(b.table)
	writeWhere(&w, b.where)
	if len(b.groupBy) > 0 {
		w.text(" GROUP BY ")
		w.text(strings.Join(b.groupBy, ", "))
	}
	if len(b.orderBy) > 0 {
		w.text(" ORDER BY ")
		w.text(strings.Join(b.orderBy, ", "))
	}
	if b.limit > 0 {
		w.text(" LIMIT ")
		w.text(strconv.Itoa(b.limit))
	}

	return w.sql.String(), w.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

// Suffix appends raw SQL after the VALUES list, for ON CONFLICT and
// RETURNING clauses.
func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var w sqlWriter
	w.text("INSERT INTO ")
	w.text(b.table)
	w.text(" (")
	w.text(strings.Join(b.columns, ", "))
	w.text(") VALUES ")
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			w.text(", ")
		}
		w.text("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				w.text(", ")
			}
			w.arg(value)
		}
		w.text(")")
	}
	if b.suffix != "" {
		w.text(" ")
		w.text(b.suffix)
	}

	return w.sql.String(), w.args, nil
}

type setClause struct {
	column string
	value  any
	sql    string
	args   []any
	isExpr bool
}

type UpdateBuilder struct {
	table string
	sets  []setClause
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (b *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, value: value})
	return b
}

// SetExpr assigns a raw SQL expression, with ? args rewritten to $N.
func (b *UpdateBuilder) SetExpr(column, sql string, args ...any) *UpdateBuilder {
	b.sets = append(b.sets, setClause{column: column, sql: sql, args: args, isExpr: true})
	return b
}

func (b *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(b.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var w sqlWriter
	w.text("UPDATE ")
	w.text(b.table)
	w.text(" SET ")
	for i, set := range b.sets {
		if i > 0 {
			w.text(", ")
		}
		w.text(set.column)
		w.text(" = ")
		if set.isExpr {
			w.expr(set.sql, set.args)
			continue
		}
		w.arg(set.value)
	}
	writeWhere(&w, b.where)

	return w.sql.String(), w.args, nil
}
