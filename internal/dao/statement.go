package dao

import (
	"fmt"
	"strings"

	"github.com/mlazarev/redirector/internal/entity"
)

// Filter is an equality predicate on a single column. Filters passed
// to a query are ANDed together. Column names come from the entity
// package's enumerated constants, not from caller-invented strings.
type Filter struct {
	Column string
	Value  any
}

// Field is a column assignment used by Create and Update.
type Field struct {
	Column string
	Value  any
}

// Eq builds an equality filter.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Value: value}
}

// Set builds a field assignment.
func Set(column string, value any) Field {
	return Field{Column: column, Value: value}
}

func buildSelect(table string, columns []string, filters []Filter, limit int) (string, []any) {
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(" FROM ")
	b.WriteString(table)

	args := writeWhere(&b, filters)

	if limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", limit)
	}

	return b.String(), args
}

// buildOneToMany selects related rows for a batch of parents in a
// single secondary query. The first selected column is the parent id,
// per the Attach contract.
func buildOneToMany(rel entity.Relation, parentIDs []int64) (string, []any) {
	var b strings.Builder

	b.WriteString("SELECT ")
	b.WriteString(rel.ForeignKey)

	for _, col := range rel.Columns {
		b.WriteString(", ")
		b.WriteString(col)
	}

	b.WriteString(" FROM ")
	b.WriteString(rel.Table)
	b.WriteString(" WHERE ")
	b.WriteString(rel.ForeignKey)
	b.WriteString(" = ANY($1)")

	return b.String(), []any{parentIDs}
}

// buildManyToMany selects related rows joined through the link table.
// The first selected column is the parent id, per the Attach contract.
func buildManyToMany(rel entity.Relation, parentIDs []int64) (string, []any) {
	var b strings.Builder

	b.WriteString("SELECT j.")
	b.WriteString(rel.JoinParentKey)

	for _, col := range rel.Columns {
		b.WriteString(", r.")
		b.WriteString(col)
	}

	b.WriteString(" FROM ")
	b.WriteString(rel.JoinTable)
	b.WriteString(" j JOIN ")
	b.WriteString(rel.Table)
	b.WriteString(" r ON r.")
	b.WriteString(rel.RelatedKey)
	b.WriteString(" = j.")
	b.WriteString(rel.JoinRelatedKey)
	b.WriteString(" WHERE j.")
	b.WriteString(rel.JoinParentKey)
	b.WriteString(" = ANY($1)")

	return b.String(), []any{parentIDs}
}

func buildInsert(table string, fields []Field, returning []string) (string, []any) {
	var b strings.Builder

	columns := make([]string, len(fields))
	placeholders := make([]string, len(fields))
	args := make([]any, len(fields))

	for i, f := range fields {
		columns[i] = f.Column
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = f.Value
	}

	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES (")
	b.WriteString(strings.Join(placeholders, ", "))
	b.WriteString(") RETURNING ")
	b.WriteString(strings.Join(returning, ", "))

	return b.String(), args
}

func buildUpdate(table, idColumn string, id int64, fields []Field, returning []string) (string, []any) {
	var b strings.Builder

	args := make([]any, 0, len(fields)+1)

	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")

	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}

		fmt.Fprintf(&b, "%s = $%d", f.Column, i+1)
		args = append(args, f.Value)
	}

	fmt.Fprintf(&b, " WHERE %s = $%d RETURNING %s",
		idColumn, len(fields)+1, strings.Join(returning, ", "))
	args = append(args, id)

	return b.String(), args
}

func buildDelete(table, idColumn string, id int64) (string, []any) {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, idColumn), []any{id}
}

func writeWhere(b *strings.Builder, filters []Filter) []any {
	if len(filters) == 0 {
		return nil
	}

	args := make([]any, 0, len(filters))

	b.WriteString(" WHERE ")

	for i, f := range filters {
		if i > 0 {
			b.WriteString(" AND ")
		}

		fmt.Fprintf(b, "%s = $%d", f.Column, i+1)
		args = append(args, f.Value)
	}

	return args
}
