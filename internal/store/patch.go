package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// updateBuilder collects the columns of a partial update in the order they
// are added, so the generated statement is stable for a given patch type.
type updateBuilder struct {
	table   string
	columns []string
	args    []any
}

func newUpdate(table string) *updateBuilder {
	return &updateBuilder{table: table}
}

func (b *updateBuilder) set(column string, value any) {
	b.columns = append(b.columns, column)
	b.args = append(b.args, value)
}

func setIf[T any](b *updateBuilder, column string, value *T) {
	if value != nil {
		b.set(column, *value)
	}
}

// build renders `UPDATE <table> SET a = $1, b = $2 WHERE id = $3`.
func (b *updateBuilder) build(id int) (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, ErrEmptyUpdate
	}
	assignments := make([]string, len(b.columns))
	for i, column := range b.columns {
		assignments[i] = fmt.Sprintf("%s = $%d", column, i+1)
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		b.table, strings.Join(assignments, ", "), len(b.columns)+1)
	args := append(append([]any{}, b.args...), id)
	return query, args, nil
}

func (b *updateBuilder) exec(ctx context.Context, db *sql.DB, id int) (int64, error) {
	query, args, err := b.build(id)
	if err != nil {
		return 0, err
	}
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translateError(err)
	}
	return result.RowsAffected()
}

func deleteByID(ctx context.Context, db *sql.DB, table string, id int) (int64, error) {
	result, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return 0, translateError(err)
	}
	return result.RowsAffected()
}
