package postgres

import (
	"fmt"
	"strings"
)

// updateBuilder accumulates "column = $n" assignments for partial updates. $1 is
// reserved for the row id.
type updateBuilder struct {
	sets []string
	args []any
}

func newUpdateBuilder(id int) *updateBuilder {
	return &updateBuilder{args: []any{id}}
}

func (b *updateBuilder) set(column string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) empty() bool {
	return len(b.sets) == 0
}

func (b *updateBuilder) query(table, returning string) string {
	return fmt.Sprintf(
		"UPDATE %s SET %s, updated_at = NOW() WHERE id = $1 RETURNING %s",
		table, strings.Join(b.sets, ", "), returning,
	)
}

func setIfPresent[T any](b *updateBuilder, column string, value *T) {
	if value != nil {
		b.set(column, *value)
	}
}
