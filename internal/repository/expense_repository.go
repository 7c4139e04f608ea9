package repository

import (
	"context"
	"fmt"

	"github.com/opsconsole/ledgersync/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type expenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository wires an expense repository backed by pgxpool.
func NewExpenseRepository(pool *pgxpool.Pool) ExpenseRepository {
	return &expenseRepository{pool: pool}
}

// InsertBatch writes a whole batch of expense records in one COPY. Expenses
// carry no natural key, so every record becomes a new row.
func (r *expenseRepository) InsertBatch(ctx context.Context, records []domain.ExpenseRecord) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("expense repository not initialized")
	}
	if len(records) == 0 {
		return 0, nil
	}

	rows := make([][]any, len(records))
	for i, record := range records {
		rows[i] = []any{
			record.Company,
			record.Date,
			record.Type,
			record.Payee,
			record.Category,
			record.Total,
		}
	}

	copied, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"finance_expenses"},
		[]string{"company", "expense_date", "expense_type", "payee", "category", "total"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert expense batch: %w", err)
	}
	return int(copied), nil
}
