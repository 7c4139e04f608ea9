package repository

import (
	"context"
	"errors"

	"github.com/opsconsole/ledgersync/internal/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned by lookups that match no stored record. During
// reconciliation it is an expected outcome, not a failure.
var ErrNotFound = errors.New("record not found")

// InvoiceRepository defines the ledger operations the reconciler needs for
// invoice uploads: natural-key lookup plus single-record writes.
type InvoiceRepository interface {
	FindByNaturalKey(ctx context.Context, key domain.InvoiceKey) (domain.StoredInvoice, error)
	Insert(ctx context.Context, record domain.InvoiceRecord) (uuid.UUID, error)
	Update(ctx context.Context, id uuid.UUID, record domain.InvoiceRecord) error
}

// ExpenseRepository persists expense records. Expenses are append-only and
// written a whole batch at a time.
type ExpenseRepository interface {
	InsertBatch(ctx context.Context, records []domain.ExpenseRecord) (int, error)
}

// UploadLogRepository stores upload failures for observability.
type UploadLogRepository interface {
	Record(ctx context.Context, entry domain.UploadLogEntry) error
	List(ctx context.Context, fileName string, limit int, offset int) ([]domain.UploadLogEntry, error)
}
