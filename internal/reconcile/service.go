// Package reconcile runs uploaded spreadsheet rows against the ledger in
// bounded, strictly ordered batches.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/opsconsole/ledgersync/internal/domain"
	"github.com/opsconsole/ledgersync/internal/observability"
	"github.com/opsconsole/ledgersync/internal/repository"
	"github.com/opsconsole/ledgersync/internal/spreadsheet"
)

// UploadKind selects which ledger table an upload reconciles against.
type UploadKind string

const (
	UploadInvoices UploadKind = "invoice"
	UploadExpenses UploadKind = "expense"
)

const (
	defaultBatchSize  = 100
	defaultBatchDelay = 50 * time.Millisecond
)

// Options tunes one reconciliation run.
type Options struct {
	// BatchSize bounds how many records are reconciled between progress
	// reports. Defaults to 100.
	BatchSize int

	// BatchDelay is the pause between batches, a simple backpressure
	// measure against the external store. Defaults to 50ms; negative
	// disables it.
	BatchDelay time.Duration

	// OnProgress receives the cumulative processed count after each batch.
	OnProgress func(processed, total int)

	// OnBatchComplete receives the 1-based batch index and its size after
	// each batch.
	OnBatchComplete func(batchIndex, batchSize int)
}

// Request describes one upload pass.
type Request struct {
	Kind     UploadKind
	FileName string

	// CompanyAccountID scopes the invoice natural key. It comes from the
	// caller's account context, never from the sheet.
	CompanyAccountID int64

	Options Options
}

// Outcome is the result of one run. Processed counts every visited record:
// inserted, updated, and skipped-but-unchanged alike.
type Outcome struct {
	Processed int `json:"processed"`
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

// Service reconciles normalized spreadsheet rows against the ledger.
type Service struct {
	invoices   repository.InvoiceRepository
	expenses   repository.ExpenseRepository
	logs       repository.UploadLogRepository
	normalizer *spreadsheet.Normalizer
}

// NewService creates a reconciliation service. The upload log repository is
// optional; pass nil to skip failure logging.
func NewService(
	invoices repository.InvoiceRepository,
	expenses repository.ExpenseRepository,
	logs repository.UploadLogRepository,
	normalizer *spreadsheet.Normalizer,
) *Service {
	if normalizer == nil {
		normalizer = spreadsheet.NewNormalizer(spreadsheet.Options{})
	}
	return &Service{
		invoices:   invoices,
		expenses:   expenses,
		logs:       logs,
		normalizer: normalizer,
	}
}

// Run normalizes and reconciles rows in file order, one batch at a time.
// The first lookup or write failure aborts the run; the partial outcome
// accompanies the error, and batches already written stay persisted. There
// is no transactional wrapping across batches.
func (s *Service) Run(ctx context.Context, rows []spreadsheet.RawRow, req Request) (Outcome, error) {
	var outcome Outcome

	batchSize := req.Options.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	delay := req.Options.BatchDelay
	if delay == 0 {
		delay = defaultBatchDelay
	}

	observability.UploadsTotal.Inc()

	total := len(rows)
	for start := 0; start < total; start += batchSize {
		end := start + batchSize
		if end > total {
			end = total
		}
		batch := rows[start:end]
		batchIndex := start/batchSize + 1

		var err error
		switch req.Kind {
		case UploadExpenses:
			err = s.runExpenseBatch(ctx, batch, &outcome)
		case UploadInvoices:
			err = s.runInvoiceBatch(ctx, batch, start, req, &outcome)
		default:
			err = fmt.Errorf("unknown upload kind %q", req.Kind)
		}
		if err != nil {
			observability.UploadFailures.Inc()
			s.logFailure(ctx, req, err)
			return outcome, fmt.Errorf("batch %d: %w", batchIndex, err)
		}

		if req.Options.OnProgress != nil {
			req.Options.OnProgress(outcome.Processed, total)
		}
		if req.Options.OnBatchComplete != nil {
			req.Options.OnBatchComplete(batchIndex, len(batch))
		}
		log.Printf("[RECONCILE] %s batch %d: %d rows (%d/%d)",
			req.Kind, batchIndex, len(batch), outcome.Processed, total)

		if err := sleepBetweenBatches(ctx, delay); err != nil {
			observability.UploadFailures.Inc()
			return outcome, err
		}
	}

	log.Printf("[RECONCILE] %s upload complete: %d processed (%d inserted, %d updated, %d skipped)",
		req.Kind, outcome.Processed, outcome.Inserted, outcome.Updated, outcome.Skipped)
	return outcome, nil
}

// Logs returns the recorded failures for one uploaded file, newest first.
// Without a log repository there is nothing to report.
func (s *Service) Logs(ctx context.Context, fileName string, limit, offset int) ([]domain.UploadLogEntry, error) {
	if s.logs == nil {
		return []domain.UploadLogEntry{}, nil
	}
	return s.logs.List(ctx, fileName, limit, offset)
}

// runExpenseBatch inserts the whole batch in one bulk write. Any failure is
// fatal for the upload.
func (s *Service) runExpenseBatch(ctx context.Context, batch []spreadsheet.RawRow, outcome *Outcome) error {
	records := make([]domain.ExpenseRecord, len(batch))
	for i, row := range batch {
		records[i] = s.normalizer.NormalizeExpense(row)
	}

	inserted, err := s.expenses.InsertBatch(ctx, records)
	if err != nil {
		return err
	}

	outcome.Inserted += inserted
	outcome.Processed += len(batch)
	observability.RowsInserted.Add(float64(inserted))
	return nil
}

// runInvoiceBatch reconciles records one at a time. A lookup returning no
// rows means the record is new; any other lookup or write error aborts the
// upload. The design deliberately does not isolate a bad record from the
// rest of the run.
func (s *Service) runInvoiceBatch(ctx context.Context, batch []spreadsheet.RawRow, offset int, req Request, outcome *Outcome) error {
	for i, row := range batch {
		record := s.normalizer.NormalizeInvoice(row, req.CompanyAccountID)

		var existing *domain.StoredInvoice
		stored, err := s.invoices.FindByNaturalKey(ctx, record.Key())
		switch {
		case err == nil:
			existing = &stored
		case errors.Is(err, repository.ErrNotFound):
			// New record.
		default:
			return s.rowError(ctx, req, offset+i, record.InvoiceNumber, err)
		}

		decision := domain.DecideInvoice(existing, record)
		switch decision.Action {
		case domain.ActionInsert:
			if _, err := s.invoices.Insert(ctx, record); err != nil {
				return s.rowError(ctx, req, offset+i, record.InvoiceNumber, err)
			}
			outcome.Inserted++
			observability.RowsInserted.Inc()
		case domain.ActionUpdate:
			if err := s.invoices.Update(ctx, decision.ExistingID, record); err != nil {
				return s.rowError(ctx, req, offset+i, record.InvoiceNumber, err)
			}
			outcome.Updated++
			observability.RowsUpdated.Inc()
		case domain.ActionSkip:
			outcome.Skipped++
			observability.RowsSkipped.Inc()
		}

		outcome.Processed++
	}
	return nil
}

func (s *Service) rowError(ctx context.Context, req Request, rowIndex int, invoiceNumber string, err error) error {
	wrapped := fmt.Errorf("invoice %s (row %d): %w", invoiceNumber, rowIndex+1, err)
	s.recordLog(ctx, req, rowIndex+1, wrapped)
	return wrapped
}

func (s *Service) logFailure(ctx context.Context, req Request, err error) {
	// Row-level failures were already recorded with their row number;
	// batch-level ones (expense bulk inserts) land here without one.
	if req.Kind == UploadExpenses {
		s.recordLog(ctx, req, 0, err)
	}
}

func (s *Service) recordLog(ctx context.Context, req Request, rowNumber int, err error) {
	if s.logs == nil || err == nil {
		return
	}
	entry := domain.UploadLogEntry{
		FileName:     req.FileName,
		UploadKind:   string(req.Kind),
		ErrorMessage: err.Error(),
	}
	if rowNumber > 0 {
		entry.RowNumber = &rowNumber
	}
	if logErr := s.logs.Record(ctx, entry); logErr != nil {
		log.Printf("[RECONCILE] failed to record upload log: %v", logErr)
	}
}

func sleepBetweenBatches(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
