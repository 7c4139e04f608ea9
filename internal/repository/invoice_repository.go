package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/opsconsole/ledgersync/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type invoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository wires an invoice repository backed by pgxpool.
func NewInvoiceRepository(pool *pgxpool.Pool) InvoiceRepository {
	return &invoiceRepository{pool: pool}
}

func (r *invoiceRepository) FindByNaturalKey(ctx context.Context, key domain.InvoiceKey) (domain.StoredInvoice, error) {
	if r.pool == nil {
		return domain.StoredInvoice{}, fmt.Errorf("invoice repository not initialized")
	}

	var (
		stored   domain.StoredInvoice
		status   string
		datePaid pgtype.Date
	)
	err := r.pool.QueryRow(
		ctx,
		`SELECT id, invoice_status, date_paid
		 FROM finance_invoices
		 WHERE invoice_number = $1
		   AND client_name = $2
		   AND company_account_id = $3`,
		key.InvoiceNumber,
		key.ClientName,
		key.CompanyAccountID,
	).Scan(&stored.ID, &status, &datePaid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.StoredInvoice{}, ErrNotFound
		}
		return domain.StoredInvoice{}, fmt.Errorf("failed to look up invoice %s: %w", key.InvoiceNumber, err)
	}

	stored.Status = domain.InvoiceStatus(status)
	if datePaid.Valid {
		value := datePaid.Time.Format("2006-01-02")
		stored.DatePaid = &value
	}
	return stored, nil
}

func (r *invoiceRepository) Insert(ctx context.Context, record domain.InvoiceRecord) (uuid.UUID, error) {
	if r.pool == nil {
		return uuid.Nil, fmt.Errorf("invoice repository not initialized")
	}

	var id uuid.UUID
	err := r.pool.QueryRow(
		ctx,
		`INSERT INTO finance_invoices (
			client_name, invoice_number, date_issued, invoice_status, date_paid,
			item_name, item_description, rate, quantity, discount_percentage,
			line_subtotal, tax_1_type, tax_1_amount, tax_2_type, tax_2_amount,
			line_total, currency, company_account_id
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		 RETURNING id`,
		record.ClientName,
		record.InvoiceNumber,
		record.DateIssued,
		string(record.Status),
		record.DatePaid,
		record.ItemName,
		record.ItemDescription,
		record.Rate,
		record.Quantity,
		record.DiscountPercentage,
		record.LineSubtotal,
		record.Tax1Type,
		record.Tax1Amount,
		record.Tax2Type,
		record.Tax2Amount,
		record.LineTotal,
		record.Currency,
		record.CompanyAccountID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to insert invoice %s: %w", record.InvoiceNumber, err)
	}
	return id, nil
}

func (r *invoiceRepository) Update(ctx context.Context, id uuid.UUID, record domain.InvoiceRecord) error {
	if r.pool == nil {
		return fmt.Errorf("invoice repository not initialized")
	}

	_, err := r.pool.Exec(
		ctx,
		`UPDATE finance_invoices SET
			client_name = $1,
			invoice_number = $2,
			date_issued = $3,
			invoice_status = $4,
			date_paid = $5,
			item_name = $6,
			item_description = $7,
			rate = $8,
			quantity = $9,
			discount_percentage = $10,
			line_subtotal = $11,
			tax_1_type = $12,
			tax_1_amount = $13,
			tax_2_type = $14,
			tax_2_amount = $15,
			line_total = $16,
			currency = $17,
			company_account_id = $18,
			updated_at = now()
		 WHERE id = $19`,
		record.ClientName,
		record.InvoiceNumber,
		record.DateIssued,
		string(record.Status),
		record.DatePaid,
		record.ItemName,
		record.ItemDescription,
		record.Rate,
		record.Quantity,
		record.DiscountPercentage,
		record.LineSubtotal,
		record.Tax1Type,
		record.Tax1Amount,
		record.Tax2Type,
		record.Tax2Amount,
		record.LineTotal,
		record.Currency,
		record.CompanyAccountID,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", record.InvoiceNumber, err)
	}
	return nil
}
