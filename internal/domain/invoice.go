package domain

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the canonical invoice status enum persisted to the ledger.
type InvoiceStatus string

const (
	StatusPaid      InvoiceStatus = "paid"
	StatusPending   InvoiceStatus = "pending"
	StatusOverdue   InvoiceStatus = "overdue"
	StatusCancelled InvoiceStatus = "cancelled"
	StatusSent      InvoiceStatus = "sent"
)

// Valid reports whether s is one of the canonical enum values.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case StatusPaid, StatusPending, StatusOverdue, StatusCancelled, StatusSent:
		return true
	}
	return false
}

// statusAliases maps common spreadsheet spellings onto the canonical enum.
var statusAliases = map[string]InvoiceStatus{
	"draft":            StatusPending,
	"unpaid":           StatusPending,
	"open":             StatusPending,
	"due":              StatusPending,
	"outstanding":      StatusPending,
	"awaiting payment": StatusPending,
	"late":             StatusOverdue,
	"past due":         StatusOverdue,
	"pastdue":          StatusOverdue,
	"void":             StatusCancelled,
	"canceled":         StatusCancelled,
	"complete":         StatusPaid,
	"completed":        StatusPaid,
	"settled":          StatusPaid,
	"closed":           StatusPaid,
	"payment received": StatusPaid,
	"fully paid":       StatusPaid,
}

// NormalizeStatus maps an arbitrary status string onto the canonical enum.
// It is total: every input, including garbage, produces exactly one value.
// Unrecognized values fall back to pending.
func NormalizeStatus(raw string) InvoiceStatus {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if status := InvoiceStatus(normalized); status.Valid() {
		return status
	}
	if status, ok := statusAliases[normalized]; ok {
		return status
	}
	return StatusPending
}

// InvoiceRecord is the canonical shape every spreadsheet variant is
// normalized into before reconciliation. Field names follow the ledger's
// wire schema.
type InvoiceRecord struct {
	ClientName         string          `json:"client_name"`
	InvoiceNumber      string          `json:"invoice_number"`
	DateIssued         string          `json:"date_issued"`
	Status             InvoiceStatus   `json:"invoice_status"`
	DatePaid           *string         `json:"date_paid"`
	ItemName           string          `json:"item_name"`
	ItemDescription    string          `json:"item_description"`
	Rate               decimal.Decimal `json:"rate"`
	Quantity           int             `json:"quantity"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	LineSubtotal       decimal.Decimal `json:"line_subtotal"`
	Tax1Type           *string         `json:"tax_1_type"`
	Tax1Amount         decimal.Decimal `json:"tax_1_amount"`
	Tax2Type           *string         `json:"tax_2_type"`
	Tax2Amount         decimal.Decimal `json:"tax_2_amount"`
	LineTotal          decimal.Decimal `json:"line_total"`
	Currency           string          `json:"currency"`
	CompanyAccountID   int64           `json:"company_account_id"`
}

// InvoiceKey is the natural key used to detect "the same invoice" across
// uploads, as opposed to the system-generated id.
type InvoiceKey struct {
	InvoiceNumber    string
	ClientName       string
	CompanyAccountID int64
}

// Key returns the record's natural key.
func (r InvoiceRecord) Key() InvoiceKey {
	return InvoiceKey{
		InvoiceNumber:    r.InvoiceNumber,
		ClientName:       r.ClientName,
		CompanyAccountID: r.CompanyAccountID,
	}
}

// StoredInvoice is the slice of a persisted invoice the reconciliation
// decision needs: identity plus the two fields the transition policy reads.
type StoredInvoice struct {
	ID       uuid.UUID
	Status   InvoiceStatus
	DatePaid *string
}

// SyntheticKeyPrefix is reserved for invoice numbers generated for rows
// that arrive without one. Real uploaded invoice numbers never carry it,
// so synthetic keys cannot collide with them.
const SyntheticKeyPrefix = "SYN-"
