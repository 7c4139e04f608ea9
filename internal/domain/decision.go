package domain

import "github.com/google/uuid"

// DecisionAction enumerates the reconciliation outcomes for one record.
type DecisionAction string

const (
	ActionInsert DecisionAction = "insert"
	ActionUpdate DecisionAction = "update"
	ActionSkip   DecisionAction = "skip"
)

// Decision is the per-record reconciliation verdict. ExistingID is set for
// updates and skips; it is never persisted.
type Decision struct {
	Action     DecisionAction
	ExistingID uuid.UUID
}

// DecideInvoice computes the reconciliation decision for an incoming record
// against the stored ledger row, if any. A nil existing row means the record
// is new. An existing row is rewritten only when the status transition policy
// demands it: the status changed, the paid date changed, or the incoming
// record marks the invoice paid while the stored one is not.
func DecideInvoice(existing *StoredInvoice, incoming InvoiceRecord) Decision {
	if existing == nil {
		return Decision{Action: ActionInsert}
	}

	shouldUpdate := existing.Status != incoming.Status ||
		!datesEqual(existing.DatePaid, incoming.DatePaid) ||
		(incoming.Status == StatusPaid && existing.Status != StatusPaid)

	if shouldUpdate {
		return Decision{Action: ActionUpdate, ExistingID: existing.ID}
	}
	return Decision{Action: ActionSkip, ExistingID: existing.ID}
}

func datesEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
