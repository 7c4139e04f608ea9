package domain

import "github.com/shopspring/decimal"

// ExpenseRecord is the canonical append-only expense shape. Expenses have
// no natural key; every normalized row becomes a new stored record.
type ExpenseRecord struct {
	Company  string          `json:"company"`
	Date     string          `json:"date"`
	Type     string          `json:"type"`
	Payee    string          `json:"payee"`
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}
