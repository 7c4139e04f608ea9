package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opsconsole/ledgersync/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Column aliases per canonical field, probed in order: the human-readable
// export label first, the snake_case wire name second.
var (
	colClientName      = []string{"Client Name", "client_name"}
	colInvoiceNumber   = []string{"Invoice #", "invoice_number"}
	colDateIssued      = []string{"Date", "date_issued"}
	colInvoiceStatus   = []string{"Invoice Status", "invoice_status"}
	colDatePaid        = []string{"Date Paid", "date_paid"}
	colItemName        = []string{"Item Name", "item_name"}
	colItemDescription = []string{"Item Description", "item_description"}
	colRate            = []string{"Rate", "rate"}
	colQuantity        = []string{"Quantity", "quantity"}
	colDiscount        = []string{"Discount Percentage", "discount_percentage"}
	colLineSubtotal    = []string{"Line Subtotal", "line_subtotal"}
	colTax1Type        = []string{"Tax 1 Type", "tax_1_type"}
	colTax1Amount      = []string{"Tax 1 Amount", "tax_1_amount"}
	colTax2Type        = []string{"Tax 2 Type", "tax_2_type"}
	colTax2Amount      = []string{"Tax 2 Amount", "tax_2_amount"}
	colLineTotal       = []string{"Line Total", "line_total"}
	colCurrency        = []string{"Currency", "currency"}

	colCompany  = []string{"Company", "company"}
	colExpDate  = []string{"Date", "date"}
	colExpType  = []string{"Type", "type"}
	colPayee    = []string{"Payee", "payee"}
	colCategory = []string{"Category", "category"}
	colTotal    = []string{"Total", "total"}
)

// Storage column limits on the ledger side: discount is DECIMAL(5,2),
// tax amounts are DECIMAL(15,2).
var (
	maxDiscountPercentage = decimal.RequireFromString("999.99")
	maxTaxAmount          = decimal.RequireFromString("999999999999.99")
)

// Options tunes normalization defaults.
type Options struct {
	// NumericFallback replaces absent rate, line subtotal, and line total
	// values. The ledger's NOT NULL columns reject zero, hence a small
	// positive sentinel instead; it is a storage workaround, not a
	// business rule, so it stays configurable. Defaults to 0.01.
	NumericFallback decimal.Decimal

	// DefaultCurrency fills rows without a currency column. Defaults to USD.
	DefaultCurrency string
}

// Normalizer maps raw spreadsheet rows into canonical ledger records.
// It never fails: malformed input degrades to documented defaults.
type Normalizer struct {
	fallback decimal.Decimal
	currency string
	now      func() time.Time
}

// NewNormalizer builds a Normalizer from the given options.
func NewNormalizer(opts Options) *Normalizer {
	fallback := opts.NumericFallback
	if fallback.IsZero() {
		fallback = decimal.RequireFromString("0.01")
	}
	currency := strings.TrimSpace(opts.DefaultCurrency)
	if currency == "" {
		currency = "USD"
	}
	return &Normalizer{
		fallback: fallback,
		currency: currency,
		now:      time.Now,
	}
}

// NormalizeInvoice maps a raw row onto the canonical invoice record. The
// company account id comes from the caller's context, not the sheet; it
// completes the natural key.
func (n *Normalizer) NormalizeInvoice(row RawRow, companyAccountID int64) domain.InvoiceRecord {
	invoiceNumber := row.Lookup(colInvoiceNumber...)
	if invoiceNumber == "" {
		invoiceNumber = n.syntheticInvoiceNumber()
	}

	dateIssued, ok := ConvertCellDate(row.Lookup(colDateIssued...))
	if !ok {
		dateIssued = n.today()
	}

	var datePaid *string
	if converted, ok := ConvertCellDate(row.Lookup(colDatePaid...)); ok {
		datePaid = &converted
	}

	return domain.InvoiceRecord{
		ClientName:         textOr(row.Lookup(colClientName...), "Unknown Client"),
		InvoiceNumber:      invoiceNumber,
		DateIssued:         dateIssued,
		Status:             domain.NormalizeStatus(row.Lookup(colInvoiceStatus...)),
		DatePaid:           datePaid,
		ItemName:           textOr(row.Lookup(colItemName...), "Service"),
		ItemDescription:    textOr(row.Lookup(colItemDescription...), "Service provided"),
		Rate:               n.moneyOrFallback(row.Lookup(colRate...)),
		Quantity:           quantityOrOne(row.Lookup(colQuantity...)),
		DiscountPercentage: clampDecimal(parsePercent(row.Lookup(colDiscount...)), decimal.Zero, maxDiscountPercentage),
		LineSubtotal:       n.moneyOrFallback(row.Lookup(colLineSubtotal...)),
		Tax1Type:           optionalText(row.Lookup(colTax1Type...)),
		Tax1Amount:         clampDecimal(parseMoney(row.Lookup(colTax1Amount...)), decimal.Zero, maxTaxAmount),
		Tax2Type:           optionalText(row.Lookup(colTax2Type...)),
		Tax2Amount:         clampDecimal(parseMoney(row.Lookup(colTax2Amount...)), decimal.Zero, maxTaxAmount),
		LineTotal:          n.moneyOrFallback(row.Lookup(colLineTotal...)),
		Currency:           textOr(row.Lookup(colCurrency...), n.currency),
		CompanyAccountID:   companyAccountID,
	}
}

// NormalizeExpense maps a raw row onto the canonical expense record.
func (n *Normalizer) NormalizeExpense(row RawRow) domain.ExpenseRecord {
	date, ok := ConvertCellDate(row.Lookup(colExpDate...))
	if !ok {
		date = n.today()
	}

	total := parseMoney(row.Lookup(colTotal...))
	if total.IsNegative() {
		total = decimal.Zero
	}

	return domain.ExpenseRecord{
		Company:  textOr(row.Lookup(colCompany...), "Unknown Company"),
		Date:     date,
		Type:     textOr(row.Lookup(colExpType...), "Expense"),
		Payee:    textOr(row.Lookup(colPayee...), "Unknown Payee"),
		Category: textOr(row.Lookup(colCategory...), "General"),
		Total:    total,
	}
}

// syntheticInvoiceNumber generates a placeholder key for rows uploaded
// without an invoice number. The reserved prefix keeps synthetic keys
// disjoint from real ones.
func (n *Normalizer) syntheticInvoiceNumber() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s%d-%s", domain.SyntheticKeyPrefix, n.now().UnixMilli(), suffix)
}

func (n *Normalizer) today() string {
	return n.now().UTC().Format("2006-01-02")
}

// moneyOrFallback enforces the sentinel floor on the NOT NULL money columns.
func (n *Normalizer) moneyOrFallback(raw string) decimal.Decimal {
	value := parseMoney(raw)
	if value.LessThan(n.fallback) {
		return n.fallback
	}
	return value
}

var moneySanitizer = strings.NewReplacer("$", "", ",", "", " ", "")

func parseMoney(raw string) decimal.Decimal {
	cleaned := moneySanitizer.Replace(strings.TrimSpace(raw))
	if cleaned == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return value
}

func parsePercent(raw string) decimal.Decimal {
	return parseMoney(strings.ReplaceAll(raw, "%", ""))
}

func quantityOrOne(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || int(value) < 1 {
		return 1
	}
	return int(value)
}

func clampDecimal(value, min, max decimal.Decimal) decimal.Decimal {
	if value.LessThan(min) {
		return min
	}
	if value.GreaterThan(max) {
		return max
	}
	return value
}

func textOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func optionalText(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
