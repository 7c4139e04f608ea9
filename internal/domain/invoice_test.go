package domain

import "testing"

func TestNormalizeStatusCanonicalValues(t *testing.T) {
	for _, status := range []InvoiceStatus{StatusPaid, StatusPending, StatusOverdue, StatusCancelled, StatusSent} {
		if got := NormalizeStatus(string(status)); got != status {
			t.Errorf("NormalizeStatus(%q) = %q, want unchanged", status, got)
		}
	}
}

func TestNormalizeStatusAliases(t *testing.T) {
	cases := map[string]InvoiceStatus{
		"Draft":            StatusPending,
		"UNPAID":           StatusPending,
		"open":             StatusPending,
		"due":              StatusPending,
		"outstanding":      StatusPending,
		"Awaiting Payment": StatusPending,
		"late":             StatusOverdue,
		"Past Due":         StatusOverdue,
		"pastdue":          StatusOverdue,
		"void":             StatusCancelled,
		"Canceled":         StatusCancelled,
		"complete":         StatusPaid,
		"Completed":        StatusPaid,
		"settled":          StatusPaid,
		"closed":           StatusPaid,
		"Payment Received": StatusPaid,
		"fully paid":       StatusPaid,
	}

	for in, want := range cases {
		if got := NormalizeStatus(in); got != want {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeStatusIsTotal(t *testing.T) {
	// Every input maps to exactly one canonical value; garbage included.
	inputs := []string{"", "  ", "banana", "PAID IN FULL???", "status=paid", "0", "nil"}
	for _, alias := range []string{"draft", "late", "void", "complete"} {
		inputs = append(inputs, alias)
	}

	for _, in := range inputs {
		if got := NormalizeStatus(in); !got.Valid() {
			t.Errorf("NormalizeStatus(%q) = %q, not a canonical value", in, got)
		}
	}

	if got := NormalizeStatus("banana"); got != StatusPending {
		t.Errorf("unrecognized value = %q, want pending fallback", got)
	}
}
