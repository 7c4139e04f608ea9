package reconcile

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/opsconsole/ledgersync/internal/domain"
)

func multipartUpload(t *testing.T, fileName, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("failed to write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("failed to close writer: %v", err)
	}

	return body, writer.FormDataContentType()
}

func TestHandlerProcessesInvoiceUpload(t *testing.T) {
	invoices := newStubInvoiceRepo()
	handler := NewHTTPHandler(NewService(invoices, &stubExpenseRepo{}, nil, nil), fastOptions())

	csv := "Client Name,Invoice #,Date,Invoice Status,Rate,Quantity,Line Total\n" +
		"Acme,INV-1,2024-06-01,Unpaid,100,2,200\n" +
		"Globex,INV-2,2024-06-02,paid,50,1,50\n"
	body, contentType := multipartUpload(t, "invoices.csv", csv, map[string]string{
		"uploadType":       "invoice",
		"companyAccountId": "3",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/finance", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var response uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if response.Processed != 2 || response.Inserted != 2 {
		t.Fatalf("response = %+v", response)
	}
	if response.RowCount != 2 || response.LargeDataset {
		t.Fatalf("response metadata = %+v", response)
	}
	if len(invoices.inserted) != 2 {
		t.Fatalf("stored inserts = %d", len(invoices.inserted))
	}
	if invoices.inserted[0].CompanyAccountID != 3 {
		t.Fatalf("company account id = %d, want 3", invoices.inserted[0].CompanyAccountID)
	}
}

func TestHandlerRejectsEmptyFile(t *testing.T) {
	handler := NewHTTPHandler(NewService(newStubInvoiceRepo(), &stubExpenseRepo{}, nil, nil), fastOptions())

	body, contentType := multipartUpload(t, "empty.csv", "Client Name,Rate\n", map[string]string{
		"uploadType":       "invoice",
		"companyAccountId": "1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/finance", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "no data rows") {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestHandlerRequiresCompanyAccountForInvoices(t *testing.T) {
	handler := NewHTTPHandler(NewService(newStubInvoiceRepo(), &stubExpenseRepo{}, nil, nil), fastOptions())

	body, contentType := multipartUpload(t, "invoices.csv", "Client Name\nAcme\n", map[string]string{
		"uploadType": "invoice",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/finance", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerRejectsUnknownUploadType(t *testing.T) {
	handler := NewHTTPHandler(NewService(newStubInvoiceRepo(), &stubExpenseRepo{}, nil, nil), fastOptions())

	body, contentType := multipartUpload(t, "x.csv", "a\n1\n", map[string]string{
		"uploadType": "payroll",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/finance", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerProcessesExpenseUpload(t *testing.T) {
	expenses := &stubExpenseRepo{}
	handler := NewHTTPHandler(NewService(newStubInvoiceRepo(), expenses, nil, nil), fastOptions())

	csv := "Company,Date,Type,Payee,Category,Total\n" +
		"Northwind,2024-06-01,Travel,Airline Co,Flights,512.40\n"
	body, contentType := multipartUpload(t, "expenses.csv", csv, map[string]string{
		"uploadType": "expense",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/finance", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(expenses.batches) != 1 || len(expenses.batches[0]) != 1 {
		t.Fatalf("batches = %v", expenses.batches)
	}
}

func TestHandlerAppliesConfiguredBatchOptions(t *testing.T) {
	var batches [][2]int
	opts := Options{
		BatchSize:  1,
		BatchDelay: time.Millisecond,
		OnBatchComplete: func(index, size int) {
			batches = append(batches, [2]int{index, size})
		},
	}
	handler := NewHTTPHandler(NewService(newStubInvoiceRepo(), &stubExpenseRepo{}, nil, nil), opts)

	csv := "Client Name,Invoice #,Date,Invoice Status\n" +
		"Acme,INV-1,2024-06-01,pending\n" +
		"Globex,INV-2,2024-06-02,pending\n" +
		"Initech,INV-3,2024-06-03,pending\n"
	body, contentType := multipartUpload(t, "invoices.csv", csv, map[string]string{
		"uploadType":       "invoice",
		"companyAccountId": "1",
	})

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/finance", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	// Batch size 1 splits 3 rows into 3 batches of one.
	want := [][2]int{{1, 1}, {2, 1}, {3, 1}}
	if len(batches) != len(want) {
		t.Fatalf("batch completions = %v, want %v", batches, want)
	}
	for i := range want {
		if batches[i] != want[i] {
			t.Fatalf("batch %d = %v, want %v", i, batches[i], want[i])
		}
	}
}

func TestLogsHandlerReturnsRecordedFailures(t *testing.T) {
	rowNumber := 2
	logs := &stubLogRepo{entries: []domain.UploadLogEntry{
		{FileName: "invoices.csv", UploadKind: "invoice", RowNumber: &rowNumber, ErrorMessage: "insert blew up"},
		{FileName: "other.csv", UploadKind: "invoice", ErrorMessage: "unrelated"},
	}}
	handler := NewLogsHandler(NewService(newStubInvoiceRepo(), &stubExpenseRepo{}, logs, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/logs?file=invoices.csv", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var entries []domain.UploadLogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("invalid response json: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %+v, want only the requested file", entries)
	}
	if entries[0].RowNumber == nil || *entries[0].RowNumber != 2 || entries[0].ErrorMessage != "insert blew up" {
		t.Fatalf("entry = %+v", entries[0])
	}
}

func TestLogsHandlerRequiresFileName(t *testing.T) {
	handler := NewLogsHandler(NewService(newStubInvoiceRepo(), &stubExpenseRepo{}, &stubLogRepo{}, nil))

	req := httptest.NewRequest(http.MethodGet, "/api/uploads/logs", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
