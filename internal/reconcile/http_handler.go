package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/opsconsole/ledgersync/internal/spreadsheet"
)

// Handler exposes the reconciliation pipeline as an HTTP upload endpoint.
type Handler struct {
	service  *Service
	defaults Options
}

// NewHTTPHandler wraps the service with a POST endpoint. The given options
// carry the configured batch size and delay into every upload request.
func NewHTTPHandler(service *Service, defaults Options) http.Handler {
	return &Handler{service: service, defaults: defaults}
}

// uploadResponse is the JSON body returned to the console UI.
type uploadResponse struct {
	Outcome
	RowCount     int  `json:"rowCount"`
	LargeDataset bool `json:"largeDataset"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	kind := UploadKind(strings.TrimSpace(r.FormValue("uploadType")))
	if kind != UploadInvoices && kind != UploadExpenses {
		http.Error(w, "uploadType must be invoice or expense", http.StatusBadRequest)
		return
	}

	var companyAccountID int64
	if raw := strings.TrimSpace(r.FormValue("companyAccountId")); raw != "" {
		companyAccountID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid company account id: %v", err), http.StatusBadRequest)
			return
		}
	} else if kind == UploadInvoices {
		http.Error(w, "companyAccountId is required for invoice uploads", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return
	}

	parsed, err := spreadsheet.Read(header.Filename, payload)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, spreadsheet.ErrEmptyFile) && !errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	req := Request{
		Kind:             kind,
		FileName:         header.Filename,
		CompanyAccountID: companyAccountID,
		Options:          h.defaults,
	}

	outcome, err := h.service.Run(r.Context(), parsed.Rows, req)
	if err != nil {
		http.Error(w, fmt.Sprintf("upload aborted after %d rows: %v", outcome.Processed, err), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Outcome:      outcome,
		RowCount:     parsed.RowCount,
		LargeDataset: parsed.LargeDataset,
	})
}

// NewLogsHandler exposes recorded upload failures for one file, newest
// first, for the console's upload history view.
func NewLogsHandler(service *Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		fileName := strings.TrimSpace(r.URL.Query().Get("file"))
		if fileName == "" {
			http.Error(w, "file query parameter is required", http.StatusBadRequest)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		entries, err := service.Logs(r.Context(), fileName, limit, offset)
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to list upload logs: %v", err), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
