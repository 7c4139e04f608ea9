package spreadsheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrEmptyFile is returned when an upload contains no data rows. It is
	// the only validation failure the reader raises; everything else is
	// advisory.
	ErrEmptyFile = errors.New("spreadsheet contains no data rows")

	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// largeDatasetThreshold is the row count above which an upload is flagged
// as large. The flag is a hint for the caller; the reader does not change
// behavior based on it.
const largeDatasetThreshold = 1000

// RawRow maps a spreadsheet column label, as it appears in the header row,
// to the cell value for one data row. Rows are ephemeral; they exist only
// during one upload pass.
type RawRow map[string]string

// Lookup probes the given column labels in order and returns the first
// non-empty trimmed value. Callers list the human-readable label first and
// the snake_case fallback second.
func (r RawRow) Lookup(labels ...string) string {
	for _, label := range labels {
		if value := strings.TrimSpace(r[label]); value != "" {
			return value
		}
	}
	return ""
}

// Result is the parsed content of one uploaded file.
type Result struct {
	Rows         []RawRow
	RowCount     int
	LargeDataset bool
}

// Read parses an uploaded spreadsheet into an ordered sequence of raw rows.
// Only the first sheet of a workbook is read. The header row is the first
// non-empty row; blank rows are dropped and short rows padded.
func Read(fileName string, payload []byte) (Result, error) {
	if len(payload) == 0 {
		return Result{}, ErrEmptyFile
	}

	var (
		records [][]string
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(fileName)); ext {
	case ".xlsx":
		records, err = readExcel(payload)
	case ".csv":
		records, err = readCSV(payload)
	default:
		return Result{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return Result{}, err
	}

	rows := buildRows(records)
	if len(rows) == 0 {
		return Result{}, ErrEmptyFile
	}

	return Result{
		Rows:         rows,
		RowCount:     len(rows),
		LargeDataset: len(rows) > largeDatasetThreshold,
	}, nil
}

func readExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from workbook: %w", err)
	}
	return rows, nil
}

func readCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

// buildRows picks the first non-empty record as the header row and maps the
// remaining records onto it. Header labels are trimmed but otherwise kept
// verbatim; resolving alternate spellings is the normalizer's job.
func buildRows(records [][]string) []RawRow {
	var headers []string
	var rows []RawRow

	for _, record := range records {
		if rowEmpty(record) {
			continue
		}
		if headers == nil {
			headers = make([]string, len(record))
			for i, label := range record {
				headers[i] = strings.TrimSpace(label)
			}
			continue
		}

		row := make(RawRow, len(headers))
		for i, label := range headers {
			if label == "" {
				continue
			}
			if i < len(record) {
				row[label] = record[i]
			} else {
				row[label] = ""
			}
		}
		rows = append(rows, row)
	}

	return rows
}

func rowEmpty(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
