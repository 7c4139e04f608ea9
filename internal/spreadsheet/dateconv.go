package spreadsheet

import (
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet day-serials count days from this epoch: day 1 = 1900-01-01.
var serialEpoch = time.Date(1899, time.December, 31, 0, 0, 0, 0, time.UTC)

// maxDaySerial bounds serial conversion at 9999-12-31.
const maxDaySerial = 2958465

var isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// ConvertCellDate converts a spreadsheet cell into a canonical YYYY-MM-DD
// string. The cell may hold an ISO-like date string, a numeric day-serial,
// or anything else a user pastes into a date column. The second return is
// false when no date could be derived; the function never fails.
//
// Serials above 59 are shifted back one day: the serial scheme contains a
// 1900-02-29 that the Gregorian calendar does not, and the downstream data
// was produced under that convention, so we reproduce it rather than fix it.
func ConvertCellDate(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}

	// Already an ISO date or timestamp: keep the date portion verbatim,
	// with no timezone reinterpretation. The shape check alone would admit
	// strings like "9999-99-99", which a DATE column rejects much later, so
	// the calendar has the final word.
	if isoDatePrefix.MatchString(value) {
		if _, err := time.Parse("2006-01-02", value[:10]); err == nil {
			return value[:10], true
		}
		log.Printf("[SPREADSHEET] malformed ISO date %q, leaving empty", value)
		return "", false
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		return convertDaySerial(serial)
	}

	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Format("2006-01-02"), true
		}
	}

	log.Printf("[SPREADSHEET] unparseable date value %q, leaving empty", value)
	return "", false
}

func convertDaySerial(serial float64) (string, bool) {
	days := int(serial) // fractional part is time of day; the ledger stores dates
	if days < 1 || days > maxDaySerial {
		log.Printf("[SPREADSHEET] day serial %v out of range, leaving empty", serial)
		return "", false
	}

	date := serialEpoch.AddDate(0, 0, days)
	if days > 59 {
		// Compensate for the phantom 1900-02-29 (serial 60).
		date = date.AddDate(0, 0, -1)
	}
	return date.Format("2006-01-02"), true
}
