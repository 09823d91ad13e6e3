// Package reservations reads existing reservations from the spreadsheet
// export and turns them into the date ranges the booking calendar disables.
package reservations

import (
	"context"
	"errors"
	"strings"
)

// Column positions in the reservations sheet (zero based).
const (
	colCabin    = 3
	colCheckIn  = 5
	colCheckOut = 6
	minColumns  = 7
)

var ErrEmptyCabin = errors.New("reservations: cabin id required")

// BlockedInterval is a date range unavailable for booking. From and To are
// kept exactly as they appear in the sheet; the calendar parses them.
type BlockedInterval struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Source yields the data rows of the reservations sheet, header excluded,
// each split into columns.
type Source interface {
	Rows(ctx context.Context) ([][]string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([][]string, error)

func (f SourceFunc) Rows(ctx context.Context) ([][]string, error) { return f(ctx) }

// ParseExport splits CSV export text into rows of columns. The first line is
// the header and is skipped. Quotes are stripped before splitting, so a
// quoted field containing a comma spans two columns.
func ParseExport(text string) [][]string {
	lines := strings.Split(text, "\n")
	if len(lines) <= 1 {
		return nil
	}
	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, strings.Split(strings.ReplaceAll(line, `"`, ""), ","))
	}
	return rows
}

// FilterBlocked keeps the rows booked for cabin. Rows with fewer than seven
// columns are ignored.
func FilterBlocked(rows [][]string, cabin string) []BlockedInterval {
	out := []BlockedInterval{}
	for _, cols := range rows {
		if len(cols) < minColumns || cols[colCabin] != cabin {
			continue
		}
		out = append(out, BlockedInterval{From: cols[colCheckIn], To: cols[colCheckOut]})
	}
	return out
}
