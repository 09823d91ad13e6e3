package reservations

import (
	"context"

	"github.com/D0mbrowski/Site-Camping/internal/logging"
)

// Availability answers which date ranges are already booked for a cabin.
//
// When the source fails, fail-open (the historical behavior) reports no
// blocked dates, so an outage of the spreadsheet lets the form accept
// overlapping requests. Fail-closed returns the error instead and the
// calendar is not offered. The staff still confirms every request by hand.
type Availability struct {
	src        Source
	failClosed bool
	logger     *logging.Logger
}

func NewAvailability(src Source, failClosed bool, logger *logging.Logger) *Availability {
	if logger == nil {
		logger = logging.Default()
	}
	return &Availability{src: src, failClosed: failClosed, logger: logger}
}

// Blocked returns the booked intervals for cabin, possibly empty.
func (a *Availability) Blocked(ctx context.Context, cabin string) ([]BlockedInterval, error) {
	if cabin == "" {
		return nil, ErrEmptyCabin
	}
	rows, err := a.src.Rows(ctx)
	if err != nil {
		a.logger.Error("failed to load reservations", "error", err, "cabin", cabin, "fail_closed", a.failClosed)
		if a.failClosed {
			return nil, err
		}
		return []BlockedInterval{}, nil
	}
	return FilterBlocked(rows, cabin), nil
}
