package reservations

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/D0mbrowski/Site-Camping/internal/logging"
	"github.com/D0mbrowski/Site-Camping/internal/metrics"
)

// SheetsSource reads the reservations sheet through the Google Sheets API
// with a service account, for spreadsheets that are not published as CSV.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
	readRange     string
	logger        *logging.Logger
	metrics       *metrics.BookingMetrics
}

// NewSheetsSource authenticates with the service-account JSON in credentialsFile.
func NewSheetsSource(credentialsFile, spreadsheetID, readRange string, logger *logging.Logger, m *metrics.BookingMetrics) (*SheetsSource, error) {
	ctx := context.Background()

	credentialsJSON, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("reservations: read credentials file: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(credentialsJSON, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("reservations: parse credentials: %w", err)
	}
	svc, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("reservations: create sheets service: %w", err)
	}
	return NewSheetsSourceFromService(svc, spreadsheetID, readRange, logger, m), nil
}

func NewSheetsSourceFromService(svc *sheets.Service, spreadsheetID, readRange string, logger *logging.Logger, m *metrics.BookingMetrics) *SheetsSource {
	if logger == nil {
		logger = logging.Default()
	}
	return &SheetsSource{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		readRange:     readRange,
		logger:        logger,
		metrics:       m,
	}
}

func (s *SheetsSource) Rows(ctx context.Context) ([][]string, error) {
	ctx, span := tracer.Start(ctx, "reservations.sheets.fetch")
	defer span.End()

	start := time.Now()
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.readRange).Context(ctx).Do()
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveFetch("sheets", "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("reservations: read sheet: %w", err)
	}
	s.metrics.ObserveFetch("sheets", "ok", time.Since(start).Seconds())

	rows := valuesToRows(resp.Values)
	s.logger.Debug("reservations sheet read", "rows", len(rows), "range", s.readRange)
	return rows, nil
}

// valuesToRows drops the header row and stringifies cells the way the CSV
// export renders them.
func valuesToRows(values [][]interface{}) [][]string {
	if len(values) <= 1 {
		return nil
	}
	rows := make([][]string, 0, len(values)-1)
	for _, v := range values[1:] {
		cols := make([]string, len(v))
		for i, cell := range v {
			cols[i] = strings.ReplaceAll(fmt.Sprint(cell), `"`, "")
		}
		rows = append(rows, cols)
	}
	return rows
}
