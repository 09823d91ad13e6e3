package reservations

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/D0mbrowski/Site-Camping/internal/logging"
	"github.com/D0mbrowski/Site-Camping/internal/metrics"
)

var tracer = otel.Tracer("camping.internal.reservations")

// maxExportBytes bounds how much of the export is read.
const maxExportBytes = 8 << 20

// CSVSource reads the published CSV export of the reservations sheet.
type CSVSource struct {
	url     string
	hc      *http.Client
	logger  *logging.Logger
	metrics *metrics.BookingMetrics
}

func NewCSVSource(url string, timeout time.Duration, logger *logging.Logger, m *metrics.BookingMetrics) *CSVSource {
	if logger == nil {
		logger = logging.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CSVSource{
		url:     url,
		hc:      &http.Client{Timeout: timeout},
		logger:  logger,
		metrics: m,
	}
}

func (s *CSVSource) Rows(ctx context.Context) ([][]string, error) {
	ctx, span := tracer.Start(ctx, "reservations.csv.fetch")
	defer span.End()
	span.SetAttributes(attribute.String("camping.export_url", s.url))

	start := time.Now()
	body, err := s.fetch(ctx)
	if err != nil {
		span.RecordError(err)
		s.metrics.ObserveFetch("csv", "error", time.Since(start).Seconds())
		return nil, err
	}
	s.metrics.ObserveFetch("csv", "ok", time.Since(start).Seconds())

	rows := ParseExport(string(body))
	s.logger.Debug("reservations export fetched", "rows", len(rows), "bytes", len(body))
	return rows, nil
}

func (s *CSVSource) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("reservations: build request: %w", err)
	}
	req.Header.Set("accept", "text/csv")
	req.Header.Set("cache-control", "no-cache")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reservations: fetch export: %w", err)
	}
	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxExportBytes))
	if err != nil {
		return nil, fmt.Errorf("reservations: read export: %w", err)
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("reservations: export returned status %d", res.StatusCode)
	}
	return b, nil
}
