package cmd

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/D0mbrowski/Site-Camping/internal/config"
	"github.com/D0mbrowski/Site-Camping/internal/db"
	"github.com/D0mbrowski/Site-Camping/internal/logging"
	"github.com/D0mbrowski/Site-Camping/internal/metrics"
	"github.com/D0mbrowski/Site-Camping/internal/migrate"
	"github.com/D0mbrowski/Site-Camping/internal/pricing"
	"github.com/D0mbrowski/Site-Camping/internal/reservations"
)

func rates(cfg config.Config) pricing.Rates {
	return pricing.Rates(cfg.Prices)
}

// reservationSource builds the export reader: the Sheets API when credentials
// are configured, the public CSV export otherwise, behind Redis when
// REDIS_ADDR is set. The returned cache is nil without Redis.
func reservationSource(ctx context.Context, cfg config.Config, logger *logging.Logger, m *metrics.BookingMetrics) (reservations.Source, *reservations.CachedSource, func(), error) {
	var src reservations.Source
	if cfg.UsesSheetsAPI() {
		s, err := reservations.NewSheetsSource(cfg.SheetsCredentialsFile, cfg.SheetsSpreadsheetID, cfg.SheetsRange, logger, m)
		if err != nil {
			return nil, nil, nil, err
		}
		src = s
		logger.Info("reservations from sheets api", "spreadsheet_id", cfg.SheetsSpreadsheetID, "range", cfg.SheetsRange)
	} else {
		src = reservations.NewCSVSource(cfg.ReservationsCSVURL, cfg.FetchTimeout, logger, m)
		logger.Info("reservations from csv export")
	}

	if cfg.RedisAddr == "" {
		return src, nil, func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, cache will fall through", "error", err, "addr", cfg.RedisAddr)
	}
	cached := reservations.NewCachedSource(src, rdb, cfg.CacheTTL, logger, m)
	return cached, cached, func() { _ = rdb.Close() }, nil
}

func openDB(ctx context.Context, cfg config.Config, migrateUp bool) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(ctx); err != nil {
		d.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if migrateUp {
		if err := migrate.Up(ctx, d.Q()); err != nil {
			d.Close()
			return nil, err
		}
	}
	return d, nil
}
