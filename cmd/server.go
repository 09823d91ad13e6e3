package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/D0mbrowski/Site-Camping/internal/auth"
	"github.com/D0mbrowski/Site-Camping/internal/config"
	"github.com/D0mbrowski/Site-Camping/internal/logging"
	"github.com/D0mbrowski/Site-Camping/internal/metrics"
	"github.com/D0mbrowski/Site-Camping/internal/refresher"
	"github.com/D0mbrowski/Site-Camping/internal/requests"
	"github.com/D0mbrowski/Site-Camping/internal/reservations"
	"github.com/D0mbrowski/Site-Camping/internal/tracing"
	"github.com/D0mbrowski/Site-Camping/internal/web"
	"github.com/D0mbrowski/Site-Camping/internal/widget"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool
	var sessionTTL time.Duration
	var maxSessions int

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the booking site",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireCookieKeys(); err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel)

			if cfg.TraceStdout {
				shutdown, err := tracing.Setup(os.Stderr, "campingbook")
				if err != nil {
					return err
				}
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = shutdown(shutdownCtx)
				}()
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.NewBookingMetrics(reg)

			src, cache, closeSrc, err := reservationSource(ctx, cfg, logger, m)
			if err != nil {
				return err
			}
			defer closeSrc()

			if cache != nil && cfg.RefreshInterval > 0 {
				r := &refresher.Refresher{
					Target:   cache,
					Interval: cfg.RefreshInterval,
					Timeout:  cfg.FetchTimeout,
					Logger:   logger.With("component", "refresher"),
				}
				go func() { _ = r.Run(ctx) }()
			}

			avail := reservations.NewAvailability(src, cfg.FailMode == config.FailClosed, logger)

			ws := &web.Server{
				Availability: avail,
				Rates:        rates(cfg),
				Cabins:       cfg.Cabins,
				Location:     cfg.Timezone,
				Logger:       logger,
				Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
				BaseURL:      cfg.BaseURL,
			}

			var recorder widget.Recorder
			if cfg.DatabaseURL != "" {
				d, err := openDB(ctx, cfg, migrateUp)
				if err != nil {
					return err
				}
				defer d.Close()
				repo := requests.NewRepo(d.Q())
				recorder = repo
				ws.Requests = repo
				ws.Auth = auth.NewStore(d.Q(), cfg.CookieHashKey, cfg.CookieBlockKey)
			} else {
				logger.Info("DATABASE_URL not set, booking requests are not recorded")
			}

			ws.Sessions = web.NewSessions(cfg.CookieHashKey, cfg.CookieBlockKey, sessionTTL, func() *widget.Widget {
				return widget.New(widget.Options{
					Availability:   avail,
					Rates:          rates(cfg),
					WhatsAppNumber: cfg.WhatsAppNumber,
					Location:       cfg.Timezone,
					Recorder:       recorder,
					Logger:         logger,
					Metrics:        m,
				})
			})

			ws.Sessions.SetLimit(maxSessions)

			return web.Start(ctx, cfg.ListenAddr, ws.Routes(), logger)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 10000, "maximum number of live visitor booking sessions")
	cmd.Flags().DurationVar(&sessionTTL, "session-ttl", 2*time.Hour, "drop visitor booking state idle for longer than this")

	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
