package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/D0mbrowski/Site-Camping/internal/config"
	"github.com/D0mbrowski/Site-Camping/internal/logging"
	"github.com/D0mbrowski/Site-Camping/internal/reservations"
)

func newBlockedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocked CABIN",
		Short: "List the booked date ranges of a cabin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel)
			ctx := context.Background()

			src, _, closeSrc, err := reservationSource(ctx, cfg, logger, nil)
			if err != nil {
				return err
			}
			defer closeSrc()

			// errors surface here regardless of the configured fail mode
			blocked, err := reservations.NewAvailability(src, true, logger).Blocked(ctx, args[0])
			if err != nil {
				return err
			}
			for _, b := range blocked {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", b.From, b.To)
			}
			return nil
		},
	}
}
