package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/D0mbrowski/Site-Camping/internal/config"
	"github.com/D0mbrowski/Site-Camping/internal/pricing"
)

func newQuoteCmd() *cobra.Command {
	var guests, checkin, checkout string

	c := &cobra.Command{
		Use:   "quote",
		Short: "Price a stay with the configured rates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			in, err := time.ParseInLocation("2006-01-02", checkin, cfg.Timezone)
			if err != nil {
				return fmt.Errorf("invalid --checkin (want YYYY-MM-DD)")
			}
			out, err := time.ParseInLocation("2006-01-02", checkout, cfg.Timezone)
			if err != nil {
				return fmt.Errorf("invalid --checkout (want YYYY-MM-DD)")
			}
			if _, ok := pricing.ParseGuests(guests); !ok {
				return fmt.Errorf("invalid --guests %q", guests)
			}

			total := pricing.Quote(rates(cfg), guests, []time.Time{in, out})
			fmt.Fprintf(cmd.OutOrStdout(), "nights=%d guests=%s total=%s\n",
				pricing.Nights(in, out), guests, pricing.FormatBRL(total))
			return nil
		},
	}

	c.Flags().StringVar(&guests, "guests", "1", "number of guests")
	c.Flags().StringVar(&checkin, "checkin", "", "check-in date YYYY-MM-DD")
	c.Flags().StringVar(&checkout, "checkout", "", "check-out date YYYY-MM-DD")
	_ = c.MarkFlagRequired("checkin")
	_ = c.MarkFlagRequired("checkout")
	return c
}
