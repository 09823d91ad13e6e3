package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/D0mbrowski/Site-Camping/internal/chatlink"
	"github.com/D0mbrowski/Site-Camping/internal/config"
	"github.com/D0mbrowski/Site-Camping/internal/requests"
)

func newRequestsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "requests",
		Short: "Inspect recorded booking requests",
	}
	cmd.AddCommand(newRequestsListCmd())
	return cmd
}

func newRequestsListCmd() *cobra.Command {
	var limit int
	c := &cobra.Command{
		Use:   "list",
		Short: "List the most recent booking requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			ctx := context.Background()
			d, err := openDB(ctx, cfg, false)
			if err != nil {
				return err
			}
			defer d.Close()

			list, err := requests.NewRepo(d.Q()).List(ctx, limit)
			if err != nil {
				return err
			}
			for _, r := range list {
				fmt.Fprintf(cmd.OutOrStdout(), "id=%s cabin=%q name=%q phone=%q guests=%s stay=%s..%s total=%q\n",
					r.ID, r.Cabin, r.ClientName, r.ClientPhone, r.Guests,
					chatlink.FormatDate(r.CheckIn), chatlink.FormatDate(r.CheckOut), r.Total)
			}
			return nil
		},
	}
	c.Flags().IntVar(&limit, "limit", 50, "maximum number of requests")
	return c
}
