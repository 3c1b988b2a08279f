package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/quickreserve/internal/poller"
	"github.com/spf13/cobra"
)

func newRequestCmd(opts *rootOptions) *cobra.Command {
	var (
		req       poller.Request
		keepWatch bool
	)

	c := &cobra.Command{
		Use:   "request",
		Short: "Ask a venue for a table; the venue is called and asked to confirm",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p := opts.poller()
			acc, err := p.Submit(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reservation %s requested (call %s)\n", acc.ReservationID, acc.CallCorrelationID)

			if !keepWatch {
				return nil
			}
			return watch(ctx, cmd.OutOrStdout(), p, acc.ReservationID)
		},
	}

	c.Flags().StringVar(&req.StoreID, "store", "", "store id")
	c.Flags().StringVar(&req.UserID, "user", "", "guest account id")
	c.Flags().StringVar(&req.UserName, "name", "", "guest name")
	c.Flags().StringVar(&req.UserPhone, "phone", "", "guest phone number")
	c.Flags().IntVar(&req.PartySize, "party", 2, "party size")
	c.Flags().IntVar(&req.ArrivalMinutes, "in", 10, "arrival in minutes (10, 20 or 30)")
	c.Flags().BoolVar(&keepWatch, "watch", true, "follow the reservation until it ends")
	_ = c.MarkFlagRequired("store")
	_ = c.MarkFlagRequired("name")
	_ = c.MarkFlagRequired("phone")

	return c
}
