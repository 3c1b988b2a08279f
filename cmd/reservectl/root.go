package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/logger"
	"github.com/Domenick1991/quickreserve/internal/poller"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	server   string
	interval time.Duration
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "reservectl",
		Short:         "Request a quick reservation and follow the venue's answer",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("RESERVE_SERVER", "http://localhost:8080"), "reservation service base URL")
	root.PersistentFlags().DurationVar(&opts.interval, "interval", poller.DefaultInterval, "status polling interval")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(newRequestCmd(opts))
	root.AddCommand(newWatchCmd(opts))
	return root
}

func (o *rootOptions) poller() *poller.Poller {
	return poller.New(o.server, logger.New(o.logLevel), poller.WithInterval(o.interval))
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <reservation-id>",
		Short: "Poll a reservation until the venue answers or it ends",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watch(ctx, cmd.OutOrStdout(), opts.poller(), args[0])
		},
	}
}

func watch(ctx context.Context, out io.Writer, p *poller.Poller, id string) error {
	var last domain.ReservationStatus
	view, err := p.Watch(ctx, id, func(v domain.StatusView) {
		if v.Status != last {
			fmt.Fprintf(out, "%s  %s\n", time.Now().Format("15:04:05"), v.Status)
			last = v.Status
		}
	})
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("reservation %s does not exist", id)
	}
	if err != nil {
		return err
	}

	switch view.Status {
	case domain.ReservationStatusConfirmed:
		fmt.Fprintf(out, "confirmed by %s for %d, arrive by %s\n", view.StoreName, view.PartySize, view.ArrivalTime.Local().Format("15:04"))
	case domain.ReservationStatusRejected, domain.ReservationStatusCancelled:
		reason := ""
		if view.RejectionReason != nil {
			reason = *view.RejectionReason
		}
		fmt.Fprintf(out, "%s: %s\n", view.Status, reason)
	default:
		fmt.Fprintf(out, "%s\n", view.Status)
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
