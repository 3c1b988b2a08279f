package notify

import (
	"context"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/kafka"
	"go.uber.org/zap"
)

// Notifier tells the guest how their request ended. Delivery is a log line for now;
// SMS and push live in other services.
type Notifier struct {
	logger *zap.Logger
}

func NewNotifier(logger *zap.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Message is the guest-facing text for an event, or "" for events the guest is not told about.
func Message(ev kafka.ReservationEvent) string {
	switch ev.Type {
	case domain.EventReservationConfirmed:
		return "Your table is confirmed. See you at " + ev.ArrivalTime.Format("15:04") + "."
	case domain.EventReservationRejected:
		return "The restaurant could not take your reservation."
	case domain.EventReservationCancelled:
		return "We could not reach the restaurant (" + ev.RejectionReason + "). Please try again."
	case domain.EventReservationExpired:
		return "The restaurant did not answer in time. Your request has expired."
	default:
		return ""
	}
}

func (n *Notifier) Send(ctx context.Context, ev kafka.ReservationEvent) error {
	msg := Message(ev)
	if msg == "" {
		return nil
	}
	n.logger.Info("notify guest",
		zap.String("reservation_id", ev.ReservationID),
		zap.String("event", ev.Type),
		zap.String("phone", ev.CallerPhone),
		zap.String("message", msg),
	)
	return ctx.Err()
}
