package reservation

import (
	"context"
	"errors"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/metrics"
	"go.uber.org/zap"
)

// Provider call states that end a call without the venue answering the menu.
const (
	CallStatusCompleted = "completed"
	CallStatusNoAnswer  = "no-answer"
	CallStatusBusy      = "busy"
	CallStatusFailed    = "failed"
	CallStatusCanceled  = "canceled"
)

type CallStatusInput struct {
	ReservationID string
	CallSID       string
	CallStatus    string
}

func isFailedCall(status string) bool {
	switch status {
	case CallStatusNoAnswer, CallStatusBusy, CallStatusFailed, CallStatusCanceled:
		return true
	}
	return false
}

// ReconcileCallStatus cancels a still pending reservation whose call ended without an
// answer. Deliveries may repeat or arrive after a keypress; those are no-ops.
func (s *ReservationService) ReconcileCallStatus(ctx context.Context, input CallStatusInput) error {
	label := input.CallStatus
	if !isFailedCall(label) && label != CallStatusCompleted {
		label = "other"
	}
	metrics.WebhookEventsTotal.WithLabelValues("status", label).Inc()

	l := s.logger.With(
		zap.String("reservation_id", input.ReservationID),
		zap.String("call_sid", input.CallSID),
		zap.String("call_status", input.CallStatus),
	)

	r, err := s.findByCall(ctx, input)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("status callback for unknown call")
			return nil
		}
		return err
	}

	if input.CallSID != "" && r.CallCorrelationID != nil && *r.CallCorrelationID != input.CallSID {
		l.Warn("status callback for a different call, ignoring")
		return nil
	}
	if r.Status != domain.ReservationStatusPending || !isFailedCall(input.CallStatus) {
		return nil
	}

	if _, err := s.finalize(ctx, r, domain.ReservationStatusCancelled, input.CallStatus); err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			return nil
		}
		return err
	}
	return nil
}

func (s *ReservationService) findByCall(ctx context.Context, input CallStatusInput) (*domain.Reservation, error) {
	if input.CallSID != "" {
		r, err := s.reservations.GetByCallSID(ctx, input.CallSID)
		if err == nil || !errors.Is(err, domain.ErrNotFound) || input.ReservationID == "" {
			return r, err
		}
	}
	if input.ReservationID == "" {
		return nil, domain.ErrNotFound
	}
	return s.reservations.GetByID(ctx, input.ReservationID)
}
