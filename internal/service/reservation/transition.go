package reservation

import (
	"context"
	"errors"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/kafka"
	"github.com/Domenick1991/quickreserve/internal/metrics"
	"go.uber.org/zap"
)

// finalize moves current to a terminal status through the conditional write. Losing the
// race returns domain.ErrAlreadyProcessed and leaves the stored row untouched.
func (s *ReservationService) finalize(ctx context.Context, current *domain.Reservation, to domain.ReservationStatus, reason string) (*domain.Reservation, error) {
	next := *current
	if err := next.Transition(to, reason, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.reservations.UpdateIfPending(ctx, &next)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			metrics.LostRacesTotal.Inc()
		}
		return nil, err
	}

	metrics.TransitionsTotal.WithLabelValues(string(updated.Status)).Inc()
	s.logger.Info("reservation finalized",
		zap.String("reservation_id", updated.ID),
		zap.String("status", string(updated.Status)),
	)

	s.publish(ctx, updated)
	s.releaseLock(ctx, updated)
	return updated, nil
}

// publish writes the lifecycle event and, for terminal statuses, the guest notification.
// Both writes share one publishTimeout budget; a failure is logged and the event dropped.
func (s *ReservationService) publish(ctx context.Context, r *domain.Reservation) {
	if s.producer == nil || s.reservationTopic == "" {
		return
	}
	if s.publishTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.publishTimeout)
		defer cancel()
	}
	event := kafka.NewReservationEvent(r, s.now())
	if err := s.producer.Publish(ctx, s.reservationTopic, r.ID, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", event.Type), zap.String("reservation_id", r.ID), zap.Error(err))
		return
	}
	if s.notificationsTopic != "" && r.Status.Terminal() {
		if err := s.producer.Publish(ctx, s.notificationsTopic, r.ID, event); err != nil {
			s.logger.Warn("publish notification", zap.String("type", event.Type), zap.String("reservation_id", r.ID), zap.Error(err))
		}
	}
}

func (s *ReservationService) releaseLock(ctx context.Context, r *domain.Reservation) {
	if s.cache == nil {
		return
	}
	if err := s.cache.ReleaseRequestLock(ctx, r.StoreID, r.CallerPhone, r.ID); err != nil {
		s.logger.Warn("release request lock", zap.String("reservation_id", r.ID), zap.Error(err))
	}
}
