package reservation

import (
	"context"
	"errors"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/metrics"
	"github.com/Domenick1991/quickreserve/internal/voice"
	"go.uber.org/zap"
)

const (
	digitConfirm = "1"
	digitReject  = "2"
	digitReplay  = "3"
)

// AnswerCall returns the document played when the venue picks up. The returned error
// is only set when the document itself cannot be rendered.
func (s *ReservationService) AnswerCall(ctx context.Context, reservationID string) (string, error) {
	metrics.WebhookEventsTotal.WithLabelValues("answer", "connected").Inc()

	r, doc, err := s.loadForCall(ctx, reservationID)
	if r == nil {
		return doc, err
	}
	return s.menu(ctx, r)
}

// HandleKeypress applies the venue's single-digit answer.
func (s *ReservationService) HandleKeypress(ctx context.Context, reservationID, digits string) (string, error) {
	metrics.WebhookEventsTotal.WithLabelValues("keypress", digitLabel(digits)).Inc()

	r, doc, err := s.loadForCall(ctx, reservationID)
	if r == nil {
		return doc, err
	}

	l := s.logger.With(zap.String("reservation_id", r.ID), zap.String("digits", digits))

	switch digits {
	case digitConfirm:
		return s.answerWithTransition(ctx, l, r, domain.ReservationStatusConfirmed, "", s.menus.Confirmed)
	case digitReject:
		return s.answerWithTransition(ctx, l, r, domain.ReservationStatusRejected, domain.ReasonDeclinedByVenue, s.menus.Rejected)
	case digitReplay:
		return s.menu(ctx, r)
	case "":
		l.Info("no keypress received")
		return s.menus.NoInput()
	default:
		l.Info("invalid keypress")
		return s.menus.InvalidInput()
	}
}

func (s *ReservationService) answerWithTransition(
	ctx context.Context,
	l *zap.Logger,
	r *domain.Reservation,
	to domain.ReservationStatus,
	reason string,
	render func() (string, error),
) (string, error) {
	if _, err := s.finalize(ctx, r, to, reason); err != nil {
		if errors.Is(err, domain.ErrAlreadyProcessed) {
			l.Info("keypress lost race with another update")
			return s.menus.AlreadyProcessed()
		}
		l.Error("apply keypress", zap.Error(err))
		return s.menus.Unavailable()
	}
	return render()
}

// loadForCall fetches the reservation a venue call is about. It returns a nil
// reservation together with the document to play when the call cannot go on to the
// menu: unknown id, already terminal, or overdue (expired here, before any keypress
// can be applied).
func (s *ReservationService) loadForCall(ctx context.Context, reservationID string) (*domain.Reservation, string, error) {
	l := s.logger.With(zap.String("reservation_id", reservationID))

	if reservationID == "" {
		doc, err := s.menus.NotFound()
		return nil, doc, err
	}

	r, err := s.reservations.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			l.Warn("voice webhook for unknown reservation")
			doc, err := s.menus.NotFound()
			return nil, doc, err
		}
		l.Error("load reservation", zap.Error(err))
		doc, err := s.menus.Unavailable()
		return nil, doc, err
	}

	if r.Status != domain.ReservationStatusPending {
		doc, err := s.menus.AlreadyProcessed()
		return nil, doc, err
	}

	if r.Overdue(s.now()) {
		if _, err := s.finalize(ctx, r, domain.ReservationStatusExpired, ""); err != nil {
			if errors.Is(err, domain.ErrAlreadyProcessed) {
				doc, err := s.menus.AlreadyProcessed()
				return nil, doc, err
			}
			l.Error("expire reservation", zap.Error(err))
		}
		doc, err := s.menus.Expired()
		return nil, doc, err
	}

	return r, "", nil
}

func (s *ReservationService) menu(ctx context.Context, r *domain.Reservation) (string, error) {
	info := voice.MenuInfo{
		ReservationID:  r.ID,
		CallerName:     r.CallerName,
		CallerPhone:    r.CallerPhone,
		PartySize:      r.PartySize,
		ArrivalMinutes: r.ArrivalMinutes,
	}
	if store, err := s.stores.GetByID(ctx, r.StoreID); err == nil {
		info.StoreName = store.Name
	} else {
		s.logger.Warn("load store for menu", zap.String("store_id", r.StoreID), zap.Error(err))
	}
	return s.menus.Menu(info)
}

func digitLabel(digits string) string {
	switch digits {
	case digitConfirm, digitReject, digitReplay:
		return digits
	case "":
		return "none"
	default:
		return "other"
	}
}
