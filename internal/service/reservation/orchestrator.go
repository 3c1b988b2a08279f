package reservation

import (
	"context"
	"net/url"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/metrics"
	"github.com/Domenick1991/quickreserve/internal/telephony"
	"go.uber.org/zap"
)

func (s *ReservationService) answerURL(id string) string {
	return s.publicBaseURL + "/voice/answer?reservationId=" + url.QueryEscape(id)
}

func (s *ReservationService) statusCallbackURL(id string) string {
	return s.publicBaseURL + "/voice/status?reservationId=" + url.QueryEscape(id)
}

// placeCall rings the venue and records the provider's call id on the reservation.
// A failure to record the id is logged only: the status callback still carries the
// reservation id.
func (s *ReservationService) placeCall(ctx context.Context, r *domain.Reservation, venuePhone string) (string, error) {
	sid, err := s.calls.PlaceCall(ctx, telephony.CallRequest{
		To:                venuePhone,
		AnswerURL:         s.answerURL(r.ID),
		StatusCallbackURL: s.statusCallbackURL(r.ID),
		RingTimeout:       s.ringTimeout,
	})
	if err != nil {
		metrics.CallPlacementsTotal.WithLabelValues("error").Inc()
		return "", err
	}
	metrics.CallPlacementsTotal.WithLabelValues("ok").Inc()

	if err := s.reservations.SetCallCorrelationID(ctx, r.ID, sid); err != nil {
		s.logger.Error("persist call sid",
			zap.String("reservation_id", r.ID), zap.String("call_sid", sid), zap.Error(err))
		return sid, nil
	}
	r.CallCorrelationID = &sid
	return sid, nil
}
