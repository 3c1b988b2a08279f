package reservation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/metrics"
	"github.com/Domenick1991/quickreserve/internal/repository"
	"github.com/Domenick1991/quickreserve/internal/telephony"
	"github.com/Domenick1991/quickreserve/internal/voice"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// minCallerPhoneDigits is the shortest guest number the venue can call back.
const minCallerPhoneDigits = 9

// DefaultPublishTimeout keeps a slow broker from holding up intake and voice webhooks.
const DefaultPublishTimeout = 2 * time.Second

type ReservationUseCase interface {
	RequestReservation(ctx context.Context, input RequestInput) (*RequestResult, error)
	GetStatus(ctx context.Context, id string) (*domain.StatusView, error)
}

type VoiceUseCase interface {
	AnswerCall(ctx context.Context, reservationID string) (string, error)
	HandleKeypress(ctx context.Context, reservationID, digits string) (string, error)
	ReconcileCallStatus(ctx context.Context, input CallStatusInput) error
}

type Cache interface {
	AcquireRequestLock(ctx context.Context, storeID, callerPhone, reservationID string, ttl time.Duration) (bool, error)
	ReleaseRequestLock(ctx context.Context, storeID, callerPhone, reservationID string) error
	GetStatusView(ctx context.Context, id string) (*domain.StatusView, error)
	SetStatusView(ctx context.Context, view domain.StatusView) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CallPlacer interface {
	PlaceCall(ctx context.Context, req telephony.CallRequest) (string, error)
}

type RequestInput struct {
	StoreID        string `json:"storeId"`
	UserID         string `json:"userId"`
	CallerName     string `json:"userName"`
	CallerPhone    string `json:"userPhone"`
	PartySize      int    `json:"partySize"`
	ArrivalMinutes int    `json:"arrivalMinutes"`
}

type RequestResult struct {
	ReservationID     string `json:"reservationId"`
	CallCorrelationID string `json:"callCorrelationId"`
}

type ReservationService struct {
	reservations repository.ReservationRepository
	stores       repository.StoreRepository
	calls        CallPlacer
	cache        Cache
	producer     Producer
	menus        *voice.Builder
	logger       *zap.Logger

	publicBaseURL      string
	reservationTopic   string
	notificationsTopic string
	countryCode        string
	trunkPrefix        string
	ringTimeout        time.Duration
	lifetime           time.Duration
	publishTimeout     time.Duration

	now   func() time.Time
	newID func() string
}

type ReservationServiceOption func(*ReservationService)

func WithReservationTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.reservationTopic = topic
	}
}

func WithNotificationsTopic(topic string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.notificationsTopic = topic
	}
}

// WithDialing sets how venue numbers are turned into international form.
func WithDialing(countryCode, trunkPrefix string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.countryCode = countryCode
		s.trunkPrefix = trunkPrefix
	}
}

func WithRingTimeout(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.ringTimeout = d
	}
}

func WithLifetime(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.lifetime = d
	}
}

// WithPublishTimeout bounds the time spent writing lifecycle events per transition.
func WithPublishTimeout(d time.Duration) ReservationServiceOption {
	return func(s *ReservationService) {
		s.publishTimeout = d
	}
}

func WithClock(now func() time.Time) ReservationServiceOption {
	return func(s *ReservationService) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) ReservationServiceOption {
	return func(s *ReservationService) {
		s.newID = newID
	}
}

func NewReservationService(
	reservations repository.ReservationRepository,
	stores repository.StoreRepository,
	calls CallPlacer,
	cache Cache,
	producer Producer,
	menus *voice.Builder,
	publicBaseURL string,
	logger *zap.Logger,
	opts ...ReservationServiceOption,
) *ReservationService {
	s := &ReservationService{
		reservations:   reservations,
		stores:         stores,
		calls:          calls,
		cache:          cache,
		producer:       producer,
		menus:          menus,
		logger:         logger,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		countryCode:    "82",
		trunkPrefix:    "0",
		ringTimeout:    60 * time.Second,
		lifetime:       domain.DefaultLifetime,
		publishTimeout: DefaultPublishTimeout,
		now:            time.Now,
		newID:          uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ReservationService) RequestReservation(ctx context.Context, input RequestInput) (*RequestResult, error) {
	if err := validateRequest(&input); err != nil {
		metrics.ReservationRequestsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	store, err := s.stores.GetByID(ctx, input.StoreID)
	if err != nil {
		metrics.ReservationRequestsTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}
	if strings.TrimSpace(store.Phone) == "" {
		metrics.ReservationRequestsTotal.WithLabelValues("store_error").Inc()
		return nil, fmt.Errorf("%w: store %s has no phone number", domain.ErrPrecondition, store.ID)
	}
	venuePhone, err := telephony.ToE164(store.Phone, s.countryCode, s.trunkPrefix)
	if err != nil {
		metrics.ReservationRequestsTotal.WithLabelValues("store_error").Inc()
		return nil, err
	}

	now := s.now()
	r := domain.NewReservation(s.newID(), input.StoreID, input.UserID, input.CallerName, input.CallerPhone,
		input.PartySize, input.ArrivalMinutes, now, s.lifetime)
	l := s.logger.With(zap.String("reservation_id", r.ID), zap.String("store_id", r.StoreID))

	if s.cache != nil {
		ok, err := s.cache.AcquireRequestLock(ctx, r.StoreID, r.CallerPhone, r.ID, s.lifetime)
		if err != nil {
			l.Error("acquire request lock", zap.Error(err))
			return nil, err
		}
		if !ok {
			metrics.ReservationRequestsTotal.WithLabelValues("duplicate").Inc()
			return nil, fmt.Errorf("%w: store %s", domain.ErrDuplicateRequest, r.StoreID)
		}
	}

	if err := s.reservations.Create(ctx, r); err != nil {
		s.releaseLock(ctx, r)
		l.Error("create reservation", zap.Error(err))
		return nil, err
	}
	s.publish(ctx, r)

	sid, err := s.placeCall(ctx, r, venuePhone)
	if err != nil {
		l.Warn("call placement failed", zap.Error(err))
		metrics.ReservationRequestsTotal.WithLabelValues("call_failed").Inc()
		if _, ferr := s.finalize(ctx, r, domain.ReservationStatusCancelled, domain.ReasonCallPlacementFailure); ferr != nil {
			l.Error("cancel after failed call", zap.Error(ferr))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrCallPlacement, err)
	}

	metrics.ReservationRequestsTotal.WithLabelValues("ok").Inc()
	l.Info("reservation requested", zap.String("call_sid", sid), zap.Int("party_size", r.PartySize))
	return &RequestResult{ReservationID: r.ID, CallCorrelationID: sid}, nil
}

func validateRequest(in *RequestInput) error {
	in.StoreID = strings.TrimSpace(in.StoreID)
	in.UserID = strings.TrimSpace(in.UserID)
	in.CallerName = strings.TrimSpace(in.CallerName)
	in.CallerPhone = strings.TrimSpace(in.CallerPhone)

	switch {
	case in.StoreID == "":
		return fmt.Errorf("%w: storeId is required", domain.ErrValidation)
	case in.CallerName == "":
		return fmt.Errorf("%w: userName is required", domain.ErrValidation)
	case in.CallerPhone == "":
		return fmt.Errorf("%w: userPhone is required", domain.ErrValidation)
	case len(telephony.Digits(in.CallerPhone)) < minCallerPhoneDigits:
		return fmt.Errorf("%w: userPhone must have at least %d digits", domain.ErrValidation, minCallerPhoneDigits)
	case in.PartySize < 1:
		return fmt.Errorf("%w: partySize must be at least 1", domain.ErrValidation)
	case !domain.IsAllowedArrivalMinutes(in.ArrivalMinutes):
		return fmt.Errorf("%w: arrivalMinutes must be one of %v", domain.ErrValidation, domain.AllowedArrivalMinutes)
	}
	return nil
}

func (s *ReservationService) GetStatus(ctx context.Context, id string) (*domain.StatusView, error) {
	if s.cache != nil {
		view, err := s.cache.GetStatusView(ctx, id)
		if err != nil {
			s.logger.Warn("read status cache", zap.String("reservation_id", id), zap.Error(err))
		} else if view != nil {
			return view, nil
		}
	}

	r, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.Overdue(s.now()) {
		r, err = s.expire(ctx, r)
		if err != nil {
			return nil, err
		}
	}

	store, err := s.stores.GetByID(ctx, r.StoreID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		store = nil
	}

	view := domain.NewStatusView(r, store)
	if s.cache != nil && view.Status.Terminal() && store != nil {
		if err := s.cache.SetStatusView(ctx, view); err != nil {
			s.logger.Warn("write status cache", zap.String("reservation_id", id), zap.Error(err))
		}
	}
	return &view, nil
}

// expire lazily ends an overdue reservation. When another writer has already ended it
// the stored row is returned instead.
func (s *ReservationService) expire(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	updated, err := s.finalize(ctx, r, domain.ReservationStatusExpired, "")
	if errors.Is(err, domain.ErrAlreadyProcessed) {
		return s.reservations.GetByID(ctx, r.ID)
	}
	return updated, err
}

var (
	_ ReservationUseCase = (*ReservationService)(nil)
	_ VoiceUseCase       = (*ReservationService)(nil)
)
