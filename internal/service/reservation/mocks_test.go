package reservation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/repository"
	"github.com/Domenick1991/quickreserve/internal/telephony"
	"github.com/Domenick1991/quickreserve/internal/voice"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const testBaseURL = "https://reserve.example.com"

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, r *domain.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByCallSID(ctx context.Context, sid string) (*domain.Reservation, error) {
	args := m.Called(ctx, sid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) SetCallCorrelationID(ctx context.Context, id, sid string) error {
	args := m.Called(ctx, id, sid)
	return args.Error(0)
}

func (m *MockReservationRepository) UpdateIfPending(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	args := m.Called(ctx, r)
	if fn, ok := args.Get(0).(func(context.Context, *domain.Reservation) *domain.Reservation); ok {
		return fn(ctx, r), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

type MockCallPlacer struct {
	mock.Mock
}

func (m *MockCallPlacer) PlaceCall(ctx context.Context, req telephony.CallRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquireRequestLock(ctx context.Context, storeID, callerPhone, reservationID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, storeID, callerPhone, reservationID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleaseRequestLock(ctx context.Context, storeID, callerPhone, reservationID string) error {
	args := m.Called(ctx, storeID, callerPhone, reservationID)
	return args.Error(0)
}

func (m *MockCache) GetStatusView(ctx context.Context, id string) (*domain.StatusView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusView), args.Error(1)
}

func (m *MockCache) SetStatusView(ctx context.Context, view domain.StatusView) error {
	args := m.Called(ctx, view)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testStore = domain.Store{ID: "s-1", Name: "Mapo Galbi", Address: "12 Mapo-daero, Seoul", Phone: "02-123-4567"}

type fixture struct {
	svc      *ReservationService
	repo     *repository.MemoryReservationRepository
	calls    *MockCallPlacer
	producer *MockProducer
	clock    *testClock
	placed   int
}

// newFixture wires the service over in-memory storage. Cache is left nil.
func newFixture(t *testing.T, stores ...domain.Store) *fixture {
	t.Helper()
	if len(stores) == 0 {
		stores = []domain.Store{testStore}
	}

	f := &fixture{
		repo:     repository.NewMemoryReservationRepository(),
		calls:    &MockCallPlacer{},
		producer: &MockProducer{},
		clock:    newTestClock(),
	}
	f.producer.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	ids := 0
	f.svc = NewReservationService(
		f.repo,
		repository.NewMemoryStoreRepository(stores...),
		f.calls,
		nil,
		f.producer,
		voice.NewBuilder(testBaseURL, "", "", 10),
		testBaseURL,
		zap.NewNop(),
		WithReservationTopic("reservations"),
		WithNotificationsTopic("notifications"),
		WithClock(f.clock.Now),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("r-%d", ids)
		}),
	)
	return f
}

// request places a successful request and returns its id.
func (f *fixture) request(t *testing.T, partySize, arrivalMinutes int) string {
	t.Helper()
	f.placed++
	f.calls.On("PlaceCall", mock.Anything, mock.Anything).Return(fmt.Sprintf("CA%03d", f.placed), nil).Once()
	res, err := f.svc.RequestReservation(context.Background(), RequestInput{
		StoreID:        testStore.ID,
		CallerName:     "Kim",
		CallerPhone:    "010-1234-5678",
		PartySize:      partySize,
		ArrivalMinutes: arrivalMinutes,
	})
	if err != nil {
		t.Fatalf("request reservation: %v", err)
	}
	return res.ReservationID
}
