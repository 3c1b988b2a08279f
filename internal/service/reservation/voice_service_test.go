package reservation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/repository"
	"github.com/Domenick1991/quickreserve/internal/voice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReservationService_AnswerCall_Menu(t *testing.T) {
	f := newFixture(t)
	id := f.request(t, 2, 10)

	doc, err := f.svc.AnswerCall(context.Background(), id)

	require.NoError(t, err)
	assert.Contains(t, doc, "<Gather")
	assert.Contains(t, doc, "Party of 2, arriving 10 minutes from now.")
	assert.Contains(t, doc, "0 1 0, 1 2 3 4, 5 6 7 8")
	assert.Contains(t, doc, "Mapo Galbi")
	assert.Contains(t, doc, "/voice/response?reservationId="+id)
}

func TestReservationService_AnswerCall_UnknownReservation(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{"", "missing"} {
		doc, err := f.svc.AnswerCall(context.Background(), id)
		require.NoError(t, err)
		assert.Contains(t, doc, "could not find")
		assert.NotContains(t, doc, "<Gather")
	}
}

// Scenario A.
func TestReservationService_Keypress_Confirm(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.request(t, 2, 10)

	_, err := f.svc.AnswerCall(ctx, id)
	require.NoError(t, err)
	f.clock.Advance(30 * time.Second)

	doc, err := f.svc.HandleKeypress(ctx, id, "1")
	require.NoError(t, err)
	assert.Contains(t, doc, "confirmed")
	confirmedAt := f.clock.Now()

	for i := 0; i < 3; i++ {
		view, err := f.svc.GetStatus(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.ReservationStatusConfirmed, view.Status)
		require.NotNil(t, view.ConfirmedAt)
		assert.Equal(t, confirmedAt, *view.ConfirmedAt)
		f.clock.Advance(time.Hour)
	}

	f.producer.AssertCalled(t, "Publish", mock.Anything, "notifications", id, mock.Anything)
}

// Scenario B.
func TestReservationService_Keypress_Reject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.request(t, 3, 20)

	doc, err := f.svc.HandleKeypress(ctx, id, "2")
	require.NoError(t, err)
	assert.Contains(t, doc, "declined")

	view, err := f.svc.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusRejected, view.Status)
	require.NotNil(t, view.RejectionReason)
	assert.Equal(t, domain.ReasonDeclinedByVenue, *view.RejectionReason)
	assert.Nil(t, view.ConfirmedAt)
}

func TestReservationService_Keypress_ReplayKeepsPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.request(t, 2, 10)

	doc, err := f.svc.HandleKeypress(ctx, id, "3")
	require.NoError(t, err)
	assert.Contains(t, doc, "<Gather")

	r, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, r.Status)
}

func TestReservationService_Keypress_InvalidOrMissingDigit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.request(t, 2, 10)

	doc, err := f.svc.HandleKeypress(ctx, id, "9")
	require.NoError(t, err)
	assert.Contains(t, doc, "not a valid choice")
	assert.NotContains(t, doc, "<Gather")

	doc, err = f.svc.HandleKeypress(ctx, id, "")
	require.NoError(t, err)
	assert.Contains(t, doc, "did not receive a response")

	r, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusPending, r.Status)
}

func TestReservationService_Keypress_AfterTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.request(t, 2, 10)

	_, err := f.svc.HandleKeypress(ctx, id, "2")
	require.NoError(t, err)

	doc, err := f.svc.HandleKeypress(ctx, id, "1")
	require.NoError(t, err)
	assert.Contains(t, doc, "already been handled")

	doc, err = f.svc.AnswerCall(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, doc, "already been handled")

	r, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusRejected, r.Status)
}

func TestReservationService_Keypress_AfterExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.request(t, 2, 10)

	f.clock.Advance(4 * time.Minute)

	doc, err := f.svc.HandleKeypress(ctx, id, "1")
	require.NoError(t, err)
	assert.Contains(t, doc, "has expired")

	r, err := f.repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusExpired, r.Status)
	assert.Nil(t, r.ConfirmedAt)
}

func TestReservationService_Keypress_LostRace(t *testing.T) {
	repo := &MockReservationRepository{}
	svc := NewReservationService(repo, repository.NewMemoryStoreRepository(testStore), &MockCallPlacer{}, nil, nil,
		voice.NewBuilder(testBaseURL, "", "", 10), testBaseURL, zap.NewNop(), WithClock(newTestClock().Now))
	ctx := context.Background()

	pending := domain.NewReservation("r-1", "s-1", "", "Kim", "01012345678", 2, 10, newTestClock().Now(), 0)
	repo.On("GetByID", ctx, "r-1").Return(pending, nil).Once()
	repo.On("UpdateIfPending", ctx, mock.Anything).Return(nil, domain.ErrAlreadyProcessed).Once()

	doc, err := svc.HandleKeypress(ctx, "r-1", "1")

	require.NoError(t, err)
	assert.Contains(t, doc, "already been handled")
}

func TestReservationService_Keypress_StorageError(t *testing.T) {
	repo := &MockReservationRepository{}
	svc := NewReservationService(repo, repository.NewMemoryStoreRepository(testStore), &MockCallPlacer{}, nil, nil,
		voice.NewBuilder(testBaseURL, "", "", 10), testBaseURL, zap.NewNop())
	ctx := context.Background()

	repo.On("GetByID", ctx, "r-1").Return(nil, errors.New("connection refused")).Once()

	doc, err := svc.HandleKeypress(ctx, "r-1", "1")

	require.NoError(t, err)
	assert.Contains(t, doc, "unable to process")
}

func TestDigitLabel(t *testing.T) {
	assert.Equal(t, "1", digitLabel("1"))
	assert.Equal(t, "none", digitLabel(""))
	assert.Equal(t, "other", digitLabel("#"))
}

func TestReservationService_Keypress_SlowBrokerDoesNotStallWebhook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.request(t, 2, 10)

	stalled := &MockProducer{}
	stalled.On("Publish", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(context.DeadlineExceeded)
	f.svc.producer = stalled
	f.svc.publishTimeout = 50 * time.Millisecond

	start := time.Now()
	doc, err := f.svc.HandleKeypress(ctx, id, "1")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Contains(t, doc, "confirmed")
	assert.Less(t, elapsed, time.Second)

	view, err := f.svc.GetStatus(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.ReservationStatusConfirmed, view.Status)
	stalled.AssertCalled(t, "Publish", mock.Anything, "reservations", id, mock.Anything)
}
