package api

import (
	"context"

	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/service/reservation"
	"github.com/stretchr/testify/mock"
)

type MockReservationUseCase struct {
	mock.Mock
}

func (m *MockReservationUseCase) RequestReservation(ctx context.Context, input reservation.RequestInput) (*reservation.RequestResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.RequestResult), args.Error(1)
}

func (m *MockReservationUseCase) GetStatus(ctx context.Context, id string) (*domain.StatusView, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatusView), args.Error(1)
}

type MockVoiceUseCase struct {
	mock.Mock
}

func (m *MockVoiceUseCase) AnswerCall(ctx context.Context, reservationID string) (string, error) {
	args := m.Called(ctx, reservationID)
	return args.String(0), args.Error(1)
}

func (m *MockVoiceUseCase) HandleKeypress(ctx context.Context, reservationID, digits string) (string, error) {
	args := m.Called(ctx, reservationID, digits)
	return args.String(0), args.Error(1)
}

func (m *MockVoiceUseCase) ReconcileCallStatus(ctx context.Context, input reservation.CallStatusInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}
