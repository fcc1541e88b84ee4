package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"vehicle-rental-backend/internal/domain"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyBookingCreated(ctx context.Context, booking *domain.Booking) {
	m.Called(ctx, booking)
}

func (m *MockNotifier) NotifyPaymentCompleted(ctx context.Context, ticket *domain.Ticket) {
	m.Called(ctx, ticket)
}

type MockTicketCache struct {
	mock.Mock
}

func (m *MockTicketCache) Get(ctx context.Context, bookingID int32) (*domain.Ticket, bool, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Ticket), args.Bool(1), args.Error(2)
}

func (m *MockTicketCache) Set(ctx context.Context, ticket *domain.Ticket) error {
	args := m.Called(ctx, ticket)
	return args.Error(0)
}

func (m *MockTicketCache) Delete(ctx context.Context, bookingID int32) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}
