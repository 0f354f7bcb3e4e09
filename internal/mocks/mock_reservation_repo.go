package mocks

import (
	"context"
	"time"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockReservationRepo struct {
	mock.Mock
	domain.ReservationRepository
}

func (m *MockReservationRepo) Create(ctx context.Context, reservation *domain.Reservation) error {
	args := m.Called(ctx, reservation)
	return args.Error(0)
}

func (m *MockReservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepo) ListByDate(ctx context.Context, date time.Time, pagination domain.Pagination) ([]domain.Reservation, *domain.Metadata, error) {
	args := m.Called(ctx, date, pagination)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]domain.Reservation), args.Get(1).(*domain.Metadata), args.Error(2)
}

func (m *MockReservationRepo) HeldTableIDs(ctx context.Context, slot domain.TimeSlot, now time.Time) ([]int, error) {
	args := m.Called(ctx, slot, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func (m *MockReservationRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.ReservationStatus, now time.Time) error {
	args := m.Called(ctx, id, from, to, now)
	return args.Error(0)
}

func (m *MockReservationRepo) ExpireHolds(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}
