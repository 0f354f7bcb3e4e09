package mocks

import (
	"context"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockTableRepo struct {
	mock.Mock
	domain.TableRepository
}

func (m *MockTableRepo) GetActiveTables(ctx context.Context) ([]domain.Table, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Table), args.Error(1)
}

func (m *MockTableRepo) GetByIDs(ctx context.Context, ids []int) ([]domain.Table, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Table), args.Error(1)
}
