package mocks

import (
	"context"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockTableLocker struct {
	mock.Mock
}

func (m *MockTableLocker) Lock(ctx context.Context, owner string, slot domain.TimeSlot, tableIDs []int) error {
	args := m.Called(ctx, owner, slot, tableIDs)
	return args.Error(0)
}

func (m *MockTableLocker) Unlock(ctx context.Context, owner string, slot domain.TimeSlot, tableIDs []int) error {
	args := m.Called(ctx, owner, slot, tableIDs)
	return args.Error(0)
}
