package mocks

import (
	"context"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockMenuRepo struct {
	mock.Mock
	domain.MenuRepository
}

func (m *MockMenuRepo) GetPricesByNames(ctx context.Context, names []string) (map[string]decimal.Decimal, error) {
	args := m.Called(ctx, names)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]decimal.Decimal), args.Error(1)
}
