package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// MenuItem is the slice of the menu catalog this engine reads: a name bound
// to its current price. Catalog management lives elsewhere.
type MenuItem struct {
	Name      string
	Price     decimal.Decimal
	Available bool
}

type MenuRepository interface {
	// GetPricesByNames resolves item names to their current prices. Names
	// missing from the catalog are absent from the result; the caller decides
	// whether that is an error.
	GetPricesByNames(ctx context.Context, names []string) (map[string]decimal.Decimal, error)
}
