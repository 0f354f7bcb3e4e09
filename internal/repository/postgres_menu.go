package repository

import (
	"context"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PostgresMenuRepository struct {
	db *pgxpool.Pool
}

func NewPostgresMenuRepository(db *pgxpool.Pool) *PostgresMenuRepository {
	return &PostgresMenuRepository{
		db: db,
	}
}

func (p *PostgresMenuRepository) GetPricesByNames(ctx context.Context, names []string) (map[string]decimal.Decimal, error) {
	query := `
		SELECT name, price
		FROM menu_items
		WHERE name = ANY($1) AND available
	`

	rows, err := p.db.Query(ctx, query, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[string]decimal.Decimal, len(names))

	for rows.Next() {
		var item domain.MenuItem

		err = rows.Scan(&item.Name, &item.Price)
		if err != nil {
			return nil, err
		}

		prices[item.Name] = item.Price
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return prices, nil
}
