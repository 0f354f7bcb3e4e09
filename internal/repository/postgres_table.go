package repository

import (
	"context"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresTableRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTableRepository(db *pgxpool.Pool) *PostgresTableRepository {
	return &PostgresTableRepository{
		db: db,
	}
}

func (p *PostgresTableRepository) GetActiveTables(ctx context.Context) ([]domain.Table, error) {
	query := `
		SELECT id, capacity, active
		FROM restaurant_tables
		WHERE active
		ORDER BY id
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]domain.Table, 0)

	for rows.Next() {
		var table domain.Table

		err = rows.Scan(&table.ID, &table.Capacity, &table.Active)
		if err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tables, nil
}

func (p *PostgresTableRepository) GetByIDs(ctx context.Context, ids []int) ([]domain.Table, error) {
	query := `
		SELECT id, capacity, active
		FROM restaurant_tables
		WHERE id = ANY($1)
		ORDER BY id
	`

	rows, err := p.db.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := make([]domain.Table, 0)

	for rows.Next() {
		var table domain.Table

		err = rows.Scan(&table.ID, &table.Capacity, &table.Active)
		if err != nil {
			return nil, err
		}

		tables = append(tables, table)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tables, nil
}
