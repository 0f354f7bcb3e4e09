package repository

import (
	"context"
	"errors"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (reservation_id, amount, status, received_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.ReservationID,
		payment.Amount,
		payment.Status,
		payment.ReceivedAt).Scan(&payment.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return domain.ErrRecordNotFound
		}

		return err
	}

	return nil
}

func (p *PostgresPaymentRepository) GetByReservationID(ctx context.Context, reservationID uuid.UUID) ([]domain.Payment, error) {
	query := `
		SELECT id, reservation_id, amount, status, received_at
		FROM payments
		WHERE reservation_id = $1
		ORDER BY received_at
	`

	rows, err := p.db.Query(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := make([]domain.Payment, 0)

	for rows.Next() {
		var payment domain.Payment

		err = rows.Scan(
			&payment.ID,
			&payment.ReservationID,
			&payment.Amount,
			&payment.Status,
			&payment.ReceivedAt,
		)
		if err != nil {
			return nil, err
		}

		payments = append(payments, payment)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return payments, nil
}
