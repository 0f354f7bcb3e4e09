package repository

import (
	"context"
	"errors"
	"time"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresReservationRepository struct {
	db *pgxpool.Pool
}

func NewPostgresReservationRepository(db *pgxpool.Pool) *PostgresReservationRepository {
	return &PostgresReservationRepository{
		db: db,
	}
}

// Create performs the exclusive claim. Inside one transaction it row-locks
// the claimed tables in ascending id order, re-checks that no holding
// reservation overlaps the slot, and inserts the reservation with its table
// links and food items. Two transactions claiming a common table serialize on
// the row locks, so the re-check is race-free; disjoint claims do not block
// each other.
func (p *PostgresReservationRepository) Create(ctx context.Context, reservation *domain.Reservation) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			SELECT id
			FROM restaurant_tables
			WHERE id = ANY($1) AND active
			ORDER BY id
			FOR UPDATE
		`

		rows, err := tx.Query(ctx, query, reservation.TableIDs)
		if err != nil {
			return err
		}

		locked := 0
		for rows.Next() {
			var id int
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			locked++
		}
		rows.Close()

		if err = rows.Err(); err != nil {
			return err
		}

		// A table retired between the availability check and the claim is a
		// lost race, not a server fault.
		if locked != len(reservation.TableIDs) {
			return domain.ErrTableConflict
		}

		query = `
			SELECT 1
			FROM reservation_tables rt
			JOIN reservations r ON rt.reservation_id = r.id
			WHERE rt.table_id = ANY($1)
			  AND r.slot_start < $3
			  AND r.slot_start + make_interval(mins => r.slot_duration_mins) > $2
			  AND (r.status = 'confirmed' OR (r.status = 'pending' AND r.hold_expires_at > $4))
			LIMIT 1
		`

		var one int
		err = tx.QueryRow(
			ctx,
			query,
			reservation.TableIDs,
			reservation.Slot.Start,
			reservation.Slot.End(),
			reservation.CreatedAt,
		).Scan(&one)

		if err == nil {
			return domain.ErrTableConflict
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}

		query = `
			INSERT INTO reservations (
				id, customer_name, customer_email, customer_phone,
				slot_start, slot_duration_mins, party_size, status,
				table_fee, food_total, grand_total,
				hold_owner, hold_expires_at, created_at, status_updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		`

		_, err = tx.Exec(
			ctx,
			query,
			reservation.ID,
			reservation.CustomerName,
			reservation.CustomerEmail,
			reservation.CustomerPhone,
			reservation.Slot.Start,
			int(reservation.Slot.Duration.Minutes()),
			reservation.PartySize,
			reservation.Status,
			reservation.TableFee,
			reservation.FoodTotal,
			reservation.GrandTotal,
			reservation.HoldOwner,
			reservation.HoldExpiresAt,
			reservation.CreatedAt,
			reservation.StatusUpdatedAt,
		)
		if err != nil {
			return err
		}

		tableRows := make([][]any, 0, len(reservation.TableIDs))
		for _, tableID := range reservation.TableIDs {
			tableRows = append(tableRows, []any{reservation.ID, tableID})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"reservation_tables"},
			[]string{"reservation_id", "table_id"},
			pgx.CopyFromRows(tableRows),
		)
		if err != nil {
			return err
		}

		if len(reservation.FoodItems) == 0 {
			return nil
		}

		itemRows := make([][]any, 0, len(reservation.FoodItems))
		for i, item := range reservation.FoodItems {
			itemRows = append(itemRows, []any{reservation.ID, i, item.Name, item.Quantity, item.UnitPrice})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"reservation_items"},
			[]string{"reservation_id", "position", "name", "quantity", "unit_price"},
			pgx.CopyFromRows(itemRows),
		)

		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation, pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected:
				return domain.ErrTableConflict
			}
		}

		return err
	}

	return nil
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}

func (p *PostgresReservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	query := `
		SELECT
			id, customer_name, customer_email, customer_phone,
			slot_start, slot_duration_mins, party_size, status,
			table_fee, food_total, grand_total,
			hold_owner, hold_expires_at, created_at, status_updated_at
		FROM reservations
		WHERE id = $1
	`

	var reservation domain.Reservation
	var durationMins int

	err := p.db.QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.CustomerName,
		&reservation.CustomerEmail,
		&reservation.CustomerPhone,
		&reservation.Slot.Start,
		&durationMins,
		&reservation.PartySize,
		&reservation.Status,
		&reservation.TableFee,
		&reservation.FoodTotal,
		&reservation.GrandTotal,
		&reservation.HoldOwner,
		&reservation.HoldExpiresAt,
		&reservation.CreatedAt,
		&reservation.StatusUpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	reservation.Slot.Duration = time.Duration(durationMins) * time.Minute

	reservation.TableIDs, err = p.retrieveTableIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	reservation.FoodItems, err = p.retrieveFoodItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return &reservation, nil
}

func (p *PostgresReservationRepository) retrieveTableIDs(ctx context.Context, reservationID uuid.UUID) ([]int, error) {
	query := `
		SELECT table_id
		FROM reservation_tables
		WHERE reservation_id = $1
		ORDER BY table_id
	`

	rows, err := p.db.Query(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tableIDs := make([]int, 0)

	for rows.Next() {
		var tableID int

		if err = rows.Scan(&tableID); err != nil {
			return nil, err
		}

		tableIDs = append(tableIDs, tableID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tableIDs, nil
}

func (p *PostgresReservationRepository) retrieveFoodItems(ctx context.Context, reservationID uuid.UUID) ([]domain.FoodItem, error) {
	query := `
		SELECT name, quantity, unit_price
		FROM reservation_items
		WHERE reservation_id = $1
		ORDER BY position
	`

	rows, err := p.db.Query(ctx, query, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.FoodItem

	for rows.Next() {
		var item domain.FoodItem

		err = rows.Scan(&item.Name, &item.Quantity, &item.UnitPrice)
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (p *PostgresReservationRepository) ListByDate(
	ctx context.Context,
	date time.Time,
	pagination domain.Pagination) ([]domain.Reservation, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			id, customer_name, customer_email, customer_phone,
			slot_start, slot_duration_mins, party_size, status,
			table_fee, food_total, grand_total,
			hold_owner, hold_expires_at, created_at, status_updated_at
		FROM reservations
		WHERE slot_start >= $1 AND slot_start < $2
		ORDER BY slot_start, created_at
		LIMIT $3 OFFSET $4
	`

	dayStart := date
	dayEnd := date.AddDate(0, 0, 1)

	rows, err := p.db.Query(ctx, query, dayStart, dayEnd, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	reservations := make([]domain.Reservation, 0)
	totalRecords := 0

	for rows.Next() {
		var reservation domain.Reservation
		var durationMins int

		err = rows.Scan(
			&totalRecords,
			&reservation.ID,
			&reservation.CustomerName,
			&reservation.CustomerEmail,
			&reservation.CustomerPhone,
			&reservation.Slot.Start,
			&durationMins,
			&reservation.PartySize,
			&reservation.Status,
			&reservation.TableFee,
			&reservation.FoodTotal,
			&reservation.GrandTotal,
			&reservation.HoldOwner,
			&reservation.HoldExpiresAt,
			&reservation.CreatedAt,
			&reservation.StatusUpdatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		reservation.Slot.Duration = time.Duration(durationMins) * time.Minute

		reservations = append(reservations, reservation)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	for i := range reservations {
		reservations[i].TableIDs, err = p.retrieveTableIDs(ctx, reservations[i].ID)
		if err != nil {
			return nil, nil, err
		}

		reservations[i].FoodItems, err = p.retrieveFoodItems(ctx, reservations[i].ID)
		if err != nil {
			return nil, nil, err
		}
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return reservations, metadata, nil
}

func (p *PostgresReservationRepository) HeldTableIDs(ctx context.Context, slot domain.TimeSlot, now time.Time) ([]int, error) {
	query := `
		SELECT DISTINCT rt.table_id
		FROM reservation_tables rt
		JOIN reservations r ON rt.reservation_id = r.id
		WHERE r.slot_start < $2
		  AND r.slot_start + make_interval(mins => r.slot_duration_mins) > $1
		  AND (r.status = 'confirmed' OR (r.status = 'pending' AND r.hold_expires_at > $3))
	`

	rows, err := p.db.Query(ctx, query, slot.Start, slot.End(), now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tableIDs := make([]int, 0)

	for rows.Next() {
		var tableID int

		if err = rows.Scan(&tableID); err != nil {
			return nil, err
		}

		tableIDs = append(tableIDs, tableID)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tableIDs, nil
}

func (p *PostgresReservationRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to domain.ReservationStatus,
	now time.Time) error {

	query := `
		UPDATE reservations
		SET status = $1, status_updated_at = $2
		WHERE id = $3 AND status = $4
	`

	args := []any{to, now, id, from}

	// Confirmation additionally requires a live hold.
	if from == domain.StatusPending && to == domain.StatusConfirmed {
		query += ` AND hold_expires_at > $5`
		args = append(args, now)
	}

	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrEditConflict
	}

	return nil
}

func (p *PostgresReservationRepository) ExpireHolds(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE reservations
		SET status = 'cancelled', status_updated_at = $1
		WHERE status = 'pending' AND hold_expires_at <= $1
	`

	tag, err := p.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
