package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// FoodItem is one pre-ordered line of a composite reservation. UnitPrice is
// the menu price snapshotted at order time; it is never re-priced later.
type FoodItem struct {
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (f FoodItem) LineTotal() decimal.Decimal {
	return f.UnitPrice.Mul(decimal.NewFromInt(int64(f.Quantity)))
}

type Reservation struct {
	ID            uuid.UUID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	TableIDs      []int
	Slot          TimeSlot
	PartySize     int
	Status        ReservationStatus
	FoodItems     []FoodItem

	TableFee   decimal.Decimal
	FoodTotal  decimal.Decimal
	GrandTotal decimal.Decimal

	// HoldOwner is the session token that acquired the table locks; lock
	// release must present it.
	HoldOwner string

	// HoldExpiresAt bounds how long a pending reservation keeps its tables.
	// Readers must treat a pending reservation past this instant as cancelled,
	// even before the sweeper marks it so.
	HoldExpiresAt   time.Time
	CreatedAt       time.Time
	StatusUpdatedAt time.Time
}

// CanTransition reports whether the status state machine allows moving to
// next. Terminal states admit no transition.
func (r *Reservation) CanTransition(next ReservationStatus) bool {
	switch r.Status {
	case StatusPending:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted
	default:
		return false
	}
}

// HoldExpired reports whether a pending reservation no longer holds its
// tables. Non-pending reservations never expire.
func (r *Reservation) HoldExpired(now time.Time) bool {
	return r.Status == StatusPending && !r.HoldExpiresAt.After(now)
}

// HoldsTables reports whether the reservation counts toward overlap checks at
// the given instant.
func (r *Reservation) HoldsTables(now time.Time) bool {
	switch r.Status {
	case StatusConfirmed:
		return true
	case StatusPending:
		return !r.HoldExpired(now)
	default:
		return false
	}
}

type ReservationRepository interface {
	// Create persists the reservation, its table claims and its food items in
	// one transaction. The write re-validates, under row locks on the claimed
	// tables, that no holding reservation overlaps the slot; it returns
	// ErrTableConflict when the claim lost the race.
	Create(ctx context.Context, reservation *Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Reservation, error)
	ListByDate(ctx context.Context, date time.Time, pagination Pagination) ([]Reservation, *Metadata, error)

	// HeldTableIDs returns ids of tables claimed by any reservation that
	// holds its tables (confirmed, or pending with an unexpired hold) and
	// overlaps the slot.
	HeldTableIDs(ctx context.Context, slot TimeSlot, now time.Time) ([]int, error)

	// UpdateStatus transitions the reservation from the expected current
	// status. A pending->confirmed transition additionally requires the hold
	// to be unexpired at now. Returns ErrEditConflict when no row matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to ReservationStatus, now time.Time) error

	// ExpireHolds marks pending reservations with elapsed holds as cancelled
	// and returns how many rows changed.
	ExpireHolds(ctx context.Context, now time.Time) (int64, error)
}
