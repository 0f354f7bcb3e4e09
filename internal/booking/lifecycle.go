package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/denizerden/table-reservation-system/internal/schedule"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine is one requested food item before pricing.
type OrderLine struct {
	Name     string
	Quantity int
}

// CreateRequest carries everything needed to book a slot. A table-only
// reservation simply has no food lines; both variants flow through the same
// path and persist atomically.
type CreateRequest struct {
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Start         time.Time
	PartySize     int
	FoodOrder     []OrderLine
}

// Lifecycle owns the reservation state machine and composes allocation,
// pricing and persistence into single atomic operations.
type Lifecycle struct {
	calendar     *schedule.Calendar
	availability *Availability
	allocator    *Allocator
	locker       TableLocker
	menu         domain.MenuRepository
	reservations domain.ReservationRepository
	tableFee     decimal.Decimal
	now          func() time.Time
}

func NewLifecycle(
	calendar *schedule.Calendar,
	availability *Availability,
	allocator *Allocator,
	locker TableLocker,
	menu domain.MenuRepository,
	reservations domain.ReservationRepository,
	tableFee decimal.Decimal) *Lifecycle {

	return &Lifecycle{
		calendar:     calendar,
		availability: availability,
		allocator:    allocator,
		locker:       locker,
		menu:         menu,
		reservations: reservations,
		tableFee:     tableFee,
		now:          time.Now,
	}
}

// Create validates the slot, plans a table combination, prices the optional
// food order from the current menu, and allocates. The returned reservation
// is pending with a bounded hold; its totals were persisted together with the
// table claim.
func (l *Lifecycle) Create(ctx context.Context, owner string, req CreateRequest) (*domain.Reservation, error) {
	err := l.calendar.Validate(req.Start)
	if err != nil {
		return nil, err
	}

	slot := l.calendar.Slot(req.Start)

	tables, err := l.availability.FindTables(ctx, slot, req.PartySize)
	if err != nil {
		return nil, err
	}

	items, err := l.priceFoodOrder(ctx, req.FoodOrder)
	if err != nil {
		return nil, err
	}

	reservation := &domain.Reservation{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		TableIDs:      TableIDs(tables),
		Slot:          slot,
		PartySize:     req.PartySize,
		FoodItems:     items,
	}

	reservation.TableFee, reservation.FoodTotal, reservation.GrandTotal = PriceOrder(l.tableFee, len(tables), items)

	err = l.allocator.Allocate(ctx, owner, reservation)
	if err != nil {
		return nil, err
	}

	return reservation, nil
}

// PriceOrder derives the three totals of a composite reservation. GrandTotal
// is never stored independently: every write path recomputes it here.
func PriceOrder(feePerTable decimal.Decimal, tableCount int, items []domain.FoodItem) (tableFee, foodTotal, grandTotal decimal.Decimal) {
	tableFee = feePerTable.Mul(decimal.NewFromInt(int64(tableCount)))

	foodTotal = decimal.Zero
	for _, item := range items {
		foodTotal = foodTotal.Add(item.LineTotal())
	}

	return tableFee, foodTotal, tableFee.Add(foodTotal)
}

func (l *Lifecycle) priceFoodOrder(ctx context.Context, lines []OrderLine) ([]domain.FoodItem, error) {
	if len(lines) == 0 {
		return nil, nil
	}

	names := make([]string, len(lines))
	for i, line := range lines {
		names[i] = line.Name
	}

	prices, err := l.menu.GetPricesByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to price food order: %w", err)
	}

	items := make([]domain.FoodItem, len(lines))
	for i, line := range lines {
		price, ok := prices[line.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownMenuItem, line.Name)
		}

		items[i] = domain.FoodItem{
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: price,
		}
	}

	return items, nil
}

// Confirm applies the external payment-confirmed signal. It succeeds only
// from pending, only while the hold is alive, and only when the paid amount
// equals the grand total; a mismatch leaves the reservation pending.
func (l *Lifecycle) Confirm(ctx context.Context, id uuid.UUID, amountPaid decimal.Decimal) (*domain.Reservation, error) {
	reservation, err := l.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := l.now()

	if reservation.HoldExpired(now) {
		return nil, domain.ErrHoldExpired
	}

	if !reservation.CanTransition(domain.StatusConfirmed) {
		return nil, domain.ErrEditConflict
	}

	if !amountPaid.Equal(reservation.GrandTotal) {
		return nil, domain.ErrPaymentMismatch
	}

	err = l.reservations.UpdateStatus(ctx, id, domain.StatusPending, domain.StatusConfirmed, now)
	if err != nil {
		if errors.Is(err, domain.ErrEditConflict) && reservation.HoldExpired(l.now()) {
			// The hold ran out between the read and the write.
			return nil, domain.ErrHoldExpired
		}

		return nil, err
	}

	return l.reservations.GetByID(ctx, id)
}

// Cancel moves a pending or confirmed reservation to cancelled and releases
// its tables for future overlap checks. Terminal states reject it.
func (l *Lifecycle) Cancel(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	reservation, err := l.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !reservation.CanTransition(domain.StatusCancelled) {
		return nil, domain.ErrEditConflict
	}

	err = l.reservations.UpdateStatus(ctx, id, reservation.Status, domain.StatusCancelled, l.now())
	if err != nil {
		return nil, err
	}

	// Best effort: the locks would expire on their own anyway. The stored
	// owner scopes the release to locks this reservation still holds.
	_ = l.locker.Unlock(ctx, reservation.HoldOwner, reservation.Slot, reservation.TableIDs)

	return l.reservations.GetByID(ctx, id)
}

// Complete closes out a confirmed reservation. Explicit admin action may do
// it early; otherwise it is meant for after the slot has elapsed. Completed
// is terminal and the slot itself has passed, so no table release is needed.
func (l *Lifecycle) Complete(ctx context.Context, id uuid.UUID) (*domain.Reservation, error) {
	reservation, err := l.reservations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !reservation.CanTransition(domain.StatusCompleted) {
		return nil, domain.ErrEditConflict
	}

	err = l.reservations.UpdateStatus(ctx, id, domain.StatusConfirmed, domain.StatusCompleted, l.now())
	if err != nil {
		return nil, err
	}

	return l.reservations.GetByID(ctx, id)
}

// ExpireHolds physically cancels pending reservations whose holds elapsed.
// Overlap checks already ignore them; the sweep keeps records consistent.
func (l *Lifecycle) ExpireHolds(ctx context.Context) (int64, error) {
	return l.reservations.ExpireHolds(ctx, l.now())
}
