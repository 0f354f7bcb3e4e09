package booking

import (
	"context"
	"errors"
	"time"

	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/google/uuid"
)

// Allocator owns the exclusive claim of tables for a reservation. The claim
// is two-staged: a fail-fast lock in Redis bounds contention, then the
// repository's transactional insert re-validates overlap under row locks and
// either persists the pending reservation or reports the lost race. Requests
// for disjoint tables or non-overlapping slots never contend with each other.
type Allocator struct {
	locker       TableLocker
	reservations domain.ReservationRepository
	holdTTL      time.Duration
	now          func() time.Time
}

func NewAllocator(locker TableLocker, reservations domain.ReservationRepository, holdTTL time.Duration) *Allocator {
	return &Allocator{
		locker:       locker,
		reservations: reservations,
		holdTTL:      holdTTL,
		now:          time.Now,
	}
}

// Allocate claims reservation.TableIDs for reservation.Slot and persists the
// reservation as pending with a bounded hold. On domain.ErrTableConflict the
// caller should re-run availability and retry with another combination.
func (a *Allocator) Allocate(ctx context.Context, owner string, reservation *domain.Reservation) error {
	if len(reservation.TableIDs) == 0 {
		return errors.New("allocation requires at least one table")
	}

	err := a.locker.Lock(ctx, owner, reservation.Slot, reservation.TableIDs)
	if err != nil {
		return err
	}

	now := a.now()

	reservation.ID = uuid.New()
	reservation.Status = domain.StatusPending
	reservation.HoldOwner = owner
	reservation.HoldExpiresAt = now.Add(a.holdTTL)
	reservation.CreatedAt = now
	reservation.StatusUpdatedAt = now

	err = a.reservations.Create(ctx, reservation)
	if err != nil {
		// The locks guard an allocation that no longer exists.
		_ = a.locker.Unlock(ctx, owner, reservation.Slot, reservation.TableIDs)
		return err
	}

	return nil
}
