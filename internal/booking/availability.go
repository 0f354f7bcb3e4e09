package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/denizerden/table-reservation-system/internal/domain"
)

// Availability computes which tables are free for a slot. Its answer is a
// snapshot: the authoritative exclusion happens inside the allocator, so a
// positive result here can still lose the race at claim time.
type Availability struct {
	tables       domain.TableRepository
	reservations domain.ReservationRepository
	now          func() time.Time
}

func NewAvailability(tables domain.TableRepository, reservations domain.ReservationRepository) *Availability {
	return &Availability{
		tables:       tables,
		reservations: reservations,
		now:          time.Now,
	}
}

// FindTables returns the table combination that would seat the party for the
// slot, or domain.ErrInsufficientCapacity when even all free tables fall
// short. Expired pending holds do not count as occupancy.
func (a *Availability) FindTables(ctx context.Context, slot domain.TimeSlot, partySize int) ([]domain.Table, error) {
	active, err := a.tables.GetActiveTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active tables: %w", err)
	}

	heldIDs, err := a.reservations.HeldTableIDs(ctx, slot, a.now())
	if err != nil {
		return nil, fmt.Errorf("failed to query held tables: %w", err)
	}

	held := make(map[int]bool, len(heldIDs))
	for _, id := range heldIDs {
		held[id] = true
	}

	free := make([]domain.Table, 0, len(active))
	for _, t := range active {
		if !held[t.ID] {
			free = append(free, t)
		}
	}

	return PlanTables(free, partySize)
}

// PlanTables selects the smallest-capacity combination of free tables whose
// summed capacity covers the party, using an ascending-capacity fill: whenever
// a single remaining table covers what is still needed, the smallest such
// table is taken and the fill stops; otherwise the smallest table is taken
// and the fill continues. Ties break on the lower table id so results are
// deterministic.
func PlanTables(free []domain.Table, partySize int) ([]domain.Table, error) {
	if partySize < 1 {
		return nil, fmt.Errorf("party size must be positive, got %d", partySize)
	}

	total := 0
	for _, t := range free {
		total += t.Capacity
	}
	if total < partySize {
		return nil, domain.ErrInsufficientCapacity
	}

	pool := make([]domain.Table, len(free))
	copy(pool, free)
	sort.Slice(pool, func(i, j int) bool {
		if pool[i].Capacity != pool[j].Capacity {
			return pool[i].Capacity < pool[j].Capacity
		}
		return pool[i].ID < pool[j].ID
	})

	var chosen []domain.Table
	need := partySize

	for need > 0 {
		// Smallest single table that covers the remaining need finishes the
		// fill; without one, the smallest table shrinks the need.
		idx := sort.Search(len(pool), func(i int) bool { return pool[i].Capacity >= need })
		if idx == len(pool) {
			idx = 0
		}

		chosen = append(chosen, pool[idx])
		need -= pool[idx].Capacity
		pool = append(pool[:idx], pool[idx+1:]...)
	}

	return chosen, nil
}

// TableIDs projects a table combination onto its ids, preserving order.
func TableIDs(tables []domain.Table) []int {
	ids := make([]int, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	return ids
}
