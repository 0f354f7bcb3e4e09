package domain

import "context"

// Table is a physical table in the dining room. Capacity and id never change
// while the table is active; retiring a table is an administrative concern
// outside this service.
type Table struct {
	ID       int
	Capacity int
	Active   bool
}

type TableRepository interface {
	// GetActiveTables returns every active table. An empty registry yields an
	// empty slice, not an error: callers treat it as zero capacity.
	GetActiveTables(ctx context.Context) ([]Table, error)
	GetByIDs(ctx context.Context, ids []int) ([]Table, error)
}
