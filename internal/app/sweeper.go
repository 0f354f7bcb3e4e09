package app

import (
	"context"
	"time"
)

// sweepExpiredHolds periodically cancels pending reservations whose holds
// elapsed. Overlap checks already ignore expired holds, so the sweep only
// keeps stored records in line with what the engine considers booked.
func (app *Application) sweepExpiredHolds(ctx context.Context) {
	ticker := time.NewTicker(app.config.Booking.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)

			expired, err := app.lifecycle.ExpireHolds(sweepCtx)
			cancel()

			if err != nil {
				app.logger.Error("failed to sweep expired holds", "error", err)
				continue
			}

			if expired > 0 {
				app.logger.Info("expired reservation holds swept", "count", expired)
			}
		}
	}
}
