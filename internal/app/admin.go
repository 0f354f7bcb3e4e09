package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/denizerden/table-reservation-system/api"
	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (app *Application) AdminCancelReservationHandler(w http.ResponseWriter, r *http.Request) {
	app.adminTransitionHandler(w, r, app.lifecycle.Cancel, "reservation cancelled")
}

func (app *Application) AdminCompleteReservationHandler(w http.ResponseWriter, r *http.Request) {
	app.adminTransitionHandler(w, r, app.lifecycle.Complete, "reservation completed")
}

func (app *Application) adminTransitionHandler(
	w http.ResponseWriter,
	r *http.Request,
	transition func(ctx context.Context, id uuid.UUID) (*domain.Reservation, error),
	logMessage string,
) {
	id, err := uuid.Parse(chi.URLParam(r, "reservationId"))
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	reservation, err := transition(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrEditConflict):
			app.conflictResponse(w, r, ErrInvalidTransition)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.contextGetLogger(r).Info(logMessage, "reservation_id", reservation.ID)

	err = app.writeJSON(w, http.StatusOK, api.ReservationResponse{Reservation: toApiReservation(reservation)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
