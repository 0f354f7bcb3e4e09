package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/denizerden/table-reservation-system/api"
	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/google/uuid"
)

// PaymentNotificationHandler ingests the payment gateway's webhook. Every
// notification is recorded for audit; only a successful one with the exact
// grand total confirms the reservation.
func (app *Application) PaymentNotificationHandler(w http.ResponseWriter, r *http.Request) {
	var input api.PaymentNotificationRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	reservationId := uuid.MustParse(input.ReservationId)

	payment := &domain.Payment{
		ReservationID: reservationId,
		Amount:        input.AmountPaid,
		Status:        domain.PaymentStatus(input.Status),
		ReceivedAt:    time.Now(),
	}

	err = app.paymentRepo.Create(r.Context(), payment)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	logger := app.contextGetLogger(r)

	if payment.Status != domain.PaymentStatusSuccess {
		logger.Info("payment failure recorded", "reservation_id", reservationId)

		w.WriteHeader(http.StatusNoContent)
		return
	}

	reservation, err := app.lifecycle.Confirm(r.Context(), reservationId, input.AmountPaid)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrHoldExpired):
			app.conflictResponse(w, r, ErrHoldExpired)
		case errors.Is(err, domain.ErrPaymentMismatch):
			app.unprocessableResponse(w, r, ErrPaymentMismatch)
		case errors.Is(err, domain.ErrEditConflict):
			app.conflictResponse(w, r, ErrInvalidTransition)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	logger.Info("reservation confirmed", "reservation_id", reservation.ID)

	app.background(func() {
		data := map[string]any{
			"ReservationId": reservation.ID.String(),
			"CustomerName":  reservation.CustomerName,
			"Date":          reservation.Slot.Start.Format("2006-01-02"),
			"StartTime":     reservation.Slot.Start.Format("15:04"),
			"PartySize":     reservation.PartySize,
			"GrandTotal":    reservation.GrandTotal.StringFixed(2),
		}

		err := app.mailer.Send(reservation.CustomerEmail, "reservation_confirmed.tmpl", data)
		if err != nil {
			app.logger.Error("failed to send confirmation email", "reservation_id", reservation.ID, "error", err)
		}
	})

	err = app.writeJSON(w, http.StatusOK, api.ReservationResponse{Reservation: toApiReservation(reservation)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
