package app

import (
	"errors"
	"net/http"

	"github.com/denizerden/table-reservation-system/api"
	"github.com/denizerden/table-reservation-system/internal/booking"
	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (app *Application) CreateReservationHandler(w http.ResponseWriter, r *http.Request) {
	var input api.CreateReservationRequest

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

	start, err := app.readSlotStart(input.Date, input.Time)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	foodOrder := make([]booking.OrderLine, len(input.FoodItems))
	for i, item := range input.FoodItems {
		foodOrder[i] = booking.OrderLine{Name: item.Name, Quantity: item.Quantity}
	}

	owner := app.sessionManager.Token(r.Context())

	reservation, err := app.lifecycle.Create(r.Context(), owner, booking.CreateRequest{
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		Start:         start,
		PartySize:     input.PartySize,
		FoodOrder:     foodOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOutOfRangeSlot):
			app.unprocessableResponse(w, r, ErrOutOfRangeSlot)
		case errors.Is(err, domain.ErrInsufficientCapacity):
			app.conflictResponse(w, r, ErrInsufficientCapacity)
		case errors.Is(err, domain.ErrTableConflict):
			app.conflictResponse(w, r, ErrTableConflict)
		case errors.Is(err, domain.ErrUnknownMenuItem):
			app.unprocessableResponse(w, r, err.Error())
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	logger := app.contextGetLogger(r)
	logger.Info("reservation created",
		"reservation_id", reservation.ID,
		"tables", reservation.TableIDs,
		"hold_expires_at", reservation.HoldExpiresAt,
	)

	resp := api.CreateReservationResponse{
		ReservationId: reservation.ID.String(),
		Status:        string(reservation.Status),
		GrandTotal:    reservation.GrandTotal,
		HoldExpiresAt: reservation.HoldExpiresAt,
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetReservationHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "reservationId"))
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	reservation, err := app.reservationRepo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponse(w, r)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, api.ReservationResponse{Reservation: toApiReservation(reservation)}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

type listReservationsParams struct {
	Date     string `validate:"required,calendar_date"`
	Page     int    `validate:"min=1"`
	PageSize int    `validate:"min=1,max=100"`
}

func (app *Application) ListReservationsHandler(w http.ResponseWriter, r *http.Request) {
	params := listReservationsParams{
		Date:     r.URL.Query().Get("date"),
		Page:     readIntQuery(r, "page", 1),
		PageSize: readIntQuery(r, "pageSize", 20),
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	date, err := app.readDate(params.Date)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	pagination := domain.Pagination{Page: params.Page, PageSize: params.PageSize}

	reservations, metadata, err := app.reservationRepo.ListByDate(r.Context(), date, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ReservationListResponse{
		Reservations: make([]api.Reservation, len(reservations)),
		Metadata:     toApiMetadata(metadata),
	}

	for i := range reservations {
		resp.Reservations[i] = toApiReservation(&reservations[i])
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiReservation(reservation *domain.Reservation) api.Reservation {
	out := api.Reservation{
		Id:              reservation.ID.String(),
		CustomerName:    reservation.CustomerName,
		CustomerEmail:   reservation.CustomerEmail,
		CustomerPhone:   reservation.CustomerPhone,
		Date:            reservation.Slot.Start.Format("2006-01-02"),
		StartTime:       reservation.Slot.Start.Format("15:04"),
		DurationMinutes: int(reservation.Slot.Duration.Minutes()),
		PartySize:       reservation.PartySize,
		TableIds:        reservation.TableIDs,
		Status:          string(reservation.Status),
		TableFee:        reservation.TableFee,
		FoodTotal:       reservation.FoodTotal,
		GrandTotal:      reservation.GrandTotal,
		CreatedAt:       reservation.CreatedAt,
		StatusUpdatedAt: reservation.StatusUpdatedAt,
	}

	if reservation.Status == domain.StatusPending {
		holdExpiresAt := reservation.HoldExpiresAt
		out.HoldExpiresAt = &holdExpiresAt
	}

	for _, item := range reservation.FoodItems {
		out.FoodItems = append(out.FoodItems, api.FoodItem{
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
		})
	}

	return out
}

func toApiMetadata(metadata *domain.Metadata) *api.Metadata {
	if metadata == nil {
		return nil
	}

	return &api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
