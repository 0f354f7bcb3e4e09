package app

import (
	"errors"
	"net/http"

	"github.com/denizerden/table-reservation-system/api"
	"github.com/denizerden/table-reservation-system/internal/domain"
)

type availabilityParams struct {
	Date      string `validate:"required,calendar_date"`
	Time      string `validate:"required,clock_time"`
	PartySize int    `validate:"required,min=1,max=100"`
}

func (app *Application) GetAvailabilityHandler(w http.ResponseWriter, r *http.Request) {
	params := availabilityParams{
		Date:      r.URL.Query().Get("date"),
		Time:      r.URL.Query().Get("time"),
		PartySize: readIntQuery(r, "partySize", 0),
	}

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	start, err := app.readSlotStart(params.Date, params.Time)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.calendar.Validate(start)
	if err != nil {
		if errors.Is(err, domain.ErrOutOfRangeSlot) {
			app.unprocessableResponse(w, r, ErrOutOfRangeSlot)
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	tables, err := app.availability.FindTables(r.Context(), app.calendar.Slot(start), params.PartySize)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientCapacity) {
			err = app.writeJSON(w, http.StatusOK, api.AvailabilityResponse{Available: false, Tables: []api.Table{}}, nil)
			if err != nil {
				app.serverErrorResponse(w, r, err)
			}
			return
		}

		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.AvailabilityResponse{
		Available: true,
		Tables:    toApiTables(tables),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiTables(tables []domain.Table) []api.Table {
	apiTables := make([]api.Table, len(tables))

	for i, t := range tables {
		apiTables[i] = api.Table{
			Id:       t.ID,
			Capacity: t.Capacity,
		}
	}

	return apiTables
}

type slotsParams struct {
	Date string `validate:"required,calendar_date"`
}

func (app *Application) GetSlotsHandler(w http.ResponseWriter, r *http.Request) {
	params := slotsParams{
		Date: r.URL.Query().Get("date"),
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

	slots := app.calendar.Slots(date)

	resp := api.SlotsResponse{
		Date:  params.Date,
		Slots: make([]api.Slot, len(slots)),
	}

	for i, slot := range slots {
		resp.Slots[i] = api.Slot{
			StartTime:       slot.Start.Format("15:04"),
			DurationMinutes: int(slot.Duration.Minutes()),
		}
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
