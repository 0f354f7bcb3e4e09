package app

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/denizerden/table-reservation-system/api"
	"github.com/denizerden/table-reservation-system/internal/booking"
	"github.com/denizerden/table-reservation-system/internal/domain"
	"github.com/denizerden/table-reservation-system/internal/mocks"
	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReservationsTestSuite struct {
	suite.Suite
	app             *Application
	tableRepo       *mocks.MockTableRepo
	menuRepo        *mocks.MockMenuRepo
	reservationRepo *mocks.MockReservationRepo
	locker          *mocks.MockTableLocker
}

func (s *ReservationsTestSuite) SetupTest() {
	s.tableRepo = new(mocks.MockTableRepo)
	s.menuRepo = new(mocks.MockMenuRepo)
	s.reservationRepo = new(mocks.MockReservationRepo)
	s.locker = new(mocks.MockTableLocker)

	s.app = newTestApplication(s.T(), func(a *Application) {
		availability := booking.NewAvailability(s.tableRepo, s.reservationRepo)
		allocator := booking.NewAllocator(s.locker, s.reservationRepo, 10*time.Minute)

		a.tableRepo = s.tableRepo
		a.menuRepo = s.menuRepo
		a.reservationRepo = s.reservationRepo
		a.availability = availability
		a.lifecycle = booking.NewLifecycle(
			a.calendar, availability, allocator, s.locker, s.menuRepo, s.reservationRepo, decimal.NewFromInt(500),
		)
	})
}

func TestReservationsSuite(t *testing.T) {
	suite.Run(t, new(ReservationsTestSuite))
}

func validCreateRequest() api.CreateReservationRequest {
	return api.CreateReservationRequest{
		CustomerName:  "Deniz Erden",
		CustomerEmail: "deniz@example.com",
		CustomerPhone: "+90 555 000 00 00",
		Date:          "2025-06-03",
		Time:          "18:30",
		PartySize:     4,
	}
}

func (s *ReservationsTestSuite) TestCreateReservationHandler() {
	tests := []struct {
		name           string
		mutate         func(req *api.CreateReservationRequest)
		setupMock      func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "missing customer name",
			mutate:         func(req *api.CreateReservationRequest) { req.CustomerName = "" },
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is required",
		},
		{
			name:           "invalid email",
			mutate:         func(req *api.CreateReservationRequest) { req.CustomerEmail = "not-an-email" },
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be a valid email address",
		},
		{
			name:           "zero party size",
			mutate:         func(req *api.CreateReservationRequest) { req.PartySize = 0 },
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is required",
		},
		{
			name:           "slot on a closed day",
			mutate:         func(req *api.CreateReservationRequest) { req.Date = "2025-06-08" },
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: ErrOutOfRangeSlot,
		},
		{
			name:   "insufficient capacity",
			mutate: func(req *api.CreateReservationRequest) { req.PartySize = 30 },
			setupMock: func() {
				s.tableRepo.On("GetActiveTables", mock.Anything).Return([]domain.Table{
					{ID: 1, Capacity: 4, Active: true},
				}, nil)
				s.reservationRepo.On("HeldTableIDs", mock.Anything, mock.Anything, mock.Anything).Return([]int{}, nil)
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: ErrInsufficientCapacity,
		},
		{
			name: "lost the claim race",
			setupMock: func() {
				s.tableRepo.On("GetActiveTables", mock.Anything).Return([]domain.Table{
					{ID: 1, Capacity: 4, Active: true},
				}, nil)
				s.reservationRepo.On("HeldTableIDs", mock.Anything, mock.Anything, mock.Anything).Return([]int{}, nil)
				s.locker.On("Lock", mock.Anything, mock.Anything, mock.Anything, []int{1}).
					Return(domain.ErrTableConflict)
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: ErrTableConflict,
		},
		{
			name: "unknown menu item",
			mutate: func(req *api.CreateReservationRequest) {
				req.FoodItems = []api.FoodItemRequest{{Name: "Lahmacun", Quantity: 1}}
			},
			setupMock: func() {
				s.tableRepo.On("GetActiveTables", mock.Anything).Return([]domain.Table{
					{ID: 1, Capacity: 4, Active: true},
				}, nil)
				s.reservationRepo.On("HeldTableIDs", mock.Anything, mock.Anything, mock.Anything).Return([]int{}, nil)
				s.menuRepo.On("GetPricesByNames", mock.Anything, []string{"Lahmacun"}).
					Return(map[string]decimal.Decimal{}, nil)
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "successful reservation with food order",
			mutate: func(req *api.CreateReservationRequest) {
				req.FoodItems = []api.FoodItemRequest{
					{Name: "Adana Kebab", Quantity: 2},
					{Name: "Ayran", Quantity: 1},
				}
			},
			setupMock: func() {
				s.tableRepo.On("GetActiveTables", mock.Anything).Return([]domain.Table{
					{ID: 1, Capacity: 4, Active: true},
				}, nil)
				s.reservationRepo.On("HeldTableIDs", mock.Anything, mock.Anything, mock.Anything).Return([]int{}, nil)
				s.menuRepo.On("GetPricesByNames", mock.Anything, []string{"Adana Kebab", "Ayran"}).
					Return(map[string]decimal.Decimal{
						"Adana Kebab": decimal.NewFromInt(500),
						"Ayran":       decimal.NewFromInt(300),
					}, nil)
				s.locker.On("Lock", mock.Anything, mock.Anything, mock.Anything, []int{1}).Return(nil)
				s.reservationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.tableRepo.AssertExpectations(s.T())
			defer s.menuRepo.AssertExpectations(s.T())
			defer s.reservationRepo.AssertExpectations(s.T())
			defer s.locker.AssertExpectations(s.T())

			if tt.setupMock != nil {
				tt.setupMock()
			}

			req := validCreateRequest()
			if tt.mutate != nil {
				tt.mutate(&req)
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/reservations", req)

			handler := s.app.sessionManager.LoadAndSave(http.HandlerFunc(s.app.CreateReservationHandler))
			handler.ServeHTTP(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusCreated {
				var response api.CreateReservationResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				s.Require().NoError(err, "Failed to decode response")

				s.Equal("pending", response.Status)
				s.True(response.GrandTotal.Equal(decimal.NewFromInt(1800)),
					"grandTotal = %v, want 1800", response.GrandTotal)
				s.NotEmpty(response.ReservationId)
				s.False(response.HoldExpiresAt.IsZero())
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *ReservationsTestSuite) router() http.Handler {
	r := chi.NewRouter()
	r.Get("/reservations", s.app.ListReservationsHandler)
	r.Get("/reservations/{reservationId}", s.app.GetReservationHandler)
	return r
}

func sampleReservation(id uuid.UUID) *domain.Reservation {
	return &domain.Reservation{
		ID:            id,
		CustomerName:  "Deniz Erden",
		CustomerEmail: "deniz@example.com",
		CustomerPhone: "+90 555 000 00 00",
		TableIDs:      []int{1},
		Slot: domain.TimeSlot{
			Start:    time.Date(2025, 6, 3, 18, 30, 0, 0, time.UTC),
			Duration: 90 * time.Minute,
		},
		PartySize: 4,
		Status:    domain.StatusConfirmed,
		FoodItems: []domain.FoodItem{
			{Name: "Adana Kebab", Quantity: 2, UnitPrice: decimal.NewFromInt(500)},
		},
		TableFee:        decimal.NewFromInt(500),
		FoodTotal:       decimal.NewFromInt(1000),
		GrandTotal:      decimal.NewFromInt(1500),
		HoldOwner:       "test-session",
		HoldExpiresAt:   time.Date(2025, 6, 2, 10, 10, 0, 0, time.UTC),
		CreatedAt:       time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
		StatusUpdatedAt: time.Date(2025, 6, 2, 10, 5, 0, 0, time.UTC),
	}
}

func (s *ReservationsTestSuite) TestGetReservationHandler() {
	id := uuid.New()

	tests := []struct {
		name           string
		url            string
		setupMock      func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "malformed id",
			url:            "/reservations/not-a-uuid",
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name: "unknown id",
			url:  "/reservations/" + id.String(),
			setupMock: func() {
				s.reservationRepo.On("GetByID", mock.Anything, id).Return(nil, domain.ErrRecordNotFound)
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name: "found",
			url:  "/reservations/" + id.String(),
			setupMock: func() {
				s.reservationRepo.On("GetByID", mock.Anything, id).Return(sampleReservation(id), nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.reservationRepo.AssertExpectations(s.T())

			if tt.setupMock != nil {
				tt.setupMock()
			}

			w, r := executeRequest(s.T(), http.MethodGet, tt.url, nil)

			s.router().ServeHTTP(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var response api.ReservationResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				s.Require().NoError(err, "Failed to decode response")

				want := api.Reservation{
					Id:              id.String(),
					CustomerName:    "Deniz Erden",
					CustomerEmail:   "deniz@example.com",
					CustomerPhone:   "+90 555 000 00 00",
					Date:            "2025-06-03",
					StartTime:       "18:30",
					DurationMinutes: 90,
					PartySize:       4,
					TableIds:        []int{1},
					Status:          "confirmed",
					FoodItems: []api.FoodItem{
						{
							Name:      "Adana Kebab",
							Quantity:  2,
							UnitPrice: decimal.NewFromInt(500),
							LineTotal: decimal.NewFromInt(1000),
						},
					},
					TableFee:        decimal.NewFromInt(500),
					FoodTotal:       decimal.NewFromInt(1000),
					GrandTotal:      decimal.NewFromInt(1500),
					CreatedAt:       time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC),
					StatusUpdatedAt: time.Date(2025, 6, 2, 10, 5, 0, 0, time.UTC),
				}

				diff := cmp.Diff(want, response.Reservation)
				s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *ReservationsTestSuite) TestListReservationsHandler() {
	id := uuid.New()
	date := time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		query          string
		setupMock      func()
		wantStatus     int
		wantErrMessage string
		wantCount      int
	}{
		{
			name:           "missing date",
			query:          "page=1&pageSize=10",
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "is required",
		},
		{
			name:           "invalid page",
			query:          "date=2025-06-03&page=0&pageSize=10",
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be at least 1",
		},
		{
			name:           "page size too large",
			query:          "date=2025-06-03&page=1&pageSize=500",
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "must be at most 100",
		},
		{
			name:  "empty day",
			query: "date=2025-06-03",
			setupMock: func() {
				s.reservationRepo.On("ListByDate", mock.Anything, date, domain.Pagination{Page: 1, PageSize: 20}).
					Return([]domain.Reservation{}, domain.NewMetadata(0, 1, 20), nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  0,
		},
		{
			name:  "reservations found",
			query: "date=2025-06-03&page=1&pageSize=10",
			setupMock: func() {
				s.reservationRepo.On("ListByDate", mock.Anything, date, domain.Pagination{Page: 1, PageSize: 10}).
					Return([]domain.Reservation{*sampleReservation(id)}, domain.NewMetadata(1, 1, 10), nil)
			},
			wantStatus: http.StatusOK,
			wantCount:  1,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.reservationRepo.AssertExpectations(s.T())

			if tt.setupMock != nil {
				tt.setupMock()
			}

			w, r := executeRequest(s.T(), http.MethodGet, "/reservations?"+tt.query, nil)

			s.router().ServeHTTP(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantStatus == http.StatusOK {
				var response api.ReservationListResponse
				err := json.NewDecoder(w.Body).Decode(&response)
				s.Require().NoError(err, "Failed to decode response")

				s.Len(response.Reservations, tt.wantCount)
				s.Require().NotNil(response.Metadata)
				s.Equal(tt.wantCount, response.Metadata.TotalRecords)
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}
