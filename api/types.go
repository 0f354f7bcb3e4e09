// Package api holds the request and response types of the HTTP surface.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type Table struct {
	Id       int `json:"id"`
	Capacity int `json:"capacity"`
}

type AvailabilityResponse struct {
	Available bool    `json:"available"`
	Tables    []Table `json:"tables"`
}

type Slot struct {
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

type SlotsResponse struct {
	Date  string `json:"date"`
	Slots []Slot `json:"slots"`
}

type FoodItemRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Quantity int    `json:"quantity" validate:"required,min=1,max=50"`
}

type CreateReservationRequest struct {
	CustomerName  string            `json:"customerName" validate:"required,max=100"`
	CustomerEmail string            `json:"customerEmail" validate:"required,email"`
	CustomerPhone string            `json:"customerPhone" validate:"required,max=30"`
	Date          string            `json:"date" validate:"required,calendar_date"`
	Time          string            `json:"time" validate:"required,clock_time"`
	PartySize     int               `json:"partySize" validate:"required,min=1,max=100"`
	FoodItems     []FoodItemRequest `json:"foodItems,omitempty" validate:"omitempty,dive"`
}

type CreateReservationResponse struct {
	ReservationId string          `json:"reservationId"`
	Status        string          `json:"status"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	HoldExpiresAt time.Time       `json:"holdExpiresAt"`
}

type FoodItem struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Reservation struct {
	Id              string          `json:"id"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	Date            string          `json:"date"`
	StartTime       string          `json:"startTime"`
	DurationMinutes int             `json:"durationMinutes"`
	PartySize       int             `json:"partySize"`
	TableIds        []int           `json:"tableIds"`
	Status          string          `json:"status"`
	FoodItems       []FoodItem      `json:"foodItems,omitempty"`
	TableFee        decimal.Decimal `json:"tableFee"`
	FoodTotal       decimal.Decimal `json:"foodTotal"`
	GrandTotal      decimal.Decimal `json:"grandTotal"`
	HoldExpiresAt   *time.Time      `json:"holdExpiresAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	StatusUpdatedAt time.Time       `json:"statusUpdatedAt"`
}

type ReservationResponse struct {
	Reservation Reservation `json:"reservation"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type ReservationListResponse struct {
	Reservations []Reservation `json:"reservations"`
	Metadata     *Metadata     `json:"metadata,omitempty"`
}

type PaymentNotificationRequest struct {
	ReservationId string          `json:"reservationId" validate:"required,uuid4"`
	AmountPaid    decimal.Decimal `json:"amountPaid" validate:"required"`
	Status        string          `json:"status" validate:"required,oneof=success failure"`
}
