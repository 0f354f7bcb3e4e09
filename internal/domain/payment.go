package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailure PaymentStatus = "failure"
)

// Payment records a payment-confirmed signal received from the gateway
// collaborator. The engine never computes or charges amounts itself; rows
// here are the audit trail of what the gateway reported.
type Payment struct {
	ID            int
	ReservationID uuid.UUID
	Amount        decimal.Decimal
	Status        PaymentStatus
	ReceivedAt    time.Time
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByReservationID(ctx context.Context, reservationID uuid.UUID) ([]Payment, error)
}
