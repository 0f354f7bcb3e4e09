package domain

import "errors"

var (
	ErrRecordNotFound       = errors.New("record not found")
	ErrEditConflict         = errors.New("edit conflict")
	ErrOutOfRangeSlot       = errors.New("requested date and time are outside the bookable window")
	ErrInsufficientCapacity = errors.New("no combination of free tables can seat the party")
	ErrTableConflict        = errors.New("table(s) are already reserved for an overlapping time")
	ErrHoldExpired          = errors.New("reservation hold has expired")
	ErrPaymentMismatch      = errors.New("paid amount does not match the reservation total")
	ErrUnknownMenuItem      = errors.New("menu item not found")
)
