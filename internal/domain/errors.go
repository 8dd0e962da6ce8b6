package domain

import "errors"

// Client-caused failures. Transport maps these to 4xx; anything else is a 500.
var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrItemNotFound     = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrMixedSalons      = errors.New("all items must belong to the same salon")
	ErrSalonRequired    = errors.New("salon could not be resolved from items")
	ErrInvalidSchedule  = errors.New("invalid booking date or time")
	ErrStaffNotFound    = errors.New("staff member not found")
	ErrInvalidSignature = errors.New("payment signature verification failed")
)

// ErrSlotUnavailable carries the checker's human-readable reason.
type ErrSlotUnavailable struct {
	Reason string
}

func (e *ErrSlotUnavailable) Error() string {
	if e.Reason == "" {
		return "requested slot is unavailable"
	}
	return e.Reason
}
