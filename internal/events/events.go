package events

// Routing keys published by the booking core.
const (
	RKOrderCreated   = "order.created"
	RKOrderConfirmed = "order.confirmed"
)

type OrderCreated struct {
	OrderID string  `json:"order_id"`
	UserID  string  `json:"user_id"`
	SalonID string  `json:"salon_id"`
	Amount  float64 `json:"amount"`
	StartAt int64   `json:"start_at"` // unix seconds of the first booking
}

type OrderConfirmed struct {
	OrderID  string  `json:"order_id"`
	UserID   string  `json:"user_id"`
	Amount   float64 `json:"amount"`
	Bookings int     `json:"bookings"`
}
