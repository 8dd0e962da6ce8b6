package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ItemType string

const (
	ItemTypeService ItemType = "service"
	ItemTypePackage ItemType = "package"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusUpcoming  BookingStatus = "upcoming"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusMissed    BookingStatus = "missed"
)

// PaymentMethodOnline is the only accepted method; pay-at-salon is disabled.
const PaymentMethodOnline = "online"

// CartLineItem is client-supplied and never persisted.
type CartLineItem struct {
	Type     ItemType `json:"type" binding:"required,oneof=service package"`
	ID       string   `json:"id" binding:"required"`
	Quantity int      `json:"quantity" binding:"required,min=1"`
}

type Order struct {
	ID             string        `gorm:"primaryKey" json:"id"`
	UserID         string        `gorm:"index" json:"user_id"`
	SalonID        string        `gorm:"index" json:"salon_id"`
	Items          []OrderItem   `gorm:"foreignKey:OrderID" json:"items"`
	Bookings       []Booking     `gorm:"foreignKey:OrderID" json:"bookings,omitempty"`
	TotalAmount    float64       `gorm:"type:decimal(10,2)" json:"total_amount"`
	Status         OrderStatus   `gorm:"index;default:pending" json:"status"`
	PaymentStatus  PaymentStatus `gorm:"index;default:pending" json:"payment_status"`
	PaymentMethod  string        `json:"payment_method"`
	GatewayOrderID string        `gorm:"index" json:"gateway_order_id,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// OrderItem is the immutable snapshot taken at creation time. It is never
// re-derived from the catalog, so later price edits leave history intact.
type OrderItem struct {
	ID       uint     `gorm:"primaryKey" json:"-"`
	OrderID  string   `gorm:"index" json:"-"`
	Name     string   `json:"name"`
	Type     ItemType `json:"type"`
	Price    float64  `gorm:"type:decimal(10,2)" json:"price"`
	Quantity int      `json:"quantity"`
}

type Booking struct {
	ID            string        `gorm:"primaryKey" json:"id"`
	OrderID       string        `gorm:"index" json:"order_id"`
	UserID        string        `gorm:"index" json:"user_id"`
	SalonID       string        `gorm:"index" json:"salon_id"`
	StaffID       string        `gorm:"index" json:"staff_id"`
	ItemName      string        `json:"item_name"`
	StartAt       time.Time     `gorm:"index" json:"start_at"`
	EndAt         time.Time     `gorm:"index" json:"end_at"`
	DurationMin   int           `json:"duration_min"`
	Price         float64       `gorm:"type:decimal(10,2)" json:"price"`
	Status        BookingStatus `gorm:"index;default:pending" json:"status"`
	PaymentStatus PaymentStatus `gorm:"default:pending" json:"payment_status"`
	// Address is set only for at-home bookings.
	Address datatypes.JSON `json:"address,omitempty"`
	// Populated at settlement time.
	CommissionAmount float64   `gorm:"type:decimal(10,2)" json:"commission_amount"`
	VendorEarnings   float64   `gorm:"type:decimal(10,2)" json:"vendor_earnings"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type TxStatus string

const (
	TxStatusPending TxStatus = "pending"
	TxStatusSuccess TxStatus = "success"
)

// Transaction is the append-mostly payment audit record, one per order per
// payment attempt.
type Transaction struct {
	ID               string    `gorm:"primaryKey" json:"id"`
	UserID           string    `gorm:"index" json:"user_id"`
	OrderID          string    `gorm:"index" json:"order_id"`
	Amount           float64   `gorm:"type:decimal(10,2)" json:"amount"`
	Gateway          string    `json:"gateway"`
	Type             string    `gorm:"default:debit" json:"type"`
	Status           TxStatus  `gorm:"default:pending" json:"status"`
	GatewayOrderID   string    `gorm:"index" json:"gateway_order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
