package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/devxankit/indistylo-sub000/internal/availability"
	"github.com/devxankit/indistylo-sub000/internal/domain"
	"github.com/devxankit/indistylo-sub000/internal/events"
	"github.com/devxankit/indistylo-sub000/internal/gateway"
	"github.com/devxankit/indistylo-sub000/internal/repository"
)

// EventPublisher is the fire-and-forget notification channel; pkg/mq satisfies
// it. A nil publisher disables publishing.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type OrderService struct {
	store   repository.Store
	checker availability.Checker
	gw      gateway.Gateway
	pub     EventPublisher
	logger  *zap.Logger
}

func NewOrderService(store repository.Store, checker availability.Checker, gw gateway.Gateway, pub EventPublisher, logger *zap.Logger) *OrderService {
	return &OrderService{store: store, checker: checker, gw: gw, pub: pub, logger: logger}
}

type CreateOrderInput struct {
	UserID  string
	Items   []domain.CartLineItem
	Date    string // "2006-01-02"
	Time    string // "15:04"
	Notes   string
	Address map[string]any // optional, at-home bookings only
	StaffID *string        // nil lets the checker pick
	SalonID string         // fallback when no item carries a salon
}

type CreateOrderOutput struct {
	Order          *domain.Order
	GatewayOrderID string
	KeyID          string
}

// CreateOrder runs the whole order workflow inside one transaction: pricing,
// availability, order + bookings + pending transaction persistence and the
// gateway payment-intent call. Any failure rolls everything back, so a failed
// attempt leaves no partial order behind.
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*CreateOrderOutput, error) {
	if len(in.Items) == 0 {
		return nil, domain.ErrEmptyCart
	}
	start, err := parseSlotStart(in.Date, in.Time)
	if err != nil {
		return nil, err
	}

	var addr datatypes.JSON
	if len(in.Address) > 0 {
		raw, err := json.Marshal(in.Address)
		if err != nil {
			return nil, fmt.Errorf("encode address: %w", err)
		}
		addr = datatypes.JSON(raw)
	}

	var out *CreateOrderOutput
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		quote, err := BuildQuote(ctx, tx, in.Items, start, in.SalonID)
		if err != nil {
			return err
		}

		res, err := s.checker.Check(ctx, tx, availability.Query{
			SalonID:          quote.SalonID,
			Start:            start,
			DurationMin:      quote.TotalDurationMin,
			PreferredStaffID: in.StaffID,
		})
		if err != nil {
			return fmt.Errorf("availability check: %w", err)
		}
		if !res.Available {
			return &domain.ErrSlotUnavailable{Reason: res.Reason}
		}

		order := &domain.Order{
			ID:            uuid.NewString(),
			UserID:        in.UserID,
			SalonID:       quote.SalonID,
			Items:         quote.Items,
			TotalAmount:   quote.TotalAmount,
			Status:        domain.OrderStatusPending,
			PaymentStatus: domain.PaymentStatusPending,
			PaymentMethod: domain.PaymentMethodOnline,
			Notes:         in.Notes,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		bookings := make([]domain.Booking, 0, len(quote.Units))
		for _, u := range quote.Units {
			bookings = append(bookings, domain.Booking{
				ID:            uuid.NewString(),
				OrderID:       order.ID,
				UserID:        in.UserID,
				SalonID:       quote.SalonID,
				StaffID:       res.StaffID,
				ItemName:      u.Name,
				StartAt:       u.StartAt,
				EndAt:         u.StartAt.Add(time.Duration(u.DurationMin) * time.Minute),
				DurationMin:   u.DurationMin,
				Price:         u.Price,
				Status:        domain.BookingStatusPending,
				PaymentStatus: domain.PaymentStatusPending,
				Address:       addr,
			})
		}
		if err := tx.CreateBookings(ctx, bookings); err != nil {
			return fmt.Errorf("create bookings: %w", err)
		}
		order.Bookings = bookings

		intent, err := s.gw.CreatePaymentIntent(ctx, order.TotalAmount, order.ID)
		if err != nil {
			return fmt.Errorf("create payment intent: %w", err)
		}
		order.GatewayOrderID = intent.GatewayOrderID
		if err := tx.SaveOrder(ctx, order); err != nil {
			return fmt.Errorf("attach gateway order: %w", err)
		}

		txn := &domain.Transaction{
			ID:             uuid.NewString(),
			UserID:         in.UserID,
			OrderID:        order.ID,
			Amount:         order.TotalAmount,
			Gateway:        s.gw.Name(),
			Type:           "debit",
			Status:         domain.TxStatusPending,
			GatewayOrderID: intent.GatewayOrderID,
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}

		out = &CreateOrderOutput{Order: order, GatewayOrderID: intent.GatewayOrderID, KeyID: intent.KeyID}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", out.Order.ID),
		zap.String("salon_id", out.Order.SalonID),
		zap.Float64("total", out.Order.TotalAmount),
		zap.Int("bookings", len(out.Order.Bookings)))

	if s.pub != nil {
		ev := events.OrderCreated{
			OrderID: out.Order.ID,
			UserID:  out.Order.UserID,
			SalonID: out.Order.SalonID,
			Amount:  out.Order.TotalAmount,
			StartAt: start.Unix(),
		}
		if err := s.pub.PublishJSON(ctx, events.RKOrderCreated, ev); err != nil {
			s.logger.Warn("publish order.created", zap.Error(err))
		}
	}
	return out, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.store.OrderByID(ctx, id)
}

func (s *OrderService) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.store.OrdersByUser(ctx, userID)
}

func parseSlotStart(date, clock string) (time.Time, error) {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q %q", domain.ErrInvalidSchedule, date, clock)
	}
	return t.UTC(), nil
}
