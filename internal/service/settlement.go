package service

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/devxankit/indistylo-sub000/internal/domain"
	"github.com/devxankit/indistylo-sub000/internal/events"
	"github.com/devxankit/indistylo-sub000/internal/gateway"
	"github.com/devxankit/indistylo-sub000/internal/repository"
)

// SettlementService confirms payment on an order and distributes revenue
// between vendors and the platform. Both entry points funnel into settle, so
// the manual and the signature-verified path cannot diverge.
type SettlementService struct {
	store  repository.Store
	gw     gateway.Gateway
	pub    EventPublisher
	logger *zap.Logger
}

func NewSettlementService(store repository.Store, gw gateway.Gateway, pub EventPublisher, logger *zap.Logger) *SettlementService {
	return &SettlementService{store: store, gw: gw, pub: pub, logger: logger}
}

// MarkPaid settles by internal order id without a signature check. Trusted
// callers only; the route sits behind auth.
func (s *SettlementService) MarkPaid(ctx context.Context, orderID, gatewayPaymentID string) (*domain.Order, error) {
	return s.settle(ctx, orderRef{orderID: orderID}, gatewayPaymentID)
}

// VerifyPayment settles after proving the client-reported completion is
// authentic. The signature check is never skipped on this path.
func (s *SettlementService) VerifyPayment(ctx context.Context, gatewayOrderID, gatewayPaymentID, signature string) (*domain.Order, error) {
	if !s.gw.VerifySignature(gatewayOrderID, gatewayPaymentID, signature) {
		s.logger.Warn("payment signature rejected",
			zap.String("gateway_order_id", gatewayOrderID))
		return nil, domain.ErrInvalidSignature
	}
	return s.settle(ctx, orderRef{gatewayOrderID: gatewayOrderID}, gatewayPaymentID)
}

type orderRef struct {
	orderID        string
	gatewayOrderID string
}

func (s *SettlementService) settle(ctx context.Context, ref orderRef, gatewayPaymentID string) (*domain.Order, error) {
	var (
		settled  *domain.Order
		applied  bool
		bookings int
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var (
			order *domain.Order
			err   error
		)
		// Lock the order row before the idempotency branch so concurrent
		// settlement attempts serialize instead of both crediting wallets.
		if ref.orderID != "" {
			order, err = tx.OrderForUpdate(ctx, ref.orderID)
		} else {
			order, err = tx.OrderForUpdateByGatewayID(ctx, ref.gatewayOrderID)
		}
		if err != nil {
			return err
		}

		// Re-entry on an already-settled order is success for both entry
		// points; wallets must never be credited twice.
		if order.PaymentStatus == domain.PaymentStatusPaid {
			settled = order
			return nil
		}

		order.PaymentStatus = domain.PaymentStatusPaid
		order.Status = domain.OrderStatusConfirmed
		if err := tx.SaveOrder(ctx, order); err != nil {
			return fmt.Errorf("confirm order: %w", err)
		}

		bs, err := tx.BookingsByOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("load bookings: %w", err)
		}

		settings, err := tx.Settings(ctx)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}

		// Commission is computed per booking against that booking's vendor,
		// so mixed-vendor orders settle correctly per booking.
		vendors := map[string]*domain.Vendor{}
		for i := range bs {
			b := &bs[i]
			vendor, ok := vendors[b.SalonID]
			if !ok {
				vendor, err = tx.VendorBySalon(ctx, b.SalonID)
				if err != nil {
					return fmt.Errorf("resolve vendor: %w", err)
				}
				vendors[b.SalonID] = vendor
			}

			rate := commissionRate(vendor, settings)
			b.CommissionAmount = round2(b.Price * rate / 100)
			b.VendorEarnings = round2(b.Price - b.CommissionAmount)
			b.PaymentStatus = domain.PaymentStatusPaid
			b.Status = domain.BookingStatusUpcoming
			if err := tx.SaveBooking(ctx, b); err != nil {
				return fmt.Errorf("settle booking: %w", err)
			}
			if err := tx.CreditVendorWallet(ctx, vendor.ID, b.VendorEarnings); err != nil {
				return fmt.Errorf("credit vendor wallet: %w", err)
			}
			if err := tx.CreditAdminWallet(ctx, b.CommissionAmount); err != nil {
				return fmt.Errorf("credit admin wallet: %w", err)
			}
		}

		txn, err := tx.PendingTransactionByOrder(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("load transaction: %w", err)
		}
		if txn == nil {
			// Manual mark-paid on an order whose intent record is missing
			// still gets an audit row.
			txn = &domain.Transaction{
				ID:             uuid.NewString(),
				UserID:         order.UserID,
				OrderID:        order.ID,
				Amount:         order.TotalAmount,
				Gateway:        s.gw.Name(),
				Type:           "debit",
				GatewayOrderID: order.GatewayOrderID,
			}
		}
		txn.Status = domain.TxStatusSuccess
		txn.GatewayPaymentID = gatewayPaymentID
		if err := tx.SaveTransaction(ctx, txn); err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}

		settled = order
		applied = true
		bookings = len(bs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	// The locked row carries no associations; hand callers the full order.
	if full, err := s.store.OrderByID(ctx, settled.ID); err == nil {
		settled = full
	}

	if !applied {
		return settled, nil
	}

	s.logger.Info("order settled",
		zap.String("order_id", settled.ID),
		zap.Float64("total", settled.TotalAmount),
		zap.Int("bookings", bookings))

	// Best effort only: a notification failure never unwinds settlement.
	if s.pub != nil {
		ev := events.OrderConfirmed{
			OrderID:  settled.ID,
			UserID:   settled.UserID,
			Amount:   settled.TotalAmount,
			Bookings: bookings,
		}
		if err := s.pub.PublishJSON(ctx, events.RKOrderConfirmed, ev); err != nil {
			s.logger.Warn("publish order.confirmed", zap.Error(err))
		}
	}
	return settled, nil
}

// commissionRate resolves vendor override, then platform settings, then the
// hardcoded default. An explicit 0 at either tier means free, not unset.
func commissionRate(v *domain.Vendor, ps *domain.PlatformSettings) float64 {
	if v != nil && v.CommissionRate != nil {
		return *v.CommissionRate
	}
	if ps != nil && ps.DefaultCommissionRate != nil {
		return *ps.DefaultCommissionRate
	}
	return domain.DefaultCommissionPct
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
