package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/devxankit/indistylo-sub000/internal/availability"
	"github.com/devxankit/indistylo-sub000/internal/domain"
	"github.com/devxankit/indistylo-sub000/internal/events"
)

func seedStaff(f *fakeStore) {
	f.staff["st-1"] = domain.Staff{ID: "st-1", SalonID: "salon-a", Name: "Asha", WorkStartMin: 9 * 60, WorkEndMin: 21 * 60, IsActive: true}
	f.staff["st-2"] = domain.Staff{ID: "st-2", SalonID: "salon-a", Name: "Ravi", WorkStartMin: 9 * 60, WorkEndMin: 21 * 60, IsActive: true}
	f.salons["salon-a"] = domain.Salon{ID: "salon-a", VendorID: "v-1", Name: "Style Hub", IsActive: true}
	f.vendors["v-1"] = domain.Vendor{ID: "v-1", Name: "Style Hub Owner"}
}

func newOrderService(f *fakeStore, gw *fakeGateway, pub *capturePublisher) *OrderService {
	// Avoid wrapping a nil *capturePublisher in a non-nil interface, which
	// would defeat the service's nil-publisher guard.
	var p EventPublisher
	if pub != nil {
		p = pub
	}
	return NewOrderService(f, availability.NewScheduleChecker(), gw, p, zap.NewNop())
}

func TestCreateOrderTwoUnitsScenario(t *testing.T) {
	f := newFakeStore()
	seedCatalog(f)
	seedStaff(f)
	gw := &fakeGateway{}
	pub := &capturePublisher{}
	svc := newOrderService(f, gw, pub)

	out, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Items:  []domain.CartLineItem{{Type: domain.ItemTypeService, ID: "s-cut", Quantity: 2}},
		Date:   "2024-02-01",
		Time:   "14:00",
	})
	require.NoError(t, err)

	order := out.Order
	assert.Equal(t, 1000.0, order.TotalAmount)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, domain.PaymentMethodOnline, order.PaymentMethod)
	assert.Equal(t, "gw_"+order.ID, out.GatewayOrderID)
	assert.Equal(t, "key_test", out.KeyID)

	require.Len(t, order.Bookings, 2)
	assert.Equal(t, "14:00", order.Bookings[0].StartAt.Format("15:04"))
	assert.Equal(t, "14:30", order.Bookings[1].StartAt.Format("15:04"))
	// Both units go to the same staff member, back to back.
	assert.Equal(t, order.Bookings[0].StaffID, order.Bookings[1].StaffID)

	// Sum of booking prices equals the order total.
	var sum float64
	for _, b := range order.Bookings {
		sum += b.Price
	}
	assert.Equal(t, order.TotalAmount, sum)

	// Pending audit record linked to the gateway order.
	txn, err := f.PendingTransactionByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, txn)
	assert.Equal(t, out.GatewayOrderID, txn.GatewayOrderID)
	assert.Equal(t, 1000.0, txn.Amount)

	// Gateway was keyed by our order id with the full amount.
	require.Len(t, gw.receipts, 1)
	assert.Equal(t, order.ID, gw.receipts[0])
	assert.Equal(t, 1000.0, gw.amounts[0])

	assert.Equal(t, []string{events.RKOrderCreated}, pub.keys)
}

func TestCreateOrderPreferredStaff(t *testing.T) {
	f := newFakeStore()
	seedCatalog(f)
	seedStaff(f)
	svc := newOrderService(f, &fakeGateway{}, nil)

	staff := "st-2"
	out, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID:  "u-1",
		Items:   []domain.CartLineItem{{Type: domain.ItemTypeService, ID: "s-cut", Quantity: 1}},
		Date:    "2024-02-01",
		Time:    "11:00",
		StaffID: &staff,
	})
	require.NoError(t, err)
	assert.Equal(t, "st-2", out.Order.Bookings[0].StaffID)
}

func TestCreateOrderSlotUnavailableLeavesNothingBehind(t *testing.T) {
	f := newFakeStore()
	seedCatalog(f)
	seedStaff(f)
	svc := newOrderService(f, &fakeGateway{}, nil)

	// Outside every staff member's working window.
	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Items:  []domain.CartLineItem{{Type: domain.ItemTypeService, ID: "s-cut", Quantity: 1}},
		Date:   "2024-02-01",
		Time:   "23:00",
	})
	var slot *domain.ErrSlotUnavailable
	require.ErrorAs(t, err, &slot)
	assert.NotEmpty(t, slot.Reason)

	assert.Empty(t, f.orders)
	assert.Empty(t, f.bookings)
	assert.Empty(t, f.txns)
}

func TestCreateOrderGatewayFailureRollsBack(t *testing.T) {
	f := newFakeStore()
	seedCatalog(f)
	seedStaff(f)
	svc := newOrderService(f, &fakeGateway{failCreate: true}, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Items:  []domain.CartLineItem{{Type: domain.ItemTypeService, ID: "s-cut", Quantity: 1}},
		Date:   "2024-02-01",
		Time:   "14:00",
	})
	require.Error(t, err)

	assert.Empty(t, f.orders)
	assert.Empty(t, f.bookings)
	assert.Empty(t, f.txns)
}

func TestCreateOrderMixedSalonsRejectedBeforePersistence(t *testing.T) {
	f := newFakeStore()
	seedCatalog(f)
	seedStaff(f)
	svc := newOrderService(f, &fakeGateway{}, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Items: []domain.CartLineItem{
			{Type: domain.ItemTypeService, ID: "s-cut", Quantity: 1},
			{Type: domain.ItemTypeService, ID: "s-other", Quantity: 1},
		},
		Date: "2024-02-01",
		Time: "14:00",
	})
	assert.ErrorIs(t, err, domain.ErrMixedSalons)
	assert.Empty(t, f.orders)
	assert.Empty(t, f.bookings)
}

func TestCreateOrderEmptyCart(t *testing.T) {
	f := newFakeStore()
	svc := newOrderService(f, &fakeGateway{}, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Date:   "2024-02-01",
		Time:   "14:00",
	})
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestCreateOrderBadSchedule(t *testing.T) {
	f := newFakeStore()
	seedCatalog(f)
	svc := newOrderService(f, &fakeGateway{}, nil)

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Items:  []domain.CartLineItem{{Type: domain.ItemTypeService, ID: "s-cut", Quantity: 1}},
		Date:   "not-a-date",
		Time:   "14:00",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidSchedule)
}

func TestCreateOrderBusyStaffOverflowsToNext(t *testing.T) {
	f := newFakeStore()
	seedCatalog(f)
	seedStaff(f)
	svc := newOrderService(f, &fakeGateway{}, nil)

	// st-1 is first by id; give it an overlapping confirmed visit.
	f.bookings["b-prev"] = domain.Booking{
		ID: "b-prev", OrderID: "o-prev", StaffID: "st-1",
		StartAt: at("13:30"), EndAt: at("14:30"),
		Status: domain.BookingStatusUpcoming,
	}

	out, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Items:  []domain.CartLineItem{{Type: domain.ItemTypeService, ID: "s-cut", Quantity: 1}},
		Date:   "2024-02-01",
		Time:   "14:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "st-2", out.Order.Bookings[0].StaffID)
}

func TestCreateOrderAllStaffBusy(t *testing.T) {
	f := newFakeStore()
	seedCatalog(f)
	seedStaff(f)
	svc := newOrderService(f, &fakeGateway{}, nil)

	for _, id := range []string{"st-1", "st-2"} {
		f.bookings["b-"+id] = domain.Booking{
			ID: "b-" + id, OrderID: "o-prev", StaffID: id,
			StartAt: at("13:30"), EndAt: at("15:00"),
			Status: domain.BookingStatusPending,
		}
	}

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		UserID: "u-1",
		Items:  []domain.CartLineItem{{Type: domain.ItemTypeService, ID: "s-cut", Quantity: 1}},
		Date:   "2024-02-01",
		Time:   "14:00",
	})
	var slot *domain.ErrSlotUnavailable
	assert.ErrorAs(t, err, &slot)
}
