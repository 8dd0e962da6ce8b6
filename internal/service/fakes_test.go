package service

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/devxankit/indistylo-sub000/internal/domain"
	"github.com/devxankit/indistylo-sub000/internal/gateway"
	"github.com/devxankit/indistylo-sub000/internal/repository"
)

// fakeStore keeps everything in value maps so WithinTx can snapshot and
// restore wholesale, which lets tests assert that failed workflows leave the
// store untouched.
type fakeStore struct {
	services map[string]domain.SalonService
	packages map[string]domain.ServicePackage
	staff    map[string]domain.Staff
	salons   map[string]domain.Salon
	vendors  map[string]domain.Vendor
	settings *domain.PlatformSettings

	orders        map[string]domain.Order
	bookings      map[string]domain.Booking
	txns          map[string]domain.Transaction
	vendorWallets map[string]float64
	adminBalance  float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		services:      map[string]domain.SalonService{},
		packages:      map[string]domain.ServicePackage{},
		staff:         map[string]domain.Staff{},
		salons:        map[string]domain.Salon{},
		vendors:       map[string]domain.Vendor{},
		orders:        map[string]domain.Order{},
		bookings:      map[string]domain.Booking{},
		txns:          map[string]domain.Transaction{},
		vendorWallets: map[string]float64{},
	}
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	orders := maps.Clone(f.orders)
	bookings := maps.Clone(f.bookings)
	txns := maps.Clone(f.txns)
	wallets := maps.Clone(f.vendorWallets)
	admin := f.adminBalance
	if err := fn(f); err != nil {
		f.orders = orders
		f.bookings = bookings
		f.txns = txns
		f.vendorWallets = wallets
		f.adminBalance = admin
		return err
	}
	return nil
}

func (f *fakeStore) ServiceByID(_ context.Context, id string) (*domain.SalonService, error) {
	s, ok := f.services[id]
	if !ok || !s.IsActive {
		return nil, domain.ErrItemNotFound
	}
	return &s, nil
}

func (f *fakeStore) ServicesByIDs(_ context.Context, ids []string) ([]domain.SalonService, error) {
	var out []domain.SalonService
	for _, id := range ids {
		if s, ok := f.services[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) PackageByID(_ context.Context, id string) (*domain.ServicePackage, error) {
	p, ok := f.packages[id]
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return &p, nil
}

func (f *fakeStore) ActiveStaffBySalon(_ context.Context, salonID string) ([]domain.Staff, error) {
	var out []domain.Staff
	for _, st := range f.staff {
		if st.SalonID == salonID && st.IsActive {
			out = append(out, st)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) StaffForUpdate(_ context.Context, id string) (*domain.Staff, error) {
	st, ok := f.staff[id]
	if !ok {
		return nil, domain.ErrStaffNotFound
	}
	return &st, nil
}

func (f *fakeStore) HasOverlappingBookings(_ context.Context, staffID string, start, end time.Time) (bool, error) {
	for _, b := range f.bookings {
		if b.StaffID != staffID {
			continue
		}
		if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusUpcoming {
			continue
		}
		if b.StartAt.Before(end) && b.EndAt.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateOrder(_ context.Context, o *domain.Order) error {
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeStore) SaveOrder(_ context.Context, o *domain.Order) error {
	f.orders[o.ID] = *o
	return nil
}

func (f *fakeStore) OrderByID(_ context.Context, id string) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Bookings = f.orderBookings(id)
	return &o, nil
}

func (f *fakeStore) OrderForUpdate(_ context.Context, id string) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &o, nil
}

func (f *fakeStore) OrderForUpdateByGatewayID(_ context.Context, gwID string) (*domain.Order, error) {
	for _, o := range f.orders {
		if o.GatewayOrderID == gwID {
			return &o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (f *fakeStore) OrdersByUser(_ context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			o.Bookings = f.orderBookings(o.ID)
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) CreateBookings(_ context.Context, bs []domain.Booking) error {
	for _, b := range bs {
		f.bookings[b.ID] = b
	}
	return nil
}

func (f *fakeStore) BookingsByOrder(_ context.Context, orderID string) ([]domain.Booking, error) {
	return f.orderBookings(orderID), nil
}

func (f *fakeStore) SaveBooking(_ context.Context, b *domain.Booking) error {
	f.bookings[b.ID] = *b
	return nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, t *domain.Transaction) error {
	f.txns[t.ID] = *t
	return nil
}

func (f *fakeStore) PendingTransactionByOrder(_ context.Context, orderID string) (*domain.Transaction, error) {
	for _, t := range f.txns {
		if t.OrderID == orderID && t.Status == domain.TxStatusPending {
			return &t, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SaveTransaction(_ context.Context, t *domain.Transaction) error {
	f.txns[t.ID] = *t
	return nil
}

func (f *fakeStore) VendorBySalon(_ context.Context, salonID string) (*domain.Vendor, error) {
	s, ok := f.salons[salonID]
	if !ok {
		return nil, fmt.Errorf("salon %s not found", salonID)
	}
	v, ok := f.vendors[s.VendorID]
	if !ok {
		return nil, fmt.Errorf("vendor %s not found", s.VendorID)
	}
	return &v, nil
}

func (f *fakeStore) Settings(_ context.Context) (*domain.PlatformSettings, error) {
	return f.settings, nil
}

func (f *fakeStore) CreditVendorWallet(_ context.Context, vendorID string, amount float64) error {
	f.vendorWallets[vendorID] += amount
	return nil
}

func (f *fakeStore) CreditAdminWallet(_ context.Context, amount float64) error {
	f.adminBalance += amount
	return nil
}

func (f *fakeStore) orderBookings(orderID string) []domain.Booking {
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.OrderID == orderID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out
}

// fakeGateway records intents and verifies against a fixed signature.
type fakeGateway struct {
	failCreate bool
	verifyOK   bool
	receipts   []string
	amounts    []float64
}

func (g *fakeGateway) Name() string { return "razorpay" }

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, amount float64, receipt string) (*gateway.PaymentIntent, error) {
	if g.failCreate {
		return nil, fmt.Errorf("gateway unreachable")
	}
	g.receipts = append(g.receipts, receipt)
	g.amounts = append(g.amounts, amount)
	return &gateway.PaymentIntent{GatewayOrderID: "gw_" + receipt, KeyID: "key_test"}, nil
}

func (g *fakeGateway) VerifySignature(_, _, _ string) bool { return g.verifyOK }

type capturePublisher struct {
	keys []string
}

func (p *capturePublisher) PublishJSON(_ context.Context, key string, _ any) error {
	p.keys = append(p.keys, key)
	return nil
}
