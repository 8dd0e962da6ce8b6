package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devxankit/indistylo-sub000/internal/domain"
)

// Store is the persistence surface the booking core runs against. WithinTx
// hands the callback a Store bound to one transaction; every read and write
// made through it commits or rolls back as a unit.
type Store interface {
	WithinTx(ctx context.Context, fn func(Store) error) error

	ServiceByID(ctx context.Context, id string) (*domain.SalonService, error)
	ServicesByIDs(ctx context.Context, ids []string) ([]domain.SalonService, error)
	PackageByID(ctx context.Context, id string) (*domain.ServicePackage, error)

	ActiveStaffBySalon(ctx context.Context, salonID string) ([]domain.Staff, error)
	StaffForUpdate(ctx context.Context, id string) (*domain.Staff, error)
	HasOverlappingBookings(ctx context.Context, staffID string, start, end time.Time) (bool, error)

	CreateOrder(ctx context.Context, o *domain.Order) error
	SaveOrder(ctx context.Context, o *domain.Order) error
	OrderByID(ctx context.Context, id string) (*domain.Order, error)
	OrderForUpdate(ctx context.Context, id string) (*domain.Order, error)
	OrderForUpdateByGatewayID(ctx context.Context, gatewayOrderID string) (*domain.Order, error)
	OrdersByUser(ctx context.Context, userID string) ([]domain.Order, error)

	CreateBookings(ctx context.Context, bs []domain.Booking) error
	BookingsByOrder(ctx context.Context, orderID string) ([]domain.Booking, error)
	SaveBooking(ctx context.Context, b *domain.Booking) error

	CreateTransaction(ctx context.Context, t *domain.Transaction) error
	PendingTransactionByOrder(ctx context.Context, orderID string) (*domain.Transaction, error)
	SaveTransaction(ctx context.Context, t *domain.Transaction) error

	VendorBySalon(ctx context.Context, salonID string) (*domain.Vendor, error)
	Settings(ctx context.Context) (*domain.PlatformSettings, error)
	CreditVendorWallet(ctx context.Context, vendorID string, amount float64) error
	CreditAdminWallet(ctx context.Context, amount float64) error
}

type gormStore struct {
	db *gorm.DB
}

func New(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Vendor{}, &domain.Salon{}, &domain.SalonService{},
		&domain.ServicePackage{}, &domain.PackageService{}, &domain.Staff{},
		&domain.PlatformSettings{},
		&domain.Order{}, &domain.OrderItem{}, &domain.Booking{},
		&domain.Transaction{},
		&domain.VendorWallet{}, &domain.AdminWallet{},
	)
}

func (s *gormStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}

func (s *gormStore) ServiceByID(ctx context.Context, id string) (*domain.SalonService, error) {
	var svc domain.SalonService
	err := s.db.WithContext(ctx).First(&svc, "id = ? AND is_active", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *gormStore) ServicesByIDs(ctx context.Context, ids []string) ([]domain.SalonService, error) {
	var out []domain.SalonService
	if len(ids) == 0 {
		return out, nil
	}
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

func (s *gormStore) PackageByID(ctx context.Context, id string) (*domain.ServicePackage, error) {
	var p domain.ServicePackage
	err := s.db.WithContext(ctx).Preload("Items").First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *gormStore) ActiveStaffBySalon(ctx context.Context, salonID string) ([]domain.Staff, error) {
	var out []domain.Staff
	err := s.db.WithContext(ctx).
		Where("salon_id = ? AND is_active", salonID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// StaffForUpdate locks the staff row so concurrent order creation for the same
// staff member serializes before the overlap check.
func (s *gormStore) StaffForUpdate(ctx context.Context, id string) (*domain.Staff, error) {
	var st domain.Staff
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&st, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *gormStore) HasOverlappingBookings(ctx context.Context, staffID string, start, end time.Time) (bool, error) {
	var existing domain.Booking
	err := s.db.WithContext(ctx).
		Where("staff_id = ? AND status IN ?", staffID,
			[]domain.BookingStatus{domain.BookingStatusPending, domain.BookingStatusUpcoming}).
		Where("start_at < ? AND end_at > ?", end, start).
		Take(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *gormStore) CreateOrder(ctx context.Context, o *domain.Order) error {
	return s.db.WithContext(ctx).Create(o).Error
}

func (s *gormStore) SaveOrder(ctx context.Context, o *domain.Order) error {
	return s.db.WithContext(ctx).Save(o).Error
}

func (s *gormStore) OrderByID(ctx context.Context, id string) (*domain.Order, error) {
	var o domain.Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Bookings").
		First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *gormStore) orderForUpdate(ctx context.Context, cond string, arg any) (*domain.Order, error) {
	var o domain.Order
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, cond, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *gormStore) OrderForUpdate(ctx context.Context, id string) (*domain.Order, error) {
	return s.orderForUpdate(ctx, "id = ?", id)
}

func (s *gormStore) OrderForUpdateByGatewayID(ctx context.Context, gatewayOrderID string) (*domain.Order, error) {
	return s.orderForUpdate(ctx, "gateway_order_id = ?", gatewayOrderID)
}

func (s *gormStore) OrdersByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	var out []domain.Order
	err := s.db.WithContext(ctx).
		Preload("Items").Preload("Bookings").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (s *gormStore) CreateBookings(ctx context.Context, bs []domain.Booking) error {
	return s.db.WithContext(ctx).Create(&bs).Error
}

func (s *gormStore) BookingsByOrder(ctx context.Context, orderID string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("start_at ASC").
		Find(&out).Error
	return out, err
}

func (s *gormStore) SaveBooking(ctx context.Context, b *domain.Booking) error {
	return s.db.WithContext(ctx).Save(b).Error
}

func (s *gormStore) CreateTransaction(ctx context.Context, t *domain.Transaction) error {
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *gormStore) PendingTransactionByOrder(ctx context.Context, orderID string) (*domain.Transaction, error) {
	var t domain.Transaction
	err := s.db.WithContext(ctx).
		Where("order_id = ? AND status = ?", orderID, domain.TxStatusPending).
		Order("created_at DESC").
		Take(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *gormStore) SaveTransaction(ctx context.Context, t *domain.Transaction) error {
	return s.db.WithContext(ctx).Save(t).Error
}

func (s *gormStore) VendorBySalon(ctx context.Context, salonID string) (*domain.Vendor, error) {
	var salon domain.Salon
	if err := s.db.WithContext(ctx).First(&salon, "id = ?", salonID).Error; err != nil {
		return nil, err
	}
	var v domain.Vendor
	if err := s.db.WithContext(ctx).First(&v, "id = ?", salon.VendorID).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *gormStore) Settings(ctx context.Context) (*domain.PlatformSettings, error) {
	var ps domain.PlatformSettings
	err := s.db.WithContext(ctx).Order("id ASC").Take(&ps).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ps, nil
}

// Wallet credits are single-statement increments so concurrent settlements for
// different orders touching the same wallet cannot lose updates.
func (s *gormStore) CreditVendorWallet(ctx context.Context, vendorID string, amount float64) error {
	res := s.db.WithContext(ctx).Model(&domain.VendorWallet{}).
		Where("vendor_id = ?", vendorID).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		w := domain.VendorWallet{ID: uuid.NewString(), VendorID: vendorID, Balance: amount}
		return s.db.WithContext(ctx).Create(&w).Error
	}
	return nil
}

func (s *gormStore) CreditAdminWallet(ctx context.Context, amount float64) error {
	res := s.db.WithContext(ctx).Model(&domain.AdminWallet{}).
		Where("id = ?", 1).
		Updates(map[string]any{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		w := domain.AdminWallet{ID: 1, Balance: amount}
		return s.db.WithContext(ctx).Create(&w).Error
	}
	return nil
}
