package domain

import "time"

// Catalog entities are read-only inside the booking core. They are owned by the
// catalog subsystem and only resolved here when pricing a cart.

type Vendor struct {
	ID   string `gorm:"primaryKey"`
	Name string
	// CommissionRate overrides the platform default when set. A stored 0 means
	// explicitly free, not unset.
	CommissionRate *float64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Salon struct {
	ID       string `gorm:"primaryKey"`
	VendorID string `gorm:"index"`
	Name     string
	City     string
	IsActive bool `gorm:"default:true"`
}

type SalonService struct {
	ID          string `gorm:"primaryKey"`
	SalonID     string `gorm:"index"`
	Name        string
	Price       float64 `gorm:"type:decimal(10,2)"`
	DurationMin int
	IsActive    bool `gorm:"default:true"`
}

type ServicePackage struct {
	ID      string `gorm:"primaryKey"`
	SalonID string `gorm:"index"` // may be empty for cross-salon promo packages
	Name    string
	Price   float64          `gorm:"type:decimal(10,2)"`
	Items   []PackageService `gorm:"foreignKey:PackageID"`
}

// PackageService links a package to one constituent service.
type PackageService struct {
	ID        uint   `gorm:"primaryKey"`
	PackageID string `gorm:"index"`
	ServiceID string `gorm:"index"`
}

type Staff struct {
	ID      string `gorm:"primaryKey"`
	SalonID string `gorm:"index"`
	Name    string
	// Working window as minutes-of-day, e.g. 540 = 09:00.
	WorkStartMin int `gorm:"default:540"`
	WorkEndMin   int `gorm:"default:1260"`
	IsActive     bool `gorm:"default:true"`
}

// PlatformSettings is a singleton row read at settlement time.
type PlatformSettings struct {
	ID uint `gorm:"primaryKey"`
	// DefaultCommissionRate applies when the vendor has no override; nil falls
	// back to DefaultCommissionPct.
	DefaultCommissionRate *float64
	UpdatedAt             time.Time
}

// DefaultCommissionPct is the last-resort platform cut.
const DefaultCommissionPct = 10.0
