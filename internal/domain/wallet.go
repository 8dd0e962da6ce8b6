package domain

import "time"

// Wallets hold running balances and are mutated only by the settlement engine,
// via single-statement atomic increments.

type VendorWallet struct {
	ID        string  `gorm:"primaryKey"`
	VendorID  string  `gorm:"uniqueIndex"`
	Balance   float64 `gorm:"type:decimal(12,2);default:0"`
	UpdatedAt time.Time
}

type AdminWallet struct {
	ID        uint    `gorm:"primaryKey"`
	Balance   float64 `gorm:"type:decimal(12,2);default:0"`
	UpdatedAt time.Time
}
