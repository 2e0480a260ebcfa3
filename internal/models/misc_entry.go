package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MiscEntry - çeşitli gelir/gider kaydı, her biri kasaya yansıtılır
type MiscEntry struct {
	ID        string          `gorm:"primaryKey;size:36"`
	Date      time.Time       `gorm:"index;not null"`
	Type      CashType        `gorm:"size:20;not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Remarks   string          `gorm:"size:255"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
