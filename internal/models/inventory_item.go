package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type InventoryItem struct {
	ID           string          `gorm:"primaryKey;size:36"`
	InventoryID  string          `gorm:"size:50;index"`
	ItemName     string          `gorm:"size:150;index;not null"`
	Value        decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	// oluşturulduğu andaki değer, mutabakatta başlangıç noktası
	OpeningValue decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	// bilgi amaçlı, başka bir yerde okunmaz
	UnitsSold    decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0"`
	Currency     string          `gorm:"size:10;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
