package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type EntryType string

const (
	EntryOnCash         EntryType = "on_cash"         // peşin satış
	EntryOnCredit       EntryType = "on_credit"       // veresiye satış
	EntryPurchaseReturn EntryType = "purchase_return" // veresiye satıştan iade
	EntryCreditPayment  EntryType = "credit_payment"  // veresiye tahsilatı
)

func (t EntryType) Valid() bool {
	switch t {
	case EntryOnCash, EntryOnCredit, EntryPurchaseReturn, EntryCreditPayment:
		return true
	}
	return false
}

// MovesStock reports whether the entry adjusts an inventory item.
func (t EntryType) MovesStock() bool {
	return t.Valid() && t != EntryCreditPayment
}

// StockSign is -1 for returns (stock comes back) and +1 for sales.
func (t EntryType) StockSign() decimal.Decimal {
	if t == EntryPurchaseReturn {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

type PaymentMode string

const (
	PaymentModeCash PaymentMode = "cash"
	PaymentModeBank PaymentMode = "bank"
	PaymentModeUPI  PaymentMode = "upi"
)

func (m PaymentMode) Valid() bool {
	switch m {
	case PaymentModeCash, PaymentModeBank, PaymentModeUPI:
		return true
	}
	return false
}

type CustomerEntry struct {
	ID              string          `gorm:"primaryKey;size:36"`
	CustomerName    string          `gorm:"size:100;index;not null"`
	ItemName        string          `gorm:"size:150;index"`
	Date            time.Time       `gorm:"index;not null"`
	Type            EntryType       `gorm:"size:20;not null"`
	Quantity        decimal.Decimal `gorm:"type:numeric(14,3);not null;default:0"`
	Rate            decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Remarks         string          `gorm:"size:255"`
	PaymentAmount   decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	DiscountAllowed decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0"`
	PaymentMode     PaymentMode     `gorm:"size:10"`
	CreatedAt       time.Time
}
