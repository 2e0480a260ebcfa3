package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type CashType string

const (
	CashComesIn CashType = "comes_in" // kasaya giriş
	CashPayment CashType = "payment"  // kasadan çıkış
)

// ParseCashType eski arayüzün gönderdiği "comes in" yazımını da kabul eder.
func ParseCashType(s string) (CashType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "comes_in", "comes in":
		return CashComesIn, true
	case "payment":
		return CashPayment, true
	}
	return "", false
}

type CashSource string

const (
	CashSourceManual          CashSource = "manual"
	CashSourceCustomerPayment CashSource = "customer_payment"
	CashSourceMiscellaneous   CashSource = "miscellaneous"
)

type CashEntry struct {
	ID             string          `gorm:"primaryKey;size:36"`
	Date           time.Time       `gorm:"index;not null"`
	Type           CashType        `gorm:"size:20;not null"`
	Amount         decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Remarks        string          `gorm:"size:255"`
	Source         CashSource      `gorm:"size:30;not null;default:manual"`
	SourceID       string          `gorm:"size:36;index"` // türetilmiş kayıtlarda kaynak kaydın id'si
	SourceCustomer string          `gorm:"size:100"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Derived kayıtlar kaynaklarıyla birlikte yönetilir, elle düzenlenemez.
func (e *CashEntry) Derived() bool {
	return e.Source != "" && e.Source != CashSourceManual
}

// Signed returns the entry's effect on the cash balance.
func (e *CashEntry) Signed() decimal.Decimal {
	if e.Type == CashPayment {
		return e.Amount.Neg()
	}
	return e.Amount
}
