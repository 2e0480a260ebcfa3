package models

import (
	"strings"
	"time"
)

// Müşteri adı dışında bilgi tutulmaz; kapsamı adıyla belirlenir.
type Customer struct {
	ID        string `gorm:"primaryKey;size:36"`
	Name      string `gorm:"size:100;uniqueIndex;not null"`
	CreatedAt time.Time
}

// ReservedScopeNames are ledger scopes that can never be customer names.
var ReservedScopeNames = []string{"Cash", "Inventory", "Miscellaneous", "Customers", "Users", "AuditLogs"}

func IsReservedScopeName(name string) bool {
	for _, r := range ReservedScopeNames {
		if strings.EqualFold(r, strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}
