package models

// All lists the tables managed by AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&CashEntry{},
		&InventoryItem{},
		&Customer{},
		&CustomerEntry{},
		&MiscEntry{},
		&AuditLog{},
	}
}
