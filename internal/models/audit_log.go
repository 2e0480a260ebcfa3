package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionAdjust AuditAction = "adjust"
)

type AuditLog struct {
	ID        string    `gorm:"primaryKey;size:36"`
	CreatedAt time.Time `gorm:"index"`

	// Hangi kullanıcı? Sistem işlemlerinde boş kalır.
	UserID   string `gorm:"size:36;index"`
	UserName string `gorm:"size:100"`

	// ör: "cash_entry", "customer_entry", "inventory_item", "misc_entry", "customer"
	EntityType string `gorm:"size:50;index"`
	EntityID   string `gorm:"size:36;index"`

	Action      AuditAction `gorm:"size:20"`
	Description string      `gorm:"size:255"`

	// Önceki ve sonraki hal (JSON)
	BeforeData string `gorm:"type:text"`
	AfterData  string `gorm:"type:text"`
}
