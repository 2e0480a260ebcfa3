package models

import "time"

type UserRole string

const (
	RoleOwner UserRole = "owner"
	RoleClerk UserRole = "clerk"
)

type User struct {
	ID           string   `gorm:"primaryKey;size:36"`
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
