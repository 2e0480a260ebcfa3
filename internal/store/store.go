// Package store defines the persistence contract shared by the memory, gorm
// and MongoDB backends.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"shop-ledger/internal/models"
)

// TxFunc receives the context and the store view that belong to the running
// transaction. Both must be used for every write inside the boundary.
type TxFunc func(ctx context.Context, tx Store) error

// AuditFilter narrows ListAuditLogs. Zero values match everything.
type AuditFilter struct {
	EntityType string
	EntityID   string
	UserID     string
	Limit      int
}

// Store is the unified storage interface for every ledger. Not-found lookups
// return an error matching apperr.ErrNotFound, driver failures one matching
// apperr.ErrStorage.
type Store interface {
	// WithTx runs fn so that all of its writes commit or roll back together.
	WithTx(ctx context.Context, fn TxFunc) error

	// Cash ledger
	ListCashEntries(ctx context.Context) ([]models.CashEntry, error)
	GetCashEntry(ctx context.Context, id string) (*models.CashEntry, error)
	FindCashEntryBySource(ctx context.Context, source models.CashSource, sourceID string) (*models.CashEntry, error)
	CreateCashEntry(ctx context.Context, e *models.CashEntry) error
	UpdateCashEntry(ctx context.Context, e *models.CashEntry) error
	DeleteCashEntry(ctx context.Context, id string) error

	// Inventory ledger
	ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error)
	GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error)
	GetInventoryItemByName(ctx context.Context, itemName string) (*models.InventoryItem, error)
	CreateInventoryItem(ctx context.Context, it *models.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, id string) error
	// AdjustInventory decrements value by valueSold and adds quantitySold to
	// the units counter in a single atomic write.
	AdjustInventory(ctx context.Context, itemName string, valueSold, quantitySold decimal.Decimal) error

	// Customer directory and ledgers
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, name string) (*models.Customer, error)
	CreateCustomer(ctx context.Context, c *models.Customer) error
	ListCustomerEntries(ctx context.Context, customer string) ([]models.CustomerEntry, error)
	ListEntriesByItem(ctx context.Context, itemName string) ([]models.CustomerEntry, error)
	GetCustomerEntry(ctx context.Context, customer, id string) (*models.CustomerEntry, error)
	CreateCustomerEntry(ctx context.Context, e *models.CustomerEntry) error
	DeleteCustomerEntry(ctx context.Context, customer, id string) error

	// Miscellaneous ledger
	ListMiscEntries(ctx context.Context) ([]models.MiscEntry, error)
	GetMiscEntry(ctx context.Context, id string) (*models.MiscEntry, error)
	CreateMiscEntry(ctx context.Context, e *models.MiscEntry) error
	UpdateMiscEntry(ctx context.Context, e *models.MiscEntry) error
	DeleteMiscEntry(ctx context.Context, id string) error

	// Audit trail
	CreateAuditLog(ctx context.Context, l *models.AuditLog) error
	ListAuditLogs(ctx context.Context, f AuditFilter) ([]models.AuditLog, error)

	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error)

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
