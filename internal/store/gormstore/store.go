// Package gormstore implements store.Store on PostgreSQL or SQLite via gorm.
package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func wrap(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(what)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperr.Conflict(what + " already exists")
	}
	return apperr.Storage("gormstore: "+op, err)
}

func (s *Store) WithTx(ctx context.Context, fn store.TxFunc) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

// ==================== Cash ====================

func (s *Store) ListCashEntries(ctx context.Context) ([]models.CashEntry, error) {
	var out []models.CashEntry
	if err := s.conn(ctx).Order("date asc, created_at asc").Find(&out).Error; err != nil {
		return nil, wrap("list cash entries", "cash entry", err)
	}
	return out, nil
}

func (s *Store) GetCashEntry(ctx context.Context, id string) (*models.CashEntry, error) {
	var e models.CashEntry
	if err := s.conn(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, wrap("get cash entry", "cash entry", err)
	}
	return &e, nil
}

func (s *Store) FindCashEntryBySource(ctx context.Context, source models.CashSource, sourceID string) (*models.CashEntry, error) {
	var e models.CashEntry
	err := s.conn(ctx).
		Where("source = ? AND source_id = ?", source, sourceID).
		First(&e).Error
	if err != nil {
		return nil, wrap("find cash entry by source", "cash entry", err)
	}
	return &e, nil
}

func (s *Store) CreateCashEntry(ctx context.Context, e *models.CashEntry) error {
	if e.Source == "" {
		e.Source = models.CashSourceManual
	}
	return wrap("create cash entry", "cash entry", s.conn(ctx).Create(e).Error)
}

func (s *Store) UpdateCashEntry(ctx context.Context, e *models.CashEntry) error {
	res := s.conn(ctx).Model(&models.CashEntry{}).
		Where("id = ?", e.ID).
		Select("*").Omit("id", "created_at").
		Updates(e)
	if res.Error != nil {
		return wrap("update cash entry", "cash entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cash entry")
	}
	return nil
}

func (s *Store) DeleteCashEntry(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.CashEntry{})
	if res.Error != nil {
		return wrap("delete cash entry", "cash entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("cash entry")
	}
	return nil
}

// ==================== Inventory ====================

func (s *Store) ListInventoryItems(ctx context.Context) ([]models.InventoryItem, error) {
	var out []models.InventoryItem
	if err := s.conn(ctx).Order("created_at asc").Find(&out).Error; err != nil {
		return nil, wrap("list inventory", "inventory item", err)
	}
	return out, nil
}

func (s *Store) GetInventoryItem(ctx context.Context, id string) (*models.InventoryItem, error) {
	var it models.InventoryItem
	if err := s.conn(ctx).First(&it, "id = ?", id).Error; err != nil {
		return nil, wrap("get inventory item", "inventory item", err)
	}
	return &it, nil
}

func (s *Store) GetInventoryItemByName(ctx context.Context, itemName string) (*models.InventoryItem, error) {
	var it models.InventoryItem
	err := s.conn(ctx).
		Where("item_name = ?", itemName).
		Order("created_at asc").
		First(&it).Error
	if err != nil {
		return nil, wrap("get inventory item by name", "inventory item", err)
	}
	return &it, nil
}

func (s *Store) CreateInventoryItem(ctx context.Context, it *models.InventoryItem) error {
	return wrap("create inventory item", "inventory item", s.conn(ctx).Create(it).Error)
}

func (s *Store) DeleteInventoryItem(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.InventoryItem{})
	if res.Error != nil {
		return wrap("delete inventory item", "inventory item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("inventory item")
	}
	return nil
}

// AdjustInventory okuma-yazma yerine tek bir UPDATE ile değeri düşürür.
func (s *Store) AdjustInventory(ctx context.Context, itemName string, valueSold, quantitySold decimal.Decimal) error {
	it, err := s.GetInventoryItemByName(ctx, itemName)
	if err != nil {
		return err
	}
	res := s.conn(ctx).Model(&models.InventoryItem{}).
		Where("id = ?", it.ID).
		Updates(map[string]any{
			"value":      gorm.Expr("value - ?", valueSold),
			"units_sold": gorm.Expr("units_sold + ?", quantitySold),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return wrap("adjust inventory", "inventory item", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("inventory item")
	}
	return nil
}

// ==================== Customers ====================

func (s *Store) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	var out []models.Customer
	if err := s.conn(ctx).Order("name asc").Find(&out).Error; err != nil {
		return nil, wrap("list customers", "customer", err)
	}
	return out, nil
}

func (s *Store) GetCustomer(ctx context.Context, name string) (*models.Customer, error) {
	var c models.Customer
	if err := s.conn(ctx).First(&c, "name = ?", name).Error; err != nil {
		return nil, wrap("get customer", "customer", err)
	}
	return &c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	return wrap("create customer", "customer", s.conn(ctx).Create(c).Error)
}

func (s *Store) ListCustomerEntries(ctx context.Context, customer string) ([]models.CustomerEntry, error) {
	var out []models.CustomerEntry
	err := s.conn(ctx).
		Where("customer_name = ?", customer).
		Order("date asc, created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, wrap("list customer entries", "transaction", err)
	}
	return out, nil
}

func (s *Store) ListEntriesByItem(ctx context.Context, itemName string) ([]models.CustomerEntry, error) {
	var out []models.CustomerEntry
	err := s.conn(ctx).
		Where("item_name = ?", itemName).
		Order("date asc, created_at asc").
		Find(&out).Error
	if err != nil {
		return nil, wrap("list entries by item", "transaction", err)
	}
	return out, nil
}

func (s *Store) GetCustomerEntry(ctx context.Context, customer, id string) (*models.CustomerEntry, error) {
	var e models.CustomerEntry
	err := s.conn(ctx).First(&e, "id = ? AND customer_name = ?", id, customer).Error
	if err != nil {
		return nil, wrap("get customer entry", "transaction", err)
	}
	return &e, nil
}

func (s *Store) CreateCustomerEntry(ctx context.Context, e *models.CustomerEntry) error {
	if _, err := s.GetCustomer(ctx, e.CustomerName); err != nil {
		return err
	}
	return wrap("create customer entry", "transaction", s.conn(ctx).Create(e).Error)
}

func (s *Store) DeleteCustomerEntry(ctx context.Context, customer, id string) error {
	res := s.conn(ctx).
		Where("id = ? AND customer_name = ?", id, customer).
		Delete(&models.CustomerEntry{})
	if res.Error != nil {
		return wrap("delete customer entry", "transaction", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("transaction")
	}
	return nil
}

// ==================== Miscellaneous ====================

func (s *Store) ListMiscEntries(ctx context.Context) ([]models.MiscEntry, error) {
	var out []models.MiscEntry
	if err := s.conn(ctx).Order("date asc, created_at asc").Find(&out).Error; err != nil {
		return nil, wrap("list misc entries", "miscellaneous entry", err)
	}
	return out, nil
}

func (s *Store) GetMiscEntry(ctx context.Context, id string) (*models.MiscEntry, error) {
	var e models.MiscEntry
	if err := s.conn(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, wrap("get misc entry", "miscellaneous entry", err)
	}
	return &e, nil
}

func (s *Store) CreateMiscEntry(ctx context.Context, e *models.MiscEntry) error {
	return wrap("create misc entry", "miscellaneous entry", s.conn(ctx).Create(e).Error)
}

func (s *Store) UpdateMiscEntry(ctx context.Context, e *models.MiscEntry) error {
	res := s.conn(ctx).Model(&models.MiscEntry{}).
		Where("id = ?", e.ID).
		Select("*").Omit("id", "created_at").
		Updates(e)
	if res.Error != nil {
		return wrap("update misc entry", "miscellaneous entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("miscellaneous entry")
	}
	return nil
}

func (s *Store) DeleteMiscEntry(ctx context.Context, id string) error {
	res := s.conn(ctx).Where("id = ?", id).Delete(&models.MiscEntry{})
	if res.Error != nil {
		return wrap("delete misc entry", "miscellaneous entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("miscellaneous entry")
	}
	return nil
}

// ==================== Audit ====================

func (s *Store) CreateAuditLog(ctx context.Context, l *models.AuditLog) error {
	return wrap("create audit log", "audit log", s.conn(ctx).Create(l).Error)
}

func (s *Store) ListAuditLogs(ctx context.Context, f store.AuditFilter) ([]models.AuditLog, error) {
	q := s.conn(ctx).Model(&models.AuditLog{})
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var out []models.AuditLog
	if err := q.Order("created_at desc").Find(&out).Error; err != nil {
		return nil, wrap("list audit logs", "audit log", err)
	}
	return out, nil
}

// ==================== Users ====================

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return wrap("create user", "user", s.conn(ctx).Create(u).Error)
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, wrap("get user", "user", err)
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, wrap("get user by email", "user", err)
	}
	return &u, nil
}

func (s *Store) CountUsersByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var n int64
	if err := s.conn(ctx).Model(&models.User{}).Where("role = ?", role).Count(&n).Error; err != nil {
		return 0, wrap("count users", "user", err)
	}
	return n, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.conn(ctx).AutoMigrate(models.All()...); err != nil {
		return apperr.Storage("gormstore: migrate", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return apperr.Storage("gormstore: ping", err)
	}
	return apperr.Storage("gormstore: ping", sqlDB.PingContext(ctx))
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
