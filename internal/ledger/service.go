// Package ledger holds the bookkeeping rules: it validates user actions and
// fans each one out into the customer, inventory and cash ledgers inside a
// single storage transaction.
package ledger

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/audit"
	"shop-ledger/internal/config"
	"shop-ledger/internal/lock"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

const (
	entityCash     = "cash_entry"
	entityItem     = "inventory_item"
	entityCustomer = "customer"
	entityEntry    = "customer_entry"
	entityMisc     = "misc_entry"
)

type Service struct {
	store    store.Store
	locker   lock.Locker
	currency string
	log      *logrus.Logger
}

// New returns a Service. currency is the default for inventory items
// created without one.
func New(st store.Store, locker lock.Locker, currency string) *Service {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &Service{
		store:    st,
		locker:   locker,
		currency: currency,
		log:      config.GetLogger(),
	}
}

func customerLockKey(name string) string { return "customer:" + name }

// withCustomer serializes the read-validate-write window of one customer
// ledger and runs fn in a transaction.
func (s *Service) withCustomer(ctx context.Context, customer string, fn store.TxFunc) error {
	release, err := s.locker.Obtain(ctx, customerLockKey(customer))
	if err != nil {
		return err
	}
	defer release()
	return s.store.WithTx(ctx, fn)
}

func (s *Service) logFailure(funcName string, data any, err error) {
	if apperr.IsStorage(err) {
		config.LogError(s.log, "ledger", funcName, "storage failure", data, err)
	}
}

func requireDate(d time.Time) error {
	if d.IsZero() {
		return apperr.Validation("date", "date is required")
	}
	return nil
}

func writeAudit(ctx context.Context, tx store.Store, entityType, entityID string, action models.AuditAction, desc string, before, after any) error {
	return audit.Write(ctx, tx, audit.LogOptions{
		EntityType:  entityType,
		EntityID:    entityID,
		Action:      action,
		Description: desc,
		Before:      before,
		After:       after,
	})
}
