package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

// CashInput is a user-entered cash movement.
type CashInput struct {
	Date    time.Time
	Type    models.CashType
	Amount  decimal.Decimal
	Remarks string
}

func (in CashInput) validate() error {
	if err := requireDate(in.Date); err != nil {
		return err
	}
	if in.Type != models.CashComesIn && in.Type != models.CashPayment {
		return apperr.Validation("type", "type must be comes_in or payment")
	}
	if !in.Amount.IsPositive() {
		return apperr.Validation("amount", "amount must be greater than 0")
	}
	return checkScale("amount", in.Amount, MoneyPlaces)
}

func (s *Service) ListCash(ctx context.Context) ([]models.CashEntry, error) {
	return s.store.ListCashEntries(ctx)
}

func (s *Service) CashSummary(ctx context.Context) (Totals, error) {
	entries, err := s.store.ListCashEntries(ctx)
	if err != nil {
		return Totals{}, err
	}
	return CashTotals(entries), nil
}

func (s *Service) CreateCash(ctx context.Context, in CashInput) (*models.CashEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := &models.CashEntry{
		ID:      uuid.NewString(),
		Date:    in.Date,
		Type:    in.Type,
		Amount:  in.Amount,
		Remarks: in.Remarks,
		Source:  models.CashSourceManual,
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.CreateCashEntry(ctx, e); err != nil {
			return err
		}
		desc := fmt.Sprintf("cash %s %s", e.Type, e.Amount.StringFixed(2))
		return writeAudit(ctx, tx, entityCash, e.ID, models.AuditActionCreate, desc, nil, e)
	})
	if err != nil {
		s.logFailure("CreateCash", in, err)
		return nil, err
	}
	return e, nil
}

func errDerived(e *models.CashEntry) error {
	return apperr.Validation("", fmt.Sprintf("cash entry is linked to a %s record and changes with it", e.Source))
}

func (s *Service) UpdateCash(ctx context.Context, id string, in CashInput) (*models.CashEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var updated *models.CashEntry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		old, err := tx.GetCashEntry(ctx, id)
		if err != nil {
			return err
		}
		if old.Derived() {
			return errDerived(old)
		}
		e := *old
		e.Date, e.Type, e.Amount, e.Remarks = in.Date, in.Type, in.Amount, in.Remarks
		if err := tx.UpdateCashEntry(ctx, &e); err != nil {
			return err
		}
		updated = &e
		return writeAudit(ctx, tx, entityCash, id, models.AuditActionUpdate, "cash entry updated", old, &e)
	})
	if err != nil {
		s.logFailure("UpdateCash", id, err)
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteCash(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		old, err := tx.GetCashEntry(ctx, id)
		if err != nil {
			return err
		}
		if old.Derived() {
			return errDerived(old)
		}
		if err := tx.DeleteCashEntry(ctx, id); err != nil {
			return err
		}
		return writeAudit(ctx, tx, entityCash, id, models.AuditActionDelete, "cash entry deleted", old, nil)
	})
	s.logFailure("DeleteCash", id, err)
	return err
}
