package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

func (s *Service) ListMisc(ctx context.Context) ([]models.MiscEntry, error) {
	return s.store.ListMiscEntries(ctx)
}

func (s *Service) MiscSummary(ctx context.Context) (Totals, error) {
	entries, err := s.store.ListMiscEntries(ctx)
	if err != nil {
		return Totals{}, err
	}
	return MiscTotals(entries), nil
}

func mirrorRemarks(e *models.MiscEntry) string {
	if e.Remarks == "" {
		return "Miscellaneous"
	}
	return "Miscellaneous: " + e.Remarks
}

func applyMirror(cash *models.CashEntry, e *models.MiscEntry) {
	cash.Date = e.Date
	cash.Type = e.Type
	cash.Amount = e.Amount
	cash.Remarks = mirrorRemarks(e)
	cash.Source = models.CashSourceMiscellaneous
	cash.SourceID = e.ID
}

// CreateMisc records a miscellaneous entry and its mirror in the cash ledger.
func (s *Service) CreateMisc(ctx context.Context, in CashInput) (*models.MiscEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	e := &models.MiscEntry{
		ID:      uuid.NewString(),
		Date:    in.Date,
		Type:    in.Type,
		Amount:  in.Amount,
		Remarks: in.Remarks,
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.CreateMiscEntry(ctx, e); err != nil {
			return err
		}
		cash := &models.CashEntry{ID: uuid.NewString()}
		applyMirror(cash, e)
		if err := tx.CreateCashEntry(ctx, cash); err != nil {
			return err
		}
		desc := fmt.Sprintf("miscellaneous %s %s", e.Type, e.Amount.StringFixed(2))
		return writeAudit(ctx, tx, entityMisc, e.ID, models.AuditActionCreate, desc, nil, e)
	})
	if err != nil {
		s.logFailure("CreateMisc", in, err)
		return nil, err
	}
	return e, nil
}

// UpdateMisc changes an entry and keeps its cash mirror in step. A missing
// mirror is recreated.
func (s *Service) UpdateMisc(ctx context.Context, id string, in CashInput) (*models.MiscEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	var updated *models.MiscEntry
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		old, err := tx.GetMiscEntry(ctx, id)
		if err != nil {
			return err
		}
		e := *old
		e.Date, e.Type, e.Amount, e.Remarks = in.Date, in.Type, in.Amount, in.Remarks
		if err := tx.UpdateMiscEntry(ctx, &e); err != nil {
			return err
		}

		cash, err := tx.FindCashEntryBySource(ctx, models.CashSourceMiscellaneous, id)
		switch {
		case err == nil:
			applyMirror(cash, &e)
			if err := tx.UpdateCashEntry(ctx, cash); err != nil {
				return err
			}
		case apperr.IsNotFound(err):
			cash = &models.CashEntry{ID: uuid.NewString()}
			applyMirror(cash, &e)
			if err := tx.CreateCashEntry(ctx, cash); err != nil {
				return err
			}
		default:
			return err
		}

		updated = &e
		return writeAudit(ctx, tx, entityMisc, id, models.AuditActionUpdate, "miscellaneous entry updated", old, &e)
	})
	if err != nil {
		s.logFailure("UpdateMisc", id, err)
		return nil, err
	}
	return updated, nil
}

func (s *Service) DeleteMisc(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		old, err := tx.GetMiscEntry(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteMiscEntry(ctx, id); err != nil {
			return err
		}
		cash, err := tx.FindCashEntryBySource(ctx, models.CashSourceMiscellaneous, id)
		switch {
		case err == nil:
			if err := tx.DeleteCashEntry(ctx, cash.ID); err != nil {
				return err
			}
		case !apperr.IsNotFound(err):
			return err
		}
		return writeAudit(ctx, tx, entityMisc, id, models.AuditActionDelete, "miscellaneous entry deleted", old, nil)
	})
	s.logFailure("DeleteMisc", id, err)
	return err
}
