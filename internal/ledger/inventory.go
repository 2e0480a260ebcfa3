package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

type InventoryInput struct {
	InventoryID string
	ItemName    string
	Value       decimal.Decimal
	Currency    string
}

func (s *Service) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	return s.store.ListInventoryItems(ctx)
}

// CreateInventoryItem records a new item. item_name is the lookup key for
// customer transactions, so a second item with the same name is rejected.
func (s *Service) CreateInventoryItem(ctx context.Context, in InventoryInput) (*models.InventoryItem, error) {
	in.ItemName = strings.TrimSpace(in.ItemName)
	if in.ItemName == "" {
		return nil, apperr.Validation("item_name", "item_name is required")
	}
	if in.Value.IsNegative() {
		return nil, apperr.Validation("value", "value must not be negative")
	}
	if err := checkScale("value", in.Value, MoneyPlaces); err != nil {
		return nil, err
	}
	if in.Currency == "" {
		in.Currency = s.currency
	}

	it := &models.InventoryItem{
		ID:           uuid.NewString(),
		InventoryID:  strings.TrimSpace(in.InventoryID),
		ItemName:     in.ItemName,
		Value:        in.Value,
		OpeningValue: in.Value,
		Currency:     strings.ToUpper(in.Currency),
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetInventoryItemByName(ctx, it.ItemName); err == nil {
			return apperr.Conflict(fmt.Sprintf("inventory item %q already exists", it.ItemName))
		} else if !apperr.IsNotFound(err) {
			return err
		}
		if err := tx.CreateInventoryItem(ctx, it); err != nil {
			return err
		}
		desc := fmt.Sprintf("inventory item %s created at %s", it.ItemName, it.Value.StringFixed(2))
		return writeAudit(ctx, tx, entityItem, it.ID, models.AuditActionCreate, desc, nil, it)
	})
	if err != nil {
		s.logFailure("CreateInventoryItem", in, err)
		return nil, err
	}
	return it, nil
}

func (s *Service) DeleteInventoryItem(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		old, err := tx.GetInventoryItem(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.DeleteInventoryItem(ctx, id); err != nil {
			return err
		}
		return writeAudit(ctx, tx, entityItem, id, models.AuditActionDelete, "inventory item "+old.ItemName+" deleted", old, nil)
	})
	s.logFailure("DeleteInventoryItem", id, err)
	return err
}

// AdjustInventory decrements the value of the item named itemName by
// valueSold. quantitySold only feeds the informational units counter.
func (s *Service) AdjustInventory(ctx context.Context, itemName string, valueSold, quantitySold decimal.Decimal) error {
	itemName = strings.TrimSpace(itemName)
	if itemName == "" {
		return apperr.Validation("item_name", "item_name is required")
	}
	if err := checkScale("value_sold", valueSold, MoneyPlaces); err != nil {
		return err
	}
	if err := checkScale("quantity_sold", quantitySold, QuantityPlaces); err != nil {
		return err
	}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		return s.adjust(ctx, tx, itemName, valueSold, quantitySold, "manual adjustment")
	})
	s.logFailure("AdjustInventory", itemName, err)
	return err
}

func (s *Service) adjust(ctx context.Context, tx store.Store, itemName string, valueSold, quantitySold decimal.Decimal, reason string) error {
	before, err := tx.GetInventoryItemByName(ctx, itemName)
	if err != nil {
		return err
	}
	if err := tx.AdjustInventory(ctx, itemName, valueSold, quantitySold); err != nil {
		return err
	}
	after, err := tx.GetInventoryItem(ctx, before.ID)
	if err != nil {
		return err
	}
	desc := fmt.Sprintf("%s: %s value_sold=%s quantity_sold=%s", reason, itemName, valueSold.StringFixed(2), quantitySold.String())
	return writeAudit(ctx, tx, entityItem, before.ID, models.AuditActionAdjust, desc, before, after)
}

// ReconcileRow compares an item's stored value with the value replayed
// from every customer ledger.
type ReconcileRow struct {
	ItemID       string
	ItemName     string
	OpeningValue decimal.Decimal
	Value        decimal.Decimal
	Expected     decimal.Decimal
	Drift        decimal.Decimal
}

// ReconcileInventory recomputes each item's expected value as
// opening_value − Σ(amount × sign) over the stock-moving entries that name
// it. Manual adjustments show up as drift.
func (s *Service) ReconcileInventory(ctx context.Context) ([]ReconcileRow, error) {
	items, err := s.store.ListInventoryItems(ctx)
	if err != nil {
		return nil, err
	}
	rows := make([]ReconcileRow, 0, len(items))
	for _, it := range items {
		entries, err := s.store.ListEntriesByItem(ctx, it.ItemName)
		if err != nil {
			return nil, err
		}
		expected := it.OpeningValue
		for _, e := range entries {
			if !e.Type.MovesStock() || e.CreatedAt.Before(it.CreatedAt) {
				continue
			}
			expected = expected.Sub(e.Amount.Mul(e.Type.StockSign()))
		}
		rows = append(rows, ReconcileRow{
			ItemID:       it.ID,
			ItemName:     it.ItemName,
			OpeningValue: it.OpeningValue,
			Value:        it.Value,
			Expected:     expected,
			Drift:        it.Value.Sub(expected),
		})
	}
	return rows, nil
}
