// Package storetest is the behavioural suite every store.Store backend must
// pass.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

// Factory returns an empty, migrated store.
type Factory func(t *testing.T) store.Store

func Run(t *testing.T, newStore Factory) {
	t.Run("Cash", func(t *testing.T) { testCash(t, newStore(t)) })
	t.Run("Inventory", func(t *testing.T) { testInventory(t, newStore(t)) })
	t.Run("Customers", func(t *testing.T) { testCustomers(t, newStore(t)) })
	t.Run("Misc", func(t *testing.T) { testMisc(t, newStore(t)) })
	t.Run("Audit", func(t *testing.T) { testAudit(t, newStore(t)) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("TxRollback", func(t *testing.T) { testTxRollback(t, newStore(t)) })
	t.Run("TxCommit", func(t *testing.T) { testTxCommit(t, newStore(t)) })
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(day int) time.Time { return time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC) }

func mustNotFound(t *testing.T, what string, err error) {
	t.Helper()
	if !apperr.IsNotFound(err) {
		t.Fatalf("%s: expected not found, got %v", what, err)
	}
}

func testCash(t *testing.T, s store.Store) {
	ctx := context.Background()

	late := &models.CashEntry{ID: uuid.NewString(), Date: date(5), Type: models.CashPayment, Amount: d("40.50"), Remarks: "tea"}
	early := &models.CashEntry{
		ID:             uuid.NewString(),
		Date:           date(2),
		Type:           models.CashComesIn,
		Amount:         d("100"),
		Source:         models.CashSourceCustomerPayment,
		SourceID:       "entry-1",
		SourceCustomer: "Ravi",
	}
	for _, e := range []*models.CashEntry{late, early} {
		if err := s.CreateCashEntry(ctx, e); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if late.Source != models.CashSourceManual {
		t.Fatalf("source should default to manual, got %q", late.Source)
	}

	list, err := s.ListCashEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != early.ID || list[1].ID != late.ID {
		t.Fatalf("expected date order, got %+v", list)
	}
	if !list[1].Amount.Equal(d("40.50")) {
		t.Fatalf("amount round trip: %s", list[1].Amount)
	}

	got, err := s.FindCashEntryBySource(ctx, models.CashSourceCustomerPayment, "entry-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != early.ID || got.SourceCustomer != "Ravi" {
		t.Fatalf("unexpected linked entry: %+v", got)
	}
	_, err = s.FindCashEntryBySource(ctx, models.CashSourceMiscellaneous, "entry-1")
	mustNotFound(t, "find by other source", err)

	late.Amount = d("45")
	late.Remarks = "tea and snacks"
	if err := s.UpdateCashEntry(ctx, late); err != nil {
		t.Fatal(err)
	}
	got, err = s.GetCashEntry(ctx, late.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Amount.Equal(d("45")) || got.Remarks != "tea and snacks" {
		t.Fatalf("update not stored: %+v", got)
	}

	mustNotFound(t, "update missing", s.UpdateCashEntry(ctx, &models.CashEntry{ID: uuid.NewString(), Date: date(1), Type: models.CashPayment, Amount: d("1")}))
	if err := s.DeleteCashEntry(ctx, late.ID); err != nil {
		t.Fatal(err)
	}
	mustNotFound(t, "delete twice", s.DeleteCashEntry(ctx, late.ID))
	_, err = s.GetCashEntry(ctx, late.ID)
	mustNotFound(t, "get deleted", err)
}

func testInventory(t *testing.T, s store.Store) {
	ctx := context.Background()

	it := &models.InventoryItem{ID: uuid.NewString(), InventoryID: "INV-7", ItemName: "Widget", Value: d("1000"), OpeningValue: d("1000"), Currency: "INR"}
	if err := s.CreateInventoryItem(ctx, it); err != nil {
		t.Fatal(err)
	}

	if err := s.AdjustInventory(ctx, "Widget", d("200"), d("2")); err != nil {
		t.Fatal(err)
	}
	if err := s.AdjustInventory(ctx, "Widget", d("-100"), d("-1")); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetInventoryItemByName(ctx, "Widget")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Value.Equal(d("900")) || !got.UnitsSold.Equal(d("1")) {
		t.Fatalf("expected value 900 units 1, got %s / %s", got.Value, got.UnitsSold)
	}
	if !got.OpeningValue.Equal(d("1000")) {
		t.Fatalf("opening value must not move, got %s", got.OpeningValue)
	}

	mustNotFound(t, "adjust missing", s.AdjustInventory(ctx, "Gizmo", d("1"), d("1")))
	_, err = s.GetInventoryItemByName(ctx, "Gizmo")
	mustNotFound(t, "get missing", err)

	items, err := s.ListInventoryItems(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].InventoryID != "INV-7" {
		t.Fatalf("unexpected list: %+v", items)
	}

	if err := s.DeleteInventoryItem(ctx, it.ID); err != nil {
		t.Fatal(err)
	}
	mustNotFound(t, "delete twice", s.DeleteInventoryItem(ctx, it.ID))
}

func testCustomers(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, name := range []string{"Ravi", "Meena"} {
		if err := s.CreateCustomer(ctx, &models.Customer{ID: uuid.NewString(), Name: name}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	if err := s.CreateCustomer(ctx, &models.Customer{ID: uuid.NewString(), Name: "Ravi"}); err == nil {
		t.Fatal("duplicate customer must fail")
	}
	list, err := s.ListCustomers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 customers, got %d", len(list))
	}
	_, err = s.GetCustomer(ctx, "Nobody")
	mustNotFound(t, "get missing customer", err)

	orphan := &models.CustomerEntry{ID: uuid.NewString(), CustomerName: "Nobody", Date: date(1), Type: models.EntryOnCash, Amount: d("1")}
	mustNotFound(t, "entry for missing customer", s.CreateCustomerEntry(ctx, orphan))

	sale := &models.CustomerEntry{
		ID: uuid.NewString(), CustomerName: "Ravi", ItemName: "Widget", Date: date(3),
		Type: models.EntryOnCredit, Quantity: d("2"), Rate: d("100"), Amount: d("200"),
	}
	pay := &models.CustomerEntry{
		ID: uuid.NewString(), CustomerName: "Ravi", Date: date(4),
		Type: models.EntryCreditPayment, Amount: d("50"), PaymentAmount: d("50"),
		DiscountAllowed: d("5"), PaymentMode: models.PaymentModeUPI,
	}
	other := &models.CustomerEntry{
		ID: uuid.NewString(), CustomerName: "Meena", ItemName: "Widget", Date: date(1),
		Type: models.EntryOnCash, Quantity: d("1"), Rate: d("100"), Amount: d("100"),
	}
	for _, e := range []*models.CustomerEntry{pay, sale, other} {
		if err := s.CreateCustomerEntry(ctx, e); err != nil {
			t.Fatalf("create entry: %v", err)
		}
	}

	entries, err := s.ListCustomerEntries(ctx, "Ravi")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].ID != sale.ID || entries[1].ID != pay.ID {
		t.Fatalf("expected Ravi's entries in date order, got %+v", entries)
	}
	if entries[1].PaymentMode != models.PaymentModeUPI || !entries[1].DiscountAllowed.Equal(d("5")) || entries[1].CustomerName != "Ravi" {
		t.Fatalf("payment fields lost: %+v", entries[1])
	}

	byItem, err := s.ListEntriesByItem(ctx, "Widget")
	if err != nil {
		t.Fatal(err)
	}
	if len(byItem) != 2 {
		t.Fatalf("expected entries from both customers, got %d", len(byItem))
	}

	_, err = s.GetCustomerEntry(ctx, "Meena", sale.ID)
	mustNotFound(t, "entry of another customer", err)
	got, err := s.GetCustomerEntry(ctx, "Ravi", sale.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Quantity.Equal(d("2")) || !got.Rate.Equal(d("100")) {
		t.Fatalf("unexpected entry: %+v", got)
	}

	mustNotFound(t, "delete from wrong ledger", s.DeleteCustomerEntry(ctx, "Meena", sale.ID))
	if err := s.DeleteCustomerEntry(ctx, "Ravi", sale.ID); err != nil {
		t.Fatal(err)
	}
	mustNotFound(t, "delete twice", s.DeleteCustomerEntry(ctx, "Ravi", sale.ID))
}

func testMisc(t *testing.T, s store.Store) {
	ctx := context.Background()

	e := &models.MiscEntry{ID: uuid.NewString(), Date: date(9), Type: models.CashPayment, Amount: d("75"), Remarks: "rent"}
	if err := s.CreateMiscEntry(ctx, e); err != nil {
		t.Fatal(err)
	}
	e.Type = models.CashComesIn
	e.Amount = d("80")
	if err := s.UpdateMiscEntry(ctx, e); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetMiscEntry(ctx, e.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Type != models.CashComesIn || !got.Amount.Equal(d("80")) || got.Remarks != "rent" {
		t.Fatalf("unexpected misc entry: %+v", got)
	}
	list, err := s.ListMiscEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(list))
	}
	if err := s.DeleteMiscEntry(ctx, e.ID); err != nil {
		t.Fatal(err)
	}
	mustNotFound(t, "delete twice", s.DeleteMiscEntry(ctx, e.ID))
	mustNotFound(t, "update deleted", s.UpdateMiscEntry(ctx, e))
}

func testAudit(t *testing.T, s store.Store) {
	ctx := context.Background()

	for i, typ := range []string{"cash_entry", "customer_entry", "cash_entry"} {
		l := &models.AuditLog{
			ID:         uuid.NewString(),
			UserID:     "u-1",
			UserName:   "Owner",
			EntityType: typ,
			EntityID:   typ + "-id",
			Action:     models.AuditActionCreate,
			BeforeData: "null",
			AfterData:  "{}",
		}
		if i == 1 {
			l.UserID = "u-2"
		}
		if err := s.CreateAuditLog(ctx, l); err != nil {
			t.Fatal(err)
		}
		// created_at sıralaması için
		time.Sleep(2 * time.Millisecond)
	}

	all, err := s.ListAuditLogs(ctx, store.AuditFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	if all[0].CreatedAt.Before(all[2].CreatedAt) {
		t.Fatal("expected newest first")
	}

	cash, _ := s.ListAuditLogs(ctx, store.AuditFilter{EntityType: "cash_entry"})
	if len(cash) != 2 {
		t.Fatalf("entity filter: expected 2, got %d", len(cash))
	}
	byUser, _ := s.ListAuditLogs(ctx, store.AuditFilter{UserID: "u-2"})
	if len(byUser) != 1 || byUser[0].EntityType != "customer_entry" {
		t.Fatalf("user filter: %+v", byUser)
	}
	limited, _ := s.ListAuditLogs(ctx, store.AuditFilter{Limit: 1})
	if len(limited) != 1 {
		t.Fatalf("limit: expected 1, got %d", len(limited))
	}
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	owner := &models.User{ID: uuid.NewString(), Name: "Owner", Email: "owner@shop.test", PasswordHash: "x", Role: models.RoleOwner}
	if err := s.CreateUser(ctx, owner); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateUser(ctx, &models.User{ID: uuid.NewString(), Name: "Again", Email: "owner@shop.test", PasswordHash: "y", Role: models.RoleClerk}); err == nil {
		t.Fatal("duplicate email must fail")
	}
	clerk := &models.User{ID: uuid.NewString(), Name: "Clerk", Email: "clerk@shop.test", PasswordHash: "z", Role: models.RoleClerk}
	if err := s.CreateUser(ctx, clerk); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetUserByEmail(ctx, "clerk@shop.test")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != clerk.ID || got.Role != models.RoleClerk {
		t.Fatalf("unexpected user: %+v", got)
	}
	if _, err := s.GetUser(ctx, owner.ID); err != nil {
		t.Fatal(err)
	}
	_, err = s.GetUser(ctx, uuid.NewString())
	mustNotFound(t, "missing user", err)

	n, err := s.CountUsersByRole(ctx, models.RoleOwner)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected 1 owner, got %d", n)
	}
}

var errAbort = errors.New("abort")

func testTxRollback(t *testing.T, s store.Store) {
	ctx := context.Background()

	it := &models.InventoryItem{ID: uuid.NewString(), ItemName: "Widget", Value: d("500"), OpeningValue: d("500"), Currency: "INR"}
	if err := s.CreateInventoryItem(ctx, it); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateCustomer(ctx, &models.Customer{ID: uuid.NewString(), Name: "Ravi"}); err != nil {
		t.Fatal(err)
	}

	err := s.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		e := &models.CustomerEntry{
			ID: uuid.NewString(), CustomerName: "Ravi", ItemName: "Widget", Date: date(1),
			Type: models.EntryOnCredit, Quantity: d("1"), Rate: d("100"), Amount: d("100"),
		}
		if err := tx.CreateCustomerEntry(ctx, e); err != nil {
			return err
		}
		if err := tx.AdjustInventory(ctx, "Widget", d("100"), d("1")); err != nil {
			return err
		}
		if err := tx.CreateCashEntry(ctx, &models.CashEntry{ID: uuid.NewString(), Date: date(1), Type: models.CashComesIn, Amount: d("100")}); err != nil {
			return err
		}
		return errAbort
	})
	if !errors.Is(err, errAbort) {
		t.Fatalf("expected the callback error back, got %v", err)
	}

	entries, _ := s.ListCustomerEntries(ctx, "Ravi")
	if len(entries) != 0 {
		t.Fatalf("entry survived rollback: %d", len(entries))
	}
	cash, _ := s.ListCashEntries(ctx)
	if len(cash) != 0 {
		t.Fatalf("cash survived rollback: %d", len(cash))
	}
	got, err := s.GetInventoryItemByName(ctx, "Widget")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Value.Equal(d("500")) {
		t.Fatalf("adjustment survived rollback: %s", got.Value)
	}
}

func testTxCommit(t *testing.T, s store.Store) {
	ctx := context.Background()

	id := uuid.NewString()
	err := s.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if err := tx.CreateMiscEntry(ctx, &models.MiscEntry{ID: id, Date: date(2), Type: models.CashPayment, Amount: d("10")}); err != nil {
			return err
		}
		// aynı transaction içinde okunabilmeli
		_, err := tx.GetMiscEntry(ctx, id)
		return err
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetMiscEntry(ctx, id); err != nil {
		t.Fatalf("committed entry missing: %v", err)
	}
}
