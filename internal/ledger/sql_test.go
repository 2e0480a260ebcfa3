package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/lock"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store/gormstore"
)

var sqlSeq atomic.Int64

// newSQLService runs the ledger on an in-memory sqlite database so the
// numeric column scales take part in the test.
func newSQLService(t *testing.T) (*Service, *gormstore.Store) {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_%d?mode=memory&cache=shared", sqlSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)

	st := gormstore.New(db)
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return New(st, lock.NewLocal(), "INR"), st
}

func TestFractionalSaleRoundsToMoney(t *testing.T) {
	svc, st := newSQLService(t)
	ctx := context.Background()
	seed(t, svc, "Ravi", "Widget", "1000")

	e, err := svc.AddTransaction(ctx, "Ravi", sale(models.EntryOnCredit, "Widget", "0.5", "10.25"))
	if err != nil {
		t.Fatal(err)
	}
	assertDec(t, "amount", e.Amount, "5.13")

	stored, err := st.GetCustomerEntry(ctx, "Ravi", e.ID)
	if err != nil {
		t.Fatal(err)
	}
	assertDec(t, "stored amount", stored.Amount, "5.13")
	assertDec(t, "stored quantity", stored.Quantity, "0.5")
	assertDec(t, "value after sale", itemValue(t, st, "Widget"), "994.87")
	assertDec(t, "balance", balance(t, svc, "Ravi"), "5.13")

	rows, err := svc.ReconcileInventory(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || !rows[0].Drift.IsZero() {
		t.Fatalf("expected no drift, got %+v", rows)
	}

	if err := svc.DeleteTransaction(ctx, "Ravi", e.ID); err != nil {
		t.Fatal(err)
	}
	assertDec(t, "value after delete", itemValue(t, st, "Widget"), "1000")
}

func TestAmountsBeyondColumnScaleAreRejected(t *testing.T) {
	svc, st := newSQLService(t)
	ctx := context.Background()
	seed(t, svc, "Ravi", "Widget", "1000")

	checks := []struct {
		name  string
		err   error
		field string
	}{
		{"cash", func() error {
			_, err := svc.CreateCash(ctx, CashInput{Date: day, Type: models.CashComesIn, Amount: d("10.001")})
			return err
		}(), "amount"},
		{"misc", func() error {
			_, err := svc.CreateMisc(ctx, CashInput{Date: day, Type: models.CashPayment, Amount: d("0.005")})
			return err
		}(), "amount"},
		{"item", func() error {
			_, err := svc.CreateInventoryItem(ctx, InventoryInput{ItemName: "Gadget", Value: d("99.999")})
			return err
		}(), "value"},
		{"adjust", svc.AdjustInventory(ctx, "Widget", d("1.001"), d("1")), "value_sold"},
		{"adjust quantity", svc.AdjustInventory(ctx, "Widget", d("1"), d("0.0001")), "quantity_sold"},
	}
	for _, c := range checks {
		var ve apperr.ValidationError
		if !errors.As(c.err, &ve) || ve.Field != c.field {
			t.Fatalf("%s: expected validation error on %s, got %v", c.name, c.field, c.err)
		}
	}

	assertDec(t, "value", itemValue(t, st, "Widget"), "1000")
	cash, err := st.ListCashEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cash) != 0 {
		t.Fatalf("expected no cash entries, got %d", len(cash))
	}
}
