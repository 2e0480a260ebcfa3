package gormstore

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
	"shop-ledger/internal/store/storetest"
)

var dbSeq atomic.Int64

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:gormstore_%d?mode=memory&cache=shared", dbSeq.Add(1))
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

	s := New(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestAdjustInventoryIsAtomic(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	it := &models.InventoryItem{ID: uuid.NewString(), ItemName: "Widget", Value: decimal.NewFromInt(1000), OpeningValue: decimal.NewFromInt(1000), Currency: "INR"}
	if err := s.CreateInventoryItem(ctx, it); err != nil {
		t.Fatal(err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.AdjustInventory(ctx, "Widget", decimal.NewFromInt(10), decimal.NewFromInt(1)); err != nil {
				t.Errorf("adjust: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := s.GetInventoryItem(ctx, it.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Value.Equal(decimal.NewFromInt(750)) {
		t.Fatalf("expected 750, got %s", got.Value)
	}
	if !got.UnitsSold.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("expected 25 units, got %s", got.UnitsSold)
	}
}
