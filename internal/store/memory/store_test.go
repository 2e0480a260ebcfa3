package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
	"shop-ledger/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}

func TestInjectFaultFiresOnce(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.InjectFault("CreateMiscEntry", errors.New("disk full"))

	e := &models.MiscEntry{ID: uuid.NewString(), Type: models.CashPayment, Amount: decimal.NewFromInt(1)}
	if err := s.CreateMiscEntry(ctx, e); !apperr.IsStorage(err) {
		t.Fatalf("expected storage error, got %v", err)
	}
	if err := s.CreateMiscEntry(ctx, e); err != nil {
		t.Fatalf("fault must fire once, got %v", err)
	}
}

func TestReadsOutsideTxDoNotSeeUncommittedWrites(t *testing.T) {
	s := New()
	ctx := context.Background()

	inside := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
			if err := tx.CreateCashEntry(ctx, &models.CashEntry{ID: "c-1", Type: models.CashComesIn, Amount: decimal.NewFromInt(5)}); err != nil {
				return err
			}
			inside <- struct{}{}
			<-inside
			return errors.New("rollback")
		})
	}()

	<-inside
	list, err := s.ListCashEntries(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Fatalf("uncommitted entry visible: %d", len(list))
	}
	inside <- struct{}{}

	if err := <-done; err == nil {
		t.Fatal("expected rollback error")
	}
	list, _ = s.ListCashEntries(ctx)
	if len(list) != 0 {
		t.Fatalf("rolled back entry visible: %d", len(list))
	}
}
