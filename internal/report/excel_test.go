package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"shop-ledger/internal/ledger"
	"shop-ledger/internal/models"
)

func TestCashWorkbook(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.CashEntry{
		{Date: day, Type: models.CashComesIn, Amount: decimal.NewFromInt(120), Remarks: "sales", Source: models.CashSourceManual},
		{Date: day, Type: models.CashPayment, Amount: decimal.NewFromInt(20), Remarks: "rent", Source: models.CashSourceManual},
	}
	f, err := CashWorkbook(entries)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(CashSheet)
	if err != nil {
		t.Fatal(err)
	}
	// başlık + 2 kayıt + boş satır + 3 toplam satırı
	if len(rows) != 7 {
		t.Fatalf("rows = %d, want 7: %v", len(rows), rows)
	}
	if rows[0][0] != "Date" || rows[1][0] != "2024-03-01" || rows[2][3] != "rent" {
		t.Errorf("unexpected rows: %v", rows)
	}
	if rows[6][1] != "Balance" || rows[6][2] != "100" {
		t.Errorf("balance row = %v", rows[6])
	}
}

func TestCustomerWorkbook(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.CustomerEntry{
		{Date: day, Type: models.EntryOnCredit, ItemName: "Widget", Quantity: decimal.NewFromInt(3), Rate: decimal.NewFromInt(10), Amount: decimal.NewFromInt(30)},
		{Date: day, Type: models.EntryCreditPayment, PaymentAmount: decimal.NewFromInt(10), Amount: decimal.NewFromInt(10), PaymentMode: models.PaymentModeUPI},
	}
	f, err := CustomerWorkbook(ledger.Summarize("Bob", entries), entries)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := f.GetCellValue(CustomerSheet, "F10")
	if err != nil {
		t.Fatal(err)
	}
	label, _ := f.GetCellValue(CustomerSheet, "B10")
	if label != "Net balance" || got != "20" {
		t.Errorf("net balance row = %q %q, want \"Net balance\" \"20\"", label, got)
	}
	mode, _ := f.GetCellValue(CustomerSheet, "H3")
	if mode != "upi" {
		t.Errorf("H3 = %q, want upi", mode)
	}
}
