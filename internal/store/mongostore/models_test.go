package mongostore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"shop-ledger/internal/models"
)

func decimalFrom(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	v, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "12.5", "-100.25", "999999999.99"} {
		v := fromD128(toD128(decimalFrom(t, s)))
		if v.String() != decimalFrom(t, s).String() {
			t.Fatalf("%s: round trip gave %s", s, v)
		}
	}
}

func assertDec(t *testing.T, field string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimalFrom(t, want)) {
		t.Fatalf("%s: expected %s, got %s", field, want, got)
	}
}

func TestDecodeOldAppEntry(t *testing.T) {
	oid := bson.NewObjectID()
	raw, err := bson.Marshal(bson.M{
		"_id":       oid,
		"item_name": "Rice",
		"date":      "2025-01-05",
		"type":      "on_credit",
		"quantity":  int32(2),
		"rate":      int64(100),
		"amount":    200.0,
		"remarks":   "first sale",
	})
	if err != nil {
		t.Fatal(err)
	}
	var d entryDoc
	if err := bson.Unmarshal(raw, &d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	e := fromEntryDoc("Acme", &d)
	if e.ID != oid.Hex() {
		t.Fatalf("expected id %s, got %s", oid.Hex(), e.ID)
	}
	if !e.Date.Equal(time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", e.Date)
	}
	if e.Type != models.EntryOnCredit || e.ItemName != "Rice" {
		t.Fatalf("unexpected entry %+v", e)
	}
	assertDec(t, "quantity", e.Quantity, "2")
	assertDec(t, "rate", e.Rate, "100")
	assertDec(t, "amount", e.Amount, "200")
	assertDec(t, "payment_amount", e.PaymentAmount, "0")
	if e.CreatedAt.IsZero() {
		t.Fatal("created_at should fall back to the object id time")
	}
}

func TestDecodeOldAppCashAndItem(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"_id":     bson.NewObjectID(),
		"date":    "2025-01-05",
		"type":    "comes in",
		"amount":  150.5,
		"remarks": "opening",
	})
	if err != nil {
		t.Fatal(err)
	}
	var c cashDoc
	if err := bson.Unmarshal(raw, &c); err != nil {
		t.Fatalf("decode cash: %v", err)
	}
	cash := fromCashDoc(&c)
	if cash.Type != models.CashComesIn || cash.Source != models.CashSourceManual {
		t.Fatalf("unexpected cash entry %+v", cash)
	}
	assertDec(t, "cash amount", cash.Amount, "150.5")

	raw, err = bson.Marshal(bson.M{
		"_id":          bson.NewObjectID(),
		"inventory_id": "INV-1",
		"item_name":    "Rice",
		"value":        int32(1000),
		"currency":     "INR",
	})
	if err != nil {
		t.Fatal(err)
	}
	var it itemDoc
	if err := bson.Unmarshal(raw, &it); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	item := fromItemDoc(&it)
	assertDec(t, "value", item.Value, "1000")
	assertDec(t, "opening_value", item.OpeningValue, "1000")
	assertDec(t, "units_sold", item.UnitsSold, "0")
	if item.InventoryID != "INV-1" || item.Currency != "INR" {
		t.Fatalf("unexpected item %+v", item)
	}
}

func TestDecodeCurrentDocument(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	in := &models.MiscEntry{
		ID:        "m1",
		Date:      now,
		Type:      models.CashPayment,
		Amount:    decimalFrom(t, "12.34"),
		CreatedAt: now,
		UpdatedAt: now,
	}
	raw, err := bson.Marshal(toMiscDoc(in))
	if err != nil {
		t.Fatal(err)
	}
	var d miscDoc
	if err := bson.Unmarshal(raw, &d); err != nil {
		t.Fatal(err)
	}
	out := fromMiscDoc(&d)
	if out.ID != "m1" || out.Type != models.CashPayment || !out.Date.Equal(now) || !out.CreatedAt.Equal(now) {
		t.Fatalf("unexpected entry %+v", out)
	}
	assertDec(t, "amount", out.Amount, "12.34")
}

func TestDecodeRejectsWrongType(t *testing.T) {
	raw, err := bson.Marshal(bson.M{"_id": "x", "amount": true})
	if err != nil {
		t.Fatal(err)
	}
	var d cashDoc
	if err := bson.Unmarshal(raw, &d); err == nil {
		t.Fatal("expected decode error for boolean amount")
	}
}

func TestIDFilter(t *testing.T) {
	if f := idFilter("plain-id"); f["_id"] != "plain-id" {
		t.Fatalf("unexpected filter %v", f)
	}
	oid := bson.NewObjectID()
	f := idFilter(oid.Hex())
	in, ok := f["_id"].(bson.M)
	if !ok {
		t.Fatalf("expected $in filter, got %v", f)
	}
	if vals, ok := in["$in"].(bson.A); !ok || len(vals) != 2 || vals[1] != oid {
		t.Fatalf("unexpected $in values %v", in["$in"])
	}
}
