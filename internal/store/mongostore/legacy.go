package mongostore

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"shop-ledger/internal/models"
)

// Eski uygulamanın yazdığı belgeler ObjectID _id, metin tarih ve düz sayı
// tutar. Okuma bu biçimleri de kabul eder; yazma her zaman yeni biçimdedir.

// idFilter matches both string ids and the hex form of a legacy ObjectID.
func idFilter(id string) bson.M {
	if oid, err := bson.ObjectIDFromHex(id); err == nil {
		return bson.M{"_id": bson.M{"$in": bson.A{id, oid}}}
	}
	return bson.M{"_id": id}
}

type docReader struct {
	raw bson.Raw
	err error
}

func newDocReader(data []byte) (*docReader, error) {
	raw := bson.Raw(data)
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	return &docReader{raw: raw}, nil
}

func (r *docReader) fail(key string, v bson.RawValue) {
	if r.err == nil {
		r.err = fmt.Errorf("mongostore: cannot decode %s of type %s", key, v.Type)
	}
}

func absent(v bson.RawValue) bool {
	return v.Type == 0 || v.Type == bson.TypeNull || v.Type == bson.TypeUndefined
}

func (r *docReader) id() string {
	v := r.raw.Lookup("_id")
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	r.fail("_id", v)
	return ""
}

// idTime is the creation time hidden in a legacy ObjectID.
func (r *docReader) idTime() time.Time {
	if oid, ok := r.raw.Lookup("_id").ObjectIDOK(); ok {
		return oid.Timestamp().UTC()
	}
	return time.Time{}
}

func (r *docReader) str(key string) string {
	v := r.raw.Lookup(key)
	if absent(v) {
		return ""
	}
	if s, ok := v.StringValueOK(); ok {
		return s
	}
	r.fail(key, v)
	return ""
}

func (r *docReader) time(key string) time.Time {
	v := r.raw.Lookup(key)
	if absent(v) {
		return time.Time{}
	}
	if t, ok := v.TimeOK(); ok {
		return t.UTC()
	}
	if s, ok := v.StringValueOK(); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}
		}
		for _, layout := range []string{"2006-01-02", time.RFC3339Nano} {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC()
			}
		}
	}
	r.fail(key, v)
	return time.Time{}
}

// dec reads Decimal128, the numeric BSON types and numeric strings.
func (r *docReader) dec(key string) decimal.Decimal {
	v := r.raw.Lookup(key)
	if absent(v) {
		return decimal.Zero
	}
	switch v.Type {
	case bson.TypeDecimal128:
		return fromD128(v.Decimal128())
	case bson.TypeDouble:
		return decimal.NewFromFloat(v.Double())
	case bson.TypeInt32:
		return decimal.NewFromInt32(v.Int32())
	case bson.TypeInt64:
		return decimal.NewFromInt(v.Int64())
	case bson.TypeString:
		s := strings.TrimSpace(v.StringValue())
		if s == "" {
			return decimal.Zero
		}
		if d, err := decimal.NewFromString(s); err == nil {
			return d
		}
	}
	r.fail(key, v)
	return decimal.Zero
}

func (r *docReader) createdAt() time.Time {
	if t := r.time("created_at"); !t.IsZero() {
		return t
	}
	return r.idTime()
}

func (d *cashDoc) UnmarshalBSON(data []byte) error {
	r, err := newDocReader(data)
	if err != nil {
		return err
	}
	typ := r.str("type")
	if t, ok := models.ParseCashType(typ); ok {
		typ = string(t)
	}
	source := r.str("source")
	if source == "" {
		source = string(models.CashSourceManual)
	}
	*d = cashDoc{
		ID:             r.id(),
		Date:           r.time("date"),
		Type:           typ,
		Amount:         toD128(r.dec("amount")),
		Remarks:        r.str("remarks"),
		Source:         source,
		SourceID:       r.str("source_id"),
		SourceCustomer: r.str("source_customer"),
		CreatedAt:      r.createdAt(),
		UpdatedAt:      r.time("updated_at"),
	}
	return r.err
}

func (d *itemDoc) UnmarshalBSON(data []byte) error {
	r, err := newDocReader(data)
	if err != nil {
		return err
	}
	value := r.dec("value")
	opening := value
	if !absent(r.raw.Lookup("opening_value")) {
		opening = r.dec("opening_value")
	}
	*d = itemDoc{
		ID:           r.id(),
		InventoryID:  r.str("inventory_id"),
		ItemName:     r.str("item_name"),
		Value:        toD128(value),
		OpeningValue: toD128(opening),
		UnitsSold:    toD128(r.dec("units_sold")),
		Currency:     r.str("currency"),
		CreatedAt:    r.createdAt(),
		UpdatedAt:    r.time("updated_at"),
	}
	return r.err
}

func (d *entryDoc) UnmarshalBSON(data []byte) error {
	r, err := newDocReader(data)
	if err != nil {
		return err
	}
	*d = entryDoc{
		ID:              r.id(),
		ItemName:        r.str("item_name"),
		Date:            r.time("date"),
		Type:            r.str("type"),
		Quantity:        toD128(r.dec("quantity")),
		Rate:            toD128(r.dec("rate")),
		Amount:          toD128(r.dec("amount")),
		Remarks:         r.str("remarks"),
		PaymentAmount:   toD128(r.dec("payment_amount")),
		DiscountAllowed: toD128(r.dec("discount_allowed")),
		PaymentMode:     r.str("payment_mode"),
		CreatedAt:       r.createdAt(),
	}
	return r.err
}

func (d *miscDoc) UnmarshalBSON(data []byte) error {
	r, err := newDocReader(data)
	if err != nil {
		return err
	}
	typ := r.str("type")
	if t, ok := models.ParseCashType(typ); ok {
		typ = string(t)
	}
	*d = miscDoc{
		ID:        r.id(),
		Date:      r.time("date"),
		Type:      typ,
		Amount:    toD128(r.dec("amount")),
		Remarks:   r.str("remarks"),
		CreatedAt: r.createdAt(),
		UpdatedAt: r.time("updated_at"),
	}
	return r.err
}
