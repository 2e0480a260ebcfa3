package mongostore

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"

	"shop-ledger/internal/models"
)

func toD128(d decimal.Decimal) bson.Decimal128 {
	v, err := bson.ParseDecimal128(d.String())
	if err != nil {
		return bson.NewDecimal128(0, 0)
	}
	return v
}

func fromD128(v bson.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ==================== Cash ====================

type cashDoc struct {
	ID             string          `bson:"_id"`
	Date           time.Time       `bson:"date"`
	Type           string          `bson:"type"`
	Amount         bson.Decimal128 `bson:"amount"`
	Remarks        string          `bson:"remarks,omitempty"`
	Source         string          `bson:"source"`
	SourceID       string          `bson:"source_id,omitempty"`
	SourceCustomer string          `bson:"source_customer,omitempty"`
	CreatedAt      time.Time       `bson:"created_at"`
	UpdatedAt      time.Time       `bson:"updated_at"`
}

func toCashDoc(e *models.CashEntry) *cashDoc {
	return &cashDoc{
		ID:             e.ID,
		Date:           e.Date,
		Type:           string(e.Type),
		Amount:         toD128(e.Amount),
		Remarks:        e.Remarks,
		Source:         string(e.Source),
		SourceID:       e.SourceID,
		SourceCustomer: e.SourceCustomer,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func fromCashDoc(d *cashDoc) models.CashEntry {
	return models.CashEntry{
		ID:             d.ID,
		Date:           d.Date,
		Type:           models.CashType(d.Type),
		Amount:         fromD128(d.Amount),
		Remarks:        d.Remarks,
		Source:         models.CashSource(d.Source),
		SourceID:       d.SourceID,
		SourceCustomer: d.SourceCustomer,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

// ==================== Inventory ====================

type itemDoc struct {
	ID           string          `bson:"_id"`
	InventoryID  string          `bson:"inventory_id"`
	ItemName     string          `bson:"item_name"`
	Value        bson.Decimal128 `bson:"value"`
	OpeningValue bson.Decimal128 `bson:"opening_value"`
	UnitsSold    bson.Decimal128 `bson:"units_sold"`
	Currency     string          `bson:"currency"`
	CreatedAt    time.Time       `bson:"created_at"`
	UpdatedAt    time.Time       `bson:"updated_at"`
}

func toItemDoc(it *models.InventoryItem) *itemDoc {
	return &itemDoc{
		ID:           it.ID,
		InventoryID:  it.InventoryID,
		ItemName:     it.ItemName,
		Value:        toD128(it.Value),
		OpeningValue: toD128(it.OpeningValue),
		UnitsSold:    toD128(it.UnitsSold),
		Currency:     it.Currency,
		CreatedAt:    it.CreatedAt,
		UpdatedAt:    it.UpdatedAt,
	}
}

func fromItemDoc(d *itemDoc) models.InventoryItem {
	return models.InventoryItem{
		ID:           d.ID,
		InventoryID:  d.InventoryID,
		ItemName:     d.ItemName,
		Value:        fromD128(d.Value),
		OpeningValue: fromD128(d.OpeningValue),
		UnitsSold:    fromD128(d.UnitsSold),
		Currency:     d.Currency,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// ==================== Customers ====================

type customerDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"created_at"`
}

// entryDoc müşteri koleksiyonunda durur; müşteri adı koleksiyon adıdır.
type entryDoc struct {
	ID              string          `bson:"_id"`
	ItemName        string          `bson:"item_name,omitempty"`
	Date            time.Time       `bson:"date"`
	Type            string          `bson:"type"`
	Quantity        bson.Decimal128 `bson:"quantity"`
	Rate            bson.Decimal128 `bson:"rate"`
	Amount          bson.Decimal128 `bson:"amount"`
	Remarks         string          `bson:"remarks,omitempty"`
	PaymentAmount   bson.Decimal128 `bson:"payment_amount"`
	DiscountAllowed bson.Decimal128 `bson:"discount_allowed"`
	PaymentMode     string          `bson:"payment_mode,omitempty"`
	CreatedAt       time.Time       `bson:"created_at"`
}

func toEntryDoc(e *models.CustomerEntry) *entryDoc {
	return &entryDoc{
		ID:              e.ID,
		ItemName:        e.ItemName,
		Date:            e.Date,
		Type:            string(e.Type),
		Quantity:        toD128(e.Quantity),
		Rate:            toD128(e.Rate),
		Amount:          toD128(e.Amount),
		Remarks:         e.Remarks,
		PaymentAmount:   toD128(e.PaymentAmount),
		DiscountAllowed: toD128(e.DiscountAllowed),
		PaymentMode:     string(e.PaymentMode),
		CreatedAt:       e.CreatedAt,
	}
}

func fromEntryDoc(customer string, d *entryDoc) models.CustomerEntry {
	return models.CustomerEntry{
		ID:              d.ID,
		CustomerName:    customer,
		ItemName:        d.ItemName,
		Date:            d.Date,
		Type:            models.EntryType(d.Type),
		Quantity:        fromD128(d.Quantity),
		Rate:            fromD128(d.Rate),
		Amount:          fromD128(d.Amount),
		Remarks:         d.Remarks,
		PaymentAmount:   fromD128(d.PaymentAmount),
		DiscountAllowed: fromD128(d.DiscountAllowed),
		PaymentMode:     models.PaymentMode(d.PaymentMode),
		CreatedAt:       d.CreatedAt,
	}
}

// ==================== Miscellaneous ====================

type miscDoc struct {
	ID        string          `bson:"_id"`
	Date      time.Time       `bson:"date"`
	Type      string          `bson:"type"`
	Amount    bson.Decimal128 `bson:"amount"`
	Remarks   string          `bson:"remarks,omitempty"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

func toMiscDoc(e *models.MiscEntry) *miscDoc {
	return &miscDoc{
		ID:        e.ID,
		Date:      e.Date,
		Type:      string(e.Type),
		Amount:    toD128(e.Amount),
		Remarks:   e.Remarks,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

func fromMiscDoc(d *miscDoc) models.MiscEntry {
	return models.MiscEntry{
		ID:        d.ID,
		Date:      d.Date,
		Type:      models.CashType(d.Type),
		Amount:    fromD128(d.Amount),
		Remarks:   d.Remarks,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// ==================== Audit & users ====================

type auditDoc struct {
	ID          string    `bson:"_id"`
	CreatedAt   time.Time `bson:"created_at"`
	UserID      string    `bson:"user_id,omitempty"`
	UserName    string    `bson:"user_name,omitempty"`
	EntityType  string    `bson:"entity_type"`
	EntityID    string    `bson:"entity_id"`
	Action      string    `bson:"action"`
	Description string    `bson:"description"`
	BeforeData  string    `bson:"before_data"`
	AfterData   string    `bson:"after_data"`
}

func toAuditDoc(l *models.AuditLog) *auditDoc {
	return &auditDoc{
		ID:          l.ID,
		CreatedAt:   l.CreatedAt,
		UserID:      l.UserID,
		UserName:    l.UserName,
		EntityType:  l.EntityType,
		EntityID:    l.EntityID,
		Action:      string(l.Action),
		Description: l.Description,
		BeforeData:  l.BeforeData,
		AfterData:   l.AfterData,
	}
}

func fromAuditDoc(d *auditDoc) models.AuditLog {
	return models.AuditLog{
		ID:          d.ID,
		CreatedAt:   d.CreatedAt,
		UserID:      d.UserID,
		UserName:    d.UserName,
		EntityType:  d.EntityType,
		EntityID:    d.EntityID,
		Action:      models.AuditAction(d.Action),
		Description: d.Description,
		BeforeData:  d.BeforeData,
		AfterData:   d.AfterData,
	}
}

type userDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"password_hash"`
	Role         string    `bson:"role"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toUserDoc(u *models.User) *userDoc {
	return &userDoc{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func fromUserDoc(d *userDoc) models.User {
	return models.User{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         models.UserRole(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
