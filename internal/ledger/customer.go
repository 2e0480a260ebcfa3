package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
	"shop-ledger/internal/store"
)

// ==================== Directory ====================

func (s *Service) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	all, err := s.store.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, c := range all {
		if !models.IsReservedScopeName(c.Name) {
			out = append(out, c)
		}
	}
	return out, nil
}

// CreateCustomer opens an empty ledger scope for name.
func (s *Service) CreateCustomer(ctx context.Context, name string) (*models.Customer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name", "name is required")
	}
	if models.IsReservedScopeName(name) {
		return nil, apperr.Validation("name", fmt.Sprintf("%q is a reserved name", name))
	}
	c := &models.Customer{ID: uuid.NewString(), Name: name}
	err := s.store.WithTx(ctx, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetCustomer(ctx, name); err == nil {
			return apperr.Conflict(fmt.Sprintf("customer %q already exists", name))
		} else if !apperr.IsNotFound(err) {
			return err
		}
		if err := tx.CreateCustomer(ctx, c); err != nil {
			return err
		}
		return writeAudit(ctx, tx, entityCustomer, c.ID, models.AuditActionCreate, "customer "+name+" created", nil, c)
	})
	if err != nil {
		s.logFailure("CreateCustomer", name, err)
		return nil, err
	}
	return c, nil
}

// ==================== Ledger ====================

func (s *Service) ListEntries(ctx context.Context, customer string) ([]models.CustomerEntry, error) {
	if _, err := s.store.GetCustomer(ctx, customer); err != nil {
		return nil, err
	}
	return s.store.ListCustomerEntries(ctx, customer)
}

func (s *Service) CustomerBalance(ctx context.Context, customer string) (CustomerSummary, error) {
	entries, err := s.ListEntries(ctx, customer)
	if err != nil {
		return CustomerSummary{}, err
	}
	return Summarize(customer, entries), nil
}

// TransactionInput is one customer transaction. Sales and returns use
// ItemName, Quantity and Rate; credit payments use PaymentAmount,
// DiscountAllowed and PaymentMode.
type TransactionInput struct {
	ItemName        string
	Date            time.Time
	Type            models.EntryType
	Quantity        decimal.Decimal
	Rate            decimal.Decimal
	Remarks         string
	PaymentAmount   decimal.Decimal
	DiscountAllowed decimal.Decimal
	PaymentMode     models.PaymentMode
}

func (in *TransactionInput) validate() error {
	in.ItemName = strings.TrimSpace(in.ItemName)
	if err := requireDate(in.Date); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return apperr.Validation("type", "type must be one of on_cash, on_credit, purchase_return, credit_payment")
	}
	if in.Type == models.EntryCreditPayment {
		if !in.PaymentAmount.IsPositive() {
			return apperr.Validation("payment_amount", "payment_amount must be greater than 0")
		}
		if in.DiscountAllowed.IsNegative() {
			return apperr.Validation("discount_allowed", "discount_allowed must not be negative")
		}
		if in.DiscountAllowed.GreaterThan(in.PaymentAmount) {
			return apperr.Validation("discount_allowed", "discount_allowed must not exceed payment_amount")
		}
		if !in.PaymentMode.Valid() {
			return apperr.Validation("payment_mode", "payment_mode must be one of cash, bank, upi")
		}
		if err := checkScale("payment_amount", in.PaymentAmount, MoneyPlaces); err != nil {
			return err
		}
		if err := checkScale("discount_allowed", in.DiscountAllowed, MoneyPlaces); err != nil {
			return err
		}
		in.Quantity, in.Rate = decimal.Zero, decimal.Zero
		return nil
	}
	if in.ItemName == "" {
		return apperr.Validation("item_name", "item_name is required")
	}
	if !in.Quantity.IsPositive() {
		return apperr.Validation("quantity", "quantity must be greater than 0")
	}
	if in.Rate.IsNegative() {
		return apperr.Validation("rate", "rate must not be negative")
	}
	if err := checkScale("quantity", in.Quantity, QuantityPlaces); err != nil {
		return err
	}
	if err := checkScale("rate", in.Rate, MoneyPlaces); err != nil {
		return err
	}
	// ödeme alanları yalnızca tahsilatta anlamlı
	in.PaymentAmount, in.DiscountAllowed, in.PaymentMode = decimal.Zero, decimal.Zero, ""
	return nil
}

// AddTransaction records a customer transaction together with its inventory
// adjustment and, for a cash credit payment, the cash receipt. Nothing is
// written when any step fails.
func (s *Service) AddTransaction(ctx context.Context, customer string, in TransactionInput) (*models.CustomerEntry, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	entry := &models.CustomerEntry{
		ID:              uuid.NewString(),
		CustomerName:    customer,
		ItemName:        in.ItemName,
		Date:            in.Date,
		Type:            in.Type,
		Quantity:        in.Quantity,
		Rate:            in.Rate,
		Amount:          ComputeAmount(in.Type, in.Quantity, in.Rate, in.PaymentAmount),
		Remarks:         in.Remarks,
		PaymentAmount:   in.PaymentAmount,
		DiscountAllowed: in.DiscountAllowed,
		PaymentMode:     in.PaymentMode,
	}

	err := s.withCustomer(ctx, customer, func(ctx context.Context, tx store.Store) error {
		if _, err := tx.GetCustomer(ctx, customer); err != nil {
			return err
		}
		entries, err := tx.ListCustomerEntries(ctx, customer)
		if err != nil {
			return err
		}
		if err := checkAgainstLedger(entries, entry); err != nil {
			return err
		}

		if err := tx.CreateCustomerEntry(ctx, entry); err != nil {
			return err
		}
		if entry.Type.MovesStock() {
			sign := entry.Type.StockSign()
			reason := fmt.Sprintf("%s for %s", entry.Type, customer)
			if err := s.adjust(ctx, tx, entry.ItemName, entry.Amount.Mul(sign), entry.Quantity.Mul(sign), reason); err != nil {
				return err
			}
		}
		if entry.Type == models.EntryCreditPayment && entry.PaymentMode == models.PaymentModeCash {
			if err := createPaymentReceipt(ctx, tx, entry); err != nil {
				return err
			}
		}

		desc := fmt.Sprintf("%s %s for %s", entry.Type, entry.Amount.StringFixed(2), customer)
		return writeAudit(ctx, tx, entityEntry, entry.ID, models.AuditActionCreate, desc, nil, entry)
	})
	if err != nil {
		s.logFailure("AddTransaction", customer, err)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"customer": customer,
		"entry_id": entry.ID,
		"type":     entry.Type,
		"amount":   entry.Amount.String(),
	}).Info("customer transaction recorded")
	return entry, nil
}

// checkAgainstLedger applies the rules that depend on earlier entries.
func checkAgainstLedger(entries []models.CustomerEntry, e *models.CustomerEntry) error {
	switch e.Type {
	case models.EntryPurchaseReturn:
		returnable, sold := ReturnableQuantity(entries, e.ItemName)
		if !sold {
			return apperr.Validation("", "item not sold on credit")
		}
		if e.Quantity.GreaterThan(returnable) {
			return apperr.Validation("", "return exceeds sold quantity")
		}
	case models.EntryCreditPayment:
		if e.PaymentAmount.GreaterThan(NetBalance(entries)) {
			return apperr.Validation("", "payment exceeds balance")
		}
	}
	return nil
}

// checkReturnsCovered refuses to drop a credit sale whose quantity is still
// needed by the returns recorded against the same item.
func checkReturnsCovered(ctx context.Context, tx store.Store, customer string, sale *models.CustomerEntry) error {
	entries, err := tx.ListCustomerEntries(ctx, customer)
	if err != nil {
		return err
	}
	rest := make([]models.CustomerEntry, 0, len(entries))
	for _, e := range entries {
		if e.ID != sale.ID {
			rest = append(rest, e)
		}
	}
	if returnable, _ := ReturnableQuantity(rest, sale.ItemName); returnable.IsNegative() {
		return apperr.Validation("", "sale has returns recorded against it; delete the returns first")
	}
	return nil
}

// createPaymentReceipt mirrors the cash part of a credit payment into the
// cash ledger. A payment fully covered by discount moves no cash.
func createPaymentReceipt(ctx context.Context, tx store.Store, e *models.CustomerEntry) error {
	received := e.PaymentAmount.Sub(e.DiscountAllowed).Round(MoneyPlaces)
	if !received.IsPositive() {
		return nil
	}
	remarks := "Credit payment from " + e.CustomerName
	if e.DiscountAllowed.IsPositive() {
		remarks += fmt.Sprintf(" (discount allowed %s)", e.DiscountAllowed.StringFixed(2))
	}
	cash := &models.CashEntry{
		ID:             uuid.NewString(),
		Date:           e.Date,
		Type:           models.CashComesIn,
		Amount:         received,
		Remarks:        remarks,
		Source:         models.CashSourceCustomerPayment,
		SourceID:       e.ID,
		SourceCustomer: e.CustomerName,
	}
	if err := tx.CreateCashEntry(ctx, cash); err != nil {
		return err
	}
	return writeAudit(ctx, tx, entityCash, cash.ID, models.AuditActionCreate, remarks, nil, cash)
}

// DeleteTransaction removes an entry and reverses everything it caused: the
// inventory adjustment (from the stored entry, not recomputed) and the cash
// receipt of a credit payment.
func (s *Service) DeleteTransaction(ctx context.Context, customer, id string) error {
	err := s.withCustomer(ctx, customer, func(ctx context.Context, tx store.Store) error {
		entry, err := tx.GetCustomerEntry(ctx, customer, id)
		if err != nil {
			return err
		}
		if entry.Type == models.EntryOnCredit {
			if err := checkReturnsCovered(ctx, tx, customer, entry); err != nil {
				return err
			}
		}
		if err := tx.DeleteCustomerEntry(ctx, customer, id); err != nil {
			return err
		}

		if entry.Type.MovesStock() {
			sign := entry.Type.StockSign()
			reason := fmt.Sprintf("reversal of %s for %s", entry.Type, customer)
			err := s.adjust(ctx, tx, entry.ItemName, entry.Amount.Mul(sign).Neg(), entry.Quantity.Mul(sign).Neg(), reason)
			if apperr.IsNotFound(err) {
				// kalem silinmişse geri alınacak değer yok
				s.log.WithFields(logrus.Fields{
					"customer":  customer,
					"entry_id":  id,
					"item_name": entry.ItemName,
				}).Warn("inventory item gone, skipping reversal")
			} else if err != nil {
				return err
			}
		}

		if entry.Type == models.EntryCreditPayment {
			cash, err := tx.FindCashEntryBySource(ctx, models.CashSourceCustomerPayment, entry.ID)
			switch {
			case err == nil:
				if err := tx.DeleteCashEntry(ctx, cash.ID); err != nil {
					return err
				}
				if err := writeAudit(ctx, tx, entityCash, cash.ID, models.AuditActionDelete, "credit payment receipt removed", cash, nil); err != nil {
					return err
				}
			case !apperr.IsNotFound(err):
				return err
			}
		}

		desc := fmt.Sprintf("%s %s for %s deleted", entry.Type, entry.Amount.StringFixed(2), customer)
		return writeAudit(ctx, tx, entityEntry, id, models.AuditActionDelete, desc, entry, nil)
	})
	s.logFailure("DeleteTransaction", customer+"/"+id, err)
	return err
}
