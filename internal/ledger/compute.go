package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/models"
)

// Kolonlar numeric(14,2) ve numeric(14,3).
const (
	MoneyPlaces    int32 = 2
	QuantityPlaces int32 = 3
)

// ComputeAmount is payment_amount for a credit payment and quantity × rate
// for everything else, rounded half away from zero to money scale.
func ComputeAmount(t models.EntryType, quantity, rate, paymentAmount decimal.Decimal) decimal.Decimal {
	if t == models.EntryCreditPayment {
		return paymentAmount.Round(MoneyPlaces)
	}
	return quantity.Mul(rate).Round(MoneyPlaces)
}

// checkScale rejects values with more decimal places than the column keeps.
func checkScale(field string, d decimal.Decimal, places int32) error {
	if !d.Equal(d.Round(places)) {
		return apperr.Validation(field, fmt.Sprintf("%s allows at most %d decimal places", field, places))
	}
	return nil
}

// CustomerSummary holds the per-type totals of one customer ledger.
type CustomerSummary struct {
	Customer      string
	TotalCash     decimal.Decimal
	TotalCredit   decimal.Decimal
	TotalReturn   decimal.Decimal
	TotalPayment  decimal.Decimal
	TotalDiscount decimal.Decimal
	NetBalance    decimal.Decimal
	Entries       int
}

// Summarize sums entries by type. The result does not depend on order.
func Summarize(customer string, entries []models.CustomerEntry) CustomerSummary {
	s := CustomerSummary{Customer: customer, Entries: len(entries)}
	for _, e := range entries {
		switch e.Type {
		case models.EntryOnCash:
			s.TotalCash = s.TotalCash.Add(e.Amount)
		case models.EntryOnCredit:
			s.TotalCredit = s.TotalCredit.Add(e.Amount)
		case models.EntryPurchaseReturn:
			s.TotalReturn = s.TotalReturn.Add(e.Amount)
		case models.EntryCreditPayment:
			s.TotalPayment = s.TotalPayment.Add(e.Amount)
		}
		s.TotalDiscount = s.TotalDiscount.Add(e.DiscountAllowed)
	}
	s.NetBalance = s.TotalCredit.
		Sub(s.TotalReturn).
		Sub(s.TotalDiscount).
		Sub(s.TotalPayment)
	return s
}

// NetBalance = Σon_credit − Σpurchase_return − Σdiscount_allowed − Σcredit_payment.
func NetBalance(entries []models.CustomerEntry) decimal.Decimal {
	return Summarize("", entries).NetBalance
}

// ReturnableQuantity is the credit-sold quantity of item that has not been
// returned yet. sold is false when the item was never sold on credit.
func ReturnableQuantity(entries []models.CustomerEntry, item string) (qty decimal.Decimal, sold bool) {
	for _, e := range entries {
		if e.ItemName != item {
			continue
		}
		switch e.Type {
		case models.EntryOnCredit:
			sold = true
			qty = qty.Add(e.Quantity)
		case models.EntryPurchaseReturn:
			qty = qty.Sub(e.Quantity)
		}
	}
	return qty, sold
}

// Totals of a cash-typed ledger (cash or miscellaneous).
type Totals struct {
	In  decimal.Decimal
	Out decimal.Decimal
	Net decimal.Decimal
}

func (t *Totals) add(typ models.CashType, amount decimal.Decimal) {
	if typ == models.CashPayment {
		t.Out = t.Out.Add(amount)
	} else {
		t.In = t.In.Add(amount)
	}
	t.Net = t.In.Sub(t.Out)
}

func CashTotals(entries []models.CashEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.add(e.Type, e.Amount)
	}
	return t
}

func MiscTotals(entries []models.MiscEntry) Totals {
	var t Totals
	for _, e := range entries {
		t.add(e.Type, e.Amount)
	}
	return t
}
