package customer

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/auth"
	"shop-ledger/internal/binding"
	"shop-ledger/internal/ledger"
	"shop-ledger/internal/models"
)

type CreateCustomerRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CustomerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// EntryRequest carries both shapes: item fields for sales and returns,
// payment fields for credit_payment.
type EntryRequest struct {
	ItemName        string          `json:"item_name" validate:"max=150"`
	Date            string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Type            string          `json:"type" validate:"required,oneof=on_cash on_credit purchase_return credit_payment"`
	Quantity        decimal.Decimal `json:"quantity"`
	Rate            decimal.Decimal `json:"rate"`
	Remarks         string          `json:"remarks" validate:"max=255"`
	PaymentAmount   decimal.Decimal `json:"payment_amount"`
	DiscountAllowed decimal.Decimal `json:"discount_allowed"`
	PaymentMode     string          `json:"payment_mode" validate:"omitempty,oneof=cash bank upi"`
}

type EntryResponse struct {
	ID              string             `json:"id"`
	ItemName        string             `json:"item_name,omitempty"`
	Date            string             `json:"date"`
	Type            models.EntryType   `json:"type"`
	Quantity        decimal.Decimal    `json:"quantity"`
	Rate            decimal.Decimal    `json:"rate"`
	Amount          decimal.Decimal    `json:"amount"`
	Remarks         string             `json:"remarks"`
	PaymentAmount   decimal.Decimal    `json:"payment_amount"`
	DiscountAllowed decimal.Decimal    `json:"discount_allowed"`
	PaymentMode     models.PaymentMode `json:"payment_mode,omitempty"`
}

type BalanceResponse struct {
	Customer      string          `json:"customer"`
	TotalCash     decimal.Decimal `json:"total_cash"`
	TotalCredit   decimal.Decimal `json:"total_credit"`
	TotalReturn   decimal.Decimal `json:"total_return"`
	TotalPayment  decimal.Decimal `json:"total_payment"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	NetBalance    decimal.Decimal `json:"net_balance"`
	Entries       int             `json:"entries"`
}

func ToCustomerResponse(c *models.Customer) CustomerResponse {
	return CustomerResponse{ID: c.ID, Name: c.Name, CreatedAt: c.CreatedAt.Format(binding.DateLayout)}
}

func ToEntryResponse(e *models.CustomerEntry) EntryResponse {
	return EntryResponse{
		ID:              e.ID,
		ItemName:        e.ItemName,
		Date:            e.Date.Format(binding.DateLayout),
		Type:            e.Type,
		Quantity:        e.Quantity,
		Rate:            e.Rate,
		Amount:          e.Amount,
		Remarks:         e.Remarks,
		PaymentAmount:   e.PaymentAmount,
		DiscountAllowed: e.DiscountAllowed,
		PaymentMode:     e.PaymentMode,
	}
}

func ToBalanceResponse(s ledger.CustomerSummary) BalanceResponse {
	return BalanceResponse{
		Customer:      s.Customer,
		TotalCash:     s.TotalCash,
		TotalCredit:   s.TotalCredit,
		TotalReturn:   s.TotalReturn,
		TotalPayment:  s.TotalPayment,
		TotalDiscount: s.TotalDiscount,
		NetBalance:    s.NetBalance,
		Entries:       s.Entries,
	}
}

func (r *EntryRequest) ToInput() (ledger.TransactionInput, error) {
	date, err := binding.ParseDate("date", r.Date)
	if err != nil {
		return ledger.TransactionInput{}, err
	}
	return ledger.TransactionInput{
		ItemName:        r.ItemName,
		Date:            date,
		Type:            models.EntryType(r.Type),
		Quantity:        r.Quantity,
		Rate:            r.Rate,
		Remarks:         r.Remarks,
		PaymentAmount:   r.PaymentAmount,
		DiscountAllowed: r.DiscountAllowed,
		PaymentMode:     models.PaymentMode(r.PaymentMode),
	}, nil
}

// ----------------------------------------
// GET /api/customers
// ----------------------------------------
func ListCustomersHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		customers, err := svc.ListCustomers(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]CustomerResponse, 0, len(customers))
		for i := range customers {
			resp = append(resp, ToCustomerResponse(&customers[i]))
		}
		return c.JSON(resp)
	}
}

// ----------------------------------------
// POST /api/customers
// ----------------------------------------
func CreateCustomerHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateCustomerRequest
		if err := binding.Body(c, &body); err != nil {
			return err
		}
		cust, err := svc.CreateCustomer(auth.Context(c), body.Name)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToCustomerResponse(cust))
	}
}

// ----------------------------------------
// GET /api/customers/:name/entries
// ----------------------------------------
func ListEntriesHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.ListEntries(c.UserContext(), c.Params("name"))
		if err != nil {
			return err
		}
		resp := make([]EntryResponse, 0, len(entries))
		for i := range entries {
			resp = append(resp, ToEntryResponse(&entries[i]))
		}
		return c.JSON(resp)
	}
}

// ----------------------------------------
// POST /api/customers/:name/entries
// ----------------------------------------
func AddEntryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EntryRequest
		if err := binding.Body(c, &body); err != nil {
			return err
		}
		in, err := body.ToInput()
		if err != nil {
			return err
		}
		e, err := svc.AddTransaction(auth.Context(c), c.Params("name"), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToEntryResponse(e))
	}
}

// ----------------------------------------
// DELETE /api/customers/:name/entries/:id
// ----------------------------------------
func DeleteEntryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteTransaction(auth.Context(c), c.Params("name"), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// GET /api/customers/:name/balance
// ----------------------------------------
func BalanceHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := svc.CustomerBalance(c.UserContext(), c.Params("name"))
		if err != nil {
			return err
		}
		return c.JSON(ToBalanceResponse(s))
	}
}
