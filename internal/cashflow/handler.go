package cashflow

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/apperr"
	"shop-ledger/internal/auth"
	"shop-ledger/internal/binding"
	"shop-ledger/internal/ledger"
	"shop-ledger/internal/models"
)

type CashEntryRequest struct {
	// boşsa bugün
	Date    string          `json:"date" validate:"omitempty,datetime=2006-01-02"`
	// "comes_in" | "comes in" | "payment"
	Type    string          `json:"type" validate:"required"`
	Amount  decimal.Decimal `json:"amount"`
	Remarks string          `json:"remarks" validate:"max=255"`
}

type CashEntryResponse struct {
	ID             string            `json:"id"`
	Date           string            `json:"date"`
	Type           models.CashType   `json:"type"`
	Amount         decimal.Decimal   `json:"amount"`
	Remarks        string            `json:"remarks"`
	Source         models.CashSource `json:"source"`
	SourceID       string            `json:"source_id,omitempty"`
	SourceCustomer string            `json:"source_customer,omitempty"`
}

type TotalsResponse struct {
	ComesIn decimal.Decimal `json:"comes_in"`
	Payment decimal.Decimal `json:"payment"`
	Balance decimal.Decimal `json:"balance"`
}

func ToCashEntryResponse(e *models.CashEntry) CashEntryResponse {
	return CashEntryResponse{
		ID:             e.ID,
		Date:           e.Date.Format(binding.DateLayout),
		Type:           e.Type,
		Amount:         e.Amount,
		Remarks:        e.Remarks,
		Source:         e.Source,
		SourceID:       e.SourceID,
		SourceCustomer: e.SourceCustomer,
	}
}

func ToTotalsResponse(t ledger.Totals) TotalsResponse {
	return TotalsResponse{ComesIn: t.In, Payment: t.Out, Balance: t.Net}
}

// ToInput converts a cash-shaped request body; the miscellaneous ledger uses
// the same shape.
func (r *CashEntryRequest) ToInput() (ledger.CashInput, error) {
	date, err := binding.ParseDate("date", r.Date)
	if err != nil {
		return ledger.CashInput{}, err
	}
	typ, ok := models.ParseCashType(r.Type)
	if !ok {
		return ledger.CashInput{}, apperr.Validation("type", "type must be comes_in or payment")
	}
	return ledger.CashInput{Date: date, Type: typ, Amount: r.Amount, Remarks: r.Remarks}, nil
}

func bindInput(c *fiber.Ctx) (ledger.CashInput, error) {
	var body CashEntryRequest
	if err := binding.Body(c, &body); err != nil {
		return ledger.CashInput{}, err
	}
	return body.ToInput()
}

// -------------------------------------------------
// GET /api/cash
// -------------------------------------------------
func ListCashEntriesHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.ListCash(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]CashEntryResponse, 0, len(entries))
		for i := range entries {
			resp = append(resp, ToCashEntryResponse(&entries[i]))
		}
		return c.JSON(resp)
	}
}

// -------------------------------------------------
// POST /api/cash
// -------------------------------------------------
func CreateCashEntryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := bindInput(c)
		if err != nil {
			return err
		}
		e, err := svc.CreateCash(auth.Context(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToCashEntryResponse(e))
	}
}

// -------------------------------------------------
// PUT /api/cash/:id
// -------------------------------------------------
func UpdateCashEntryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := bindInput(c)
		if err != nil {
			return err
		}
		e, err := svc.UpdateCash(auth.Context(c), c.Params("id"), in)
		if err != nil {
			return err
		}
		return c.JSON(ToCashEntryResponse(e))
	}
}

// -------------------------------------------------
// DELETE /api/cash/:id
// -------------------------------------------------
func DeleteCashEntryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteCash(auth.Context(c), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// -------------------------------------------------
// GET /api/cash/summary
// -------------------------------------------------
func CashSummaryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := svc.CashSummary(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(ToTotalsResponse(t))
	}
}
