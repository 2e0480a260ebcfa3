package misc

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/auth"
	"shop-ledger/internal/binding"
	"shop-ledger/internal/cashflow"
	"shop-ledger/internal/ledger"
	"shop-ledger/internal/models"
)

type MiscEntryResponse struct {
	ID      string          `json:"id"`
	Date    string          `json:"date"`
	Type    models.CashType `json:"type"`
	Amount  decimal.Decimal `json:"amount"`
	Remarks string          `json:"remarks"`
}

func ToMiscEntryResponse(e *models.MiscEntry) MiscEntryResponse {
	return MiscEntryResponse{
		ID:      e.ID,
		Date:    e.Date.Format(binding.DateLayout),
		Type:    e.Type,
		Amount:  e.Amount,
		Remarks: e.Remarks,
	}
}

// Gövde kasa kaydıyla aynı şekilde.
func bindInput(c *fiber.Ctx) (ledger.CashInput, error) {
	var body cashflow.CashEntryRequest
	if err := binding.Body(c, &body); err != nil {
		return ledger.CashInput{}, err
	}
	return body.ToInput()
}

// GET /api/miscellaneous
func ListMiscEntriesHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.ListMisc(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]MiscEntryResponse, 0, len(entries))
		for i := range entries {
			resp = append(resp, ToMiscEntryResponse(&entries[i]))
		}
		return c.JSON(resp)
	}
}

// POST /api/miscellaneous
// Kayıt kasaya da yansıtılır.
func CreateMiscEntryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := bindInput(c)
		if err != nil {
			return err
		}
		e, err := svc.CreateMisc(auth.Context(c), in)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToMiscEntryResponse(e))
	}
}

// PUT /api/miscellaneous/:id
func UpdateMiscEntryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := bindInput(c)
		if err != nil {
			return err
		}
		e, err := svc.UpdateMisc(auth.Context(c), c.Params("id"), in)
		if err != nil {
			return err
		}
		return c.JSON(ToMiscEntryResponse(e))
	}
}

// DELETE /api/miscellaneous/:id
func DeleteMiscEntryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteMisc(auth.Context(c), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/miscellaneous/summary
func MiscSummaryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		t, err := svc.MiscSummary(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(cashflow.ToTotalsResponse(t))
	}
}
