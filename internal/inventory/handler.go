package inventory

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/auth"
	"shop-ledger/internal/binding"
	"shop-ledger/internal/ledger"
	"shop-ledger/internal/models"
)

type CreateItemRequest struct {
	InventoryID string          `json:"inventory_id" validate:"max=50"`
	ItemName    string          `json:"item_name" validate:"required,max=150"`
	Value       decimal.Decimal `json:"value"`
	Currency    string          `json:"currency" validate:"omitempty,len=3"`
}

type AdjustRequest struct {
	ItemName     string          `json:"item_name" validate:"required"`
	ValueSold    decimal.Decimal `json:"value_sold"`
	QuantitySold decimal.Decimal `json:"quantity_sold"`
}

type ItemResponse struct {
	ID           string          `json:"id"`
	InventoryID  string          `json:"inventory_id"`
	ItemName     string          `json:"item_name"`
	Value        decimal.Decimal `json:"value"`
	OpeningValue decimal.Decimal `json:"opening_value"`
	UnitsSold    decimal.Decimal `json:"units_sold"`
	Currency     string          `json:"currency"`
}

type ReconcileResponse struct {
	ItemID       string          `json:"item_id"`
	ItemName     string          `json:"item_name"`
	OpeningValue decimal.Decimal `json:"opening_value"`
	Value        decimal.Decimal `json:"value"`
	Expected     decimal.Decimal `json:"expected"`
	Drift        decimal.Decimal `json:"drift"`
}

type ListResponse struct {
	Items      []ItemResponse  `json:"items"`
	TotalValue decimal.Decimal `json:"total_value"`
}

func ToItemResponse(it *models.InventoryItem) ItemResponse {
	return ItemResponse{
		ID:           it.ID,
		InventoryID:  it.InventoryID,
		ItemName:     it.ItemName,
		Value:        it.Value,
		OpeningValue: it.OpeningValue,
		UnitsSold:    it.UnitsSold,
		Currency:     it.Currency,
	}
}

// ----------------------------------------
// GET /api/inventory
// ----------------------------------------
func ListItemsHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListInventory(c.UserContext())
		if err != nil {
			return err
		}
		resp := ListResponse{Items: make([]ItemResponse, 0, len(items))}
		for i := range items {
			resp.Items = append(resp.Items, ToItemResponse(&items[i]))
			resp.TotalValue = resp.TotalValue.Add(items[i].Value)
		}
		return c.JSON(resp)
	}
}

// ----------------------------------------
// POST /api/inventory
// ----------------------------------------
func CreateItemHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateItemRequest
		if err := binding.Body(c, &body); err != nil {
			return err
		}
		it, err := svc.CreateInventoryItem(auth.Context(c), ledger.InventoryInput{
			InventoryID: body.InventoryID,
			ItemName:    body.ItemName,
			Value:       body.Value,
			Currency:    body.Currency,
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(ToItemResponse(it))
	}
}

// ----------------------------------------
// DELETE /api/inventory/:id
// ----------------------------------------
func DeleteItemHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteInventoryItem(auth.Context(c), c.Params("id")); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ----------------------------------------
// POST /api/inventory/adjust
// ----------------------------------------
func AdjustHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body AdjustRequest
		if err := binding.Body(c, &body); err != nil {
			return err
		}
		if err := svc.AdjustInventory(auth.Context(c), body.ItemName, body.ValueSold, body.QuantitySold); err != nil {
			return err
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}

// ----------------------------------------
// GET /api/inventory/reconcile
// ----------------------------------------
func ReconcileHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.ReconcileInventory(c.UserContext())
		if err != nil {
			return err
		}
		resp := make([]ReconcileResponse, 0, len(rows))
		for _, r := range rows {
			resp = append(resp, ReconcileResponse{
				ItemID:       r.ItemID,
				ItemName:     r.ItemName,
				OpeningValue: r.OpeningValue,
				Value:        r.Value,
				Expected:     r.Expected,
				Drift:        r.Drift,
			})
		}
		return c.JSON(resp)
	}
}
