package dashboard

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/cashflow"
	"shop-ledger/internal/ledger"
)

type ReceivableRow struct {
	Customer   string          `json:"customer"`
	NetBalance decimal.Decimal `json:"net_balance"`
}

type SummaryResponse struct {
	Cash           cashflow.TotalsResponse `json:"cash"`
	Miscellaneous  cashflow.TotalsResponse `json:"miscellaneous"`
	InventoryValue decimal.Decimal         `json:"inventory_value"`
	InventoryItems int                     `json:"inventory_items"`
	Receivables    decimal.Decimal         `json:"receivables"`
	Customers      []ReceivableRow         `json:"customers"`
}

// BuildSummary reads every ledger once. Receivables is the sum of the
// customers' net balances.
func BuildSummary(ctx context.Context, svc *ledger.Service) (*SummaryResponse, error) {
	cash, err := svc.CashSummary(ctx)
	if err != nil {
		return nil, err
	}
	misc, err := svc.MiscSummary(ctx)
	if err != nil {
		return nil, err
	}
	items, err := svc.ListInventory(ctx)
	if err != nil {
		return nil, err
	}
	customers, err := svc.ListCustomers(ctx)
	if err != nil {
		return nil, err
	}

	resp := &SummaryResponse{
		Cash:           cashflow.ToTotalsResponse(cash),
		Miscellaneous:  cashflow.ToTotalsResponse(misc),
		InventoryItems: len(items),
		Customers:      make([]ReceivableRow, 0, len(customers)),
	}
	for _, it := range items {
		resp.InventoryValue = resp.InventoryValue.Add(it.Value)
	}
	for _, cust := range customers {
		s, err := svc.CustomerBalance(ctx, cust.Name)
		if err != nil {
			return nil, err
		}
		resp.Receivables = resp.Receivables.Add(s.NetBalance)
		resp.Customers = append(resp.Customers, ReceivableRow{Customer: cust.Name, NetBalance: s.NetBalance})
	}
	return resp, nil
}

// GET /api/dashboard/summary
func SummaryHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		resp, err := BuildSummary(c.UserContext(), svc)
		if err != nil {
			return err
		}
		return c.JSON(resp)
	}
}
