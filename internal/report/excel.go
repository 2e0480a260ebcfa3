// Package report builds xlsx exports of the ledgers.
package report

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"shop-ledger/internal/binding"
	"shop-ledger/internal/ledger"
	"shop-ledger/internal/models"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	CashSheet     = "Cash"
	CustomerSheet = "Ledger"
)

type sheetWriter struct {
	f     *excelize.File
	sheet string
	bold  int
	row   int
}

func newSheet(name string, headers []string, widths []float64) (*sheetWriter, error) {
	f := excelize.NewFile()
	// varsayılan Sheet1 yeniden adlandırılır
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	w := &sheetWriter{f: f, sheet: name, bold: bold}
	for i, width := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return nil, err
		}
	}
	if err := w.append(true, toAny(headers)...); err != nil {
		return nil, err
	}
	return w, nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// append writes values to the next row.
func (w *sheetWriter) append(bold bool, values ...any) error {
	w.row++
	start, err := excelize.CoordinatesToCellName(1, w.row)
	if err != nil {
		return err
	}
	if err := w.f.SetSheetRow(w.sheet, start, &values); err != nil {
		return err
	}
	if bold {
		end, _ := excelize.CoordinatesToCellName(len(values), w.row)
		return w.f.SetCellStyle(w.sheet, start, end, w.bold)
	}
	return nil
}

// CashWorkbook lists the cash ledger with a totals row at the bottom.
func CashWorkbook(entries []models.CashEntry) (*excelize.File, error) {
	w, err := newSheet(CashSheet,
		[]string{"Date", "Type", "Amount", "Remarks", "Source"},
		[]float64{12, 12, 14, 40, 18})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.append(false,
			e.Date.Format(binding.DateLayout),
			string(e.Type),
			e.Amount.InexactFloat64(),
			e.Remarks,
			string(e.Source),
		); err != nil {
			return nil, err
		}
	}

	t := ledger.CashTotals(entries)
	w.row++
	for _, r := range [][]any{
		{"", "Comes in", t.In.InexactFloat64()},
		{"", "Payment", t.Out.InexactFloat64()},
		{"", "Balance", t.Net.InexactFloat64()},
	} {
		if err := w.append(true, r...); err != nil {
			return nil, err
		}
	}
	return w.f, nil
}

// CustomerWorkbook lists one customer ledger followed by its summary.
func CustomerWorkbook(s ledger.CustomerSummary, entries []models.CustomerEntry) (*excelize.File, error) {
	w, err := newSheet(CustomerSheet,
		[]string{"Date", "Type", "Item", "Quantity", "Rate", "Amount", "Discount", "Mode", "Remarks"},
		[]float64{12, 16, 24, 10, 10, 14, 12, 8, 36})
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if err := w.append(false,
			e.Date.Format(binding.DateLayout),
			string(e.Type),
			e.ItemName,
			e.Quantity.InexactFloat64(),
			e.Rate.InexactFloat64(),
			e.Amount.InexactFloat64(),
			e.DiscountAllowed.InexactFloat64(),
			string(e.PaymentMode),
			e.Remarks,
		); err != nil {
			return nil, err
		}
	}

	w.row++
	for _, r := range [][]any{
		{"", "Cash sales", "", "", "", s.TotalCash.InexactFloat64()},
		{"", "Credit sales", "", "", "", s.TotalCredit.InexactFloat64()},
		{"", "Returns", "", "", "", s.TotalReturn.InexactFloat64()},
		{"", "Payments", "", "", "", s.TotalPayment.InexactFloat64()},
		{"", "Discounts", "", "", "", s.TotalDiscount.InexactFloat64()},
		{"", "Net balance", "", "", "", s.NetBalance.InexactFloat64()},
	} {
		if err := w.append(true, r...); err != nil {
			return nil, err
		}
	}
	return w.f, nil
}

func send(c *fiber.Ctx, f *excelize.File, filename string) error {
	defer f.Close()
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return f.Write(c.Response().BodyWriter())
}

// GET /api/cash/export
func CashExportHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.ListCash(c.UserContext())
		if err != nil {
			return err
		}
		f, err := CashWorkbook(entries)
		if err != nil {
			return err
		}
		return send(c, f, "cash_"+time.Now().UTC().Format("20060102")+".xlsx")
	}
}

// GET /api/customers/:name/export
func CustomerExportHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		name := c.Params("name")
		entries, err := svc.ListEntries(c.UserContext(), name)
		if err != nil {
			return err
		}
		f, err := CustomerWorkbook(ledger.Summarize(name, entries), entries)
		if err != nil {
			return err
		}
		return send(c, f, "customer_"+name+".xlsx")
	}
}
