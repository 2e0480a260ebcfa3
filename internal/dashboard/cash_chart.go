package dashboard

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"shop-ledger/internal/binding"
	"shop-ledger/internal/ledger"
	"shop-ledger/internal/models"
)

type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// varsayılan bucket sayıları
func defaultCount(p Period) int {
	switch p {
	case PeriodWeekly:
		return 8
	case PeriodMonthly:
		return 12
	}
	return 7
}

type CashChartPoint struct {
	// gün / hafta başlangıcı (pazartesi) / ay başlangıcı
	Label   string          `json:"label"`
	ComesIn decimal.Decimal `json:"comes_in"`
	Payment decimal.Decimal `json:"payment"`
	Net     decimal.Decimal `json:"net"`
}

type CashChartTotals struct {
	ComesIn decimal.Decimal `json:"comes_in"`
	Payment decimal.Decimal `json:"payment"`
	Net     decimal.Decimal `json:"net"`
}

type CashChartResponse struct {
	Period      Period           `json:"period"`
	From        string           `json:"from"`
	To          string           `json:"to"`
	Points      []CashChartPoint `json:"points"`
	GrandTotals CashChartTotals  `json:"grand_totals"`
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// bucketStart maps a date to the first day of its bucket.
func bucketStart(p Period, t time.Time) time.Time {
	t = truncateDay(t)
	switch p {
	case PeriodWeekly:
		offset := (int(t.Weekday()) + 6) % 7
		return t.AddDate(0, 0, -offset)
	case PeriodMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
	return t
}

func nextBucket(p Period, t time.Time) time.Time {
	switch p {
	case PeriodWeekly:
		return t.AddDate(0, 0, 7)
	case PeriodMonthly:
		return t.AddDate(0, 1, 0)
	}
	return t.AddDate(0, 0, 1)
}

// BuildCashChart groups entries into count buckets ending with the bucket
// that contains now. Empty buckets are reported with zero totals.
func BuildCashChart(entries []models.CashEntry, p Period, count int, now time.Time) CashChartResponse {
	last := bucketStart(p, now)
	first := last
	for i := 1; i < count; i++ {
		switch p {
		case PeriodWeekly:
			first = first.AddDate(0, 0, -7)
		case PeriodMonthly:
			first = first.AddDate(0, -1, 0)
		default:
			first = first.AddDate(0, 0, -1)
		}
	}
	end := nextBucket(p, last)

	points := make([]CashChartPoint, 0, count)
	index := make(map[time.Time]int, count)
	for b := first; b.Before(end); b = nextBucket(p, b) {
		index[b] = len(points)
		points = append(points, CashChartPoint{Label: b.Format(binding.DateLayout)})
	}

	var grand CashChartTotals
	for _, e := range entries {
		i, ok := index[bucketStart(p, e.Date)]
		if !ok {
			continue
		}
		pt := &points[i]
		if e.Type == models.CashPayment {
			pt.Payment = pt.Payment.Add(e.Amount)
			grand.Payment = grand.Payment.Add(e.Amount)
		} else {
			pt.ComesIn = pt.ComesIn.Add(e.Amount)
			grand.ComesIn = grand.ComesIn.Add(e.Amount)
		}
	}
	for i := range points {
		points[i].Net = points[i].ComesIn.Sub(points[i].Payment)
	}
	grand.Net = grand.ComesIn.Sub(grand.Payment)

	return CashChartResponse{
		Period:      p,
		From:        first.Format(binding.DateLayout),
		To:          end.AddDate(0, 0, -1).Format(binding.DateLayout),
		Points:      points,
		GrandTotals: grand,
	}
}

// GET /api/dashboard/cash-chart?period=daily&count=7
func CashChartHandler(svc *ledger.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		period := Period(c.Query("period", string(PeriodDaily)))
		switch period {
		case PeriodDaily, PeriodWeekly, PeriodMonthly:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "period must be daily, weekly or monthly")
		}

		count := defaultCount(period)
		if s := c.Query("count"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n <= 0 || n > 366 {
				return fiber.NewError(fiber.StatusBadRequest, "count must be between 1 and 366")
			}
			count = n
		}

		entries, err := svc.ListCash(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(BuildCashChart(entries, period, count, time.Now().UTC()))
	}
}
