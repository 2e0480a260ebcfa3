package dashboard

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"shop-ledger/internal/models"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func cash(day string, typ models.CashType, amount string) models.CashEntry {
	return models.CashEntry{Date: date(day), Type: typ, Amount: decimal.RequireFromString(amount)}
}

func TestBucketStart(t *testing.T) {
	cases := []struct {
		period Period
		in     string
		want   string
	}{
		{PeriodDaily, "2024-03-10", "2024-03-10"},
		// pazar -> önceki pazartesi
		{PeriodWeekly, "2024-03-10", "2024-03-04"},
		{PeriodWeekly, "2024-03-04", "2024-03-04"},
		{PeriodMonthly, "2024-03-31", "2024-03-01"},
	}
	for _, tc := range cases {
		got := bucketStart(tc.period, date(tc.in)).Format("2006-01-02")
		if got != tc.want {
			t.Errorf("bucketStart(%s, %s) = %s, want %s", tc.period, tc.in, got, tc.want)
		}
	}
}

func TestBuildCashChartDaily(t *testing.T) {
	entries := []models.CashEntry{
		cash("2024-03-08", models.CashComesIn, "100"),
		cash("2024-03-10", models.CashComesIn, "40"),
		cash("2024-03-10", models.CashPayment, "15"),
		// pencerenin dışında
		cash("2024-03-01", models.CashComesIn, "999"),
	}
	resp := BuildCashChart(entries, PeriodDaily, 3, date("2024-03-10").Add(15*time.Hour))

	if resp.From != "2024-03-08" || resp.To != "2024-03-10" {
		t.Errorf("range = %s..%s", resp.From, resp.To)
	}
	if len(resp.Points) != 3 {
		t.Fatalf("points = %d, want 3", len(resp.Points))
	}
	if !resp.Points[1].ComesIn.IsZero() || resp.Points[1].Label != "2024-03-09" {
		t.Errorf("empty day should be reported with zeros: %+v", resp.Points[1])
	}
	if !resp.Points[2].Net.Equal(decimal.NewFromInt(25)) {
		t.Errorf("net of last day = %s, want 25", resp.Points[2].Net)
	}
	if !resp.GrandTotals.Net.Equal(decimal.NewFromInt(125)) {
		t.Errorf("grand net = %s, want 125", resp.GrandTotals.Net)
	}
}

func TestBuildCashChartMonthly(t *testing.T) {
	entries := []models.CashEntry{
		cash("2024-01-31", models.CashComesIn, "10"),
		cash("2024-02-29", models.CashPayment, "4"),
		cash("2024-03-02", models.CashComesIn, "6"),
	}
	resp := BuildCashChart(entries, PeriodMonthly, 3, date("2024-03-15"))

	want := []string{"2024-01-01", "2024-02-01", "2024-03-01"}
	for i, p := range resp.Points {
		if p.Label != want[i] {
			t.Errorf("point %d label = %s, want %s", i, p.Label, want[i])
		}
	}
	if resp.To != "2024-03-31" {
		t.Errorf("to = %s, want 2024-03-31", resp.To)
	}
	if !resp.Points[1].Net.Equal(decimal.NewFromInt(-4)) {
		t.Errorf("february net = %s, want -4", resp.Points[1].Net)
	}
}
