package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"shop-ledger/internal/config"
	"shop-ledger/internal/ledger"
	"shop-ledger/internal/lock"
	"shop-ledger/internal/store/memory"
)

type testApp struct {
	t     *testing.T
	app   *fiber.App
	st    *memory.Store
	owner string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:   strings.Repeat("s", 32),
		CORSOrigins: "http://localhost:3000",
		Currency:    "INR",
	}
	st := memory.New()
	svc := ledger.New(st, lock.NewLocal(), cfg.Currency)
	ta := &testApp{t: t, app: New(cfg, st, svc), st: st}

	ta.expect(http.MethodPost, "/api/auth/register-owner", "", map[string]string{
		"name": "Owner", "email": "owner@shop.test", "password": "owner-pass",
	}, http.StatusCreated)
	ta.owner = ta.login("owner@shop.test", "owner-pass")
	return ta
}

func (ta *testApp) do(method, path, token string, body any) (int, []byte) {
	ta.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			ta.t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		ta.t.Fatal(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		ta.t.Fatal(err)
	}
	return resp.StatusCode, data
}

func (ta *testApp) expect(method, path, token string, body any, want int) []byte {
	ta.t.Helper()
	status, data := ta.do(method, path, token, body)
	if status != want {
		ta.t.Fatalf("%s %s = %d, want %d: %s", method, path, status, want, data)
	}
	return data
}

func (ta *testApp) login(email, password string) string {
	ta.t.Helper()
	data := ta.expect(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	}, http.StatusOK)
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		ta.t.Fatal(err)
	}
	return out.Token
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func errorText(t *testing.T, data []byte) string {
	t.Helper()
	return decode[map[string]string](t, data)["error"]
}

func assertDec(t *testing.T, what string, got decimal.Decimal, want string) {
	t.Helper()
	if !got.Equal(decimal.RequireFromString(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

func TestRoutesRequireToken(t *testing.T) {
	ta := newTestApp(t)

	status, data := ta.do(http.MethodGet, "/api/cash", "", nil)
	if status != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", status)
	}
	if msg := errorText(t, data); msg != "missing Authorization header" {
		t.Errorf("error = %q", msg)
	}

	ta.expect(http.MethodGet, "/api/cash", "not-a-token", nil, http.StatusUnauthorized)
	ta.expect(http.MethodGet, "/api/health", "", nil, http.StatusOK)
}

func TestSecondOwnerIsRejected(t *testing.T) {
	ta := newTestApp(t)
	ta.expect(http.MethodPost, "/api/auth/register-owner", "", map[string]string{
		"name": "Other", "email": "other@shop.test", "password": "other-pass",
	}, http.StatusForbidden)
	ta.expect(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "owner@shop.test", "password": "wrong-pass",
	}, http.StatusUnauthorized)
}

func TestCustomerLedgerOverHTTP(t *testing.T) {
	ta := newTestApp(t)
	tok := ta.owner

	ta.expect(http.MethodPost, "/api/inventory", tok, map[string]any{
		"inventory_id": "W-1", "item_name": "Widget", "value": "1000",
	}, http.StatusCreated)
	ta.expect(http.MethodPost, "/api/customers", tok, map[string]string{"name": "Acme Ltd"}, http.StatusCreated)

	base := "/api/customers/Acme%20Ltd"
	sale := decode[map[string]any](t, ta.expect(http.MethodPost, base+"/entries", tok, map[string]any{
		"item_name": "Widget", "date": "2024-03-01", "type": "on_credit", "quantity": "10", "rate": "20",
	}, http.StatusCreated))
	if sale["amount"] != "200" {
		t.Errorf("sale amount = %v, want \"200\"", sale["amount"])
	}

	ta.expect(http.MethodPost, base+"/entries", tok, map[string]any{
		"date": "2024-03-02", "type": "credit_payment", "payment_amount": "50", "payment_mode": "cash",
	}, http.StatusCreated)

	status, data := ta.do(http.MethodPost, base+"/entries", tok, map[string]any{
		"type": "credit_payment", "payment_amount": "500", "payment_mode": "bank",
	})
	if status != http.StatusUnprocessableEntity || errorText(t, data) != "payment exceeds balance" {
		t.Errorf("overpayment = %d %s", status, data)
	}

	bal := decode[struct {
		NetBalance decimal.Decimal `json:"net_balance"`
		Entries    int             `json:"entries"`
	}](t, ta.expect(http.MethodGet, base+"/balance", tok, nil, http.StatusOK))
	assertDec(t, "net balance", bal.NetBalance, "150")
	if bal.Entries != 2 {
		t.Errorf("entries = %d, want 2", bal.Entries)
	}

	cash := decode[struct {
		Balance decimal.Decimal `json:"balance"`
	}](t, ta.expect(http.MethodGet, "/api/cash/summary", tok, nil, http.StatusOK))
	assertDec(t, "cash balance", cash.Balance, "50")

	inv := decode[struct {
		TotalValue decimal.Decimal `json:"total_value"`
	}](t, ta.expect(http.MethodGet, "/api/inventory", tok, nil, http.StatusOK))
	assertDec(t, "inventory value", inv.TotalValue, "800")

	sum := decode[struct {
		Receivables    decimal.Decimal `json:"receivables"`
		InventoryValue decimal.Decimal `json:"inventory_value"`
	}](t, ta.expect(http.MethodGet, "/api/dashboard/summary", tok, nil, http.StatusOK))
	assertDec(t, "receivables", sum.Receivables, "150")
	assertDec(t, "dashboard inventory", sum.InventoryValue, "800")

	ta.expect(http.MethodDelete, base+"/entries/"+sale["id"].(string), tok, nil, http.StatusNoContent)
	inv = decode[struct {
		TotalValue decimal.Decimal `json:"total_value"`
	}](t, ta.expect(http.MethodGet, "/api/inventory", tok, nil, http.StatusOK))
	assertDec(t, "inventory after delete", inv.TotalValue, "1000")
}

func TestErrorsCarryStatusAndField(t *testing.T) {
	ta := newTestApp(t)
	tok := ta.owner

	ta.expect(http.MethodGet, "/api/customers/Nobody/entries", tok, nil, http.StatusNotFound)

	status, data := ta.do(http.MethodPost, "/api/cash", tok, map[string]any{"type": "comes in", "amount": "-5"})
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", status)
	}
	body := decode[map[string]string](t, data)
	if body["field"] != "amount" {
		t.Errorf("field = %q, want amount (%s)", body["field"], data)
	}

	ta.expect(http.MethodPost, "/api/customers", tok, map[string]string{"name": "Cash"}, http.StatusUnprocessableEntity)
	ta.expect(http.MethodPost, "/api/customers", tok, map[string]string{"name": "Bob"}, http.StatusCreated)
	ta.expect(http.MethodPost, "/api/customers", tok, map[string]string{"name": "Bob"}, http.StatusConflict)

	bad := decode[map[string]any](t, ta.expect(http.MethodPost, "/api/customers/Bob/entries", tok, map[string]string{
		"type": "gift", "date": "05/01/2025", "payment_mode": "cheque",
	}, http.StatusUnprocessableEntity))
	fields, ok := bad["fields"].(map[string]any)
	if !ok || fields["type"] != "oneof" || fields["date"] != "datetime" || fields["payment_mode"] != "oneof" {
		t.Errorf("unexpected field map: %v", bad)
	}

	ta.expect(http.MethodGet, "/api/dashboard/cash-chart?period=yearly", tok, nil, http.StatusBadRequest)
}

func TestClerkCannotDelete(t *testing.T) {
	ta := newTestApp(t)
	ta.expect(http.MethodPost, "/api/admin/users", ta.owner, map[string]string{
		"name": "Clerk", "email": "clerk@shop.test", "password": "clerk-pass",
	}, http.StatusCreated)
	clerk := ta.login("clerk@shop.test", "clerk-pass")

	created := decode[map[string]any](t, ta.expect(http.MethodPost, "/api/cash", clerk, map[string]any{
		"date": "2024-01-05", "type": "comes_in", "amount": "75", "remarks": "float",
	}, http.StatusCreated))
	id := created["id"].(string)

	ta.expect(http.MethodDelete, "/api/cash/"+id, clerk, nil, http.StatusForbidden)
	ta.expect(http.MethodPost, "/api/admin/users", clerk, map[string]string{
		"name": "X", "email": "x@shop.test", "password": "x-password",
	}, http.StatusForbidden)
	ta.expect(http.MethodDelete, "/api/cash/"+id, ta.owner, nil, http.StatusNoContent)

	logs := decode[[]map[string]any](t, ta.expect(http.MethodGet,
		"/api/audit-logs?entity_type=cash_entry&entity_id="+id, ta.owner, nil, http.StatusOK))
	if len(logs) != 2 {
		t.Fatalf("audit logs = %d, want 2", len(logs))
	}
	if logs[0]["action"] != "delete" || logs[1]["user_name"] != "Clerk" {
		t.Errorf("unexpected audit trail: %v", logs)
	}
}

func TestUserCreationIsAuditedInOneTransaction(t *testing.T) {
	ta := newTestApp(t)
	body := map[string]string{"name": "Clerk", "email": "clerk@shop.test", "password": "clerk-pass"}

	ta.st.InjectFault("CreateAuditLog", errors.New("disk full"))
	ta.expect(http.MethodPost, "/api/admin/users", ta.owner, body, http.StatusInternalServerError)
	ta.expect(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "clerk@shop.test", "password": "clerk-pass",
	}, http.StatusUnauthorized)

	created := decode[map[string]any](t, ta.expect(http.MethodPost, "/api/admin/users", ta.owner, body, http.StatusCreated))
	logs := decode[[]map[string]any](t, ta.expect(http.MethodGet,
		"/api/audit-logs?entity_type=user&entity_id="+created["id"].(string), ta.owner, nil, http.StatusOK))
	if len(logs) != 1 || logs[0]["action"] != "create" {
		t.Fatalf("unexpected audit trail: %v", logs)
	}
	ta.login("clerk@shop.test", "clerk-pass")
}

func TestMiscellaneousMirrorsIntoCash(t *testing.T) {
	ta := newTestApp(t)
	tok := ta.owner

	m := decode[map[string]any](t, ta.expect(http.MethodPost, "/api/miscellaneous", tok, map[string]any{
		"date": "2024-02-01", "type": "payment", "amount": "30", "remarks": "tea",
	}, http.StatusCreated))

	entries := decode[[]map[string]any](t, ta.expect(http.MethodGet, "/api/cash", tok, nil, http.StatusOK))
	if len(entries) != 1 || entries[0]["source"] != "miscellaneous" {
		t.Fatalf("cash mirror missing: %v", entries)
	}
	ta.expect(http.MethodDelete, "/api/cash/"+entries[0]["id"].(string), tok, nil, http.StatusUnprocessableEntity)

	ta.expect(http.MethodDelete, "/api/miscellaneous/"+m["id"].(string), tok, nil, http.StatusNoContent)
	entries = decode[[]map[string]any](t, ta.expect(http.MethodGet, "/api/cash", tok, nil, http.StatusOK))
	if len(entries) != 0 {
		t.Errorf("cash mirror left behind: %v", entries)
	}
}

func TestCustomerExport(t *testing.T) {
	ta := newTestApp(t)
	tok := ta.owner
	ta.expect(http.MethodPost, "/api/inventory", tok, map[string]any{"item_name": "Widget", "value": "500"}, http.StatusCreated)
	ta.expect(http.MethodPost, "/api/customers", tok, map[string]string{"name": "Bob"}, http.StatusCreated)
	ta.expect(http.MethodPost, "/api/customers/Bob/entries", tok, map[string]any{
		"item_name": "Widget", "date": "2024-03-01", "type": "on_credit", "quantity": "2", "rate": "15",
	}, http.StatusCreated)

	req := httptest.NewRequest(http.MethodGet, "/api/customers/Bob/export", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := ta.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "customer_Bob.xlsx") {
		t.Errorf("Content-Disposition = %q", resp.Header.Get("Content-Disposition"))
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	item, err := f.GetCellValue("Ledger", "C2")
	if err != nil {
		t.Fatal(err)
	}
	if item != "Widget" {
		t.Errorf("C2 = %q, want Widget", item)
	}
}
