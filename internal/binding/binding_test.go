package binding

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"shop-ledger/internal/apperr"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required"`
	Mode  string `json:"mode" validate:"omitempty,oneof=cash bank upi"`
	Email string `json:"email" validate:"omitempty,email"`
}

func TestStructReportsJSONFieldName(t *testing.T) {
	tests := []struct {
		in    sampleRequest
		field string
	}{
		{sampleRequest{}, "name"},
		{sampleRequest{Name: "x", Mode: "cheque"}, "mode"},
		{sampleRequest{Name: "x", Email: "nope"}, "email"},
	}
	for _, tt := range tests {
		err := Struct(&tt.in)
		var ve apperr.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if ve.Field != tt.field {
			t.Fatalf("expected field %q, got %q", tt.field, ve.Field)
		}
	}
	var ve apperr.ValidationError
	if !errors.As(Struct(&sampleRequest{Mode: "cheque", Email: "nope"}), &ve) {
		t.Fatal("expected validation error")
	}
	if len(ve.Fields) != 3 || ve.Fields["mode"] != "oneof" || ve.Fields["email"] != "email" {
		t.Fatalf("unexpected field map: %v", ve.Fields)
	}
	if err := Struct(&sampleRequest{Name: "ok", Mode: "upi"}); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestProcessValidationErrors(t *testing.T) {
	err := validate.Struct(&sampleRequest{Mode: "cheque"})
	got := ProcessValidationErrors(err)
	if got["name"] != "required" || got["mode"] != "oneof" {
		t.Fatalf("unexpected map: %v", got)
	}
}

func TestBody(t *testing.T) {
	app := fiber.New()
	app.Post("/", func(c *fiber.Ctx) error {
		var req sampleRequest
		if err := Body(c, &req); err != nil {
			return c.Status(apperr.HTTPStatus(err)).SendString(err.Error())
		}
		return c.SendString(req.Name)
	})

	tests := []struct {
		body   string
		status int
	}{
		{`{"name":"Ravi"}`, 200},
		{`{"mode":"bank"}`, 422},
		{`{not json`, 422},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != tt.status {
			t.Fatalf("%s: expected %d, got %d", tt.body, tt.status, resp.StatusCode)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("date", "2025-02-28")
	if err != nil {
		t.Fatal(err)
	}
	if !d.Equal(time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("date", "28/02/2025"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	today, err := ParseDate("date", "")
	if err != nil || today.Hour() != 0 || today.Location() != time.UTC {
		t.Fatalf("empty date should be today at midnight UTC, got %v %v", today, err)
	}
}
