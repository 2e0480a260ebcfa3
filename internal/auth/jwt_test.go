package auth

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"shop-ledger/internal/models"
)

var secret = strings.Repeat("t", 32)

func TestTokenRoundTrip(t *testing.T) {
	user := &models.User{ID: "u-1", Name: "Asha", Email: "asha@shop.test", Role: models.RoleClerk}
	tok, err := GenerateToken(secret, user)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseToken(secret, tok)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != "u-1" || claims.Role != models.RoleClerk || claims.Subject != "u-1" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejects(t *testing.T) {
	user := &models.User{ID: "u-1", Role: models.RoleOwner}
	tok, err := GenerateToken(secret, user)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(strings.Repeat("x", 32), tok); err == nil {
		t.Error("token signed with another secret was accepted")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTCustomClaims{UserID: "u-1", Role: models.RoleOwner})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(secret, unsigned); err == nil {
		t.Error("unsigned token was accepted")
	}
}
