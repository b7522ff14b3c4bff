package service

import (
	"errors"
	"testing"
	"time"

	"github.com/dujiao-next/promo/internal/config"
)

func TestAdminTokenIssueAndParse(t *testing.T) {
	svc := NewAdminTokenService(config.JWTConfig{SecretKey: "secret", ExpireHours: 1, Issuer: "sso"})
	token, expiresAt, err := svc.Issue(7, " ops ", true)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry should be in the future, got %s", expiresAt)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.AdminID != 7 || claims.Username != "ops" || !claims.IsSuper {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	other := NewAdminTokenService(config.JWTConfig{SecretKey: "secret", Issuer: "other"})
	if _, err := other.Parse(token); !errors.Is(err, ErrAdminTokenInvalid) {
		t.Fatalf("issuer mismatch want ErrAdminTokenInvalid got %v", err)
	}
	wrongKey := NewAdminTokenService(config.JWTConfig{SecretKey: "nope", Issuer: "sso"})
	if _, err := wrongKey.Parse(token); !errors.Is(err, ErrAdminTokenInvalid) {
		t.Fatalf("wrong key want ErrAdminTokenInvalid got %v", err)
	}
}

func TestAdminTokenExpired(t *testing.T) {
	svc := NewAdminTokenService(config.JWTConfig{SecretKey: "secret", ExpireHours: 1})
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }
	token, _, err := svc.Issue(1, "ops", false)
	if err != nil {
		t.Fatalf("issue token failed: %v", err)
	}
	svc.now = func() time.Time { return issuedAt.Add(2 * time.Hour) }
	if _, err := svc.Parse(token); !errors.Is(err, ErrAdminTokenInvalid) {
		t.Fatalf("expired token want ErrAdminTokenInvalid got %v", err)
	}
}

func TestAdminTokenSecretMissing(t *testing.T) {
	svc := NewAdminTokenService(config.JWTConfig{})
	if _, _, err := svc.Issue(1, "ops", false); !errors.Is(err, ErrAdminTokenSecretMissing) {
		t.Fatalf("issue without secret want ErrAdminTokenSecretMissing got %v", err)
	}
	if _, err := svc.Parse("x.y.z"); !errors.Is(err, ErrAdminTokenSecretMissing) {
		t.Fatalf("parse without secret want ErrAdminTokenSecretMissing got %v", err)
	}
}
