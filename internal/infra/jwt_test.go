package infra

import (
	"context"
	"testing"
	"time"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewJWTService("secret", time.Hour)
	token, exp, err := svc.Issue("64b7f0c2a1d3e4f5a6b7c8d9", "driver", "9876543210")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatalf("expiry %v should be in the future", exp)
	}

	got, err := svc.VerifyIDToken(context.Background(), token)
	if err != nil {
		t.Fatalf("VerifyIDToken: %v", err)
	}
	if got.UID != "64b7f0c2a1d3e4f5a6b7c8d9" {
		t.Errorf("UID = %q", got.UID)
	}
	if got.Claims["role"] != "driver" {
		t.Errorf("role = %v", got.Claims["role"])
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWTService("secret", time.Hour).Issue("acc", "admin", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := NewJWTService("other", time.Hour).VerifyIDToken(context.Background(), token); err == nil {
		t.Fatal("expected verification failure with a different secret")
	}
}

func TestJWTRejectsExpired(t *testing.T) {
	svc := NewJWTService("secret", time.Minute)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }
	token, _, err := svc.Issue("acc", "driver", "")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.VerifyIDToken(context.Background(), token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}
