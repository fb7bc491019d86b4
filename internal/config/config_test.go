package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTOMETER_JWT_SECRET", "s3cret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("HTTP.Addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Fare.WaitingIntervalMin != 60 {
		t.Errorf("WaitingIntervalMin = %d, want 60", cfg.Fare.WaitingIntervalMin)
	}
	if cfg.Ledger.MaxRideEarnings != 10000 {
		t.Errorf("MaxRideEarnings = %v, want 10000", cfg.Ledger.MaxRideEarnings)
	}
	if cfg.DB.Timeout != 5*time.Second {
		t.Errorf("DB.Timeout = %v", cfg.DB.Timeout)
	}
	if cfg.Auth.Provider != AuthProviderJWT {
		t.Errorf("Auth.Provider = %q", cfg.Auth.Provider)
	}
}

func TestLoadCollectsErrors(t *testing.T) {
	t.Setenv("AUTOMETER_JWT_SECRET", "")
	t.Setenv("AUTOMETER_DB_TIMEOUT", "soon")
	t.Setenv("AUTOMETER_WAITING_INTERVAL_MIN", "0")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, want := range []string{"AUTOMETER_DB_TIMEOUT", "AUTOMETER_WAITING_INTERVAL_MIN", "AUTOMETER_JWT_SECRET"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %s", msg, want)
		}
	}
}

func TestLoadFirebaseProvider(t *testing.T) {
	t.Setenv("AUTOMETER_AUTH_PROVIDER", "firebase")
	t.Setenv("AUTOMETER_FIREBASE_PROJECT_ID", "")

	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "FIREBASE_PROJECT_ID") {
		t.Fatalf("expected firebase project error, got %v", err)
	}

	t.Setenv("AUTOMETER_FIREBASE_PROJECT_ID", "autometer-dev")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.Firebase.ProjectID != "autometer-dev" {
		t.Errorf("ProjectID = %q", cfg.Auth.Firebase.ProjectID)
	}
}

func TestLoadDeploySkipsAuth(t *testing.T) {
	t.Setenv("AUTOMETER_JWT_SECRET", "")
	t.Setenv("AUTOMETER_ADMIN_PHONE", "9876543210")

	cfg, err := LoadDeploy()
	if err != nil {
		t.Fatalf("LoadDeploy() error = %v", err)
	}
	if cfg.Admin.Phone != "9876543210" || cfg.Admin.Name != "admin" {
		t.Errorf("Admin = %+v", cfg.Admin)
	}
	if cfg.Maps.Region != "in" {
		t.Errorf("Maps.Region = %q", cfg.Maps.Region)
	}
}
