package account

import (
	"context"
	"errors"
	"testing"

	"autometer/internal/infra/infratest"
	"autometer/internal/types"
)

func TestStoreCreateAndFind(t *testing.T) {
	db := infratest.NewPool(t, "ledger_trips", "driver_ledgers", "accounts")
	store := NewStore(db)
	ctx := context.Background()

	acc, err := store.Create(ctx, Account{ID: string(types.NewID()), PhoneNumber: "9876500001", Role: RoleDriver, Name: "Ravi"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if acc.PasswordHash != "" {
		t.Fatalf("driver should have no credential, got %q", acc.PasswordHash)
	}

	byID, err := store.FindByID(ctx, acc.ID)
	if err != nil || byID.PhoneNumber != "9876500001" || byID.Role != RoleDriver {
		t.Fatalf("FindByID = %+v, %v", byID, err)
	}
	if _, err := store.FindByPhone(ctx, "9000000000"); !errors.Is(err, types.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, err = store.Create(ctx, Account{ID: string(types.NewID()), PhoneNumber: "9876500001", Role: RoleDriver, Name: "Dup"})
	if !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken, got %v", err)
	}
}

func TestStoreUpsertAdmin(t *testing.T) {
	db := infratest.NewPool(t, "ledger_trips", "driver_ledgers", "accounts")
	store := NewStore(db)
	ctx := context.Background()

	first, err := store.UpsertAdmin(ctx, "9876543210", "admin", "hash-1")
	if err != nil {
		t.Fatalf("UpsertAdmin: %v", err)
	}
	second, err := store.UpsertAdmin(ctx, "9876543210", "Head Office", "hash-2")
	if err != nil {
		t.Fatalf("UpsertAdmin again: %v", err)
	}
	if second.ID != first.ID || second.Name != "Head Office" || second.PasswordHash != "hash-2" {
		t.Fatalf("unexpected admin after upsert: %+v", second)
	}

	moved, err := store.UpsertAdmin(ctx, "9123456789", "Head Office", "hash-3")
	if err != nil {
		t.Fatalf("UpsertAdmin new phone: %v", err)
	}
	if moved.ID != first.ID || moved.PhoneNumber != "9123456789" {
		t.Fatalf("expected admin moved to new phone, got %+v", moved)
	}
	admin, err := store.FindAdmin(ctx)
	if err != nil {
		t.Fatalf("FindAdmin: %v", err)
	}
	if admin.ID != first.ID || admin.PhoneNumber != "9123456789" {
		t.Fatalf("FindAdmin returned %+v", admin)
	}

	if _, err := store.Create(ctx, Account{ID: string(types.NewID()), PhoneNumber: "9876500001", Role: RoleDriver, Name: "Ravi"}); err != nil {
		t.Fatalf("Create driver: %v", err)
	}
	if _, err := store.UpsertAdmin(ctx, "9876500001", "admin", "hash-4"); !errors.Is(err, ErrPhoneTaken) {
		t.Fatalf("expected ErrPhoneTaken for driver phone, got %v", err)
	}
}
