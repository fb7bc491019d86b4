package types

import (
	"errors"
	"testing"
)

func TestNewIDIsValid(t *testing.T) {
	seen := map[ID]bool{}
	for i := 0; i < 100; i++ {
		id := NewID()
		if !IsValidID(string(id)) {
			t.Fatalf("NewID produced invalid id %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestIsValidID(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"64b7f0c2a1d3e4f5a6b7c8d9", true},
		{"64B7F0C2A1D3E4F5A6B7C8D9", true},
		{"64b7f0c2a1d3e4f5a6b7c8d", false},
		{"64b7f0c2a1d3e4f5a6b7c8d9aa", false},
		{"zzb7f0c2a1d3e4f5a6b7c8d9", false},
		{"undefined", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsValidID(tc.in); got != tc.want {
			t.Errorf("IsValidID(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in, want float64
	}{
		{195, 195},
		{0.125, 0.13},
		{2.344, 2.34},
		{2.346, 2.35},
		{-1.236, -1.24},
	}
	for _, tc := range cases {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestInvalidWrapsValidation(t *testing.T) {
	err := Invalid("distance must be greater than %d", 0)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if got := Message(err); got != "distance must be greater than 0" {
		t.Fatalf("Message() = %q", got)
	}
	if got := Message(errors.New("plain")); got != "plain" {
		t.Fatalf("Message(plain) = %q", got)
	}
}
