package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"dot separator", "12.34", 1234, false},
		{"comma separator", "12,34", 1234, false},
		{"integer", "12", 1200, false},
		{"single decimal", "12.3", 1230, false},
		{"third decimal rounds down", "12.344", 1234, false},
		{"third decimal rounds up", "12.345", 1235, false},
		{"leading dot", ".50", 50, false},
		{"empty", "", 0, true},
		{"zero", "0", 0, true},
		{"zero decimal", "0.00", 0, true},
		{"negative", "-5.00", 0, true},
		{"explicit plus", "+5.00", 0, true},
		{"letters", "abc", 0, true},
		{"two separators", "1.2.3", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) = %d, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("error = %v, want ErrInvalidAmount", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 100}).Validate(); err != nil {
		t.Errorf("positive amount should validate, got %v", err)
	}
	if err := (Money{}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount error = %v, want ErrInvalidAmount", err)
	}
	if err := (Money{Cents: -1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative amount error = %v, want ErrInvalidAmount", err)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 500}
	b := Money{Cents: 200}

	if got := a.Add(b); got.Cents != 700 {
		t.Errorf("Add = %d, want 700", got.Cents)
	}
	if got := a.Sub(b); got.Cents != 300 {
		t.Errorf("Sub = %d, want 300", got.Cents)
	}
	if got := b.Sub(a); got.Cents != -300 {
		t.Errorf("Sub below zero = %d, want -300", got.Cents)
	}
	if got := a.Neg(); got.Cents != -500 {
		t.Errorf("Neg = %d, want -500", got.Cents)
	}
	if !(Money{}).IsZero() || a.IsZero() {
		t.Error("IsZero misreported")
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{1234, "12.34"},
		{5, "0.05"},
		{-5, "-0.05"},
		{100, "1.00"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	data, err := json.Marshal(Money{Cents: 1234})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(data) != "1234" {
		t.Errorf("Marshal = %s, want 1234 (integer cents)", data)
	}

	var m Money
	if err := json.Unmarshal([]byte("5678"), &m); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if m.Cents != 5678 {
		t.Errorf("Unmarshal = %d, want 5678", m.Cents)
	}

	if err := json.Unmarshal([]byte(`"12.34"`), &m); err == nil {
		t.Error("decimal string should not unmarshal into Money")
	}
}
