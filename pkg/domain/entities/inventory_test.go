package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRawMaterial_Validation(t *testing.T) {
	d := decimal.NewFromInt

	m, err := NewRawMaterial("RM1", "", "", d(50), d(20), d(10), 3, "kg")
	if err != nil {
		t.Fatalf("Expected valid raw material creation to succeed: %v", err)
	}
	if m.Code != "RM1" || m.Name != "RM1" {
		t.Errorf("Expected code and name to default to id, got %q/%q", m.Code, m.Name)
	}
	if m.BelowReorderPoint() {
		t.Error("Expected stock 50 to be above reorder point 20")
	}

	testCases := []struct {
		name        string
		reorder     decimal.Decimal
		safety      decimal.Decimal
		lead        int
		expectError string
	}{
		{"negative reorder", d(-1), d(0), 0, "reorder point cannot be negative, got -1"},
		{"negative safety", d(0), d(-5), 0, "safety stock cannot be negative, got -5"},
		{"negative lead time", d(0), d(0), -2, "lead time cannot be negative, got -2"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRawMaterial("RM1", "C", "N", d(1), tc.reorder, tc.safety, tc.lead, "kg")
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestMachine_Validation(t *testing.T) {
	d := decimal.NewFromInt
	if _, err := NewMachine("M1", "", d(2), d(480), d(0)); err != nil {
		t.Fatalf("Expected valid machine creation to succeed: %v", err)
	}
	if _, err := NewMachine("M1", "", d(2), d(-1), d(0)); err == nil {
		t.Error("Expected error for negative daily minutes")
	}
	if _, err := NewMachine("", "", d(2), d(480), d(0)); err == nil {
		t.Error("Expected error for empty machine id")
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC)
	tests := []struct {
		b    time.Time
		want int
	}{
		{time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), 0},
		{time.Date(2025, 3, 2, 23, 0, 0, 0, time.UTC), 1},
		{time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), 31},
		{time.Date(2025, 2, 27, 0, 0, 0, 0, time.UTC), -2},
	}
	for _, tt := range tests {
		if got := DaysBetween(a, tt.b); got != tt.want {
			t.Errorf("DaysBetween(%v, %v) = %d, want %d", a, tt.b, got, tt.want)
		}
	}
}

func TestDaysBetween_MixedLocations(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	delivery := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	if got := DaysBetween(delivery, time.Date(2025, 3, 4, 0, 0, 0, 0, tokyo)); got != 1 {
		t.Errorf("expected the next Tokyo day to be 1 day after delivery, got %d", got)
	}
	if got := DaysBetween(time.Date(2025, 3, 3, 0, 0, 0, 0, tokyo), delivery); got != 0 {
		t.Errorf("expected the same calendar date to be 0 days apart, got %d", got)
	}
}

func TestPlanStatus_StringAndPrecedence(t *testing.T) {
	if MaterialShortage.String() != "Material Shortage" {
		t.Errorf("unexpected display name %q", MaterialShortage.String())
	}
	order := []PlanStatus{OnTrack, AtRisk, MaterialShortage, Delayed, Unschedulable, MachineMissing, CircularBOM}
	for i := 1; i < len(order); i++ {
		if order[i].Precedence() <= order[i-1].Precedence() {
			t.Errorf("expected %s to outrank %s", order[i], order[i-1])
		}
	}
}

func TestCircularBOMError(t *testing.T) {
	err := &CircularBOMError{Path: []ProductID{"A", "B", "A"}}
	if !errors.Is(err, ErrCircularBOM) {
		t.Error("expected CircularBOMError to match ErrCircularBOM")
	}
	if err.Error() != "circular bill of materials: A -> B -> A" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
