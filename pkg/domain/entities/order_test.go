package entities

import (
	"testing"
	"time"
)

func TestOrder_Validation(t *testing.T) {
	orderDate := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	deliveryDate := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	order, err := NewOrder("SO-1", "C1", "Acme", "WIDGET", 100, 20, orderDate, deliveryDate, InProgress)
	if err != nil {
		t.Fatalf("Expected valid order creation to succeed: %v", err)
	}
	if order.RemainingQuantity() != 80 {
		t.Errorf("Expected remaining quantity 80, got %d", order.RemainingQuantity())
	}

	testCases := []struct {
		name        string
		id          OrderID
		productID   ProductID
		ordered     Quantity
		delivered   Quantity
		orderDate   time.Time
		delivery    time.Time
		expectError string
	}{
		{"empty id", "", "WIDGET", 10, 0, orderDate, deliveryDate, "order id cannot be empty"},
		{"empty product", "SO-1", "", 10, 0, orderDate, deliveryDate, "product id cannot be empty"},
		{"zero quantity", "SO-1", "WIDGET", 0, 0, orderDate, deliveryDate, "quantity ordered must be positive, got 0"},
		{"negative delivered", "SO-1", "WIDGET", 10, -1, orderDate, deliveryDate, "quantity delivered cannot be negative, got -1"},
		{"over delivered", "SO-1", "WIDGET", 10, 11, orderDate, deliveryDate, "quantity delivered 11 exceeds quantity ordered 10"},
		{
			"delivery before order",
			"SO-1",
			"WIDGET",
			10,
			0,
			deliveryDate,
			orderDate,
			"delivery date 2025-01-01 00:00:00 +0000 UTC cannot be before order date 2025-01-10 00:00:00 +0000 UTC",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewOrder(tc.id, "C1", "Acme", tc.productID, tc.ordered, tc.delivered, tc.orderDate, tc.delivery, InProgress)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestOrder_RemainingQuantityFlooredAtZero(t *testing.T) {
	order := &Order{QuantityOrdered: 5, QuantityDelivered: 8}
	if got := order.RemainingQuantity(); got != 0 {
		t.Errorf("Expected remaining quantity 0, got %d", got)
	}
}

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected OrderStatus
		wantErr  bool
	}{
		{"InProgress", InProgress, false},
		{"in progress", InProgress, false},
		{"COMPLETED", Completed, false},
		{"canceled", Cancelled, false},
		{"Cancelled", Cancelled, false},
		{"shipped", InProgress, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOrderStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrderStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseOrderStatus(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestOrder_IsActive(t *testing.T) {
	for status, want := range map[OrderStatus]bool{InProgress: true, Completed: false, Cancelled: false} {
		o := &Order{Status: status}
		if o.IsActive() != want {
			t.Errorf("%s: expected IsActive %v", status, want)
		}
	}
}
