package entities

import (
	"fmt"
	"strings"
	"time"
)

// OrderStatus represents the lifecycle state of a customer order
type OrderStatus int

const (
	InProgress OrderStatus = iota
	Completed
	Cancelled
)

// String method for OrderStatus enum
func (s OrderStatus) String() string {
	switch s {
	case InProgress:
		return "InProgress"
	case Completed:
		return "Completed"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// ParseOrderStatus converts a stored status string into an OrderStatus
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")) {
	case "inprogress":
		return InProgress, nil
	case "completed":
		return Completed, nil
	case "cancelled", "canceled":
		return Cancelled, nil
	default:
		return InProgress, fmt.Errorf("invalid order status: %s (expected: InProgress, Completed, or Cancelled)", s)
	}
}

// Order is a customer order as owned by order management. The planner reads it
// and never mutates quantities.
type Order struct {
	ID                OrderID
	CustomerID        string
	CustomerName      string
	ProductID         ProductID
	QuantityOrdered   Quantity
	QuantityDelivered Quantity
	OrderDate         time.Time
	DeliveryDate      time.Time
	Status            OrderStatus
}

// NewOrder creates a validated Order
func NewOrder(
	id OrderID,
	customerID, customerName string,
	productID ProductID,
	ordered, delivered Quantity,
	orderDate, deliveryDate time.Time,
	status OrderStatus,
) (*Order, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("order id cannot be empty")
	}
	if string(productID) == "" {
		return nil, fmt.Errorf("product id cannot be empty")
	}
	if ordered <= 0 {
		return nil, fmt.Errorf("quantity ordered must be positive, got %d", ordered)
	}
	if delivered < 0 {
		return nil, fmt.Errorf("quantity delivered cannot be negative, got %d", delivered)
	}
	if delivered > ordered {
		return nil, fmt.Errorf("quantity delivered %d exceeds quantity ordered %d", delivered, ordered)
	}
	if deliveryDate.Before(StartOfDay(orderDate)) {
		return nil, fmt.Errorf("delivery date %v cannot be before order date %v", deliveryDate, orderDate)
	}

	return &Order{
		ID:                id,
		CustomerID:        customerID,
		CustomerName:      customerName,
		ProductID:         productID,
		QuantityOrdered:   ordered,
		QuantityDelivered: delivered,
		OrderDate:         orderDate,
		DeliveryDate:      deliveryDate,
		Status:            status,
	}, nil
}

// RemainingQuantity is the outstanding quantity, never negative
func (o *Order) RemainingQuantity() Quantity {
	remaining := o.QuantityOrdered - o.QuantityDelivered
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsActive reports whether the order takes part in planning
func (o *Order) IsActive() bool {
	return o.Status == InProgress
}
