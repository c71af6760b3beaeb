package model

import "fmt"

// OrderStatus describes the uniform order lifecycle stage.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusApproved  OrderStatus = "APPROVED"
	OrderStatusMeasured  OrderStatus = "MEASURED"
	OrderStatusForPickup OrderStatus = "FOR_PICKUP"
	OrderStatusClaimed   OrderStatus = "CLAIMED"
	OrderStatusRejected  OrderStatus = "REJECTED"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusMeasured,
	OrderStatusForPickup,
	OrderStatusClaimed,
	OrderStatusRejected,
}

// ParseOrderStatus converts wire representation into OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(raw)
	if !status.Valid() {
		return "", fmt.Errorf("unknown order status %q", raw)
	}
	return status, nil
}

// Valid reports whether status is one of the known lifecycle stages.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusApproved, OrderStatusMeasured,
		OrderStatusForPickup, OrderStatusClaimed, OrderStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether no further transition may leave the status.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusClaimed || s == OrderStatusRejected
}

func (s OrderStatus) String() string {
	return string(s)
}
