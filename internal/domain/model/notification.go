package model

import "time"

// NotificationKind describes the lifecycle event a student is notified about.
type NotificationKind string

const (
	NotificationReceiptVerified NotificationKind = "RECEIPT_VERIFIED"
	NotificationStatusChanged   NotificationKind = "STATUS_CHANGED"
	NotificationOrderRejected   NotificationKind = "ORDER_REJECTED"
)

// Notification is an outbox entry created together with an order change.
type Notification struct {
	ID           int64
	OrderID      string
	UserID       int64
	Kind         NotificationKind
	Status       OrderStatus
	Message      string
	Attempts     int
	CreatedAt    time.Time
	DispatchedAt *time.Time
}
