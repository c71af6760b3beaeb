package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInconsistentOrder marks a snapshot that breaks lifecycle invariants.
var ErrInconsistentOrder = errors.New("inconsistent order snapshot")

// Date and time layouts used by measurement schedules and receipts.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ReceiptType distinguishes payment receipts of commercial orders.
type ReceiptType string

const (
	ReceiptTypeFullPayment    ReceiptType = "FULL_PAYMENT"
	ReceiptTypeDownPayment    ReceiptType = "DOWN_PAYMENT"
	ReceiptTypePartialPayment ReceiptType = "PARTIAL_PAYMENT"
)

// Valid reports whether receipt type is known.
func (t ReceiptType) Valid() bool {
	switch t {
	case ReceiptTypeFullPayment, ReceiptTypeDownPayment, ReceiptTypePartialPayment:
		return true
	}
	return false
}

// Receipt is a proof of payment attached to an order.
type Receipt struct {
	Type       ReceiptType
	ORNumber   string
	Amount     decimal.Decimal
	DatePaid   time.Time
	Image      string
	IsVerified bool
}

// MeasurementSchedule is the date and time slot for uniform measurement.
type MeasurementSchedule struct {
	Date string
	Time string
}

// Validate checks date and time layouts.
func (m MeasurementSchedule) Validate() error {
	if _, err := time.Parse(DateLayout, m.Date); err != nil {
		return fmt.Errorf("measurement date %q must be YYYY-MM-DD", m.Date)
	}
	if _, err := time.Parse(TimeLayout, m.Time); err != nil {
		return fmt.Errorf("measurement time %q must be HH:MM", m.Time)
	}
	return nil
}

// StudentInfo captures the ordering party at creation time.
type StudentInfo struct {
	Name          string `validate:"required,max=200"`
	Email         string `validate:"required,email"`
	StudentNumber string `validate:"required,max=32"`
	Department    string `validate:"required"`
	Level         string `validate:"required"`
	Gender        string `validate:"required"`
}

// Order is an immutable snapshot of a uniform order.
type Order struct {
	ID                  string
	UserID              int64
	Status              OrderStatus
	RejectionReason     string
	Receipts            []Receipt
	MeasurementSchedule *MeasurementSchedule
	StudentInfo         StudentInfo
	CreatedAt           time.Time
	UpdatedAt           time.Time
	// Version is bumped by every stored change and guards concurrent writers.
	Version             int64
}

// Clone returns a deep copy so callers never share receipts or schedule.
func (o Order) Clone() Order {
	cp := o
	if o.Receipts != nil {
		cp.Receipts = make([]Receipt, len(o.Receipts))
		copy(cp.Receipts, o.Receipts)
	}
	if o.MeasurementSchedule != nil {
		schedule := *o.MeasurementSchedule
		cp.MeasurementSchedule = &schedule
	}
	return cp
}

// PrimaryReceipt returns the receipt of the student flow.
func (o Order) PrimaryReceipt() (Receipt, bool) {
	if len(o.Receipts) == 0 {
		return Receipt{}, false
	}
	return o.Receipts[0], true
}

// ReceiptByType looks receipt up by payment type.
func (o Order) ReceiptByType(t ReceiptType) (Receipt, bool) {
	for _, r := range o.Receipts {
		if r.Type == t {
			return r, true
		}
	}
	return Receipt{}, false
}

// HasVerifiedReceipt reports whether any receipt was verified.
func (o Order) HasVerifiedReceipt() bool {
	for _, r := range o.Receipts {
		if r.IsVerified {
			return true
		}
	}
	return false
}

// Equal compares snapshots structurally. Version is storage bookkeeping and
// is not compared.
func (o Order) Equal(other Order) bool {
	if o.ID != other.ID || o.UserID != other.UserID || o.Status != other.Status ||
		o.RejectionReason != other.RejectionReason || o.StudentInfo != other.StudentInfo ||
		!o.CreatedAt.Equal(other.CreatedAt) || !o.UpdatedAt.Equal(other.UpdatedAt) {
		return false
	}
	if (o.MeasurementSchedule == nil) != (other.MeasurementSchedule == nil) {
		return false
	}
	if o.MeasurementSchedule != nil && *o.MeasurementSchedule != *other.MeasurementSchedule {
		return false
	}
	if len(o.Receipts) != len(other.Receipts) {
		return false
	}
	for i := range o.Receipts {
		if !o.Receipts[i].Equal(other.Receipts[i]) {
			return false
		}
	}
	return true
}

// Equal compares receipts structurally.
func (r Receipt) Equal(other Receipt) bool {
	return r.Type == other.Type &&
		r.ORNumber == other.ORNumber &&
		r.Amount.Equal(other.Amount) &&
		r.DatePaid.Equal(other.DatePaid) &&
		r.Image == other.Image &&
		r.IsVerified == other.IsVerified
}

// Validate checks lifecycle invariants of the snapshot.
func (o Order) Validate() error {
	if !o.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInconsistentOrder, o.Status)
	}
	if (o.Status == OrderStatusRejected) != (o.RejectionReason != "") {
		return fmt.Errorf("%w: rejection reason must be set only for rejected orders", ErrInconsistentOrder)
	}
	if o.Status == OrderStatusPending && o.HasVerifiedReceipt() {
		return fmt.Errorf("%w: pending order has a verified receipt", ErrInconsistentOrder)
	}
	if o.Status == OrderStatusPending && o.MeasurementSchedule != nil {
		return fmt.Errorf("%w: pending order has a measurement schedule", ErrInconsistentOrder)
	}
	for _, r := range o.Receipts {
		if r.Amount.IsNegative() {
			return fmt.Errorf("%w: receipt %s has negative amount", ErrInconsistentOrder, r.ORNumber)
		}
	}
	return nil
}
