package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Submission is a student's request to open a uniform order.
type Submission struct {
	Student  StudentInfo         `validate:"required"`
	Receipts []ReceiptSubmission `validate:"required,min=1,max=3,unique=Type,unique=ORNumber,dive"`
}

// ReceiptSubmission is a payment receipt attached at submission.
type ReceiptSubmission struct {
	Type     ReceiptType `validate:"required,oneof=FULL_PAYMENT DOWN_PAYMENT PARTIAL_PAYMENT"`
	ORNumber string      `validate:"required,max=64"`
	Amount   decimal.Decimal
	DatePaid time.Time `validate:"required"`
	Image    string    `validate:"max=512"`
}
