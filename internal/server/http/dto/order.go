package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/uniformorders/internal/domain/model"
)

// Order is the JSON representation of an order snapshot.
type Order struct {
	ID                  string    `json:"id"`
	UserID              int64     `json:"userId"`
	Status              string    `json:"status"`
	RejectionReason     string    `json:"rejectionReason,omitempty"`
	Receipts            []Receipt `json:"receipts"`
	MeasurementSchedule *Schedule `json:"measurementSchedule"`
	StudentInfo         Student   `json:"studentInfo"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
	Version             int64     `json:"version"`
}

// Receipt is the JSON representation of a payment receipt.
type Receipt struct {
	Type       string `json:"type"`
	ORNumber   string `json:"orNumber"`
	Amount     string `json:"amount"`
	DatePaid   string `json:"datePaid"`
	Image      string `json:"image,omitempty"`
	IsVerified bool   `json:"isVerified"`
}

// Schedule is the measurement date and slot.
type Schedule struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Student carries the ordering party's details.
type Student struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	StudentNumber string `json:"studentNumber"`
	Department    string `json:"department"`
	Level         string `json:"level"`
	Gender        string `json:"gender"`
}

// FromOrder converts a domain snapshot into its JSON form.
func FromOrder(o model.Order) Order {
	out := Order{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status.String(),
		RejectionReason: o.RejectionReason,
		Receipts:        make([]Receipt, 0, len(o.Receipts)),
		StudentInfo:     Student(o.StudentInfo),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
	for _, r := range o.Receipts {
		out.Receipts = append(out.Receipts, Receipt{
			Type:       string(r.Type),
			ORNumber:   r.ORNumber,
			Amount:     r.Amount.StringFixed(2),
			DatePaid:   r.DatePaid.Format(model.DateLayout),
			Image:      r.Image,
			IsVerified: r.IsVerified,
		})
	}
	if o.MeasurementSchedule != nil {
		schedule := Schedule(*o.MeasurementSchedule)
		out.MeasurementSchedule = &schedule
	}
	return out
}

// FromOrders converts a list of snapshots.
func FromOrders(orders []model.Order) []Order {
	out := make([]Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, FromOrder(o))
	}
	return out
}

// ToModel parses the JSON form back into a domain snapshot.
func (o Order) ToModel() (model.Order, error) {
	status, err := model.ParseOrderStatus(o.Status)
	if err != nil {
		return model.Order{}, err
	}
	out := model.Order{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          status,
		RejectionReason: o.RejectionReason,
		StudentInfo:     model.StudentInfo(o.StudentInfo),
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Version:         o.Version,
	}
	for _, r := range o.Receipts {
		receipt, err := r.toModel()
		if err != nil {
			return model.Order{}, err
		}
		out.Receipts = append(out.Receipts, receipt)
	}
	if o.MeasurementSchedule != nil {
		schedule := model.MeasurementSchedule(*o.MeasurementSchedule)
		out.MeasurementSchedule = &schedule
	}
	return out, nil
}

func (r Receipt) toModel() (model.Receipt, error) {
	amount, datePaid, err := parseAmountAndDate(r.Amount, r.DatePaid)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("receipt %s: %w", r.ORNumber, err)
	}
	return model.Receipt{
		Type:       model.ReceiptType(r.Type),
		ORNumber:   r.ORNumber,
		Amount:     amount,
		DatePaid:   datePaid,
		Image:      r.Image,
		IsVerified: r.IsVerified,
	}, nil
}

func parseAmountAndDate(rawAmount, rawDate string) (decimal.Decimal, time.Time, error) {
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil {
		return decimal.Decimal{}, time.Time{}, fmt.Errorf("invalid amount %q", rawAmount)
	}
	datePaid, err := time.Parse(model.DateLayout, rawDate)
	if err != nil {
		return decimal.Decimal{}, time.Time{}, fmt.Errorf("invalid date paid %q", rawDate)
	}
	return amount, datePaid, nil
}

// SubmitOrderRequest is the student's order submission.
type SubmitOrderRequest struct {
	StudentInfo Student         `json:"studentInfo"`
	Receipts    []ReceiptUpload `json:"receipts"`
}

// ReceiptUpload is a receipt attached to a submission.
type ReceiptUpload struct {
	Type     string `json:"type"`
	ORNumber string `json:"orNumber"`
	Amount   string `json:"amount"`
	DatePaid string `json:"datePaid"`
	Image    string `json:"image,omitempty"`
}

// ToModel parses amounts and dates of the submission.
func (r SubmitOrderRequest) ToModel() (model.Submission, error) {
	out := model.Submission{Student: model.StudentInfo(r.StudentInfo)}
	for _, upload := range r.Receipts {
		amount, datePaid, err := parseAmountAndDate(upload.Amount, upload.DatePaid)
		if err != nil {
			return model.Submission{}, fmt.Errorf("receipt %s: %w", upload.ORNumber, err)
		}
		out.Receipts = append(out.Receipts, model.ReceiptSubmission{
			Type:     model.ReceiptType(upload.Type),
			ORNumber: upload.ORNumber,
			Amount:   amount,
			DatePaid: datePaid,
			Image:    upload.Image,
		})
	}
	return out, nil
}

// OrderChange is the PATCH body of an order.
type OrderChange struct {
	ExpectedStatus      string    `json:"expectedStatus,omitempty"`
	Status              *string   `json:"status,omitempty"`
	VerifyReceipt       *string   `json:"verifyReceipt,omitempty"`
	MeasurementSchedule *Schedule `json:"measurementSchedule,omitempty"`
}

// FromChange converts a domain change into its JSON form.
func FromChange(c model.OrderChange) OrderChange {
	out := OrderChange{ExpectedStatus: string(c.ExpectedStatus)}
	if c.Status != nil {
		status := c.Status.String()
		out.Status = &status
	}
	if c.VerifyReceipt != nil {
		receiptType := string(*c.VerifyReceipt)
		out.VerifyReceipt = &receiptType
	}
	if c.MeasurementSchedule != nil {
		schedule := Schedule(*c.MeasurementSchedule)
		out.MeasurementSchedule = &schedule
	}
	return out
}

// ToModel converts the JSON change into a domain change. Unknown values are
// passed through and rejected by the lifecycle checks.
func (c OrderChange) ToModel() model.OrderChange {
	out := model.OrderChange{ExpectedStatus: model.OrderStatus(c.ExpectedStatus)}
	if c.Status != nil {
		status := model.OrderStatus(*c.Status)
		out.Status = &status
	}
	if c.VerifyReceipt != nil {
		receiptType := model.ReceiptType(*c.VerifyReceipt)
		out.VerifyReceipt = &receiptType
	}
	if c.MeasurementSchedule != nil {
		schedule := model.MeasurementSchedule(*c.MeasurementSchedule)
		out.MeasurementSchedule = &schedule
	}
	return out
}

// RejectRequest carries the mandatory rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ErrorResponse describes a failed request. Conflicts carry the fresh order.
type ErrorResponse struct {
	Error string `json:"error"`
	Order *Order `json:"order,omitempty"`
}
