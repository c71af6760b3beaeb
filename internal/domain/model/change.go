package model

// OrderChange is a partial update requested from the order collaborator.
// ExpectedStatus, when set, is the status the caller based the change on.
type OrderChange struct {
	ExpectedStatus      OrderStatus
	Status              *OrderStatus
	VerifyReceipt       *ReceiptType
	MeasurementSchedule *MeasurementSchedule
}

// Empty reports whether change carries no mutation.
func (c OrderChange) Empty() bool {
	return c.Status == nil && c.VerifyReceipt == nil && c.MeasurementSchedule == nil
}
