package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
)

var submitValidator = validator.New(validator.WithRequiredStructEnabled())

// ValidateSubmission checks a submission and reports every violation at once.
func ValidateSubmission(input model.Submission, now time.Time) error {
	var problems []string

	if err := submitValidator.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			problems = append(problems, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
		}
	}

	today := calendarDate(now)
	for i, r := range input.Receipts {
		if r.Amount.IsNegative() {
			problems = append(problems, fmt.Sprintf("Submission.Receipts[%d].Amount must not be negative", i))
		}
		paid := calendarDate(r.DatePaid)
		if paid.After(today) {
			problems = append(problems, fmt.Sprintf("Submission.Receipts[%d].DatePaid is in the future", i))
		}
	}

	if len(problems) > 0 {
		return domainErrors.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}
