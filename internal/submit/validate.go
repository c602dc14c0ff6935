package submit

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/lepinkainen/bookdash/internal/errors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("whole", validateWhole); err != nil {
		panic(fmt.Sprintf("failed to register whole validation: %v", err))
	}
}

func validateWhole(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return !math.IsNaN(f) && f == math.Trunc(f)
}

// submission is the validated input of one rating submission.
type submission struct {
	BookIndex int     `validate:"gte=0"`
	Value     float64 `validate:"whole,gte=1,lte=5"`
	UserID    int     `validate:"gte=100000,lte=999999"`
}

// validateSubmission converts the first failing rule into a ValidationError.
func validateSubmission(s submission) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return fmt.Errorf("failed to validate submission: %w", err)
	}

	fe := fieldErrors[0]
	var message string
	switch fe.Tag() {
	case "whole":
		message = "must be a whole number"
	case "gte":
		message = fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		message = fmt.Sprintf("must be at most %s", fe.Param())
	default:
		message = "is invalid"
	}

	return apperrors.NewValidationError(fieldName(fe.Field()), fe.Value(), message)
}

func fieldName(field string) string {
	switch field {
	case "Value":
		return "rating"
	case "UserID":
		return "user id"
	case "BookIndex":
		return "book index"
	default:
		return field
	}
}
