package service

import (
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"

	"github.com/pkordes/bookmarks/internal/domain"
)

// newValidator returns the struct validator shared by the services' input types.
func newValidator() *validator.Validate {
	return validator.New()
}

// validationError converts the first failed rule in err into a domain.ErrValidation
// whose text is produced by msg. Errors that are not validation failures are
// returned wrapped as-is.
func validationError(err error, msg func(validator.FieldError) string) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg(fieldErrs[0]))
	}
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}
