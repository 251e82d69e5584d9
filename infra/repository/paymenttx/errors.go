package paymenttx

import (
	"errors"

	"github.com/amirasaad/walletapi/pkg/domain/payment"
	"gorm.io/gorm"
)

// mapGormError converts GORM errors to domain errors, keeping database
// concerns inside the infrastructure layer. The error chain is walked
// because GORM wraps driver errors.
func mapGormError(err error) error {
	if err == nil {
		return nil
	}

	currentErr := err
	for currentErr != nil {
		switch {
		case errors.Is(currentErr, gorm.ErrDuplicatedKey):
			return payment.ErrAlreadyExists
		case errors.Is(currentErr, gorm.ErrRecordNotFound):
			return payment.ErrNotFound
		}
		currentErr = errors.Unwrap(currentErr)
	}
	return err
}
