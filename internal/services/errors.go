package services

import (
	"errors"

	"phsar/internal/repositories"
)

// Sentinel errors returned by the services. Callers match them with
// errors.Is; the wrapped message carries the detail.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = repositories.ErrNotFound
	ErrAccessDenied      = errors.New("access denied")
	ErrGateway           = errors.New("payment gateway error")
	ErrSignature         = errors.New("invalid signature")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrItemNotInCart     = errors.New("item not in cart")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMalformedMetadata = errors.New("malformed payment metadata")
)

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
