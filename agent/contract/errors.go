package contract

import "errors"

var (
	ErrUnknownItem          = errors.New("item not on the menu")
	ErrItemNotInCart        = errors.New("item not in cart")
	ErrInvalidQuantity      = errors.New("quantity must be a positive integer")
	ErrUnsupportedTool      = errors.New("unsupported tool")
	ErrInvalidToolArguments = errors.New("invalid tool arguments")
	ErrModelUnavailable     = errors.New("model unavailable")
	ErrIterationCapExceeded = errors.New("iteration cap exceeded")
	ErrValidation           = errors.New("validation failed")
)
