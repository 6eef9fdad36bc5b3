package model

import (
	"errors"
	"fmt"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidMovementType  = errors.New("invalid movement type")
	ErrInvalidReasonCode    = errors.New("invalid reason code")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrMissingJustification = errors.New("missing justification")
	ErrConflict             = errors.New("concurrent modification conflict")
)

func NewInsufficientStockError(available, requested int) error {
	return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, available, requested)
}

func NewInvalidQuantityError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuantity, reason)
}

func NewMissingJustificationError(code ReasonCode) error {
	return fmt.Errorf("%w: reason code %s requires notes", ErrMissingJustification, code)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound)
}

func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
