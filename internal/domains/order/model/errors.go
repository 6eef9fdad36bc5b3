package model

import (
	"errors"
	"fmt"
)

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrLineNotFound       = errors.New("order line not found")
	ErrOverFulfillment    = errors.New("over-fulfillment")
	ErrInvalidOrderStatus = errors.New("invalid order status for this operation")
)

func NewOverFulfillmentError(ordered, fulfilled, requested int) error {
	return fmt.Errorf("%w: ordered %d, already fulfilled %d, requested %d", ErrOverFulfillment, ordered, fulfilled, requested)
}

func NewInvalidStatusError(status string, operation string) error {
	return fmt.Errorf("%w: cannot %s in status %s", ErrInvalidOrderStatus, operation, status)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrLineNotFound)
}

func IsOverFulfillment(err error) bool {
	return errors.Is(err, ErrOverFulfillment)
}
