package model

import "errors"

var (
	ErrReservationNotFound = errors.New("reservation not found")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrReservationNotFound)
}
