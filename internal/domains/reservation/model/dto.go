package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// ===== REQUEST DTOs =====

type ReserveRequest struct {
	ProductID     uuid.UUID  `json:"product_id" binding:"required"`
	Quantity      int        `json:"quantity" binding:"required"`
	ReferenceType *string    `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func (r ReserveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
		validation.Field(&r.ExpiresAt, validation.By(func(v interface{}) error {
			t, _ := v.(*time.Time)
			if t != nil && !t.After(time.Now()) {
				return validation.NewError("validation_expires_at", "expires_at must be in the future")
			}
			return nil
		})),
	)
}

// ReservationFilter narrows active-reservation listings.
type ReservationFilter struct {
	ProductID     *uuid.UUID
	ReferenceType *string
	ReferenceID   *uuid.UUID
}
