package model

import (
	"time"

	"github.com/google/uuid"
)

// StockReservation is a soft, optionally time-bounded hold against available
// stock. It never moves real stock.
type StockReservation struct {
	ID            uuid.UUID  `json:"id"`
	ProductID     uuid.UUID  `json:"product_id"`
	Quantity      int        `json:"quantity"`
	ReferenceType *string    `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID `json:"reference_id,omitempty"`
	ReservedBy    uuid.UUID  `json:"reserved_by"`
	ReservedAt    time.Time  `json:"reserved_at"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	ReleasedAt    *time.Time `json:"released_at,omitempty"`
	ReleasedBy    *uuid.UUID `json:"released_by,omitempty"`
}

// Active reports whether the reservation still counts against availability.
// Expired reservations are inactive even before the sweep marks them
// released.
func (r *StockReservation) Active(now time.Time) bool {
	if r.ReleasedAt != nil {
		return false
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.After(now) {
		return false
	}
	return true
}
