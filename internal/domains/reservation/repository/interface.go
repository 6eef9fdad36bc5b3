package repository

import (
	"context"

	"github.com/google/uuid"

	"stockops-backend/internal/domains/reservation/model"
	stockrepo "stockops-backend/internal/domains/stock/repository"
)

// TxRepository is the reservation write surface inside one transaction. The
// caller must already hold the product row lock (stock TxRepository's
// GetStateForUpdate): reservation creation shares the product serialization
// domain with movement appends.
type TxRepository interface {
	Insert(ctx context.Context, r *model.StockReservation) error
	ActiveQuantity(ctx context.Context, productID uuid.UUID) (int, error)
	// ReleaseByReference releases every active reservation pointing at the
	// given document and returns how many were released.
	ReleaseByReference(ctx context.Context, referenceType string, referenceID uuid.UUID, releasedBy uuid.UUID) (int, error)
	// ConsumeForShipment consumes up to quantity reservation units held for
	// (productID, referenceID), oldest first. Missing reservations are not
	// an error: holds are optional.
	ConsumeForShipment(ctx context.Context, productID, referenceID uuid.UUID, quantity int, releasedBy uuid.UUID) error
}

// TxRunner opens a transaction and hands the callback both the reservation
// and stock write surfaces bound to it.
type TxRunner interface {
	Run(ctx context.Context, fn func(res TxRepository, stock stockrepo.TxRepository) error) error
}

// Repository serves the paths that need no product lock. A release only
// shrinks the active sum, so it cannot break the reservations-vs-stock
// invariant.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.StockReservation, error)
	// Release marks the reservation released. The bool reports whether this
	// call released it; false means it was already released.
	Release(ctx context.Context, id, releasedBy uuid.UUID) (bool, error)
	ListActive(ctx context.Context, filter model.ReservationFilter) ([]model.StockReservation, error)
	// ReleaseExpired marks every past-expiry reservation released and
	// returns the count. Housekeeping only, availability already excludes
	// them at read time.
	ReleaseExpired(ctx context.Context) (int, error)
}
