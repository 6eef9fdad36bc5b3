package repository

import (
	"context"

	"github.com/google/uuid"

	"stockops-backend/internal/domains/stock/model"
)

// TxRepository is the write surface available inside one product-serialized
// transaction. GetStateForUpdate must be called first: it takes the row lock
// that serializes all mutations for that product.
type TxRepository interface {
	GetStateForUpdate(ctx context.Context, productID uuid.UUID) (*model.ProductStockState, error)
	SetStockReal(ctx context.Context, productID uuid.UUID, quantity int) error
	SetForecast(ctx context.Context, productID uuid.UUID, forecastType model.ForecastType, quantity int) error
	// AdjustForecast applies a delta, clamping the counter at zero.
	AdjustForecast(ctx context.Context, productID uuid.UUID, forecastType model.ForecastType, delta int) error
	InsertMovement(ctx context.Context, m *model.StockMovement) error
	ActiveReservedQuantity(ctx context.Context, productID uuid.UUID) (int, error)
}

// TxRunner executes fn inside a transaction, committing on nil error.
// Serialization failures and deadlocks surface as model.ErrConflict.
type TxRunner interface {
	Run(ctx context.Context, fn func(repo TxRepository) error) error
}

// ReadRepository serves the lock-free read paths.
type ReadRepository interface {
	GetState(ctx context.Context, productID uuid.UUID) (*model.ProductStockState, error)
	ActiveReservedQuantity(ctx context.Context, productID uuid.UUID) (int, error)
	ListMovements(ctx context.Context, filter model.MovementFilter) ([]model.StockMovement, int, error)
	GetMovementStats(ctx context.Context, productID uuid.UUID) (*model.MovementStats, error)
	// ListAlertCandidates returns every non-archived product that is at or
	// below its reorder point or whose available stock is at or below
	// min_stock, with the active reservation sum attached.
	ListAlertCandidates(ctx context.Context) ([]AlertCandidate, error)
}

// AlertCandidate pairs a product state with its live reservation sum.
type AlertCandidate struct {
	State          model.ProductStockState
	ActiveReserved int
}
