package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MovementType string

const (
	MovementIn       MovementType = "IN"
	MovementOut      MovementType = "OUT"
	MovementAdjust   MovementType = "ADJUST"
	MovementTransfer MovementType = "TRANSFER"
)

func (t MovementType) IsValid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust, MovementTransfer:
		return true
	}
	return false
}

type ForecastType string

const (
	ForecastIn  ForecastType = "in"
	ForecastOut ForecastType = "out"
)

func (t ForecastType) IsValid() bool {
	return t == ForecastIn || t == ForecastOut
}

// Reference types link a movement to its originating document. The ledger
// treats them as opaque strings; only the generator assigns meaning.
const (
	ReferencePurchaseOrder       = "purchase_order"
	ReferenceSalesOrder          = "sales_order"
	ReferenceManualAdjustment    = "manual_adjustment"
	ReferenceInventoryAdjustment = "inventory_adjustment"
	ReferenceTransfer            = "transfer"
)

// StockMovement is one immutable, signed change to a product's stock.
// Rows are append-only; corrections are compensating movements.
type StockMovement struct {
	ID              uuid.UUID        `json:"id"`
	ProductID       uuid.UUID        `json:"product_id"`
	MovementType    MovementType     `json:"movement_type"`
	QuantityChange  int              `json:"quantity_change"`
	QuantityBefore  int              `json:"quantity_before"`
	QuantityAfter   int              `json:"quantity_after"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType   *string          `json:"reference_type,omitempty"`
	ReferenceID     *uuid.UUID       `json:"reference_id,omitempty"`
	ReasonCode      ReasonCode       `json:"reason_code"`
	AffectsForecast bool             `json:"affects_forecast"`
	ForecastType    *ForecastType    `json:"forecast_type,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
	PerformedBy     uuid.UUID        `json:"performed_by"`
	PerformedAt     time.Time        `json:"performed_at"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ProductStockState holds the incrementally maintained counters for one
// product. It is mutated only as a side effect of ledger appends and
// generator calls, never directly by callers.
type ProductStockState struct {
	ProductID          uuid.UUID `json:"product_id"`
	SKU                string    `json:"sku"`
	Name               string    `json:"name"`
	StockReal          int       `json:"stock_real"`
	StockForecastedIn  int       `json:"stock_forecasted_in"`
	StockForecastedOut int       `json:"stock_forecasted_out"`
	MinStock           int       `json:"min_stock"`
	ReorderPoint       int       `json:"reorder_point"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// MovementStats aggregates a product's ledger by movement type.
type MovementStats struct {
	ProductID      uuid.UUID `json:"product_id"`
	TotalIn        int       `json:"total_in"`
	TotalOut       int       `json:"total_out"`
	TotalAdjust    int       `json:"total_adjust"`
	TotalTransfer  int       `json:"total_transfer"`
	MovementCount  int       `json:"movement_count"`
	LastMovementAt time.Time `json:"last_movement_at"`
}
