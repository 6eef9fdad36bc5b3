package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===== REQUEST DTOs =====

// AppendMovementRequest is a movement intent. Quantity is interpreted per
// type: magnitude for IN/OUT/TRANSFER, target absolute value for ADJUST.
type AppendMovementRequest struct {
	ProductID       uuid.UUID        `json:"product_id" binding:"required"`
	MovementType    MovementType     `json:"movement_type" binding:"required"`
	Quantity        int              `json:"quantity"`
	UnitCost        *decimal.Decimal `json:"unit_cost,omitempty"`
	ReferenceType   *string          `json:"reference_type,omitempty"`
	ReferenceID     *uuid.UUID       `json:"reference_id,omitempty"`
	ReasonCode      ReasonCode       `json:"reason_code" binding:"required"`
	AffectsForecast bool             `json:"affects_forecast"`
	ForecastType    *ForecastType    `json:"forecast_type,omitempty"`
	Notes           *string          `json:"notes,omitempty"`
}

func (r AppendMovementRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.MovementType, validation.Required, validation.By(func(v interface{}) error {
			if !v.(MovementType).IsValid() {
				return ErrInvalidMovementType
			}
			return nil
		})),
		validation.Field(&r.ReasonCode, validation.Required, validation.By(func(v interface{}) error {
			if !v.(ReasonCode).IsValid() {
				return ErrInvalidReasonCode
			}
			return nil
		})),
	)
}

// MovementFilter narrows ledger listings.
type MovementFilter struct {
	ProductID       *uuid.UUID
	MovementType    *MovementType
	ReferenceType   *string
	ReferenceID     *uuid.UUID
	ReasonCode      *ReasonCode
	AffectsForecast *bool
	PerformedBy     *uuid.UUID
	From            *time.Time
	To              *time.Time
	Page            int
	Limit           int
}

func (f *MovementFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
}

// ===== RESPONSE DTOs =====

// StockStateResponse is the full read-path view of one product's stock.
type StockStateResponse struct {
	ProductID    uuid.UUID         `json:"product_id"`
	SKU          string            `json:"sku"`
	Name         string            `json:"name"`
	MinStock     int               `json:"min_stock"`
	ReorderPoint int               `json:"reorder_point"`
	Quantities   DerivedQuantities `json:"quantities"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func NewStockStateResponse(state *ProductStockState, derived DerivedQuantities) *StockStateResponse {
	return &StockStateResponse{
		ProductID:    state.ProductID,
		SKU:          state.SKU,
		Name:         state.Name,
		MinStock:     state.MinStock,
		ReorderPoint: state.ReorderPoint,
		Quantities:   derived,
		UpdatedAt:    state.UpdatedAt,
	}
}

// AlertItem is one alerting product with its classification.
type AlertItem struct {
	ProductID      uuid.UUID         `json:"product_id"`
	SKU            string            `json:"sku"`
	Name           string            `json:"name"`
	MinStock       int               `json:"min_stock"`
	ReorderPoint   int               `json:"reorder_point"`
	Quantities     DerivedQuantities `json:"quantities"`
	Classification Classification    `json:"classification"`
}
