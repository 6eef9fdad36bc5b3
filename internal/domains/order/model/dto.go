package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ===== REQUEST DTOs =====

type CreatePurchaseOrderRequest struct {
	OrderNumber  string                   `json:"order_number" binding:"required"`
	SupplierName string                   `json:"supplier_name" binding:"required"`
	Lines        []CreateOrderLineRequest `json:"lines" binding:"required"`
}

func (r CreatePurchaseOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderNumber, validation.Required, validation.Length(1, 32)),
		validation.Field(&r.SupplierName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Lines, validation.Required, validation.Length(1, 0)),
	)
}

type CreateSalesOrderRequest struct {
	OrderNumber  string                   `json:"order_number" binding:"required"`
	CustomerName string                   `json:"customer_name" binding:"required"`
	Lines        []CreateOrderLineRequest `json:"lines" binding:"required"`
}

func (r CreateSalesOrderRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrderNumber, validation.Required, validation.Length(1, 32)),
		validation.Field(&r.CustomerName, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Lines, validation.Required, validation.Length(1, 0)),
	)
}

type CreateOrderLineRequest struct {
	ProductID uuid.UUID        `json:"product_id"`
	Quantity  int              `json:"quantity"`
	UnitCost  *decimal.Decimal `json:"unit_cost,omitempty"`
}

func (r CreateOrderLineRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ProductID, validation.Required),
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

type FulfillLineRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func (r FulfillLineRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Quantity, validation.Required, validation.Min(1)),
	)
}

type ConfirmSalesOrderRequest struct {
	Reserve          bool       `json:"reserve"`
	ReserveExpiresAt *time.Time `json:"reserve_expires_at,omitempty"`
}

// ===== RESPONSE DTOs =====

// FulfillmentResult reports the document status after a generator call.
type FulfillmentResult struct {
	OrderID     uuid.UUID   `json:"order_id"`
	LineID      *uuid.UUID  `json:"line_id,omitempty"`
	Status      string      `json:"status"`
	MovementIDs []uuid.UUID `json:"movement_ids,omitempty"`
}
