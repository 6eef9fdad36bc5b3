package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PurchaseOrderStatus string

const (
	POStatusDraft             PurchaseOrderStatus = "draft"
	POStatusSent              PurchaseOrderStatus = "sent"
	POStatusConfirmed         PurchaseOrderStatus = "confirmed"
	POStatusPartiallyReceived PurchaseOrderStatus = "partially_received"
	POStatusReceived          PurchaseOrderStatus = "received"
	POStatusCancelled         PurchaseOrderStatus = "cancelled"
)

// CanConfirm reports whether confirmation is a legal transition.
func (s PurchaseOrderStatus) CanConfirm() bool {
	return s == POStatusDraft || s == POStatusSent
}

// CanReceive reports whether lines may be received in this status.
func (s PurchaseOrderStatus) CanReceive() bool {
	return s == POStatusConfirmed || s == POStatusPartiallyReceived
}

type SalesOrderStatus string

const (
	SOStatusDraft            SalesOrderStatus = "draft"
	SOStatusConfirmed        SalesOrderStatus = "confirmed"
	SOStatusPartiallyShipped SalesOrderStatus = "partially_shipped"
	SOStatusShipped          SalesOrderStatus = "shipped"
	SOStatusDelivered        SalesOrderStatus = "delivered"
	SOStatusCancelled        SalesOrderStatus = "cancelled"
)

func (s SalesOrderStatus) CanConfirm() bool {
	return s == SOStatusDraft
}

func (s SalesOrderStatus) CanShip() bool {
	return s == SOStatusConfirmed || s == SOStatusPartiallyShipped
}

func (s SalesOrderStatus) CanCancel() bool {
	return s == SOStatusDraft || s == SOStatusConfirmed || s == SOStatusPartiallyShipped
}

// ForecastCounted reports whether this status has forecast quantities on the
// books that cancellation must unwind.
func (s SalesOrderStatus) ForecastCounted() bool {
	return s == SOStatusConfirmed || s == SOStatusPartiallyShipped
}

type PurchaseOrder struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	SupplierName string              `json:"supplier_name"`
	Status       PurchaseOrderStatus `json:"status"`
	CreatedBy    uuid.UUID           `json:"created_by"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	Lines        []PurchaseOrderLine `json:"lines,omitempty"`
}

type PurchaseOrderLine struct {
	ID               uuid.UUID        `json:"id"`
	PurchaseOrderID  uuid.UUID        `json:"purchase_order_id"`
	ProductID        uuid.UUID        `json:"product_id"`
	Quantity         int              `json:"quantity"`
	QuantityReceived int              `json:"quantity_received"`
	UnitCost         *decimal.Decimal `json:"unit_cost,omitempty"`
}

// Remaining is the quantity still expected to arrive.
func (l *PurchaseOrderLine) Remaining() int {
	return l.Quantity - l.QuantityReceived
}

type SalesOrder struct {
	ID           uuid.UUID        `json:"id"`
	OrderNumber  string           `json:"order_number"`
	CustomerName string           `json:"customer_name"`
	Status       SalesOrderStatus `json:"status"`
	CreatedBy    uuid.UUID        `json:"created_by"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Lines        []SalesOrderLine `json:"lines,omitempty"`
}

type SalesOrderLine struct {
	ID              uuid.UUID        `json:"id"`
	SalesOrderID    uuid.UUID        `json:"sales_order_id"`
	ProductID       uuid.UUID        `json:"product_id"`
	Quantity        int              `json:"quantity"`
	QuantityShipped int              `json:"quantity_shipped"`
	UnitPrice       *decimal.Decimal `json:"unit_price,omitempty"`
}

// Remaining is the quantity still to ship.
func (l *SalesOrderLine) Remaining() int {
	return l.Quantity - l.QuantityShipped
}

// RecomputePurchaseStatus derives the document status from its lines after a
// receipt. The fallback keeps the current status when nothing was received
// yet.
func RecomputePurchaseStatus(lines []PurchaseOrderLine, current PurchaseOrderStatus) PurchaseOrderStatus {
	allComplete := true
	anyReceived := false
	for i := range lines {
		if lines[i].QuantityReceived > 0 {
			anyReceived = true
		}
		if lines[i].QuantityReceived < lines[i].Quantity {
			allComplete = false
		}
	}
	switch {
	case allComplete:
		return POStatusReceived
	case anyReceived:
		return POStatusPartiallyReceived
	default:
		return current
	}
}

// RecomputeSalesStatus derives the document status from its lines after a
// shipment.
func RecomputeSalesStatus(lines []SalesOrderLine, current SalesOrderStatus) SalesOrderStatus {
	allComplete := true
	anyShipped := false
	for i := range lines {
		if lines[i].QuantityShipped > 0 {
			anyShipped = true
		}
		if lines[i].QuantityShipped < lines[i].Quantity {
			allComplete = false
		}
	}
	switch {
	case allComplete:
		return SOStatusShipped
	case anyShipped:
		return SOStatusPartiallyShipped
	default:
		return current
	}
}
