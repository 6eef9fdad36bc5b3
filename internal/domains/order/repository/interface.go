package repository

import (
	"context"

	"github.com/google/uuid"

	"stockops-backend/internal/domains/order/model"
	resrepo "stockops-backend/internal/domains/reservation/repository"
	stockrepo "stockops-backend/internal/domains/stock/repository"
)

// TxRepository is the order write surface inside one transaction. The
// Get*ForUpdate calls lock the document row so a line cannot be fulfilled
// twice concurrently.
type TxRepository interface {
	InsertPurchaseOrder(ctx context.Context, po *model.PurchaseOrder) error
	GetPurchaseOrderForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	// GetPurchaseLineForUpdate locks the parent order and returns it with
	// the one line resolved.
	GetPurchaseLineForUpdate(ctx context.Context, lineID uuid.UUID) (*model.PurchaseOrder, *model.PurchaseOrderLine, error)
	AddReceivedQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	ListPurchaseLines(ctx context.Context, orderID uuid.UUID) ([]model.PurchaseOrderLine, error)
	SetPurchaseOrderStatus(ctx context.Context, id uuid.UUID, status model.PurchaseOrderStatus) error

	InsertSalesOrder(ctx context.Context, so *model.SalesOrder) error
	GetSalesOrderForUpdate(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error)
	GetSalesLineForUpdate(ctx context.Context, lineID uuid.UUID) (*model.SalesOrder, *model.SalesOrderLine, error)
	AddShippedQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error
	ListSalesLines(ctx context.Context, orderID uuid.UUID) ([]model.SalesOrderLine, error)
	SetSalesOrderStatus(ctx context.Context, id uuid.UUID, status model.SalesOrderStatus) error
}

// TxRunner opens a transaction and hands the callback the order, stock and
// reservation write surfaces bound to it. Generator operations touch all
// three atomically.
type TxRunner interface {
	Run(ctx context.Context, fn func(orders TxRepository, stock stockrepo.TxRepository, reservations resrepo.TxRepository) error) error
}

// ReadRepository serves lock-free document reads.
type ReadRepository interface {
	GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	GetSalesOrder(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error)
}
