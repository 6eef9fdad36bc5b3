package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stockops-backend/internal/domains/order/model"
	resrepo "stockops-backend/internal/domains/reservation/repository"
	stockmodel "stockops-backend/internal/domains/stock/model"
	stockrepo "stockops-backend/internal/domains/stock/repository"
	"stockops-backend/pkg/database"
)

const poColumns = "id, order_number, supplier_name, status, created_by, created_at, updated_at"
const soColumns = "id, order_number, customer_name, status, created_by, created_at, updated_at"
const poLineColumns = "id, purchase_order_id, product_id, quantity, quantity_received, unit_cost"
const soLineColumns = "id, sales_order_id, product_id, quantity, quantity_shipped, unit_price"

// ===== transaction runner =====

type pgxTxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgxTxRunner{pool: pool}
}

func (r *pgxTxRunner) Run(ctx context.Context, fn func(orders TxRepository, stock stockrepo.TxRepository, reservations resrepo.TxRepository) error) error {
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(NewTxRepository(tx), stockrepo.NewTxRepository(tx), resrepo.NewTxRepository(tx))
	})
	if err != nil && database.IsSerializationError(err) {
		return fmt.Errorf("%w: %v", stockmodel.ErrConflict, err)
	}
	return err
}

// ===== tx-bound repository =====

type txRepository struct {
	q database.Querier
}

func NewTxRepository(q database.Querier) TxRepository {
	return &txRepository{q: q}
}

func (r *txRepository) InsertPurchaseOrder(ctx context.Context, po *model.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, order_number, supplier_name, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		po.ID, po.OrderNumber, po.SupplierName, po.Status, po.CreatedBy, po.CreatedAt, po.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order number %s already exists: %w", po.OrderNumber, err)
		}
		return fmt.Errorf("failed to insert purchase order: %w", err)
	}

	for i := range po.Lines {
		l := &po.Lines[i]
		var unitCost decimal.NullDecimal
		if l.UnitCost != nil {
			unitCost = decimal.NullDecimal{Decimal: *l.UnitCost, Valid: true}
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO purchase_order_lines (id, purchase_order_id, product_id, quantity, quantity_received, unit_cost)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.PurchaseOrderID, l.ProductID, l.Quantity, l.QuantityReceived, unitCost)
		if err != nil {
			if isForeignKeyViolation(err) {
				return stockmodel.ErrProductNotFound
			}
			return fmt.Errorf("failed to insert purchase order line: %w", err)
		}
	}
	return nil
}

func (r *txRepository) GetPurchaseOrderForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	query := fmt.Sprintf("SELECT %s FROM purchase_orders WHERE id = $1 FOR UPDATE", poColumns)
	po, err := scanPurchaseOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock purchase order: %w", err)
	}

	po.Lines, err = r.ListPurchaseLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return po, nil
}

func (r *txRepository) GetPurchaseLineForUpdate(ctx context.Context, lineID uuid.UUID) (*model.PurchaseOrder, *model.PurchaseOrderLine, error) {
	var po model.PurchaseOrder
	var l model.PurchaseOrderLine
	var unitCost decimal.NullDecimal

	err := r.q.QueryRow(ctx, `
		SELECT o.id, o.order_number, o.supplier_name, o.status, o.created_by, o.created_at, o.updated_at,
		       l.id, l.purchase_order_id, l.product_id, l.quantity, l.quantity_received, l.unit_cost
		FROM purchase_order_lines l
		JOIN purchase_orders o ON o.id = l.purchase_order_id
		WHERE l.id = $1
		FOR UPDATE OF o, l`,
		lineID).Scan(
		&po.ID, &po.OrderNumber, &po.SupplierName, &po.Status, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
		&l.ID, &l.PurchaseOrderID, &l.ProductID, &l.Quantity, &l.QuantityReceived, &unitCost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, model.ErrLineNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock purchase order line: %w", err)
	}
	if unitCost.Valid {
		l.UnitCost = &unitCost.Decimal
	}
	return &po, &l, nil
}

func (r *txRepository) AddReceivedQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	tag, err := r.q.Exec(ctx,
		"UPDATE purchase_order_lines SET quantity_received = quantity_received + $2 WHERE id = $1",
		lineID, quantity)
	if err != nil {
		return fmt.Errorf("failed to accumulate received quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLineNotFound
	}
	return nil
}

func (r *txRepository) ListPurchaseLines(ctx context.Context, orderID uuid.UUID) ([]model.PurchaseOrderLine, error) {
	query := fmt.Sprintf("SELECT %s FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY id", poLineColumns)
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase order lines: %w", err)
	}
	defer rows.Close()
	return collectPurchaseLines(rows)
}

func (r *txRepository) SetPurchaseOrderStatus(ctx context.Context, id uuid.UUID, status model.PurchaseOrderStatus) error {
	tag, err := r.q.Exec(ctx,
		"UPDATE purchase_orders SET status = $2, updated_at = now() WHERE id = $1",
		id, status)
	if err != nil {
		return fmt.Errorf("failed to update purchase order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

func (r *txRepository) InsertSalesOrder(ctx context.Context, so *model.SalesOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales_orders (id, order_number, customer_name, status, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		so.ID, so.OrderNumber, so.CustomerName, so.Status, so.CreatedBy, so.CreatedAt, so.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order number %s already exists: %w", so.OrderNumber, err)
		}
		return fmt.Errorf("failed to insert sales order: %w", err)
	}

	for i := range so.Lines {
		l := &so.Lines[i]
		var unitPrice decimal.NullDecimal
		if l.UnitPrice != nil {
			unitPrice = decimal.NullDecimal{Decimal: *l.UnitPrice, Valid: true}
		}
		_, err := r.q.Exec(ctx, `
			INSERT INTO sales_order_lines (id, sales_order_id, product_id, quantity, quantity_shipped, unit_price)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.SalesOrderID, l.ProductID, l.Quantity, l.QuantityShipped, unitPrice)
		if err != nil {
			if isForeignKeyViolation(err) {
				return stockmodel.ErrProductNotFound
			}
			return fmt.Errorf("failed to insert sales order line: %w", err)
		}
	}
	return nil
}

func (r *txRepository) GetSalesOrderForUpdate(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	query := fmt.Sprintf("SELECT %s FROM sales_orders WHERE id = $1 FOR UPDATE", soColumns)
	so, err := scanSalesOrder(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to lock sales order: %w", err)
	}

	so.Lines, err = r.ListSalesLines(ctx, id)
	if err != nil {
		return nil, err
	}
	return so, nil
}

func (r *txRepository) GetSalesLineForUpdate(ctx context.Context, lineID uuid.UUID) (*model.SalesOrder, *model.SalesOrderLine, error) {
	var so model.SalesOrder
	var l model.SalesOrderLine
	var unitPrice decimal.NullDecimal

	err := r.q.QueryRow(ctx, `
		SELECT o.id, o.order_number, o.customer_name, o.status, o.created_by, o.created_at, o.updated_at,
		       l.id, l.sales_order_id, l.product_id, l.quantity, l.quantity_shipped, l.unit_price
		FROM sales_order_lines l
		JOIN sales_orders o ON o.id = l.sales_order_id
		WHERE l.id = $1
		FOR UPDATE OF o, l`,
		lineID).Scan(
		&so.ID, &so.OrderNumber, &so.CustomerName, &so.Status, &so.CreatedBy, &so.CreatedAt, &so.UpdatedAt,
		&l.ID, &l.SalesOrderID, &l.ProductID, &l.Quantity, &l.QuantityShipped, &unitPrice)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, model.ErrLineNotFound
		}
		return nil, nil, fmt.Errorf("failed to lock sales order line: %w", err)
	}
	if unitPrice.Valid {
		l.UnitPrice = &unitPrice.Decimal
	}
	return &so, &l, nil
}

func (r *txRepository) AddShippedQuantity(ctx context.Context, lineID uuid.UUID, quantity int) error {
	tag, err := r.q.Exec(ctx,
		"UPDATE sales_order_lines SET quantity_shipped = quantity_shipped + $2 WHERE id = $1",
		lineID, quantity)
	if err != nil {
		return fmt.Errorf("failed to accumulate shipped quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrLineNotFound
	}
	return nil
}

func (r *txRepository) ListSalesLines(ctx context.Context, orderID uuid.UUID) ([]model.SalesOrderLine, error) {
	query := fmt.Sprintf("SELECT %s FROM sales_order_lines WHERE sales_order_id = $1 ORDER BY id", soLineColumns)
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales order lines: %w", err)
	}
	defer rows.Close()
	return collectSalesLines(rows)
}

func (r *txRepository) SetSalesOrderStatus(ctx context.Context, id uuid.UUID, status model.SalesOrderStatus) error {
	tag, err := r.q.Exec(ctx,
		"UPDATE sales_orders SET status = $2, updated_at = now() WHERE id = $1",
		id, status)
	if err != nil {
		return fmt.Errorf("failed to update sales order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}

// ===== read repository =====

type readRepository struct {
	pool *pgxpool.Pool
}

func NewReadRepository(pool *pgxpool.Pool) ReadRepository {
	return &readRepository{pool: pool}
}

func (r *readRepository) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	query := fmt.Sprintf("SELECT %s FROM purchase_orders WHERE id = $1", poColumns)
	po, err := scanPurchaseOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get purchase order: %w", err)
	}

	lineQuery := fmt.Sprintf("SELECT %s FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY id", poLineColumns)
	rows, err := r.pool.Query(ctx, lineQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase order lines: %w", err)
	}
	defer rows.Close()
	po.Lines, err = collectPurchaseLines(rows)
	if err != nil {
		return nil, err
	}
	return po, nil
}

func (r *readRepository) GetSalesOrder(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	query := fmt.Sprintf("SELECT %s FROM sales_orders WHERE id = $1", soColumns)
	so, err := scanSalesOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get sales order: %w", err)
	}

	lineQuery := fmt.Sprintf("SELECT %s FROM sales_order_lines WHERE sales_order_id = $1 ORDER BY id", soLineColumns)
	rows, err := r.pool.Query(ctx, lineQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales order lines: %w", err)
	}
	defer rows.Close()
	so.Lines, err = collectSalesLines(rows)
	if err != nil {
		return nil, err
	}
	return so, nil
}

// ===== scan helpers =====

func scanPurchaseOrder(row pgx.Row) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := row.Scan(&po.ID, &po.OrderNumber, &po.SupplierName, &po.Status, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func scanSalesOrder(row pgx.Row) (*model.SalesOrder, error) {
	var so model.SalesOrder
	err := row.Scan(&so.ID, &so.OrderNumber, &so.CustomerName, &so.Status, &so.CreatedBy, &so.CreatedAt, &so.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &so, nil
}

func collectPurchaseLines(rows pgx.Rows) ([]model.PurchaseOrderLine, error) {
	var lines []model.PurchaseOrderLine
	for rows.Next() {
		var l model.PurchaseOrderLine
		var unitCost decimal.NullDecimal
		if err := rows.Scan(&l.ID, &l.PurchaseOrderID, &l.ProductID, &l.Quantity, &l.QuantityReceived, &unitCost); err != nil {
			return nil, fmt.Errorf("failed to scan purchase order line: %w", err)
		}
		if unitCost.Valid {
			l.UnitCost = &unitCost.Decimal
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read purchase order lines: %w", err)
	}
	return lines, nil
}

func collectSalesLines(rows pgx.Rows) ([]model.SalesOrderLine, error) {
	var lines []model.SalesOrderLine
	for rows.Next() {
		var l model.SalesOrderLine
		var unitPrice decimal.NullDecimal
		if err := rows.Scan(&l.ID, &l.SalesOrderID, &l.ProductID, &l.Quantity, &l.QuantityShipped, &unitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan sales order line: %w", err)
		}
		if unitPrice.Valid {
			l.UnitPrice = &unitPrice.Decimal
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sales order lines: %w", err)
	}
	return lines, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
