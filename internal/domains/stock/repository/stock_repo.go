package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stockops-backend/internal/domains/stock/model"
	"stockops-backend/pkg/database"
)

const stateColumns = "id, sku, name, stock_real, stock_forecasted_in, stock_forecasted_out, min_stock, reorder_point, updated_at"

const movementColumns = `id, product_id, movement_type, quantity_change, quantity_before, quantity_after,
	unit_cost, reference_type, reference_id, reason_code, affects_forecast, forecast_type,
	notes, performed_by, performed_at, created_at`

const activeReservedQuery = `
	SELECT COALESCE(SUM(quantity), 0)
	FROM stock_reservations
	WHERE product_id = $1
	  AND released_at IS NULL
	  AND (expires_at IS NULL OR expires_at > now())`

// ===== transaction runner =====

type pgxTxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgxTxRunner{pool: pool}
}

func (r *pgxTxRunner) Run(ctx context.Context, fn func(repo TxRepository) error) error {
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(NewTxRepository(tx))
	})
	if err != nil && database.IsSerializationError(err) {
		return fmt.Errorf("%w: %v", model.ErrConflict, err)
	}
	return err
}

// ===== tx-bound repository =====

type txRepository struct {
	q database.Querier
}

// NewTxRepository binds the stock write surface to an open transaction.
// Other domains compose it into their own transactions.
func NewTxRepository(q database.Querier) TxRepository {
	return &txRepository{q: q}
}

func (r *txRepository) GetStateForUpdate(ctx context.Context, productID uuid.UUID) (*model.ProductStockState, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1 FOR UPDATE", stateColumns)
	state, err := scanState(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to lock product state: %w", err)
	}
	return state, nil
}

func (r *txRepository) SetStockReal(ctx context.Context, productID uuid.UUID, quantity int) error {
	tag, err := r.q.Exec(ctx,
		"UPDATE products SET stock_real = $2, updated_at = now() WHERE id = $1",
		productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update stock_real: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *txRepository) SetForecast(ctx context.Context, productID uuid.UUID, forecastType model.ForecastType, quantity int) error {
	column, err := forecastColumn(forecastType)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE products SET %s = $2, updated_at = now() WHERE id = $1", column)
	tag, err := r.q.Exec(ctx, query, productID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update forecast counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func (r *txRepository) AdjustForecast(ctx context.Context, productID uuid.UUID, forecastType model.ForecastType, delta int) error {
	column, err := forecastColumn(forecastType)
	if err != nil {
		return err
	}
	query := fmt.Sprintf("UPDATE products SET %s = GREATEST(0, %s + $2), updated_at = now() WHERE id = $1", column, column)
	tag, err := r.q.Exec(ctx, query, productID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust forecast counter: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}
	return nil
}

func forecastColumn(t model.ForecastType) (string, error) {
	switch t {
	case model.ForecastIn:
		return "stock_forecasted_in", nil
	case model.ForecastOut:
		return "stock_forecasted_out", nil
	}
	return "", fmt.Errorf("unknown forecast type %q", t)
}

func (r *txRepository) InsertMovement(ctx context.Context, m *model.StockMovement) error {
	var unitCost decimal.NullDecimal
	if m.UnitCost != nil {
		unitCost = decimal.NullDecimal{Decimal: *m.UnitCost, Valid: true}
	}

	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_movements (
			id, product_id, movement_type, quantity_change, quantity_before, quantity_after,
			unit_cost, reference_type, reference_id, reason_code, affects_forecast, forecast_type,
			notes, performed_by, performed_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		m.ID, m.ProductID, m.MovementType, m.QuantityChange, m.QuantityBefore, m.QuantityAfter,
		unitCost, m.ReferenceType, m.ReferenceID, m.ReasonCode, m.AffectsForecast, m.ForecastType,
		m.Notes, m.PerformedBy, m.PerformedAt, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}
	return nil
}

func (r *txRepository) ActiveReservedQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int
	if err := r.q.QueryRow(ctx, activeReservedQuery, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum active reservations: %w", err)
	}
	return total, nil
}

// ===== read repository =====

type readRepository struct {
	pool *pgxpool.Pool
}

func NewReadRepository(pool *pgxpool.Pool) ReadRepository {
	return &readRepository{pool: pool}
}

func (r *readRepository) GetState(ctx context.Context, productID uuid.UUID) (*model.ProductStockState, error) {
	query := fmt.Sprintf("SELECT %s FROM products WHERE id = $1", stateColumns)
	state, err := scanState(r.pool.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product state: %w", err)
	}
	return state, nil
}

func (r *readRepository) ActiveReservedQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, activeReservedQuery, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum active reservations: %w", err)
	}
	return total, nil
}

func (r *readRepository) ListMovements(ctx context.Context, filter model.MovementFilter) ([]model.StockMovement, int, error) {
	filter.Normalize()

	conditions := []string{"1=1"}
	args := []any{}
	argCount := 0

	addCondition := func(clause string, value any) {
		argCount++
		conditions = append(conditions, fmt.Sprintf(clause, argCount))
		args = append(args, value)
	}

	if filter.ProductID != nil {
		addCondition("product_id = $%d", *filter.ProductID)
	}
	if filter.MovementType != nil {
		addCondition("movement_type = $%d", *filter.MovementType)
	}
	if filter.ReferenceType != nil {
		addCondition("reference_type = $%d", *filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		addCondition("reference_id = $%d", *filter.ReferenceID)
	}
	if filter.ReasonCode != nil {
		addCondition("reason_code = $%d", *filter.ReasonCode)
	}
	if filter.AffectsForecast != nil {
		addCondition("affects_forecast = $%d", *filter.AffectsForecast)
	}
	if filter.PerformedBy != nil {
		addCondition("performed_by = $%d", *filter.PerformedBy)
	}
	if filter.From != nil {
		addCondition("performed_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		addCondition("performed_at <= $%d", *filter.To)
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM stock_movements WHERE %s", where)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM stock_movements
		WHERE %s
		ORDER BY performed_at DESC, created_at DESC
		LIMIT $%d OFFSET $%d`,
		movementColumns, where, argCount+1, argCount+2)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	var movements []model.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, 0, err
		}
		movements = append(movements, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read movement rows: %w", err)
	}
	return movements, total, nil
}

func (r *readRepository) GetMovementStats(ctx context.Context, productID uuid.UUID) (*model.MovementStats, error) {
	stats := &model.MovementStats{ProductID: productID}
	err := r.pool.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN movement_type = 'IN' AND NOT affects_forecast THEN quantity_change END), 0),
			COALESCE(SUM(CASE WHEN movement_type = 'OUT' AND NOT affects_forecast THEN -quantity_change END), 0),
			COALESCE(SUM(CASE WHEN movement_type = 'ADJUST' AND NOT affects_forecast THEN quantity_change END), 0),
			COALESCE(SUM(CASE WHEN movement_type = 'TRANSFER' AND NOT affects_forecast THEN -quantity_change END), 0),
			COUNT(*),
			COALESCE(MAX(performed_at), 'epoch'::timestamptz)
		FROM stock_movements
		WHERE product_id = $1`,
		productID).Scan(
		&stats.TotalIn, &stats.TotalOut, &stats.TotalAdjust, &stats.TotalTransfer,
		&stats.MovementCount, &stats.LastMovementAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get movement stats: %w", err)
	}
	return stats, nil
}

func (r *readRepository) ListAlertCandidates(ctx context.Context) ([]AlertCandidate, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s, COALESCE(res.reserved, 0)
		FROM products p
		LEFT JOIN (
			SELECT product_id, SUM(quantity) AS reserved
			FROM stock_reservations
			WHERE released_at IS NULL AND (expires_at IS NULL OR expires_at > now())
			GROUP BY product_id
		) res ON res.product_id = p.id
		WHERE p.archived_at IS NULL
		  AND (p.stock_real <= p.reorder_point
		       OR GREATEST(0, p.stock_real - COALESCE(res.reserved, 0)) <= p.min_stock)
		ORDER BY p.stock_real ASC`,
		prefixColumns("p", stateColumns)))
	if err != nil {
		return nil, fmt.Errorf("failed to list alert candidates: %w", err)
	}
	defer rows.Close()

	var candidates []AlertCandidate
	for rows.Next() {
		var c AlertCandidate
		if err := rows.Scan(
			&c.State.ProductID, &c.State.SKU, &c.State.Name,
			&c.State.StockReal, &c.State.StockForecastedIn, &c.State.StockForecastedOut,
			&c.State.MinStock, &c.State.ReorderPoint, &c.State.UpdatedAt,
			&c.ActiveReserved,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read alert rows: %w", err)
	}
	return candidates, nil
}

// ===== scan helpers =====

func scanState(row pgx.Row) (*model.ProductStockState, error) {
	var s model.ProductStockState
	err := row.Scan(
		&s.ProductID, &s.SKU, &s.Name,
		&s.StockReal, &s.StockForecastedIn, &s.StockForecastedOut,
		&s.MinStock, &s.ReorderPoint, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanMovement(row pgx.Row) (*model.StockMovement, error) {
	var m model.StockMovement
	var unitCost decimal.NullDecimal
	var forecastType *string

	err := row.Scan(
		&m.ID, &m.ProductID, &m.MovementType, &m.QuantityChange, &m.QuantityBefore, &m.QuantityAfter,
		&unitCost, &m.ReferenceType, &m.ReferenceID, &m.ReasonCode, &m.AffectsForecast, &forecastType,
		&m.Notes, &m.PerformedBy, &m.PerformedAt, &m.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to scan movement: %w", err)
	}
	if unitCost.Valid {
		m.UnitCost = &unitCost.Decimal
	}
	if forecastType != nil {
		ft := model.ForecastType(*forecastType)
		m.ForecastType = &ft
	}
	return &m, nil
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
