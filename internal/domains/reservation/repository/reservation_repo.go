package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stockops-backend/internal/domains/reservation/model"
	stockmodel "stockops-backend/internal/domains/stock/model"
	stockrepo "stockops-backend/internal/domains/stock/repository"
	"stockops-backend/pkg/database"
)

const reservationColumns = `id, product_id, quantity, reference_type, reference_id,
	reserved_by, reserved_at, expires_at, released_at, released_by`

const activePredicate = "released_at IS NULL AND (expires_at IS NULL OR expires_at > now())"

// ===== transaction runner =====

type pgxTxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgxTxRunner{pool: pool}
}

func (r *pgxTxRunner) Run(ctx context.Context, fn func(res TxRepository, stock stockrepo.TxRepository) error) error {
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(NewTxRepository(tx), stockrepo.NewTxRepository(tx))
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

func (r *txRepository) Insert(ctx context.Context, res *model.StockReservation) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock_reservations (
			id, product_id, quantity, reference_type, reference_id,
			reserved_by, reserved_at, expires_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		res.ID, res.ProductID, res.Quantity, res.ReferenceType, res.ReferenceID,
		res.ReservedBy, res.ReservedAt, res.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}
	return nil
}

func (r *txRepository) ActiveQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	var total int
	query := fmt.Sprintf(
		"SELECT COALESCE(SUM(quantity), 0) FROM stock_reservations WHERE product_id = $1 AND %s",
		activePredicate)
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum active reservations: %w", err)
	}
	return total, nil
}

func (r *txRepository) ReleaseByReference(ctx context.Context, referenceType string, referenceID, releasedBy uuid.UUID) (int, error) {
	query := fmt.Sprintf(`
		UPDATE stock_reservations
		SET released_at = now(), released_by = $3
		WHERE reference_type = $1 AND reference_id = $2 AND %s`,
		activePredicate)
	tag, err := r.q.Exec(ctx, query, referenceType, referenceID, releasedBy)
	if err != nil {
		return 0, fmt.Errorf("failed to release reservations by reference: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *txRepository) ConsumeForShipment(ctx context.Context, productID, referenceID uuid.UUID, quantity int, releasedBy uuid.UUID) error {
	query := fmt.Sprintf(`
		SELECT id, quantity FROM stock_reservations
		WHERE product_id = $1 AND reference_type = $2 AND reference_id = $3 AND %s
		ORDER BY reserved_at
		FOR UPDATE`,
		activePredicate)
	rows, err := r.q.Query(ctx, query, productID, stockmodel.ReferenceSalesOrder, referenceID)
	if err != nil {
		return fmt.Errorf("failed to lock reservations for shipment: %w", err)
	}

	type hold struct {
		id  uuid.UUID
		qty int
	}
	var holds []hold
	for rows.Next() {
		var h hold
		if err := rows.Scan(&h.id, &h.qty); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan reservation: %w", err)
		}
		holds = append(holds, h)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read reservations: %w", err)
	}

	remaining := quantity
	for _, h := range holds {
		if remaining <= 0 {
			break
		}
		if h.qty <= remaining {
			_, err = r.q.Exec(ctx,
				"UPDATE stock_reservations SET released_at = now(), released_by = $2 WHERE id = $1",
				h.id, releasedBy)
			remaining -= h.qty
		} else {
			_, err = r.q.Exec(ctx,
				"UPDATE stock_reservations SET quantity = quantity - $2 WHERE id = $1",
				h.id, remaining)
			remaining = 0
		}
		if err != nil {
			return fmt.Errorf("failed to consume reservation: %w", err)
		}
	}
	return nil
}

// ===== pool-backed repository =====

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

func (r *pgxRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.StockReservation, error) {
	query := fmt.Sprintf("SELECT %s FROM stock_reservations WHERE id = $1", reservationColumns)
	res, err := scanReservation(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

func (r *pgxRepository) Release(ctx context.Context, id, releasedBy uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE stock_reservations
		SET released_at = now(), released_by = $2
		WHERE id = $1 AND released_at IS NULL`,
		id, releasedBy)
	if err != nil {
		return false, fmt.Errorf("failed to release reservation: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgxRepository) ListActive(ctx context.Context, filter model.ReservationFilter) ([]model.StockReservation, error) {
	conditions := []string{activePredicate}
	args := []any{}
	argCount := 0

	if filter.ProductID != nil {
		argCount++
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", argCount))
		args = append(args, *filter.ProductID)
	}
	if filter.ReferenceType != nil {
		argCount++
		conditions = append(conditions, fmt.Sprintf("reference_type = $%d", argCount))
		args = append(args, *filter.ReferenceType)
	}
	if filter.ReferenceID != nil {
		argCount++
		conditions = append(conditions, fmt.Sprintf("reference_id = $%d", argCount))
		args = append(args, *filter.ReferenceID)
	}

	query := fmt.Sprintf("SELECT %s FROM stock_reservations WHERE %s ORDER BY reserved_at",
		reservationColumns, strings.Join(conditions, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	defer rows.Close()

	var reservations []model.StockReservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reservation rows: %w", err)
	}
	return reservations, nil
}

func (r *pgxRepository) ReleaseExpired(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE stock_reservations
		SET released_at = now()
		WHERE released_at IS NULL AND expires_at IS NOT NULL AND expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to release expired reservations: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanReservation(row pgx.Row) (*model.StockReservation, error) {
	var res model.StockReservation
	err := row.Scan(
		&res.ID, &res.ProductID, &res.Quantity, &res.ReferenceType, &res.ReferenceID,
		&res.ReservedBy, &res.ReservedAt, &res.ExpiresAt, &res.ReleasedAt, &res.ReleasedBy,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
