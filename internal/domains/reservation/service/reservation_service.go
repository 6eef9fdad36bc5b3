package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stockops-backend/internal/domains/reservation/model"
	"stockops-backend/internal/domains/reservation/repository"
	stockmodel "stockops-backend/internal/domains/stock/model"
	stockrepo "stockops-backend/internal/domains/stock/repository"
	"stockops-backend/internal/shared/metrics"
	"stockops-backend/pkg/logger"
)

type ReservationService struct {
	runner  repository.TxRunner
	repo    repository.Repository
	retries int
}

func NewReservationService(runner repository.TxRunner, repo repository.Repository, conflictRetries int) *ReservationService {
	if conflictRetries < 0 {
		conflictRetries = 0
	}
	return &ReservationService{runner: runner, repo: repo, retries: conflictRetries}
}

// Reserve places a hold against available stock. The availability check and
// the insert happen under the product row lock, so concurrent reservations
// for the same product serialize with each other and with movement appends.
func (s *ReservationService) Reserve(ctx context.Context, req model.ReserveRequest, reservedBy uuid.UUID) (*model.StockReservation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var reservation *model.StockReservation
	err := s.withConflictRetry(ctx, func() error {
		return s.runner.Run(ctx, func(res repository.TxRepository, stock stockrepo.TxRepository) error {
			state, err := stock.GetStateForUpdate(ctx, req.ProductID)
			if err != nil {
				return err
			}

			active, err := res.ActiveQuantity(ctx, req.ProductID)
			if err != nil {
				return err
			}

			available := state.StockReal - active
			if available < 0 {
				available = 0
			}
			if req.Quantity > available {
				return stockmodel.NewInsufficientStockError(available, req.Quantity)
			}

			reservation = &model.StockReservation{
				ID:            uuid.New(),
				ProductID:     req.ProductID,
				Quantity:      req.Quantity,
				ReferenceType: req.ReferenceType,
				ReferenceID:   req.ReferenceID,
				ReservedBy:    reservedBy,
				ReservedAt:    time.Now().UTC(),
				ExpiresAt:     req.ExpiresAt,
			}
			return res.Insert(ctx, reservation)
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.ReservationsCreated.Inc()
	return reservation, nil
}

// Release marks a reservation released. Releasing an already-released
// reservation is a no-op, not an error.
func (s *ReservationService) Release(ctx context.Context, id, releasedBy uuid.UUID) error {
	released, err := s.repo.Release(ctx, id, releasedBy)
	if err != nil {
		return err
	}
	if !released {
		// Distinguish "already released" from "never existed".
		if _, err := s.repo.GetByID(ctx, id); err != nil {
			return err
		}
		return nil
	}
	metrics.ReservationsReleased.WithLabelValues("manual").Inc()
	return nil
}

func (s *ReservationService) ListActive(ctx context.Context, filter model.ReservationFilter) ([]model.StockReservation, error) {
	return s.repo.ListActive(ctx, filter)
}

// ExpireSweep releases every past-expiry reservation. Availability already
// excludes them at read time; this keeps the table tidy.
func (s *ReservationService) ExpireSweep(ctx context.Context) (int, error) {
	count, err := s.repo.ReleaseExpired(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		metrics.ReservationsReleased.WithLabelValues("expired").Add(float64(count))
		logger.Info("released expired reservations", map[string]interface{}{"count": count})
	}
	return count, nil
}

func (s *ReservationService) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		err = fn()
		if err == nil || !stockmodel.IsConflict(err) {
			return err
		}
		metrics.ConflictRetries.Inc()
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}
