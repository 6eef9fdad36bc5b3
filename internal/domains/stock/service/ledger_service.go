package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"stockops-backend/internal/domains/stock/model"
	"stockops-backend/internal/domains/stock/repository"
	"stockops-backend/internal/shared"
	"stockops-backend/internal/shared/metrics"
	"stockops-backend/pkg/logger"
)

// TaskEnqueuer is the slice of asynq.Client the service needs. Nil-able in
// tests and in deployments without a worker.
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type LedgerService struct {
	runner  repository.TxRunner
	reader  repository.ReadRepository
	queue   TaskEnqueuer
	retries int
}

func NewLedgerService(runner repository.TxRunner, reader repository.ReadRepository, queue TaskEnqueuer, conflictRetries int) *LedgerService {
	if conflictRetries < 0 {
		conflictRetries = 0
	}
	return &LedgerService{
		runner:  runner,
		reader:  reader,
		queue:   queue,
		retries: conflictRetries,
	}
}

// Append validates a movement intent and applies it atomically with the
// product's counter update. Concurrent appends for the same product
// serialize on the product row lock.
func (s *LedgerService) Append(ctx context.Context, req model.AppendMovementRequest, performedBy uuid.UUID) (*model.StockMovement, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := validateIntent(req); err != nil {
		metrics.MovementsRejected.WithLabelValues(rejectionLabel(err)).Inc()
		return nil, err
	}

	var movement *model.StockMovement
	err := s.withConflictRetry(ctx, func() error {
		return s.runner.Run(ctx, func(repo repository.TxRepository) error {
			state, err := repo.GetStateForUpdate(ctx, req.ProductID)
			if err != nil {
				return err
			}

			m, err := buildMovement(req, state, performedBy)
			if err != nil {
				return err
			}

			if err := repo.InsertMovement(ctx, m); err != nil {
				return err
			}
			if req.AffectsForecast {
				if err := repo.SetForecast(ctx, req.ProductID, *req.ForecastType, m.QuantityAfter); err != nil {
					return err
				}
			} else {
				if err := repo.SetStockReal(ctx, req.ProductID, m.QuantityAfter); err != nil {
					return err
				}
			}

			movement = m
			return nil
		})
	})
	if err != nil {
		metrics.MovementsRejected.WithLabelValues(rejectionLabel(err)).Inc()
		return nil, err
	}

	metrics.MovementsAppended.WithLabelValues(string(movement.MovementType)).Inc()
	s.enqueueSnapshotSync(ctx, req.ProductID)
	return movement, nil
}

// buildMovement interprets the caller quantity per movement type and
// snapshots the counter it mutates. For forecast movements the snapshot is
// the matching forecast counter, not stockReal.
func buildMovement(req model.AppendMovementRequest, state *model.ProductStockState, performedBy uuid.UUID) (*model.StockMovement, error) {
	before := state.StockReal
	if req.AffectsForecast {
		if *req.ForecastType == model.ForecastIn {
			before = state.StockForecastedIn
		} else {
			before = state.StockForecastedOut
		}
	}

	var change int
	switch req.MovementType {
	case model.MovementIn:
		change = req.Quantity
	case model.MovementOut, model.MovementTransfer:
		change = -req.Quantity
		if before+change < 0 {
			return nil, model.NewInsufficientStockError(before, req.Quantity)
		}
	case model.MovementAdjust:
		change = req.Quantity - before
	default:
		return nil, model.ErrInvalidMovementType
	}

	now := time.Now().UTC()
	return &model.StockMovement{
		ID:              uuid.New(),
		ProductID:       req.ProductID,
		MovementType:    req.MovementType,
		QuantityChange:  change,
		QuantityBefore:  before,
		QuantityAfter:   before + change,
		UnitCost:        req.UnitCost,
		ReferenceType:   req.ReferenceType,
		ReferenceID:     req.ReferenceID,
		ReasonCode:      req.ReasonCode,
		AffectsForecast: req.AffectsForecast,
		ForecastType:    req.ForecastType,
		Notes:           req.Notes,
		PerformedBy:     performedBy,
		PerformedAt:     now,
		CreatedAt:       now,
	}, nil
}

func validateIntent(req model.AppendMovementRequest) error {
	switch req.MovementType {
	case model.MovementIn, model.MovementOut, model.MovementTransfer:
		if req.Quantity <= 0 {
			return model.NewInvalidQuantityError("quantity must be positive")
		}
	case model.MovementAdjust:
		if req.Quantity < 0 {
			return model.NewInvalidQuantityError("adjust target must not be negative")
		}
	}

	if req.ReasonCode.RequiresJustification() {
		if req.Notes == nil || strings.TrimSpace(*req.Notes) == "" {
			return model.NewMissingJustificationError(req.ReasonCode)
		}
	}

	if req.AffectsForecast {
		if req.ForecastType == nil || !req.ForecastType.IsValid() {
			return model.NewInvalidQuantityError("forecast movements require a valid forecast type")
		}
	}
	return nil
}

func rejectionLabel(err error) string {
	switch {
	case model.IsInsufficientStock(err):
		return "insufficient_stock"
	case model.IsNotFound(err):
		return "not_found"
	case model.IsConflict(err):
		return "conflict"
	case errors.Is(err, model.ErrMissingJustification):
		return "missing_justification"
	default:
		return "invalid_request"
	}
}

// GetStockState returns the live projection for one product. stockAvailable
// is always computed at read time because reservations expire between writes.
func (s *LedgerService) GetStockState(ctx context.Context, productID uuid.UUID) (*model.StockStateResponse, error) {
	state, err := s.reader.GetState(ctx, productID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.reader.ActiveReservedQuantity(ctx, productID)
	if err != nil {
		return nil, err
	}
	return model.NewStockStateResponse(state, model.Project(state, reserved)), nil
}

// Classify evaluates the threshold status for one product.
func (s *LedgerService) Classify(ctx context.Context, productID uuid.UUID) (*model.Classification, error) {
	state, err := s.reader.GetState(ctx, productID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.reader.ActiveReservedQuantity(ctx, productID)
	if err != nil {
		return nil, err
	}
	classification := model.Classify(state, model.Project(state, reserved))
	return &classification, nil
}

func (s *LedgerService) ListMovements(ctx context.Context, filter model.MovementFilter) ([]model.StockMovement, int, error) {
	return s.reader.ListMovements(ctx, filter)
}

func (s *LedgerService) GetMovementStats(ctx context.Context, productID uuid.UUID) (*model.MovementStats, error) {
	if _, err := s.reader.GetState(ctx, productID); err != nil {
		return nil, err
	}
	return s.reader.GetMovementStats(ctx, productID)
}

// ListAlerts returns every product whose classification is not healthy or
// that is forecast-short.
func (s *LedgerService) ListAlerts(ctx context.Context) ([]model.AlertItem, error) {
	candidates, err := s.reader.ListAlertCandidates(ctx)
	if err != nil {
		return nil, err
	}

	items := make([]model.AlertItem, 0, len(candidates))
	for _, c := range candidates {
		derived := model.Project(&c.State, c.ActiveReserved)
		classification := model.Classify(&c.State, derived)
		if classification.StockStatus == model.StatusHealthy && classification.ForecastStatus == model.ForecastOK {
			continue
		}
		items = append(items, model.AlertItem{
			ProductID:      c.State.ProductID,
			SKU:            c.State.SKU,
			Name:           c.State.Name,
			MinStock:       c.State.MinStock,
			ReorderPoint:   c.State.ReorderPoint,
			Quantities:     derived,
			Classification: classification,
		})
	}
	return items, nil
}

func (s *LedgerService) withConflictRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.retries; attempt++ {
		err = fn()
		if err == nil || !model.IsConflict(err) {
			return err
		}
		metrics.ConflictRetries.Inc()
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (s *LedgerService) enqueueSnapshotSync(ctx context.Context, productID uuid.UUID) {
	if s.queue == nil {
		return
	}
	payload, err := json.Marshal(shared.StockSnapshotSyncPayload{ProductID: productID.String()})
	if err != nil {
		return
	}
	task := asynq.NewTask(shared.TypeStockSnapshotSync, payload)
	if _, err := s.queue.EnqueueContext(ctx, task, asynq.Queue(shared.QueueLow), asynq.MaxRetry(3)); err != nil {
		logger.Warn("failed to enqueue snapshot sync", map[string]interface{}{
			"product_id": productID.String(),
			"error":      err.Error(),
		})
	}
}
