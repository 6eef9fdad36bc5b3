package job

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"stockops-backend/internal/domains/stock/model"
	"stockops-backend/internal/domains/stock/service"
	"stockops-backend/internal/shared"
	"stockops-backend/pkg/cache"
	"stockops-backend/pkg/logger"
)

// SnapshotKey is the Redis key for a product's cached stock snapshot.
func SnapshotKey(productID uuid.UUID) string {
	return fmt.Sprintf("stock:product:%s:state", productID)
}

// SnapshotSyncHandler refreshes the Redis snapshot of a product's derived
// quantities after ledger writes. The snapshot serves dashboards only; the
// API read path always recomputes from the database.
type SnapshotSyncHandler struct {
	service *service.LedgerService
	cache   cache.Cache
	ttl     time.Duration
}

func NewSnapshotSyncHandler(s *service.LedgerService, c cache.Cache, ttl time.Duration) *SnapshotSyncHandler {
	return &SnapshotSyncHandler{service: s, cache: c, ttl: ttl}
}

func (h *SnapshotSyncHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.StockSnapshotSyncPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot payload: %w", err)
	}

	productID, err := uuid.Parse(payload.ProductID)
	if err != nil {
		return fmt.Errorf("invalid product id in snapshot payload: %w", err)
	}

	state, err := h.service.GetStockState(ctx, productID)
	if err != nil {
		if model.IsNotFound(err) {
			// Product deleted between enqueue and processing, nothing to sync.
			return h.cache.Delete(ctx, SnapshotKey(productID))
		}
		return fmt.Errorf("failed to recompute stock state: %w", err)
	}

	if err := h.cache.Set(ctx, SnapshotKey(productID), state, h.ttl); err != nil {
		return fmt.Errorf("failed to write stock snapshot: %w", err)
	}

	logger.Debug("stock snapshot refreshed", map[string]interface{}{
		"product_id": productID.String(),
	})
	return nil
}
