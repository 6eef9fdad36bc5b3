package job

import (
	"context"

	"github.com/hibiken/asynq"

	"stockops-backend/internal/domains/reservation/service"
)

// ExpirySweepHandler releases expired reservations on a schedule.
type ExpirySweepHandler struct {
	service *service.ReservationService
}

func NewExpirySweepHandler(s *service.ReservationService) *ExpirySweepHandler {
	return &ExpirySweepHandler{service: s}
}

func (h *ExpirySweepHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	_, err := h.service.ExpireSweep(ctx)
	return err
}
