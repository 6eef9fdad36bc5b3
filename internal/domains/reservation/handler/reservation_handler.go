package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"stockops-backend/internal/domains/reservation/model"
	"stockops-backend/internal/domains/reservation/service"
	stockmodel "stockops-backend/internal/domains/stock/model"
	"stockops-backend/internal/shared/middleware"
	"stockops-backend/internal/shared/response"
)

type ReservationHandler struct {
	service *service.ReservationService
}

func NewReservationHandler(s *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: s}
}

// Reserve handles POST /reservations.
func (h *ReservationHandler) Reserve(c *gin.Context) {
	var req model.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "RSV_001", "invalid request body")
		return
	}

	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	reservation, err := h.service.Reserve(c.Request.Context(), req, actor)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, reservation)
}

// Release handles POST /reservations/:id/release.
func (h *ReservationHandler) Release(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "RSV_002", "invalid reservation id")
		return
	}

	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	if err := h.service.Release(c.Request.Context(), id, actor); err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"released": true})
}

// ListActive handles GET /reservations.
func (h *ReservationHandler) ListActive(c *gin.Context) {
	var filter model.ReservationFilter

	if v := c.Query("product_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "RSV_003", "invalid product_id filter")
			return
		}
		filter.ProductID = &id
	}
	if v := c.Query("reference_type"); v != "" {
		filter.ReferenceType = &v
	}
	if v := c.Query("reference_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			response.BadRequest(c, "RSV_003", "invalid reference_id filter")
			return
		}
		filter.ReferenceID = &id
	}

	reservations, err := h.service.ListActive(c.Request.Context(), filter)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, reservations)
}

func (h *ReservationHandler) mapError(c *gin.Context, err error) {
	switch {
	case model.IsNotFound(err):
		response.NotFound(c, "RSV_404", err.Error())
	case stockmodel.IsNotFound(err):
		response.NotFound(c, "STK_404", err.Error())
	case stockmodel.IsInsufficientStock(err):
		response.Conflict(c, "RSV_409", err.Error())
	case stockmodel.IsConflict(err):
		response.Conflict(c, "RSV_CONFLICT", "concurrent modification, please retry")
	case isValidationError(err):
		response.BadRequest(c, "RSV_400", err.Error())
	default:
		response.InternalError(c, "failed to process reservation")
	}
}

func isValidationError(err error) bool {
	var errs validation.Errors
	if errors.As(err, &errs) {
		return true
	}
	var e validation.Error
	return errors.As(err, &e)
}
