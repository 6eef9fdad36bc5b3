package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"stockops-backend/internal/domains/stock/model"
	"stockops-backend/internal/domains/stock/service"
	"stockops-backend/internal/shared/middleware"
	"stockops-backend/internal/shared/response"
)

type StockHandler struct {
	service *service.LedgerService
}

func NewStockHandler(s *service.LedgerService) *StockHandler {
	return &StockHandler{service: s}
}

// AppendMovement handles POST /stock/movements.
func (h *StockHandler) AppendMovement(c *gin.Context) {
	var req model.AppendMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "STK_001", "invalid request body")
		return
	}

	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	movement, err := h.service.Append(c.Request.Context(), req, actor)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, movement)
}

// ListMovements handles GET /stock/movements.
func (h *StockHandler) ListMovements(c *gin.Context) {
	filter, err := parseMovementFilter(c)
	if err != nil {
		response.BadRequest(c, "STK_002", err.Error())
		return
	}

	movements, total, err := h.service.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, movements, response.NewMeta(filter.Page, filter.Limit, total))
}

// GetStockState handles GET /stock/products/:id/state.
func (h *StockHandler) GetStockState(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "STK_003", "invalid product id")
		return
	}

	state, err := h.service.GetStockState(c.Request.Context(), productID)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// Classify handles GET /stock/products/:id/classification.
func (h *StockHandler) Classify(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "STK_003", "invalid product id")
		return
	}

	classification, err := h.service.Classify(c.Request.Context(), productID)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, classification)
}

// GetMovementStats handles GET /stock/products/:id/movements/stats.
func (h *StockHandler) GetMovementStats(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "STK_003", "invalid product id")
		return
	}

	stats, err := h.service.GetMovementStats(c.Request.Context(), productID)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, stats)
}

// ListAlerts handles GET /stock/alerts.
func (h *StockHandler) ListAlerts(c *gin.Context) {
	alerts, err := h.service.ListAlerts(c.Request.Context())
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, alerts)
}

func (h *StockHandler) mapError(c *gin.Context, err error) {
	switch {
	case model.IsNotFound(err):
		response.NotFound(c, "STK_404", err.Error())
	case model.IsInsufficientStock(err):
		response.Conflict(c, "STK_409", err.Error())
	case model.IsConflict(err):
		response.Conflict(c, "STK_CONFLICT", "concurrent modification, please retry")
	case errors.Is(err, model.ErrMissingJustification),
		errors.Is(err, model.ErrInvalidQuantity),
		errors.Is(err, model.ErrInvalidMovementType),
		errors.Is(err, model.ErrInvalidReasonCode),
		isValidationError(err):
		response.BadRequest(c, "STK_400", err.Error())
	default:
		response.InternalError(c, "failed to process stock operation")
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

func parseMovementFilter(c *gin.Context) (model.MovementFilter, error) {
	var filter model.MovementFilter

	if v := c.Query("product_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, errors.New("invalid product_id filter")
		}
		filter.ProductID = &id
	}
	if v := c.Query("movement_type"); v != "" {
		t := model.MovementType(v)
		if !t.IsValid() {
			return filter, errors.New("invalid movement_type filter")
		}
		filter.MovementType = &t
	}
	if v := c.Query("reference_type"); v != "" {
		filter.ReferenceType = &v
	}
	if v := c.Query("reference_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, errors.New("invalid reference_id filter")
		}
		filter.ReferenceID = &id
	}
	if v := c.Query("reason_code"); v != "" {
		code := model.ReasonCode(v)
		if !code.IsValid() {
			return filter, errors.New("invalid reason_code filter")
		}
		filter.ReasonCode = &code
	}
	if v := c.Query("affects_forecast"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, errors.New("invalid affects_forecast filter")
		}
		filter.AffectsForecast = &b
	}
	if v := c.Query("performed_by"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, errors.New("invalid performed_by filter")
		}
		filter.PerformedBy = &id
	}
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("invalid from filter, expected RFC3339")
		}
		filter.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errors.New("invalid to filter, expected RFC3339")
		}
		filter.To = &t
	}

	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return filter, nil
}
