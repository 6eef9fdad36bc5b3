package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"stockops-backend/internal/domains/order/model"
	"stockops-backend/internal/domains/order/service"
	stockmodel "stockops-backend/internal/domains/stock/model"
	"stockops-backend/internal/shared/middleware"
	"stockops-backend/internal/shared/response"
)

type OrderHandler struct {
	service *service.FulfillmentService
}

func NewOrderHandler(s *service.FulfillmentService) *OrderHandler {
	return &OrderHandler{service: s}
}

// CreatePurchaseOrder handles POST /orders/purchase.
func (h *OrderHandler) CreatePurchaseOrder(c *gin.Context) {
	var req model.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "ORD_001", "invalid request body")
		return
	}
	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	po, err := h.service.CreatePurchaseOrder(c.Request.Context(), req, actor)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, po)
}

// GetPurchaseOrder handles GET /orders/purchase/:id.
func (h *OrderHandler) GetPurchaseOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ORD_002", "invalid order id")
		return
	}
	po, err := h.service.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, po)
}

// ConfirmPurchaseOrder handles POST /orders/purchase/:id/confirm.
func (h *OrderHandler) ConfirmPurchaseOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ORD_002", "invalid order id")
		return
	}
	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	result, err := h.service.ConfirmPurchaseOrder(c.Request.Context(), id, actor)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ReceiveLine handles POST /orders/purchase/:id/lines/:lineId/receive.
func (h *OrderHandler) ReceiveLine(c *gin.Context) {
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		response.BadRequest(c, "ORD_003", "invalid line id")
		return
	}
	var req model.FulfillLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "ORD_001", "invalid request body")
		return
	}
	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	result, err := h.service.ReceivePurchaseOrderLine(c.Request.Context(), lineID, req.Quantity, actor)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// CreateSalesOrder handles POST /orders/sales.
func (h *OrderHandler) CreateSalesOrder(c *gin.Context) {
	var req model.CreateSalesOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "ORD_001", "invalid request body")
		return
	}
	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	so, err := h.service.CreateSalesOrder(c.Request.Context(), req, actor)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, so)
}

// GetSalesOrder handles GET /orders/sales/:id.
func (h *OrderHandler) GetSalesOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ORD_002", "invalid order id")
		return
	}
	so, err := h.service.GetSalesOrder(c.Request.Context(), id)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, so)
}

// ConfirmSalesOrder handles POST /orders/sales/:id/confirm.
func (h *OrderHandler) ConfirmSalesOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ORD_002", "invalid order id")
		return
	}
	// Body is optional: confirming without one skips auto-reservation.
	var req model.ConfirmSalesOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "ORD_001", "invalid request body")
			return
		}
	}
	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	result, err := h.service.ConfirmSalesOrder(c.Request.Context(), id, req, actor)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ShipLine handles POST /orders/sales/:id/lines/:lineId/ship.
func (h *OrderHandler) ShipLine(c *gin.Context) {
	lineID, err := uuid.Parse(c.Param("lineId"))
	if err != nil {
		response.BadRequest(c, "ORD_003", "invalid line id")
		return
	}
	var req model.FulfillLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "ORD_001", "invalid request body")
		return
	}
	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	result, err := h.service.ShipSalesOrderLine(c.Request.Context(), lineID, req.Quantity, actor)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// CancelSalesOrder handles POST /orders/sales/:id/cancel.
func (h *OrderHandler) CancelSalesOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "ORD_002", "invalid order id")
		return
	}
	actor, ok := middleware.ActorID(c)
	if !ok {
		response.Unauthorized(c, "AUTH_003", "missing actor identity")
		return
	}

	result, err := h.service.CancelSalesOrder(c.Request.Context(), id, actor)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *OrderHandler) mapError(c *gin.Context, err error) {
	switch {
	case model.IsNotFound(err), stockmodel.IsNotFound(err):
		response.NotFound(c, "ORD_404", err.Error())
	case model.IsOverFulfillment(err):
		response.Conflict(c, "ORD_409", err.Error())
	case stockmodel.IsInsufficientStock(err):
		response.Conflict(c, "STK_409", err.Error())
	case errors.Is(err, model.ErrInvalidOrderStatus):
		response.Conflict(c, "ORD_STATUS", err.Error())
	case stockmodel.IsConflict(err):
		response.Conflict(c, "ORD_CONFLICT", "concurrent modification, please retry")
	case errors.Is(err, stockmodel.ErrInvalidQuantity), isValidationError(err):
		response.BadRequest(c, "ORD_400", err.Error())
	default:
		response.InternalError(c, "failed to process order operation")
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
