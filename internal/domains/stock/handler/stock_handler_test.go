package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockops-backend/internal/domains/stock/model"
	"stockops-backend/internal/domains/stock/repository"
	"stockops-backend/internal/domains/stock/service"
	"stockops-backend/internal/shared/middleware"
)

// ===== in-memory stubs =====

type stubStore struct {
	state     *model.ProductStockState
	movements []model.StockMovement
}

type stubTxRepo struct {
	s *stubStore
}

func (r *stubTxRepo) GetStateForUpdate(_ context.Context, productID uuid.UUID) (*model.ProductStockState, error) {
	if r.s.state == nil || r.s.state.ProductID != productID {
		return nil, model.ErrProductNotFound
	}
	copied := *r.s.state
	return &copied, nil
}

func (r *stubTxRepo) SetStockReal(_ context.Context, _ uuid.UUID, quantity int) error {
	r.s.state.StockReal = quantity
	return nil
}

func (r *stubTxRepo) SetForecast(_ context.Context, _ uuid.UUID, ft model.ForecastType, quantity int) error {
	if ft == model.ForecastIn {
		r.s.state.StockForecastedIn = quantity
	} else {
		r.s.state.StockForecastedOut = quantity
	}
	return nil
}

func (r *stubTxRepo) AdjustForecast(_ context.Context, _ uuid.UUID, _ model.ForecastType, _ int) error {
	return nil
}

func (r *stubTxRepo) InsertMovement(_ context.Context, m *model.StockMovement) error {
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *stubTxRepo) ActiveReservedQuantity(_ context.Context, _ uuid.UUID) (int, error) {
	return 0, nil
}

type stubRunner struct {
	s *stubStore
}

func (r *stubRunner) Run(_ context.Context, fn func(repo repository.TxRepository) error) error {
	return fn(&stubTxRepo{s: r.s})
}

type stubReader struct {
	s *stubStore
}

func (r *stubReader) GetState(_ context.Context, productID uuid.UUID) (*model.ProductStockState, error) {
	if r.s.state == nil || r.s.state.ProductID != productID {
		return nil, model.ErrProductNotFound
	}
	copied := *r.s.state
	return &copied, nil
}

func (r *stubReader) ActiveReservedQuantity(_ context.Context, _ uuid.UUID) (int, error) {
	return 0, nil
}

func (r *stubReader) ListMovements(_ context.Context, _ model.MovementFilter) ([]model.StockMovement, int, error) {
	return r.s.movements, len(r.s.movements), nil
}

func (r *stubReader) GetMovementStats(_ context.Context, productID uuid.UUID) (*model.MovementStats, error) {
	return &model.MovementStats{ProductID: productID}, nil
}

func (r *stubReader) ListAlertCandidates(_ context.Context) ([]repository.AlertCandidate, error) {
	return nil, nil
}

func newTestHandler(state *model.ProductStockState) *StockHandler {
	store := &stubStore{state: state}
	svc := service.NewLedgerService(&stubRunner{s: store}, &stubReader{s: store}, nil, 0)
	return NewStockHandler(svc)
}

func performAppend(t *testing.T, h *StockHandler, body map[string]interface{}) (*httptest.ResponseRecorder, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/stock/movements", bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set(middleware.ContextUserID, uuid.New())

	h.AppendMovement(c)
	return w, errorCode(t, w)
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Success bool `json:"success"`
		Error   *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if envelope.Error == nil {
		return ""
	}
	return envelope.Error.Code
}

// ===== tests =====

func TestAppendMovementRejectsNegativeAdjustTarget(t *testing.T) {
	productID := uuid.New()
	h := newTestHandler(&model.ProductStockState{ProductID: productID, StockReal: 7})

	w, code := performAppend(t, h, map[string]interface{}{
		"product_id":    productID,
		"movement_type": "ADJUST",
		"quantity":      -1,
		"reason_code":   "manual_adjustment",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "STK_400", code)
}

func TestAppendMovementRejectsUnknownMovementType(t *testing.T) {
	productID := uuid.New()
	h := newTestHandler(&model.ProductStockState{ProductID: productID, StockReal: 7})

	w, code := performAppend(t, h, map[string]interface{}{
		"product_id":    productID,
		"movement_type": "BOGUS",
		"quantity":      1,
		"reason_code":   "manual_adjustment",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "STK_400", code)
}

func TestAppendMovementRejectsUnknownReasonCode(t *testing.T) {
	productID := uuid.New()
	h := newTestHandler(&model.ProductStockState{ProductID: productID, StockReal: 7})

	w, code := performAppend(t, h, map[string]interface{}{
		"product_id":    productID,
		"movement_type": "IN",
		"quantity":      1,
		"reason_code":   "made_up",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "STK_400", code)
}

func TestAppendMovementInsufficientStockMapsToConflict(t *testing.T) {
	productID := uuid.New()
	h := newTestHandler(&model.ProductStockState{ProductID: productID, StockReal: 2})

	w, code := performAppend(t, h, map[string]interface{}{
		"product_id":    productID,
		"movement_type": "OUT",
		"quantity":      5,
		"reason_code":   "sale",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "STK_409", code)
}

func TestAppendMovementAccepted(t *testing.T) {
	productID := uuid.New()
	h := newTestHandler(&model.ProductStockState{ProductID: productID, StockReal: 2})

	w, code := performAppend(t, h, map[string]interface{}{
		"product_id":    productID,
		"movement_type": "IN",
		"quantity":      3,
		"reason_code":   "purchase_reception",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, code)
}

func TestListMovementsRejectsUnknownReasonFilter(t *testing.T) {
	h := newTestHandler(nil)
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/stock/movements?reason_code=made_up", nil)

	h.ListMovements(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "STK_002", errorCode(t, w))
}
