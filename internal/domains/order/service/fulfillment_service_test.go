package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockops-backend/internal/domains/order/model"
	"stockops-backend/internal/domains/order/repository"
	resmodel "stockops-backend/internal/domains/reservation/model"
	resrepo "stockops-backend/internal/domains/reservation/repository"
	stockmodel "stockops-backend/internal/domains/stock/model"
	stockrepo "stockops-backend/internal/domains/stock/repository"
)

// ===== in-memory fakes =====

type fakeStore struct {
	states         map[uuid.UUID]*stockmodel.ProductStockState
	movements      []stockmodel.StockMovement
	reservations   []*resmodel.StockReservation
	purchaseOrders map[uuid.UUID]*model.PurchaseOrder
	salesOrders    map[uuid.UUID]*model.SalesOrder
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		states:         make(map[uuid.UUID]*stockmodel.ProductStockState),
		purchaseOrders: make(map[uuid.UUID]*model.PurchaseOrder),
		salesOrders:    make(map[uuid.UUID]*model.SalesOrder),
	}
}

func (s *fakeStore) addProduct(stockReal int) uuid.UUID {
	id := uuid.New()
	s.states[id] = &stockmodel.ProductStockState{ProductID: id, StockReal: stockReal}
	return id
}

func (s *fakeStore) addPurchaseOrder(status model.PurchaseOrderStatus, quantities map[uuid.UUID]int) *model.PurchaseOrder {
	po := &model.PurchaseOrder{ID: uuid.New(), OrderNumber: "PO-1", Status: status}
	for productID, qty := range quantities {
		po.Lines = append(po.Lines, model.PurchaseOrderLine{
			ID: uuid.New(), PurchaseOrderID: po.ID, ProductID: productID, Quantity: qty,
		})
	}
	s.purchaseOrders[po.ID] = po
	return po
}

func (s *fakeStore) addSalesOrder(status model.SalesOrderStatus, lines []model.SalesOrderLine) *model.SalesOrder {
	so := &model.SalesOrder{ID: uuid.New(), OrderNumber: "SO-1", Status: status}
	for i := range lines {
		lines[i].ID = uuid.New()
		lines[i].SalesOrderID = so.ID
	}
	so.Lines = lines
	s.salesOrders[so.ID] = so
	return so
}

func (s *fakeStore) activeReserved(productID uuid.UUID) int {
	total := 0
	now := time.Now()
	for _, r := range s.reservations {
		if r.ProductID == productID && r.Active(now) {
			total += r.Quantity
		}
	}
	return total
}

func (s *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for id, st := range s.states {
		copied := *st
		c.states[id] = &copied
	}
	c.movements = append([]stockmodel.StockMovement(nil), s.movements...)
	for _, r := range s.reservations {
		copied := *r
		c.reservations = append(c.reservations, &copied)
	}
	for id, po := range s.purchaseOrders {
		copied := *po
		copied.Lines = append([]model.PurchaseOrderLine(nil), po.Lines...)
		c.purchaseOrders[id] = &copied
	}
	for id, so := range s.salesOrders {
		copied := *so
		copied.Lines = append([]model.SalesOrderLine(nil), so.Lines...)
		c.salesOrders[id] = &copied
	}
	return c
}

func (s *fakeStore) restore(from *fakeStore) {
	s.states = from.states
	s.movements = from.movements
	s.reservations = from.reservations
	s.purchaseOrders = from.purchaseOrders
	s.salesOrders = from.salesOrders
}

// fakeRunner mimics transaction semantics: on error all mutations roll back.
type fakeRunner struct {
	s *fakeStore
}

func (r *fakeRunner) Run(_ context.Context, fn func(orders repository.TxRepository, stock stockrepo.TxRepository, reservations resrepo.TxRepository) error) error {
	snapshot := r.s.clone()
	err := fn(&fakeOrderTxRepo{s: r.s}, &fakeStockTxRepo{s: r.s}, &fakeResTxRepo{s: r.s})
	if err != nil {
		r.s.restore(snapshot)
	}
	return err
}

type fakeOrderTxRepo struct {
	s *fakeStore
}

func (r *fakeOrderTxRepo) InsertPurchaseOrder(_ context.Context, po *model.PurchaseOrder) error {
	copied := *po
	copied.Lines = append([]model.PurchaseOrderLine(nil), po.Lines...)
	r.s.purchaseOrders[po.ID] = &copied
	return nil
}

func (r *fakeOrderTxRepo) GetPurchaseOrderForUpdate(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := r.s.purchaseOrders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	copied := *po
	copied.Lines = append([]model.PurchaseOrderLine(nil), po.Lines...)
	return &copied, nil
}

func (r *fakeOrderTxRepo) GetPurchaseLineForUpdate(_ context.Context, lineID uuid.UUID) (*model.PurchaseOrder, *model.PurchaseOrderLine, error) {
	for _, po := range r.s.purchaseOrders {
		for i := range po.Lines {
			if po.Lines[i].ID == lineID {
				poCopy := *po
				lineCopy := po.Lines[i]
				return &poCopy, &lineCopy, nil
			}
		}
	}
	return nil, nil, model.ErrLineNotFound
}

func (r *fakeOrderTxRepo) AddReceivedQuantity(_ context.Context, lineID uuid.UUID, quantity int) error {
	for _, po := range r.s.purchaseOrders {
		for i := range po.Lines {
			if po.Lines[i].ID == lineID {
				po.Lines[i].QuantityReceived += quantity
				return nil
			}
		}
	}
	return model.ErrLineNotFound
}

func (r *fakeOrderTxRepo) ListPurchaseLines(_ context.Context, orderID uuid.UUID) ([]model.PurchaseOrderLine, error) {
	po, ok := r.s.purchaseOrders[orderID]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return append([]model.PurchaseOrderLine(nil), po.Lines...), nil
}

func (r *fakeOrderTxRepo) SetPurchaseOrderStatus(_ context.Context, id uuid.UUID, status model.PurchaseOrderStatus) error {
	po, ok := r.s.purchaseOrders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	po.Status = status
	return nil
}

func (r *fakeOrderTxRepo) InsertSalesOrder(_ context.Context, so *model.SalesOrder) error {
	copied := *so
	copied.Lines = append([]model.SalesOrderLine(nil), so.Lines...)
	r.s.salesOrders[so.ID] = &copied
	return nil
}

func (r *fakeOrderTxRepo) GetSalesOrderForUpdate(_ context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	so, ok := r.s.salesOrders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	copied := *so
	copied.Lines = append([]model.SalesOrderLine(nil), so.Lines...)
	return &copied, nil
}

func (r *fakeOrderTxRepo) GetSalesLineForUpdate(_ context.Context, lineID uuid.UUID) (*model.SalesOrder, *model.SalesOrderLine, error) {
	for _, so := range r.s.salesOrders {
		for i := range so.Lines {
			if so.Lines[i].ID == lineID {
				soCopy := *so
				lineCopy := so.Lines[i]
				return &soCopy, &lineCopy, nil
			}
		}
	}
	return nil, nil, model.ErrLineNotFound
}

func (r *fakeOrderTxRepo) AddShippedQuantity(_ context.Context, lineID uuid.UUID, quantity int) error {
	for _, so := range r.s.salesOrders {
		for i := range so.Lines {
			if so.Lines[i].ID == lineID {
				so.Lines[i].QuantityShipped += quantity
				return nil
			}
		}
	}
	return model.ErrLineNotFound
}

func (r *fakeOrderTxRepo) ListSalesLines(_ context.Context, orderID uuid.UUID) ([]model.SalesOrderLine, error) {
	so, ok := r.s.salesOrders[orderID]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return append([]model.SalesOrderLine(nil), so.Lines...), nil
}

func (r *fakeOrderTxRepo) SetSalesOrderStatus(_ context.Context, id uuid.UUID, status model.SalesOrderStatus) error {
	so, ok := r.s.salesOrders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	so.Status = status
	return nil
}

type fakeStockTxRepo struct {
	s *fakeStore
}

func (r *fakeStockTxRepo) GetStateForUpdate(_ context.Context, productID uuid.UUID) (*stockmodel.ProductStockState, error) {
	state, ok := r.s.states[productID]
	if !ok {
		return nil, stockmodel.ErrProductNotFound
	}
	copied := *state
	return &copied, nil
}

func (r *fakeStockTxRepo) SetStockReal(_ context.Context, productID uuid.UUID, quantity int) error {
	r.s.states[productID].StockReal = quantity
	return nil
}

func (r *fakeStockTxRepo) SetForecast(_ context.Context, productID uuid.UUID, ft stockmodel.ForecastType, quantity int) error {
	if ft == stockmodel.ForecastIn {
		r.s.states[productID].StockForecastedIn = quantity
	} else {
		r.s.states[productID].StockForecastedOut = quantity
	}
	return nil
}

func (r *fakeStockTxRepo) AdjustForecast(_ context.Context, productID uuid.UUID, ft stockmodel.ForecastType, delta int) error {
	state := r.s.states[productID]
	if ft == stockmodel.ForecastIn {
		state.StockForecastedIn = clampZero(state.StockForecastedIn + delta)
	} else {
		state.StockForecastedOut = clampZero(state.StockForecastedOut + delta)
	}
	return nil
}

func clampZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func (r *fakeStockTxRepo) InsertMovement(_ context.Context, m *stockmodel.StockMovement) error {
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *fakeStockTxRepo) ActiveReservedQuantity(_ context.Context, productID uuid.UUID) (int, error) {
	return r.s.activeReserved(productID), nil
}

type fakeResTxRepo struct {
	s *fakeStore
}

func (r *fakeResTxRepo) Insert(_ context.Context, res *resmodel.StockReservation) error {
	copied := *res
	r.s.reservations = append(r.s.reservations, &copied)
	return nil
}

func (r *fakeResTxRepo) ActiveQuantity(_ context.Context, productID uuid.UUID) (int, error) {
	return r.s.activeReserved(productID), nil
}

func (r *fakeResTxRepo) ReleaseByReference(_ context.Context, referenceType string, referenceID, releasedBy uuid.UUID) (int, error) {
	count := 0
	now := time.Now()
	for _, res := range r.s.reservations {
		if res.ReferenceType != nil && *res.ReferenceType == referenceType &&
			res.ReferenceID != nil && *res.ReferenceID == referenceID && res.Active(now) {
			res.ReleasedAt = &now
			res.ReleasedBy = &releasedBy
			count++
		}
	}
	return count, nil
}

func (r *fakeResTxRepo) ConsumeForShipment(_ context.Context, productID, referenceID uuid.UUID, quantity int, releasedBy uuid.UUID) error {
	now := time.Now()
	remaining := quantity
	for _, res := range r.s.reservations {
		if remaining <= 0 {
			break
		}
		if res.ProductID != productID || !res.Active(now) ||
			res.ReferenceID == nil || *res.ReferenceID != referenceID {
			continue
		}
		if res.Quantity <= remaining {
			remaining -= res.Quantity
			res.ReleasedAt = &now
			res.ReleasedBy = &releasedBy
		} else {
			res.Quantity -= remaining
			remaining = 0
		}
	}
	return nil
}

type fakeReader struct {
	s *fakeStore
}

func (r *fakeReader) GetPurchaseOrder(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	po, ok := r.s.purchaseOrders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return po, nil
}

func (r *fakeReader) GetSalesOrder(_ context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	so, ok := r.s.salesOrders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return so, nil
}

func newTestService(store *fakeStore) *FulfillmentService {
	return NewFulfillmentService(&fakeRunner{s: store}, &fakeReader{s: store}, nil, 3)
}

// ===== tests =====

func TestConfirmPurchaseOrderBooksForecast(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(0)
	po := store.addPurchaseOrder(model.POStatusDraft, map[uuid.UUID]int{productID: 8})
	svc := newTestService(store)
	ctx := context.Background()
	actor := uuid.New()

	result, err := svc.ConfirmPurchaseOrder(ctx, po.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, string(model.POStatusConfirmed), result.Status)
	assert.Equal(t, 8, store.states[productID].StockForecastedIn)

	_, err = svc.ConfirmPurchaseOrder(ctx, po.ID, actor)
	assert.ErrorIs(t, err, model.ErrInvalidOrderStatus)
}

func TestPartialReceiptIsReentrant(t *testing.T) {
	actor := uuid.New()
	ctx := context.Background()

	receive := func(lineID uuid.UUID, svc *FulfillmentService, quantities ...int) string {
		var status string
		for _, q := range quantities {
			result, err := svc.ReceivePurchaseOrderLine(ctx, lineID, q, actor)
			require.NoError(t, err)
			status = result.Status
		}
		return status
	}

	// Receiving 3 then 2 of a 5-unit line...
	partial := newFakeStore()
	productA := partial.addProduct(0)
	poA := partial.addPurchaseOrder(model.POStatusConfirmed, map[uuid.UUID]int{productA: 5})
	partial.states[productA].StockForecastedIn = 5
	svcA := newTestService(partial)
	statusA := receive(poA.Lines[0].ID, svcA, 3, 2)

	// ...must equal receiving 5 in one call.
	full := newFakeStore()
	productB := full.addProduct(0)
	poB := full.addPurchaseOrder(model.POStatusConfirmed, map[uuid.UUID]int{productB: 5})
	full.states[productB].StockForecastedIn = 5
	svcB := newTestService(full)
	statusB := receive(poB.Lines[0].ID, svcB, 5)

	assert.Equal(t, string(model.POStatusReceived), statusA)
	assert.Equal(t, statusA, statusB)
	assert.Equal(t, 5, partial.purchaseOrders[poA.ID].Lines[0].QuantityReceived)
	assert.Equal(t, full.purchaseOrders[poB.ID].Lines[0].QuantityReceived,
		partial.purchaseOrders[poA.ID].Lines[0].QuantityReceived)
	assert.Equal(t, 5, partial.states[productA].StockReal)
	assert.Equal(t, 0, partial.states[productA].StockForecastedIn)

	// Intermediate state after the first partial call was partially_received.
	assert.Len(t, partial.movements, 2)
	assert.Equal(t, 0, partial.movements[0].QuantityBefore)
	assert.Equal(t, 3, partial.movements[0].QuantityAfter)
	assert.Equal(t, 3, partial.movements[1].QuantityBefore)
	assert.Equal(t, 5, partial.movements[1].QuantityAfter)
}

func TestReceiveOverFulfillment(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(0)
	po := store.addPurchaseOrder(model.POStatusConfirmed, map[uuid.UUID]int{productID: 5})
	store.states[productID].StockForecastedIn = 5
	svc := newTestService(store)
	ctx := context.Background()
	actor := uuid.New()

	_, err := svc.ReceivePurchaseOrderLine(ctx, po.Lines[0].ID, 6, actor)
	assert.True(t, model.IsOverFulfillment(err))
	assert.Equal(t, 0, store.states[productID].StockReal)
	assert.Empty(t, store.movements)

	// Partial then over the remainder fails too.
	_, err = svc.ReceivePurchaseOrderLine(ctx, po.Lines[0].ID, 3, actor)
	require.NoError(t, err)
	_, err = svc.ReceivePurchaseOrderLine(ctx, po.Lines[0].ID, 3, actor)
	assert.True(t, model.IsOverFulfillment(err))
	assert.Equal(t, 3, store.purchaseOrders[po.ID].Lines[0].QuantityReceived)
}

func TestReceiveRequiresConfirmedOrder(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(0)
	po := store.addPurchaseOrder(model.POStatusDraft, map[uuid.UUID]int{productID: 5})
	svc := newTestService(store)

	_, err := svc.ReceivePurchaseOrderLine(context.Background(), po.Lines[0].ID, 1, uuid.New())
	assert.ErrorIs(t, err, model.ErrInvalidOrderStatus)
}

func TestConfirmSalesOrderWithAutoReserve(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(10)
	so := store.addSalesOrder(model.SOStatusDraft, []model.SalesOrderLine{{ProductID: productID, Quantity: 4}})
	svc := newTestService(store)
	ctx := context.Background()
	actor := uuid.New()

	result, err := svc.ConfirmSalesOrder(ctx, so.ID, model.ConfirmSalesOrderRequest{Reserve: true}, actor)
	require.NoError(t, err)
	assert.Equal(t, string(model.SOStatusConfirmed), result.Status)
	assert.Equal(t, 4, store.states[productID].StockForecastedOut)
	assert.Equal(t, 4, store.activeReserved(productID))
}

func TestConfirmSalesOrderAutoReserveIsAllOrNothing(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(10)
	so := store.addSalesOrder(model.SOStatusDraft, []model.SalesOrderLine{
		{ProductID: productID, Quantity: 4},
		{ProductID: productID, Quantity: 20},
	})
	svc := newTestService(store)

	_, err := svc.ConfirmSalesOrder(context.Background(), so.ID, model.ConfirmSalesOrderRequest{Reserve: true}, uuid.New())
	assert.True(t, stockmodel.IsInsufficientStock(err))

	assert.Equal(t, model.SOStatusDraft, store.salesOrders[so.ID].Status)
	assert.Equal(t, 0, store.states[productID].StockForecastedOut, "failed confirm must leave no forecast")
	assert.Equal(t, 0, store.activeReserved(productID), "failed confirm must leave no reservation")
}

func TestShipTwoLineOrderStatusTransitions(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(10)
	so := store.addSalesOrder(model.SOStatusDraft, []model.SalesOrderLine{
		{ProductID: productID, Quantity: 5},
		{ProductID: productID, Quantity: 3},
	})
	svc := newTestService(store)
	ctx := context.Background()
	actor := uuid.New()

	_, err := svc.ConfirmSalesOrder(ctx, so.ID, model.ConfirmSalesOrderRequest{}, actor)
	require.NoError(t, err)
	assert.Equal(t, 8, store.states[productID].StockForecastedOut)

	first, err := svc.ShipSalesOrderLine(ctx, so.Lines[0].ID, 5, actor)
	require.NoError(t, err)
	assert.Equal(t, string(model.SOStatusPartiallyShipped), first.Status)

	second, err := svc.ShipSalesOrderLine(ctx, so.Lines[1].ID, 3, actor)
	require.NoError(t, err)
	assert.Equal(t, string(model.SOStatusShipped), second.Status)

	require.Len(t, store.movements, 2, "exactly two OUT movements")
	assert.Equal(t, stockmodel.MovementOut, store.movements[0].MovementType)
	assert.Equal(t, stockmodel.MovementOut, store.movements[1].MovementType)
	assert.Equal(t, 10, store.movements[0].QuantityBefore)
	assert.Equal(t, 5, store.movements[0].QuantityAfter)
	assert.Equal(t, 5, store.movements[1].QuantityBefore)
	assert.Equal(t, 2, store.movements[1].QuantityAfter)

	assert.Equal(t, 2, store.states[productID].StockReal)
	assert.Equal(t, 0, store.states[productID].StockForecastedOut)
}

func TestShipInsufficientStock(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(2)
	so := store.addSalesOrder(model.SOStatusConfirmed, []model.SalesOrderLine{{ProductID: productID, Quantity: 5}})
	store.states[productID].StockForecastedOut = 5
	svc := newTestService(store)

	_, err := svc.ShipSalesOrderLine(context.Background(), so.Lines[0].ID, 5, uuid.New())
	assert.True(t, stockmodel.IsInsufficientStock(err))
	assert.Equal(t, 2, store.states[productID].StockReal)
	assert.Empty(t, store.movements)
}

func TestShipOverFulfillment(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(10)
	so := store.addSalesOrder(model.SOStatusConfirmed, []model.SalesOrderLine{{ProductID: productID, Quantity: 3}})
	store.states[productID].StockForecastedOut = 3
	svc := newTestService(store)

	_, err := svc.ShipSalesOrderLine(context.Background(), so.Lines[0].ID, 4, uuid.New())
	assert.True(t, model.IsOverFulfillment(err))
	assert.Equal(t, 10, store.states[productID].StockReal)
	assert.Equal(t, 3, store.states[productID].StockForecastedOut)
}

func TestShipConsumesReservation(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(10)
	so := store.addSalesOrder(model.SOStatusDraft, []model.SalesOrderLine{{ProductID: productID, Quantity: 4}})
	svc := newTestService(store)
	ctx := context.Background()
	actor := uuid.New()

	_, err := svc.ConfirmSalesOrder(ctx, so.ID, model.ConfirmSalesOrderRequest{Reserve: true}, actor)
	require.NoError(t, err)
	require.Equal(t, 4, store.activeReserved(productID))

	_, err = svc.ShipSalesOrderLine(ctx, so.Lines[0].ID, 3, actor)
	require.NoError(t, err)
	assert.Equal(t, 1, store.activeReserved(productID), "shipment consumes reservation units")
}

func TestCancelSalesOrderUnwindsForecastAndReservations(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(10)
	so := store.addSalesOrder(model.SOStatusDraft, []model.SalesOrderLine{{ProductID: productID, Quantity: 4}})
	svc := newTestService(store)
	ctx := context.Background()
	actor := uuid.New()

	_, err := svc.ConfirmSalesOrder(ctx, so.ID, model.ConfirmSalesOrderRequest{Reserve: true}, actor)
	require.NoError(t, err)

	result, err := svc.CancelSalesOrder(ctx, so.ID, actor)
	require.NoError(t, err)
	assert.Equal(t, string(model.SOStatusCancelled), result.Status)
	assert.Equal(t, 0, store.states[productID].StockForecastedOut)
	assert.Equal(t, 0, store.activeReserved(productID))
}

func TestCancelAfterPartialShipmentKeepsShippedEffect(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(10)
	so := store.addSalesOrder(model.SOStatusDraft, []model.SalesOrderLine{{ProductID: productID, Quantity: 5}})
	svc := newTestService(store)
	ctx := context.Background()
	actor := uuid.New()

	_, err := svc.ConfirmSalesOrder(ctx, so.ID, model.ConfirmSalesOrderRequest{}, actor)
	require.NoError(t, err)
	_, err = svc.ShipSalesOrderLine(ctx, so.Lines[0].ID, 2, actor)
	require.NoError(t, err)

	_, err = svc.CancelSalesOrder(ctx, so.ID, actor)
	require.NoError(t, err)

	assert.Equal(t, 8, store.states[productID].StockReal, "shipped stock effect is not reversed")
	assert.Equal(t, 0, store.states[productID].StockForecastedOut, "unshipped remainder is unwound")
	assert.Len(t, store.movements, 1, "cancellation records no movement")
}

func TestCancelDraftOrderLeavesForecastAlone(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(10)
	// Forecast booked by a different confirmed order for the same product.
	store.states[productID].StockForecastedOut = 6
	so := store.addSalesOrder(model.SOStatusDraft, []model.SalesOrderLine{{ProductID: productID, Quantity: 4}})
	svc := newTestService(store)

	_, err := svc.CancelSalesOrder(context.Background(), so.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 6, store.states[productID].StockForecastedOut)
}

func TestCreateOrders(t *testing.T) {
	store := newFakeStore()
	productID := store.addProduct(0)
	svc := newTestService(store)
	ctx := context.Background()
	actor := uuid.New()

	po, err := svc.CreatePurchaseOrder(ctx, model.CreatePurchaseOrderRequest{
		OrderNumber:  "PO-100",
		SupplierName: "Acme Supply",
		Lines:        []model.CreateOrderLineRequest{{ProductID: productID, Quantity: 5}},
	}, actor)
	require.NoError(t, err)
	assert.Equal(t, model.POStatusDraft, po.Status)
	assert.Len(t, store.purchaseOrders[po.ID].Lines, 1)

	_, err = svc.CreateSalesOrder(ctx, model.CreateSalesOrderRequest{
		OrderNumber:  "SO-100",
		CustomerName: "Acme Retail",
		Lines:        []model.CreateOrderLineRequest{{ProductID: productID, Quantity: 0}},
	}, actor)
	assert.Error(t, err, "zero-quantity line is rejected")
}
