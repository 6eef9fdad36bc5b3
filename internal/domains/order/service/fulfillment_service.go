package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"stockops-backend/internal/domains/order/model"
	"stockops-backend/internal/domains/order/repository"
	resmodel "stockops-backend/internal/domains/reservation/model"
	resrepo "stockops-backend/internal/domains/reservation/repository"
	stockmodel "stockops-backend/internal/domains/stock/model"
	stockrepo "stockops-backend/internal/domains/stock/repository"
	stockservice "stockops-backend/internal/domains/stock/service"
	"stockops-backend/internal/shared"
	"stockops-backend/internal/shared/metrics"
	"stockops-backend/pkg/logger"
)

// FulfillmentService translates order-lifecycle events into ledger entries.
// Every operation is all-or-nothing: document update, movement, counter
// change and reservation effects commit in one transaction.
type FulfillmentService struct {
	runner  repository.TxRunner
	reader  repository.ReadRepository
	queue   stockservice.TaskEnqueuer
	retries int
}

func NewFulfillmentService(runner repository.TxRunner, reader repository.ReadRepository, queue stockservice.TaskEnqueuer, conflictRetries int) *FulfillmentService {
	if conflictRetries < 0 {
		conflictRetries = 0
	}
	return &FulfillmentService{runner: runner, reader: reader, queue: queue, retries: conflictRetries}
}

func (s *FulfillmentService) CreatePurchaseOrder(ctx context.Context, req model.CreatePurchaseOrderRequest, actor uuid.UUID) (*model.PurchaseOrder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	po := &model.PurchaseOrder{
		ID:           uuid.New(),
		OrderNumber:  req.OrderNumber,
		SupplierName: req.SupplierName,
		Status:       model.POStatusDraft,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, line := range req.Lines {
		po.Lines = append(po.Lines, model.PurchaseOrderLine{
			ID:              uuid.New(),
			PurchaseOrderID: po.ID,
			ProductID:       line.ProductID,
			Quantity:        line.Quantity,
			UnitCost:        line.UnitCost,
		})
	}

	err := s.runner.Run(ctx, func(orders repository.TxRepository, _ stockrepo.TxRepository, _ resrepo.TxRepository) error {
		return orders.InsertPurchaseOrder(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	return po, nil
}

func (s *FulfillmentService) CreateSalesOrder(ctx context.Context, req model.CreateSalesOrderRequest, actor uuid.UUID) (*model.SalesOrder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	for _, line := range req.Lines {
		if err := line.Validate(); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	so := &model.SalesOrder{
		ID:           uuid.New(),
		OrderNumber:  req.OrderNumber,
		CustomerName: req.CustomerName,
		Status:       model.SOStatusDraft,
		CreatedBy:    actor,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	for _, line := range req.Lines {
		so.Lines = append(so.Lines, model.SalesOrderLine{
			ID:           uuid.New(),
			SalesOrderID: so.ID,
			ProductID:    line.ProductID,
			Quantity:     line.Quantity,
			UnitPrice:    line.UnitCost,
		})
	}

	err := s.runner.Run(ctx, func(orders repository.TxRepository, _ stockrepo.TxRepository, _ resrepo.TxRepository) error {
		return orders.InsertSalesOrder(ctx, so)
	})
	if err != nil {
		return nil, err
	}
	return so, nil
}

// ConfirmPurchaseOrder moves the document to confirmed and books each line's
// remaining quantity as forecasted-in.
func (s *FulfillmentService) ConfirmPurchaseOrder(ctx context.Context, orderID, actor uuid.UUID) (*model.FulfillmentResult, error) {
	var result *model.FulfillmentResult
	err := s.withConflictRetry(ctx, func() error {
		return s.runner.Run(ctx, func(orders repository.TxRepository, stock stockrepo.TxRepository, _ resrepo.TxRepository) error {
			po, err := orders.GetPurchaseOrderForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			if !po.Status.CanConfirm() {
				return model.NewInvalidStatusError(string(po.Status), "confirm")
			}

			for i := range po.Lines {
				line := &po.Lines[i]
				remaining := line.Remaining()
				if remaining <= 0 {
					continue
				}
				if _, err := stock.GetStateForUpdate(ctx, line.ProductID); err != nil {
					return err
				}
				if err := stock.AdjustForecast(ctx, line.ProductID, stockmodel.ForecastIn, remaining); err != nil {
					return err
				}
			}

			if err := orders.SetPurchaseOrderStatus(ctx, orderID, model.POStatusConfirmed); err != nil {
				return err
			}
			result = &model.FulfillmentResult{OrderID: orderID, Status: string(model.POStatusConfirmed)}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.enqueueSnapshotSyncForOrder(ctx, orderID)
	return result, nil
}

// ReceivePurchaseOrderLine records a (possibly partial) receipt: one IN
// movement, forecast decrement, accumulated line quantity and a recomputed
// document status. Re-entrant: receiving 3 then 2 of a 5-unit line equals
// receiving 5 at once.
func (s *FulfillmentService) ReceivePurchaseOrderLine(ctx context.Context, lineID uuid.UUID, quantity int, actor uuid.UUID) (*model.FulfillmentResult, error) {
	if quantity <= 0 {
		return nil, stockmodel.NewInvalidQuantityError("receive quantity must be positive")
	}

	var result *model.FulfillmentResult
	var productID uuid.UUID
	err := s.withConflictRetry(ctx, func() error {
		return s.runner.Run(ctx, func(orders repository.TxRepository, stock stockrepo.TxRepository, _ resrepo.TxRepository) error {
			po, line, err := orders.GetPurchaseLineForUpdate(ctx, lineID)
			if err != nil {
				return err
			}
			if !po.Status.CanReceive() {
				return model.NewInvalidStatusError(string(po.Status), "receive")
			}
			if line.QuantityReceived+quantity > line.Quantity {
				return model.NewOverFulfillmentError(line.Quantity, line.QuantityReceived, quantity)
			}
			productID = line.ProductID

			state, err := stock.GetStateForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}

			m := generatorMovement(line.ProductID, stockmodel.MovementIn, quantity, state.StockReal,
				stockmodel.ReasonPurchaseReception, stockmodel.ReferencePurchaseOrder, po.ID, line.UnitCost, actor)
			if err := stock.InsertMovement(ctx, m); err != nil {
				return err
			}
			if err := stock.SetStockReal(ctx, line.ProductID, m.QuantityAfter); err != nil {
				return err
			}
			if err := stock.AdjustForecast(ctx, line.ProductID, stockmodel.ForecastIn, -quantity); err != nil {
				return err
			}

			if err := orders.AddReceivedQuantity(ctx, lineID, quantity); err != nil {
				return err
			}
			lines, err := orders.ListPurchaseLines(ctx, po.ID)
			if err != nil {
				return err
			}
			status := model.RecomputePurchaseStatus(lines, po.Status)
			if err := orders.SetPurchaseOrderStatus(ctx, po.ID, status); err != nil {
				return err
			}

			result = &model.FulfillmentResult{
				OrderID:     po.ID,
				LineID:      &lineID,
				Status:      string(status),
				MovementIDs: []uuid.UUID{m.ID},
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.MovementsAppended.WithLabelValues(string(stockmodel.MovementIn)).Inc()
	s.enqueueSnapshotSync(ctx, productID)
	return result, nil
}

// ConfirmSalesOrder books each line's quantity as forecasted-out and
// optionally places a reservation per line. With auto-reserve the whole
// confirmation fails if any line cannot be covered by available stock.
func (s *FulfillmentService) ConfirmSalesOrder(ctx context.Context, orderID uuid.UUID, req model.ConfirmSalesOrderRequest, actor uuid.UUID) (*model.FulfillmentResult, error) {
	var result *model.FulfillmentResult
	err := s.withConflictRetry(ctx, func() error {
		return s.runner.Run(ctx, func(orders repository.TxRepository, stock stockrepo.TxRepository, reservations resrepo.TxRepository) error {
			so, err := orders.GetSalesOrderForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			if !so.Status.CanConfirm() {
				return model.NewInvalidStatusError(string(so.Status), "confirm")
			}

			refType := stockmodel.ReferenceSalesOrder
			for i := range so.Lines {
				line := &so.Lines[i]
				state, err := stock.GetStateForUpdate(ctx, line.ProductID)
				if err != nil {
					return err
				}
				if err := stock.AdjustForecast(ctx, line.ProductID, stockmodel.ForecastOut, line.Quantity); err != nil {
					return err
				}

				if !req.Reserve {
					continue
				}
				active, err := reservations.ActiveQuantity(ctx, line.ProductID)
				if err != nil {
					return err
				}
				available := state.StockReal - active
				if available < 0 {
					available = 0
				}
				if line.Quantity > available {
					return stockmodel.NewInsufficientStockError(available, line.Quantity)
				}
				err = reservations.Insert(ctx, &resmodel.StockReservation{
					ID:            uuid.New(),
					ProductID:     line.ProductID,
					Quantity:      line.Quantity,
					ReferenceType: &refType,
					ReferenceID:   &orderID,
					ReservedBy:    actor,
					ReservedAt:    time.Now().UTC(),
					ExpiresAt:     req.ReserveExpiresAt,
				})
				if err != nil {
					return err
				}
			}

			if err := orders.SetSalesOrderStatus(ctx, orderID, model.SOStatusConfirmed); err != nil {
				return err
			}
			result = &model.FulfillmentResult{OrderID: orderID, Status: string(model.SOStatusConfirmed)}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.enqueueSnapshotSyncForOrder(ctx, orderID)
	return result, nil
}

// ShipSalesOrderLine records a (possibly partial) shipment: one OUT
// movement, forecast decrement, reservation consumption, accumulated line
// quantity and a recomputed document status.
func (s *FulfillmentService) ShipSalesOrderLine(ctx context.Context, lineID uuid.UUID, quantity int, actor uuid.UUID) (*model.FulfillmentResult, error) {
	if quantity <= 0 {
		return nil, stockmodel.NewInvalidQuantityError("ship quantity must be positive")
	}

	var result *model.FulfillmentResult
	var productID uuid.UUID
	err := s.withConflictRetry(ctx, func() error {
		return s.runner.Run(ctx, func(orders repository.TxRepository, stock stockrepo.TxRepository, reservations resrepo.TxRepository) error {
			so, line, err := orders.GetSalesLineForUpdate(ctx, lineID)
			if err != nil {
				return err
			}
			if !so.Status.CanShip() {
				return model.NewInvalidStatusError(string(so.Status), "ship")
			}
			if line.QuantityShipped+quantity > line.Quantity {
				return model.NewOverFulfillmentError(line.Quantity, line.QuantityShipped, quantity)
			}
			productID = line.ProductID

			state, err := stock.GetStateForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if state.StockReal-quantity < 0 {
				return stockmodel.NewInsufficientStockError(state.StockReal, quantity)
			}

			m := generatorMovement(line.ProductID, stockmodel.MovementOut, quantity, state.StockReal,
				stockmodel.ReasonSale, stockmodel.ReferenceSalesOrder, so.ID, line.UnitPrice, actor)
			if err := stock.InsertMovement(ctx, m); err != nil {
				return err
			}
			if err := stock.SetStockReal(ctx, line.ProductID, m.QuantityAfter); err != nil {
				return err
			}
			if err := stock.AdjustForecast(ctx, line.ProductID, stockmodel.ForecastOut, -quantity); err != nil {
				return err
			}
			if err := reservations.ConsumeForShipment(ctx, line.ProductID, so.ID, quantity, actor); err != nil {
				return err
			}

			if err := orders.AddShippedQuantity(ctx, lineID, quantity); err != nil {
				return err
			}
			lines, err := orders.ListSalesLines(ctx, so.ID)
			if err != nil {
				return err
			}
			status := model.RecomputeSalesStatus(lines, so.Status)
			if err := orders.SetSalesOrderStatus(ctx, so.ID, status); err != nil {
				return err
			}

			result = &model.FulfillmentResult{
				OrderID:     so.ID,
				LineID:      &lineID,
				Status:      string(status),
				MovementIDs: []uuid.UUID{m.ID},
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	metrics.MovementsAppended.WithLabelValues(string(stockmodel.MovementOut)).Inc()
	s.enqueueSnapshotSync(ctx, productID)
	return result, nil
}

// CancelSalesOrder releases the order's reservations and unwinds the
// unshipped forecast. Shipped quantity's stock effect is never reversed.
func (s *FulfillmentService) CancelSalesOrder(ctx context.Context, orderID, actor uuid.UUID) (*model.FulfillmentResult, error) {
	var result *model.FulfillmentResult
	var released int
	err := s.withConflictRetry(ctx, func() error {
		return s.runner.Run(ctx, func(orders repository.TxRepository, stock stockrepo.TxRepository, reservations resrepo.TxRepository) error {
			so, err := orders.GetSalesOrderForUpdate(ctx, orderID)
			if err != nil {
				return err
			}
			if !so.Status.CanCancel() {
				return model.NewInvalidStatusError(string(so.Status), "cancel")
			}

			released, err = reservations.ReleaseByReference(ctx, stockmodel.ReferenceSalesOrder, orderID, actor)
			if err != nil {
				return err
			}

			// A draft order never booked forecast, nothing to unwind.
			if so.Status.ForecastCounted() {
				for i := range so.Lines {
					line := &so.Lines[i]
					remaining := line.Remaining()
					if remaining <= 0 {
						continue
					}
					if _, err := stock.GetStateForUpdate(ctx, line.ProductID); err != nil {
						return err
					}
					if err := stock.AdjustForecast(ctx, line.ProductID, stockmodel.ForecastOut, -remaining); err != nil {
						return err
					}
				}
			}

			if err := orders.SetSalesOrderStatus(ctx, orderID, model.SOStatusCancelled); err != nil {
				return err
			}
			result = &model.FulfillmentResult{OrderID: orderID, Status: string(model.SOStatusCancelled)}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if released > 0 {
		metrics.ReservationsReleased.WithLabelValues("reference").Add(float64(released))
	}
	s.enqueueSnapshotSyncForOrder(ctx, orderID)
	return result, nil
}

func (s *FulfillmentService) GetPurchaseOrder(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	return s.reader.GetPurchaseOrder(ctx, id)
}

func (s *FulfillmentService) GetSalesOrder(ctx context.Context, id uuid.UUID) (*model.SalesOrder, error) {
	return s.reader.GetSalesOrder(ctx, id)
}

func generatorMovement(productID uuid.UUID, movementType stockmodel.MovementType, quantity, before int,
	reason stockmodel.ReasonCode, referenceType string, referenceID uuid.UUID,
	unitCost *decimal.Decimal, actor uuid.UUID) *stockmodel.StockMovement {

	change := quantity
	if movementType == stockmodel.MovementOut || movementType == stockmodel.MovementTransfer {
		change = -quantity
	}
	now := time.Now().UTC()
	return &stockmodel.StockMovement{
		ID:             uuid.New(),
		ProductID:      productID,
		MovementType:   movementType,
		QuantityChange: change,
		QuantityBefore: before,
		QuantityAfter:  before + change,
		UnitCost:       unitCost,
		ReferenceType:  &referenceType,
		ReferenceID:    &referenceID,
		ReasonCode:     reason,
		PerformedBy:    actor,
		PerformedAt:    now,
		CreatedAt:      now,
	}
}

func (s *FulfillmentService) withConflictRetry(ctx context.Context, fn func() error) error {
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

func (s *FulfillmentService) enqueueSnapshotSync(ctx context.Context, productID uuid.UUID) {
	if s.queue == nil || productID == uuid.Nil {
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

// enqueueSnapshotSyncForOrder refreshes snapshots for every product on the
// order after confirm and cancel, which touch forecast counters per line.
func (s *FulfillmentService) enqueueSnapshotSyncForOrder(ctx context.Context, orderID uuid.UUID) {
	if s.queue == nil {
		return
	}
	so, err := s.reader.GetSalesOrder(ctx, orderID)
	if err == nil {
		for i := range so.Lines {
			s.enqueueSnapshotSync(ctx, so.Lines[i].ProductID)
		}
		return
	}
	po, err := s.reader.GetPurchaseOrder(ctx, orderID)
	if err != nil {
		return
	}
	for i := range po.Lines {
		s.enqueueSnapshotSync(ctx, po.Lines[i].ProductID)
	}
}
