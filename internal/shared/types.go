package shared

// Task type names routed through asynq. Format: "<domain>:<action>".
const (
	TypeReservationExpirySweep = "reservation:expiry_sweep"
	TypeStockSnapshotSync      = "stock:snapshot_sync"
)

// Queue names in priority order.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

// StockSnapshotSyncPayload asks the worker to recompute a product's derived
// quantities and refresh the Redis snapshot.
type StockSnapshotSyncPayload struct {
	ProductID string `json:"product_id"`
}
