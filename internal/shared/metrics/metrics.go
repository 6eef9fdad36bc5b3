package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MovementsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockops",
		Name:      "movements_appended_total",
		Help:      "Ledger movements appended, by movement type.",
	}, []string{"movement_type"})

	MovementsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockops",
		Name:      "movements_rejected_total",
		Help:      "Ledger appends rejected, by rejection reason.",
	}, []string{"reason"})

	ReservationsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stockops",
		Name:      "reservations_created_total",
		Help:      "Reservations successfully placed.",
	})

	ReservationsReleased = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "stockops",
		Name:      "reservations_released_total",
		Help:      "Reservations released, by cause (manual, reference, expired).",
	}, []string{"cause"})

	ConflictRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "stockops",
		Name:      "conflict_retries_total",
		Help:      "Serialization failures retried before success or surfacing a conflict.",
	})
)
