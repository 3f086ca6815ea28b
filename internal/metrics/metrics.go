// Package metrics holds the prometheus instrumentation of the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NotificationsCreated counts created notifications by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketledger_notifications_created_total",
		Help: "Number of notifications created, partitioned by notification type.",
	}, []string{"type"})

	// BudgetsRenewed counts budgets renewed by the scheduler.
	BudgetsRenewed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketledger_budgets_renewed_total",
		Help: "Number of budgets renewed with a successor for the following month.",
	})

	// PayloadsPublished counts change payloads published on the bus.
	PayloadsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketledger_change_payloads_published_total",
		Help: "Number of change payloads published on the change bus.",
	})

	// SeriesDeletions counts completed recurring series deletions.
	SeriesDeletions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketledger_series_deletions_total",
		Help: "Number of recurring transaction series deleted.",
	})
)
