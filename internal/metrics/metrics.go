// Package metrics содержит Prometheus-коллекторы диспетчерского ядра.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	IncidentsCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_incidents_created_total",
			Help: "Incidents registered through intake, by routing branch.",
		},
		[]string{"branch"},
	)

	TransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_incident_transitions_total",
			Help: "Applied incident state transitions, by target state.",
		},
		[]string{"to"},
	)

	DispatchesCreatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_dispatches_created_total",
			Help: "Dispatches created, by kind.",
		},
		[]string{"kind"},
	)

	UnitClaimConflictsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dispatch_unit_claim_conflicts_total",
			Help: "Dispatch attempts rejected because the unit was no longer available.",
		},
	)

	DispatchDistanceKm = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatch_distance_km",
			Help:    "Distance between unit and incident at dispatch time.",
			Buckets: []float64{0.5, 1, 2, 3, 5, 7.5, 10, 15, 25, 50},
		},
		[]string{"kind"},
	)

	ReinforcementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_reinforcements_total",
			Help: "Reinforcement request outcomes, by result.",
		},
		[]string{"result"},
	)

	ReinforcementResponseMinutes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dispatch_reinforcement_response_minutes",
			Help:    "Minutes between a reinforcement request and its fulfilment.",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 30, 60},
		},
	)

	WebhookDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatch_webhook_deliveries_total",
			Help: "Webhook delivery outcomes, by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		IncidentsCreatedTotal,
		TransitionsTotal,
		DispatchesCreatedTotal,
		UnitClaimConflictsTotal,
		DispatchDistanceKm,
		ReinforcementsTotal,
		ReinforcementResponseMinutes,
		WebhookDeliveriesTotal,
	)
}
