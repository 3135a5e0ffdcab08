// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package event

import "github.com/prometheus/client_golang/prometheus"

// Published counts events handed to a channel, by type.
var Published = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "circle_events_published_total",
		Help: "Total number of events published to account channels by type",
	},
	[]string{"type"},
)

// Dropped counts events a lagging subscriber skipped.
var Dropped = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "circle_events_dropped_total",
		Help: "Total number of events skipped by lagging subscribers",
	},
)

// Subscribers is the number of live subscriptions across all channels.
var Subscribers = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "circle_event_subscribers",
		Help: "Number of live event subscriptions",
	},
)

// RegisterMetrics registers event metrics with reg. Panics on duplicate registration.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Published, Dropped, Subscribers)
}
