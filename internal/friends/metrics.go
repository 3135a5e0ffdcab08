// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package friends

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/circlehub/circle/pkg/errutil"
)

// Requests counts friend request transitions by action and outcome.
var Requests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "circle_friend_requests_total",
		Help: "Total number of friend request operations by action and status",
	},
	[]string{"action", "status"},
)

// RegisterMetrics registers friends metrics with reg. Panics on duplicate registration.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Requests)
}

func status(err error) string {
	if err == nil {
		return "success"
	}
	return strings.ToLower(string(errutil.KindOf(err)))
}
