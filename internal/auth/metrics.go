// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package auth

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/circlehub/circle/pkg/errutil"
)

// LoginAttempts counts logins by outcome.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "circle_logins_total",
		Help: "Total number of login attempts by status",
	},
	[]string{"status"},
)

// Registrations counts registrations by outcome.
var Registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "circle_registrations_total",
		Help: "Total number of registration attempts by status",
	},
	[]string{"status"},
)

// RegisterMetrics registers auth metrics with reg. Panics on duplicate registration.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(Registrations)
}

// status labels a result for metrics: "success" or the lower-case error kind.
func status(err error) string {
	if err == nil {
		return "success"
	}
	switch errutil.KindOf(err) {
	case errutil.KindAlreadyExisting:
		return "already_existing"
	case errutil.KindWeakPassword:
		return "weak_password"
	case errutil.KindInvalidCredentials:
		return "invalid_credentials"
	case errutil.KindBadRequest:
		return "bad_request"
	default:
		return "error"
	}
}
