// Package metrics defines and registers all custom Prometheus metrics for
// the requirements API. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "requirements"

// SubmissionsTotal counts requirement submissions that were persisted.
// Label:
//   - department: the submitting department reported in the payload
var SubmissionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "submissions_total",
		Help:      "Total number of requirement submissions persisted, by department.",
	},
	[]string{"department"},
)

// ValidationFailuresTotal counts payloads rejected before any store call.
// Label:
//   - entity: "requirement" or "client"
var ValidationFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "validation_failures_total",
		Help:      "Total number of create/update payloads rejected by field validation.",
	},
	[]string{"entity"},
)

// SearchesTotal counts text searches served.
// Label:
//   - entity: "requirement" or "client"
var SearchesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Total number of substring searches executed, by entity.",
	},
	[]string{"entity"},
)

// RegistrationsTotal counts account registrations.
var RegistrationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of user accounts created.",
	},
)
