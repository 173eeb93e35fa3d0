// Package metrics defines and registers the custom Prometheus metrics of the
// books service. Registration happens at import time via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "books"

// IdentityResolutionsTotal counts identity resolutions against the auth
// service. The outcome label keeps upstream failures distinguishable from
// credential rejections even though clients may see the same status code.
// Label:
//   - outcome: "success", "invalid_credential", "user_not_found",
//     "upstream_timeout", "upstream_unavailable", "upstream_error"
var IdentityResolutionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "identity_resolutions_total",
		Help:      "Total number of identity resolutions, by outcome.",
	},
	[]string{"outcome"},
)

// IdentityResolutionDuration measures the wall time of a full resolution,
// local verification plus the remote user lookup.
var IdentityResolutionDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "identity_resolution_duration_seconds",
		Help:      "Duration of identity resolution including the upstream call.",
		Buckets:   prometheus.DefBuckets,
	},
)

// BooksCreatedTotal counts newly created books.
var BooksCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "created_total",
		Help:      "Total number of books created.",
	},
)
