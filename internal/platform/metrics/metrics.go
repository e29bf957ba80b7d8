// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package metrics declares the Prometheus collectors exported on /metrics.

Collectors register with the default registry at init, so any package may
record into them without wiring.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job run outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yomira_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yomira_http_request_duration_seconds",
			Help:    "Time taken to serve HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yomira_job_runs_total",
			Help: "Background job runs by outcome",
		},
		[]string{"job", "outcome"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yomira_job_duration_seconds",
			Help:    "Time taken by background job runs that held the lock",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	ContentPromoted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yomira_content_promoted_total",
			Help: "Scheduled content published by the sweep",
		},
		[]string{"type"},
	)

	TagCorrections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yomira_tag_usage_corrections_total",
			Help: "Tag usage counts repaired by reconciliation",
		},
	)

	InvariantViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yomira_invariant_violations_total",
			Help: "Counters clamped at zero instead of going negative",
		},
		[]string{"counter"},
	)
)
