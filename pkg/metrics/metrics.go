// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-seaccess.
//
// go-seaccess is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for access control
// operations. It exposes check verdict counters, policy load counters,
// whitelist and cache gauges, and HTTP request metrics for the daemon's REST
// surface.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all access gate metrics
	Namespace = "seaccess"

	// Label names
	LabelVerdict    = "verdict"
	LabelSource     = "source"
	LabelStatus     = "status"
	LabelMethod     = "method"
	LabelStatusCode = "status_code"

	// Verdict values
	VerdictGranted = "granted"
	VerdictDenied  = "denied"

	// Verdict sources
	SourceCache  = "cache"
	SourcePolicy = "policy"
	SourceBroker = "broker"

	// Policy load outcomes
	LoadOK     = "ok"
	LoadAbsent = "absent"
	LoadError  = "error"
)

var (
	// ChecksTotal tracks access check verdicts by outcome and by where the
	// verdict came from (cache hit, policy evaluation, broker fallback).
	ChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "checks_total",
			Help:      "Total number of access checks by verdict and source",
		},
		[]string{LabelVerdict, LabelSource},
	)

	// PolicyLoadsTotal tracks policy document loads by outcome.
	PolicyLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "policy_loads_total",
			Help:      "Total number of policy document loads by outcome",
		},
		[]string{LabelStatus},
	)

	// WhitelistEntries tracks the number of signer entries in the active
	// whitelist.
	WhitelistEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "whitelist_entries",
			Help:      "Number of signer entries in the active whitelist",
		},
	)

	// CacheSize tracks the number of cached UID verdicts.
	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "cache_size",
			Help:      "Number of cached UID verdicts",
		},
	)

	// CacheInvalidationsTotal tracks verdict cache invalidations.
	CacheInvalidationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "cache_invalidations_total",
			Help:      "Total number of verdict cache invalidations",
		},
	)

	// HTTPRequestsTotal tracks the total number of HTTP requests by method
	// and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method and status code",
		},
		[]string{LabelMethod, LabelStatusCode},
	)

	// HTTPRequestDuration tracks the duration of HTTP requests in seconds.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{LabelMethod},
	)
)

// enabled controls whether metric recording helpers are active. Metrics are
// enabled by default; the daemon disables them when the config says so.
var enabled atomic.Bool

func init() {
	enabled.Store(true)
}

// SetEnabled enables or disables metric recording.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// IsEnabled returns whether metric recording is enabled.
func IsEnabled() bool {
	return enabled.Load()
}

// RecordCheck increments the check counter for the given verdict and source.
func RecordCheck(granted bool, source string) {
	if !IsEnabled() {
		return
	}
	verdict := VerdictDenied
	if granted {
		verdict = VerdictGranted
	}
	ChecksTotal.WithLabelValues(verdict, source).Inc()
}

// RecordPolicyLoad increments the policy load counter for the given outcome.
func RecordPolicyLoad(status string) {
	if !IsEnabled() {
		return
	}
	PolicyLoadsTotal.WithLabelValues(status).Inc()
}

// SetWhitelistEntries records the size of the active whitelist.
func SetWhitelistEntries(n int) {
	if !IsEnabled() {
		return
	}
	WhitelistEntries.Set(float64(n))
}

// SetCacheSize records the number of cached UID verdicts.
func SetCacheSize(n int) {
	if !IsEnabled() {
		return
	}
	CacheSize.Set(float64(n))
}

// RecordCacheInvalidation increments the cache invalidation counter.
func RecordCacheInvalidation() {
	if !IsEnabled() {
		return
	}
	CacheInvalidationsTotal.Inc()
}

// RecordHTTPRequest records a completed HTTP request.
func RecordHTTPRequest(method, statusCode string, duration float64) {
	if !IsEnabled() {
		return
	}
	HTTPRequestsTotal.WithLabelValues(method, statusCode).Inc()
	HTTPRequestDuration.WithLabelValues(method).Observe(duration)
}
