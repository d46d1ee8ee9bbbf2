// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package metrics holds the Prometheus collectors exported by the broker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wopibroker"

var (
	// TokensIssued counts tokens created, by token type.
	TokensIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Access tokens issued, by token type.",
	}, []string{"type"})

	// TokensUpgraded counts federation upgrades, by resulting token type.
	TokensUpgraded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_upgraded_total",
		Help:      "Access tokens upgraded for federation, by resulting token type.",
	}, []string{"type"})

	// CredentialProvisioning counts session credential provisioning outcomes.
	CredentialProvisioning = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "credential_provisioning_total",
		Help:      "Session credential provisioning attempts, by result.",
	}, []string{"result"})

	// ReconcileRuns counts reconciler passes, by result.
	ReconcileRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_runs_total",
		Help:      "Reconciler passes, by result.",
	}, []string{"result"})

	// ReconcileDeleted counts rows removed by the reconciler, by kind.
	ReconcileDeleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_deleted_total",
		Help:      "Rows removed by the reconciler, by kind (token, template, credential).",
	}, []string{"kind"})

	// ReconcileFailures counts credential invalidations that failed.
	ReconcileFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reconcile_credential_failures_total",
		Help:      "Credential invalidations that failed during reconciliation.",
	})

	// DiscoveryFetches counts remote discovery fetches, by result.
	DiscoveryFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "discovery_fetches_total",
		Help:      "Remote discovery document fetches, by result.",
	}, []string{"result"})

	// DiscoveryFetchDuration observes remote discovery fetch latency.
	DiscoveryFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "discovery_fetch_duration_seconds",
		Help:      "Latency of remote discovery document fetches.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 45, 180},
	})
)

var registry = newRegistry()

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		TokensIssued,
		TokensUpgraded,
		CredentialProvisioning,
		ReconcileRuns,
		ReconcileDeleted,
		ReconcileFailures,
		DiscoveryFetches,
		DiscoveryFetchDuration,
	)
	return reg
}

// Registry returns the registry holding every broker collector.
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// ObserveDiscoveryFetch records one remote discovery fetch.
func ObserveDiscoveryFetch(d time.Duration, err error) {
	DiscoveryFetchDuration.Observe(d.Seconds())
	DiscoveryFetches.WithLabelValues(result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
