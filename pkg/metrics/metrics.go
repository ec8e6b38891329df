// Package metrics provides the Prometheus registry reference for the Ethos
// paging client and a text dump of everything registered.
// All metrics are defined in their respective packages (paging, client, cache)
// to maintain modularity and avoid circular dependencies.
package metrics

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Registry is the default Prometheus registry used by the Ethos client.
// All metrics are automatically registered via promauto in their respective packages.
var Registry = prometheus.DefaultRegisterer

// Gatherer collects the metrics registered on Registry.
var Gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Prefix is shared by every metric this module defines.
const Prefix = "ethos_"

// WriteText writes every metric family whose name starts with Prefix to w in
// the Prometheus text exposition format.
func WriteText(w io.Writer) error {
	return writeText(w, Gatherer)
}

func writeText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), Prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Metrics Documentation
//
// Paging Metrics (pkg/paging):
//   - ethos_paging_runs_total{strategy, outcome} (Counter): Runs by strategy and outcome (complete, shortcut, failed)
//   - ethos_paging_pages_fetched_total{strategy} (Counter): Pages fetched, discovery fetch included
//   - ethos_paging_run_duration_seconds{strategy} (Histogram): End-to-end run duration
//
// Request Metrics (pkg/client):
//   - ethos_requests_total{method, status} (Counter): Requests by HTTP method and status
//   - ethos_request_duration_seconds{method} (Histogram): Request duration by method
//   - ethos_errors_total{class} (Counter): Errors by class (client, server, rate_limit, network, auth)
//
// Token Cache Metrics (pkg/cache):
//   - ethos_token_cache_hits_total (Counter): Bearer tokens served from Redis
//   - ethos_token_cache_misses_total (Counter): Token cache misses
//   - ethos_token_cache_errors_total{operation} (Counter): Cache operation errors
//
// Example Prometheus Queries:
//
//   # Shortcut Rate (runs answered by the discovery fetch alone)
//   sum(rate(ethos_paging_runs_total{outcome="shortcut"}[5m])) /
//   sum(rate(ethos_paging_runs_total[5m]))
//
//   # Pages per Run
//   sum(rate(ethos_paging_pages_fetched_total[5m])) / sum(rate(ethos_paging_runs_total[5m]))
//
//   # Request Error Rate
//   rate(ethos_errors_total[5m])
//
//   # P95 Request Latency
//   histogram_quantile(0.95, rate(ethos_request_duration_seconds_bucket[5m]))
