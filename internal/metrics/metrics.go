// Package metrics provides Prometheus metrics for device discovery.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/smazurov/nxv4l2/internal/devices"
)

const namespace = "nxv4l2"

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "devices",
		Name:      "scans_total",
		Help:      "Device table scans by result",
	}, []string{"result"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "devices",
		Name:      "scan_duration_seconds",
		Help:      "Time spent scanning sysfs and probing capture nodes",
		Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
	})

	invalidationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "devices",
		Name:      "invalidations_total",
		Help:      "Device cache invalidations by reason",
	}, []string{"reason"})

	entries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "devices",
		Name:      "entries",
		Help:      "Existing entries per category after the last successful scan",
	}, []string{"category"})

	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "devices",
		Name:      "lookups_total",
		Help:      "Device lookups by transport and result",
	}, []string{"transport", "result"})
)

// RecordScan records a completed scan. Entry gauges are only updated by
// successful scans.
func RecordScan(r devices.ScanResult) {
	scanDuration.Observe(r.Duration.Seconds())
	if r.Err != nil {
		scansTotal.WithLabelValues("error").Inc()
		return
	}
	scansTotal.WithLabelValues("ok").Inc()
	for _, cat := range devices.Categories() {
		entries.WithLabelValues(cat.String()).Set(float64(r.Counts[cat]))
	}
}

// RecordInvalidation counts an invalidation. Only the part of reason
// before the first colon is used as the label.
func RecordInvalidation(reason string) {
	label, _, _ := strings.Cut(reason, ":")
	if label == "" {
		label = "unspecified"
	}
	invalidationsTotal.WithLabelValues(label).Inc()
}

// RecordLookup counts a lookup served over transport ("http", "nats").
func RecordLookup(transport string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	lookupsTotal.WithLabelValues(transport, result).Inc()
}

// Observer records registry notifications.
type Observer struct{}

var _ devices.Observer = Observer{}

// ScanCompleted implements devices.Observer.
func (Observer) ScanCompleted(r devices.ScanResult) { RecordScan(r) }

// Invalidated implements devices.Observer.
func (Observer) Invalidated(reason string) { RecordInvalidation(reason) }
