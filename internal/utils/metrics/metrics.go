// Package metrics exposes Prometheus counters for provenance writes.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry returns a registry carrying the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Ledger counts writes to the provenance chain. A nil *Ledger is valid and
// records nothing, so services can be built without a registry in tests.
type Ledger struct {
	batchesCreated  prometheus.Counter
	labReports      prometheus.Counter
	statusEvents    *prometheus.CounterVec
	artifactBytes   *prometheus.CounterVec
	codeCollisions  prometheus.Counter
	rejectedUploads *prometheus.CounterVec
}

// NewLedger registers the counters with registry.
func NewLedger(registry prometheus.Registerer) *Ledger {
	factory := promauto.With(registry)
	return &Ledger{
		batchesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "herbpass_batches_created_total",
			Help: "Total number of batches created with a locator",
		}),
		labReports: factory.NewCounter(prometheus.CounterOpts{
			Name: "herbpass_lab_reports_appended_total",
			Help: "Total number of lab reports appended to the ledger",
		}),
		statusEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "herbpass_status_events_appended_total",
			Help: "Total number of pharma status events appended, by well-known status",
		}, []string{"status"}),
		artifactBytes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "herbpass_artifact_bytes_stored_total",
			Help: "Total bytes written to the evidence store, by artifact class",
		}, []string{"class"}),
		codeCollisions: factory.NewCounter(prometheus.CounterOpts{
			Name: "herbpass_batch_code_collisions_total",
			Help: "Total number of batch code collisions that forced a retry",
		}),
		rejectedUploads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "herbpass_uploads_rejected_total",
			Help: "Total number of uploads rejected before storage, by reason",
		}, []string{"reason"}),
	}
}

func (m *Ledger) IncBatchCreated() {
	if m == nil {
		return
	}
	m.batchesCreated.Inc()
}

func (m *Ledger) IncLabReport() {
	if m == nil {
		return
	}
	m.labReports.Inc()
}

// statusLabels is the closed label set for status events. Status text is
// free-form caller input; anything else is counted as "other".
var statusLabels = map[string]struct{}{
	"Packaged":  {},
	"Shipped":   {},
	"Delivered": {},
}

const otherStatus = "other"

func statusLabel(status string) string {
	if _, ok := statusLabels[status]; ok {
		return status
	}
	return otherStatus
}

func (m *Ledger) IncStatusEvent(status string) {
	if m == nil {
		return
	}
	m.statusEvents.WithLabelValues(statusLabel(status)).Inc()
}

func (m *Ledger) AddArtifactBytes(class string, n int) {
	if m == nil {
		return
	}
	m.artifactBytes.WithLabelValues(class).Add(float64(n))
}

func (m *Ledger) IncCodeCollision() {
	if m == nil {
		return
	}
	m.codeCollisions.Inc()
}

func (m *Ledger) IncRejectedUpload(reason string) {
	if m == nil {
		return
	}
	m.rejectedUploads.WithLabelValues(reason).Inc()
}
