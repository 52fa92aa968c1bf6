// Package metrics provides Prometheus metrics for the bonusboard service.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector used by the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Polling
	polls        *prometheus.CounterVec
	pollsSkipped *prometheus.CounterVec
	pollLatency  *prometheus.HistogramVec
	snapshotRows *prometheus.GaugeVec

	// Remote backend
	remoteRequests *prometheus.CounterVec
	remoteLatency  *prometheus.HistogramVec

	// Notifications
	notifications     *prometheus.CounterVec
	notificationQueue prometheus.Gauge
	seenSetSize       *prometheus.GaugeVec
	storeErrors       *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager registered on the configured registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "bonusboard",
		subsystem:        "dashboard",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     m.histogramBuckets,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gaugeVec(name, help string, labels ...string) *prometheus.GaugeVec {
	return promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	m.polls = m.counterVec("polls_total", "Snapshot fetches by view, mode (loud/silent) and result", "view", "mode", "result")
	m.pollsSkipped = m.counterVec("polls_skipped_total", "Silent fetches skipped because another silent fetch was in flight", "view")
	m.pollLatency = m.histogramVec("poll_latency_seconds", "Snapshot fetch latency in seconds", "view")
	m.snapshotRows = m.gaugeVec("snapshot_rows", "Rows in the latest successful snapshot", "view")

	m.remoteRequests = m.counterVec("remote_requests_total", "Requests sent to the bonus backend by endpoint and status", "endpoint", "status_code")
	m.remoteLatency = m.histogramVec("remote_request_duration_seconds", "Bonus backend request latency in seconds", "endpoint")

	m.notifications = m.counterVec("notifications_total", "Notifications raised by the change-detection engine", "kind")
	m.notificationQueue = promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "notification_queue_length",
		Help:        "Notifications waiting to be shown",
		ConstLabels: m.customLabels,
	})
	m.seenSetSize = m.gaugeVec("seen_set_size", "Entries held by each seen set", "set")
	m.storeErrors = m.counterVec("store_errors_total", "Key-value store failures by operation", "op")

	m.httpRequests = m.counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_seconds", "HTTP request duration in seconds", "endpoint", "method", "status_code")
}

// RecordPoll counts one snapshot fetch.
func RecordPoll(view, mode, result string) {
	if globalManager.enabled {
		globalManager.polls.WithLabelValues(view, mode, result).Inc()
	}
}

// RecordPollSkipped counts a silent fetch that was skipped.
func RecordPollSkipped(view string) {
	if globalManager.enabled {
		globalManager.pollsSkipped.WithLabelValues(view).Inc()
	}
}

// RecordPollLatency observes a fetch duration in seconds.
func RecordPollLatency(view string, seconds float64) {
	if globalManager.enabled {
		globalManager.pollLatency.WithLabelValues(view).Observe(seconds)
	}
}

// UpdateSnapshotRows sets the row count of the latest snapshot for a view.
func UpdateSnapshotRows(view string, rows int) {
	if globalManager.enabled {
		globalManager.snapshotRows.WithLabelValues(view).Set(float64(rows))
	}
}

// RecordRemoteRequest counts one backend request.
func RecordRemoteRequest(endpoint, statusCode string) {
	if globalManager.enabled {
		globalManager.remoteRequests.WithLabelValues(endpoint, statusCode).Inc()
	}
}

// RecordRemoteLatency observes a backend request duration in seconds.
func RecordRemoteLatency(endpoint string, seconds float64) {
	if globalManager.enabled {
		globalManager.remoteLatency.WithLabelValues(endpoint).Observe(seconds)
	}
}

// RecordNotification counts a raised notification.
func RecordNotification(kind string) {
	if globalManager.enabled {
		globalManager.notifications.WithLabelValues(kind).Inc()
	}
}

// UpdateNotificationQueue sets the number of queued notifications.
func UpdateNotificationQueue(n int) {
	if globalManager.enabled {
		globalManager.notificationQueue.Set(float64(n))
	}
}

// UpdateSeenSetSize sets the size of a seen set.
func UpdateSeenSetSize(set string, n int) {
	if globalManager.enabled {
		globalManager.seenSetSize.WithLabelValues(set).Set(float64(n))
	}
}

// RecordStoreError counts a key-value store failure.
func RecordStoreError(op string) {
	if globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(op).Inc()
	}
}

// RecordHTTPRequest counts one served HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes a served request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, seconds float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
	}
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Gather sums every metric family of the global registry by name.
// Histograms contribute their sample count.
func Gather() (map[string]float64, error) {
	families, err := customRegistry.Gather()
	if err != nil {
		return nil, errors.Join(ErrGatherFailed, err)
	}
	out := make(map[string]float64)
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		out[mf.GetName()] = total
	}
	return out, nil
}
