package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	chatStreamsTotal   *prometheus.CounterVec
	chatStreamDuration *prometheus.HistogramVec
	chatEventsTotal    *prometheus.CounterVec
	chatTokensStreamed *prometheus.CounterVec
	recordActionsTotal *prometheus.CounterVec
	exportsTotal       *prometheus.CounterVec
	exportRowsRendered *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealdesk",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dealdesk",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dealdesk",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chatStreamsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealdesk",
			Subsystem: "chat",
			Name:      "streams_total",
			Help:      "Total chat streams by terminal outcome.",
		},
		[]string{"service", "outcome"},
	)
	chatStreamDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dealdesk",
			Subsystem: "chat",
			Name:      "stream_duration_seconds",
			Help:      "Chat stream duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service"},
	)
	chatEventsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealdesk",
			Subsystem: "chat",
			Name:      "events_total",
			Help:      "Total SSE events relayed by event type.",
		},
		[]string{"service", "type"},
	)
	chatTokensStreamed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealdesk",
			Subsystem: "chat",
			Name:      "tokens_streamed_total",
			Help:      "Total token events relayed to clients.",
		},
		[]string{"service"},
	)
	recordActionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealdesk",
			Subsystem: "records",
			Name:      "actions_total",
			Help:      "Total analyst record actions by entity and action.",
		},
		[]string{"service", "entity", "action"},
	)
	exportsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dealdesk",
			Subsystem: "export",
			Name:      "downloads_total",
			Help:      "Total export downloads by format.",
		},
		[]string{"service", "format"},
	)
	exportRowsRendered := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dealdesk",
			Subsystem: "export",
			Name:      "rows_rendered",
			Help:      "Distribution of rows per export download.",
			Buckets:   []float64{0, 10, 50, 100, 500, 1000, 5000},
		},
		[]string{"service", "format"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		chatStreamsTotal,
		chatStreamDuration,
		chatEventsTotal,
		chatTokensStreamed,
		recordActionsTotal,
		exportsTotal,
		exportRowsRendered,
	)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		chatStreamsTotal:   chatStreamsTotal,
		chatStreamDuration: chatStreamDuration,
		chatEventsTotal:    chatEventsTotal,
		chatTokensStreamed: chatTokensStreamed,
		recordActionsTotal: recordActionsTotal,
		exportsTotal:       exportsTotal,
		exportRowsRendered: exportRowsRendered,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses record ids so metric cardinality stays bounded.
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/api/projects/") {
		return path
	}
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	// api/projects/{id}/resource/{id}/action
	for i, part := range parts {
		if part == "" {
			continue
		}
		switch i {
		case 2:
			parts[i] = "{id}"
		case 4:
			// Export filenames are a fixed vocabulary, not record ids.
			if parts[3] != "export" {
				parts[i] = "{id}"
			}
		}
	}
	return "/" + strings.Join(parts, "/")
}

func (m *HTTPServerMetrics) RecordChatStream(service, outcome string, duration time.Duration) {
	if outcome == "" {
		outcome = "unknown"
	}
	m.chatStreamsTotal.WithLabelValues(service, outcome).Inc()
	m.chatStreamDuration.WithLabelValues(service).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) RecordChatEvent(service, eventType string) {
	if eventType == "" {
		eventType = "unknown"
	}
	m.chatEventsTotal.WithLabelValues(service, eventType).Inc()
	if eventType == "token" {
		m.chatTokensStreamed.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) RecordRecordAction(service, entity, action string) {
	m.recordActionsTotal.WithLabelValues(service, entity, action).Inc()
}

func (m *HTTPServerMetrics) RecordExport(service, format string, rows int) {
	m.exportsTotal.WithLabelValues(service, format).Inc()
	if rows >= 0 {
		m.exportRowsRendered.WithLabelValues(service, format).Observe(float64(rows))
	}
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
