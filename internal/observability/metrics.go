package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eppctl",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total gateway HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eppctl",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Gateway HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	sessionCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eppctl",
			Subsystem: "session",
			Name:      "commands_total",
			Help:      "EPP commands by operation and first result code.",
		},
		[]string{"registry", "op", "code"},
	)
	sessionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "eppctl",
			Subsystem: "session",
			Name:      "command_duration_seconds",
			Help:      "EPP command round-trip time in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"registry", "op"},
	)
	sessionTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eppctl",
			Subsystem: "session",
			Name:      "state_transitions_total",
			Help:      "EPP session state transitions.",
		},
		[]string{"registry", "from", "to"},
	)
	frameBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "eppctl",
			Subsystem: "frame",
			Name:      "bytes_total",
			Help:      "EPP payload bytes by direction.",
		},
		[]string{"direction"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(httpRequests, httpDuration, sessionCommands, sessionDuration, sessionTransitions, frameBytes)
	})
}

func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
}

// SessionMetrics records EPP session activity into the process collectors.
// Code zero means no response arrived.
type SessionMetrics struct{}

func (SessionMetrics) Command(registry, op string, code int, duration time.Duration) {
	RegisterMetrics()
	codeLabel := "none"
	if code > 0 {
		codeLabel = strconv.Itoa(code)
	}
	sessionCommands.WithLabelValues(registry, op, codeLabel).Inc()
	sessionDuration.WithLabelValues(registry, op).Observe(duration.Seconds())
}

func (SessionMetrics) Transition(registry, from, to string) {
	RegisterMetrics()
	sessionTransitions.WithLabelValues(registry, from, to).Inc()
}

func (SessionMetrics) Frame(direction string, n int) {
	RegisterMetrics()
	frameBytes.WithLabelValues(direction).Add(float64(n))
}
