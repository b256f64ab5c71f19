package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PollerMetrics records metadata for the inbox polling loop.
type PollerMetrics struct {
	duration  *prometheus.HistogramVec
	success   *prometheus.CounterVec
	failure   *prometheus.CounterVec
	forwarded *prometheus.CounterVec
}

// NewPollerMetrics registers poller metrics on the provided registerer.
func NewPollerMetrics(reg prometheus.Registerer) *PollerMetrics {
	if reg == nil {
		return &PollerMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inbox_poll_duration_seconds",
		Help:    "Duration of inbox poll cycles in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mailbox"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_poll_success",
		Help: "Successful inbox poll cycles.",
	}, []string{"mailbox"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_poll_failure",
		Help: "Failed inbox poll cycles.",
	}, []string{"mailbox"})
	forwarded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inbox_messages_forwarded",
		Help: "Vendor reply messages forwarded to the intake webhook.",
	}, []string{"mailbox"})
	reg.MustRegister(duration, success, failure, forwarded)
	return &PollerMetrics{
		duration:  duration,
		success:   success,
		failure:   failure,
		forwarded: forwarded,
	}
}

// ObserveDuration records the duration of a poll cycle for the mailbox.
func (p *PollerMetrics) ObserveDuration(mailbox string, duration time.Duration) {
	if p == nil || p.duration == nil {
		return
	}
	p.duration.WithLabelValues(normalizeLabel(mailbox)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the mailbox.
func (p *PollerMetrics) IncSuccess(mailbox string) {
	if p == nil || p.success == nil {
		return
	}
	p.success.WithLabelValues(normalizeLabel(mailbox)).Inc()
}

// IncFailure increments the failure counter for the mailbox.
func (p *PollerMetrics) IncFailure(mailbox string) {
	if p == nil || p.failure == nil {
		return
	}
	p.failure.WithLabelValues(normalizeLabel(mailbox)).Inc()
}

// IncForwarded increments the forwarded-message counter for the mailbox.
func (p *PollerMetrics) IncForwarded(mailbox string) {
	if p == nil || p.forwarded == nil {
		return
	}
	p.forwarded.WithLabelValues(normalizeLabel(mailbox)).Inc()
}

func normalizeLabel(mailbox string) string {
	if mailbox == "" {
		return "unknown"
	}
	return mailbox
}
