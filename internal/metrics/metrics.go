package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "quotecompare"

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	UsersCreated      prometheus.Counter
	ReferralsCreated  *prometheus.CounterVec
	ReferralsComplete prometheus.Counter
	BonusAwarded      prometheus.Counter
	Signups           *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		UsersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Users registered through the site.",
		}),
		ReferralsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "referrals_created_total",
			Help:      "Referral submissions, by whether a new pending referral was stored.",
		}, []string{"outcome"}),
		ReferralsComplete: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "referrals_completed_total",
			Help:      "Referrals moved from pending to completed.",
		}),
		BonusAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "referral_bonus_awarded_total",
			Help:      "Sum of bonus amounts credited to referrers.",
		}),
		Signups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signups_total",
			Help:      "Recorded signups, by whether they completed a referral.",
		}, []string{"referred"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.UsersCreated,
		m.ReferralsCreated,
		m.ReferralsComplete,
		m.BonusAwarded,
		m.Signups,
		m.HTTPRequests,
		m.HTTPDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveUserCreated() {
	m.UsersCreated.Inc()
}

func (m *Metrics) ObserveReferralCreated(created bool) {
	outcome := "duplicate"
	if created {
		outcome = "created"
	}
	m.ReferralsCreated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveReferralCompleted(bonus decimal.Decimal) {
	m.ReferralsComplete.Inc()
	m.BonusAwarded.Add(bonus.InexactFloat64())
}

func (m *Metrics) ObserveSignup(referred bool) {
	m.Signups.WithLabelValues(strconv.FormatBool(referred)).Inc()
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
