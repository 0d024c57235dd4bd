// monitor/monitor.go
package monitor

import (
	"expvar"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jetchart/impostor/game"
)

type Metrics struct {
	ConnectedDevices     prometheus.Gauge
	ActiveGames          prometheus.Gauge
	GamesStarted         prometheus.Counter
	GamesFinished        *prometheus.CounterVec
	DescriptionsRecorded prometheus.Counter
	VotesRecorded        prometheus.Counter
	SuggestionFallbacks  prometheus.Counter
	NarrationFailures    prometheus.Counter
	MessagesReceived     prometheus.Counter
	MessageLatency       prometheus.Histogram
}

func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		ConnectedDevices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_devices",
			Help:      "Number of connected devices",
		}),
		ActiveGames: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_games",
			Help:      "Number of live games",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Total number of games started",
		}),
		GamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_finished_total",
			Help:      "Total number of games finished, by outcome phase",
		}, []string{"phase"}),
		DescriptionsRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "descriptions_recorded_total",
			Help:      "Total number of descriptions recorded",
		}),
		VotesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_recorded_total",
			Help:      "Total number of votes recorded",
		}),
		SuggestionFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "suggestion_fallbacks_total",
			Help:      "Bot turns that used the local fallback pools",
		}),
		NarrationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "narration_failures_total",
			Help:      "Narrations that failed or timed out",
		}),
		MessagesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Total number of device messages received",
		}),
		MessageLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "message_latency_seconds",
			Help:      "Device message processing latency",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 10),
		}),
	}

	prometheus.MustRegister(
		m.ConnectedDevices,
		m.ActiveGames,
		m.GamesStarted,
		m.GamesFinished,
		m.DescriptionsRecorded,
		m.VotesRecorded,
		m.SuggestionFallbacks,
		m.NarrationFailures,
		m.MessagesReceived,
		m.MessageLatency,
	)

	return m
}

// Monitor exposes prometheus and expvar counters. It implements
// game.Observer so engines can report events without knowing about
// metrics.
type Monitor struct {
	metrics      *Metrics
	startTime    time.Time
	requestCount int64
	mutex        sync.Mutex
}

func NewMonitor(namespace string) *Monitor {
	return &Monitor{
		metrics:   NewMetrics(namespace),
		startTime: time.Now(),
	}
}

func (m *Monitor) StartServer(addr string) {
	http.Handle("/metrics", promhttp.Handler())

	expvar.Publish("uptime", expvar.Func(func() interface{} {
		return time.Since(m.startTime).Seconds()
	}))

	expvar.Publish("requests", expvar.Func(func() interface{} {
		m.mutex.Lock()
		defer m.mutex.Unlock()
		return m.requestCount
	}))

	go http.ListenAndServe(addr, nil)
}

func (m *Monitor) IncConnectedDevices() {
	m.metrics.ConnectedDevices.Inc()
}

func (m *Monitor) DecConnectedDevices() {
	m.metrics.ConnectedDevices.Dec()
}

func (m *Monitor) SetActiveGames(count int) {
	m.metrics.ActiveGames.Set(float64(count))
}

func (m *Monitor) IncMessagesReceived() {
	m.metrics.MessagesReceived.Inc()
	m.mutex.Lock()
	m.requestCount++
	m.mutex.Unlock()
}

func (m *Monitor) ObserveMessageLatency(duration time.Duration) {
	m.metrics.MessageLatency.Observe(duration.Seconds())
}

// game.Observer implementation.

func (m *Monitor) GameStarted() {
	m.metrics.GamesStarted.Inc()
}

func (m *Monitor) DescriptionRecorded() {
	m.metrics.DescriptionsRecorded.Inc()
}

func (m *Monitor) VoteRecorded() {
	m.metrics.VotesRecorded.Inc()
}

func (m *Monitor) SuggestionFallback() {
	m.metrics.SuggestionFallbacks.Inc()
}

func (m *Monitor) NarrationFailed() {
	m.metrics.NarrationFailures.Inc()
}

func (m *Monitor) GameFinished(phase game.Phase) {
	m.metrics.GamesFinished.WithLabelValues(phase.String()).Inc()
}
