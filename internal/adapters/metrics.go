package adapters

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/h44z/wg-portal-routeros/internal"
	"github.com/h44z/wg-portal-routeros/internal/app"
	"github.com/h44z/wg-portal-routeros/internal/config"
	"github.com/h44z/wg-portal-routeros/internal/domain"
)

type EventBus interface {
	// Subscribe subscribes to a topic
	Subscribe(topic string, fn interface{}) error
}

type MetricsServer struct {
	*http.Server

	callsTotal   *prometheus.CounterVec
	callDuration *prometheus.HistogramVec
	connected    prometheus.Gauge
}

// Router call metrics labels
var (
	callLabels     = []string{"transport", "operation", "category"}
	durationLabels = []string{"transport", "operation"}
)

// NewMetricsServer returns a new prometheus server
func NewMetricsServer(cfg *config.Config) *MetricsServer {
	reg := prometheus.NewRegistry()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	return &MetricsServer{
		Server: &http.Server{
			Addr:    cfg.Metrics.ListeningAddress,
			Handler: mux,
		},

		callsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "wg_portal_router_calls_total",
				Help: "Router API calls by transport, operation and outcome category.",
			}, callLabels,
		),
		callDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "wg_portal_router_call_duration_seconds",
				Help:    "Duration of router API calls.",
				Buckets: prometheus.DefBuckets,
			}, durationLabels,
		),
		connected: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "wg_portal_router_connected",
				Help: "Result of the last connection test (boolean: 1/0).",
			},
		),
	}
}

// ConnectToMessageBus subscribes the metrics server to router events.
func (m *MetricsServer) ConnectToMessageBus(bus EventBus) {
	_ = bus.Subscribe(app.TopicRouterCallCompleted, m.UpdateCallMetrics)
	_ = bus.Subscribe(app.TopicConnectionStateChanged, m.UpdateConnectionMetrics)
}

// Run starts the metrics server
func (m *MetricsServer) Run(ctx context.Context) {
	go func() {
		if err := m.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("metrics service exited", "address", m.Addr, "error", err)
		}
	}()

	slog.Info("started metrics service", "address", m.Addr)

	// Wait for the context to be done
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := m.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics service shutdown failed", "address", m.Addr, "error", err)
	} else {
		slog.Info("metrics service shutdown gracefully", "address", m.Addr)
	}
}

// UpdateCallMetrics records a completed router call.
func (m *MetricsServer) UpdateCallMetrics(event domain.CallEvent) {
	transport := string(event.Outcome.Transport)
	m.callsTotal.WithLabelValues(transport, event.Operation, string(event.Outcome.Category)).Inc()
	if event.Outcome.Transport != domain.TransportNone {
		m.callDuration.WithLabelValues(transport, event.Operation).Observe(event.Duration.Seconds())
	}
}

// UpdateConnectionMetrics records the connection state.
func (m *MetricsServer) UpdateConnectionMetrics(state domain.ConnectionState) {
	m.connected.Set(internal.BoolToFloat64(state.Connected))
}
