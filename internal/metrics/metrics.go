// Package metrics exposes Prometheus instrumentation for the simulation.
// A nil *Metrics is valid and records nothing, so callers never branch on
// whether metrics are enabled.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const namespace = "blastgrid"

type Metrics struct {
	detonations    *prometheus.CounterVec
	segments       prometheus.Counter
	tilesDestroyed *prometheus.CounterVec
	handlerCalls   *prometheus.CounterVec
	tasks          *prometheus.CounterVec
	liveBombs      prometheus.Gauge
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		detonations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detonations_total",
			Help:      "Bombs detonated, by cause.",
		}, []string{"cause"}),
		segments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "segments_total",
			Help:      "Explosion segments placed or refreshed.",
		}),
		tilesDestroyed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tiles_destroyed_total",
			Help:      "Tiles cleared by explosions, by layer.",
		}, []string{"layer"}),
		handlerCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "handler_calls_total",
			Help:      "Tile handler invocations, by capability.",
		}, []string{"capability"}),
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_total",
			Help:      "Scheduled task lifecycle transitions, by outcome.",
		}, []string{"outcome"}),
		liveBombs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_bombs",
			Help:      "Bombs currently registered.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.detonations, m.segments, m.tilesDestroyed, m.handlerCalls, m.tasks, m.liveBombs,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Detonation(cause string) {
	if m == nil {
		return
	}
	m.detonations.WithLabelValues(cause).Inc()
}

func (m *Metrics) Segment() {
	if m == nil {
		return
	}
	m.segments.Inc()
}

func (m *Metrics) TileDestroyed(layer string) {
	if m == nil {
		return
	}
	m.tilesDestroyed.WithLabelValues(layer).Inc()
}

func (m *Metrics) HandlerCall(capability string) {
	if m == nil {
		return
	}
	m.handlerCalls.WithLabelValues(capability).Inc()
}

func (m *Metrics) Task(outcome string) {
	if m == nil {
		return
	}
	m.tasks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SetLiveBombs(n int) {
	if m == nil {
		return
	}
	m.liveBombs.Set(float64(n))
}

// Serve exposes reg on addr under /metrics until ctx is cancelled.
func Serve(ctx context.Context, addr string, reg prometheus.Gatherer, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("metrics endpoint", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
